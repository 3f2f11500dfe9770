package configutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/titanous/json5"
)

func splitExt(f string) (string, string) {
	for i := len(f) - 1; i >= 0; i-- {
		if f[i] == '.' {
			return f[0:i], f[i+1:]
		}
	}
	return f, ""
}

// reads a configuration file, `name` should come with a file extension,
// it will automatically be lopped off to produce the other extensions.
// this function will merge the following files, where higher number is more prioritized.
// 1. <name>.<ext>
// 2. <name>.local.<ext>
//
// `out` holds the defaults, values from the files are layered on top of it.
func ReadConfig[T any](name string, out *T) error {
	allNotFound := true

	dirname := filepath.Dir(name)
	basename := filepath.Base(name)
	prefixname, ext := splitExt(basename)

	for _, path := range []string{
		name,
		filepath.Join(dirname, fmt.Sprintf("%s.local.%s", prefixname, ext)),
	} {
		var override T
		found, err := decodeFile(path, ext, &override)
		if err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		if !found {
			continue
		}
		err = mergo.Merge(out, override, mergo.WithOverride)
		if err != nil {
			return err
		}
		if path != name {
			slog.Debug("merging config with local overrides", "local", path)
		}
		allNotFound = false
	}

	if allNotFound {
		return os.ErrNotExist
	}
	return nil
}

func decodeFile(path, ext string, out any) (bool, error) {
	switch strings.ToLower(ext) {
	case "yaml", "yml":
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return false, nil
		}
		k := koanf.New(".")
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return false, err
		}
		return true, k.UnmarshalWithConf("", out, koanf.UnmarshalConf{Tag: "json"})
	default:
		contents, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if len(contents) == 0 {
			return false, nil
		}
		return true, json5.Unmarshal(contents, out)
	}
}

// ApplyEnv layers environment variables starting with prefix onto out.
// Nested fields are separated by a double underscore, so with the prefix
// CONFDATA_ the variable CONFDATA_PRETALX__TOKEN sets `pretalx.token`.
func ApplyEnv[T any](prefix string, out *T) error {
	k := koanf.New(".")
	provider := env.Provider(prefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, prefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(provider, nil); err != nil {
		return err
	}
	if len(k.Keys()) == 0 {
		return nil
	}
	return k.UnmarshalWithConf("", out, koanf.UnmarshalConf{Tag: "json"})
}
