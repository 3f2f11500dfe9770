// Package store persists yearly conference documents as JSON files laid out
// as <root>/<conference>/<year>.json and discovers them again for reporting.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"confdata/internal/records"

	json "github.com/goccy/go-json"
	"github.com/mazen160/go-random"
)

const (
	KindSpeakers = "speakers"
	KindSponsors = "sponsors"
)

var (
	ErrBadExtension = errors.New("output path must end in .json")
	ErrNoDocuments  = errors.New("no documents found")
)

// DecodeError names the file a historical document failed to decode from.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func ValidateOutputPath(path string) error {
	if !strings.HasSuffix(path, ".json") {
		return fmt.Errorf("%w: %s", ErrBadExtension, path)
	}
	return nil
}

// DefaultPath is <root>/<kind>/<conference>/<year>.json.
func DefaultPath(root, kind, conference string, year int) string {
	return filepath.Join(root, kind, conference, strconv.Itoa(year)+".json")
}

// Encode renders doc the way it is stored on disk: 4 space indentation,
// no HTML escaping, trailing newline.
func Encode(doc any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteDocument replaces the file at path with doc.
func WriteDocument(path string, doc any) error {
	contents, err := Encode(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	err = WriteAtomic(path, contents)
	if err != nil {
		return err
	}
	slog.Debug("wrote document", "path", path, "bytes", len(contents))
	return nil
}

// WriteAtomic writes contents to a sibling temp file and renames it over
// path, readers never observe a partial file. The temp file is removed on
// any failure.
func WriteAtomic(path string, contents []byte) (err error) {
	dir := filepath.Dir(path)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	suffix, err := random.String(8)
	if err != nil {
		return err
	}
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), suffix))
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()

	err = os.WriteFile(tmp, contents, 0644)
	if err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadedSponsors is one sponsor document along with where it came from.
type LoadedSponsors struct {
	Path       string
	Conference string
	Document   records.SponsorDocument
}

// LoadSponsorDocuments decodes every *.json file under root, in path order.
// The conference of each document is the name of its parent directory.
func LoadSponsorDocuments(root string) ([]LoadedSponsors, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w under %s", ErrNoDocuments, root)
	}
	sort.Strings(paths)

	out := make([]LoadedSponsors, 0, len(paths))
	for _, path := range paths {
		contents, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var doc records.SponsorDocument
		err = json.Unmarshal(contents, &doc)
		if err != nil {
			return nil, &DecodeError{Path: path, Err: err}
		}
		out = append(out, LoadedSponsors{
			Path:       path,
			Conference: filepath.Base(filepath.Dir(path)),
			Document:   doc,
		})
	}
	return out, nil
}
