package archive

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"confdata/internal/aggregate"

	"github.com/stretchr/testify/require"
)

func TestExport(t *testing.T) {
	cfg := Config{File: filepath.Join(t.TempDir(), "archive.db")}
	require.True(t, cfg.Enabled())

	db, err := cfg.OpenDB()
	require.NoError(t, err)
	defer db.Close()

	site := "https://acme.example"
	rows := []aggregate.Row{
		{Conference: "PyConItalia", Year: 2024, Name: "Acme", Website: &site, Level: "Gold", Value: sql.NullInt64{Int64: 15000, Valid: true}},
		{Conference: "PyConItalia", Year: 2024, Name: "Hooli", Level: "Community"},
	}

	ctx := context.Background()
	require.NoError(t, Export(ctx, db, rows))
	// a second export replaces instead of appending
	require.NoError(t, Export(ctx, db, rows))

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "select count(*) from sponsor_rows").Scan(&count))
	require.Equal(t, 2, count)

	var (
		website sql.NullString
		value   sql.NullInt64
	)
	err = db.QueryRowContext(ctx, "select website, value from sponsor_rows where name = ?", "Hooli").Scan(&website, &value)
	require.NoError(t, err)
	require.False(t, website.Valid)
	require.False(t, value.Valid)

	err = db.QueryRowContext(ctx, "select website, value from sponsor_rows where name = ?", "Acme").Scan(&website, &value)
	require.NoError(t, err)
	require.Equal(t, site, website.String)
	require.Equal(t, int64(15000), value.Int64)
}

func TestOpenDBNotConfigured(t *testing.T) {
	cfg := Config{}
	require.False(t, cfg.Enabled())
	_, err := cfg.OpenDB()
	require.ErrorIs(t, err, ErrNotConfigured)
}
