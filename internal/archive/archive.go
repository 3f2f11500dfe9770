// Package archive copies the flat sponsor view into a SQLite or libsql
// database so it can be queried outside of the report.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"

	"confdata/internal/aggregate"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

var ErrNotConfigured = errors.New("archive: neither file nor url is set")

type Config struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func (config Config) Enabled() bool {
	return config.File != "" || config.Url != ""
}

// OpenDB opens a local SQLite file, or a remote libsql database when Url is
// set.
func (config Config) OpenDB() (*sql.DB, error) {
	if config.Url == "" {
		if config.File == "" {
			return nil, ErrNotConfigured
		}
		db, err := sql.Open("sqlite", config.File)
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(1)
		return db, nil
	}

	values := url.Values{}
	if config.AuthToken != "" {
		values.Add("authToken", config.AuthToken)
	}
	target := config.Url
	if len(values) > 0 {
		target += "?" + values.Encode()
	}
	return sql.Open("libsql", target)
}

const schema = `
create table sponsor_rows (
	conference text not null,
	year integer not null,
	name text not null,
	website text,
	level text not null,
	value integer
)`

// Export replaces the sponsor_rows table with rows in a single transaction.
func Export(ctx context.Context, db *sql.DB, rows []aggregate.Row) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, "drop table if exists sponsor_rows")
	if err != nil {
		return fmt.Errorf("drop sponsor_rows: %w", err)
	}
	_, err = tx.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("create sponsor_rows: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `insert into sponsor_rows
		(conference, year, name, website, level, value)
		values (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range rows {
		var website sql.NullString
		if row.Website != nil {
			website = sql.NullString{String: *row.Website, Valid: true}
		}
		_, err = stmt.ExecContext(ctx, row.Conference, row.Year, row.Name, website, row.Level, row.Value)
		if err != nil {
			return fmt.Errorf("insert %s %d %s: %w", row.Conference, row.Year, row.Name, err)
		}
	}

	return tx.Commit()
}
