// Package migrations applies the embedded SQL schema in file-name order.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prohmpiriya/experience-marketplace/pkg/database"
)

//go:embed *.sql
var files embed.FS

const createVersionTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version    VARCHAR(255) PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// Migration is one embedded SQL file
type Migration struct {
	Version string
	SQL     string
}

// State reports whether a migration has been applied
type State struct {
	Version   string
	AppliedAt *time.Time
}

// Applied reports whether the migration has run
func (s State) Applied() bool {
	return s.AppliedAt != nil
}

// Load returns the embedded migrations sorted by version
func Load() ([]Migration, error) {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	migrations := make([]Migration, 0, len(names))
	for _, name := range names {
		data, err := files.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		migrations = append(migrations, Migration{
			Version: strings.TrimSuffix(name, ".sql"),
			SQL:     string(data),
		})
	}
	return migrations, nil
}

// Up applies every pending migration, each in its own transaction, and
// returns the versions it applied
func Up(ctx context.Context, pool *pgxpool.Pool) ([]string, error) {
	migrations, err := Load()
	if err != nil {
		return nil, err
	}

	applied, err := appliedVersions(ctx, pool)
	if err != nil {
		return nil, err
	}

	var done []string
	for _, m := range migrations {
		if _, ok := applied[m.Version]; ok {
			continue
		}
		err := database.WithTx(ctx, pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, m.SQL); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.Version)
			return err
		})
		if err != nil {
			return done, fmt.Errorf("migration %s failed: %w", m.Version, err)
		}
		done = append(done, m.Version)
	}
	return done, nil
}

// Status lists every embedded migration with its applied time
func Status(ctx context.Context, pool *pgxpool.Pool) ([]State, error) {
	migrations, err := Load()
	if err != nil {
		return nil, err
	}

	applied, err := appliedVersions(ctx, pool)
	if err != nil {
		return nil, err
	}

	states := make([]State, len(migrations))
	for i, m := range migrations {
		states[i] = State{Version: m.Version}
		if at, ok := applied[m.Version]; ok {
			states[i].AppliedAt = &at
		}
	}
	return states, nil
}

func appliedVersions(ctx context.Context, pool *pgxpool.Pool) (map[string]time.Time, error) {
	if _, err := pool.Exec(ctx, createVersionTable); err != nil {
		return nil, fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	rows, err := pool.Query(ctx, `SELECT version, applied_at FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]time.Time)
	for rows.Next() {
		var version string
		var at time.Time
		if err := rows.Scan(&version, &at); err != nil {
			return nil, err
		}
		applied[version] = at
	}
	return applied, rows.Err()
}
