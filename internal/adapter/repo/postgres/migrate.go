package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"

	"github.com/jackc/pgx/v5"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// migrationLockID serialises concurrent Migrate calls across processes.
const migrationLockID = 727_100_001

// Migrate applies the embedded schema. Every statement is idempotent, so it
// runs on each start.
func Migrate(ctx context.Context, pool PgxPool) error {
	names, err := fs.Glob(migrationFS, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("op=postgres.Migrate: %w", err)
	}
	sort.Strings(names)
	err = inTx(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, migrationLockID); err != nil {
			return err
		}
		for _, name := range names {
			body, err := migrationFS.ReadFile(name)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, string(body)); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			slog.Debug("migration applied", slog.String("file", name))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("op=postgres.Migrate: %w", err)
	}
	return nil
}

// Truncate empties every table. Used by the seed command's reset flag.
func Truncate(ctx context.Context, pool PgxPool) error {
	_, err := pool.Exec(ctx, `TRUNCATE resume_analyses, preferences, internships, users`)
	return classify("postgres.truncate", err)
}
