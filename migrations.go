package stuco

import (
	"context"
	"io/fs"
	"sort"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

const migrationsDir = "data/sql/migrations"

// RunMigrations applies the embedded schema migrations in filename order.
// Statements are idempotent so replaying on boot is safe.
func RunMigrations(ctx context.Context, db *bun.DB) error {
	entries, err := fs.ReadDir(migrationsFS, migrationsDir)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to read migrations")
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, name := range names {
			raw, err := fs.ReadFile(migrationsFS, migrationsDir+"/"+name)
			if err != nil {
				return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to read migration "+name)
			}

			for _, stmt := range strings.Split(string(raw), ";") {
				stmt = strings.TrimSpace(stmt)
				if stmt == "" {
					continue
				}
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return goerrors.Wrap(err, goerrors.CategoryInternal, "migration "+name+" failed")
				}
			}
		}
		return nil
	})
}
