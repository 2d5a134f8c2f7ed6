package migration

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
)

// Migration is one versioned schema change
type Migration struct {
	Version    int
	Name       string
	Statements []string
}

// Migrator applies schema migrations to a database
type Migrator interface {
	Migrate(ctx context.Context, db *sql.DB) error
}

// SQLMigrator applies migrations in version order and records each applied
// version, so running it again only applies what is new.
type SQLMigrator struct {
	migrations []Migration
	logger     *zap.Logger
}

// NewSQLMigrator creates a new SQLMigrator
func NewSQLMigrator(logger *zap.Logger, migrations ...Migration) *SQLMigrator {
	sorted := slices.Clone(migrations)
	slices.SortFunc(sorted, func(a, b Migration) int { return a.Version - b.Version })
	return &SQLMigrator{migrations: sorted, logger: logger.Named("migration")}
}

// Migrate applies every pending migration, each in its own transaction
func (m *SQLMigrator) Migrate(ctx context.Context, db *sql.DB) error {
	pending, err := m.Pending(ctx, db)
	if err != nil {
		return err
	}

	for _, mig := range pending {
		if err := m.apply(ctx, db, mig); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", mig.Version, mig.Name, err)
		}
		m.logger.Debug("applied migration", zap.Int("version", mig.Version), zap.String("name", mig.Name))
	}
	return nil
}

// Pending returns the migrations not applied to db yet
func (m *SQLMigrator) Pending(ctx context.Context, db *sql.DB) ([]Migration, error) {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS ptc_schema_migrations (
		version INTEGER PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		applied_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	rows, err := db.QueryContext(ctx, "SELECT version FROM ptc_schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var pending []Migration
	for _, mig := range m.migrations {
		if !applied[mig.Version] {
			pending = append(pending, mig)
		}
	}
	return pending, nil
}

func (m *SQLMigrator) apply(ctx context.Context, db *sql.DB, mig Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range mig.Statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO ptc_schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
		mig.Version, mig.Name, time.Now().UTC())
	if err != nil {
		return err
	}
	return tx.Commit()
}
