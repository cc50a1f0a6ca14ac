package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"path"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

// Migrator applies the embedded goose migrations for one dialect
type Migrator struct {
	db            *sql.DB
	dialect       Dialect
	migrationsDir string
}

func NewMigrator(db *sql.DB, dialect Dialect) *Migrator {
	return &Migrator{
		db:            db,
		dialect:       dialect,
		migrationsDir: path.Join("migrations", string(dialect)),
	}
}

func (m *Migrator) Up(ctx context.Context) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	gooseDialect := "postgres"
	if m.dialect == SQLite {
		gooseDialect = "sqlite3"
	}
	if err := goose.SetDialect(gooseDialect); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, m.db, m.migrationsDir); err != nil {
		return err
	}
	return nil
}
