// Package sqlstore persists BOMs in Postgres or SQLite through database/sql.
// Queries are built with squirrel so both dialects share one code path.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/vsinha/bomengine/pkg/domain/repositories"
	"github.com/vsinha/bomengine/pkg/logger"
)

// Dialect selects the driver, placeholder format and migration set
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// ParseDialect maps a configured driver name to a Dialect
func ParseDialect(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements the BOM and component repositories on a SQL database
type Store struct {
	db      *sql.DB
	pool    *pgxpool.Pool
	sb      sq.StatementBuilderType
	dialect Dialect
}

// Verify interface compliance
var (
	_ repositories.BOMRepository       = (*Store)(nil)
	_ repositories.BOMWriter           = (*Store)(nil)
	_ repositories.ComponentRepository = (*Store)(nil)
)

// Open connects to the database. For SQLite the dsn is a file path or
// ":memory:"; for Postgres it is a pgx connection string.
func Open(ctx context.Context, dialect Dialect, dsn string) (*Store, error) {
	const op = "sqlstore.Open"

	switch dialect {
	case Postgres:
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		s := &Store{
			db:      stdlib.OpenDBFromPool(pool),
			pool:    pool,
			sb:      sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
			dialect: Postgres,
		}
		logger.Debug(ctx, "postgres store opened")
		return s, nil

	case SQLite:
		db, err := sql.Open("sqlite", "file:"+dsn+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		// one connection keeps ":memory:" databases alive and serializes writers
		db.SetMaxOpenConns(1)
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		logger.Debug(ctx, "sqlite store opened", logger.String("path", dsn))
		return &Store{
			db:      db,
			sb:      sq.StatementBuilder.PlaceholderFormat(sq.Question),
			dialect: SQLite,
		}, nil

	default:
		return nil, fmt.Errorf("%s: unsupported dialect %q", op, dialect)
	}
}

// Dialect reports which database the store talks to
func (s *Store) Dialect() Dialect { return s.dialect }

// Migrate applies the embedded schema migrations
func (s *Store) Migrate(ctx context.Context) error {
	return NewMigrator(s.db, s.dialect).Up(ctx)
}

// Close releases the database handle and, for Postgres, the pool
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	if s.pool != nil {
		s.pool.Close()
	}
	return err
}

// inTx runs fn in a transaction, rolling back when fn fails
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func exec(ctx context.Context, q querier, b sq.Sqlizer) (sql.Result, error) {
	sqlStr, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return q.ExecContext(ctx, sqlStr, args...)
}

func query(ctx context.Context, q querier, b sq.Sqlizer) (*sql.Rows, error) {
	sqlStr, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return q.QueryContext(ctx, sqlStr, args...)
}

func queryRow(ctx context.Context, q querier, b sq.Sqlizer) (*sql.Row, error) {
	sqlStr, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return q.QueryRowContext(ctx, sqlStr, args...), nil
}
