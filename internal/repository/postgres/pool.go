// Package postgres contains PostgreSQL implementations of repository interfaces.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nagarrakshak/caseledger/internal/errs"
)

// PgxPool is a minimal abstraction over a Postgres connection pool,
// used by repositories. It is implemented by *pgxpool.Pool and pgxmock.PgxPoolIface.
type PgxPool interface {
	// Exec executes a SQL command and returns the command tag.
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	// Query executes a SELECT and returns a rows iterator.
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	// QueryRow executes a query expected to return at most one row.
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	// BeginTx starts a transaction with the provided options.
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
	// Close shuts down the pool and frees resources.
	Close()
}

// DB wraps pgxpool.Pool to satisfy repository constructors and allow testing.
type DB struct{ Pool PgxPool }

// New creates a new connection pool for the given DSN.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, classify(err)
	}
	return &DB{Pool: pool}, nil
}

// Ping reports whether the store answers, with the error classified.
func (db *DB) Ping(ctx context.Context) error { return classify(db.Pool.Ping(ctx)) }

// Close closes the underlying pool.
func (db *DB) Close() { db.Pool.Close() }

// Postgres error codes the repositories care about.
const (
	codeUniqueViolation       = "23505"
	codeInsufficientPrivilege = "42501"
	codeUndefinedTable        = "42P01"
)

// classify wraps driver errors with the sentinel describing the probable cause.
// Errors that already carry a sentinel, and unknown errors, are returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var pg *pgconn.PgError
	if errors.As(err, &pg) {
		switch {
		case pg.Code == codeInsufficientPrivilege:
			return fmt.Errorf("%w: %s", errs.ErrPermission, pg.Message)
		case pg.Code == codeUndefinedTable:
			return fmt.Errorf("%w: %s", errs.ErrMissingCollection, pg.Message)
		case pg.Code == codeUniqueViolation:
			return fmt.Errorf("%w: %s", errs.ErrAlreadyExists, pg.ConstraintName)
		case strings.HasPrefix(pg.Code, "08"):
			return fmt.Errorf("%w: %s", errs.ErrConnectivity, pg.Message)
		}
		return err
	}
	var connErr *pgconn.ConnectError
	var netErr net.Error
	switch {
	case errors.As(err, &connErr),
		errors.As(err, &netErr),
		pgconn.Timeout(err),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", errs.ErrConnectivity, err)
	}
	return err
}
