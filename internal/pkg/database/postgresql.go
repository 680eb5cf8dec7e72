// Package database holds the PostgreSQL pool shared by the attendance and payroll repositories.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const connectTimeout = 10 * time.Second

// PoolConfig sizes the pool. Zero fields keep the pgxpool defaults.
type PoolConfig struct {
	MaxConns int32
	MinConns int32
}

// DB wraps the pool. Repositories reach it through GetQuerier so the same
// query runs inside or outside a check-in or payroll transaction.
type DB struct {
	*pgxpool.Pool
}

// NewPostgreSQLDB opens the pool and fails unless the server answers a ping
// within connectTimeout.
func NewPostgreSQLDB(ctx context.Context, dsn string, pool PoolConfig) (*DB, error) {
	config, err := newPoolConfig(dsn, pool)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	p, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}

	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &DB{Pool: p}, nil
}

// newPoolConfig pins every session to UTC. Check-in and check-out instants are
// stored in UTC and cut into store-local work dates by the services.
func newPoolConfig(dsn string, pool PoolConfig) (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	if pool.MaxConns > 0 {
		config.MaxConns = pool.MaxConns
	}
	if pool.MinConns > 0 {
		config.MinConns = min(pool.MinConns, config.MaxConns)
	}
	config.ConnConfig.RuntimeParams["timezone"] = "UTC"

	return config, nil
}

// BeginTx starts a read committed transaction. Duplicate check-ins are stopped
// by the daily unique index and stale payroll writes by the version column.
func (db *DB) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return db.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
}

// Querier is satisfied by both the pool and an open pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Transactor runs fn inside one transaction. Repositories called with the ctx handed
// to fn take part in that transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(txCtx context.Context) error) error
}
