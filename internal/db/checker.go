package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pooledConn interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Release()
}

type connSource interface {
	acquire(ctx context.Context) (pooledConn, error)
}

type pgxSource struct{ pool *pgxpool.Pool }

func (s pgxSource) acquire(ctx context.Context) (pooledConn, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Checker verifies database reachability with a single round trip.
type Checker struct {
	src connSource
}

func NewChecker(pool *pgxpool.Pool) *Checker {
	return &Checker{src: pgxSource{pool: pool}}
}

// Ping acquires one connection, runs SELECT 1 and releases the connection
// on every path before returning.
func (c *Checker) Ping(ctx context.Context) error {
	conn, err := c.src.acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var one int
	if err := conn.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("select 1: %w", err)
	}
	if one != 1 {
		return fmt.Errorf("select 1: unexpected result %d", one)
	}
	return nil
}
