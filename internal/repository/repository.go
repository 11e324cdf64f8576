// Package repository holds the SQL for every table the settlement service
// touches. Repositories return domain models and translate missing rows into
// errs.NotFound; every other driver error is returned wrapped for the
// global error handler.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/deppfellow/go-marketplace/internal/errs"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so the same query can
// run standalone or inside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Page is a 1-based page request.
type Page struct {
	Page  int
	Limit int
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Normalize clamps the page into range.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// Offset is the row offset of the page.
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

func collectOne[T any](rows pgx.Rows, entity string) (*T, error) {
	item, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[T])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFound(entity)
		}
		return nil, fmt.Errorf("failed to collect %s: %w", entity, err)
	}
	return item, nil
}

func collectAll[T any](rows pgx.Rows, entity string) ([]T, error) {
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, fmt.Errorf("failed to collect %s rows: %w", entity, err)
	}
	return items, nil
}
