// Package repository issues the parameterized SQL behind every endpoint.
//
// Every method takes the request context, binds all user input as
// parameters and converts driver failures into *errs.HTTPError values with
// sqlerr, so the service layer only ever sees API errors.
package repository

import (
	"context"

	"github.com/deppfellow/crashmap/internal/server"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of *pgxpool.Pool the repositories use. A pgx.Tx
// satisfies it too.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repositories struct {
	Intersection *IntersectionRepository
	Collision    *CollisionRepository
	Danger       *DangerRepository
}

func NewRepositories(s *server.Server) *Repositories {
	return newRepositories(s.DB.Pool)
}

func newRepositories(db Querier) *Repositories {
	return &Repositories{
		Intersection: NewIntersectionRepository(db),
		Collision:    NewCollisionRepository(db),
		Danger:       NewDangerRepository(db),
	}
}
