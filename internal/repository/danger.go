package repository

import (
	"context"
	"fmt"

	"github.com/deppfellow/crashmap/internal/model"
	"github.com/deppfellow/crashmap/internal/sqlerr"
	"github.com/jackc/pgx/v5"
)

type DangerRepository struct {
	db Querier
}

func NewDangerRepository(db Querier) *DangerRepository {
	return &DangerRepository{db: db}
}

// Compare returns the danger rows of up to two intersections, ordered by name.
func (r *DangerRepository) Compare(ctx context.Context, first, second string) ([]model.Danger, error) {
	return r.query(ctx, compareIntersectionsQuery, first, second)
}

// Top returns the limit most dangerous intersections, highest ratio first.
func (r *DangerRepository) Top(ctx context.Context, limit int) ([]model.Danger, error) {
	return r.query(ctx, topDangerousQuery, int64(limit))
}

func (r *DangerRepository) query(ctx context.Context, sql string, args ...any) ([]model.Danger, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, sqlerr.HandleError(fmt.Errorf("query danger: %w", err))
	}

	dangers, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Danger])
	if err != nil {
		return nil, sqlerr.HandleError(fmt.Errorf("collect danger: %w", err))
	}
	return dangers, nil
}
