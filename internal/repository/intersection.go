package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/deppfellow/crashmap/internal/model"
	"github.com/deppfellow/crashmap/internal/sqlerr"
	"github.com/jackc/pgx/v5"
)

type IntersectionRepository struct {
	db Querier
}

func NewIntersectionRepository(db Querier) *IntersectionRepository {
	return &IntersectionRepository{db: db}
}

func (r *IntersectionRepository) List(ctx context.Context) ([]model.Intersection, error) {
	return r.query(ctx, listIntersectionsQuery)
}

// GetByName returns zero or one intersection; a missing name is not an error.
func (r *IntersectionRepository) GetByName(ctx context.Context, name string) ([]model.Intersection, error) {
	return r.query(ctx, getIntersectionQuery, name)
}

// WithinRange returns intersections inside the inclusive bounding box.
func (r *IntersectionRepository) WithinRange(ctx context.Context, minLat, maxLat, minLon, maxLon float64) ([]model.Intersection, error) {
	return r.query(ctx, intersectionsWithinRangeQuery, minLat, maxLat, minLon, maxLon)
}

// WithStreet matches street as a case-insensitive literal substring of the
// intersection name.
func (r *IntersectionRepository) WithStreet(ctx context.Context, street string) ([]model.Intersection, error) {
	return r.query(ctx, intersectionsWithStreetQuery, escapeLike(street))
}

// Add inserts the intersection unless the name exists. added is false for an
// existing name; the stored coordinates are left untouched.
func (r *IntersectionRepository) Add(ctx context.Context, name string, latitude, longitude float64) (added bool, err error) {
	tag, err := r.db.Exec(ctx, addIntersectionQuery, name, latitude, longitude)
	if err != nil {
		return false, sqlerr.HandleError(fmt.Errorf("insert location %q: %w", name, err))
	}
	return tag.RowsAffected() == 1, nil
}

func (r *IntersectionRepository) query(ctx context.Context, sql string, args ...any) ([]model.Intersection, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, sqlerr.HandleError(fmt.Errorf("query intersections: %w", err))
	}

	intersections, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Intersection])
	if err != nil {
		return nil, sqlerr.HandleError(fmt.Errorf("collect intersections: %w", err))
	}
	return intersections, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern using '\' as the
// escape character.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
