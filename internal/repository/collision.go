package repository

import (
	"context"
	"fmt"

	"github.com/deppfellow/crashmap/internal/errs"
	"github.com/deppfellow/crashmap/internal/sqlerr"
)

type CollisionRepository struct {
	db Querier
}

func NewCollisionRepository(db Querier) *CollisionRepository {
	return &CollisionRepository{db: db}
}

// Set stores count as the intersection's collision total, creating the
// collision row on first write. It returns the stored value.
func (r *CollisionRepository) Set(ctx context.Context, name string, count int32) (int32, error) {
	var stored int32
	if err := r.db.QueryRow(ctx, setCollisionsQuery, name, count).Scan(&stored); err != nil {
		return 0, r.handleError(name, fmt.Errorf("set collisions for %q: %w", name, err))
	}
	return stored, nil
}

// Increment adds one collision, starting from zero when no row exists. It
// returns the new total.
func (r *CollisionRepository) Increment(ctx context.Context, name string) (int32, error) {
	var stored int32
	if err := r.db.QueryRow(ctx, incrementCollisionsQuery, name).Scan(&stored); err != nil {
		return 0, r.handleError(name, fmt.Errorf("increment collisions for %q: %w", name, err))
	}
	return stored, nil
}

func (r *CollisionRepository) handleError(name string, err error) error {
	if sqlerr.IsCode(err, sqlerr.ForeignKeyViolation) {
		return errs.NewIntersectionNotFoundError(name)
	}
	return sqlerr.HandleError(err)
}
