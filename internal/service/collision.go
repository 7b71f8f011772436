package service

import (
	"context"
	"time"

	"github.com/deppfellow/crashmap/internal/events"
	"github.com/deppfellow/crashmap/internal/metrics"
	"github.com/deppfellow/crashmap/internal/model"
	"github.com/rs/zerolog"
)

type CollisionRepository interface {
	Set(ctx context.Context, name string, count int32) (int32, error)
	Increment(ctx context.Context, name string) (int32, error)
}

type CollisionService struct {
	logger    *zerolog.Logger
	repo      CollisionRepository
	publisher events.Publisher
	now       func() time.Time
}

func NewCollisionService(logger *zerolog.Logger, repo CollisionRepository, publisher events.Publisher) *CollisionService {
	return &CollisionService{
		logger:    logger,
		repo:      repo,
		publisher: publisher,
		now:       time.Now,
	}
}

// Set replaces the collision count of an existing intersection.
func (s *CollisionService) Set(ctx context.Context, payload *model.UpdateCollisionsPayload) error {
	stored, err := s.repo.Set(ctx, payload.Name, payload.NumCollisions)
	if err != nil {
		return err
	}

	s.written(ctx, payload.Name, stored, model.CollisionWriteSet)
	return nil
}

// Increment adds one collision to an existing intersection.
func (s *CollisionService) Increment(ctx context.Context, payload *model.AddCollisionPayload) error {
	stored, err := s.repo.Increment(ctx, payload.Name)
	if err != nil {
		return err
	}

	s.written(ctx, payload.Name, stored, model.CollisionWriteIncrement)
	return nil
}

// written records a committed write. Publishing is best effort: the count is
// already stored, so a failure here is logged and never reaches the client.
func (s *CollisionService) written(ctx context.Context, name string, stored int32, kind model.CollisionWriteKind) {
	metrics.CollisionWrites.WithLabelValues(string(kind)).Inc()
	logger := loggerFrom(ctx, s.logger)

	logger.Info().
		Str("intersection", name).
		Int32("num_collisions", stored).
		Str("kind", string(kind)).
		Msg("collision count updated")

	err := s.publisher.PublishCollisionUpdate(ctx, model.CollisionUpdate{
		Name:          name,
		NumCollisions: stored,
		Kind:          kind,
		At:            s.now().UTC(),
	})
	if err != nil {
		metrics.EventsPublished.WithLabelValues("failed").Inc()
		logger.Warn().Err(err).Str("intersection", name).Msg("failed to publish collision update")
		return
	}
	metrics.EventsPublished.WithLabelValues("ok").Inc()
}
