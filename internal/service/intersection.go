package service

import (
	"context"

	"github.com/deppfellow/crashmap/internal/metrics"
	"github.com/deppfellow/crashmap/internal/model"
	"github.com/rs/zerolog"
)

type IntersectionRepository interface {
	List(ctx context.Context) ([]model.Intersection, error)
	GetByName(ctx context.Context, name string) ([]model.Intersection, error)
	WithinRange(ctx context.Context, minLat, maxLat, minLon, maxLon float64) ([]model.Intersection, error)
	WithStreet(ctx context.Context, street string) ([]model.Intersection, error)
	Add(ctx context.Context, name string, latitude, longitude float64) (bool, error)
}

type IntersectionService struct {
	logger *zerolog.Logger
	repo   IntersectionRepository
}

func NewIntersectionService(logger *zerolog.Logger, repo IntersectionRepository) *IntersectionService {
	return &IntersectionService{logger: logger, repo: repo}
}

func (s *IntersectionService) List(ctx context.Context, _ *model.ListIntersectionsPayload) ([]model.Intersection, error) {
	return s.repo.List(ctx)
}

func (s *IntersectionService) Get(ctx context.Context, payload *model.GetIntersectionPayload) ([]model.Intersection, error) {
	return s.repo.GetByName(ctx, payload.Name)
}

func (s *IntersectionService) WithinRange(ctx context.Context, payload *model.WithinRangePayload) ([]model.Intersection, error) {
	return s.repo.WithinRange(ctx, payload.MinLatitude, payload.MaxLatitude, payload.MinLongitude, payload.MaxLongitude)
}

func (s *IntersectionService) WithStreet(ctx context.Context, payload *model.WithStreetPayload) ([]model.Intersection, error) {
	return s.repo.WithStreet(ctx, payload.Street)
}

// Add registers an intersection. Adding an existing name succeeds without
// changing it.
func (s *IntersectionService) Add(ctx context.Context, payload *model.AddIntersectionPayload) error {
	added, err := s.repo.Add(ctx, payload.Name, payload.Latitude, payload.Longitude)
	if err != nil {
		return err
	}

	logger := loggerFrom(ctx, s.logger)
	if added {
		metrics.IntersectionsAdded.Inc()
		logger.Info().
			Str("intersection", payload.Name).
			Float64("latitude", payload.Latitude).
			Float64("longitude", payload.Longitude).
			Msg("intersection added")
	} else {
		logger.Debug().Str("intersection", payload.Name).Msg("intersection already exists")
	}
	return nil
}
