// Package service contains the business operations behind each endpoint.
//
// It sits between the handler and repository layers: handlers pass it
// validated payloads, it calls the repositories and, for collision writes,
// announces the new count through an events.Publisher.
package service

import (
	"context"

	"github.com/deppfellow/crashmap/internal/events"
	"github.com/deppfellow/crashmap/internal/lib/job"
	"github.com/deppfellow/crashmap/internal/repository"
	"github.com/deppfellow/crashmap/internal/server"
	"github.com/rs/zerolog"
)

type Services struct {
	Intersection *IntersectionService
	Collision    *CollisionService
	Danger       *DangerService
}

// NewServices wires the services to the repositories. Collision updates go
// through the job queue when Redis is available and are dropped otherwise.
func NewServices(s *server.Server, repos *repository.Repositories) (*Services, error) {
	var publisher events.Publisher = events.NopPublisher{}
	if s.Job != nil {
		publisher = job.NewQueuedPublisher(s.Job.Client)
	}

	return &Services{
		Intersection: NewIntersectionService(s.Logger, repos.Intersection),
		Collision:    NewCollisionService(s.Logger, repos.Collision, publisher),
		Danger:       NewDangerService(repos.Danger),
	}, nil
}

// loggerFrom prefers the request-scoped logger carried by ctx.
func loggerFrom(ctx context.Context, fallback *zerolog.Logger) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return fallback
}
