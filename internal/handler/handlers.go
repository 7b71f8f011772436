package handler

import (
	"github.com/deppfellow/crashmap/internal/server"
	"github.com/deppfellow/crashmap/internal/service"
)

// Handlers groups every HTTP handler so the router receives one value.
type Handlers struct {
	Health       *HealthHandler
	OpenAPI      *OpenAPIHandler
	Banner       *BannerHandler
	Intersection *IntersectionHandler
	Collision    *CollisionHandler
	Danger       *DangerHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(s),
		OpenAPI:      NewOpenAPIHandler(s),
		Banner:       NewBannerHandler(s),
		Intersection: NewIntersectionHandler(s, services.Intersection),
		Collision:    NewCollisionHandler(s, services.Collision),
		Danger:       NewDangerHandler(s, services.Danger),
	}
}
