package handler

import (
	"context"

	"github.com/deppfellow/crashmap/internal/model"
	"github.com/deppfellow/crashmap/internal/server"
	"github.com/labstack/echo/v4"
)

const (
	CollisionsUpdated = "Collisions Updated"
	CollisionAdded    = "Collision Added"
)

type CollisionService interface {
	Set(ctx context.Context, payload *model.UpdateCollisionsPayload) error
	Increment(ctx context.Context, payload *model.AddCollisionPayload) error
}

type CollisionHandler struct {
	Handler
	service CollisionService
}

func NewCollisionHandler(s *server.Server, service CollisionService) *CollisionHandler {
	return &CollisionHandler{
		Handler: NewHandler(s),
		service: service,
	}
}

func (h *CollisionHandler) Set(c echo.Context, payload *model.UpdateCollisionsPayload) error {
	return h.service.Set(c.Request().Context(), payload)
}

func (h *CollisionHandler) Increment(c echo.Context, payload *model.AddCollisionPayload) error {
	return h.service.Increment(c.Request().Context(), payload)
}
