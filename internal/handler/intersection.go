package handler

import (
	"context"

	"github.com/deppfellow/crashmap/internal/model"
	"github.com/deppfellow/crashmap/internal/server"
	"github.com/labstack/echo/v4"
)

// IntersectionAdded is the body returned by a successful add.
const IntersectionAdded = "Intersection Added"

type IntersectionService interface {
	List(ctx context.Context, payload *model.ListIntersectionsPayload) ([]model.Intersection, error)
	Get(ctx context.Context, payload *model.GetIntersectionPayload) ([]model.Intersection, error)
	WithinRange(ctx context.Context, payload *model.WithinRangePayload) ([]model.Intersection, error)
	WithStreet(ctx context.Context, payload *model.WithStreetPayload) ([]model.Intersection, error)
	Add(ctx context.Context, payload *model.AddIntersectionPayload) error
}

type IntersectionHandler struct {
	Handler
	service IntersectionService
}

func NewIntersectionHandler(s *server.Server, service IntersectionService) *IntersectionHandler {
	return &IntersectionHandler{
		Handler: NewHandler(s),
		service: service,
	}
}

func (h *IntersectionHandler) List(c echo.Context, payload *model.ListIntersectionsPayload) ([]model.Intersection, error) {
	return h.service.List(c.Request().Context(), payload)
}

// Get answers with a zero or one element array; an unknown name is not an
// error.
func (h *IntersectionHandler) Get(c echo.Context, payload *model.GetIntersectionPayload) ([]model.Intersection, error) {
	return h.service.Get(c.Request().Context(), payload)
}

func (h *IntersectionHandler) WithinRange(c echo.Context, payload *model.WithinRangePayload) ([]model.Intersection, error) {
	return h.service.WithinRange(c.Request().Context(), payload)
}

func (h *IntersectionHandler) WithStreet(c echo.Context, payload *model.WithStreetPayload) ([]model.Intersection, error) {
	return h.service.WithStreet(c.Request().Context(), payload)
}

func (h *IntersectionHandler) Add(c echo.Context, payload *model.AddIntersectionPayload) error {
	return h.service.Add(c.Request().Context(), payload)
}
