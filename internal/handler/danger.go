package handler

import (
	"context"

	"github.com/deppfellow/crashmap/internal/model"
	"github.com/deppfellow/crashmap/internal/server"
	"github.com/labstack/echo/v4"
)

type DangerService interface {
	Compare(ctx context.Context, payload *model.CompareIntersectionsPayload) ([]model.Danger, error)
	Top(ctx context.Context, payload *model.TopDangerousPayload) ([]model.Danger, error)
}

type DangerHandler struct {
	Handler
	service DangerService
}

func NewDangerHandler(s *server.Server, service DangerService) *DangerHandler {
	return &DangerHandler{
		Handler: NewHandler(s),
		service: service,
	}
}

func (h *DangerHandler) Compare(c echo.Context, payload *model.CompareIntersectionsPayload) ([]model.Danger, error) {
	return h.service.Compare(c.Request().Context(), payload)
}

// Top ranks intersections by danger ratio, highest first.
func (h *DangerHandler) Top(c echo.Context, payload *model.TopDangerousPayload) ([]model.Danger, error) {
	return h.service.Top(c.Request().Context(), payload)
}
