package handler

import (
	"net/http"

	"github.com/deppfellow/crashmap/internal/server"
	"github.com/labstack/echo/v4"
)

const BannerText = "Backend App Engine Instance Running"

// BannerHandler answers the root path so load balancers probing "/" see a
// live instance.
type BannerHandler struct {
	Handler
}

func NewBannerHandler(s *server.Server) *BannerHandler {
	return &BannerHandler{Handler: NewHandler(s)}
}

func (h *BannerHandler) Serve(c echo.Context) error {
	return c.String(http.StatusOK, BannerText)
}
