package handler

import (
	"fmt"
	"io/fs"
	"net/http"

	"github.com/deppfellow/crashmap/internal/server"
	"github.com/deppfellow/crashmap/static"
	"github.com/labstack/echo/v4"
)

// OpenAPIHandler serves the documentation UI, which loads
// /static/openapi.json.
type OpenAPIHandler struct {
	Handler
	docs fs.FS
}

func NewOpenAPIHandler(s *server.Server) *OpenAPIHandler {
	return &OpenAPIHandler{
		Handler: NewHandler(s),
		docs:    static.FS,
	}
}

func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	page, err := fs.ReadFile(h.docs, "openapi.html")

	c.Response().Header().Set("Cache-Control", "no-cache")

	if err != nil {
		return fmt.Errorf("failed to read OpenAPI UI template: %w", err)
	}

	if err := c.HTMLBlob(http.StatusOK, page); err != nil {
		return fmt.Errorf("failed to write HTML response: %w", err)
	}

	return nil
}
