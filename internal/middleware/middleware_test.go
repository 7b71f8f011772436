package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/crashmap/internal/config"
	"github.com/deppfellow/crashmap/internal/errs"
	"github.com/deppfellow/crashmap/internal/server"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(out *bytes.Buffer) *server.Server {
	log := zerolog.New(out)
	return &server.Server{Config: config.Default(), Logger: &log}
}

func TestRequestID(t *testing.T) {
	e := echo.New()
	e.Use(RequestID())
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, GetRequestID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Body.String())
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", maxRequestIDLength+1))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Len(t, rec.Body.String(), 36)
	assert.NotEqual(t, strings.Repeat("x", maxRequestIDLength+1), rec.Body.String())
}

func TestEnhanceContext_RequestScopedLogger(t *testing.T) {
	var out bytes.Buffer
	s := newTestServer(&out)

	e := echo.New()
	e.Use(RequestID(), NewContextEnhancer(s).EnhanceContext())
	e.GET("/intersection/:intersectionName", func(c echo.Context) error {
		zerolog.Ctx(c.Request().Context()).Info().Msg("from context")
		GetLogger(c).Info().Msg("from echo")
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/intersection/A", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	e.ServeHTTP(httptest.NewRecorder(), req)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Contains(t, line, `"request_id":"req-1"`)
		assert.Contains(t, line, `"path":"/intersection/:intersectionName"`)
	}
}

func TestGetLogger_WithoutEnhancer(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.NotNil(t, GetLogger(c))
}

func serveError(t *testing.T, method string, err error) (*httptest.ResponseRecorder, string) {
	t.Helper()

	var out bytes.Buffer
	global := NewGlobalMiddlewares(newTestServer(&out))

	e := echo.New()
	e.HTTPErrorHandler = global.GlobalErrorHandler
	e.Any("/", func(echo.Context) error { return err })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, "/", nil))
	return rec, out.String()
}

func TestGlobalErrorHandler(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"http error", errs.NewIntersectionNotFoundError("A"), http.StatusNotFound, errs.CodeIntersectionNotFound},
		{"wrapped http error", errors.Join(errors.New("ctx"), errs.NewBadRequestError("bad", false, nil, nil, nil)), http.StatusBadRequest, "BAD_REQUEST"},
		{"echo method not allowed", echo.ErrMethodNotAllowed, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
		{"foreign key", &pgconn.PgError{Code: "23503", TableName: "collision"}, http.StatusNotFound, errs.CodeIntersectionNotFound},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := serveError(t, http.MethodGet, tt.err)

			require.Equal(t, tt.status, rec.Code)
			var body errs.HTTPError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.status, body.Status)
		})
	}
}

func TestGlobalErrorHandler_LogLevels(t *testing.T) {
	_, logs := serveError(t, http.MethodGet, errs.NewNotFoundError("missing", false, nil))
	assert.Contains(t, logs, `"level":"warn"`)

	_, logs = serveError(t, http.MethodGet, errors.New("boom"))
	assert.Contains(t, logs, `"level":"error"`)
}

func TestGlobalErrorHandler_HeadHasNoBody(t *testing.T) {
	rec, _ := serveError(t, http.MethodHead, errs.NewNotFoundError("missing", false, nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestRecover_PanicBecomesInternalError(t *testing.T) {
	var out bytes.Buffer
	global := NewGlobalMiddlewares(newTestServer(&out))

	e := echo.New()
	e.HTTPErrorHandler = global.GlobalErrorHandler
	e.Use(global.Recover())
	e.GET("/", func(echo.Context) error { panic("kaboom") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStatusFromError(t *testing.T) {
	assert.Equal(t, http.StatusOK, statusFromError(nil, http.StatusOK))
	assert.Equal(t, http.StatusTooManyRequests, statusFromError(errs.NewTooManyRequestsError(1), http.StatusOK))
	assert.Equal(t, http.StatusNotFound, statusFromError(echo.ErrNotFound, http.StatusOK))
	assert.Equal(t, http.StatusInternalServerError, statusFromError(errors.New("x"), http.StatusOK))
}
