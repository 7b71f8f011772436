package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/crashmap/internal/config"
	"github.com/deppfellow/crashmap/internal/errs"
	"github.com/deppfellow/crashmap/internal/handler"
	"github.com/deppfellow/crashmap/internal/model"
	"github.com/deppfellow/crashmap/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIntersections struct {
	rows     []model.Intersection
	got      string
	rangeArg *model.WithinRangePayload
	added    []model.AddIntersectionPayload
	err      error
}

func (f *fakeIntersections) List(context.Context, *model.ListIntersectionsPayload) ([]model.Intersection, error) {
	return f.rows, f.err
}

func (f *fakeIntersections) Get(_ context.Context, p *model.GetIntersectionPayload) ([]model.Intersection, error) {
	f.got = p.Name
	var out []model.Intersection
	for _, row := range f.rows {
		if row.Name == p.Name {
			out = append(out, row)
		}
	}
	if out == nil {
		out = []model.Intersection{}
	}
	return out, f.err
}

func (f *fakeIntersections) WithinRange(_ context.Context, p *model.WithinRangePayload) ([]model.Intersection, error) {
	f.rangeArg = p
	return []model.Intersection{}, f.err
}

func (f *fakeIntersections) WithStreet(_ context.Context, p *model.WithStreetPayload) ([]model.Intersection, error) {
	f.got = p.Street
	return []model.Intersection{}, f.err
}

func (f *fakeIntersections) Add(_ context.Context, p *model.AddIntersectionPayload) error {
	f.added = append(f.added, *p)
	return f.err
}

type fakeCollisions struct {
	set       []model.UpdateCollisionsPayload
	increment []string
	err       error
}

func (f *fakeCollisions) Set(_ context.Context, p *model.UpdateCollisionsPayload) error {
	if f.err != nil {
		return f.err
	}
	f.set = append(f.set, *p)
	return nil
}

func (f *fakeCollisions) Increment(_ context.Context, p *model.AddCollisionPayload) error {
	if f.err != nil {
		return f.err
	}
	f.increment = append(f.increment, p.Name)
	return nil
}

type fakeDanger struct {
	rows    []model.Danger
	compare [2]string
	top     int
}

func (f *fakeDanger) Compare(_ context.Context, p *model.CompareIntersectionsPayload) ([]model.Danger, error) {
	f.compare = [2]string{p.First, p.Second}
	return f.rows, nil
}

func (f *fakeDanger) Top(_ context.Context, p *model.TopDangerousPayload) ([]model.Danger, error) {
	f.top = p.DisplayNum
	if p.DisplayNum == 0 {
		return []model.Danger{}, nil
	}
	return f.rows, nil
}

type testAPI struct {
	echo          *echo.Echo
	intersections *fakeIntersections
	collisions    *fakeCollisions
	danger        *fakeDanger
}

func newTestAPI(t *testing.T, mutate ...func(*config.Config)) *testAPI {
	t.Helper()

	cfg := config.Default()
	cfg.Primary.Env = "local"
	for _, m := range mutate {
		m(cfg)
	}

	log := zerolog.Nop()
	s := &server.Server{Config: cfg, Logger: &log}

	api := &testAPI{
		intersections: &fakeIntersections{},
		collisions:    &fakeCollisions{},
		danger:        &fakeDanger{},
	}

	h := &handler.Handlers{
		Health:       handler.NewHealthHandler(s),
		OpenAPI:      handler.NewOpenAPIHandler(s),
		Banner:       handler.NewBannerHandler(s),
		Intersection: handler.NewIntersectionHandler(s, api.intersections),
		Collision:    handler.NewCollisionHandler(s, api.collisions),
		Danger:       handler.NewDangerHandler(s, api.danger),
	}

	api.echo = NewRouter(s, h)
	return api
}

func (a *testAPI) do(method, target string) *httptest.ResponseRecorder {
	return a.doWithBody(method, target, "")
}

func (a *testAPI) doWithBody(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errs.HTTPError {
	t.Helper()

	var body errs.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func int32Ptr(v int32) *int32 { return &v }

func TestBanner(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Backend App Engine Instance Running", rec.Body.String())
}

func TestListIntersections_NullableColumns(t *testing.T) {
	api := newTestAPI(t)
	api.intersections.rows = []model.Intersection{
		{Name: "A St", Latitude: 1, Longitude: 2, NumCollisions: int32Ptr(10), North: int32Ptr(5), South: int32Ptr(5), East: int32Ptr(5), West: int32Ptr(5)},
		{Name: "B St", Latitude: 3, Longitude: 4},
	}

	rec := api.do(http.MethodGet, "/intersections")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[
		{"name":"A St","latitude":1,"longitude":2,"num_collisions":10,"north":5,"south":5,"east":5,"west":5},
		{"name":"B St","latitude":3,"longitude":4,"num_collisions":null,"north":null,"south":null,"east":null,"west":null}
	]`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestGetIntersection_UnknownIsEmptyArray(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/intersection/Nowhere")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestGetIntersection_DecodesName(t *testing.T) {
	api := newTestAPI(t)
	api.intersections.rows = []model.Intersection{{Name: "Main St & 1st Ave"}}

	rec := api.do(http.MethodGet, "/intersection/Main%20St%20%26%201st%20Ave")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Main St & 1st Ave", api.intersections.got)

	var rows []model.Intersection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Main St & 1st Ave", rows[0].Name)
}

func TestWithinRange_BindsBoundingBox(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/intersectionsWithinRange/-10.5/20/-30/40.25")

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, api.intersections.rangeArg)
	assert.Equal(t, model.WithinRangePayload{
		MinLatitude:  -10.5,
		MaxLatitude:  20,
		MinLongitude: -30,
		MaxLongitude: 40.25,
	}, *api.intersections.rangeArg)
}

func TestWithinRange_RejectsMalformedNumber(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/intersectionsWithinRange/abc/20/-30/40")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "BAD_REQUEST", body.Code)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "minLatitude", body.Errors[0].Field)
	assert.Nil(t, api.intersections.rangeArg)
}

func TestWithinRange_RejectsInvertedBox(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/intersectionsWithinRange/50/20/-30/40")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	require.NotEmpty(t, body.Errors)
	assert.Equal(t, "minLatitude", body.Errors[0].Field)
}

func TestWithStreet(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/intersectionsWithStreet/main")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "main", api.intersections.got)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestAddIntersection(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodPost, "/addNewIntersection/A%20St/12.5/-70.25")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Intersection Added", rec.Body.String())
	require.Len(t, api.intersections.added, 1)
	assert.Equal(t, model.AddIntersectionPayload{Name: "A St", Latitude: 12.5, Longitude: -70.25}, api.intersections.added[0])
}

func TestAddIntersection_RejectsOutOfRangeLatitude(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodPost, "/addNewIntersection/A/91/0")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "latitude", body.Errors[0].Field)
	assert.Empty(t, api.intersections.added)
}

func TestAddIntersection_RejectsNonFiniteCoordinates(t *testing.T) {
	api := newTestAPI(t)

	for _, target := range []string{"/addNewIntersection/A/NaN/0", "/addNewIntersection/A/0/Inf"} {
		rec := api.do(http.MethodPost, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
	assert.Empty(t, api.intersections.added)
}

func TestUpdateCollisions(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodPost, "/updateCollisions/A/7")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Collisions Updated", rec.Body.String())
	assert.Equal(t, []model.UpdateCollisionsPayload{{Name: "A", NumCollisions: 7}}, api.collisions.set)
}

func TestUpdateCollisions_RejectsNegativeAndMalformed(t *testing.T) {
	api := newTestAPI(t)

	for _, target := range []string{"/updateCollisions/A/-1", "/updateCollisions/A/seven", "/updateCollisions/A/1.5"} {
		rec := api.do(http.MethodPost, target)

		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		body := decodeError(t, rec)
		require.NotEmpty(t, body.Errors, target)
		assert.Equal(t, "numCollisions", body.Errors[0].Field, target)
	}
	assert.Empty(t, api.collisions.set)
}

func TestWritesIgnoreRequestBody(t *testing.T) {
	api := newTestAPI(t)

	rec := api.doWithBody(http.MethodPost, "/updateCollisions/A%20St/7", `{"name":"B St","numCollisions":99}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []model.UpdateCollisionsPayload{{Name: "A St", NumCollisions: 7}}, api.collisions.set)

	rec = api.doWithBody(http.MethodPost, "/addNewIntersection/A/1/2", `{"latitude":45,"Name":"Z"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []model.AddIntersectionPayload{{Name: "A", Latitude: 1, Longitude: 2}}, api.intersections.added)
}

func TestReadsIgnoreQueryString(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/intersectionsWithStreet/main?Street=other&streetName=other")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "main", api.intersections.got)
}

func TestAddCollision(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodPost, "/addCollision/A")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Collision Added", rec.Body.String())
	assert.Equal(t, []string{"A"}, api.collisions.increment)
}

func TestAddCollision_UnknownIntersection(t *testing.T) {
	api := newTestAPI(t)
	api.collisions.err = errs.NewIntersectionNotFoundError("Ghost")

	rec := api.do(http.MethodPost, "/addCollision/Ghost")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, errs.CodeIntersectionNotFound, decodeError(t, rec).Code)
}

func TestServiceFailureIsInternalError(t *testing.T) {
	api := newTestAPI(t)
	api.intersections.err = errors.New("connection reset")

	rec := api.do(http.MethodGet, "/intersections")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", body.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestCompareIntersections(t *testing.T) {
	api := newTestAPI(t)
	api.danger.rows = []model.Danger{{Name: "A", NumCollisions: 10, TotalTraffic: 20, DangerRatio: 0.5}}

	rec := api.do(http.MethodGet, "/compareIntersections/A/B")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, [2]string{"A", "B"}, api.danger.compare)
	assert.JSONEq(t, `[{"name":"A","num_collisions":10,"total_traffic":20,"danger_ratio":0.5}]`, rec.Body.String())
}

func TestTopCollisions(t *testing.T) {
	api := newTestAPI(t)
	api.danger.rows = []model.Danger{{Name: "A", NumCollisions: 10, TotalTraffic: 20, DangerRatio: 0.5}}

	rec := api.do(http.MethodGet, "/collisions/3")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, api.danger.top)

	rec = api.do(http.MethodGet, "/collisions/0")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestTopCollisions_RejectsMalformedCount(t *testing.T) {
	api := newTestAPI(t)

	for _, target := range []string{"/collisions/abc", "/collisions/-2"} {
		rec := api.do(http.MethodGet, target)

		require.Equal(t, http.StatusBadRequest, rec.Code, target)
		body := decodeError(t, rec)
		require.NotEmpty(t, body.Errors, target)
		assert.Equal(t, "displayNum", body.Errors[0].Field, target)
	}
}

func TestUnknownRoute(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/nope")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, rec).Code)
}

func TestRateLimit(t *testing.T) {
	api := newTestAPI(t, func(cfg *config.Config) {
		cfg.Server.RateLimit = 1
	})

	// Burst is twice the rate.
	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/intersections").Code)
	}

	rec := api.do(http.MethodGet, "/intersections")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, "TOO_MANY_REQUESTS", decodeError(t, rec).Code)

	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/status").Code)
}

func TestSystemRoutes(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)

	rec = api.do(http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "crashmap_http_requests_total")

	rec = api.do(http.MethodGet, "/static/openapi.json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/addCollision/{intersectionName}")

	rec = api.do(http.MethodGet, "/docs")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Body.String(), "/static/openapi.json")
}
