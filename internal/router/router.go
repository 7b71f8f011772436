// Package router builds the echo instance: it installs the middleware
// chain and maps every path to its handler.
package router

import (
	"net/http"

	"github.com/deppfellow/crashmap/internal/handler"
	"github.com/deppfellow/crashmap/internal/middleware"
	"github.com/deppfellow/crashmap/internal/model"
	"github.com/deppfellow/crashmap/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter returns the configured echo instance. Middleware order matters:
// the request id and New Relic transaction exist before the context logger
// is built, and Recover sits innermost so a panic still flows through the
// request logger and the error handler.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Metrics.Collect(),
		middlewares.RateLimit.Limiter(),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middlewares.Global.Recover(),
	)

	registerSystemRoutes(router, h)
	registerIntersectionRoutes(router, h)
	registerCollisionRoutes(router, h)
	registerDangerRoutes(router, h)

	return router
}

func registerIntersectionRoutes(r *echo.Echo, h *handler.Handlers) {
	base := h.Intersection.Handler

	r.GET("/intersections", handler.Handle(base, h.Intersection.List, http.StatusOK, &model.ListIntersectionsPayload{}))
	r.GET("/intersection/:intersectionName", handler.Handle(base, h.Intersection.Get, http.StatusOK, &model.GetIntersectionPayload{}))
	r.GET(
		"/intersectionsWithinRange/:minLatitude/:maxLatitude/:minLongitude/:maxLongitude",
		handler.Handle(base, h.Intersection.WithinRange, http.StatusOK, &model.WithinRangePayload{}),
	)
	r.GET("/intersectionsWithStreet/:streetName", handler.Handle(base, h.Intersection.WithStreet, http.StatusOK, &model.WithStreetPayload{}))
	r.POST(
		"/addNewIntersection/:intersectionName/:latitude/:longitude",
		handler.HandleText(base, h.Intersection.Add, handler.IntersectionAdded, &model.AddIntersectionPayload{}),
	)
}

func registerCollisionRoutes(r *echo.Echo, h *handler.Handlers) {
	base := h.Collision.Handler

	r.POST(
		"/updateCollisions/:intersectionName/:numCollisions",
		handler.HandleText(base, h.Collision.Set, handler.CollisionsUpdated, &model.UpdateCollisionsPayload{}),
	)
	r.POST("/addCollision/:intersectionName", handler.HandleText(base, h.Collision.Increment, handler.CollisionAdded, &model.AddCollisionPayload{}))
}

func registerDangerRoutes(r *echo.Echo, h *handler.Handlers) {
	base := h.Danger.Handler

	r.GET(
		"/compareIntersections/:firstIntersection/:secondIntersection",
		handler.Handle(base, h.Danger.Compare, http.StatusOK, &model.CompareIntersectionsPayload{}),
	)
	r.GET("/collisions/:displayNum", handler.Handle(base, h.Danger.Top, http.StatusOK, &model.TopDangerousPayload{}))
}
