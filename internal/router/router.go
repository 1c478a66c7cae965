// Package router maps HTTP routes to handlers and attaches the
// middleware chain.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-seat-reservation/internal/handler"
	"github.com/iliyamo/train-seat-reservation/internal/middleware"
	"github.com/iliyamo/train-seat-reservation/internal/model"
)

// RegisterRoutes registers routes that require no authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires the auth endpoints.  Register, login, refresh and
// logout are open; /v1/me sits behind JWT auth.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout works from a refresh token alone, so it stays outside the
	// JWT middleware.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleAdmin, model.RoleCustomer))
	auth.GET("/me", a.Me)
}

// RegisterPublic wires the unauthenticated catalog endpoints.  The
// cache middleware, when non-nil, serves repeat seat-map and search
// GETs from Redis.
func RegisterPublic(e *echo.Echo, t *handler.TrainHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1")
	if cache != nil {
		g.Use(cache)
	}
	g.GET("/trains", t.Search)
	g.GET("/trains/:id", t.Get)
	g.GET("/trains/:id/seats", t.SeatMap)
}

// RegisterReservation wires the authenticated reservation endpoints.
// The rate limiter, when non-nil, guards the contended hold and
// commit writes.
func RegisterReservation(e *echo.Echo, h *handler.HoldHandler, b *handler.BookingHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin, model.RoleCustomer))
	if limiter != nil {
		g.Use(limiter)
	}
	g.POST("/trains/:id/hold", h.Acquire)
	g.DELETE("/holds/:hold_id", h.Release)
	g.POST("/holds/:hold_id/commit", b.Commit)
	g.GET("/my-bookings", b.List)
}

// RegisterAdmin wires the train provisioning endpoint, ADMIN only.
func RegisterAdmin(e *echo.Echo, t *handler.TrainHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin))
	g.POST("/trains", t.Create)
}
