package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-room-allocation/internal/handler"
	"github.com/iliyamo/hotel-room-allocation/internal/middleware"
	"github.com/iliyamo/hotel-room-allocation/internal/model"
)

// Deps carries everything the routes need.  Cache and RateLimit may be nil.
type Deps struct {
	Auth      *handler.AuthHandler
	Rooms     *handler.RoomHandler
	Bookings  *handler.BookingHandler
	Admin     *handler.AdminHandler
	Status    echo.HandlerFunc
	JWTSecret string
	Cache     echo.MiddlewareFunc
	RateLimit echo.MiddlewareFunc
}

func orPass(m echo.MiddlewareFunc) echo.MiddlewareFunc {
	if m == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return m
}

// RegisterRoutes registers the health probes and the /v1 API.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)
	if d.Status != nil {
		e.GET("/v1/health", d.Status)
	}

	jwt := middleware.JWTAuth(d.JWTSecret)
	adminOnly := middleware.RequireRole(model.RoleAdmin)
	cache := orPass(d.Cache)

	// Unauthenticated operations exchange credentials or refresh tokens;
	// logout accepts either a refresh token or a bearer.
	a := e.Group("/v1/auth")
	a.POST("/register", d.Auth.Register)
	a.POST("/login", d.Auth.Login)
	a.POST("/refresh", d.Auth.Refresh)
	a.POST("/logout", d.Auth.Logout)
	a.GET("/me", d.Auth.Me, jwt)

	// Room listings are public and cached; the cache is purged on every
	// booking mutation.
	r := e.Group("/v1/rooms")
	r.GET("", d.Rooms.List, cache)
	r.GET("/stats", d.Rooms.Stats, cache)
	r.GET("/floor/:floor", d.Rooms.Floor, cache)
	r.GET("/number/:number", d.Rooms.Room, cache)
	r.POST("/random-occupancy", d.Admin.RandomOccupancy, jwt, adminOnly)
	r.POST("/reset-all", d.Admin.ResetAll, jwt, adminOnly)

	b := e.Group("/v1/bookings", jwt, middleware.RequireRole(model.RoleGuest, model.RoleAdmin))
	b.POST("", d.Bookings.Create, orPass(d.RateLimit))
	b.GET("", d.Bookings.All, adminOnly)
	b.GET("/mine", d.Bookings.Mine)
	b.GET("/:id", d.Bookings.Get)
	b.PUT("/:id/cancel", d.Bookings.Cancel)
}
