package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hotel-booking-service/internal/api/http/handlers"
	"github.com/spec-kit/hotel-booking-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Bookings       *handlers.BookingsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/users/register", cfg.Users.Register)
	authGroup.Post("/users/login", cfg.Users.Login)

	bookings := app.Group("/bookings", cfg.AuthMiddleware.Handle)
	bookings.Get("/", cfg.Bookings.GetBooking)
	bookings.Post("/", cfg.Bookings.CreateBooking)
	bookings.Put("/:bookingId", cfg.Bookings.UpdateBooking)
}
