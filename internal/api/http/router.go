package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/inquiry-service/internal/api/http/handlers"
	"github.com/spec-kit/inquiry-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Inquiries      *handlers.InquiriesHandler
	AdminInquiries *handlers.AdminInquiriesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle)

	student := protected.Group("/inquiries", auth.RequireStudent())
	student.Post("/", cfg.Inquiries.CreateInquiry)
	student.Get("/", cfg.Inquiries.ListInquiries)

	admin := protected.Group("/admin/inquiries", auth.RequireAdmin())
	admin.Get("/", cfg.AdminInquiries.ListInquiries)
	admin.Get("/stats", cfg.AdminInquiries.Stats)
	admin.Put("/bulk", cfg.AdminInquiries.BulkUpdate)
	admin.Get("/:id", cfg.AdminInquiries.GetInquiry)
	admin.Put("/:id/status", cfg.AdminInquiries.UpdateStatus)
	admin.Put("/:id/respond", cfg.AdminInquiries.Respond)
	admin.Delete("/:id", cfg.AdminInquiries.DeleteInquiry)
}
