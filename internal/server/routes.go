package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"golists/internal/handlers/api"
	"golists/internal/middleware"
	"golists/internal/pipeline"
)

// Store is everything the HTTP layer reads directly. *db.DB implements it.
type Store interface {
	api.Store
	api.Pinger
	middleware.UserStore
}

// Deps are the collaborators routes are wired to.
type Deps struct {
	Pipeline *pipeline.Pipeline
	Store    Store
	Words    api.WordRefresher
	Gatherer prometheus.Gatherer // nil serves the default registry
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(d Deps) {
	auth := middleware.NewAuthMiddleware(d.Store, s.Cfg.IdentityHeader, s.log)

	comments := api.NewCommentHandler(d.Pipeline, d.Store)
	moderation := api.NewModerationHandler(d.Pipeline, d.Store)
	users := api.NewUserHandler(d.Store, s.Cfg)
	notifications := api.NewNotificationHandler(d.Store)
	admin := api.NewAdminHandler(d.Store, d.Words, s.log)
	health := api.NewHealthHandler(d.Store)

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// Probes
	s.App.Get("/healthz", health.Healthz)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	r := s.App.Group("/api")

	// Public reads
	r.Get("/lists/:id/suggestions", auth.OptionalAuth, comments.ListSuggestions)

	// Comments and suggestions
	r.Post("/lists/:id/comments", auth.RequireAuth, comments.Submit)
	r.Post("/comments/:id/vote", auth.RequireAuth, comments.Vote)
	r.Put("/comments/:id", auth.RequireAuth, comments.Edit)
	r.Delete("/comments/:id", auth.RequireAuth, comments.Delete)
	r.Post("/comments/:id/report", auth.RequireAuth, comments.Report)
	r.Post("/comments/:id/approve", auth.RequireAuth, comments.Approve)
	r.Post("/comments/:id/reject", auth.RequireAuth, comments.Reject)

	// Moderation queues (moderators only)
	r.Get("/moderation/suggestions", auth.RequireAuth, moderation.ListPending)
	r.Get("/moderation/reports", auth.RequireAuth, moderation.ListReports)
	r.Get("/moderation/flagged", auth.RequireAuth, moderation.ListFlagged)
	r.Post("/reports/:id/resolve", auth.RequireAuth, moderation.ResolveReport)

	// Users
	r.Get("/me", auth.RequireAuth, users.Me)
	r.Get("/users/:id/trust", auth.RequireAuth, users.Trust)
	r.Get("/users/:id/penalties", auth.RequireAuth, users.Penalties)

	// Notifications
	r.Get("/notifications", auth.RequireAuth, notifications.List)
	r.Post("/notifications/:id/read", auth.RequireAuth, notifications.MarkRead)

	// Admin routes (admin only)
	r.Put("/admin/users/:id/role", auth.RequireAuth, users.UpdateRole)
	r.Get("/admin/badwords", auth.RequireAuth, admin.ListBadWords)
	r.Post("/admin/badwords", auth.RequireAuth, admin.AddBadWord)
	r.Delete("/admin/badwords/:word", auth.RequireAuth, admin.RemoveBadWord)
	r.Get("/admin/rate-limits", auth.RequireAuth, admin.GetRateLimits)
	r.Put("/admin/rate-limits", auth.RequireAuth, admin.UpdateRateLimits)
}
