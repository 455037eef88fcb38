package rest

import (
	"database/sql"
	"log/slog"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/workstack/org-messaging/internal/auth"
	"github.com/workstack/org-messaging/internal/contacts"
	"github.com/workstack/org-messaging/internal/messaging"
	"github.com/workstack/org-messaging/internal/transport/middleware"
)

func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	authHandler *auth.Handler,
	messagingHandler *messaging.Handler,
	contactsHandler *contacts.Handler,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			pr.Route("/messages", func(mr chi.Router) {
				mr.Post("/direct", messagingHandler.SendDirect)
				mr.Post("/manager", messagingHandler.SendToManager)
				mr.Post("/hr", messagingHandler.SendToHR)
				mr.Post("/department", messagingHandler.SendToDepartment)
				mr.Post("/escalate", messagingHandler.EscalateIssue)

				mr.Get("/inbox", messagingHandler.ListInbox)
				mr.Get("/sent", messagingHandler.ListSent)
				mr.Get("/unread-count", messagingHandler.CountUnread)

				mr.Post("/{id}/read", messagingHandler.ReadMessage)
				mr.Post("/{id}/reply", messagingHandler.Reply)
			})

			pr.Route("/contacts", func(cr chi.Router) {
				cr.Get("/", contactsHandler.ListContacts)
				cr.Get("/{id}/can-message", messagingHandler.CheckCanMessage)
			})
		})
	})
}
