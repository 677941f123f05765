package wire

import (
	"seminar-ticketing/internal/adaptor"
	"seminar-ticketing/pkg/middleware"
	"seminar-ticketing/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireSeminar(
	r chi.Router,
	seminarHandler *adaptor.SeminarHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	r.Get("/api/seminars", seminarHandler.GetSeminars)
	r.Get("/api/seminars/{id}", seminarHandler.GetSeminarByID)

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/seminars", func(r chi.Router) {
		r.Use(middleware.AdminKey(config.Admin.KeyHash, log))

		r.Post("/", seminarHandler.CreateSeminar)
	})
}
