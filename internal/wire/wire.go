package wire

import (
	"seminar-ticketing/internal/adaptor"
	"seminar-ticketing/internal/data/repository"
	"seminar-ticketing/internal/usecase"
	"seminar-ticketing/pkg/middleware"
	"seminar-ticketing/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App holds the wired router
type App struct {
	Router *chi.Mux
}

// Wiring builds services, handlers and routes. db is only used by /health.
func Wiring(db Pinger, repo *repository.Repository, config *utils.Config, logger *zap.Logger) *App {
	service := usecase.NewService(repo, config, usecase.DefaultDeps(config), logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, db, config, logger)

	return &App{
		Router: router,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	db Pinger,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	wireSeminar(r, handler.Seminar, config, logger)
	wireTicket(r, handler.Ticket)
	wireStudent(r, handler.Student)
	wirePayment(r, handler.Payment)

	r.Get("/health", healthHandler(db, logger))

	return r
}
