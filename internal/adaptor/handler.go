package adaptor

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"seminar-ticketing/internal/usecase"
	"seminar-ticketing/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Seminar *SeminarHandler
	Student *StudentHandler
	Ticket  *TicketHandler
	Payment *PaymentHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Seminar: NewSeminarHandler(service.Seminar, log),
		Student: NewStudentHandler(service.Student, log),
		Ticket:  NewTicketHandler(service.Ticket, log),
		Payment: NewPaymentHandler(service.Payment, log),
	}
}

// handleServiceError maps service errors to HTTP responses
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	errMsg := err.Error()

	switch {
	case errors.Is(err, usecase.ErrSeminarNotFound),
		errors.Is(err, usecase.ErrStudentNotFound),
		errors.Is(err, usecase.ErrTicketNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, errMsg)

	case errors.Is(err, usecase.ErrSeminarFull):
		log.Info(operation+" rejected - seminar full", zap.Error(err))
		utils.ResponseConflict(w, "Seminar is full")

	case errors.Is(err, usecase.ErrEncodingFailed):
		log.Error(operation+" failed - qr encoding", zap.Error(err))
		utils.ResponseUnavailable(w, "Ticket could not be issued, please retry")

	case errors.Is(err, usecase.ErrValidation),
		strings.Contains(errMsg, "validation failed"):
		log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, errMsg, nil)

	case errors.Is(err, context.DeadlineExceeded):
		log.Warn(operation+" timed out", zap.Error(err))
		utils.ResponseUnavailable(w, "Request timed out, please retry")

	default:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

func paginationFromQuery(r *http.Request) (page, perPage int) {
	query := r.URL.Query()
	return utils.ParseInt(query.Get("page"), 1), utils.ParseInt(query.Get("per_page"), 10)
}
