package adaptor

import (
	"encoding/json"
	"net/http"

	"seminar-ticketing/internal/dto/request"
	"seminar-ticketing/internal/usecase"
	"seminar-ticketing/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	service usecase.PaymentService
	log     *zap.Logger
}

func NewPaymentHandler(service usecase.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log.With(zap.String("handler", "payment")),
	}
}

// ProcessPayment handles POST /api/payments
func (h *PaymentHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	var req request.ProcessPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	payment, err := h.service.ProcessPayment(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "process payment")
		return
	}

	utils.ResponseCreated(w, "Payment processed successfully", payment)
}

// GetTicketPayments handles GET /api/tickets/{id}/payments
func (h *PaymentHandler) GetTicketPayments(w http.ResponseWriter, r *http.Request) {
	ticketID, err := utils.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid ticket ID", nil)
		return
	}

	payments, err := h.service.GetTicketPayments(r.Context(), ticketID)
	if err != nil {
		handleServiceError(w, h.log, err, "get ticket payments")
		return
	}

	utils.ResponseSuccess(w, "success", payments)
}
