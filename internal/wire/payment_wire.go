package wire

import (
	"seminar-ticketing/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wirePayment(r chi.Router, paymentHandler *adaptor.PaymentHandler) {
	r.Post("/api/payments", paymentHandler.ProcessPayment)
	r.Get("/api/tickets/{id}/payments", paymentHandler.GetTicketPayments)
}
