package response

import (
	"time"

	"seminar-ticketing/internal/data/entity"
)

type PaymentResponse struct {
	ID             int64                `json:"id"`
	TicketID       int64                `json:"ticket_id"`
	Method         entity.PaymentMethod `json:"method"`
	Amount         float64              `json:"amount"`
	Status         entity.PaymentStatus `json:"status"`
	TransactionRef string               `json:"transaction_ref"`
	CreatedAt      time.Time            `json:"created_at"`
}

func PaymentToResponse(p *entity.Payment) PaymentResponse {
	return PaymentResponse{
		ID:             p.ID,
		TicketID:       p.TicketID,
		Method:         p.Method,
		Amount:         p.Amount,
		Status:         p.Status,
		TransactionRef: p.TransactionRef,
		CreatedAt:      p.CreatedAt,
	}
}
