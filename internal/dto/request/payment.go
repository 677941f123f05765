package request

type ProcessPaymentRequest struct {
	TicketID int64   `json:"ticket_id" validate:"required,gt=0"`
	Method   string  `json:"method" validate:"required,oneof=CASH CARD BANK_TRANSFER E_WALLET"`
	Amount   float64 `json:"amount" validate:"min=0"`
}
