package entity

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodEWallet      PaymentMethod = "E_WALLET"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

type Payment struct {
	BaseUpdatable
	TicketID       int64         `db:"ticket_id"`
	Method         PaymentMethod `db:"method"`
	Amount         float64       `db:"amount"`
	Status         PaymentStatus `db:"status"`
	TransactionRef string        `db:"transaction_ref"`
}
