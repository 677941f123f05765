package repository

import (
	"seminar-ticketing/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Tx      Transactor
	Seminar SeminarRepository
	Student StudentRepository
	Ticket  TicketRepository
	Payment PaymentRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Tx:      NewTransactor(db, log),
		Seminar: NewSeminarRepository(db, log),
		Student: NewStudentRepository(db, log),
		Ticket:  NewTicketRepository(db, log),
		Payment: NewPaymentRepository(db, log),
	}
}
