package wire

import (
	"seminar-ticketing/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireTicket(r chi.Router, ticketHandler *adaptor.TicketHandler) {
	// POST /api/tickets/book - capacity-checked booking
	r.Post("/api/tickets/book", ticketHandler.Book)

	// POST /api/tickets/verify - check-in scan
	r.Post("/api/tickets/verify", ticketHandler.Verify)

	r.Get("/api/tickets/{id}", ticketHandler.GetTicket)
	r.Get("/api/tickets/{id}/pdf", ticketHandler.DownloadPDF)
	r.Get("/api/students/{id}/tickets", ticketHandler.GetStudentTickets)
}
