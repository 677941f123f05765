package response

import (
	"time"

	"seminar-ticketing/internal/data/entity"
)

// TicketReceipt is what a caller gets back from a successful booking
type TicketReceipt struct {
	TicketID  int64  `json:"ticket_id"`
	SeminarID int64  `json:"seminar_id"`
	StudentID int64  `json:"student_id"`
	QRPath    string `json:"qr_path"`
}

type TicketResponse struct {
	ID        int64     `json:"id"`
	SeminarID int64     `json:"seminar_id"`
	StudentID int64     `json:"student_id"`
	QRContent string    `json:"qr_content"`
	QRPath    string    `json:"qr_path"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type TicketVerification struct {
	Valid     bool   `json:"valid"`
	TicketID  int64  `json:"ticket_id,omitempty"`
	SeminarID int64  `json:"seminar_id,omitempty"`
	StudentID int64  `json:"student_id,omitempty"`
	Message   string `json:"message"`
}

func TicketToResponse(t *entity.Ticket) TicketResponse {
	return TicketResponse{
		ID:        t.ID,
		SeminarID: t.SeminarID,
		StudentID: t.StudentID,
		QRContent: t.QRContent,
		QRPath:    t.QRPath,
		Active:    t.Active,
		CreatedAt: t.CreatedAt,
	}
}
