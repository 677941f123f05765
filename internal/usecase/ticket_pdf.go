package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"seminar-ticketing/internal/data/entity"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"
)

var errPDFDisabled = errors.New("ticket pdf export is not configured")

// TicketPDF renders a one page ticket with the QR code embedded. It returns the
// document and a suggested file name.
func (s *ticketService) TicketPDF(ctx context.Context, ticketID int64) ([]byte, string, error) {
	if s.png == nil {
		return nil, "", errPDFDisabled
	}

	ticket, err := s.findTicket(ctx, ticketID)
	if err != nil {
		return nil, "", err
	}

	seminar, err := s.repo.Seminar.FindByID(ctx, ticket.SeminarID)
	if err != nil {
		return nil, "", fmt.Errorf("get seminar: %w", err)
	}
	if seminar == nil {
		return nil, "", fmt.Errorf("%w: id %d", ErrSeminarNotFound, ticket.SeminarID)
	}

	student, err := s.repo.Student.FindByID(ctx, ticket.StudentID)
	if err != nil {
		return nil, "", fmt.Errorf("get student: %w", err)
	}
	if student == nil {
		return nil, "", fmt.Errorf("%w: id %d", ErrStudentNotFound, ticket.StudentID)
	}

	qrPNG, err := s.png(ticket.QRContent)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrEncodingFailed, err)
	}

	doc, err := renderTicketPDF(ticket, seminar, student, qrPNG)
	if err != nil {
		s.log.Error("Failed to render ticket pdf", zap.Error(err), zap.Int64("ticket_id", ticketID))
		return nil, "", fmt.Errorf("render ticket pdf: %w", err)
	}

	return doc, fmt.Sprintf("ticket-%d.pdf", ticket.ID), nil
}

func renderTicketPDF(ticket *entity.Ticket, seminar *entity.Seminar, student *entity.Student, qrPNG []byte) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "SEMINAR TICKET", "", 1, "C", false, 0, "")
	pdf.SetDrawColor(220, 220, 220)
	pdf.Line(12, pdf.GetY()+2, 136, pdf.GetY()+2)
	pdf.Ln(8)

	drawSectionTitle(pdf, "SEMINAR")
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, seminar.Title, "", "L", false)
	pdf.Ln(3)

	drawSectionTitle(pdf, "ATTENDEE")
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Name: %s", student.Name))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Email: %s", student.Email))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Ticket No: %d", ticket.ID))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Issued: %s", ticket.CreatedAt.Format("2006-01-02 15:04 MST")))
	pdf.Ln(10)

	opts := gofpdf.ImageOptions{ImageType: "png"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 44, pdf.GetY(), 60, 0, false, opts, 0, "")

	pdf.SetY(196)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, "Present this QR code at the entrance.", "", 0, "C", false, 0, "")

	if err := pdf.Error(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawSectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(0, 8, title, "", 1, "L", true, 0, "")
	pdf.Ln(2)
}
