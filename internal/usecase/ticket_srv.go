package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"seminar-ticketing/internal/data/entity"
	"seminar-ticketing/internal/data/repository"
	"seminar-ticketing/internal/dto/request"
	"seminar-ticketing/internal/dto/response"
	"seminar-ticketing/pkg/clock"
	"seminar-ticketing/pkg/qr"
	"seminar-ticketing/pkg/utils"

	"go.uber.org/zap"
)

type TicketService interface {
	// Book reserves a slot, resolves the student, renders the QR and persists
	// the ticket in one transaction. Nothing is left behind on failure.
	Book(ctx context.Context, req *request.BookTicketRequest) (*response.TicketReceipt, error)

	GetTicket(ctx context.Context, ticketID int64) (*response.TicketResponse, error)
	GetStudentTickets(ctx context.Context, studentID int64, req *request.PaginatedRequest) (*response.PaginatedResponse[response.TicketResponse], error)
	VerifyTicket(ctx context.Context, req *request.VerifyTicketRequest) (*response.TicketVerification, error)
	TicketPDF(ctx context.Context, ticketID int64) ([]byte, string, error)
}

type ticketService struct {
	repo     *repository.Repository
	clock    clock.Clock
	encoder  qr.Encoder
	renderer qr.Renderer
	png      func(content string) ([]byte, error)
	timeout  time.Duration
	log      *zap.Logger
}

func NewTicketService(repo *repository.Repository, config *utils.Config, deps Deps, log *zap.Logger) TicketService {
	return &ticketService{
		repo:     repo,
		clock:    deps.Clock,
		encoder:  deps.Encoder,
		renderer: deps.Renderer,
		png:      deps.PNG,
		timeout:  config.Ticket.BookingTimeout,
		log:      log.With(zap.String("service", "ticket")),
	}
}

type bookingStage int

const (
	stageStarted bookingStage = iota
	stageSlotReserved
	stageStudentResolved
	stageQrEncoded
	stageTicketPersisted
	stageCommitted
)

func (s bookingStage) String() string {
	switch s {
	case stageStarted:
		return "started"
	case stageSlotReserved:
		return "slot_reserved"
	case stageStudentResolved:
		return "student_resolved"
	case stageQrEncoded:
		return "qr_encoded"
	case stageTicketPersisted:
		return "ticket_persisted"
	case stageCommitted:
		return "committed"
	default:
		return "unknown"
	}
}

func (s *ticketService) Book(ctx context.Context, req *request.BookTicketRequest) (*response.TicketReceipt, error) {
	in := *req
	in.StudentName = strings.TrimSpace(in.StudentName)
	in.StudentEmail = normalizeEmail(in.StudentEmail)
	if errs := utils.ValidateStruct(&in); len(errs) > 0 {
		s.log.Warn("Book ticket validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}
	name, email := in.StudentName, in.StudentEmail

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var (
		stage   = stageStarted
		qrPath  string
		receipt *response.TicketReceipt
	)

	err := s.repo.Tx.WithTx(ctx, func(ctx context.Context) error {
		seminar, err := s.reserveSlot(ctx, req.SeminarID)
		if err != nil {
			return err
		}
		stage = stageSlotReserved

		student, err := s.resolveStudent(ctx, name, email)
		if err != nil {
			return err
		}
		stage = stageStudentResolved

		now := s.clock.Now()
		content, path := s.encoder.Encode(seminar.ID, student.ID, now)
		if err := s.renderer.Render(content, path); err != nil {
			return fmt.Errorf("%w: %v", ErrEncodingFailed, err)
		}
		qrPath = path
		stage = stageQrEncoded

		ticket := &entity.Ticket{
			Base:      entity.Base{CreatedAt: now},
			SeminarID: seminar.ID,
			StudentID: student.ID,
			QRContent: content,
			QRPath:    path,
			Active:    true,
		}
		if err := s.repo.Ticket.Create(ctx, ticket); err != nil {
			return fmt.Errorf("create ticket: %w", err)
		}
		stage = stageTicketPersisted

		if _, err := s.repo.Seminar.IncrementRegistered(ctx, seminar.ID); err != nil {
			if errors.Is(err, repository.ErrCapacityExceeded) {
				return fmt.Errorf("%w: id %d", ErrSeminarFull, seminar.ID)
			}
			return fmt.Errorf("increment registered count of seminar %d: %w", seminar.ID, err)
		}

		receipt = &response.TicketReceipt{
			TicketID:  ticket.ID,
			SeminarID: seminar.ID,
			StudentID: student.ID,
			QRPath:    path,
		}
		return nil
	})
	if err != nil {
		s.abort(req.SeminarID, stage, qrPath, err)
		return nil, err
	}
	stage = stageCommitted

	s.log.Info("Ticket booked",
		zap.Int64("ticket_id", receipt.TicketID),
		zap.Int64("seminar_id", receipt.SeminarID),
		zap.Int64("student_id", receipt.StudentID),
		zap.Stringer("stage", stage),
	)

	return receipt, nil
}

// reserveSlot takes the seminar row lock for the rest of the transaction and
// rejects the attempt when the seminar is missing or already full.
func (s *ticketService) reserveSlot(ctx context.Context, seminarID int64) (*entity.Seminar, error) {
	seminar, err := s.repo.Seminar.LockByID(ctx, seminarID)
	if err != nil {
		return nil, fmt.Errorf("lock seminar %d: %w", seminarID, err)
	}
	if seminar == nil {
		return nil, fmt.Errorf("%w: id %d", ErrSeminarNotFound, seminarID)
	}
	if seminar.IsFull() {
		return nil, fmt.Errorf("%w: id %d", ErrSeminarFull, seminarID)
	}
	return seminar, nil
}

// resolveStudent finds the student by email or creates one. An existing
// student keeps the name it was first registered with.
func (s *ticketService) resolveStudent(ctx context.Context, name, email string) (*entity.Student, error) {
	student, err := s.repo.Student.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find student by email: %w", err)
	}
	if student != nil {
		return student, nil
	}

	student = &entity.Student{
		Base:  entity.Base{CreatedAt: s.clock.Now()},
		Name:  name,
		Email: email,
	}
	if err := s.repo.Student.Create(ctx, student); err != nil {
		return nil, fmt.Errorf("create student: %w", err)
	}

	s.log.Debug("Student created", zap.Int64("student_id", student.ID))
	return student, nil
}

// abort runs after the transaction failed. A QR image rendered by this attempt
// is removed unless the commit itself failed and the ticket may exist.
func (s *ticketService) abort(seminarID int64, stage bookingStage, qrPath string, err error) {
	fields := []zap.Field{
		zap.Error(err),
		zap.Int64("seminar_id", seminarID),
		zap.Stringer("stage", stage),
	}

	switch {
	case errors.Is(err, ErrSeminarNotFound), errors.Is(err, ErrSeminarFull):
		s.log.Warn("Booking rejected", fields...)
	default:
		s.log.Error("Booking aborted", fields...)
	}

	if qrPath == "" {
		return
	}
	if errors.Is(err, repository.ErrCommitFailed) {
		s.log.Warn("Commit outcome unknown, keeping qr image", zap.String("path", qrPath))
		return
	}
	if rmErr := s.renderer.Remove(qrPath); rmErr != nil {
		s.log.Warn("Failed to remove orphaned qr image", zap.Error(rmErr), zap.String("path", qrPath))
	}
}

func (s *ticketService) GetTicket(ctx context.Context, ticketID int64) (*response.TicketResponse, error) {
	ticket, err := s.findTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	resp := response.TicketToResponse(ticket)
	return &resp, nil
}

func (s *ticketService) findTicket(ctx context.Context, ticketID int64) (*entity.Ticket, error) {
	ticket, err := s.repo.Ticket.FindByID(ctx, ticketID)
	if err != nil {
		s.log.Error("Failed to get ticket", zap.Error(err), zap.Int64("ticket_id", ticketID))
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	if ticket == nil {
		return nil, fmt.Errorf("%w: id %d", ErrTicketNotFound, ticketID)
	}
	return ticket, nil
}

func (s *ticketService) GetStudentTickets(ctx context.Context, studentID int64, req *request.PaginatedRequest) (*response.PaginatedResponse[response.TicketResponse], error) {
	student, err := s.repo.Student.FindByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	if student == nil {
		return nil, fmt.Errorf("%w: id %d", ErrStudentNotFound, studentID)
	}

	tickets, err := s.repo.Ticket.FindByStudentID(ctx, studentID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get student tickets",
			zap.Error(err),
			zap.Int64("student_id", studentID),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
		)
		return nil, fmt.Errorf("get student tickets: %w", err)
	}

	total, err := s.repo.Ticket.CountByStudentID(ctx, studentID)
	if err != nil {
		s.log.Error("Failed to count student tickets", zap.Error(err))
		return nil, fmt.Errorf("count student tickets: %w", err)
	}

	items := make([]response.TicketResponse, len(tickets))
	for i, t := range tickets {
		items[i] = response.TicketToResponse(t)
	}

	return response.NewPaginatedResponse(items, req.Page, req.Limit(), total), nil
}

// VerifyTicket reports whether scanned QR content belongs to an active ticket.
// Unknown or malformed content is an invalid ticket, not an error.
func (s *ticketService) VerifyTicket(ctx context.Context, req *request.VerifyTicketRequest) (*response.TicketVerification, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	payload, err := qr.Parse(req.QRContent)
	if err != nil {
		return &response.TicketVerification{Message: "Malformed QR content"}, nil
	}

	if req.SeminarID != 0 && req.SeminarID != payload.SeminarID {
		return &response.TicketVerification{
			SeminarID: payload.SeminarID,
			StudentID: payload.StudentID,
			Message:   "Ticket belongs to another seminar",
		}, nil
	}

	ticket, err := s.repo.Ticket.FindByQRContent(ctx, req.QRContent)
	if err != nil {
		s.log.Error("Failed to look up ticket by qr content", zap.Error(err))
		return nil, fmt.Errorf("verify ticket: %w", err)
	}
	if ticket == nil || ticket.SeminarID != payload.SeminarID || ticket.StudentID != payload.StudentID {
		return &response.TicketVerification{
			SeminarID: payload.SeminarID,
			StudentID: payload.StudentID,
			Message:   "Ticket not found",
		}, nil
	}

	result := &response.TicketVerification{
		TicketID:  ticket.ID,
		SeminarID: ticket.SeminarID,
		StudentID: ticket.StudentID,
	}
	if !ticket.Active {
		result.Message = "Ticket is not active"
		return result, nil
	}

	result.Valid = true
	result.Message = "Ticket is valid"
	return result, nil
}

// normalizeEmail only trims. Matching is exact, so case differences are
// distinct students.
func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
