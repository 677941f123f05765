package usecase

import (
	"context"
	"errors"
	"fmt"

	"seminar-ticketing/internal/data/entity"
	"seminar-ticketing/internal/data/repository"
	"seminar-ticketing/internal/dto/request"
	"seminar-ticketing/internal/dto/response"
	"seminar-ticketing/pkg/clock"
	"seminar-ticketing/pkg/utils"

	"go.uber.org/zap"
)

// PaymentService records payments against existing tickets. A payment never
// changes the ticket or the seminar's registered count.
type PaymentService interface {
	ProcessPayment(ctx context.Context, req *request.ProcessPaymentRequest) (*response.PaymentResponse, error)
	GetTicketPayments(ctx context.Context, ticketID int64) ([]response.PaymentResponse, error)
}

type paymentService struct {
	repo  *repository.Repository
	clock clock.Clock
	log   *zap.Logger
}

func NewPaymentService(repo *repository.Repository, clk clock.Clock, log *zap.Logger) PaymentService {
	return &paymentService{
		repo:  repo,
		clock: clk,
		log:   log.With(zap.String("service", "payment")),
	}
}

func (s *paymentService) ProcessPayment(ctx context.Context, req *request.ProcessPaymentRequest) (*response.PaymentResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Process payment validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}

	ticket, err := s.repo.Ticket.FindByID(ctx, req.TicketID)
	if err != nil {
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	if ticket == nil {
		return nil, fmt.Errorf("%w: id %d", ErrTicketNotFound, req.TicketID)
	}

	now := s.clock.Now()
	payment := &entity.Payment{
		BaseUpdatable: entity.BaseUpdatable{
			Base:      entity.Base{CreatedAt: now},
			UpdatedAt: now,
		},
		TicketID:       ticket.ID,
		Method:         entity.PaymentMethod(req.Method),
		Amount:         req.Amount,
		Status:         entity.PaymentStatusSuccess,
		TransactionRef: utils.GenerateTransactionRef(),
	}

	if err := s.repo.Payment.Create(ctx, payment); err != nil {
		if errors.Is(err, repository.ErrReferenceMissing) {
			return nil, fmt.Errorf("%w: id %d", ErrTicketNotFound, req.TicketID)
		}
		return nil, fmt.Errorf("create payment: %w", err)
	}

	s.log.Info("Payment processed",
		zap.Int64("payment_id", payment.ID),
		zap.Int64("ticket_id", payment.TicketID),
		zap.String("method", string(payment.Method)),
		zap.Float64("amount", payment.Amount),
		zap.String("transaction_ref", payment.TransactionRef),
	)

	resp := response.PaymentToResponse(payment)
	return &resp, nil
}

func (s *paymentService) GetTicketPayments(ctx context.Context, ticketID int64) ([]response.PaymentResponse, error) {
	ticket, err := s.repo.Ticket.FindByID(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	if ticket == nil {
		return nil, fmt.Errorf("%w: id %d", ErrTicketNotFound, ticketID)
	}

	payments, err := s.repo.Payment.FindByTicketID(ctx, ticketID)
	if err != nil {
		s.log.Error("Failed to get ticket payments", zap.Error(err), zap.Int64("ticket_id", ticketID))
		return nil, fmt.Errorf("get ticket payments: %w", err)
	}

	items := make([]response.PaymentResponse, len(payments))
	for i, p := range payments {
		items[i] = response.PaymentToResponse(p)
	}
	return items, nil
}
