package repository

import (
	"context"
	"errors"
	"fmt"

	"seminar-ticketing/internal/data/entity"
	"seminar-ticketing/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	FindByID(ctx context.Context, id int64) (*entity.Payment, error)
	FindByTicketID(ctx context.Context, ticketID int64) ([]*entity.Payment, error)
}

type paymentRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPaymentRepository(db database.PgxIface, log *zap.Logger) PaymentRepository {
	return &paymentRepository{
		db:  db,
		log: log.With(zap.String("repository", "payment")),
	}
}

const paymentColumns = `id, ticket_id, method, amount, status, transaction_ref, created_at, updated_at`

func scanPayment(row pgx.Row) (*entity.Payment, error) {
	var p entity.Payment
	err := row.Scan(
		&p.ID,
		&p.TicketID,
		&p.Method,
		&p.Amount,
		&p.Status,
		&p.TransactionRef,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	query := `
		INSERT INTO payments (ticket_id, method, amount, status, transaction_ref, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := conn(ctx, r.db).QueryRow(ctx, query,
		payment.TicketID,
		payment.Method,
		payment.Amount,
		payment.Status,
		payment.TransactionRef,
		payment.CreatedAt,
		payment.UpdatedAt,
	).Scan(&payment.ID)

	if err != nil {
		r.log.Error("Failed to create payment",
			zap.Error(err),
			zap.Int64("ticket_id", payment.TicketID),
			zap.String("method", string(payment.Method)),
		)
		if isForeignKeyViolation(err) {
			return fmt.Errorf("create payment for ticket %d: %w", payment.TicketID, ErrReferenceMissing)
		}
		return fmt.Errorf("create payment for ticket %d: %w", payment.TicketID, err)
	}

	return nil
}

func (r *paymentRepository) FindByID(ctx context.Context, id int64) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	payment, err := scanPayment(conn(ctx, r.db).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment by ID",
			zap.Error(err),
			zap.Int64("payment_id", id),
		)
		return nil, fmt.Errorf("find payment by ID %d: %w", id, err)
	}

	return payment, nil
}

func (r *paymentRepository) FindByTicketID(ctx context.Context, ticketID int64) ([]*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE ticket_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := conn(ctx, r.db).Query(ctx, query, ticketID)
	if err != nil {
		r.log.Error("Failed to find payments by ticket ID",
			zap.Error(err),
			zap.Int64("ticket_id", ticketID),
		)
		return nil, fmt.Errorf("find payments by ticket ID %d: %w", ticketID, err)
	}
	defer rows.Close()

	var payments []*entity.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			r.log.Error("Failed to scan payment row", zap.Error(err))
			return nil, fmt.Errorf("scan payment row: %w", err)
		}
		payments = append(payments, payment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment rows: %w", err)
	}

	return payments, nil
}
