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

type TicketRepository interface {
	Create(ctx context.Context, ticket *entity.Ticket) error
	FindByID(ctx context.Context, id int64) (*entity.Ticket, error)
	FindByQRContent(ctx context.Context, content string) (*entity.Ticket, error)
	FindByStudentID(ctx context.Context, studentID int64, limit, offset int) ([]*entity.Ticket, error)
	CountByStudentID(ctx context.Context, studentID int64) (int64, error)
	// CountBySeminarID backs consistency checks between issued tickets and
	// the seminar's registered_count.
	CountBySeminarID(ctx context.Context, seminarID int64) (int64, error)
}

type ticketRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTicketRepository(db database.PgxIface, log *zap.Logger) TicketRepository {
	return &ticketRepository{
		db:  db,
		log: log.With(zap.String("repository", "ticket")),
	}
}

const ticketColumns = `id, seminar_id, student_id, qr_content, qr_path, active, created_at`

func scanTicket(row pgx.Row) (*entity.Ticket, error) {
	var t entity.Ticket
	err := row.Scan(
		&t.ID,
		&t.SeminarID,
		&t.StudentID,
		&t.QRContent,
		&t.QRPath,
		&t.Active,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *ticketRepository) Create(ctx context.Context, ticket *entity.Ticket) error {
	query := `
		INSERT INTO tickets (seminar_id, student_id, qr_content, qr_path, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := conn(ctx, r.db).QueryRow(ctx, query,
		ticket.SeminarID,
		ticket.StudentID,
		ticket.QRContent,
		ticket.QRPath,
		ticket.Active,
		ticket.CreatedAt,
	).Scan(&ticket.ID)

	if err != nil {
		r.log.Error("Failed to create ticket",
			zap.Error(err),
			zap.Int64("seminar_id", ticket.SeminarID),
			zap.Int64("student_id", ticket.StudentID),
		)
		if isForeignKeyViolation(err) {
			return fmt.Errorf("create ticket: %w", ErrReferenceMissing)
		}
		return fmt.Errorf("create ticket for seminar %d student %d: %w", ticket.SeminarID, ticket.StudentID, err)
	}

	return nil
}

func (r *ticketRepository) FindByID(ctx context.Context, id int64) (*entity.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	ticket, err := scanTicket(conn(ctx, r.db).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find ticket by ID",
			zap.Error(err),
			zap.Int64("ticket_id", id),
		)
		return nil, fmt.Errorf("find ticket by ID %d: %w", id, err)
	}

	return ticket, nil
}

func (r *ticketRepository) FindByQRContent(ctx context.Context, content string) (*entity.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE qr_content = $1`

	ticket, err := scanTicket(conn(ctx, r.db).QueryRow(ctx, query, content))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find ticket by QR content", zap.Error(err))
		return nil, fmt.Errorf("find ticket by qr content: %w", err)
	}

	return ticket, nil
}

func (r *ticketRepository) FindByStudentID(ctx context.Context, studentID int64, limit, offset int) ([]*entity.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE student_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := conn(ctx, r.db).Query(ctx, query, studentID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find tickets by student ID",
			zap.Error(err),
			zap.Int64("student_id", studentID),
		)
		return nil, fmt.Errorf("find tickets by student ID %d: %w", studentID, err)
	}
	defer rows.Close()

	var tickets []*entity.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			r.log.Error("Failed to scan ticket row", zap.Error(err))
			return nil, fmt.Errorf("scan ticket row: %w", err)
		}
		tickets = append(tickets, ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ticket rows: %w", err)
	}

	return tickets, nil
}

func (r *ticketRepository) CountByStudentID(ctx context.Context, studentID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM tickets WHERE student_id = $1`

	var count int64
	if err := conn(ctx, r.db).QueryRow(ctx, query, studentID).Scan(&count); err != nil {
		r.log.Error("Failed to count tickets by student ID",
			zap.Error(err),
			zap.Int64("student_id", studentID),
		)
		return 0, fmt.Errorf("count tickets by student ID %d: %w", studentID, err)
	}

	return count, nil
}

func (r *ticketRepository) CountBySeminarID(ctx context.Context, seminarID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM tickets WHERE seminar_id = $1`

	var count int64
	if err := conn(ctx, r.db).QueryRow(ctx, query, seminarID).Scan(&count); err != nil {
		r.log.Error("Failed to count tickets by seminar ID",
			zap.Error(err),
			zap.Int64("seminar_id", seminarID),
		)
		return 0, fmt.Errorf("count tickets by seminar ID %d: %w", seminarID, err)
	}

	return count, nil
}
