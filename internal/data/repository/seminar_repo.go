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

type SeminarRepository interface {
	Create(ctx context.Context, seminar *entity.Seminar) error
	FindByID(ctx context.Context, id int64) (*entity.Seminar, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.Seminar, error)
	CountAll(ctx context.Context) (int64, error)

	// LockByID reads the seminar with SELECT ... FOR UPDATE. It must run inside
	// WithTx; the row stays locked until that transaction ends.
	LockByID(ctx context.Context, id int64) (*entity.Seminar, error)
	IncrementRegistered(ctx context.Context, id int64) (int, error)
}

type seminarRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSeminarRepository(db database.PgxIface, log *zap.Logger) SeminarRepository {
	return &seminarRepository{
		db:  db,
		log: log.With(zap.String("repository", "seminar")),
	}
}

const seminarColumns = `id, title, description, capacity, registered_count, created_at`

func scanSeminar(row pgx.Row) (*entity.Seminar, error) {
	var s entity.Seminar
	err := row.Scan(
		&s.ID,
		&s.Title,
		&s.Description,
		&s.Capacity,
		&s.RegisteredCount,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *seminarRepository) Create(ctx context.Context, seminar *entity.Seminar) error {
	query := `
		INSERT INTO seminars (title, description, capacity, registered_count, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := conn(ctx, r.db).QueryRow(ctx, query,
		seminar.Title,
		seminar.Description,
		seminar.Capacity,
		seminar.RegisteredCount,
		seminar.CreatedAt,
	).Scan(&seminar.ID)

	if err != nil {
		r.log.Error("Failed to create seminar",
			zap.Error(err),
			zap.String("title", seminar.Title),
			zap.Int("capacity", seminar.Capacity),
		)
		return fmt.Errorf("create seminar %s: %w", seminar.Title, err)
	}

	return nil
}

func (r *seminarRepository) FindByID(ctx context.Context, id int64) (*entity.Seminar, error) {
	query := `SELECT ` + seminarColumns + ` FROM seminars WHERE id = $1`

	seminar, err := scanSeminar(conn(ctx, r.db).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find seminar by ID",
			zap.Error(err),
			zap.Int64("seminar_id", id),
		)
		return nil, fmt.Errorf("find seminar by ID %d: %w", id, err)
	}

	return seminar, nil
}

func (r *seminarRepository) LockByID(ctx context.Context, id int64) (*entity.Seminar, error) {
	if txFromContext(ctx) == nil {
		return nil, fmt.Errorf("lock seminar %d: no transaction in context", id)
	}

	query := `SELECT ` + seminarColumns + ` FROM seminars WHERE id = $1 FOR UPDATE`

	seminar, err := scanSeminar(conn(ctx, r.db).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to lock seminar",
			zap.Error(err),
			zap.Int64("seminar_id", id),
		)
		return nil, fmt.Errorf("lock seminar %d: %w", id, err)
	}

	return seminar, nil
}

func (r *seminarRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.Seminar, error) {
	query := `
		SELECT ` + seminarColumns + `
		FROM seminars
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := conn(ctx, r.db).Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to list seminars",
			zap.Error(err),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find all seminars limit %d offset %d: %w", limit, offset, err)
	}
	defer rows.Close()

	var seminars []*entity.Seminar
	for rows.Next() {
		seminar, err := scanSeminar(rows)
		if err != nil {
			r.log.Error("Failed to scan seminar row", zap.Error(err))
			return nil, fmt.Errorf("scan seminar row: %w", err)
		}
		seminars = append(seminars, seminar)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seminar rows: %w", err)
	}

	return seminars, nil
}

func (r *seminarRepository) CountAll(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM seminars`

	var count int64
	if err := conn(ctx, r.db).QueryRow(ctx, query).Scan(&count); err != nil {
		r.log.Error("Failed to count seminars", zap.Error(err))
		return 0, fmt.Errorf("count all seminars: %w", err)
	}

	return count, nil
}

// IncrementRegistered bumps registered_count by one and returns the new value.
// The capacity predicate makes the update a no-op when the seminar is full.
func (r *seminarRepository) IncrementRegistered(ctx context.Context, id int64) (int, error) {
	query := `
		UPDATE seminars
		SET registered_count = registered_count + 1
		WHERE id = $1 AND registered_count < capacity
		RETURNING registered_count
	`

	var count int
	err := conn(ctx, r.db).QueryRow(ctx, query, id).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) || isCheckViolation(err) {
		return 0, fmt.Errorf("increment seminar %d: %w", id, ErrCapacityExceeded)
	}
	if err != nil {
		r.log.Error("Failed to increment registered count",
			zap.Error(err),
			zap.Int64("seminar_id", id),
		)
		return 0, fmt.Errorf("increment seminar %d: %w", id, err)
	}

	return count, nil
}
