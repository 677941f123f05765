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

type StudentRepository interface {
	Create(ctx context.Context, student *entity.Student) error
	FindByID(ctx context.Context, id int64) (*entity.Student, error)
	FindByEmail(ctx context.Context, email string) (*entity.Student, error)
}

type studentRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewStudentRepository(db database.PgxIface, log *zap.Logger) StudentRepository {
	return &studentRepository{
		db:  db,
		log: log.With(zap.String("repository", "student")),
	}
}

func (r *studentRepository) Create(ctx context.Context, student *entity.Student) error {
	query := `
		INSERT INTO students (name, email, phone, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := conn(ctx, r.db).QueryRow(ctx, query,
		student.Name,
		student.Email,
		student.Phone,
		student.CreatedAt,
	).Scan(&student.ID)

	if err != nil {
		r.log.Error("Failed to create student",
			zap.Error(err),
			zap.String("email", student.Email),
		)
		return fmt.Errorf("create student %s: %w", student.Email, err)
	}

	return nil
}

func (r *studentRepository) FindByID(ctx context.Context, id int64) (*entity.Student, error) {
	query := `
		SELECT id, name, email, phone, created_at
		FROM students
		WHERE id = $1
	`

	var student entity.Student
	err := conn(ctx, r.db).QueryRow(ctx, query, id).Scan(
		&student.ID,
		&student.Name,
		&student.Email,
		&student.Phone,
		&student.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find student by ID",
			zap.Error(err),
			zap.Int64("student_id", id),
		)
		return nil, fmt.Errorf("find student by ID %d: %w", id, err)
	}

	return &student, nil
}

// FindByEmail returns the oldest student with this email. Duplicates can exist
// after concurrent first-time signups; the oldest row is the canonical one.
func (r *studentRepository) FindByEmail(ctx context.Context, email string) (*entity.Student, error) {
	query := `
		SELECT id, name, email, phone, created_at
		FROM students
		WHERE email = $1
		ORDER BY id
		LIMIT 1
	`

	var student entity.Student
	err := conn(ctx, r.db).QueryRow(ctx, query, email).Scan(
		&student.ID,
		&student.Name,
		&student.Email,
		&student.Phone,
		&student.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find student by email",
			zap.Error(err),
			zap.String("email", email),
		)
		return nil, fmt.Errorf("find student by email %s: %w", email, err)
	}

	return &student, nil
}
