package usecase

import (
	"context"
	"fmt"

	"seminar-ticketing/internal/data/repository"
	"seminar-ticketing/internal/dto/response"

	"go.uber.org/zap"
)

type StudentService interface {
	GetStudentByID(ctx context.Context, studentID int64) (*response.StudentResponse, error)
	GetStudentByEmail(ctx context.Context, email string) (*response.StudentResponse, error)
}

type studentService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewStudentService(repo *repository.Repository, log *zap.Logger) StudentService {
	return &studentService{
		repo: repo,
		log:  log.With(zap.String("service", "student")),
	}
}

func (s *studentService) GetStudentByID(ctx context.Context, studentID int64) (*response.StudentResponse, error) {
	student, err := s.repo.Student.FindByID(ctx, studentID)
	if err != nil {
		s.log.Error("Failed to get student", zap.Error(err), zap.Int64("student_id", studentID))
		return nil, fmt.Errorf("get student: %w", err)
	}
	if student == nil {
		return nil, fmt.Errorf("%w: id %d", ErrStudentNotFound, studentID)
	}

	resp := response.StudentToResponse(student)
	return &resp, nil
}

// GetStudentByEmail trims like booking does, so it finds the student a
// booking resolved to.
func (s *studentService) GetStudentByEmail(ctx context.Context, email string) (*response.StudentResponse, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}

	student, err := s.repo.Student.FindByEmail(ctx, email)
	if err != nil {
		s.log.Error("Failed to get student by email", zap.Error(err))
		return nil, fmt.Errorf("get student by email: %w", err)
	}
	if student == nil {
		return nil, fmt.Errorf("%w: email %s", ErrStudentNotFound, email)
	}

	resp := response.StudentToResponse(student)
	return &resp, nil
}
