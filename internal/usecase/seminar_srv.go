package usecase

import (
	"context"
	"fmt"
	"strings"

	"seminar-ticketing/internal/data/entity"
	"seminar-ticketing/internal/data/repository"
	"seminar-ticketing/internal/dto/request"
	"seminar-ticketing/internal/dto/response"
	"seminar-ticketing/pkg/clock"
	"seminar-ticketing/pkg/utils"

	"go.uber.org/zap"
)

type SeminarService interface {
	// Admin
	CreateSeminar(ctx context.Context, req *request.CreateSeminarRequest) (*response.SeminarResponse, error)

	// Public
	GetSeminars(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.SeminarResponse], error)
	GetSeminarByID(ctx context.Context, seminarID int64) (*response.SeminarResponse, error)
}

type seminarService struct {
	repo  *repository.Repository
	clock clock.Clock
	log   *zap.Logger
}

func NewSeminarService(repo *repository.Repository, clk clock.Clock, log *zap.Logger) SeminarService {
	return &seminarService{
		repo:  repo,
		clock: clk,
		log:   log.With(zap.String("service", "seminar")),
	}
}

func (s *seminarService) CreateSeminar(ctx context.Context, req *request.CreateSeminarRequest) (*response.SeminarResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create seminar validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}

	seminar := &entity.Seminar{
		Base:        entity.Base{CreatedAt: s.clock.Now()},
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Capacity:    req.Capacity,
	}

	if err := s.repo.Seminar.Create(ctx, seminar); err != nil {
		s.log.Error("Failed to create seminar", zap.Error(err), zap.String("title", seminar.Title))
		return nil, fmt.Errorf("create seminar: %w", err)
	}

	s.log.Info("Seminar created",
		zap.Int64("seminar_id", seminar.ID),
		zap.Int("capacity", seminar.Capacity),
	)

	resp := response.SeminarToResponse(seminar)
	return &resp, nil
}

func (s *seminarService) GetSeminars(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.SeminarResponse], error) {
	seminars, err := s.repo.Seminar.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get seminars",
			zap.Error(err),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
		)
		return nil, fmt.Errorf("get seminars: %w", err)
	}

	total, err := s.repo.Seminar.CountAll(ctx)
	if err != nil {
		s.log.Error("Failed to count seminars", zap.Error(err))
		return nil, fmt.Errorf("count seminars: %w", err)
	}

	items := make([]response.SeminarResponse, len(seminars))
	for i, seminar := range seminars {
		items[i] = response.SeminarToResponse(seminar)
	}

	return response.NewPaginatedResponse(items, req.Page, req.Limit(), total), nil
}

func (s *seminarService) GetSeminarByID(ctx context.Context, seminarID int64) (*response.SeminarResponse, error) {
	seminar, err := s.repo.Seminar.FindByID(ctx, seminarID)
	if err != nil {
		s.log.Error("Failed to get seminar", zap.Error(err), zap.Int64("seminar_id", seminarID))
		return nil, fmt.Errorf("get seminar: %w", err)
	}
	if seminar == nil {
		return nil, fmt.Errorf("%w: id %d", ErrSeminarNotFound, seminarID)
	}

	resp := response.SeminarToResponse(seminar)
	return &resp, nil
}
