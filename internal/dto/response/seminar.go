package response

import (
	"time"

	"seminar-ticketing/internal/data/entity"
)

type SeminarResponse struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Capacity        int       `json:"capacity"`
	RegisteredCount int       `json:"registered_count"`
	Remaining       int       `json:"remaining"`
	CreatedAt       time.Time `json:"created_at"`
}

func SeminarToResponse(s *entity.Seminar) SeminarResponse {
	return SeminarResponse{
		ID:              s.ID,
		Title:           s.Title,
		Description:     s.Description,
		Capacity:        s.Capacity,
		RegisteredCount: s.RegisteredCount,
		Remaining:       s.Remaining(),
		CreatedAt:       s.CreatedAt,
	}
}
