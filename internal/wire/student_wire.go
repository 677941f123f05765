package wire

import (
	"seminar-ticketing/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireStudent(r chi.Router, studentHandler *adaptor.StudentHandler) {
	// GET /api/students?email=
	r.Get("/api/students", studentHandler.FindByEmail)
	r.Get("/api/students/{id}", studentHandler.GetStudent)
}
