package adaptor

import (
	"net/http"

	"seminar-ticketing/internal/usecase"
	"seminar-ticketing/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type StudentHandler struct {
	service usecase.StudentService
	log     *zap.Logger
}

func NewStudentHandler(service usecase.StudentService, log *zap.Logger) *StudentHandler {
	return &StudentHandler{
		service: service,
		log:     log.With(zap.String("handler", "student")),
	}
}

// FindByEmail handles GET /api/students?email=
func (h *StudentHandler) FindByEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		utils.ResponseBadRequest(w, "Query parameter email is required", nil)
		return
	}

	student, err := h.service.GetStudentByEmail(r.Context(), email)
	if err != nil {
		handleServiceError(w, h.log, err, "find student by email")
		return
	}

	utils.ResponseSuccess(w, "success", student)
}

// GetStudent handles GET /api/students/{id}
func (h *StudentHandler) GetStudent(w http.ResponseWriter, r *http.Request) {
	studentID, err := utils.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid student ID", nil)
		return
	}

	student, err := h.service.GetStudentByID(r.Context(), studentID)
	if err != nil {
		handleServiceError(w, h.log, err, "get student")
		return
	}

	utils.ResponseSuccess(w, "success", student)
}
