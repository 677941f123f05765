package adaptor

import (
	"encoding/json"
	"net/http"

	"seminar-ticketing/internal/dto/request"
	"seminar-ticketing/internal/usecase"
	"seminar-ticketing/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type SeminarHandler struct {
	service usecase.SeminarService
	log     *zap.Logger
}

func NewSeminarHandler(service usecase.SeminarService, log *zap.Logger) *SeminarHandler {
	return &SeminarHandler{
		service: service,
		log:     log.With(zap.String("handler", "seminar")),
	}
}

// CreateSeminar handles POST /api/admin/seminars (admin)
func (h *SeminarHandler) CreateSeminar(w http.ResponseWriter, r *http.Request) {
	var req request.CreateSeminarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	seminar, err := h.service.CreateSeminar(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create seminar")
		return
	}

	utils.ResponseCreated(w, "Seminar created successfully", seminar)
}

// GetSeminars handles GET /api/seminars
func (h *SeminarHandler) GetSeminars(w http.ResponseWriter, r *http.Request) {
	req := &request.PaginatedRequest{}
	req.Page, req.PerPage = paginationFromQuery(r)

	seminars, err := h.service.GetSeminars(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "get seminars")
		return
	}

	utils.ResponseSuccess(w, "success", seminars)
}

// GetSeminarByID handles GET /api/seminars/{id}
func (h *SeminarHandler) GetSeminarByID(w http.ResponseWriter, r *http.Request) {
	seminarID, err := utils.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid seminar ID", nil)
		return
	}

	seminar, err := h.service.GetSeminarByID(r.Context(), seminarID)
	if err != nil {
		handleServiceError(w, h.log, err, "get seminar")
		return
	}

	utils.ResponseSuccess(w, "success", seminar)
}
