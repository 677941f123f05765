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

type TicketHandler struct {
	service usecase.TicketService
	log     *zap.Logger
}

func NewTicketHandler(service usecase.TicketService, log *zap.Logger) *TicketHandler {
	return &TicketHandler{
		service: service,
		log:     log.With(zap.String("handler", "ticket")),
	}
}

// Book handles POST /api/tickets/book
func (h *TicketHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req request.BookTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	receipt, err := h.service.Book(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "book ticket")
		return
	}

	utils.ResponseCreated(w, "Ticket booked successfully", receipt)
}

// GetTicket handles GET /api/tickets/{id}
func (h *TicketHandler) GetTicket(w http.ResponseWriter, r *http.Request) {
	ticketID, err := utils.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid ticket ID", nil)
		return
	}

	ticket, err := h.service.GetTicket(r.Context(), ticketID)
	if err != nil {
		handleServiceError(w, h.log, err, "get ticket")
		return
	}

	utils.ResponseSuccess(w, "success", ticket)
}

// DownloadPDF handles GET /api/tickets/{id}/pdf
func (h *TicketHandler) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	ticketID, err := utils.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid ticket ID", nil)
		return
	}

	doc, filename, err := h.service.TicketPDF(r.Context(), ticketID)
	if err != nil {
		handleServiceError(w, h.log, err, "render ticket pdf")
		return
	}

	utils.ResponseFile(w, "application/pdf", filename, doc)
}

// Verify handles POST /api/tickets/verify
func (h *TicketHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	result, err := h.service.VerifyTicket(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "verify ticket")
		return
	}

	utils.ResponseSuccess(w, result.Message, result)
}

// GetStudentTickets handles GET /api/students/{id}/tickets
func (h *TicketHandler) GetStudentTickets(w http.ResponseWriter, r *http.Request) {
	studentID, err := utils.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid student ID", nil)
		return
	}

	req := &request.PaginatedRequest{}
	req.Page, req.PerPage = paginationFromQuery(r)

	tickets, err := h.service.GetStudentTickets(r.Context(), studentID, req)
	if err != nil {
		handleServiceError(w, h.log, err, "get student tickets")
		return
	}

	utils.ResponseSuccess(w, "success", tickets)
}
