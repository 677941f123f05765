package usecase

import (
	"fmt"

	"seminar-ticketing/internal/data/repository"
	"seminar-ticketing/pkg/clock"
	"seminar-ticketing/pkg/qr"
	"seminar-ticketing/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Seminar SeminarService
	Student StudentService
	Ticket  TicketService
	Payment PaymentService
}

// Deps are the outbound collaborators of the services besides the database
type Deps struct {
	Clock    clock.Clock
	Encoder  qr.Encoder
	Renderer qr.Renderer
	// PNG renders a QR image in memory for documents; nil disables PDF export
	PNG func(content string) ([]byte, error)
}

// DefaultDeps builds the production collaborators from config
func DefaultDeps(config *utils.Config) Deps {
	renderer := qr.NewFileRenderer(config.Ticket.QRSize)
	return Deps{
		Clock:    clock.NewSystem(),
		Encoder:  qr.NewEncoder(config.Ticket.QRDir),
		Renderer: renderer,
		PNG:      renderer.PNG,
	}
}

func NewService(repo *repository.Repository, config *utils.Config, deps Deps, log *zap.Logger) *Service {
	return &Service{
		Seminar: NewSeminarService(repo, deps.Clock, log),
		Student: NewStudentService(repo, log),
		Ticket:  NewTicketService(repo, config, deps, log),
		Payment: NewPaymentService(repo, deps.Clock, log),
	}
}

func validationError(errs map[string]string) error {
	return fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
}
