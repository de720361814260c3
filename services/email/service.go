package email

import (
	"github.com/pkg/errors"

	"github.com/mailfleet/mailfleet/config"
	"github.com/mailfleet/mailfleet/interfaces"
	"github.com/mailfleet/mailfleet/internal/logger"
	"github.com/mailfleet/mailfleet/internal/repository"
	"github.com/mailfleet/mailfleet/services/company"
)

const maxSubjectLength = 200

var (
	ErrRecipientRequired  = errors.New("recipient address is required")
	ErrInvalidRecipient   = errors.New("recipient address is not a valid email address")
	ErrInvalidCc          = errors.New("cc list contains an invalid email address")
	ErrSubjectRequired    = errors.New("subject is required")
	ErrSubjectTooLong     = errors.New("subject exceeds 200 characters")
	ErrBodyRequired       = errors.New("html content is required")
	ErrRecipientsRequired = errors.New("at least one recipient is required")
)

// Service owns the dispatch path: it validates requests, keeps the
// delivery ledger honest and hands the wire work to the dispatcher.
type Service struct {
	cfg          *config.Config
	log          logger.Logger
	repositories *repository.Repositories
	companies    *company.Service
	dispatcher   interfaces.Dispatcher
}

func NewService(cfg *config.Config, log logger.Logger, repos *repository.Repositories, companies *company.Service, dispatcher interfaces.Dispatcher) *Service {
	return &Service{
		cfg:          cfg,
		log:          log,
		repositories: repos,
		companies:    companies,
		dispatcher:   dispatcher,
	}
}
