package services

import (
	"github.com/mailfleet/mailfleet/config"
	"github.com/mailfleet/mailfleet/interfaces"
	"github.com/mailfleet/mailfleet/internal/logger"
	"github.com/mailfleet/mailfleet/internal/repository"
	"github.com/mailfleet/mailfleet/services/company"
	"github.com/mailfleet/mailfleet/services/email"
	"github.com/mailfleet/mailfleet/services/smtp"
)

type Services struct {
	Dispatcher     interfaces.Dispatcher
	CompanyService *company.Service
	EmailService   *email.Service
}

func InitServices(cfg *config.Config, log logger.Logger, repos *repository.Repositories) *Services {
	dispatcher := smtp.NewSMTPClient()
	companyService := company.NewService(repos)

	return &Services{
		Dispatcher:     dispatcher,
		CompanyService: companyService,
		EmailService:   email.NewService(cfg, log, repos, companyService, dispatcher),
	}
}
