package handlers

import (
	"time"

	"github.com/mailfleet/mailfleet/api/middleware"
	"github.com/mailfleet/mailfleet/config"
	"github.com/mailfleet/mailfleet/internal/logger"
	"github.com/mailfleet/mailfleet/internal/repository"
	"github.com/mailfleet/mailfleet/services"
)

type Handlers struct {
	JWT       *middleware.JWTManager
	Auth      *AuthHandler
	Companies *CompanyHandler
	Emails    *EmailHandler
}

func InitHandlers(cfg *config.Config, log logger.Logger, s *services.Services, repos *repository.Repositories) *Handlers {
	jwtManager := middleware.NewJWTManager(
		cfg.AuthConfig.JWTSecret,
		time.Duration(cfg.AuthConfig.TokenExpiryHours)*time.Hour,
	)

	return &Handlers{
		JWT:       jwtManager,
		Auth:      NewAuthHandler(log, repos, jwtManager),
		Companies: NewCompanyHandler(log, s),
		Emails:    NewEmailHandler(log, s, repos),
	}
}
