package company

import (
	"context"
	"strings"

	"github.com/customeros/mailsherpa/mailvalidate"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/mailfleet/mailfleet/internal/enum"
	"github.com/mailfleet/mailfleet/internal/models"
	"github.com/mailfleet/mailfleet/internal/repository"
	"github.com/mailfleet/mailfleet/internal/tracing"
	"github.com/mailfleet/mailfleet/internal/utils"
	"github.com/mailfleet/mailfleet/services/smtp"
)

const maxSignatureLength = 2000

var (
	ErrCompanyNotFound  = errors.New("company not found")
	ErrNameRequired     = errors.New("company name is required")
	ErrNameTaken        = errors.New("an active company with this name already exists")
	ErrSenderName       = errors.New("sender name is required")
	ErrSignatureTooLong = errors.New("signature exceeds the allowed length")
	ErrInvalidEmail     = errors.New("account email is not a valid address")
	ErrPasswordRequired = errors.New("account password is required")
	ErrCompanyNotActive = errors.New("company is not active")
)

type Service struct {
	repositories *repository.Repositories
}

func NewService(repos *repository.Repositories) *Service {
	return &Service{repositories: repos}
}

func (s *Service) List(ctx context.Context) ([]*models.Company, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "companyService.List")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	return s.repositories.CompanyRepository.ListActive(ctx, utils.GetUserIdFromContext(ctx))
}

// GetActive fetches a company and insists it is usable for sending.
func (s *Service) GetActive(ctx context.Context, id string) (*models.Company, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "companyService.GetActive")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagCompany(span, id)

	company, err := s.repositories.CompanyRepository.GetByID(ctx, utils.GetUserIdFromContext(ctx), id)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if company == nil {
		return nil, ErrCompanyNotFound
	}
	if !company.IsActive {
		return nil, ErrCompanyNotActive
	}
	return company, nil
}

func (s *Service) Create(ctx context.Context, company *models.Company) (*models.Company, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "companyService.Create")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	userID := utils.GetUserIdFromContext(ctx)
	company.UserID = userID
	company.IsActive = true
	company.Name = strings.TrimSpace(company.Name)

	if err := s.validate(ctx, company); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	taken, err := s.repositories.CompanyRepository.ExistsActiveName(ctx, userID, company.Name, "")
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if taken {
		return nil, ErrNameTaken
	}

	if err := s.repositories.CompanyRepository.Create(ctx, company); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return company, nil
}

// UpdatePatch is a partial update: nil fields keep their current value.
type UpdatePatch struct {
	Name          *string
	Description   *string
	EmailSettings *EmailSettingsPatch
	SenderInfo    *SenderInfoPatch
}

type EmailSettingsPatch struct {
	Provider    *string
	Email       *string
	AppPassword *string
	SMTPHost    *string
	SMTPPort    *int
	UseSSL      *bool
	UseTLS      *bool
}

type SenderInfoPatch struct {
	Name      *string
	Signature *string
}

func (s *Service) Update(ctx context.Context, id string, patch *UpdatePatch) (*models.Company, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "companyService.Update")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagCompany(span, id)

	userID := utils.GetUserIdFromContext(ctx)
	company, err := s.repositories.CompanyRepository.GetByID(ctx, userID, id)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if company == nil || !company.IsActive {
		return nil, ErrCompanyNotFound
	}

	applyPatch(company, patch)
	company.Name = strings.TrimSpace(company.Name)

	if err := s.validate(ctx, company); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	taken, err := s.repositories.CompanyRepository.ExistsActiveName(ctx, userID, company.Name, company.ID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if taken {
		return nil, ErrNameTaken
	}

	if err := s.repositories.CompanyRepository.Update(ctx, company); err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			return nil, ErrCompanyNotFound
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return company, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "companyService.Delete")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagCompany(span, id)

	err := s.repositories.CompanyRepository.SoftDelete(ctx, utils.GetUserIdFromContext(ctx), id)
	if errors.Is(err, repository.ErrCompanyNotFound) {
		return ErrCompanyNotFound
	}
	return err
}

func applyPatch(company *models.Company, patch *UpdatePatch) {
	if patch == nil {
		return
	}
	if patch.Name != nil {
		company.Name = *patch.Name
	}
	if patch.Description != nil {
		company.Description = *patch.Description
	}
	if es := patch.EmailSettings; es != nil {
		if es.Provider != nil {
			company.EmailSettings.Provider = enum.DecodeEmailProvider(*es.Provider)
		}
		if es.Email != nil {
			company.EmailSettings.Email = *es.Email
		}
		if es.AppPassword != nil {
			company.EmailSettings.AppPassword = *es.AppPassword
		}
		if es.SMTPHost != nil {
			company.EmailSettings.SMTPHost = *es.SMTPHost
		}
		if es.SMTPPort != nil {
			company.EmailSettings.SMTPPort = *es.SMTPPort
		}
		if es.UseSSL != nil {
			company.EmailSettings.UseSSL = *es.UseSSL
		}
		if es.UseTLS != nil {
			company.EmailSettings.UseTLS = *es.UseTLS
		}
	}
	if si := patch.SenderInfo; si != nil {
		if si.Name != nil {
			company.SenderInfo.Name = *si.Name
		}
		if si.Signature != nil {
			company.SenderInfo.Signature = *si.Signature
		}
	}
}

// validate checks everything that can be rejected before any network I/O.
// Connection-profile rules live in the resolver; reusing it here keeps
// create/update and dispatch agreeing on what a valid configuration is.
func (s *Service) validate(ctx context.Context, company *models.Company) error {
	if company.Name == "" {
		return ErrNameRequired
	}
	if company.SenderInfo.Name == "" {
		return ErrSenderName
	}
	if len(company.SenderInfo.Signature) > maxSignatureLength {
		return ErrSignatureTooLong
	}
	if company.EmailSettings.AppPassword == "" {
		return ErrPasswordRequired
	}

	validation := mailvalidate.ValidateEmailSyntax(company.EmailSettings.Email)
	if !validation.IsValid {
		return ErrInvalidEmail
	}

	if _, err := smtp.ResolveProfile(company.EmailSettings); err != nil {
		return err
	}
	return nil
}
