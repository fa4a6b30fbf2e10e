package subscription

import (
	"context"
	"errors"
	"fmt"
	"github.com/techsaints/landing/pkg/brevo"
	"github.com/techsaints/landing/pkg/config"
	"log/slog"
	"time"
)

const (
	ContactSource = "Tech Saints Awareness Page"

	// ISO 8601 in UTC with millisecond precision, e.g. 2025-01-31T09:30:00.000Z.
	signupDateLayout = "2006-01-02T15:04:05.000Z"
)

// ErrUpstream wraps provider failures other than a duplicate contact.
var ErrUpstream = errors.New("failed to subscribe")

type Provider interface {
	AddOrUpdateContact(ctx context.Context, contact brevo.Contact) error
	SendTransactionalEmail(ctx context.Context, email brevo.TransactionalEmail) error
}

type Outcome int

const (
	Subscribed Outcome = iota
	AlreadySubscribed
)

func (o Outcome) String() string {
	return [...]string{"subscribed", "already_subscribed"}[o]
}

type Service struct {
	provider    Provider
	validator   Validator
	listID      int64
	sender      brevo.Address
	subject     string
	welcomeHTML string
	now         func() time.Time
	logger      *slog.Logger
}

type Option func(s *Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(provider Provider, cfg *config.Config, listID int64, opts ...Option) (*Service, error) {
	welcomeHTML, err := RenderWelcome(WelcomeData{
		AppName:     cfg.App.Name,
		Description: cfg.App.Description,
		URL:         cfg.App.URL,
	})
	if err != nil {
		return nil, err
	}

	s := &Service{
		provider: provider,
		validator: Validator{
			MaxLength:      cfg.EmailValidation.MaxLength,
			AllowedDomains: cfg.EmailValidation.AllowedDomains,
		},
		listID: listID,
		sender: brevo.Address{
			Name:  cfg.WelcomeEmail.Sender.Name,
			Email: cfg.WelcomeEmail.Sender.Email,
		},
		subject:     cfg.WelcomeEmail.Subject,
		welcomeHTML: welcomeHTML,
		now:         time.Now,
		logger:      slog.With("component", "subscription"),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *Service) Validate(email string) error {
	return s.validator.Validate(email)
}

// Subscribe validates email, adds it to the contact list and sends the welcome email.
//
// A duplicate contact is a success (AlreadySubscribed). A failed welcome email never
// changes the outcome. Returned errors are a *ValidationError, ErrUpstream, or an
// unexpected failure.
func (s *Service) Subscribe(ctx context.Context, email string) (Outcome, error) {
	if err := s.Validate(email); err != nil {
		return Subscribed, err
	}

	err := s.provider.AddOrUpdateContact(ctx, brevo.Contact{
		Email:   email,
		ListIDs: []int64{s.listID},
		Attributes: map[string]any{
			"FIRSTNAME":   "",
			"LASTNAME":    "",
			"SOURCE":      ContactSource,
			"SIGNUP_DATE": s.now().UTC().Format(signupDateLayout),
		},
		UpdateEnabled: true,
	})
	if err != nil {
		if brevo.IsDuplicate(err) {
			s.logger.Info("contact already exists, resending welcome email", "error", err)
			if err := s.sendWelcome(ctx, email); err != nil {
				s.logger.Warn("Contact already subscribed but welcome email failed to send")
			}
			return AlreadySubscribed, nil
		}

		var apiErr *brevo.APIError
		if errors.As(err, &apiErr) {
			s.logger.Error("brevo api error", "status", apiErr.StatusCode, "code", apiErr.Code, "message", apiErr.Message)
			return Subscribed, fmt.Errorf("%w: %w", ErrUpstream, err)
		}

		return Subscribed, fmt.Errorf("add contact: %w", err)
	}

	if err := s.sendWelcome(ctx, email); err != nil {
		s.logger.Warn("Contact added but welcome email failed to send")
	}

	return Subscribed, nil
}

func (s *Service) sendWelcome(ctx context.Context, email string) error {
	err := s.provider.SendTransactionalEmail(ctx, brevo.TransactionalEmail{
		Sender:      s.sender,
		To:          []brevo.Address{{Email: email}},
		Subject:     s.subject,
		HTMLContent: s.welcomeHTML,
	})
	if err != nil {
		s.logger.Error("Failed to send welcome email", "error", err)
	}
	return err
}
