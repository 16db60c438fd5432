// Package mail delivers form submissions through SMTP or a hosted email API.
package mail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/khabar-news/khabar/internal/config"
	"github.com/khabar-news/khabar/internal/models"
	"github.com/rs/zerolog"
)

var (
	// ErrUnsupportedProvider is returned for an emailService value with no implementation
	ErrUnsupportedProvider = errors.New("unsupported email service")
	// ErrMissingCredentials is returned when the selected provider lacks its settings
	ErrMissingCredentials = errors.New("email provider credentials missing")
	// ErrInvalidHeader is returned when an address or name would break the message headers
	ErrInvalidHeader = errors.New("invalid header value")
)

// Message is a single outgoing email
type Message struct {
	From     string
	FromName string
	To       string
	ReplyTo  string
	Subject  string
	HTML     string
	Text     string
}

// Mailer sends one message; implementations do not retry
type Mailer interface {
	Send(ctx context.Context, msg Message) error
	Provider() string
}

// Factory builds a Mailer from delivery settings read at request time
type Factory interface {
	New(settings models.DeliverySettings) (Mailer, error)
}

// ProviderFactory selects the provider named by the settings' emailService
type ProviderFactory struct {
	cfg    *config.MailConfig
	client *http.Client
	log    zerolog.Logger
}

var _ Factory = (*ProviderFactory)(nil)

// NewFactory creates a ProviderFactory sharing one HTTP client across hosted providers
func NewFactory(cfg *config.MailConfig, log zerolog.Logger) *ProviderFactory {
	return &ProviderFactory{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log.With().Str("component", "mail").Logger(),
	}
}

func (f *ProviderFactory) New(s models.DeliverySettings) (Mailer, error) {
	provider := strings.ToLower(strings.TrimSpace(s.EmailService))

	switch provider {
	case models.EmailServiceSMTP:
		if s.SMTPHost == "" {
			return nil, fmt.Errorf("%w: smtp host not set", ErrMissingCredentials)
		}
		port := s.SMTPPort
		if port == 0 {
			port = 587
			if s.SMTPSecure {
				port = 465
			}
		}
		return &SMTPMailer{
			host:     s.SMTPHost,
			port:     port,
			username: s.SMTPUser,
			password: s.SMTPPass,
			implicit: s.SMTPSecure || port == 465,
			timeout:  f.cfg.Timeout,
		}, nil
	case models.EmailServiceSendGrid:
		if s.SendGridAPIKey == "" {
			return nil, fmt.Errorf("%w: sendgrid api key not set", ErrMissingCredentials)
		}
		return &SendGridMailer{baseURL: f.cfg.SendGridBaseURL, apiKey: s.SendGridAPIKey, client: f.client}, nil
	case models.EmailServiceResend:
		if s.ResendAPIKey == "" {
			return nil, fmt.Errorf("%w: resend api key not set", ErrMissingCredentials)
		}
		return &ResendMailer{baseURL: f.cfg.ResendBaseURL, apiKey: s.ResendAPIKey, client: f.client}, nil
	default:
		f.log.Warn().Str("email_service", s.EmailService).Msg("Unknown email service selected")
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, s.EmailService)
	}
}

// formatAddress renders "Name <addr>" or the bare address
func formatAddress(name, addr string) string {
	if name == "" {
		return addr
	}
	return fmt.Sprintf("%s <%s>", name, addr)
}
