package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/khabar-news/khabar/internal/cms"
	"github.com/khabar-news/khabar/internal/config"
	"github.com/khabar-news/khabar/internal/mail"
	"github.com/khabar-news/khabar/internal/models"
	"github.com/khabar-news/khabar/internal/queries"
	"github.com/khabar-news/khabar/internal/repository"
	"github.com/khabar-news/khabar/internal/validation"
	"github.com/rs/zerolog"
)

// failureScanWindow is how many of the newest log rows RecentFailures looks through
const failureScanWindow = 100

// dispatchService is the implementation of DispatchService
type dispatchService struct {
	querier cms.Querier
	catalog *queries.Catalog
	mailers mail.Factory
	repo    repository.DispatchRepository
	from    string
	site    string
	now     func() time.Time
	log     zerolog.Logger
}

func newDispatchService(
	querier cms.Querier,
	catalog *queries.Catalog,
	mailers mail.Factory,
	repo repository.DispatchRepository,
	cfg *config.Config,
	now func() time.Time,
	log zerolog.Logger,
) *dispatchService {
	return &dispatchService{
		querier: querier,
		catalog: catalog,
		mailers: mailers,
		repo:    repo,
		from:    cfg.Mail.DefaultFrom,
		site:    cfg.Site.Name,
		now:     now,
		log:     log.With().Str("service", "dispatch").Logger(),
	}
}

// SendContact checks the contact channel, validates the form and emails it
func (s *dispatchService) SendContact(ctx context.Context, req *models.ContactRequest) error {
	settings, err := s.settings(ctx, s.catalog.ContactSettings)
	if err != nil {
		return err
	}
	if errs := validation.ValidateContact(req); len(errs) > 0 {
		return &InvalidRequestError{Errors: errs}
	}
	if err := checkConfigured(settings); err != nil {
		return err
	}

	body, err := mail.ContactBody(*req, s.site, s.now())
	if err != nil {
		return err
	}

	return s.deliver(ctx, models.DispatchKindContact, settings, body, strings.TrimSpace(req.Email))
}

// SendSubmission checks the submission channel, validates the form and emails it
func (s *dispatchService) SendSubmission(ctx context.Context, req *models.SubmissionRequest) error {
	settings, err := s.settings(ctx, s.catalog.SubmissionSettings)
	if err != nil {
		return err
	}
	if errs := validation.ValidateSubmission(req); len(errs) > 0 {
		return &InvalidRequestError{Errors: errs}
	}
	if err := checkConfigured(settings); err != nil {
		return err
	}

	body, err := mail.SubmissionBody(*req, s.site, s.now())
	if err != nil {
		return err
	}

	// the contact field may be a phone number; only reply to addresses
	replyTo := ""
	if validation.IsEmail(req.Contact) {
		replyTo = strings.TrimSpace(req.Contact)
	}

	return s.deliver(ctx, models.DispatchKindSubmission, settings, body, replyTo)
}

// Stats counts logged deliveries by outcome
func (s *dispatchService) Stats(ctx context.Context) (map[models.DispatchStatus]int, error) {
	return s.repo.CountByStatus(ctx)
}

// RecentFailures returns up to limit of the newest failed deliveries
func (s *dispatchService) RecentFailures(ctx context.Context, limit int) ([]*models.DispatchRecord, error) {
	if limit <= 0 {
		return []*models.DispatchRecord{}, nil
	}
	records, err := s.repo.Recent(ctx, nil, failureScanWindow)
	if err != nil {
		return nil, err
	}

	failures := make([]*models.DispatchRecord, 0, limit)
	for _, r := range records {
		if r.Status != models.DispatchStatusFailed {
			continue
		}
		failures = append(failures, r)
		if len(failures) == limit {
			break
		}
	}
	return failures, nil
}

// settings loads the delivery settings live. An inactive channel is rejected
// before the payload is looked at.
func (s *dispatchService) settings(ctx context.Context, q cms.Query) (*models.DeliverySettings, error) {
	settings, err := cms.FetchOne[models.DeliverySettings](ctx, s.querier, q, nil)
	if errors.Is(err, cms.ErrNotFound) {
		return nil, fmt.Errorf("%w: no %s document", ErrMisconfigured, q.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", q.Name, err)
	}
	if !settings.IsActive {
		return nil, ErrChannelInactive
	}
	return settings, nil
}

func checkConfigured(settings *models.DeliverySettings) error {
	if strings.TrimSpace(settings.RecipientEmail) == "" {
		return fmt.Errorf("%w: recipient email not set", ErrMisconfigured)
	}
	if strings.TrimSpace(settings.EmailService) == "" {
		return fmt.Errorf("%w: email service not selected", ErrMisconfigured)
	}
	return nil
}

func (s *dispatchService) deliver(ctx context.Context, kind models.DispatchKind, settings *models.DeliverySettings, body mail.Body, replyTo string) error {
	mailer, err := s.mailers.New(*settings)
	if err != nil {
		if errors.Is(err, mail.ErrMissingCredentials) {
			return fmt.Errorf("%w: %w", ErrMisconfigured, err)
		}
		return err
	}

	from := settings.FromEmail
	if from == "" {
		from = s.from
	}
	fromName := settings.FromName
	if fromName == "" {
		fromName = s.site
	}

	msg := mail.Message{
		From:     from,
		FromName: fromName,
		To:       strings.TrimSpace(settings.RecipientEmail),
		ReplyTo:  replyTo,
		Subject:  body.Subject,
		HTML:     body.HTML,
		Text:     body.Text,
	}

	sendErr := mailer.Send(ctx, msg)

	record := &models.DispatchRecord{
		Kind:      kind,
		Recipient: msg.To,
		Provider:  mailer.Provider(),
		Subject:   msg.Subject,
		Status:    models.DispatchStatusSent,
		CreatedAt: s.now().UTC(),
	}
	if sendErr != nil {
		record.Status = models.DispatchStatusFailed
		record.Error = sendErr.Error()
	}
	// the audit log never decides the response
	if err := s.repo.Create(context.WithoutCancel(ctx), record); err != nil {
		s.log.Warn().Err(err).Str("kind", string(kind)).Msg("Failed to record dispatch")
	}

	if sendErr != nil {
		s.log.Error().
			Err(sendErr).
			Str("kind", string(kind)).
			Str("provider", mailer.Provider()).
			Msg("Email delivery failed")
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, sendErr)
	}

	s.log.Info().
		Str("kind", string(kind)).
		Str("provider", mailer.Provider()).
		Msg("Email delivered")
	return nil
}
