// Package service orchestrates the subscription workflow: validate input,
// persist subscriber and token atomically, dispatch the confirmation email,
// and classify every failure for the HTTP boundary.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"bulletin/internal/platform/middleware"
	"bulletin/internal/subscription/metrics"
	"bulletin/internal/subscription/models"
	"bulletin/internal/subscription/store"
	"bulletin/internal/subscription/token"
	dErrors "bulletin/pkg/domain-errors"
	"bulletin/pkg/platform/audit"
)

// Mailer sends one confirmation email per call. Implemented by the email
// transport client; faked in tests.
type Mailer interface {
	Send(ctx context.Context, recipient models.SubscriberEmail, subject, htmlBody, textBody string) error
}

// AuditEmitter records lifecycle events. Best-effort from the service's
// point of view.
type AuditEmitter interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service coordinates registration and confirmation.
type Service struct {
	store   store.Store
	mailer  Mailer
	tx      StoreTx
	baseURL string

	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   AuditEmitter

	now      func() time.Time
	newToken func() string
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithMetrics attaches prometheus counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithAudit attaches the audit emitter.
func WithAudit(a AuditEmitter) Option {
	return func(s *Service) { s.audit = a }
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTokenSource overrides token generation for tests.
func WithTokenSource(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newToken = gen
		}
	}
}

// New builds a Service. baseURL is the externally reachable application URL
// used to build confirmation links. A nil tx falls back to the in-memory
// runner, which is only suitable alongside the in-memory store.
func New(st store.Store, mailer Mailer, tx StoreTx, baseURL string, logger *slog.Logger, opts ...Option) *Service {
	if tx == nil {
		tx = newInMemoryStoreTx()
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		store:    st,
		mailer:   mailer,
		tx:       tx,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
		now:      time.Now,
		newToken: token.Generate,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register runs the full registration workflow for one raw form submission.
//
// The confirmation email is sent inside the transaction scope and the commit
// happens only after the send succeeds, so a delivery failure leaves no
// visible subscriber row.
func (s *Service) Register(ctx context.Context, rawName, rawEmail string) error {
	start := s.now()
	defer s.observeRegister(start)

	name, err := models.ParseSubscriberName(rawName)
	if err != nil {
		return err
	}
	email, err := models.ParseSubscriberEmail(rawEmail)
	if err != nil {
		return err
	}

	sub := models.NewSubscriber(name, email, s.now())
	confirmationToken := s.newToken()

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.store.InsertSubscriber(txCtx, sub); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to insert new subscriber")
		}
		if err := s.store.InsertToken(txCtx, confirmationToken, sub.ID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store subscription token")
		}
		if err := s.sendConfirmationEmail(txCtx, email, confirmationToken); err != nil {
			s.metrics.IncrementDeliveryFailures()
			s.emitAudit(ctx, audit.Event{
				SubscriberID: sub.ID,
				Action:       audit.ActionConfirmationEmailFailed,
				Email:        sub.Email,
			})
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to send confirmation email")
		}
		return nil
	})
	if err != nil {
		// Begin/commit failures surface here without a code yet.
		if !dErrors.HasCode(err, dErrors.CodeInternal) {
			err = dErrors.Wrap(err, dErrors.CodeInternal, "registration transaction failed")
		}
		return err
	}

	s.metrics.IncrementSubscribersCreated()
	s.emitAudit(ctx, audit.Event{
		SubscriberID: sub.ID,
		Action:       audit.ActionSubscriberCreated,
		Email:        sub.Email,
	})
	return nil
}

// Confirm resolves a confirmation token and transitions the subscriber to
// confirmed. Re-confirming with the same token succeeds and leaves the
// status confirmed.
func (s *Service) Confirm(ctx context.Context, confirmationToken string) error {
	if strings.TrimSpace(confirmationToken) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "subscription token is required")
	}

	id, ok, err := s.store.SubscriberIDByToken(ctx, confirmationToken)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up subscription token")
	}
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "subscription token not recognized")
	}

	if err := s.store.ConfirmSubscriber(ctx, id); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to confirm subscriber")
	}

	s.metrics.IncrementSubscribersConfirmed()
	s.emitAudit(ctx, audit.Event{
		SubscriberID: id,
		Action:       audit.ActionSubscriptionConfirmed,
	})
	return nil
}

// AuditTrail returns the recorded events for one subscriber.
func (s *Service) AuditTrail(ctx context.Context, subscriberID uuid.UUID) ([]audit.Event, error) {
	lister, ok := s.audit.(interface {
		List(ctx context.Context, subscriberID uuid.UUID) ([]audit.Event, error)
	})
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnavailable, "audit trail not configured")
	}
	return lister.List(ctx, subscriberID)
}

func (s *Service) sendConfirmationEmail(ctx context.Context, recipient models.SubscriberEmail, confirmationToken string) error {
	link := fmt.Sprintf("%s/subscriptions/confirm?subscription_token=%s", s.baseURL, confirmationToken)
	textBody := fmt.Sprintf("Welcome to our newsletter!\nVisit %s to confirm your subscription.", link)
	htmlBody := fmt.Sprintf(
		`Welcome to our newsletter!<br />Click <a href="%s">here</a> to confirm your subscription.`, link)
	return s.mailer.Send(ctx, recipient, "Welcome!", htmlBody, textBody)
}

func (s *Service) observeRegister(start time.Time) {
	s.metrics.ObserveRegister(start)
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	event.RequestID = middleware.GetRequestID(ctx)
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed",
			"action", string(event.Action),
			"error", err.Error(),
		)
	}
}
