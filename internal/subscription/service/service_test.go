package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bulletin/internal/subscription/models"
	"bulletin/internal/subscription/store"
	dErrors "bulletin/pkg/domain-errors"
	"bulletin/pkg/platform/audit"
	"bulletin/pkg/platform/audit/publisher"
	auditmemory "bulletin/pkg/platform/audit/store/memory"
)

type sentEmail struct {
	recipient string
	subject   string
	htmlBody  string
	textBody  string
}

// recordingMailer captures outgoing emails instead of sending them.
type recordingMailer struct {
	mu   sync.Mutex
	sent []sentEmail
	fail error
}

func (m *recordingMailer) Send(_ context.Context, recipient models.SubscriberEmail, subject, htmlBody, textBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, sentEmail{
		recipient: recipient.String(),
		subject:   subject,
		htmlBody:  htmlBody,
		textBody:  textBody,
	})
	return nil
}

func (m *recordingMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// failingStore wraps the memory store and fails selected operations.
type failingStore struct {
	*store.InMemoryStore
	failInsertSubscriber bool
	failInsertToken      bool
	failTokenLookup      bool
}

func (s *failingStore) InsertSubscriber(ctx context.Context, sub *models.Subscriber) error {
	if s.failInsertSubscriber {
		return fmt.Errorf("insert subscriber: connection reset")
	}
	return s.InMemoryStore.InsertSubscriber(ctx, sub)
}

func (s *failingStore) InsertToken(ctx context.Context, token string, subscriberID uuid.UUID) error {
	if s.failInsertToken {
		return fmt.Errorf("insert subscription token: connection reset")
	}
	return s.InMemoryStore.InsertToken(ctx, token, subscriberID)
}

func (s *failingStore) SubscriberIDByToken(ctx context.Context, token string) (uuid.UUID, bool, error) {
	if s.failTokenLookup {
		return uuid.Nil, false, fmt.Errorf("query subscription token: connection reset")
	}
	return s.InMemoryStore.SubscriberIDByToken(ctx, token)
}

func newTestService(t *testing.T) (*Service, *store.InMemoryStore, *recordingMailer, *publisher.Publisher) {
	t.Helper()
	st := store.NewInMemoryStore()
	mailer := &recordingMailer{}
	pub := publisher.NewPublisher(auditmemory.NewInMemoryStore())
	t.Cleanup(pub.Close)
	svc := New(st, mailer, nil, "https://bulletin.example.com", nil,
		WithAudit(pub),
		WithTokenSource(func() string { return "aaaaabbbbbcccccdddddeeeee" }),
	)
	return svc, st, mailer, pub
}

func TestRegisterStoresPendingSubscriberAndSendsEmail(t *testing.T) {
	svc, st, mailer, _ := newTestService(t)

	err := svc.Register(context.Background(), "allen", "liughcs@gmail.com")
	require.NoError(t, err)

	assert.Equal(t, 1, st.Count())
	assert.Equal(t, 1, st.TokenCount())

	id, ok, err := st.SubscriberIDByToken(context.Background(), "aaaaabbbbbcccccdddddeeeee")
	require.NoError(t, err)
	require.True(t, ok)

	sub, err := st.SubscriberByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "allen", sub.Name)
	assert.Equal(t, "liughcs@gmail.com", sub.Email)
	assert.Equal(t, models.StatusPendingConfirmation, sub.Status)

	require.Equal(t, 1, mailer.sentCount())
	sent := mailer.sent[0]
	assert.Equal(t, "liughcs@gmail.com", sent.recipient)
	assert.Equal(t, "Welcome!", sent.subject)
	wantLink := "https://bulletin.example.com/subscriptions/confirm?subscription_token=aaaaabbbbbcccccdddddeeeee"
	assert.Contains(t, sent.htmlBody, wantLink)
	assert.Contains(t, sent.textBody, wantLink)
}

func TestRegisterRecordsAuditEvent(t *testing.T) {
	svc, st, _, pub := newTestService(t)

	require.NoError(t, svc.Register(context.Background(), "allen", "liughcs@gmail.com"))

	id, ok, err := st.SubscriberIDByToken(context.Background(), "aaaaabbbbbcccccdddddeeeee")
	require.NoError(t, err)
	require.True(t, ok)

	events, err := pub.List(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionSubscriberCreated, events[0].Action)
	assert.Equal(t, "liughcs@gmail.com", events[0].Email)
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name     string
		rawName  string
		rawEmail string
	}{
		{name: "empty name", rawName: "", rawEmail: "liughcs@gmail.com"},
		{name: "forbidden character in name", rawName: "allen<script>", rawEmail: "liughcs@gmail.com"},
		{name: "name too long", rawName: strings.Repeat("a", 257), rawEmail: "liughcs@gmail.com"},
		{name: "empty email", rawName: "allen", rawEmail: ""},
		{name: "email without at sign", rawName: "allen", rawEmail: "liughcs.gmail.com"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, st, mailer, _ := newTestService(t)

			err := svc.Register(context.Background(), tc.rawName, tc.rawEmail)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

			assert.Zero(t, st.Count(), "no subscriber row on validation failure")
			assert.Zero(t, st.TokenCount(), "no token row on validation failure")
			assert.Zero(t, mailer.sentCount(), "no email on validation failure")
		})
	}
}

func TestRegisterWrapsSubscriberInsertFailure(t *testing.T) {
	st := &failingStore{InMemoryStore: store.NewInMemoryStore(), failInsertSubscriber: true}
	mailer := &recordingMailer{}
	svc := New(st, mailer, nil, "https://bulletin.example.com", nil)

	err := svc.Register(context.Background(), "allen", "liughcs@gmail.com")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	assert.Contains(t, err.Error(), "failed to insert new subscriber")
	assert.Zero(t, mailer.sentCount())
}

func TestRegisterWrapsTokenInsertFailure(t *testing.T) {
	st := &failingStore{InMemoryStore: store.NewInMemoryStore(), failInsertToken: true}
	mailer := &recordingMailer{}
	svc := New(st, mailer, nil, "https://bulletin.example.com", nil)

	err := svc.Register(context.Background(), "allen", "liughcs@gmail.com")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	assert.Contains(t, err.Error(), "failed to store subscription token")
	assert.Zero(t, mailer.sentCount())
}

func TestRegisterFailsWhenEmailDeliveryFails(t *testing.T) {
	st := store.NewInMemoryStore()
	mailer := &recordingMailer{fail: errors.New("postmark unreachable")}
	auditStore := auditmemory.NewInMemoryStore()
	pub := publisher.NewPublisher(auditStore)
	t.Cleanup(pub.Close)
	svc := New(st, mailer, nil, "https://bulletin.example.com", nil, WithAudit(pub))

	err := svc.Register(context.Background(), "allen", "liughcs@gmail.com")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	assert.Contains(t, err.Error(), "failed to send confirmation email")
}

func TestConfirmFlipsStatus(t *testing.T) {
	svc, st, _, _ := newTestService(t)

	require.NoError(t, svc.Register(context.Background(), "allen", "liughcs@gmail.com"))
	require.NoError(t, svc.Confirm(context.Background(), "aaaaabbbbbcccccdddddeeeee"))

	id, _, err := st.SubscriberIDByToken(context.Background(), "aaaaabbbbbcccccdddddeeeee")
	require.NoError(t, err)
	sub, err := st.SubscriberByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, sub.Status)
}

func TestConfirmIsIdempotent(t *testing.T) {
	svc, st, _, _ := newTestService(t)

	require.NoError(t, svc.Register(context.Background(), "allen", "liughcs@gmail.com"))
	require.NoError(t, svc.Confirm(context.Background(), "aaaaabbbbbcccccdddddeeeee"))
	require.NoError(t, svc.Confirm(context.Background(), "aaaaabbbbbcccccdddddeeeee"))

	id, _, err := st.SubscriberIDByToken(context.Background(), "aaaaabbbbbcccccdddddeeeee")
	require.NoError(t, err)
	sub, err := st.SubscriberByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, sub.Status)
}

func TestConfirmRejectsEmptyToken(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	err := svc.Confirm(context.Background(), "  ")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestConfirmUnknownTokenIsNotFound(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	err := svc.Confirm(context.Background(), "zzzzzyyyyyxxxxxwwwwwvvvvv")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestConfirmWrapsLookupFailure(t *testing.T) {
	st := &failingStore{InMemoryStore: store.NewInMemoryStore(), failTokenLookup: true}
	svc := New(st, &recordingMailer{}, nil, "https://bulletin.example.com", nil)

	err := svc.Confirm(context.Background(), "aaaaabbbbbcccccdddddeeeee")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

func TestRegisterGeneratesDistinctTokens(t *testing.T) {
	st := store.NewInMemoryStore()
	mailer := &recordingMailer{}
	svc := New(st, mailer, nil, "https://bulletin.example.com", nil)

	for i := 0; i < 5; i++ {
		email := fmt.Sprintf("subscriber%d@example.com", i)
		require.NoError(t, svc.Register(context.Background(), "allen", email))
	}
	assert.Equal(t, 5, st.TokenCount())
	assert.Equal(t, 5, mailer.sentCount())
}

func TestWithClockControlsSubscribedAt(t *testing.T) {
	st := store.NewInMemoryStore()
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := New(st, &recordingMailer{}, nil, "https://bulletin.example.com", nil,
		WithClock(func() time.Time { return fixed }),
		WithTokenSource(func() string { return "aaaaabbbbbcccccdddddeeeee" }),
	)

	require.NoError(t, svc.Register(context.Background(), "allen", "liughcs@gmail.com"))

	id, _, err := st.SubscriberIDByToken(context.Background(), "aaaaabbbbbcccccdddddeeeee")
	require.NoError(t, err)
	sub, err := st.SubscriberByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, fixed, sub.SubscribedAt)
}
