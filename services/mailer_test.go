package services

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorderTransport captures messages instead of delivering them.
type recorderTransport struct {
	mu   sync.Mutex
	sent []MailMessage
	err  error
}

func (t *recorderTransport) Send(_ context.Context, msg *MailMessage) (MailResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return MailResult{}, t.err
	}
	t.sent = append(t.sent, *msg)
	return MailResult{DeliveryID: "rec-1"}, nil
}

func (t *recorderTransport) messages() []MailMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]MailMessage, len(t.sent))
	copy(out, t.sent)
	return out
}

func newTestMailer(t *recorderTransport) *Mailer {
	return NewMailerWithTransport(t, zerolog.Nop())
}

func TestMailerSendRendersTemplate(t *testing.T) {
	rec := &recorderTransport{}
	mailer := newTestMailer(rec)

	res, err := mailer.Send(context.Background(), "Author@Example.org", TemplateDecisionNotice, map[string]string{
		"author_name":      "Ada Lovelace",
		"submission_title": "On Analytical Engines",
		"conference_name":  "ICCM 2026",
		"decision":         DecisionAccepted,
	}, MailOptions{})

	require.NoError(t, err)
	assert.Equal(t, "rec-1", res.DeliveryID)

	msgs := rec.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "author@example.org", msgs[0].To)
	assert.Equal(t, "Decision on your submission", msgs[0].Subject)
	assert.Contains(t, msgs[0].HTMLBody, "Ada Lovelace")
	assert.Contains(t, msgs[0].HTMLBody, "ACCEPTED")
	assert.Contains(t, msgs[0].TextBody, "Decision: ACCEPTED")
}

func TestMailerSendUnknownTemplate(t *testing.T) {
	rec := &recorderTransport{}
	mailer := newTestMailer(rec)

	_, err := mailer.Send(context.Background(), "a@b.org", "no_such_template", nil, MailOptions{})
	require.Error(t, err)
	assert.Empty(t, rec.messages())
}

func TestNormalizeCC(t *testing.T) {
	cc := NormalizeCC(
		[]string{"Bob@Example.org", "bob@example.org", "  ", "carol@example.org", "author@example.org"},
		"Author@Example.org",
	)
	assert.Equal(t, []string{"bob@example.org", "carol@example.org"}, cc)
}

func TestMailerCCDeduplication(t *testing.T) {
	rec := &recorderTransport{}
	mailer := newTestMailer(rec)

	_, err := mailer.Send(context.Background(), "author@example.org", TemplateSubmissionReceived, map[string]string{
		"author_name":      "Ada",
		"submission_title": "Paper",
		"conference_name":  "ICCM",
	}, MailOptions{CC: []string{"CoAuthor@example.org", "coauthor@example.org", "author@example.org"}})

	require.NoError(t, err)
	msgs := rec.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, []string{"coauthor@example.org"}, msgs[0].CC)
}

func TestMemoryOutboxDeliversAndIsolatesFailures(t *testing.T) {
	rec := &recorderTransport{}
	mailer := newTestMailer(rec)
	outbox := NewMemoryOutbox(mailer, zerolog.Nop())

	// A bad template must not stop later deliveries.
	require.NoError(t, outbox.Enqueue(context.Background(), OutboundEmail{
		To: "x@example.org", Template: "bogus",
	}))
	require.NoError(t, outbox.Enqueue(context.Background(), OutboundEmail{
		To:       "reviewer@example.org",
		Template: TemplateReviewReminder,
		Data: map[string]string{
			"reviewer_name":    "Rev",
			"submission_title": "Paper",
			"conference_name":  "ICCM",
			"start_date":       "2026-09-01",
		},
	}))

	require.NoError(t, outbox.Close())

	msgs := rec.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "reviewer@example.org", msgs[0].To)

	// Enqueue after close is refused.
	assert.Error(t, outbox.Enqueue(context.Background(), OutboundEmail{To: "y@example.org", Template: TemplateWelcome}))
}
