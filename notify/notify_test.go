package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"folio/api/logging"
	"folio/api/models"

	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []*resend.SendEmailRequest
	err  error
}

func (f *fakeSender) SendWithContext(_ context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, params)
	return &resend.SendEmailResponse{Id: "email-1"}, nil
}

func testMessage() *models.ContactMessage {
	return &models.ContactMessage{
		ID:        7,
		Name:      "Al <script>alert(1)</script>",
		Email:     "al@example.com",
		Subject:   "Hello",
		Message:   "I'd like to talk about a project.",
		IPAddress: "10.0.0.1",
		UserAgent: "curl/8.0",
		CreatedAt: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
	}
}

func TestResendNotifier(t *testing.T) {
	sender := &fakeSender{}
	n := &ResendNotifier{
		emails: sender,
		cfg:    EmailConfig{From: "site@example.com", To: "me@example.com", SiteURL: "https://example.com"},
		log:    logging.Discard(),
	}

	require.NoError(t, n.NotifyContact(context.Background(), testMessage()))
	require.Len(t, sender.sent, 1)

	req := sender.sent[0]
	assert.Equal(t, "site@example.com", req.From)
	assert.Equal(t, []string{"me@example.com"}, req.To)
	assert.Equal(t, "al@example.com", req.ReplyTo)
	assert.Equal(t, "New Contact: Hello", req.Subject)
	assert.Contains(t, req.Html, "https://example.com/dashboard/messages")
	assert.Contains(t, req.Html, "&lt;script&gt;")
	assert.NotContains(t, req.Html, "<script>")
}

func TestResendNotifierFailure(t *testing.T) {
	n := &ResendNotifier{
		emails: &fakeSender{err: errors.New("401 unauthorized")},
		log:    logging.Discard(),
	}

	err := n.NotifyContact(context.Background(), testMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "message 7")
}

func TestNopNotifier(t *testing.T) {
	assert.NoError(t, NopNotifier{Log: logging.Discard()}.NotifyContact(context.Background(), testMessage()))
}
