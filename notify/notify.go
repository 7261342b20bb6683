// Package notify tells the site owner about new contact messages.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"folio/api/models"

	"github.com/resend/resend-go/v2"
	"github.com/sirupsen/logrus"
)

// Notifier delivers a notification for a stored contact message.
type Notifier interface {
	NotifyContact(ctx context.Context, msg *models.ContactMessage) error
}

// emailSender is the part of the Resend client used here.
type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type EmailConfig struct {
	From    string
	To      string
	SiteURL string
}

// ResendNotifier sends one e-mail per message through the Resend API.
type ResendNotifier struct {
	emails emailSender
	cfg    EmailConfig
	log    logrus.FieldLogger
}

func NewResendNotifier(apiKey string, cfg EmailConfig, log logrus.FieldLogger) *ResendNotifier {
	return &ResendNotifier{
		emails: resend.NewClient(apiKey).Emails,
		cfg:    cfg,
		log:    log,
	}
}

func (n *ResendNotifier) NotifyContact(ctx context.Context, msg *models.ContactMessage) error {
	body, err := renderContactEmail(msg, n.cfg.SiteURL)
	if err != nil {
		return err
	}

	sent, err := n.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    n.cfg.From,
		To:      []string{n.cfg.To},
		ReplyTo: msg.Email,
		Subject: "New Contact: " + msg.Subject,
		Html:    body,
	})
	if err != nil {
		return fmt.Errorf("failed to send contact notification for message %d: %w", msg.ID, err)
	}

	n.log.WithFields(logrus.Fields{"message_id": msg.ID, "email_id": sent.Id}).Info("contact notification sent")
	return nil
}

// NopNotifier only logs. It is used when no e-mail API key is configured.
type NopNotifier struct {
	Log logrus.FieldLogger
}

func (n NopNotifier) NotifyContact(_ context.Context, msg *models.ContactMessage) error {
	n.Log.WithField("message_id", msg.ID).Debug("e-mail disabled, skipping contact notification")
	return nil
}

var contactEmail = template.Must(template.New("contact").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #6366f1;">New Contact Form Submission</h2>
  <div style="background: #f3f4f6; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <p><strong>From:</strong> {{.Msg.Name}}</p>
    <p><strong>Email:</strong> {{.Msg.Email}}</p>
    <p><strong>Subject:</strong> {{.Msg.Subject}}</p>
  </div>
  <div style="background: #ffffff; border: 1px solid #e5e7eb; padding: 20px; border-radius: 8px;">
    <h3 style="margin-top: 0;">Message:</h3>
    <p style="white-space: pre-wrap;">{{.Msg.Message}}</p>
  </div>
  <div style="margin-top: 20px; padding: 15px; background: #f9fafb; border-radius: 8px; font-size: 12px; color: #6b7280;">
    <p><strong>IP Address:</strong> {{.Msg.IPAddress}}</p>
    <p><strong>User Agent:</strong> {{.Msg.UserAgent}}</p>
    <p><strong>Time:</strong> {{.Time}}</p>
    <p><strong>Message ID:</strong> {{.Msg.ID}}</p>
  </div>
  {{- if .AdminURL}}
  <p style="text-align: center; color: #9ca3af; font-size: 12px;">View in admin panel: <a href="{{.AdminURL}}">Dashboard</a></p>
  {{- end}}
</div>
`))

func renderContactEmail(msg *models.ContactMessage, siteURL string) (string, error) {
	data := struct {
		Msg      *models.ContactMessage
		Time     string
		AdminURL string
	}{
		Msg:  msg,
		Time: msg.CreatedAt.UTC().Format(time.RFC1123),
	}
	if siteURL != "" {
		data.AdminURL = siteURL + "/dashboard/messages"
	}

	var buf bytes.Buffer
	if err := contactEmail.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render contact email: %w", err)
	}
	return buf.String(), nil
}
