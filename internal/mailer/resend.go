package mailer

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"github.com/sjperalta/workpermit-api/pkg/logger"
)

// ResendMailer sends through the Resend HTTP API
type ResendMailer struct {
	client *resend.Client
	from   string
}

func NewResendMailer(apiKey, from string) *ResendMailer {
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (m *ResendMailer) Channel() string { return ChannelResend }

func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}
	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}

	logger.Info(fmt.Sprintf("📧 [Email Sent] To: %s | Subject: %s | ID: %s", msg.To, msg.Subject, sent.Id))
	return nil
}
