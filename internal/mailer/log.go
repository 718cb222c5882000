package mailer

import (
	"context"

	"github.com/sjperalta/workpermit-api/pkg/logger"
)

// LogMailer writes messages to the log instead of delivering them
type LogMailer struct{}

func NewLogMailer() *LogMailer { return &LogMailer{} }

func (LogMailer) Channel() string { return ChannelLog }

func (LogMailer) Send(ctx context.Context, msg Message) error {
	logger.Log.InfoContext(ctx, "📧 [Email Not Sent] no mail channel configured, set RESEND_API_KEY or SMTP_HOST",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Text,
	)
	return nil
}
