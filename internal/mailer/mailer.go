// Package mailer delivers rendered messages through one of the configured channels.
package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/sjperalta/workpermit-api/internal/config"
)

// Channel names recorded in email logs
const (
	ChannelResend = "resend"
	ChannelSMTP   = "smtp"
	ChannelLog    = "log"
)

// Message is one rendered email
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer attempts delivery of a message exactly once
type Mailer interface {
	Send(ctx context.Context, msg Message) error
	Channel() string
}

// New picks the channel from configuration: Resend when an API key is set,
// SMTP when a host is set, otherwise log output only
func New(cfg *config.Config) Mailer {
	from := formatFrom(cfg.FromName, cfg.FromEmail)
	switch {
	case cfg.ResendAPIKey != "":
		return NewResendMailer(cfg.ResendAPIKey, from)
	case cfg.SMTPHost != "":
		return NewSMTPMailer(SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			TLS:      cfg.SMTPTLS,
			From:     cfg.FromEmail,
			FromName: cfg.FromName,
		})
	default:
		return NewLogMailer()
	}
}

func formatFrom(name, email string) string {
	if name = strings.TrimSpace(name); name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}
