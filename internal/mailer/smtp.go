package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/textproto"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/sjperalta/workpermit-api/pkg/logger"
)

// SMTPConfig holds the relay settings
type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	TLS      bool
	From     string
	FromName string
}

type sendFunc func(ctx context.Context, addr string, a sasl.Client, from string, to []string, r io.Reader) error

// SMTPMailer sends through an SMTP relay
type SMTPMailer struct {
	cfg  SMTPConfig
	send sendFunc
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	m := &SMTPMailer{cfg: cfg}
	m.send = func(ctx context.Context, addr string, a sasl.Client, from string, to []string, r io.Reader) error {
		return sendMail(ctx, addr, cfg.TLS, a, from, to, r)
	}
	return m
}

// sendMail is smtp.SendMail/SendMailTLS bound to ctx: the dial honours it,
// per-command timeouts are capped at its deadline and cancellation closes the connection.
func sendMail(ctx context.Context, addr string, implicitTLS bool, a sasl.Client, from string, to []string, r io.Reader) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if err := deliver(ctx, conn, host, implicitTLS, a, from, to, r); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

func deliver(ctx context.Context, conn net.Conn, host string, implicitTLS bool, a sasl.Client, from string, to []string, r io.Reader) error {
	tlsConfig := &tls.Config{ServerName: host}

	var c *smtp.Client
	if implicitTLS {
		c = smtp.NewClient(tls.Client(conn, tlsConfig))
	} else {
		var err error
		if c, err = smtp.NewClientStartTLS(conn, tlsConfig); err != nil {
			return err
		}
	}
	defer c.Close()

	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining < c.CommandTimeout {
			c.CommandTimeout = remaining
		}
		if remaining < c.SubmissionTimeout {
			c.SubmissionTimeout = remaining
		}
	}

	if a != nil {
		if ok, _ := c.Extension("AUTH"); !ok {
			return errors.New("server doesn't support AUTH")
		}
		if err := c.Auth(a); err != nil {
			return err
		}
	}
	if err := c.SendMail(from, to, r); err != nil {
		return err
	}
	return c.Quit()
}

func (m *SMTPMailer) Channel() string { return ChannelSMTP }

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth sasl.Client
	if m.cfg.User != "" {
		auth = sasl.NewPlainClient("", m.cfg.User, m.cfg.Password)
	}

	body, err := buildMIME(formatFrom(m.cfg.FromName, m.cfg.From), msg, time.Now())
	if err != nil {
		return fmt.Errorf("smtp: build message: %w", err)
	}

	addr := m.cfg.Host + ":" + m.cfg.Port
	if err := m.send(ctx, addr, auth, m.cfg.From, []string{msg.To}, bytes.NewReader(body)); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}

	logger.Info(fmt.Sprintf("📧 [Email Sent] To: %s | Subject: %s | Relay: %s", msg.To, msg.Subject, addr))
	return nil
}

// buildMIME renders a multipart/alternative message with text and HTML parts
func buildMIME(from string, msg Message, date time.Time) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", date.Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mw.Boundary())

	parts := []struct {
		contentType string
		content     string
	}{
		{"text/plain; charset=UTF-8", msg.Text},
		{"text/html; charset=UTF-8", msg.HTML},
	}
	for _, p := range parts {
		if p.content == "" {
			continue
		}
		w, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {p.contentType},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, err
		}
		qp := quotedprintable.NewWriter(w)
		if _, err := qp.Write([]byte(p.content)); err != nil {
			return nil, err
		}
		if err := qp.Close(); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
