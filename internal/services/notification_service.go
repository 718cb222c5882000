package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/sjperalta/workpermit-api/internal/jobs"
	"github.com/sjperalta/workpermit-api/internal/mailer"
	"github.com/sjperalta/workpermit-api/internal/models"
	"github.com/sjperalta/workpermit-api/internal/repository"
	"github.com/sjperalta/workpermit-api/pkg/logger"
	"golang.org/x/time/rate"
)

//go:embed templates/email/*.html
var emailTemplates embed.FS

const systemName = "Work Permit System"

// deliveryTimeout bounds one delivery attempt including the rate limiter wait
const deliveryTimeout = 30 * time.Second

// Notification is one outbound message, already addressed and composed
type Notification struct {
	ApplicationID string
	To            string
	Subject       string
	Body          string
	Link          string
	Kind          string
}

// ComposeNotification renders the subject and plain-text body for a classification tag.
// comment is included for rejection notices.
func ComposeNotification(kind, to string, app *models.Application, baseURL, comment string) Notification {
	n := Notification{To: to, Kind: kind}
	if app == nil {
		n.Subject = "[Work Permit] Mail channel test"
		n.Body = "This is a test message from the work permit system.\n\nIf you received it, outbound mail is configured correctly."
		return n
	}

	n.ApplicationID = app.ID
	n.Link = strings.TrimRight(baseURL, "/") + "/applications/" + app.ID

	workOrder := app.WorkOrderNumber
	if workOrder == "" && !app.CreatedAt.IsZero() {
		workOrder = models.WorkOrderNumberFor(app.CreatedAt)
	}
	summary := fmt.Sprintf("Work order: %s\n\nApplicant: %s\nDepartment: %s\nWork area: %s",
		workOrder, app.ApplicantName, app.Department, app.WorkArea)
	comment = strings.TrimSpace(comment)

	switch kind {
	case models.EmailTypeAreaSupervisorNew:
		n.Subject = "[Work Permit] Hot work request awaiting your review"
		n.Body = fmt.Sprintf("Hello %s,\n\nA work permit request that includes hot work needs your review first:\n%s\n\nUse the button below to review it.",
			app.AreaSupervisorName(), summary)
	case models.EmailTypeEHSNew:
		n.Subject = "[Work Permit] New request awaiting review"
		n.Body = fmt.Sprintf("Hello,\n\nA work permit request needs your review:\n%s\n\nUse the button below to review it.", summary)
	case models.EmailTypeDepartmentManagerNew:
		n.Subject = "[Work Permit] Request awaiting operations manager final review"
		n.Body = fmt.Sprintf("Hello,\n\nA work permit request passed EHS review and needs your final review:\n%s\n\nUse the button below to review it.", summary)
	case models.EmailTypeApplicantProgress:
		n.Subject = "[Work Permit] Review progress update"
		n.Body = fmt.Sprintf("Hello,\n\nYour work permit request has moved to the next stage.\nWork order: %s\n\nCurrent stage: %s\n\nUse the button below to see the details.",
			workOrder, progressStage(app.Status))
	case models.EmailTypeApplicantApproved:
		n.Subject = "[Work Permit] Request approved"
		n.Body = fmt.Sprintf("Hello,\n\nYour work permit request was approved.\nWork order: %s\n\nUse the button below to see the details.", workOrder)
	case models.EmailTypeApplicantRejected:
		n.Subject = "[Work Permit] Request rejected"
		n.Body = fmt.Sprintf("Hello,\n\nYour work permit request was rejected.\nWork order: %s", workOrder)
		if comment != "" {
			n.Body += "\n\nReviewer comment:\n" + comment
		}
		n.Body += "\n\nUse the button below to see the details."
	case models.EmailTypeEHSRejection:
		n.Subject = "[Work Permit] Request rejected by the operations manager"
		n.Body = fmt.Sprintf("Hello,\n\nA request you approved was rejected by the operations manager:\n%s", summary)
		if comment != "" {
			n.Body += "\n\nReason: " + comment
		}
		n.Body += "\n\nUse the button below to see the details."
	case models.EmailTypeEHSApproval:
		n.Subject = "[Work Permit] Request review completed"
		n.Body = fmt.Sprintf("Hello,\n\nA request you approved has completed every review stage:\n%s\n\nUse the button below to see the details.", summary)
	default:
		n.Subject = "[Work Permit] Notification"
		n.Body = summary
	}
	return n
}

func progressStage(s models.Status) string {
	switch s {
	case models.StatusPendingEHS:
		return "Area supervisor approved, awaiting EHS manager review"
	case models.StatusPendingManager:
		return "EHS manager approved, awaiting operations manager final review"
	}
	return s.String()
}

// NotificationService delivers notifications and records every attempt in the email log
type NotificationService struct {
	mailer    mailer.Mailer
	emailLogs repository.EmailLogRepository
	limiter   *rate.Limiter
	tmpl      *template.Template
	now       func() time.Time
}

// NewNotificationService creates the notifier. perSecond <= 0 disables throttling.
func NewNotificationService(m mailer.Mailer, emailLogs repository.EmailLogRepository, perSecond float64) *NotificationService {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if perSecond > 0 {
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}

	return &NotificationService{
		mailer:    m,
		emailLogs: emailLogs,
		limiter:   limiter,
		tmpl:      template.Must(template.ParseFS(emailTemplates, "templates/email/notification.html")),
		now:       time.Now,
	}
}

// Channel returns the active mail channel name
func (s *NotificationService) Channel() string {
	return s.mailer.Channel()
}

// Notify attempts delivery once. Failures are logged and recorded, never returned.
func (s *NotificationService) Notify(ctx context.Context, n Notification) {
	_ = s.Deliver(ctx, n)
}

// Deliver attempts delivery once, records the outcome and returns the delivery error
func (s *NotificationService) Deliver(ctx context.Context, n Notification) error {
	err := s.deliver(ctx, n)

	entry := &models.EmailLog{
		Recipient: n.To,
		Subject:   n.Subject,
		EmailType: n.Kind,
		Channel:   s.mailer.Channel(),
		Success:   err == nil,
		SentAt:    s.now(),
	}
	if n.ApplicationID != "" {
		id := n.ApplicationID
		entry.ApplicationID = &id
	}
	if err != nil {
		msg := err.Error()
		entry.ErrorMessage = &msg
		logger.Error(fmt.Sprintf("[Notify] %s to %s failed: %v", n.Kind, n.To, err))
	}

	// The audit row must survive a cancelled delivery context
	logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if logErr := s.emailLogs.Create(logCtx, entry); logErr != nil {
		logger.Error(fmt.Sprintf("[Notify] failed to record email log for %s: %v", n.To, logErr))
	}
	return err
}

func (s *NotificationService) deliver(ctx context.Context, n Notification) error {
	if strings.TrimSpace(n.To) == "" {
		return fmt.Errorf("recipient address is empty")
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	html, err := s.render(n)
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, mailer.Message{
		To:      n.To,
		Subject: n.Subject,
		HTML:    html,
		Text:    textBody(n),
	})
}

func (s *NotificationService) render(n Notification) (string, error) {
	data := struct {
		SystemName  string
		Subject     string
		Body        string
		Link        string
		ButtonLabel string
	}{
		SystemName:  systemName,
		Subject:     n.Subject,
		Body:        n.Body,
		Link:        n.Link,
		ButtonLabel: "Open request",
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute notification template: %w", err)
	}
	return buf.String(), nil
}

func textBody(n Notification) string {
	if n.Link == "" {
		return n.Body
	}
	return n.Body + "\n\n" + n.Link
}

// Dispatcher hands notifications off for delivery after the surrounding transaction has committed
type Dispatcher interface {
	Dispatch(notifications ...Notification)
}

// Notifier is the delivery side used by AsyncDispatcher
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// AsyncDispatcher queues each notification as its own job on the worker pool
type AsyncDispatcher struct {
	worker   *jobs.Worker
	notifier Notifier
}

func NewAsyncDispatcher(worker *jobs.Worker, notifier Notifier) *AsyncDispatcher {
	return &AsyncDispatcher{worker: worker, notifier: notifier}
}

func (d *AsyncDispatcher) Dispatch(notifications ...Notification) {
	for _, n := range notifications {
		job := func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
			defer cancel()
			d.notifier.Notify(ctx, n)
			return nil
		}
		if !d.worker.Enqueue(job) {
			// Worker is draining, deliver inline
			ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
			d.notifier.Notify(ctx, n)
			cancel()
		}
	}
}
