package notify

import (
	"context"
	"fmt"

	"FieldMonitorAPI/internal/config"
	"FieldMonitorAPI/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridSender sends alert emails through SendGrid. When a dynamic
// template ID is configured the alert message is injected as template
// data; otherwise a plain-text mail is sent.
type SendGridSender struct {
	client     *sendgrid.Client
	from       string
	templateID string
	log        *logger.Logger
}

func NewSendGridSender(cfg *config.SendGridConfig, log *logger.Logger) *SendGridSender {
	return &SendGridSender{
		client:     sendgrid.NewSendClient(cfg.APIKey),
		from:       cfg.FromEmail,
		templateID: cfg.TemplateID,
		log:        log,
	}
}

func (s *SendGridSender) SendEmail(ctx context.Context, to, subject, message string) error {
	var m *mail.SGMailV3

	if s.templateID != "" {
		m = mail.NewV3Mail()
		m.SetFrom(mail.NewEmail("", s.from))
		m.SetTemplateID(s.templateID)

		p := mail.NewPersonalization()
		p.AddTos(mail.NewEmail("", to))
		p.Subject = subject
		p.SetDynamicTemplateData("alertmessage", message)
		m.AddPersonalizations(p)
	} else {
		m = mail.NewSingleEmail(
			mail.NewEmail("", s.from),
			subject,
			mail.NewEmail("", to),
			message,
			message,
		)
	}

	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid send to %s failed: %w", to, err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send to %s failed with status %d: %s", to, resp.StatusCode, resp.Body)
	}

	s.log.Debug("Email sent to %s (status %d)", to, resp.StatusCode)
	return nil
}
