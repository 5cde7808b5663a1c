package smtp

import (
	"fmt"

	"github.com/go-confirm-api/internal/config"
	"gopkg.in/gomail.v2"
)

// Mailer sends emails.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

// sender is the part of *gomail.Dialer the mailer uses.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type mailer struct {
	dialer sender
	from   string
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:   cfg.SMTPFrom,
	}
}

func (m *mailer) SendEmail(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
