package services

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"

	"leadcrm/internal/config"
)

type EmailService interface {
	SendWelcomeEmail(email, fullName string) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

// NewEmailService returns nil when no SMTP host is configured; callers skip mail then.
func NewEmailService(cfg config.EmailConfig) EmailService {
	if cfg.SMTPHost == "" {
		return nil
	}
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	return &emailService{
		dialer: dialer,
		from:   cfg.FromEmail,
	}
}

func (s *emailService) SendWelcomeEmail(email, fullName string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Welcome to Lead CRM")

	body := fmt.Sprintf(`
		<h2>Welcome, %s!</h2>
		<p>Your account has been created. You can now sign in and start tracking your leads.</p>
		<p>Best regards,<br>The Lead CRM Team</p>
	`, html.EscapeString(fullName))

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	return nil
}
