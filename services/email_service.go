package services

import (
	"fmt"
	"html"

	"github.com/gofiber/fiber/v2/log"
	"gopkg.in/gomail.v2"
)

// EmailConfig holds SMTP settings
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// EmailService sends transactional mail over SMTP
type EmailService struct {
	dialer *gomail.Dialer
	from   string
}

// NewEmailService creates a new email service instance
func NewEmailService(cfg EmailConfig) *EmailService {
	return &EmailService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// IsConfigured checks if SMTP is properly configured
func (e *EmailService) IsConfigured() bool {
	return e != nil && e.dialer.Host != ""
}

// SendWelcomeEmail tells an instructor created by a roster import that an
// account exists and which course it was added to
func (e *EmailService) SendWelcomeEmail(toEmail, userName, courseName string) error {
	if !e.IsConfigured() {
		return fmt.Errorf("SMTP not configured")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", e.from)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Your noticeboard account")
	m.SetBody("text/html", buildWelcomeEmailBody(userName, courseName))

	if err := e.dialer.DialAndSend(m); err != nil {
		log.Errorw("failed to send welcome email", "to", toEmail, "error", err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func buildWelcomeEmailBody(userName, courseName string) string {
	if userName == "" {
		userName = "there"
	}
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto; padding: 20px;">
  <h2 style="color: #333;">Welcome to the course noticeboard</h2>
  <p>Hi %s,</p>
  <p>An administrator added you as an instructor on <strong>%s</strong>.</p>
  <p>Sign in with this e-mail address and the default password you received from your administrator, then change it.</p>
</div>`, html.EscapeString(userName), html.EscapeString(courseName))
}
