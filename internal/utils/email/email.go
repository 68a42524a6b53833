package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/blog-service/internal/config"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   func(e *email.Email) error
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	s := &Sender{
		cfg:    cfg,
		logger: logger,
	}
	s.send = s.sendSMTP
	return s
}

// SendWelcome greets a newly registered user
func (s *Sender) SendWelcome(to, username string) error {
	body := fmt.Sprintf("Dear %s,\n\n", username)
	body += "Your account has been created. You can now log in and start writing posts.\n"
	body += "\nBest regards,\nBlog Service"
	return s.deliver(to, "Welcome to Blog Service", body)
}

// SendPasswordChanged tells a user their password was changed
func (s *Sender) SendPasswordChanged(to, username string) error {
	body := fmt.Sprintf("Dear %s,\n\n", username)
	body += fmt.Sprintf(
		"The password for your account was changed at %s UTC.\n"+
			"If you did not make this change, please contact support immediately.\n",
		time.Now().UTC().Format("2006-01-02 15:04:05"),
	)
	body += "\nBest regards,\nBlog Service"
	return s.deliver(to, "Your password was changed", body)
}

func (s *Sender) deliver(to, subject, body string) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if err := s.send(e); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

func (s *Sender) sendSMTP(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	return e.Send(addr, auth)
}
