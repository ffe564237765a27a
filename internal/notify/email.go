package notify

import (
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"kpiflow/internal/config"
)

// EmailSender sends notifications over SMTP. When no sender credentials are
// configured it runs in simulated mode: the message is logged and reported
// as delivered, matching how the system behaves in development.
type EmailSender struct {
	host     string
	port     int
	sender   string
	password string
	logger   *zap.Logger
}

// NewEmailSender creates an EmailSender from config.
func NewEmailSender(cfg *config.Config, logger *zap.Logger) *EmailSender {
	return &EmailSender{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		sender:   cfg.SenderEmail,
		password: cfg.SenderPassword,
		logger:   logger,
	}
}

func (s *EmailSender) simulated() bool {
	return s.sender == "" || s.password == ""
}

// Send delivers one message, or logs it in simulated mode.
func (s *EmailSender) Send(recipient, subject, body string) error {
	if s.simulated() {
		s.logger.Info("simulated notification",
			zap.String("to", recipient),
			zap.String("subject", subject),
			zap.String("body", body),
		)
		return nil
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		s.sender, recipient, subject, body)
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	auth := smtp.PlainAuth("", s.sender, s.password, s.host)

	if err := smtp.SendMail(addr, auth, s.sender, []string{recipient}, []byte(msg)); err != nil {
		s.logger.Warn("notification delivery failed",
			zap.String("to", recipient),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send notification to %s: %w", recipient, err)
	}
	return nil
}
