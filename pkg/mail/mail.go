package mail

import (
	"context"
	"fmt"

	"github.com/sudays/sudays-backend/config"
	"github.com/sudays/sudays-backend/pkg/logger"
)

// Sender delivers a single HTML mail
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// NewSender builds the sender selected by EMAIL_PROVIDER.
// An smtp provider without credentials falls back to the console sender.
func NewSender(cfg config.EmailConfig, log *logger.Logger) (Sender, error) {
	log = log.Component("mail")

	switch cfg.Provider {
	case "smtp":
		if cfg.SMTPUsername == "" || cfg.SMTPPassword == "" {
			log.Warn("SMTP credentials missing, mails are printed to the log")
			return NewConsoleSender(log), nil
		}
		return NewSMTPSender(cfg), nil
	case "resend":
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("RESEND_API_KEY is required for the resend provider")
		}
		return NewResendSender(cfg.ResendAPIKey, formatFrom(cfg.FromName, cfg.FromEmail)), nil
	case "console":
		return NewConsoleSender(log), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}

func formatFrom(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// ConsoleSender writes mails to the log instead of delivering them
type ConsoleSender struct {
	log *logger.Logger
}

func NewConsoleSender(log *logger.Logger) *ConsoleSender {
	return &ConsoleSender{log: log}
}

func (s *ConsoleSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	s.log.Info("[DEV MODE] mail not delivered", map[string]interface{}{
		"to":      to,
		"subject": subject,
	})
	// the body carries the one-time code
	s.log.Debug("[DEV MODE] mail body", map[string]interface{}{
		"to":   to,
		"body": htmlBody,
	})
	return nil
}
