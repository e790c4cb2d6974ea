package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/config"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/logger"
)

type sendgridMailer struct {
	apiKey        string
	fromEmail     string
	fromName      string
	operatorEmail string
}

// NewOperatorMailer builds the SendGrid-backed escalation channel. Returns
// nil when no API key is configured; callers treat a nil mailer as
// escalation disabled.
func NewOperatorMailer(cfg config.EmailConfig) OperatorMailer {
	if cfg.APIKey == "" {
		return nil
	}
	return &sendgridMailer{
		apiKey:        cfg.APIKey,
		fromEmail:     cfg.FromEmail,
		fromName:      cfg.FromName,
		operatorEmail: cfg.OperatorEmail,
	}
}

func (s *sendgridMailer) SendOperatorAlert(ctx context.Context, subject, body string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail("Operations", s.operatorEmail)
	message := mail.NewSingleEmail(from, subject, to, body, "")

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send operator alert: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}

	logger.Info("Operator alert sent", "subject", subject)
	return nil
}
