package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"
)

// EmailConfig carries the SMTP transport settings for the email provider.
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// EmailSender delivers plain-text email over SMTP. Transport failures
// are returned as errors and are not retried.
type EmailSender struct {
	cfg EmailConfig
}

// NewEmailSender creates an EmailSender with the given transport settings.
func NewEmailSender(cfg EmailConfig) *EmailSender {
	return &EmailSender{cfg: cfg}
}

// Invoke sends one message built from config["recipient"], ["subject"]
// and ["body"] and returns a delivery acknowledgment. Upstream outputs
// routed into body are serialized to text first.
func (s *EmailSender) Invoke(ctx context.Context, config map[string]any) (any, error) {
	recipient, _ := config["recipient"].(string)
	subject, _ := config["subject"].(string)
	body := stringify(config["body"])

	if strings.TrimSpace(recipient) == "" {
		return nil, errors.New("email requires a non-empty recipient")
	}
	if strings.TrimSpace(subject) == "" {
		return nil, errors.New("email requires a non-empty subject")
	}
	if strings.TrimSpace(body) == "" {
		return nil, errors.New("email requires a non-empty body")
	}

	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(recipient); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{mail.WithPort(s.cfg.Port), mail.WithTLSPortPolicy(mail.TLSOpportunistic)}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	return map[string]any{"status": "sent", "recipient": recipient}, nil
}
