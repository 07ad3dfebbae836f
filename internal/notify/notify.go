// package notify sends sync status notifications by email.
package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/desertthunder/likesync/internal/shared"
)

// Sender delivers an already composed message.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Mailer sends plain-text messages from the configured sender to the configured recipient.
type Mailer struct {
	from   string
	to     string
	sender Sender
}

// NewMailer builds an SMTP mailer using STARTTLS and plain authentication.
//
// It returns [shared.ErrEmailNotConfigured] when sender, password or recipient is missing.
func NewMailer(cfg shared.EmailConfig) (*Mailer, error) {
	if !cfg.Configured() {
		return nil, shared.ErrEmailNotConfigured
	}

	host := cfg.SMTPHost
	if host == "" {
		host = "smtp.gmail.com"
	}
	port := cfg.SMTPPort
	if port == 0 {
		port = 587
	}

	client, err := mail.NewClient(host,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Sender),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	return NewMailerWithSender(cfg, client)
}

// NewMailerWithSender builds a Mailer around an existing [Sender].
func NewMailerWithSender(cfg shared.EmailConfig, sender Sender) (*Mailer, error) {
	if cfg.Sender == "" || cfg.Recipient == "" {
		return nil, shared.ErrEmailNotConfigured
	}
	return &Mailer{from: cfg.Sender, to: cfg.Recipient, sender: sender}, nil
}

// Compose builds the message without sending it.
func (m *Mailer) Compose(subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, fmt.Errorf("%w: sender address: %v", shared.ErrInvalidConfig, err)
	}
	if err := msg.To(m.to); err != nil {
		return nil, fmt.Errorf("%w: recipient address: %v", shared.ErrInvalidConfig, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}

// Send composes and delivers one message.
func (m *Mailer) Send(ctx context.Context, subject, body string) error {
	msg, err := m.Compose(subject, body)
	if err != nil {
		return err
	}

	if err := m.sender.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
