package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"

	"MarketDigest/internal/config"
	"MarketDigest/internal/domain"
	"MarketDigest/internal/ports"
)

// Mailer delivers digests over SMTP. Exactly one message is sent per
// successful pipeline run; there is no de-duplication or retry here.
type Mailer struct {
	cfg    config.EmailConfig
	logger *slog.Logger
}

var _ ports.Notifier = (*Mailer)(nil)

// NewMailer registers the SMTP account used for delivery.
func NewMailer(cfg config.EmailConfig, log *slog.Logger) *Mailer {
	return &Mailer{cfg: cfg, logger: log}
}

// Deliver sends the digest as a plain-text email. Errors are
// domain.DeliveryError.
func (m *Mailer) Deliver(ctx context.Context, digest domain.Digest) error {
	if m.cfg.Host == "" || m.cfg.Username == "" || m.cfg.Password == "" {
		return &domain.DeliveryError{Err: fmt.Errorf("mailer misconfigured")}
	}

	recipient := digest.Recipient
	if recipient == "" {
		recipient = m.cfg.To
	}
	if recipient == "" {
		return &domain.DeliveryError{Err: fmt.Errorf("no recipient configured")}
	}

	msg := mail.NewMsg()
	if err := msg.From(m.from()); err != nil {
		return &domain.DeliveryError{Err: fmt.Errorf("set sender: %w", err)}
	}
	if err := msg.To(recipient); err != nil {
		return &domain.DeliveryError{Err: fmt.Errorf("set recipient: %w", err)}
	}
	msg.Subject(digest.Subject)
	msg.SetBodyString(mail.TypeTextPlain, digest.Body)

	client, err := m.newClient()
	if err != nil {
		return &domain.DeliveryError{Err: fmt.Errorf("smtp client: %w", err)}
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return &domain.DeliveryError{Err: fmt.Errorf("send mail: %w", err)}
	}

	if m.logger != nil {
		m.logger.Info("digest delivered", "run_id", digest.RunID, "subject", digest.Subject)
	}
	return nil
}

func (m *Mailer) from() string {
	if m.cfg.From != "" {
		return m.cfg.From
	}
	return m.cfg.Username
}

func (m *Mailer) newClient() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
	}

	if m.cfg.Port != 0 {
		opts = append(opts, mail.WithPort(m.cfg.Port))
	}

	if m.cfg.SSL {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}

	return mail.NewClient(m.cfg.Host, opts...)
}
