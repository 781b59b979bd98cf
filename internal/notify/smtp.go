package notify

import (
	"context"
	"fmt"
	"time"

	"project-tracker/config"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// SMTP delivers notifications through a mail relay.
type SMTP struct {
	cfg config.SMTPConfig
	log *zap.SugaredLogger
	now func() time.Time
}

// NewSMTP returns an SMTP notifier.
func NewSMTP(cfg config.SMTPConfig, log *zap.SugaredLogger) *SMTP {
	return &SMTP{cfg: cfg, log: log.Named("notify.smtp"), now: time.Now}
}

// Notify sends one message addressed to all valid recipients.
func (s *SMTP) Notify(ctx context.Context, recipients []string, tmpl Template, data map[string]string) error {
	to := ValidRecipients(recipients)
	if len(to) == 0 {
		return nil
	}
	msg, err := Render(tmpl, data)
	if err != nil {
		return err
	}
	m, err := s.message(to, msg)
	if err != nil {
		return err
	}
	c, err := s.client()
	if err != nil {
		return err
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	s.log.Debugw("notification sent", "template", tmpl, "recipients", len(to))
	return nil
}

func (s *SMTP) message(to []string, msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("parse sender: %w", err)
	}
	if err := m.To(to...); err != nil {
		return nil, fmt.Errorf("parse recipients: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetDateWithValue(s.now())
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	return m, nil
}

func (s *SMTP) client() (*mail.Client, error) {
	opts := []mail.Option{mail.WithTLSPolicy(mail.TLSOpportunistic)}
	if s.cfg.Port > 0 {
		opts = append(opts, mail.WithPort(s.cfg.Port))
	}
	if s.cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(s.cfg.Timeout))
	}
	if s.cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.User),
			mail.WithPassword(s.cfg.Password),
		)
	}
	c, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return c, nil
}
