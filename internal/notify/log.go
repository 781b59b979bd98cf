package notify

import (
	"context"

	"go.uber.org/zap"
)

// Log records notifications instead of delivering them.
type Log struct {
	log *zap.SugaredLogger
}

// NewLog returns a log-only notifier.
func NewLog(log *zap.SugaredLogger) *Log {
	return &Log{log: log.Named("notify.log")}
}

// Notify renders the message and logs it.
func (l *Log) Notify(_ context.Context, recipients []string, tmpl Template, data map[string]string) error {
	msg, err := Render(tmpl, data)
	if err != nil {
		return err
	}
	l.log.Infow("notification", "template", tmpl, "recipients", ValidRecipients(recipients), "subject", msg.Subject)
	return nil
}
