package mailer

import (
	"context"

	"github.com/mealdiary/mealdiary"
)

// LogMailer prints reset links instead of sending them. Used when no
// API key is configured.
type LogMailer struct {
	Logger mealdiary.Logger
}

var _ mealdiary.Mailer = (*LogMailer)(nil)

func NewLogMailer(logger mealdiary.Logger) *LogMailer {
	if logger == nil {
		logger = mealdiary.DefaultLogger()
	}
	return &LogMailer{Logger: logger}
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	m.Logger.Info("password reset requested to=%s link=%s", to, link)
	return nil
}
