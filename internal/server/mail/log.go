package mail

import (
	"context"
	"log/slog"
)

// LogSender пишет письма в лог вместо отправки (для локальной разработки)
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a sender that only logs messages
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the message and never fails. The body carries the verification code,
// so it is written only at debug level.
func (s *LogSender) Send(ctx context.Context, to, subject, body string) error {
	s.logger.InfoContext(ctx, "mail delivery is not configured, message dropped",
		slog.String("to", to),
		slog.String("subject", subject))
	s.logger.DebugContext(ctx, "undelivered message body",
		slog.String("to", to),
		slog.String("body", body))
	return nil
}
