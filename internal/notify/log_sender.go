package notify

import (
	"context"
	"log/slog"

	"taxpro/internal/domain/notification"
)

// LogSender writes notifications to the log. It is used when no broker is
// configured.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, n notification.Notification) error {
	attrs := []any{
		slog.String("notification_id", n.ID.String()),
		slog.String("kind", string(n.Kind)),
		slog.String("recipient_profile_id", n.RecipientID.String()),
	}
	for key, value := range n.Payload {
		attrs = append(attrs, slog.String("payload."+key, value))
	}
	s.logger.InfoContext(ctx, "notification", attrs...)
	return nil
}
