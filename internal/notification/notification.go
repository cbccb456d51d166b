package notification

import (
	"context"
	"log/slog"
)

// Message describes an email to deliver.
type Message struct {
	To       string
	Subject  string
	Body     string
	HTMLBody string
}

// Notifier delivers messages to a recipient. Send blocks until delivery is
// confirmed or ctx expires; implementations must not retry on their own.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LogNotifier is a stub implementation that writes messages to the logger.
// Used in development when SMTP is not configured, and in tests.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier constructs a logging notifier stub.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LogNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification", "to", message.To, "subject", message.Subject, "body", message.Body)
	return nil
}
