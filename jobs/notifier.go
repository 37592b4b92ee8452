package jobs

import (
	"context"
	"log/slog"
)

// WelcomeNotifier enqueues welcome emails for freshly registered users. It
// satisfies the users service Notifier interface.
type WelcomeNotifier struct {
	client   *Client
	loginURL string
	logger   *slog.Logger
}

// NewWelcomeNotifier constructs a WelcomeNotifier.
func NewWelcomeNotifier(client *Client, loginURL string, logger *slog.Logger) *WelcomeNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &WelcomeNotifier{client: client, loginURL: loginURL, logger: logger}
}

// SendWelcome enqueues the registration welcome email.
func (n *WelcomeNotifier) SendWelcome(ctx context.Context, email string) error {
	if n.client == nil {
		n.logger.Warn("job queue not configured, skipping welcome email", slog.String("to", email))
		return nil
	}
	_, err := n.client.EnqueueSendEmail(ctx, WelcomeEmail(email, n.loginURL))
	return err
}
