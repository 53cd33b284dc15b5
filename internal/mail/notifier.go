package mail

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/hospital-management/internal/core/events"
	"github.com/frahmantamala/hospital-management/internal/metrics"
)

// Notifier turns account events into outgoing mail and sends login OTPs.
type Notifier struct {
	mailer  Mailer
	baseURL string
	logger  *slog.Logger
}

func NewNotifier(mailer Mailer, baseURL string, logger *slog.Logger) *Notifier {
	return &Notifier{
		mailer:  mailer,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

func (n *Notifier) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeUserRegistered, n.onUserRegistered)
	bus.Subscribe(events.EventTypeAccountCreated, n.onAccountCreated)
}

func (n *Notifier) VerificationLink(token string) string {
	return fmt.Sprintf("%s/api/v1/auth/verify/%s", n.baseURL, token)
}

func (n *Notifier) onUserRegistered(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.UserRegisteredEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}

	err := n.mailer.Send(ctx, Message{
		To:      e.Email,
		Subject: "Verify your email address",
		Body: fmt.Sprintf("Hello %s,\n\nPlease confirm your email address by opening the link below:\n\n%s\n\nIf you did not create an account you can ignore this message.\n",
			e.Name, n.VerificationLink(e.VerifyToken)),
	})
	metrics.RecordMail("verification", err)
	if err != nil {
		return fmt.Errorf("send verification mail: %w", err)
	}

	n.logger.Info("verification mail sent", "user_id", e.UserID)
	return nil
}

func (n *Notifier) onAccountCreated(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.AccountCreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}

	err := n.mailer.Send(ctx, Message{
		To:      e.Email,
		Subject: "Your hospital account has been created",
		Body: fmt.Sprintf("Hello %s,\n\nAn account has been created for you with the email %s. You can sign in right away.\n",
			e.Name, e.Email),
	})
	metrics.RecordMail("account_created", err)
	if err != nil {
		return fmt.Errorf("send account created mail: %w", err)
	}

	n.logger.Info("account created mail sent", "user_id", e.UserID, "created_by", e.CreatedBy)
	return nil
}

// SendLoginOTP delivers the one time password synchronously; login fails when
// the mail cannot be sent.
func (n *Notifier) SendLoginOTP(ctx context.Context, to, name, otp string, ttl time.Duration) error {
	err := n.mailer.Send(ctx, Message{
		To:      to,
		Subject: "Your login code",
		Body: fmt.Sprintf("Hello %s,\n\nYour one time login code is %s. It expires in %d minutes.\n",
			name, otp, int(ttl.Minutes())),
	})
	metrics.RecordMail("login_otp", err)
	return err
}
