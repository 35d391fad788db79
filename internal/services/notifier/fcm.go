package notifier

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	config "github.com/kickoffhq/clubpush/internal/config/notifier"
	"github.com/kickoffhq/clubpush/internal/domain/subscription"
)

// NativeSender delivers to one platform-token subscription (android/ios).
type NativeSender interface {
	Send(ctx context.Context, sub *subscription.Subscription, n *Notification) error
}

type fcmClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type FCM struct {
	client fcmClient
	log    *zap.Logger
}

// NewFCM builds the messaging client from explicit credentials, falling back
// to application-default credentials when none are configured.
func NewFCM(ctx context.Context, cfg config.FCM, log *zap.Logger) (*FCM, error) {
	var opts []option.ClientOption
	switch {
	case cfg.CredentialsPath != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	case cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("create messaging client: %w", err)
	}
	return &FCM{client: client, log: log.With(zap.String("component", "notifier.fcm"))}, nil
}

func (f *FCM) Send(ctx context.Context, sub *subscription.Subscription, n *Notification) error {
	_, err := f.client.Send(ctx, FCMMessage(sub, n))
	if err == nil {
		return nil
	}
	if messaging.IsRegistrationTokenNotRegistered(err) || messaging.IsInvalidArgument(err) {
		return ErrTokenGone
	}
	return fmt.Errorf("fcm send: %w", err)
}
