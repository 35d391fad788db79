package notifier

import (
	"context"
	"fmt"
	"io"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	config "github.com/kickoffhq/clubpush/internal/config/notifier"
	"github.com/kickoffhq/clubpush/internal/domain/subscription"
)

// WebSender delivers a payload to one browser subscription.
type WebSender interface {
	Send(ctx context.Context, sub *subscription.Subscription, payload []byte) error
}

type WebPush struct {
	opts webpush.Options
	log  *zap.Logger
}

func NewWebPush(cfg config.VAPID, log *zap.Logger) *WebPush {
	return &WebPush{
		opts: webpush.Options{
			Subscriber:      cfg.Subscriber,
			VAPIDPublicKey:  cfg.PublicKey,
			VAPIDPrivateKey: cfg.PrivateKey,
			TTL:             int(cfg.TTL.Seconds()),
		},
		log: log.With(zap.String("component", "notifier.webpush")),
	}
}

func (w *WebPush) Send(ctx context.Context, sub *subscription.Subscription, payload []byte) error {
	s := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}

	opts := w.opts
	resp, err := webpush.SendNotificationWithContext(ctx, payload, s, &opts)
	if err != nil {
		return fmt.Errorf("webpush send: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		// The push service no longer knows this endpoint.
		return ErrTokenGone
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webpush status %d: %s", resp.StatusCode, body)
	}
}
