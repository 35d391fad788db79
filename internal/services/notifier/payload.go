package notifier

import (
	"encoding/json"

	"firebase.google.com/go/v4/messaging"

	"github.com/kickoffhq/clubpush/internal/domain/subscription"
)

// Notification is the channel-independent message triple; the adapters below
// shape it per delivery channel.
type Notification struct {
	Title string
	Body  string
	Data  map[string]string
}

// WebPayload is the JSON body handed to the browser's service worker.
func WebPayload(n *Notification) ([]byte, error) {
	payload := map[string]any{
		"title": n.Title,
		"body":  n.Body,
	}
	if len(n.Data) > 0 {
		payload["data"] = n.Data
	}
	return json.Marshal(payload)
}

// FCMMessage shapes the platform push message. Apple targets get the APNS
// envelope (aps alert, content-available, mutable-content) on top of the
// cross-platform notification block.
func FCMMessage(sub *subscription.Subscription, n *Notification) *messaging.Message {
	msg := &messaging.Message{
		Token: sub.Token,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: n.Data,
	}

	if sub.IsApple() {
		msg.APNS = &messaging.APNSConfig{
			Headers: map[string]string{"apns-priority": "10"},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: n.Title,
						Body:  n.Body,
					},
					Sound:            "default",
					ContentAvailable: true,
					MutableContent:   true,
				},
			},
		}
	} else {
		msg.Android = &messaging.AndroidConfig{Priority: "high"}
	}

	return msg
}
