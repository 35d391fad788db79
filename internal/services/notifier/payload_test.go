package notifier

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kickoffhq/clubpush/internal/domain/subscription"
)

func TestWebPayload(t *testing.T) {
	raw, err := WebPayload(&Notification{
		Title: "Rappel d'entraînement",
		Body:  "Futsal le 08/09/2026 à 19h30",
		Data:  map[string]string{"training_id": "7"},
	})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "Rappel d'entraînement", got["title"])
	assert.Equal(t, "Futsal le 08/09/2026 à 19h30", got["body"])
	assert.Equal(t, map[string]any{"training_id": "7"}, got["data"])
}

func TestWebPayload_OmitsEmptyData(t *testing.T) {
	raw, err := WebPayload(&Notification{Title: "t", Body: "b"})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.NotContains(t, got, "data")
}

func TestFCMMessage_Apple(t *testing.T) {
	sub := nativeRow(1, 10, subscription.DeviceIOS)
	msg := FCMMessage(sub, &Notification{Title: "t", Body: "b"})

	assert.Equal(t, "tok", msg.Token)
	require.NotNil(t, msg.APNS)
	assert.Equal(t, "10", msg.APNS.Headers["apns-priority"])
	aps := msg.APNS.Payload.Aps
	assert.Equal(t, "t", aps.Alert.Title)
	assert.Equal(t, "b", aps.Alert.Body)
	assert.Equal(t, "default", aps.Sound)
	assert.True(t, aps.ContentAvailable)
	assert.True(t, aps.MutableContent)
	assert.Nil(t, msg.Android)
}

func TestFCMMessage_Android(t *testing.T) {
	sub := nativeRow(1, 10, subscription.DeviceAndroid)
	msg := FCMMessage(sub, &Notification{Title: "t", Body: "b"})

	require.NotNil(t, msg.Android)
	assert.Equal(t, "high", msg.Android.Priority)
	assert.Nil(t, msg.APNS)
	require.NotNil(t, msg.Notification)
	assert.Equal(t, "t", msg.Notification.Title)
}
