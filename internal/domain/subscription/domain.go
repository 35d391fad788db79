package subscription

import "time"

const (
	DeviceWeb     = "web"
	DeviceAndroid = "android"
	DeviceIOS     = "ios"
)

// Subscription is one stored delivery target for a member's device. Web rows
// carry the push endpoint plus encryption keys; native rows carry a platform
// token. A member may hold several rows, one per device.
type Subscription struct {
	ID       int64  `json:"id"`
	MemberID int64  `json:"member_id"`
	DeviceID string `json:"device_id"`
	// web | android | ios
	DeviceType string `json:"device_type"`

	Token    string `json:"token,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`
	P256dh   string `json:"p256dh,omitempty"`
	Auth     string `json:"auth,omitempty"`

	DeviceName string    `json:"device_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func ValidDeviceType(t string) bool {
	switch t {
	case DeviceWeb, DeviceAndroid, DeviceIOS:
		return true
	}
	return false
}

func (s *Subscription) IsWeb() bool   { return s.DeviceType == DeviceWeb }
func (s *Subscription) IsApple() bool { return s.DeviceType == DeviceIOS }
