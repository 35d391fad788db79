package preference

import "time"

// Preference is the per-member push switch. The bit is advisory: delivery is
// driven by the subscription rows, which the disable path removes first.
type Preference struct {
	MemberID    int64     `json:"member_id"`
	PushEnabled bool      `json:"push_enabled"`
	UpdatedAt   time.Time `json:"updated_at"`
}
