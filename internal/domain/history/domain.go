package history

import "time"

// Entry is one append-only audit row, written once per dispatch event. It is
// never updated; there is no retry state keyed off it.
type Entry struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	TrainingID  *int64    `json:"training_id,omitempty"`
	TargetGroup string    `json:"target_group"`
	Sport       string    `json:"sport,omitempty"`
	SentAt      time.Time `json:"sent_at"`
}
