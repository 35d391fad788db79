package reminder

import "time"

// Band names a time-offset trigger window around a session start.
type Band string

const (
	BandWeekBefore Band = "week_before"
	BandDayBefore  Band = "day_before"
)

const (
	// Target offsets of the two bands, in hours before session start.
	WeekBeforeHours = 168.0
	DayBeforeHours  = 24.0
	// BandToleranceHours is the half-width of each band: a band fires when
	// the distance to its target offset is strictly below this.
	BandToleranceHours = 1.0
)

// InWeekBand reports whether hoursUntil falls in the one-week band.
func InWeekBand(hoursUntil float64) bool {
	return abs(hoursUntil-WeekBeforeHours) < BandToleranceHours
}

// InDayBand reports whether hoursUntil falls in the one-day band.
func InDayBand(hoursUntil float64) bool {
	return abs(hoursUntil-DayBeforeHours) < BandToleranceHours
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// Dispatch is the event handed to the notifier: one broadcast to deliver.
// TrainingID is zero for admin broadcasts.
type Dispatch struct {
	TrainingID  int64     `json:"training_id,omitempty"`
	Band        Band      `json:"band,omitempty"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Sport       string    `json:"sport,omitempty"`
	TargetGroup string    `json:"target_group"`
	RequestedAt time.Time `json:"requested_at"`
}

const (
	TargetAll   = "all"
	TargetSport = "sport"
)
