package attendance

// MemberStat is one member's aggregated attendance over a reporting window.
type MemberStat struct {
	MemberID   int64   `json:"member_id"`
	MemberName string  `json:"member_name"`
	Sport      string  `json:"sport"`
	Sessions   int     `json:"sessions"`
	Attended   int     `json:"attended"`
	Percent    float64 `json:"percent"`
}

const (
	PeriodMonth = "month"
	PeriodYear  = "year"
)

func ValidPeriod(p string) bool { return p == PeriodMonth || p == PeriodYear }
