package attendance

import (
	"context"
	"time"
)

type Repo interface {
	// Aggregate computes per-member attendance for sessions starting in
	// [from, to). An empty sport means all sports.
	Aggregate(ctx context.Context, from, to time.Time, sport string) ([]*MemberStat, error)
}

// Summarizer turns aggregated numbers into free text. Implementations call an
// external generative service; the response is used verbatim.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}
