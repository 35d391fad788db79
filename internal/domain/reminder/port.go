package reminder

import "context"

// Log is the idempotence guard for the trigger bands. Claim records that a
// (training, band) pair has been handled; a second claim for the same pair
// reports false and the caller sends nothing.
type Log interface {
	Claim(ctx context.Context, trainingID int64, band Band) (bool, error)
}

// Events publishes dispatch requests for the notifier.
type Events interface {
	PublishDispatch(ctx context.Context, d *Dispatch) error
}
