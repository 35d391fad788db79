package postgres

import (
	"context"
	"fmt"

	"github.com/kickoffhq/clubpush/internal/domain/reminder"
)

var _ reminder.Log = (*ReminderLogRepo)(nil)

// ReminderLogRepo claims (training, band) pairs so a scheduler run inside the
// same tolerance window does not resend a reminder.
type ReminderLogRepo struct{ db *DB }

func NewReminderLogRepo(db *DB) *ReminderLogRepo { return &ReminderLogRepo{db: db} }

const qReminderClaim = `
INSERT INTO reminder_log (training_id, band)
VALUES ($1, $2)
ON CONFLICT (training_id, band) DO NOTHING;`

func (r *ReminderLogRepo) Claim(ctx context.Context, trainingID int64, band reminder.Band) (bool, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	cmd, err := r.db.Pool.Exec(ctx, qReminderClaim, trainingID, string(band))
	if err != nil {
		return false, fmt.Errorf("claim reminder: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}
