package calibration

import (
	"context"
	"fmt"
	"time"
)

// ApplyClose writes every commit into its authoritative rating, marks the
// proposals applied, and closes the session, all inside one transaction.
// Each statement must touch exactly one row; anything else aborts and rolls
// the whole close back. A calibrated rating always carries a final score:
// a potential-only proposal falls back to the calculated baseline.
func (s *Store) ApplyClose(ctx context.Context, tenantID, sessionID string, commits []RatingCommit, closedAt time.Time) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, commit := range commits {
		tag, err := tx.Exec(ctx, `
      UPDATE performance_ratings
      SET final_score = COALESCE($1, final_score, calculated_score),
          final_level = COALESCE($2, final_level, calculated_level),
          potential_score = COALESCE($3, potential_score),
          potential_level = COALESCE($4, potential_level),
          nine_box_position = COALESCE($5, nine_box_position),
          adjustment_type = COALESCE($6, adjustment_type),
          calibrated = true,
          calibrated_at = $7,
          calibrated_by = $8,
          calibration_session_id = $9,
          adjustment_reason = $10
      WHERE tenant_id = $11 AND id = $12
    `, commit.NewFinalScore, commit.NewFinalLevel,
			commit.NewPotentialScore, commit.NewPotentialLevel,
			commit.NewNineBox, commit.AdjustmentType,
			closedAt, commit.AdjustedBy, sessionID, commit.Justification,
			tenantID, commit.RatingID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() != 1 {
			return fmt.Errorf("rating %s not updated", commit.RatingID)
		}

		tag, err = tx.Exec(ctx, `
      UPDATE calibration_adjustments
      SET status = $1, applied_at = $2
      WHERE tenant_id = $3 AND id = $4 AND status = $5
    `, AdjustmentStatusApplied, closedAt, tenantID, commit.AdjustmentID, AdjustmentStatusPending)
		if err != nil {
			return err
		}
		if tag.RowsAffected() != 1 {
			return fmt.Errorf("adjustment %s not applied", commit.AdjustmentID)
		}
	}

	tag, err := tx.Exec(ctx, `
    UPDATE calibration_sessions
    SET status = $1, closed_at = $2
    WHERE tenant_id = $3 AND id = $4 AND status = $5
  `, SessionStatusClosed, closedAt, tenantID, sessionID, SessionStatusInProgress)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("session %s not transitioned to closed", sessionID)
	}

	return tx.Commit(ctx)
}
