package calibration

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const adjustmentColumns = `
  id, session_id, rating_id,
  previous_final_score, previous_final_level,
  previous_potential_score, previous_potential_level, previous_nine_box,
  new_final_score, new_final_level,
  new_potential_score, new_potential_level, new_nine_box,
  justification, adjusted_by, status, adjusted_at, applied_at`

func scanAdjustment(row pgx.Row, tenantID string) (Adjustment, error) {
	var a Adjustment
	err := row.Scan(
		&a.ID, &a.SessionID, &a.RatingID,
		&a.PreviousFinalScore, &a.PreviousFinalLevel,
		&a.PreviousPotentialScore, &a.PreviousPotentialLevel, &a.PreviousNineBox,
		&a.NewFinalScore, &a.NewFinalLevel,
		&a.NewPotentialScore, &a.NewPotentialLevel, &a.NewNineBox,
		&a.Justification, &a.AdjustedBy, &a.Status, &a.AdjustedAt, &a.AppliedAt,
	)
	if err != nil {
		return Adjustment{}, err
	}
	a.TenantID = tenantID
	return a, nil
}

func (s *Store) CreateAdjustment(ctx context.Context, adjustment Adjustment) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO calibration_adjustments
      (tenant_id, session_id, rating_id,
       previous_final_score, previous_final_level,
       previous_potential_score, previous_potential_level, previous_nine_box,
       new_final_score, new_final_level,
       new_potential_score, new_potential_level, new_nine_box,
       justification, adjusted_by, status, adjusted_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
    RETURNING id
  `, adjustment.TenantID, adjustment.SessionID, adjustment.RatingID,
		adjustment.PreviousFinalScore, adjustment.PreviousFinalLevel,
		adjustment.PreviousPotentialScore, adjustment.PreviousPotentialLevel, adjustment.PreviousNineBox,
		adjustment.NewFinalScore, adjustment.NewFinalLevel,
		adjustment.NewPotentialScore, adjustment.NewPotentialLevel, adjustment.NewNineBox,
		adjustment.Justification, adjustment.AdjustedBy, adjustment.Status, adjustment.AdjustedAt).Scan(&id)
	return id, err
}

func (s *Store) GetAdjustment(ctx context.Context, tenantID, adjustmentID string) (Adjustment, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+adjustmentColumns+`
    FROM calibration_adjustments
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, adjustmentID)
	adjustment, err := scanAdjustment(row, tenantID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Adjustment{}, ErrAdjustmentNotFound
	}
	return adjustment, err
}

func (s *Store) ListAdjustments(ctx context.Context, tenantID, sessionID string, limit, offset int) ([]Adjustment, int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM calibration_adjustments WHERE tenant_id = $1 AND session_id = $2
  `, tenantID, sessionID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT `+adjustmentColumns+`
    FROM calibration_adjustments
    WHERE tenant_id = $1 AND session_id = $2
    ORDER BY adjusted_at, id
    LIMIT $3 OFFSET $4
  `, tenantID, sessionID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Adjustment
	for rows.Next() {
		adjustment, err := scanAdjustment(rows, tenantID)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, adjustment)
	}
	return out, total, rows.Err()
}

// ListPendingAdjustments returns a session's PENDING proposals in apply
// order: (adjusted_at, id) ascending.
func (s *Store) ListPendingAdjustments(ctx context.Context, tenantID, sessionID string) ([]Adjustment, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+adjustmentColumns+`
    FROM calibration_adjustments
    WHERE tenant_id = $1 AND session_id = $2 AND status = $3
    ORDER BY adjusted_at, id
  `, tenantID, sessionID, AdjustmentStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Adjustment
	for rows.Next() {
		adjustment, err := scanAdjustment(rows, tenantID)
		if err != nil {
			return nil, err
		}
		out = append(out, adjustment)
	}
	return out, rows.Err()
}
