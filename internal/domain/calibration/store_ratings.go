package calibration

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const ratingColumns = `
  r.id, r.cycle_id, r.employee_id, e.department_id,
  r.calculated_score, r.calculated_level,
  r.final_score, r.final_level,
  r.potential_score, r.potential_level, r.nine_box_position,
  r.calibrated, r.calibrated_at, r.calibrated_by, r.calibration_session_id,
  r.adjustment_type, r.adjustment_reason`

func scanRating(row pgx.Row, tenantID string) (Rating, error) {
	var r Rating
	var department *string
	err := row.Scan(
		&r.ID, &r.CycleID, &r.EmployeeID, &department,
		&r.CalculatedScore, &r.CalculatedLevel,
		&r.FinalScore, &r.FinalLevel,
		&r.PotentialScore, &r.PotentialLevel, &r.NineBoxPosition,
		&r.Calibrated, &r.CalibratedAt, &r.CalibratedBy, &r.CalibrationSessionID,
		&r.AdjustmentType, &r.AdjustmentReason,
	)
	if err != nil {
		return Rating{}, err
	}
	r.TenantID = tenantID
	if department != nil {
		r.DepartmentID = *department
	}
	return r, nil
}

// EmployeeExists is the tenant-ownership gate for rating ingest: a foreign
// tenant's employee id must be indistinguishable from a missing one.
func (s *Store) EmployeeExists(ctx context.Context, tenantID, employeeID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM employees WHERE tenant_id = $1 AND id = $2
  `, tenantID, employeeID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) UpsertRating(ctx context.Context, tenantID string, rating Rating) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO performance_ratings (tenant_id, cycle_id, employee_id, calculated_score, calculated_level)
    VALUES ($1,$2,$3,$4,$5)
    ON CONFLICT (cycle_id, employee_id)
    DO UPDATE SET calculated_score = EXCLUDED.calculated_score,
                  calculated_level = EXCLUDED.calculated_level
    WHERE performance_ratings.calibrated = false
    RETURNING id
  `, tenantID, rating.CycleID, rating.EmployeeID, rating.CalculatedScore, rating.CalculatedLevel).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		// Calibrated baselines are immutable; the upsert's WHERE skipped it.
		return "", validationError("rating is already calibrated and its baseline cannot change")
	}
	return id, err
}

func (s *Store) GetRating(ctx context.Context, tenantID, ratingID string) (Rating, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+ratingColumns+`
    FROM performance_ratings r
    JOIN employees e ON e.id = r.employee_id
    WHERE r.tenant_id = $1 AND r.id = $2
  `, tenantID, ratingID)
	rating, err := scanRating(row, tenantID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Rating{}, ErrRatingNotFound
	}
	return rating, err
}

// ListRatings returns a cycle's ratings; a non-nil departmentIDs list
// restricts rows to those departments at the query level.
func (s *Store) ListRatings(ctx context.Context, tenantID, cycleID string, departmentIDs []string) ([]Rating, error) {
	query := `
    SELECT ` + ratingColumns + `
    FROM performance_ratings r
    JOIN employees e ON e.id = r.employee_id
    WHERE r.tenant_id = $1 AND r.cycle_id = $2`
	args := []any{tenantID, cycleID}
	if departmentIDs != nil {
		query += ` AND e.department_id = ANY($3)`
		args = append(args, departmentIDs)
	}
	query += ` ORDER BY e.department_id, r.employee_id`

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Rating
	for rows.Next() {
		rating, err := scanRating(rows, tenantID)
		if err != nil {
			return nil, err
		}
		out = append(out, rating)
	}
	return out, rows.Err()
}
