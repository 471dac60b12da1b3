package calibration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) CreateCycle(ctx context.Context, tenantID string, cycle Cycle) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO performance_cycles (tenant_id, name, start_date, end_date, status)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, tenantID, cycle.Name, cycle.StartDate, cycle.EndDate, cycle.Status).Scan(&id)
	return id, err
}

func (s *Store) ListCycles(ctx context.Context, tenantID string) ([]Cycle, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, start_date, end_date, status
    FROM performance_cycles
    WHERE tenant_id = $1
    ORDER BY start_date DESC
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Cycle
	for rows.Next() {
		var c Cycle
		if err := rows.Scan(&c.ID, &c.Name, &c.StartDate, &c.EndDate, &c.Status); err != nil {
			return nil, err
		}
		c.TenantID = tenantID
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) CycleExists(ctx context.Context, tenantID, cycleID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM performance_cycles WHERE tenant_id = $1 AND id = $2
  `, tenantID, cycleID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

const sessionColumns = `
  s.id, s.cycle_id, s.name, s.description, s.status, s.department_ids,
  s.enable_forced_distribution, s.distribution_targets, s.facilitator_id,
  s.scheduled_at, s.closed_at, s.created_at,
  (SELECT COUNT(1)
     FROM performance_ratings r
     JOIN employees e ON e.id = r.employee_id
    WHERE r.tenant_id = s.tenant_id
      AND r.cycle_id = s.cycle_id
      AND (cardinality(s.department_ids) = 0 OR e.department_id = ANY(s.department_ids))),
  (SELECT COUNT(1) FROM calibration_adjustments a WHERE a.session_id = s.id)`

func scanSession(row pgx.Row, tenantID string) (Session, error) {
	var session Session
	var targetsJSON []byte
	err := row.Scan(
		&session.ID, &session.CycleID, &session.Name, &session.Description,
		&session.Status, &session.DepartmentIDs, &session.EnableForcedDistribution,
		&targetsJSON, &session.FacilitatorID, &session.ScheduledAt,
		&session.ClosedAt, &session.CreatedAt,
		&session.CandidateCount, &session.AdjustmentCount,
	)
	if err != nil {
		return Session{}, err
	}
	session.TenantID = tenantID
	if session.DepartmentIDs == nil {
		session.DepartmentIDs = []string{}
	}
	if len(targetsJSON) > 0 {
		if err := json.Unmarshal(targetsJSON, &session.DistributionTargets); err != nil {
			return Session{}, err
		}
	}
	return session, nil
}

func (s *Store) CreateSession(ctx context.Context, tenantID string, session Session, facilitatorEmail string) (string, error) {
	var targetsJSON []byte
	if session.DistributionTargets != nil {
		payload, err := json.Marshal(session.DistributionTargets)
		if err != nil {
			return "", err
		}
		targetsJSON = payload
	}
	if session.DepartmentIDs == nil {
		session.DepartmentIDs = []string{}
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var id string
	err = tx.QueryRow(ctx, `
    INSERT INTO calibration_sessions
      (tenant_id, cycle_id, name, description, status, department_ids,
       enable_forced_distribution, distribution_targets, facilitator_id, scheduled_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    RETURNING id
  `, tenantID, session.CycleID, session.Name, session.Description, session.Status,
		session.DepartmentIDs, session.EnableForcedDistribution, targetsJSON,
		session.FacilitatorID, session.ScheduledAt).Scan(&id)
	if err != nil {
		return "", err
	}

	if facilitatorEmail != "" {
		if _, err := tx.Exec(ctx, `
      INSERT INTO calibration_participants (session_id, participant_email, role, accepted_at)
      VALUES ($1,$2,$3,now())
    `, id, facilitatorEmail, ParticipantFacilitator); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) GetSession(ctx context.Context, tenantID, sessionID string) (Session, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+sessionColumns+`
    FROM calibration_sessions s
    WHERE s.tenant_id = $1 AND s.id = $2
  `, tenantID, sessionID)
	session, err := scanSession(row, tenantID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrSessionNotFound
	}
	return session, err
}

func (s *Store) ListSessions(ctx context.Context, tenantID string, filter SessionFilter) ([]Session, error) {
	query := `
    SELECT ` + sessionColumns + `
    FROM calibration_sessions s
    WHERE s.tenant_id = $1`
	args := []any{tenantID}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND s.status = $%d", len(args)+1)
		args = append(args, filter.Status)
	}
	if filter.CycleID != "" {
		query += fmt.Sprintf(" AND s.cycle_id = $%d", len(args)+1)
		args = append(args, filter.CycleID)
	}
	query += ` ORDER BY s.created_at DESC`

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		session, err := scanSession(rows, tenantID)
		if err != nil {
			return nil, err
		}
		out = append(out, session)
	}
	return out, rows.Err()
}

func (s *Store) TransitionSession(ctx context.Context, tenantID, sessionID, from, to string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE calibration_sessions
    SET status = $1
    WHERE tenant_id = $2 AND id = $3 AND status = $4
  `, to, tenantID, sessionID, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) AddParticipant(ctx context.Context, sessionID, email, role string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO calibration_participants (session_id, participant_email, role)
    VALUES ($1,$2,$3)
    RETURNING id
  `, sessionID, email, role).Scan(&id)
	return id, err
}

func (s *Store) ListParticipants(ctx context.Context, sessionID string) ([]Participant, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, session_id, participant_email, role, accepted_at
    FROM calibration_participants
    WHERE session_id = $1
    ORDER BY participant_email
  `, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Participant
	for rows.Next() {
		var p Participant
		if err := rows.Scan(&p.ID, &p.SessionID, &p.Email, &p.Role, &p.AcceptedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) ParticipantRole(ctx context.Context, sessionID, email string) (string, error) {
	var role string
	err := s.DB.QueryRow(ctx, `
    SELECT role
    FROM calibration_participants
    WHERE session_id = $1 AND lower(participant_email) = lower($2)
  `, sessionID, email).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return role, err
}
