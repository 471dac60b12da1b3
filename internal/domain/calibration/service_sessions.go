package calibration

import (
	"context"
	"strings"

	"calibra/internal/domain/auth"
	"calibra/internal/domain/classification"
	"calibra/internal/domain/org"
)

// CreateSession persists a new session in the proposal-eligible state and
// enrolls the creator as its facilitator. The cycle lookup is tenant-scoped,
// so a foreign cycle id is indistinguishable from a missing one.
func (s *Service) CreateSession(ctx context.Context, scope org.Scope, user auth.UserContext, session Session) (Session, error) {
	if strings.TrimSpace(session.Name) == "" {
		return Session{}, validationError("session name is required")
	}
	exists, err := s.store.CycleExists(ctx, user.TenantID, session.CycleID)
	if err != nil {
		return Session{}, err
	}
	if !exists {
		return Session{}, ErrCycleNotFound
	}
	if session.EnableForcedDistribution {
		if verr := validateTargets(session.DistributionTargets, classification.IsKnownLevel); verr != nil {
			return Session{}, verr
		}
	} else {
		session.DistributionTargets = nil
	}
	if scope.Restricted() {
		if len(session.DepartmentIDs) == 0 {
			return Session{}, ErrForbidden
		}
		for _, departmentID := range session.DepartmentIDs {
			if !scope.AllowsDepartment(departmentID) {
				return Session{}, ErrForbidden
			}
		}
	}

	session.TenantID = user.TenantID
	session.Status = SessionStatusInProgress
	session.FacilitatorID = user.UserID
	id, err := s.store.CreateSession(ctx, user.TenantID, session, user.Email)
	if err != nil {
		return Session{}, err
	}
	return s.store.GetSession(ctx, user.TenantID, id)
}

func (s *Service) GetSession(ctx context.Context, scope org.Scope, sessionID string) (Session, error) {
	session, err := s.store.GetSession(ctx, scope.TenantID, sessionID)
	if err != nil {
		return Session{}, err
	}
	if !scope.AllowsAny(session.DepartmentIDs) {
		return Session{}, ErrForbidden
	}
	return session, nil
}

func (s *Service) ListSessions(ctx context.Context, scope org.Scope, filter SessionFilter) ([]Session, error) {
	sessions, err := s.store.ListSessions(ctx, scope.TenantID, filter)
	if err != nil {
		return nil, err
	}
	visible := make([]Session, 0, len(sessions))
	for _, session := range sessions {
		if scope.AllowsAny(session.DepartmentIDs) {
			visible = append(visible, session)
		}
	}
	return visible, nil
}

// ActivateSession performs the DRAFT to IN_PROGRESS transition for sessions
// created dormant by imports. The state machine is linear; anything else is
// an invalid-state failure.
func (s *Service) ActivateSession(ctx context.Context, scope org.Scope, sessionID string) (Session, error) {
	session, err := s.GetSession(ctx, scope, sessionID)
	if err != nil {
		return Session{}, err
	}
	if session.Status != SessionStatusDraft {
		return Session{}, ErrSessionNotDraft
	}
	moved, err := s.store.TransitionSession(ctx, scope.TenantID, sessionID, SessionStatusDraft, SessionStatusInProgress)
	if err != nil {
		return Session{}, err
	}
	if !moved {
		return Session{}, ErrSessionNotDraft
	}
	return s.store.GetSession(ctx, scope.TenantID, sessionID)
}

func (s *Service) AddParticipant(ctx context.Context, scope org.Scope, sessionID, email, role string) (Participant, error) {
	session, err := s.GetSession(ctx, scope, sessionID)
	if err != nil {
		return Participant{}, err
	}
	if session.Status == SessionStatusClosed {
		return Participant{}, ErrSessionNotOpen
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return Participant{}, validationError("participant email is required")
	}
	valid := false
	for _, known := range ParticipantRoles {
		if role == known {
			valid = true
		}
	}
	if !valid {
		return Participant{}, validationError("participant role must be FACILITATOR, REVIEWER, or OBSERVER")
	}
	existing, err := s.store.ParticipantRole(ctx, sessionID, email)
	if err != nil {
		return Participant{}, err
	}
	if existing != "" {
		return Participant{}, validationError("participant already enrolled in this session")
	}
	id, err := s.store.AddParticipant(ctx, sessionID, email, role)
	if err != nil {
		return Participant{}, err
	}
	return Participant{ID: id, SessionID: sessionID, Email: email, Role: role}, nil
}

func (s *Service) ListParticipants(ctx context.Context, scope org.Scope, sessionID string) ([]Participant, error) {
	if _, err := s.GetSession(ctx, scope, sessionID); err != nil {
		return nil, err
	}
	return s.store.ListParticipants(ctx, sessionID)
}
