package calibration

import (
	"context"
	"fmt"
	"time"

	"calibra/internal/domain/org"
)

// CloseSession finalizes a session: every PENDING proposal is written into
// its authoritative rating, proposals flip to APPLIED, and the session
// becomes CLOSED, all inside one transaction. Proposals apply in
// (adjustedAt, id) order, so when several target the same rating the most
// recently created one wins. A failed commit leaves the session IN_PROGRESS
// with every proposal still PENDING; the call is safely retryable.
func (s *Service) CloseSession(ctx context.Context, scope org.Scope, sessionID string, tolerancePct float64) (CloseResult, error) {
	session, err := s.store.GetSession(ctx, scope.TenantID, sessionID)
	if err != nil {
		return CloseResult{}, err
	}
	if !scope.AllowsAny(session.DepartmentIDs) {
		return CloseResult{}, ErrForbidden
	}
	if session.Status != SessionStatusInProgress {
		return CloseResult{}, ErrSessionNotOpen
	}

	if session.EnableForcedDistribution {
		result, err := s.cycleDistribution(ctx, scope.TenantID, session.CycleID, session.DistributionTargets, tolerancePct)
		if err != nil {
			return CloseResult{}, err
		}
		if !result.Valid {
			return CloseResult{}, &ValidationError{Issues: result.Errors}
		}
	}

	pending, err := s.store.ListPendingAdjustments(ctx, scope.TenantID, sessionID)
	if err != nil {
		return CloseResult{}, err
	}

	commits := make([]RatingCommit, 0, len(pending))
	for _, adjustment := range pending {
		commits = append(commits, buildCommit(adjustment))
	}

	closedAt := time.Now().UTC()
	if err := s.store.ApplyClose(ctx, scope.TenantID, sessionID, commits, closedAt); err != nil {
		return CloseResult{}, fmt.Errorf("%w: %v", ErrCommitFailed, err)
	}

	return CloseResult{SessionID: sessionID, AppliedCount: len(commits), ClosedAt: closedAt}, nil
}

// ValidateSessionDistribution runs the distribution gate without closing,
// so facilitators can check where the cohort stands mid-session.
func (s *Service) ValidateSessionDistribution(ctx context.Context, scope org.Scope, sessionID string, tolerancePct float64) (DistributionResult, error) {
	session, err := s.GetSession(ctx, scope, sessionID)
	if err != nil {
		return DistributionResult{}, err
	}
	if len(session.DistributionTargets) == 0 {
		return DistributionResult{}, validationError("session has no distribution targets configured")
	}
	return s.cycleDistribution(ctx, scope.TenantID, session.CycleID, session.DistributionTargets, tolerancePct)
}

func (s *Service) cycleDistribution(ctx context.Context, tenantID, cycleID string, targets map[string]float64, tolerancePct float64) (DistributionResult, error) {
	if tolerancePct <= 0 {
		tolerancePct = DefaultTolerancePct
	}
	ratings, err := s.store.ListRatings(ctx, tenantID, cycleID, nil)
	if err != nil {
		return DistributionResult{}, err
	}
	levels := make([]string, 0, len(ratings))
	for _, rating := range ratings {
		levels = append(levels, rating.EffectiveLevel())
	}
	return ValidateDistribution(levels, targets, tolerancePct), nil
}
