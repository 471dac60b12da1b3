package calibration

import (
	"context"
	"strings"
	"time"

	"calibra/internal/domain/auth"
	"calibra/internal/domain/classification"
	"calibra/internal/domain/org"
)

type ProposeAdjustmentInput struct {
	SessionID         string
	RatingID          string
	NewFinalScore     *float64
	NewPotentialScore *float64
	Justification     string
}

// ProposeAdjustment records a transient adjustment against a rating without
// mutating it. All authorization and validation happens before any write.
func (s *Service) ProposeAdjustment(ctx context.Context, scope org.Scope, user auth.UserContext, in ProposeAdjustmentInput) (Adjustment, Preview, error) {
	session, err := s.store.GetSession(ctx, scope.TenantID, in.SessionID)
	if err != nil {
		return Adjustment{}, Preview{}, err
	}
	if !scope.AllowsAny(session.DepartmentIDs) {
		return Adjustment{}, Preview{}, ErrForbidden
	}
	if session.Status != SessionStatusInProgress {
		return Adjustment{}, Preview{}, ErrSessionNotOpen
	}

	role, err := s.store.ParticipantRole(ctx, session.ID, strings.ToLower(user.Email))
	if err != nil {
		return Adjustment{}, Preview{}, err
	}
	if !CanAdjust(role) {
		return Adjustment{}, Preview{}, ErrForbidden
	}

	if verr := validateProposalInput(in); verr != nil {
		return Adjustment{}, Preview{}, verr
	}

	rating, err := s.store.GetRating(ctx, scope.TenantID, in.RatingID)
	if err != nil {
		return Adjustment{}, Preview{}, err
	}
	if rating.CycleID != session.CycleID {
		return Adjustment{}, Preview{}, validationError("rating does not belong to the session's cycle")
	}
	if !scope.AllowsDepartment(rating.DepartmentID) {
		return Adjustment{}, Preview{}, ErrForbidden
	}
	if len(session.DepartmentIDs) > 0 && !containsString(session.DepartmentIDs, rating.DepartmentID) {
		return Adjustment{}, Preview{}, validationError("rating is outside the session's department scope")
	}

	adjustment := Adjustment{
		TenantID:               scope.TenantID,
		SessionID:              session.ID,
		RatingID:               rating.ID,
		PreviousFinalScore:     rating.FinalScore,
		PreviousFinalLevel:     rating.FinalLevel,
		PreviousPotentialScore: rating.PotentialScore,
		PreviousPotentialLevel: rating.PotentialLevel,
		PreviousNineBox:        rating.NineBoxPosition,
		NewFinalScore:          in.NewFinalScore,
		NewPotentialScore:      in.NewPotentialScore,
		Justification:          strings.TrimSpace(in.Justification),
		AdjustedBy:             user.Email,
		Status:                 AdjustmentStatusPending,
		AdjustedAt:             time.Now().UTC(),
	}
	deriveProposal(&adjustment, rating)

	id, err := s.store.CreateAdjustment(ctx, adjustment)
	if err != nil {
		return Adjustment{}, Preview{}, err
	}
	adjustment.ID = id

	return adjustment, buildPreview(adjustment, rating), nil
}

func validateProposalInput(in ProposeAdjustmentInput) *ValidationError {
	var issues []string
	if in.NewFinalScore == nil && in.NewPotentialScore == nil {
		issues = append(issues, "at least one of newFinalScore or newPotentialScore is required")
	}
	if in.NewFinalScore != nil && (*in.NewFinalScore < 0 || *in.NewFinalScore > 5) {
		issues = append(issues, "newFinalScore must be between 0 and 5")
	}
	if in.NewPotentialScore != nil && (*in.NewPotentialScore < 0 || *in.NewPotentialScore > 5) {
		issues = append(issues, "newPotentialScore must be between 0 and 5")
	}
	if len(strings.TrimSpace(in.Justification)) < MinJustificationLen {
		issues = append(issues, "justification must be at least 10 characters")
	}
	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

func buildPreview(adjustment Adjustment, rating Rating) Preview {
	current := rating.EffectiveFinalScore()
	proposed := current
	if adjustment.NewFinalScore != nil {
		proposed = *adjustment.NewFinalScore
	}
	currentScore := current
	preview := Preview{
		CurrentScore:  current,
		CurrentLevel:  rating.EffectiveLevel(),
		ProposedScore: proposed,
		ProposedLevel: classifyLevel(proposed),
		ProposedCell:  adjustment.NewNineBox,
		Delta:         proposed - current,
		DeltaLabel:    classification.ClassifyDelta(&currentScore, proposed),
	}
	return preview
}

// ListAdjustments returns a session's proposals, flagging any still-PENDING
// proposal on a CLOSED session as stale: the session cannot reopen, so those
// proposals are permanently orphaned.
func (s *Service) ListAdjustments(ctx context.Context, scope org.Scope, sessionID string, limit, offset int) ([]Adjustment, int, error) {
	session, err := s.GetSession(ctx, scope, sessionID)
	if err != nil {
		return nil, 0, err
	}
	adjustments, total, err := s.store.ListAdjustments(ctx, scope.TenantID, sessionID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if session.Status == SessionStatusClosed {
		for i := range adjustments {
			if adjustments[i].Status == AdjustmentStatusPending {
				adjustments[i].Stale = true
			}
		}
	}
	return adjustments, total, nil
}

func (s *Service) GetAdjustment(ctx context.Context, scope org.Scope, adjustmentID string) (Adjustment, error) {
	adjustment, err := s.store.GetAdjustment(ctx, scope.TenantID, adjustmentID)
	if err != nil {
		return Adjustment{}, err
	}
	session, err := s.GetSession(ctx, scope, adjustment.SessionID)
	if err != nil {
		return Adjustment{}, err
	}
	if session.Status == SessionStatusClosed && adjustment.Status == AdjustmentStatusPending {
		adjustment.Stale = true
	}
	return adjustment, nil
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
