package calibration

import "time"

type Cycle struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"-"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Status    string    `json:"status"`
}

// Rating is the authoritative performance record for one employee in one
// cycle. The calculated fields are the immutable upstream baseline; the
// final/potential fields are populated only by an applied adjustment.
type Rating struct {
	ID                   string     `json:"id"`
	TenantID             string     `json:"-"`
	CycleID              string     `json:"cycleId"`
	EmployeeID           string     `json:"employeeId"`
	DepartmentID         string     `json:"departmentId"`
	CalculatedScore      float64    `json:"calculatedScore"`
	CalculatedLevel      string     `json:"calculatedLevel"`
	FinalScore           *float64   `json:"finalScore,omitempty"`
	FinalLevel           *string    `json:"finalLevel,omitempty"`
	PotentialScore       *float64   `json:"potentialScore,omitempty"`
	PotentialLevel       *string    `json:"potentialLevel,omitempty"`
	NineBoxPosition      *string    `json:"nineBoxPosition,omitempty"`
	Calibrated           bool       `json:"calibrated"`
	CalibratedAt         *time.Time `json:"calibratedAt,omitempty"`
	CalibratedBy         *string    `json:"calibratedBy,omitempty"`
	CalibrationSessionID *string    `json:"calibrationSessionId,omitempty"`
	AdjustmentType       *string    `json:"adjustmentType,omitempty"`
	AdjustmentReason     *string    `json:"adjustmentReason,omitempty"`
}

// EffectiveLevel is the level the distribution validator counts: the final
// level once calibrated, the calculated level before that.
func (r Rating) EffectiveLevel() string {
	if r.Calibrated && r.FinalLevel != nil {
		return *r.FinalLevel
	}
	return r.CalculatedLevel
}

// EffectiveFinalScore is the score a proposal adjusts from.
func (r Rating) EffectiveFinalScore() float64 {
	if r.FinalScore != nil {
		return *r.FinalScore
	}
	return r.CalculatedScore
}

type Session struct {
	ID                       string             `json:"id"`
	TenantID                 string             `json:"-"`
	CycleID                  string             `json:"cycleId"`
	Name                     string             `json:"name"`
	Description              string             `json:"description,omitempty"`
	Status                   string             `json:"status"`
	DepartmentIDs            []string           `json:"departmentIds"`
	EnableForcedDistribution bool               `json:"enableForcedDistribution"`
	DistributionTargets      map[string]float64 `json:"distributionTargets,omitempty"`
	FacilitatorID            string             `json:"facilitatorId"`
	ScheduledAt              *time.Time         `json:"scheduledAt,omitempty"`
	ClosedAt                 *time.Time         `json:"closedAt,omitempty"`
	CreatedAt                time.Time          `json:"createdAt"`

	// Read-time display metadata, never persisted.
	CandidateCount  int `json:"candidateCount"`
	AdjustmentCount int `json:"adjustmentCount"`
}

type Participant struct {
	ID         string     `json:"id"`
	SessionID  string     `json:"sessionId"`
	Email      string     `json:"email"`
	Role       string     `json:"role"`
	AcceptedAt *time.Time `json:"acceptedAt,omitempty"`
}

// Adjustment is a transient proposal against one rating. The previous fields
// snapshot the rating at proposal time; the new fields are individually
// optional. Nothing authoritative changes until a close applies it.
type Adjustment struct {
	ID                     string     `json:"id"`
	TenantID               string     `json:"-"`
	SessionID              string     `json:"sessionId"`
	RatingID               string     `json:"ratingId"`
	PreviousFinalScore     *float64   `json:"previousFinalScore,omitempty"`
	PreviousFinalLevel     *string    `json:"previousFinalLevel,omitempty"`
	PreviousPotentialScore *float64   `json:"previousPotentialScore,omitempty"`
	PreviousPotentialLevel *string    `json:"previousPotentialLevel,omitempty"`
	PreviousNineBox        *string    `json:"previousNineBox,omitempty"`
	NewFinalScore          *float64   `json:"newFinalScore,omitempty"`
	NewFinalLevel          *string    `json:"newFinalLevel,omitempty"`
	NewPotentialScore      *float64   `json:"newPotentialScore,omitempty"`
	NewPotentialLevel      *string    `json:"newPotentialLevel,omitempty"`
	NewNineBox             *string    `json:"newNineBox,omitempty"`
	Justification          string     `json:"justification"`
	AdjustedBy             string     `json:"adjustedBy"`
	Status                 string     `json:"status"`
	AdjustedAt             time.Time  `json:"adjustedAt"`
	AppliedAt              *time.Time `json:"appliedAt,omitempty"`

	// Stale marks a PENDING proposal on a CLOSED session: permanently
	// orphaned, surfaced in listings rather than hidden.
	Stale bool `json:"stale,omitempty"`
}

// Preview shows a proposal's effect without touching the rating.
type Preview struct {
	CurrentScore  float64 `json:"currentScore"`
	CurrentLevel  string  `json:"currentLevel"`
	ProposedScore float64 `json:"proposedScore"`
	ProposedLevel string  `json:"proposedLevel"`
	ProposedCell  *string `json:"proposedCell,omitempty"`
	Delta         float64 `json:"delta"`
	DeltaLabel    string  `json:"deltaLabel"`
}

// RatingCommit is one rating's share of the close transaction.
type RatingCommit struct {
	AdjustmentID      string
	RatingID          string
	NewFinalScore     *float64
	NewFinalLevel     *string
	NewPotentialScore *float64
	NewPotentialLevel *string
	NewNineBox        *string
	AdjustmentType    *string
	AdjustedBy        string
	Justification     string
}

type CloseResult struct {
	SessionID    string    `json:"sessionId"`
	AppliedCount int       `json:"appliedCount"`
	ClosedAt     time.Time `json:"closedAt"`
}

type SessionFilter struct {
	Status  string
	CycleID string
}
