package calibration

const (
	SessionStatusDraft      = "DRAFT"
	SessionStatusInProgress = "IN_PROGRESS"
	SessionStatusClosed     = "CLOSED"

	AdjustmentStatusPending = "PENDING"
	AdjustmentStatusApplied = "APPLIED"

	ParticipantFacilitator = "FACILITATOR"
	ParticipantReviewer    = "REVIEWER"
	ParticipantObserver    = "OBSERVER"

	CycleStatusActive = "active"
	CycleStatusClosed = "closed"
)

// MinJustificationLen is the shortest accepted adjustment justification.
const MinJustificationLen = 10

// DefaultTolerancePct is the forced-distribution tolerance band.
const DefaultTolerancePct = 5.0

// targetSumEpsilon bounds how far distribution targets may drift from 100%.
const targetSumEpsilon = 0.1

var ParticipantRoles = []string{ParticipantFacilitator, ParticipantReviewer, ParticipantObserver}

// CanAdjust reports whether a participant role may create adjustments.
func CanAdjust(role string) bool {
	return role == ParticipantFacilitator || role == ParticipantReviewer
}
