package calibration

import (
	"context"
	"time"
)

type StoreAPI interface {
	CreateCycle(ctx context.Context, tenantID string, cycle Cycle) (string, error)
	ListCycles(ctx context.Context, tenantID string) ([]Cycle, error)
	CycleExists(ctx context.Context, tenantID, cycleID string) (bool, error)

	EmployeeExists(ctx context.Context, tenantID, employeeID string) (bool, error)
	UpsertRating(ctx context.Context, tenantID string, rating Rating) (string, error)
	GetRating(ctx context.Context, tenantID, ratingID string) (Rating, error)
	ListRatings(ctx context.Context, tenantID, cycleID string, departmentIDs []string) ([]Rating, error)

	CreateSession(ctx context.Context, tenantID string, session Session, facilitatorEmail string) (string, error)
	GetSession(ctx context.Context, tenantID, sessionID string) (Session, error)
	ListSessions(ctx context.Context, tenantID string, filter SessionFilter) ([]Session, error)
	TransitionSession(ctx context.Context, tenantID, sessionID, from, to string) (bool, error)

	AddParticipant(ctx context.Context, sessionID, email, role string) (string, error)
	ListParticipants(ctx context.Context, sessionID string) ([]Participant, error)
	ParticipantRole(ctx context.Context, sessionID, email string) (string, error)

	CreateAdjustment(ctx context.Context, adjustment Adjustment) (string, error)
	GetAdjustment(ctx context.Context, tenantID, adjustmentID string) (Adjustment, error)
	ListAdjustments(ctx context.Context, tenantID, sessionID string, limit, offset int) ([]Adjustment, int, error)
	ListPendingAdjustments(ctx context.Context, tenantID, sessionID string) ([]Adjustment, error)

	ApplyClose(ctx context.Context, tenantID, sessionID string, commits []RatingCommit, closedAt time.Time) error
}
