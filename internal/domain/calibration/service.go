package calibration

import (
	"context"

	"calibra/internal/domain/auth"
	"calibra/internal/domain/org"
)

type Service struct {
	store       StoreAPI
	artifactDir string
}

func NewService(store StoreAPI, artifactDir string) *Service {
	return &Service{store: store, artifactDir: artifactDir}
}

func (s *Service) CreateCycle(ctx context.Context, user auth.UserContext, cycle Cycle) (Cycle, error) {
	if cycle.Name == "" {
		return Cycle{}, validationError("cycle name is required")
	}
	if !cycle.EndDate.After(cycle.StartDate) {
		return Cycle{}, validationError("cycle end date must be after start date")
	}
	cycle.TenantID = user.TenantID
	if cycle.Status == "" {
		cycle.Status = CycleStatusActive
	}
	id, err := s.store.CreateCycle(ctx, user.TenantID, cycle)
	if err != nil {
		return Cycle{}, err
	}
	cycle.ID = id
	return cycle, nil
}

func (s *Service) ListCycles(ctx context.Context, user auth.UserContext) ([]Cycle, error) {
	return s.store.ListCycles(ctx, user.TenantID)
}

// UpsertRating ingests an upstream calculated rating. The calculated level
// defaults to the classified level when the scoring process omits it.
func (s *Service) UpsertRating(ctx context.Context, user auth.UserContext, rating Rating) (Rating, error) {
	if rating.CycleID == "" || rating.EmployeeID == "" {
		return Rating{}, validationError("cycleId and employeeId are required")
	}
	if rating.CalculatedScore < 0 || rating.CalculatedScore > 5 {
		return Rating{}, validationError("calculatedScore must be between 0 and 5")
	}
	exists, err := s.store.CycleExists(ctx, user.TenantID, rating.CycleID)
	if err != nil {
		return Rating{}, err
	}
	if !exists {
		return Rating{}, ErrCycleNotFound
	}
	owned, err := s.store.EmployeeExists(ctx, user.TenantID, rating.EmployeeID)
	if err != nil {
		return Rating{}, err
	}
	if !owned {
		return Rating{}, ErrEmployeeNotFound
	}
	if rating.CalculatedLevel == "" {
		rating.CalculatedLevel = classifyLevel(rating.CalculatedScore)
	}
	rating.TenantID = user.TenantID
	id, err := s.store.UpsertRating(ctx, user.TenantID, rating)
	if err != nil {
		return Rating{}, err
	}
	return s.store.GetRating(ctx, user.TenantID, id)
}

// ListRatings returns the cycle's ratings visible inside the caller's scope.
func (s *Service) ListRatings(ctx context.Context, scope org.Scope, cycleID string) ([]Rating, error) {
	exists, err := s.store.CycleExists(ctx, scope.TenantID, cycleID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrCycleNotFound
	}
	return s.store.ListRatings(ctx, scope.TenantID, cycleID, scope.Departments)
}
