package calibration

import (
	"errors"
	"strings"
)

var (
	ErrSessionNotFound    = errors.New("calibration session not found")
	ErrRatingNotFound     = errors.New("performance rating not found")
	ErrCycleNotFound      = errors.New("performance cycle not found")
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrAdjustmentNotFound = errors.New("calibration adjustment not found")
	ErrForbidden          = errors.New("caller may not act on this resource")
	ErrSessionNotOpen     = errors.New("calibration session is not in progress")
	ErrSessionNotDraft    = errors.New("calibration session is not in draft")
	ErrCommitFailed       = errors.New("calibration commit failed")
)

// ValidationError carries one human-readable issue per violation. It covers
// malformed input, distribution target mismatches, and tolerance violations.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "validation failed"
	}
	return "validation failed: " + strings.Join(e.Issues, "; ")
}

func validationError(issues ...string) *ValidationError {
	return &ValidationError{Issues: issues}
}

// AsValidation unwraps err into a ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
