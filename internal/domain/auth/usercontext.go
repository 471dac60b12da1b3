package auth

// UserContext is the resolved identity attached to every request. The
// calibration core treats it as opaque and trusted once resolved.
type UserContext struct {
	UserID       string
	TenantID     string
	Role         string
	DepartmentID string
	Email        string
}
