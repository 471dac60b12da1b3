package org

import "context"

// Scope is the visibility capability handed to every calibration query.
// Departments == nil means tenant-wide access; a non-nil slice restricts the
// caller to exactly those department ids. The zero intersection rule lives
// here so list-time, propose-time, and read-time checks cannot drift apart.
type Scope struct {
	TenantID    string
	Departments []string
}

func (s Scope) Restricted() bool {
	return s.Departments != nil
}

func (s Scope) AllowsDepartment(departmentID string) bool {
	if !s.Restricted() {
		return true
	}
	for _, id := range s.Departments {
		if id == departmentID {
			return true
		}
	}
	return false
}

// AllowsAny reports whether any of the given department ids falls inside the
// scope. An empty list is a cross-departmental resource: visible tenant-wide,
// but never to a restricted caller.
func (s Scope) AllowsAny(departmentIDs []string) bool {
	if !s.Restricted() {
		return true
	}
	for _, id := range departmentIDs {
		if s.AllowsDepartment(id) {
			return true
		}
	}
	return false
}

// SubtreeExpander resolves a department to itself plus all descendants.
type SubtreeExpander interface {
	DepartmentSubtree(ctx context.Context, tenantID, departmentID string) ([]string, error)
}

// ScopeFor builds the caller's scope: scoped roles get their expanded
// department subtree, everyone else gets tenant-wide visibility.
func ScopeFor(ctx context.Context, expander SubtreeExpander, tenantID, departmentID string, scoped bool) (Scope, error) {
	if !scoped || departmentID == "" {
		return Scope{TenantID: tenantID}, nil
	}
	subtree, err := expander.DepartmentSubtree(ctx, tenantID, departmentID)
	if err != nil {
		return Scope{}, err
	}
	return Scope{TenantID: tenantID, Departments: subtree}, nil
}
