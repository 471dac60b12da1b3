package org

import (
	"context"
	"testing"
)

type fakeExpander struct {
	subtree []string
}

func (f fakeExpander) DepartmentSubtree(ctx context.Context, tenantID, departmentID string) ([]string, error) {
	return f.subtree, nil
}

func TestScopeUnrestricted(t *testing.T) {
	scope, err := ScopeFor(context.Background(), fakeExpander{}, "t-1", "", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scope.Restricted() {
		t.Fatal("unscoped role must not be restricted")
	}
	if !scope.AllowsDepartment("anything") {
		t.Fatal("unrestricted scope allows every department")
	}
	if !scope.AllowsAny(nil) {
		t.Fatal("unrestricted scope allows cross-departmental resources")
	}
}

func TestScopeRestricted(t *testing.T) {
	scope, err := ScopeFor(context.Background(), fakeExpander{subtree: []string{"d-1", "d-2"}}, "t-1", "d-1", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !scope.Restricted() {
		t.Fatal("scoped role must be restricted")
	}
	if !scope.AllowsDepartment("d-2") {
		t.Fatal("descendant department must be allowed")
	}
	if scope.AllowsDepartment("d-3") {
		t.Fatal("outside department must be denied")
	}
	if scope.AllowsAny([]string{"d-3", "d-4"}) {
		t.Fatal("disjoint scope list must be denied")
	}
	if !scope.AllowsAny([]string{"d-4", "d-2"}) {
		t.Fatal("overlapping scope list must be allowed")
	}
}

func TestRestrictedScopeDeniesUnscopedResource(t *testing.T) {
	scope := Scope{TenantID: "t-1", Departments: []string{"d-1"}}
	if scope.AllowsAny([]string{}) {
		t.Fatal("cross-departmental resource must be hidden from restricted callers")
	}
}
