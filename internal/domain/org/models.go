package org

type Department struct {
	ID       string  `json:"id"`
	TenantID string  `json:"-"`
	Name     string  `json:"name"`
	ParentID *string `json:"parentId,omitempty"`
}

type Employee struct {
	ID           string `json:"id"`
	TenantID     string `json:"-"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	DepartmentID string `json:"departmentId"`
}
