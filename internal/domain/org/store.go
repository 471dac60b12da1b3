package org

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// DepartmentSubtree returns the department plus every transitive descendant
// within the tenant. The root id is included even when the row is missing so
// callers always get a non-empty scope for a scoped role.
func (s *Store) DepartmentSubtree(ctx context.Context, tenantID, departmentID string) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
    WITH RECURSIVE subtree AS (
      SELECT id FROM departments WHERE tenant_id = $1 AND id = $2
      UNION ALL
      SELECT d.id
      FROM departments d
      JOIN subtree st ON d.parent_id = st.id
      WHERE d.tenant_id = $1
    )
    SELECT id FROM subtree
  `, tenantID, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		ids = []string{departmentID}
	}
	return ids, nil
}

func (s *Store) ListDepartments(ctx context.Context, tenantID string) ([]Department, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, parent_id
    FROM departments
    WHERE tenant_id = $1
    ORDER BY name
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name, &d.ParentID); err != nil {
			return nil, err
		}
		d.TenantID = tenantID
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListEmployees returns the tenant's employees; a non-nil departmentIDs list
// restricts rows to those departments.
func (s *Store) ListEmployees(ctx context.Context, tenantID string, departmentIDs []string) ([]Employee, error) {
	query := `
    SELECT id, first_name, last_name, email, department_id
    FROM employees
    WHERE tenant_id = $1`
	args := []any{tenantID}
	if departmentIDs != nil {
		query += ` AND department_id = ANY($2)`
		args = append(args, departmentIDs)
	}
	query += ` ORDER BY last_name, first_name`

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		var e Employee
		var department *string
		if err := rows.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email, &department); err != nil {
			return nil, err
		}
		e.TenantID = tenantID
		if department != nil {
			e.DepartmentID = *department
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
