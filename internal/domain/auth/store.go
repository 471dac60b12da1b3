package auth

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

type AuthUser struct {
	ID           string
	TenantID     string
	Role         string
	DepartmentID string
	Email        string
	PasswordHash string
}

func (s *Store) FindActiveUserByEmail(ctx context.Context, email string) (AuthUser, error) {
	var out AuthUser
	var dept *string
	err := s.DB.QueryRow(ctx, `
    SELECT id, tenant_id, role, department_id, email, password_hash
    FROM users
    WHERE email = $1 AND status = 'active'
  `, email).Scan(&out.ID, &out.TenantID, &out.Role, &dept, &out.Email, &out.PasswordHash)
	if dept != nil {
		out.DepartmentID = *dept
	}
	return out, err
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET last_login = now() WHERE id = $1", userID)
	return err
}
