package repository

import (
	"context"

	"github.com/spec-kit/asset-maintenance/internal/domain"
)

// UserRepository is the read side of the user directory.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	ListIDsByDepartment(ctx context.Context, departmentID string) ([]string, error)
}

type userRepository struct {
	db DBTX
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
        SELECT id, name, email, role, department_id, active
        FROM users WHERE id=$1`

	var user domain.User
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
		&user.DepartmentID,
		&user.Active,
	); err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

func (r *userRepository) ListIDsByDepartment(ctx context.Context, departmentID string) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM users WHERE department_id=$1`, departmentID)
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
	return ids, rows.Err()
}
