package database

import (
	"context"

	"github.com/adamanr/ems_service/internal/entity"
	"github.com/jackc/pgx/v5"
)

const departmentColumns = `id, name, owner_admin_id, created_at, updated_at`

func collectDepartment(rows pgx.Rows, err error) (*entity.Department, error) {
	if err != nil {
		return nil, err
	}

	dept, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[entity.Department])
	if err != nil {
		return nil, err
	}

	return &dept, nil
}

func (s *Store) FindDepartmentByIDAndOwner(ctx context.Context, id, ownerID int64) (*entity.Department, error) {
	query := `SELECT ` + departmentColumns + ` FROM departments WHERE id = $1 AND owner_admin_id = $2`

	return collectDepartment(s.q(ctx).Query(ctx, query, id, ownerID))
}

func (s *Store) FindDepartmentByOwnerAndName(ctx context.Context, ownerID int64, name string) (*entity.Department, error) {
	query := `SELECT ` + departmentColumns + ` FROM departments WHERE owner_admin_id = $1 AND lower(name) = lower($2)`

	return collectDepartment(s.q(ctx).Query(ctx, query, ownerID, name))
}

func (s *Store) ListDepartmentsByOwner(ctx context.Context, ownerID int64) ([]entity.Department, error) {
	query := `SELECT ` + departmentColumns + ` FROM departments WHERE owner_admin_id = $1 ORDER BY lower(name), id`

	rows, err := s.q(ctx).Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowToStructByName[entity.Department])
}

func (s *Store) CountDepartmentMembers(ctx context.Context, id int64) (int64, error) {
	var n int64
	err := s.q(ctx).QueryRow(ctx, `SELECT count(*) FROM accounts WHERE department_id = $1`, id).Scan(&n)

	return n, err
}

func (s *Store) SaveDepartment(ctx context.Context, dept *entity.Department) error {
	if dept.ID == 0 {
		query := `INSERT INTO departments (name, owner_admin_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id`

		return s.q(ctx).QueryRow(ctx, query, dept.Name, dept.OwnerAdminID, dept.CreatedAt, dept.UpdatedAt).Scan(&dept.ID)
	}

	query := `UPDATE departments SET name = $3, updated_at = $4 WHERE id = $1 AND owner_admin_id = $2`

	return execAffecting(ctx, s.q(ctx), query, dept.ID, dept.OwnerAdminID, dept.Name, dept.UpdatedAt)
}

func (s *Store) DeleteDepartment(ctx context.Context, id int64) error {
	return execAffecting(ctx, s.q(ctx), `DELETE FROM departments WHERE id = $1`, id)
}
