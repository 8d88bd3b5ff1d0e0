package database

import (
	"context"

	"github.com/adamanr/ems_service/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const managedEmployees = `a.kind = 'EMPLOYEE' AND a.managing_admin_id = $1`

func (s *Store) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	err := s.q(ctx).QueryRow(ctx, query, args...).Scan(&n)

	return n, err
}

// countBy runs a two column key/count query.
func (s *Store) countBy(ctx context.Context, query string, args ...any) (map[string]int64, error) {
	rows, err := s.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	out := map[string]int64{}

	var (
		key string
		n   int64
	)
	if _, err = pgx.ForEachRow(rows, []any{&key, &n}, func() error {
		out[key] = n
		return nil
	}); err != nil {
		return nil, err
	}

	return out, nil
}

func (s *Store) CountEmployeesByManager(ctx context.Context, adminID int64) (int64, error) {
	return s.count(ctx, `SELECT count(*) FROM accounts a WHERE `+managedEmployees, adminID)
}

func (s *Store) CountDepartmentsWithEmployees(ctx context.Context, adminID int64) (int64, error) {
	return s.count(ctx, `SELECT count(DISTINCT a.department_id) FROM accounts a
		WHERE `+managedEmployees+` AND a.department_id IS NOT NULL`, adminID)
}

func (s *Store) CountEmployeesByRole(ctx context.Context, adminID int64) (map[string]int64, error) {
	return s.countBy(ctx, `SELECT a.kind, count(*) FROM accounts a
		WHERE `+managedEmployees+` GROUP BY a.kind`, adminID)
}

func (s *Store) CountEmployeesByDepartment(ctx context.Context, adminID int64) (map[string]int64, error) {
	return s.countBy(ctx, `SELECT d.name, count(*) FROM accounts a
		JOIN departments d ON d.id = a.department_id
		WHERE `+managedEmployees+` GROUP BY d.name`, adminID)
}

func (s *Store) CountEmployeesByGender(ctx context.Context, adminID int64) (map[string]int64, error) {
	return s.countBy(ctx, `SELECT COALESCE(a.gender, $2), count(*) FROM accounts a
		WHERE `+managedEmployees+` GROUP BY 1`, adminID, entity.GenderUnspecified)
}

func (s *Store) AverageSalaryByDepartment(ctx context.Context, adminID int64) ([]entity.DepartmentSalary, error) {
	rows, err := s.q(ctx).Query(ctx, `SELECT d.name, round(avg(a.salary), 2)::text FROM accounts a
		JOIN departments d ON d.id = a.department_id
		WHERE `+managedEmployees+` AND a.salary IS NOT NULL
		GROUP BY d.name
		ORDER BY d.name`, adminID)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.DepartmentSalary, error) {
		var (
			out entity.DepartmentSalary
			avg string
		)
		if err := row.Scan(&out.DepartmentName, &avg); err != nil {
			return out, err
		}

		var err error
		out.AverageSalary, err = decimal.NewFromString(avg)
		return out, err
	})
}

func (s *Store) ListEmployeeBirthDates(ctx context.Context, adminID int64) ([]entity.Date, error) {
	rows, err := s.q(ctx).Query(ctx, `SELECT a.birth_date FROM accounts a
		WHERE `+managedEmployees+` AND a.birth_date IS NOT NULL`, adminID)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowTo[entity.Date])
}
