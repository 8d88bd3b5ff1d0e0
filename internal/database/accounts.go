package database

import (
	"context"
	"fmt"

	"github.com/adamanr/ems_service/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const accountColumns = `
	a.id, a.email, a.credential, a.kind, a.verified, a.first_name, a.last_name,
	a.pending_code, a.pending_code_issued_at,
	a.department_id, COALESCE(d.name, ''), a.managing_admin_id, a.gender,
	a.birth_date, a.hire_date, a.salary::text, a.created_at, a.updated_at`

const accountFrom = `
	FROM accounts a
	LEFT JOIN departments d ON d.id = a.department_id`

func scanAccount(row pgx.Row) (*entity.Account, error) {
	var (
		acc          entity.Account
		kind         string
		departmentID *int64
		deptName     string
		managerID    *int64
		gender       *string
		birthDate    *entity.Date
		hireDate     *entity.Date
		salary       *string
	)

	if err := row.Scan(
		&acc.ID, &acc.Email, &acc.Credential, &kind, &acc.Verified, &acc.FirstName, &acc.LastName,
		&acc.PendingCode, &acc.PendingCodeIssuedAt,
		&departmentID, &deptName, &managerID, &gender,
		&birthDate, &hireDate, &salary, &acc.CreatedAt, &acc.UpdatedAt,
	); err != nil {
		return nil, err
	}

	acc.Kind = entity.Kind(kind)
	if !acc.IsEmployee() {
		return &acc, nil
	}

	acc.Employment = &entity.Employment{
		DepartmentID:    departmentID,
		DepartmentName:  deptName,
		ManagingAdminID: managerID,
		BirthDate:       birthDate,
		HireDate:        hireDate,
	}
	if gender != nil {
		g := entity.Gender(*gender)
		acc.Employment.Gender = &g
	}
	if salary != nil {
		d, err := decimal.NewFromString(*salary)
		if err != nil {
			return nil, fmt.Errorf("parse salary of account %d: %w", acc.ID, err)
		}
		acc.Employment.Salary = &d
	}

	return &acc, nil
}

func collectAccounts(rows pgx.Rows, err error) ([]entity.Account, error) {
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Account, error) {
		acc, scanErr := scanAccount(row)
		if scanErr != nil {
			return entity.Account{}, scanErr
		}
		return *acc, nil
	})
}

func (s *Store) FindAccountByID(ctx context.Context, id int64) (*entity.Account, error) {
	return scanAccount(s.q(ctx).QueryRow(ctx, `SELECT `+accountColumns+accountFrom+` WHERE a.id = $1`, id))
}

func (s *Store) FindAccountByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return scanAccount(s.q(ctx).QueryRow(ctx, `SELECT `+accountColumns+accountFrom+` WHERE lower(a.email) = lower($1)`, email))
}

func (s *Store) ListAccountsByKind(ctx context.Context, kind entity.Kind) ([]entity.Account, error) {
	return collectAccounts(s.q(ctx).Query(ctx, `SELECT `+accountColumns+accountFrom+` WHERE a.kind = $1 ORDER BY a.id`, string(kind)))
}

func (s *Store) FindEmployeeByIDAndManager(ctx context.Context, id, adminID int64) (*entity.Account, error) {
	query := `SELECT ` + accountColumns + accountFrom + `
		WHERE a.id = $1 AND a.kind = 'EMPLOYEE' AND a.managing_admin_id = $2`

	return scanAccount(s.q(ctx).QueryRow(ctx, query, id, adminID))
}

func (s *Store) ListEmployeesByManager(ctx context.Context, adminID int64) ([]entity.Account, error) {
	query := `SELECT ` + accountColumns + accountFrom + `
		WHERE a.kind = 'EMPLOYEE' AND a.managing_admin_id = $1
		ORDER BY a.id`

	return collectAccounts(s.q(ctx).Query(ctx, query, adminID))
}

type employmentArgs struct {
	departmentID *int64
	managerID    *int64
	gender       *string
	birthDate    *entity.Date
	hireDate     *entity.Date
	salary       *string
}

func employmentOf(acc *entity.Account) employmentArgs {
	var args employmentArgs

	emp := acc.Employment
	if emp == nil {
		return args
	}

	args.departmentID = emp.DepartmentID
	args.managerID = emp.ManagingAdminID
	args.birthDate = emp.BirthDate
	args.hireDate = emp.HireDate
	if emp.Gender != nil {
		g := string(*emp.Gender)
		args.gender = &g
	}
	if emp.Salary != nil {
		sal := emp.Salary.String()
		args.salary = &sal
	}

	return args
}

// SaveAccount inserts a new account or updates an existing one. An update
// never changes the kind of a verified account or of an administrator. The
// managing administrator is only written while it is unset.
func (s *Store) SaveAccount(ctx context.Context, acc *entity.Account) error {
	emp := employmentOf(acc)

	if acc.ID == 0 {
		query := `INSERT INTO accounts (
				email, credential, kind, verified, first_name, last_name, pending_code, pending_code_issued_at,
				department_id, managing_admin_id, gender, birth_date, hire_date, salary, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14::text::numeric, $15, $16)
			RETURNING id`

		return s.q(ctx).QueryRow(ctx, query,
			acc.Email, acc.Credential, string(acc.Kind), acc.Verified, acc.FirstName, acc.LastName,
			acc.PendingCode, acc.PendingCodeIssuedAt,
			emp.departmentID, emp.managerID, emp.gender, emp.birthDate, emp.hireDate, emp.salary,
			acc.CreatedAt, acc.UpdatedAt,
		).Scan(&acc.ID)
	}

	query := `UPDATE accounts SET
			email = $2,
			credential = $3,
			kind = CASE WHEN verified OR kind = 'ADMINISTRATOR' THEN kind ELSE $4 END,
			verified = $5,
			first_name = $6,
			last_name = $7,
			pending_code = $8,
			pending_code_issued_at = $9,
			department_id = $10,
			managing_admin_id = COALESCE(managing_admin_id, $11),
			gender = $12,
			birth_date = $13,
			hire_date = $14,
			salary = $15::text::numeric,
			updated_at = $16
		WHERE id = $1`

	return execAffecting(ctx, s.q(ctx), query,
		acc.ID, acc.Email, acc.Credential, string(acc.Kind), acc.Verified, acc.FirstName, acc.LastName,
		acc.PendingCode, acc.PendingCodeIssuedAt,
		emp.departmentID, emp.managerID, emp.gender, emp.birthDate, emp.hireDate, emp.salary,
		acc.UpdatedAt,
	)
}

// DeleteAccount removes the account. Its leave requests go with it.
func (s *Store) DeleteAccount(ctx context.Context, id int64) error {
	return execAffecting(ctx, s.q(ctx), `DELETE FROM accounts WHERE id = $1`, id)
}
