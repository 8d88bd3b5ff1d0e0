package controllers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/adamanr/ems_service/internal/apperr"
	"github.com/adamanr/ems_service/internal/entity"
)

type EmployeeController struct {
	deps *Dependens
}

func NewEmployeeController(deps *Dependens) *EmployeeController {
	return &EmployeeController{
		deps: deps,
	}
}

func (c *EmployeeController) GetEmployees(ctx context.Context, admin *entity.Account) ([]entity.Account, error) {
	employees, err := c.deps.Store.ListEmployeesByManager(ctx, admin.ID)
	if err != nil {
		return nil, internal(c.deps.Logger, "Error querying employees", err)
	}

	return employees, nil
}

func (c *EmployeeController) GetEmployeeByID(ctx context.Context, id int64, admin *entity.Account) (*entity.Account, error) {
	emp, err := c.deps.Store.FindEmployeeByIDAndManager(ctx, id, admin.ID)
	if err != nil {
		if isNoRows(err) {
			c.deps.Logger.Warn("Employee not found", slog.Int64("id", id), slog.Int64("admin_id", admin.ID))
			return nil, apperr.ErrEmployeeNotFound
		}
		return nil, internal(c.deps.Logger, "Error querying employee", err)
	}

	return emp, nil
}

// CreateEmployee adds a verified employee managed by admin. An unverified
// self-registration for the same email is adopted when it is unmanaged or
// already managed by admin.
func (c *EmployeeController) CreateEmployee(ctx context.Context, req entity.EmployeeRequest, admin *entity.Account) (*entity.Account, error) {
	req.Email = entity.NormalizeEmail(req.Email)
	if err := c.deps.validateStruct(req); err != nil {
		return nil, err
	}
	if req.Password == "" {
		return nil, apperr.Wrap(apperr.ErrInvalidInput, "password (required)")
	}

	credential, err := hashPassword(req.Password, c.deps.bcryptCost())
	if err != nil {
		return nil, internal(c.deps.Logger, "Error hashing password", err)
	}

	email := req.Email

	var emp *entity.Account
	err = c.deps.Store.WithinTx(ctx, func(ctx context.Context) error {
		deptName, txErr := c.departmentName(ctx, req.DepartmentID, admin)
		if txErr != nil {
			return txErr
		}

		existing, txErr := c.deps.Store.FindAccountByEmail(ctx, email)
		if txErr != nil && !isNoRows(txErr) {
			return internal(c.deps.Logger, "Error checking email", txErr)
		}

		now := c.deps.now()
		emp = &entity.Account{CreatedAt: now}
		if existing != nil {
			if !adoptable(existing, admin.ID) {
				c.deps.Logger.Warn("Employee email already in use", slog.String("email", email))
				return apperr.ErrEmailInUse
			}
			emp = existing
		}

		managerID := admin.ID
		emp.Email = email
		emp.Credential = credential
		emp.Kind = entity.KindEmployee
		emp.Verified = true
		emp.ClearPendingCode()
		emp.UpdatedAt = now
		c.applyProfile(emp, req, deptName)
		emp.Employment.ManagingAdminID = &managerID

		if txErr = c.deps.Store.SaveAccount(ctx, emp); txErr != nil {
			if isUniqueViolation(txErr, ConstraintAccountEmail) {
				return apperr.ErrEmailInUse
			}
			return internal(c.deps.Logger, "Error inserting employee", txErr)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	c.deps.Notifier.SendWelcome(*emp)
	c.deps.Logger.Info("Employee created", slog.Int64("id", emp.ID), slog.Int64("admin_id", admin.ID))

	return emp, nil
}

func (c *EmployeeController) UpdateEmployee(ctx context.Context, id int64, req entity.EmployeeRequest, admin *entity.Account) (*entity.Account, error) {
	req.Email = entity.NormalizeEmail(req.Email)
	if err := c.deps.validateStruct(req); err != nil {
		return nil, err
	}

	var credential string
	if req.Password != "" {
		var err error
		if credential, err = hashPassword(req.Password, c.deps.bcryptCost()); err != nil {
			return nil, internal(c.deps.Logger, "Error hashing password", err)
		}
	}

	email := req.Email

	var emp *entity.Account
	err := c.deps.Store.WithinTx(ctx, func(ctx context.Context) error {
		var txErr error
		if emp, txErr = c.GetEmployeeByID(ctx, id, admin); txErr != nil {
			return txErr
		}

		if email != emp.Email {
			other, findErr := c.deps.Store.FindAccountByEmail(ctx, email)
			if findErr != nil && !isNoRows(findErr) {
				return internal(c.deps.Logger, "Error checking email", findErr)
			}
			if other != nil && other.ID != emp.ID {
				return apperr.ErrEmailInUse
			}
		}

		deptName, txErr := c.departmentName(ctx, req.DepartmentID, admin)
		if txErr != nil {
			return txErr
		}

		emp.Email = email
		if credential != "" {
			emp.Credential = credential
		}
		emp.UpdatedAt = c.deps.now()
		c.applyProfile(emp, req, deptName)

		if txErr = c.deps.Store.SaveAccount(ctx, emp); txErr != nil {
			if isUniqueViolation(txErr, ConstraintAccountEmail) {
				return apperr.ErrEmailInUse
			}
			return internal(c.deps.Logger, "Error updating employee", txErr)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return emp, nil
}

// DeleteEmployee removes a managed employee together with their leave requests.
func (c *EmployeeController) DeleteEmployee(ctx context.Context, id int64, admin *entity.Account) error {
	if id == admin.ID {
		c.deps.Logger.Warn("Administrator tried to delete own account", slog.Int64("admin_id", admin.ID))
		return apperr.ErrSelfDeletionForbidden
	}

	return c.deps.Store.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := c.GetEmployeeByID(ctx, id, admin); err != nil {
			return err
		}

		if err := c.deps.Store.DeleteAccount(ctx, id); err != nil {
			if isNoRows(err) {
				return apperr.ErrEmployeeNotFound
			}
			return internal(c.deps.Logger, "Error deleting employee", err)
		}

		c.deps.Logger.Info("Employee deleted", slog.Int64("id", id), slog.Int64("admin_id", admin.ID))
		return nil
	})
}

// ExportEmployees renders every employee managed by admin as a workbook.
func (c *EmployeeController) ExportEmployees(ctx context.Context, admin *entity.Account) ([]byte, error) {
	employees, err := c.GetEmployees(ctx, admin)
	if err != nil {
		return nil, err
	}

	data, err := c.deps.Exporter.Employees(employees)
	if err != nil {
		return nil, internal(c.deps.Logger, "Error exporting employees", err)
	}

	return data, nil
}

func (c *EmployeeController) departmentName(ctx context.Context, id *int64, admin *entity.Account) (string, error) {
	if id == nil {
		return "", nil
	}

	dept, err := c.deps.Store.FindDepartmentByIDAndOwner(ctx, *id, admin.ID)
	if err != nil {
		if isNoRows(err) {
			c.deps.Logger.Warn("Department not found", slog.Int64("id", *id), slog.Int64("admin_id", admin.ID))
			return "", apperr.ErrDepartmentNotFound
		}
		return "", internal(c.deps.Logger, "Error querying department", err)
	}

	return dept.Name, nil
}

// applyProfile copies the editable fields of req. Kind and manager are left alone.
func (c *EmployeeController) applyProfile(emp *entity.Account, req entity.EmployeeRequest, deptName string) {
	emp.FirstName = strings.TrimSpace(req.FirstName)
	emp.LastName = strings.TrimSpace(req.LastName)

	if emp.Employment == nil {
		emp.Employment = &entity.Employment{}
	}
	emp.Employment.DepartmentID = req.DepartmentID
	emp.Employment.DepartmentName = deptName
	emp.Employment.Gender = req.Gender
	emp.Employment.BirthDate = req.BirthDate
	emp.Employment.HireDate = req.HireDate
	emp.Employment.Salary = req.Salary
}

func adoptable(existing *entity.Account, adminID int64) bool {
	if existing.Verified || !existing.IsEmployee() {
		return false
	}
	if existing.Employment == nil || existing.Employment.ManagingAdminID == nil {
		return true
	}

	return *existing.Employment.ManagingAdminID == adminID
}
