package controllers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/adamanr/ems_service/internal/apperr"
	"github.com/adamanr/ems_service/internal/entity"
)

type DepartmentController struct {
	deps *Dependens
}

func NewDepartmentController(deps *Dependens) *DepartmentController {
	return &DepartmentController{
		deps: deps,
	}
}

func (c *DepartmentController) GetDepartments(ctx context.Context, admin *entity.Account) ([]entity.Department, error) {
	departments, err := c.deps.Store.ListDepartmentsByOwner(ctx, admin.ID)
	if err != nil {
		return nil, internal(c.deps.Logger, "Error querying departments", err)
	}

	return departments, nil
}

func (c *DepartmentController) GetDepartmentByID(ctx context.Context, id int64, admin *entity.Account) (*entity.Department, error) {
	dept, err := c.deps.Store.FindDepartmentByIDAndOwner(ctx, id, admin.ID)
	if err != nil {
		if isNoRows(err) {
			c.deps.Logger.Warn("Department not found", slog.Int64("id", id), slog.Int64("admin_id", admin.ID))
			return nil, apperr.ErrDepartmentNotFound
		}
		return nil, internal(c.deps.Logger, "Error querying department", err)
	}

	return dept, nil
}

func (c *DepartmentController) CreateDepartment(ctx context.Context, req entity.DepartmentRequest, admin *entity.Account) (*entity.Department, error) {
	name, err := c.departmentName(req)
	if err != nil {
		return nil, err
	}

	now := c.deps.now()
	dept := &entity.Department{
		Name:         name,
		OwnerAdminID: admin.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err = c.deps.Store.SaveDepartment(ctx, dept); err != nil {
		if isUniqueViolation(err, ConstraintDepartmentName) {
			c.deps.Logger.Warn("Duplicate department", slog.String("name", name), slog.Int64("admin_id", admin.ID))
			return nil, apperr.ErrDuplicateDepartment
		}
		return nil, internal(c.deps.Logger, "Error inserting department", err)
	}

	c.deps.Logger.Info("Department created", slog.Int64("id", dept.ID), slog.Int64("admin_id", admin.ID))
	return dept, nil
}

func (c *DepartmentController) UpdateDepartment(ctx context.Context, id int64, req entity.DepartmentRequest, admin *entity.Account) (*entity.Department, error) {
	name, err := c.departmentName(req)
	if err != nil {
		return nil, err
	}

	var dept *entity.Department
	err = c.deps.Store.WithinTx(ctx, func(ctx context.Context) error {
		var txErr error
		if dept, txErr = c.GetDepartmentByID(ctx, id, admin); txErr != nil {
			return txErr
		}

		dept.Name = name
		dept.UpdatedAt = c.deps.now()

		if txErr = c.deps.Store.SaveDepartment(ctx, dept); txErr != nil {
			if isUniqueViolation(txErr, ConstraintDepartmentName) {
				return apperr.ErrDuplicateDepartment
			}
			return internal(c.deps.Logger, "Error updating department", txErr)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return dept, nil
}

func (c *DepartmentController) DeleteDepartment(ctx context.Context, id int64, admin *entity.Account) error {
	return c.deps.Store.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := c.GetDepartmentByID(ctx, id, admin); err != nil {
			return err
		}

		members, err := c.deps.Store.CountDepartmentMembers(ctx, id)
		if err != nil {
			return internal(c.deps.Logger, "Error counting department members", err)
		}
		if members > 0 {
			c.deps.Logger.Warn("Department still has employees", slog.Int64("id", id), slog.Int64("members", members))
			return apperr.Wrap(apperr.ErrHasEmployees, "%d assigned", members)
		}

		if err = c.deps.Store.DeleteDepartment(ctx, id); err != nil {
			if isForeignKeyViolation(err, ConstraintAccountDepartment) {
				return apperr.ErrHasEmployees
			}
			return internal(c.deps.Logger, "Error deleting department", err)
		}

		c.deps.Logger.Info("Department deleted", slog.Int64("id", id), slog.Int64("admin_id", admin.ID))
		return nil
	})
}

func (c *DepartmentController) departmentName(req entity.DepartmentRequest) (string, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := c.deps.validateStruct(req); err != nil {
		c.deps.Logger.Warn("Name is required", slog.String("name", req.Name))
		return "", err
	}

	return req.Name, nil
}
