package controllers

import (
	"context"

	"github.com/adamanr/ems_service/internal/entity"
)

// DirectoryController serves the public lookups of the sign-up form.
type DirectoryController struct {
	deps  *Dependens
	scope *ScopeController
}

func NewDirectoryController(deps *Dependens) *DirectoryController {
	return &DirectoryController{
		deps:  deps,
		scope: NewScopeController(deps),
	}
}

func (c *DirectoryController) ListAdministrators(ctx context.Context) ([]entity.AdminSummary, error) {
	admins, err := c.deps.Store.ListAccountsByKind(ctx, entity.KindAdministrator)
	if err != nil {
		return nil, internal(c.deps.Logger, "Error listing administrators", err)
	}

	out := make([]entity.AdminSummary, 0, len(admins))
	for i := range admins {
		out = append(out, entity.AdminSummary{ID: admins[i].ID, Name: admins[i].FullName()})
	}

	return out, nil
}

// ListDepartmentsForAdministrator lists the departments a new employee may pick
// once they have chosen rawAdminID.
func (c *DirectoryController) ListDepartmentsForAdministrator(ctx context.Context, rawAdminID string) ([]entity.Department, error) {
	admin, err := c.scope.ResolveActingAdministrator(ctx, rawAdminID)
	if err != nil {
		return nil, err
	}

	depts, err := c.deps.Store.ListDepartmentsByOwner(ctx, admin.ID)
	if err != nil {
		return nil, internal(c.deps.Logger, "Error listing departments", err)
	}

	return depts, nil
}
