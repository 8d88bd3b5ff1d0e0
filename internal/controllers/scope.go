package controllers

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/adamanr/ems_service/internal/apperr"
	"github.com/adamanr/ems_service/internal/entity"
)

type ScopeController struct {
	deps *Dependens
}

func NewScopeController(deps *Dependens) *ScopeController {
	return &ScopeController{
		deps: deps,
	}
}

// ResolveActingAdministrator turns a raw administrator id into the administrator
// account every scoped operation runs on behalf of.
func (c *ScopeController) ResolveActingAdministrator(ctx context.Context, raw string) (*entity.Account, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, apperr.ErrMissingIdentifier
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.deps.Logger.Warn("Malformed administrator id", slog.String("raw", raw))
		return nil, apperr.Wrap(apperr.ErrMalformedIdentifier, "%q", raw)
	}

	acc, err := c.deps.Store.FindAccountByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, apperr.ErrAdministratorNotFound
		}
		return nil, internal(c.deps.Logger, "Error querying administrator", err)
	}

	if !acc.IsAdministrator() {
		c.deps.Logger.Warn("Account is not an administrator", slog.Int64("account_id", id))
		return nil, apperr.ErrAdministratorNotFound
	}

	return acc, nil
}
