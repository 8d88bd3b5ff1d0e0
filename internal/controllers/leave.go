package controllers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/adamanr/ems_service/internal/apperr"
	"github.com/adamanr/ems_service/internal/entity"
)

// LeaveController runs the PENDING -> APPROVED | REJECTED | CANCELLED workflow.
type LeaveController struct {
	deps *Dependens
}

func NewLeaveController(deps *Dependens) *LeaveController {
	return &LeaveController{
		deps: deps,
	}
}

// Apply files a new PENDING request and notifies whoever can act on it.
func (c *LeaveController) Apply(ctx context.Context, app entity.LeaveApplication) (*entity.LeaveRequest, error) {
	var (
		req      *entity.LeaveRequest
		employee *entity.Account
	)

	err := c.deps.Store.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if employee, err = c.findEmployee(ctx, app.EmployeeID); err != nil {
			return err
		}

		if err = c.checkRange(app.StartDate, app.EndDate); err != nil {
			return err
		}

		now := c.deps.now()
		req = &entity.LeaveRequest{
			EmployeeID:    employee.ID,
			StartDate:     *app.StartDate,
			EndDate:       *app.EndDate,
			Reason:        strings.TrimSpace(app.Reason),
			Status:        entity.LeaveStatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
			EmployeeName:  employee.FullName(),
			EmployeeEmail: employee.Email,
		}

		if err = c.deps.Store.SaveLeaveRequest(ctx, req); err != nil {
			return internal(c.deps.Logger, "Error inserting leave request", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	recipients := c.approvers(ctx, employee)
	c.observeTransition(entity.LeaveStatusPending)
	c.deps.Notifier.SendLeaveApplied(*req, *employee, recipients)
	c.deps.Logger.Info("Leave request created",
		slog.Int64("id", req.ID), slog.Int64("employee_id", employee.ID), slog.Int("recipients", len(recipients)))

	return req, nil
}

// Cancel withdraws a PENDING request on behalf of its owner.
func (c *LeaveController) Cancel(ctx context.Context, id, employeeID int64) (*entity.LeaveRequest, error) {
	var req *entity.LeaveRequest

	err := c.deps.Store.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if req, err = c.deps.Store.FindLeaveRequestByID(ctx, id, true); err != nil {
			if isNoRows(err) {
				return apperr.ErrLeaveRequestNotFound
			}
			return internal(c.deps.Logger, "Error querying leave request", err)
		}

		if req.EmployeeID != employeeID {
			c.deps.Logger.Warn("Leave request cancelled by non-owner",
				slog.Int64("id", id), slog.Int64("employee_id", employeeID))
			return apperr.ErrForbidden
		}

		if req.Status.Terminal() {
			return apperr.Wrap(apperr.ErrInvalidTransition, "request is %s", req.Status)
		}

		req.Status = entity.LeaveStatusCancelled
		req.UpdatedAt = c.deps.now()

		if err = c.deps.Store.SaveLeaveRequest(ctx, req); err != nil {
			return internal(c.deps.Logger, "Error updating leave request", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	c.observeTransition(entity.LeaveStatusCancelled)
	c.deps.Logger.Info("Leave request cancelled", slog.Int64("id", id))

	return req, nil
}

func (c *LeaveController) ListForEmployee(ctx context.Context, employeeID int64) ([]entity.LeaveRequest, error) {
	if _, err := c.findEmployee(ctx, employeeID); err != nil {
		return nil, err
	}

	reqs, err := c.deps.Store.ListLeaveRequestsByEmployee(ctx, employeeID)
	if err != nil {
		return nil, internal(c.deps.Logger, "Error querying leave requests", err)
	}

	return reqs, nil
}

// ListForAdministrator lists requests of employees managed by admin. An empty
// rawStatus means no filter.
func (c *LeaveController) ListForAdministrator(ctx context.Context, admin *entity.Account, rawStatus string) ([]entity.LeaveRequest, error) {
	var filter *entity.LeaveStatus
	if rawStatus = strings.TrimSpace(rawStatus); rawStatus != "" {
		status := entity.LeaveStatus(strings.ToUpper(rawStatus))
		if !status.Valid() {
			return nil, apperr.Wrap(apperr.ErrInvalidInput, "unknown status %q", rawStatus)
		}
		filter = &status
	}

	reqs, err := c.deps.Store.ListLeaveRequestsByManager(ctx, admin.ID, filter)
	if err != nil {
		return nil, internal(c.deps.Logger, "Error querying leave requests", err)
	}

	return reqs, nil
}

func (c *LeaveController) GetForAdministrator(ctx context.Context, id int64, admin *entity.Account) (*entity.LeaveRequest, error) {
	return c.findManaged(ctx, id, admin, false)
}

// Action approves or rejects a PENDING request. The row is locked for the
// duration of the transaction so only one concurrent action wins.
func (c *LeaveController) Action(ctx context.Context, id int64, admin *entity.Account, action entity.LeaveAction) (*entity.LeaveRequest, error) {
	var req *entity.LeaveRequest

	err := c.deps.Store.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if req, err = c.findManaged(ctx, id, admin, true); err != nil {
			return err
		}

		if req.Status.Terminal() {
			return apperr.Wrap(apperr.ErrInvalidTransition, "request is %s", req.Status)
		}

		target := entity.LeaveStatus(strings.ToUpper(strings.TrimSpace(string(action.NewStatus))))
		if target != entity.LeaveStatusApproved && target != entity.LeaveStatusRejected {
			return apperr.ErrInvalidTargetStatus
		}

		adminID := admin.ID
		req.Status = target
		req.AdminRemarks = strings.TrimSpace(action.AdminRemarks)
		req.ActionedByID = &adminID
		req.ActionedByName = admin.FullName()
		req.UpdatedAt = c.deps.now()

		if err = c.deps.Store.SaveLeaveRequest(ctx, req); err != nil {
			return internal(c.deps.Logger, "Error updating leave request", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	c.observeTransition(req.Status)
	if employee, findErr := c.deps.Store.FindAccountByID(ctx, req.EmployeeID); findErr != nil {
		c.deps.Logger.Error("Error loading employee for notification",
			slog.Int64("employee_id", req.EmployeeID), slog.String("error", findErr.Error()))
	} else {
		c.deps.Notifier.SendLeaveStatusChanged(*req, *employee)
	}
	c.deps.Logger.Info("Leave request actioned",
		slog.Int64("id", id), slog.String("status", string(req.Status)), slog.Int64("admin_id", admin.ID))

	return req, nil
}

func (c *LeaveController) findEmployee(ctx context.Context, id int64) (*entity.Account, error) {
	acc, err := c.deps.Store.FindAccountByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, apperr.ErrEmployeeNotFound
		}
		return nil, internal(c.deps.Logger, "Error querying employee", err)
	}

	if !acc.IsEmployee() {
		return nil, apperr.ErrEmployeeNotFound
	}

	return acc, nil
}

func (c *LeaveController) findManaged(ctx context.Context, id int64, admin *entity.Account, forUpdate bool) (*entity.LeaveRequest, error) {
	req, err := c.deps.Store.FindLeaveRequestByIDAndManager(ctx, id, admin.ID, forUpdate)
	if err != nil {
		if isNoRows(err) {
			c.deps.Logger.Warn("Leave request not found", slog.Int64("id", id), slog.Int64("admin_id", admin.ID))
			return nil, apperr.ErrLeaveRequestNotFound
		}
		return nil, internal(c.deps.Logger, "Error querying leave request", err)
	}

	return req, nil
}

func (c *LeaveController) checkRange(start, end *entity.Date) error {
	if start == nil || end == nil || start.IsZero() || end.IsZero() {
		return apperr.Wrap(apperr.ErrInvalidRange, "start and end dates are required")
	}
	if start.After(*end) {
		return apperr.Wrap(apperr.ErrInvalidRange, "start date is after end date")
	}
	if start.Before(c.deps.today()) {
		return apperr.Wrap(apperr.ErrInvalidRange, "start date is in the past")
	}

	return nil
}

// approvers is the managing administrator or, for an unmanaged employee, every
// administrator. It runs after commit so lookup failures only cost the
// notification.
func (c *LeaveController) approvers(ctx context.Context, employee *entity.Account) []entity.Account {
	if employee.Employment != nil && employee.Employment.ManagingAdminID != nil {
		admin, err := c.deps.Store.FindAccountByID(ctx, *employee.Employment.ManagingAdminID)
		if err != nil {
			c.deps.Logger.Error("Error loading managing administrator", slog.String("error", err.Error()))
			return nil
		}
		return []entity.Account{*admin}
	}

	admins, err := c.deps.Store.ListAccountsByKind(ctx, entity.KindAdministrator)
	if err != nil {
		c.deps.Logger.Error("Error listing administrators", slog.String("error", err.Error()))
		return nil
	}

	return admins
}

func (c *LeaveController) observeTransition(status entity.LeaveStatus) {
	if c.deps.Metrics != nil {
		c.deps.Metrics.LeaveTransitions.WithLabelValues(string(status)).Inc()
	}
}
