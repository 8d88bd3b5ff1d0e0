package database

import (
	"context"

	"github.com/adamanr/ems_service/internal/entity"
	"github.com/jackc/pgx/v5"
)

const leaveSelect = `
	SELECT l.id, l.employee_id, l.start_date, l.end_date, l.reason, l.status, l.admin_remarks,
		l.actioned_by_id, l.created_at, l.updated_at,
		trim(e.first_name || ' ' || e.last_name) AS employee_name,
		e.email AS employee_email,
		COALESCE(trim(a.first_name || ' ' || a.last_name), '') AS actioned_by_name
	FROM leave_requests l
	JOIN accounts e ON e.id = l.employee_id
	LEFT JOIN accounts a ON a.id = l.actioned_by_id`

const leaveOrder = ` ORDER BY l.created_at DESC, l.id DESC`

func lockClause(forUpdate bool) string {
	if forUpdate {
		return ` FOR UPDATE OF l`
	}

	return ""
}

func collectLeave(rows pgx.Rows, err error) (*entity.LeaveRequest, error) {
	if err != nil {
		return nil, err
	}

	req, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[entity.LeaveRequest])
	if err != nil {
		return nil, err
	}

	return &req, nil
}

func collectLeaves(rows pgx.Rows, err error) ([]entity.LeaveRequest, error) {
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowToStructByName[entity.LeaveRequest])
}

func (s *Store) FindLeaveRequestByID(ctx context.Context, id int64, forUpdate bool) (*entity.LeaveRequest, error) {
	return collectLeave(s.q(ctx).Query(ctx, leaveSelect+` WHERE l.id = $1`+lockClause(forUpdate), id))
}

func (s *Store) FindLeaveRequestByIDAndManager(ctx context.Context, id, adminID int64, forUpdate bool) (*entity.LeaveRequest, error) {
	query := leaveSelect + `
		WHERE l.id = $1 AND e.kind = 'EMPLOYEE' AND e.managing_admin_id = $2` + lockClause(forUpdate)

	return collectLeave(s.q(ctx).Query(ctx, query, id, adminID))
}

func (s *Store) ListLeaveRequestsByEmployee(ctx context.Context, employeeID int64) ([]entity.LeaveRequest, error) {
	return collectLeaves(s.q(ctx).Query(ctx, leaveSelect+` WHERE l.employee_id = $1`+leaveOrder, employeeID))
}

func (s *Store) ListLeaveRequestsByManager(ctx context.Context, adminID int64, status *entity.LeaveStatus) ([]entity.LeaveRequest, error) {
	var filter *string
	if status != nil {
		v := string(*status)
		filter = &v
	}

	query := leaveSelect + `
		WHERE e.kind = 'EMPLOYEE' AND e.managing_admin_id = $1
			AND ($2::text IS NULL OR l.status = $2::text)` + leaveOrder

	return collectLeaves(s.q(ctx).Query(ctx, query, adminID, filter))
}

// SaveLeaveRequest inserts a request or records a status change. Employee and
// dates are fixed once created.
func (s *Store) SaveLeaveRequest(ctx context.Context, req *entity.LeaveRequest) error {
	if req.ID == 0 {
		query := `INSERT INTO leave_requests (employee_id, start_date, end_date, reason, status, admin_remarks, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id`

		return s.q(ctx).QueryRow(ctx, query,
			req.EmployeeID, req.StartDate, req.EndDate, req.Reason, string(req.Status), req.AdminRemarks,
			req.CreatedAt, req.UpdatedAt,
		).Scan(&req.ID)
	}

	query := `UPDATE leave_requests
		SET status = $2, admin_remarks = $3, actioned_by_id = $4, updated_at = $5
		WHERE id = $1`

	return execAffecting(ctx, s.q(ctx), query, req.ID, string(req.Status), req.AdminRemarks, req.ActionedByID, req.UpdatedAt)
}
