package controllers

import (
	"context"
	"log/slog"
	"time"

	"github.com/adamanr/ems_service/internal/config"
	"github.com/adamanr/ems_service/internal/entity"
	"github.com/adamanr/ems_service/internal/metrics"
	"github.com/go-playground/validator/v10"
)

type Controllers struct {
	AuthController       *AuthController
	ScopeController      *ScopeController
	DepartmentController *DepartmentController
	EmployeeController   *EmployeeController
	LeaveController      *LeaveController
	DashboardController  *DashboardController
	DirectoryController  *DirectoryController
}

func NewControllers(deps *Dependens) *Controllers {
	return &Controllers{
		AuthController:       NewAuthController(deps),
		ScopeController:      NewScopeController(deps),
		DepartmentController: NewDepartmentController(deps),
		EmployeeController:   NewEmployeeController(deps),
		LeaveController:      NewLeaveController(deps),
		DashboardController:  NewDashboardController(deps),
		DirectoryController:  NewDirectoryController(deps),
	}
}

// Transactor runs fn inside one store transaction carried by ctx.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// AccountStore returns pgx.ErrNoRows for missing records.
type AccountStore interface {
	FindAccountByID(ctx context.Context, id int64) (*entity.Account, error)
	FindAccountByEmail(ctx context.Context, email string) (*entity.Account, error)
	ListAccountsByKind(ctx context.Context, kind entity.Kind) ([]entity.Account, error)
	FindEmployeeByIDAndManager(ctx context.Context, id, adminID int64) (*entity.Account, error)
	ListEmployeesByManager(ctx context.Context, adminID int64) ([]entity.Account, error)
	SaveAccount(ctx context.Context, acc *entity.Account) error
	DeleteAccount(ctx context.Context, id int64) error
}

type DepartmentStore interface {
	FindDepartmentByIDAndOwner(ctx context.Context, id, ownerID int64) (*entity.Department, error)
	FindDepartmentByOwnerAndName(ctx context.Context, ownerID int64, name string) (*entity.Department, error)
	ListDepartmentsByOwner(ctx context.Context, ownerID int64) ([]entity.Department, error)
	CountDepartmentMembers(ctx context.Context, id int64) (int64, error)
	SaveDepartment(ctx context.Context, dept *entity.Department) error
	DeleteDepartment(ctx context.Context, id int64) error
}

type LeaveStore interface {
	FindLeaveRequestByID(ctx context.Context, id int64, forUpdate bool) (*entity.LeaveRequest, error)
	FindLeaveRequestByIDAndManager(ctx context.Context, id, adminID int64, forUpdate bool) (*entity.LeaveRequest, error)
	ListLeaveRequestsByEmployee(ctx context.Context, employeeID int64) ([]entity.LeaveRequest, error)
	ListLeaveRequestsByManager(ctx context.Context, adminID int64, status *entity.LeaveStatus) ([]entity.LeaveRequest, error)
	SaveLeaveRequest(ctx context.Context, req *entity.LeaveRequest) error
}

// DashboardStore aggregates are scoped to EMPLOYEE accounts managed by adminID.
type DashboardStore interface {
	CountEmployeesByManager(ctx context.Context, adminID int64) (int64, error)
	CountDepartmentsWithEmployees(ctx context.Context, adminID int64) (int64, error)
	CountEmployeesByRole(ctx context.Context, adminID int64) (map[string]int64, error)
	CountEmployeesByDepartment(ctx context.Context, adminID int64) (map[string]int64, error)
	CountEmployeesByGender(ctx context.Context, adminID int64) (map[string]int64, error)
	AverageSalaryByDepartment(ctx context.Context, adminID int64) ([]entity.DepartmentSalary, error)
	ListEmployeeBirthDates(ctx context.Context, adminID int64) ([]entity.Date, error)
}

type Store interface {
	Transactor
	AccountStore
	DepartmentStore
	LeaveStore
	DashboardStore
}

// Notifier delivers messages in the background. Failures are logged by the
// implementation and never reach the caller.
type Notifier interface {
	SendVerificationCode(email, code string)
	SendWelcome(employee entity.Account)
	SendLeaveApplied(req entity.LeaveRequest, employee entity.Account, recipients []entity.Account)
	SendLeaveStatusChanged(req entity.LeaveRequest, employee entity.Account)
}

// Limiter bounds how often a key may be used within a window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Exporter renders an administrator's employees into a downloadable file.
type Exporter interface {
	Employees(employees []entity.Account) ([]byte, error)
}

type Dependens struct {
	Store    Store
	Notifier Notifier
	Limiter  Limiter
	Exporter Exporter
	Metrics  *metrics.Metrics
	Validate *validator.Validate
	Logger   *slog.Logger
	Config   *config.Config
	Clock    func() time.Time
}

func (d *Dependens) now() time.Time {
	if d.Clock != nil {
		return d.Clock()
	}

	return time.Now()
}

func (d *Dependens) today() entity.Date {
	return entity.NewDate(d.now())
}
