package controllers

import (
	"context"
	"math"

	"github.com/adamanr/ems_service/internal/entity"
)

type DashboardController struct {
	deps *Dependens
}

func NewDashboardController(deps *Dependens) *DashboardController {
	return &DashboardController{
		deps: deps,
	}
}

// Summarize computes the dashboard for the employees managed by admin.
func (c *DashboardController) Summarize(ctx context.Context, admin *entity.Account) (*entity.DashboardSummary, error) {
	var (
		summary entity.DashboardSummary
		err     error
	)

	if summary.TotalEmployees, err = c.deps.Store.CountEmployeesByManager(ctx, admin.ID); err != nil {
		return nil, internal(c.deps.Logger, "Error counting employees", err)
	}
	if summary.TotalDepartments, err = c.deps.Store.CountDepartmentsWithEmployees(ctx, admin.ID); err != nil {
		return nil, internal(c.deps.Logger, "Error counting departments", err)
	}
	if summary.EmployeeCountByRole, err = c.deps.Store.CountEmployeesByRole(ctx, admin.ID); err != nil {
		return nil, internal(c.deps.Logger, "Error counting employees by role", err)
	}
	if summary.EmployeeCountByDepartment, err = c.deps.Store.CountEmployeesByDepartment(ctx, admin.ID); err != nil {
		return nil, internal(c.deps.Logger, "Error counting employees by department", err)
	}
	if summary.EmployeeCountByGender, err = c.deps.Store.CountEmployeesByGender(ctx, admin.ID); err != nil {
		return nil, internal(c.deps.Logger, "Error counting employees by gender", err)
	}
	if summary.AverageSalaryPerDepartment, err = c.deps.Store.AverageSalaryByDepartment(ctx, admin.ID); err != nil {
		return nil, internal(c.deps.Logger, "Error averaging salaries", err)
	}
	if summary.AverageSalaryPerDepartment == nil {
		summary.AverageSalaryPerDepartment = []entity.DepartmentSalary{}
	}

	birthDates, err := c.deps.Store.ListEmployeeBirthDates(ctx, admin.ID)
	if err != nil {
		return nil, internal(c.deps.Logger, "Error querying birth dates", err)
	}

	summary.AverageEmployeeAge, summary.EmployeeCountByAgeGroup = ageStats(birthDates, c.deps.today())

	return &summary, nil
}

// ageStats returns the mean whole-year age rounded to one decimal and the
// count per age band. Every band is present.
func ageStats(birthDates []entity.Date, today entity.Date) (float64, map[string]int64) {
	groups := make(map[string]int64, len(entity.AgeGroups))
	for _, g := range entity.AgeGroups {
		groups[g] = 0
	}

	if len(birthDates) == 0 {
		return 0, groups
	}

	var total int
	for _, bd := range birthDates {
		age := bd.YearsUntil(today)
		total += age
		groups[entity.AgeGroupOf(age)]++
	}

	avg := float64(total) / float64(len(birthDates))
	return math.Round(avg*10) / 10, groups
}
