package entity

import "github.com/shopspring/decimal"

// Age bands, in display order.
const (
	AgeGroupUnder20 = "Under 20"
	AgeGroup20s     = "20-29"
	AgeGroup30s     = "30-39"
	AgeGroup40s     = "40-49"
	AgeGroup50s     = "50-59"
	AgeGroup60Plus  = "60+"
)

var AgeGroups = []string{AgeGroupUnder20, AgeGroup20s, AgeGroup30s, AgeGroup40s, AgeGroup50s, AgeGroup60Plus}

// AgeGroupOf returns the band for an age in whole years.
func AgeGroupOf(age int) string {
	switch {
	case age < 20:
		return AgeGroupUnder20
	case age <= 29:
		return AgeGroup20s
	case age <= 39:
		return AgeGroup30s
	case age <= 49:
		return AgeGroup40s
	case age <= 59:
		return AgeGroup50s
	default:
		return AgeGroup60Plus
	}
}

type DepartmentSalary struct {
	DepartmentName string          `json:"department_name"`
	AverageSalary  decimal.Decimal `json:"average_salary"`
}

type DashboardSummary struct {
	TotalEmployees             int64              `json:"total_employees"`
	TotalDepartments           int64              `json:"total_departments"`
	AverageEmployeeAge         float64            `json:"average_employee_age"`
	AverageSalaryPerDepartment []DepartmentSalary `json:"average_salary_per_department"`
	EmployeeCountByRole        map[string]int64   `json:"employee_count_by_role"`
	EmployeeCountByDepartment  map[string]int64   `json:"employee_count_by_department"`
	EmployeeCountByGender      map[string]int64   `json:"employee_count_by_gender"`
	EmployeeCountByAgeGroup    map[string]int64   `json:"employee_count_by_age_group"`
}
