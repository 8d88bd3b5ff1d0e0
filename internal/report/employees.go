package report

import (
	"fmt"

	"github.com/adamanr/ems_service/internal/entity"
	"github.com/xuri/excelize/v2"
)

const EmployeesSheet = "Employees"

var employeeHeader = []any{
	"ID", "First name", "Last name", "Email", "Department", "Gender", "Birth date", "Hire date", "Salary",
}

// Workbook renders employee listings as XLSX.
type Workbook struct{}

func NewWorkbook() *Workbook {
	return &Workbook{}
}

// Employees writes one row per employee below a bold header row. Unknown
// values are left as blank cells.
func (w *Workbook) Employees(employees []entity.Account) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), EmployeesSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(EmployeesSheet, "A1", &employeeHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	if err = f.SetCellStyle(EmployeesSheet, "A1", "I1", bold); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}
	if err = f.SetColWidth(EmployeesSheet, "A", "I", 18); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	for i := range employees {
		for col, v := range employeeRow(&employees[i]) {
			if v == nil {
				continue
			}

			cell, cellErr := excelize.CoordinatesToCellName(col+1, i+2)
			if cellErr != nil {
				return nil, cellErr
			}
			if err = f.SetCellValue(EmployeesSheet, cell, v); err != nil {
				return nil, fmt.Errorf("write employee %d: %w", employees[i].ID, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	return buf.Bytes(), nil
}

func employeeRow(acc *entity.Account) []any {
	row := []any{acc.ID, acc.FirstName, acc.LastName, acc.Email, nil, nil, nil, nil, nil}

	emp := acc.Employment
	if emp == nil {
		return row
	}

	if emp.DepartmentName != "" {
		row[4] = emp.DepartmentName
	}
	if emp.Gender != nil {
		row[5] = string(*emp.Gender)
	}
	if emp.BirthDate != nil {
		row[6] = emp.BirthDate.String()
	}
	if emp.HireDate != nil {
		row[7] = emp.HireDate.String()
	}
	if emp.Salary != nil {
		row[8] = emp.Salary.StringFixed(2)
	}

	return row
}
