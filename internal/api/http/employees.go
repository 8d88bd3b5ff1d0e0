package api

import (
	"log/slog"
	"net/http"

	"github.com/adamanr/ems_service/internal/entity"
)

func (s *Server) GetEmployees(w http.ResponseWriter, r *http.Request) {
	admin, err := s.actingAdmin(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	employees, err := s.Controllers.EmployeeController.GetEmployees(r.Context(), admin)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.httpResponse(w, http.StatusOK, employees, "success")
}

func (s *Server) GetEmployeeByID(w http.ResponseWriter, r *http.Request) {
	admin, err := s.actingAdmin(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	employee, err := s.Controllers.EmployeeController.GetEmployeeByID(r.Context(), id, admin)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.httpResponse(w, http.StatusOK, employee, "success")
}

func (s *Server) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	admin, err := s.actingAdmin(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var req entity.EmployeeRequest
	if err = decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	employee, err := s.Controllers.EmployeeController.CreateEmployee(r.Context(), req, admin)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.httpResponse(w, http.StatusCreated, employee, "success")
}

func (s *Server) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	admin, err := s.actingAdmin(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var req entity.EmployeeRequest
	if err = decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	employee, err := s.Controllers.EmployeeController.UpdateEmployee(r.Context(), id, req, admin)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.httpResponse(w, http.StatusOK, employee, "success")
}

func (s *Server) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	admin, err := s.actingAdmin(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if err = s.Controllers.EmployeeController.DeleteEmployee(r.Context(), id, admin); err != nil {
		s.fail(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExportEmployees downloads the administrator's employees as a workbook.
func (s *Server) ExportEmployees(w http.ResponseWriter, r *http.Request) {
	admin, err := s.actingAdmin(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	data, err := s.Controllers.EmployeeController.ExportEmployees(r.Context(), admin)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="employees.xlsx"`)
	w.WriteHeader(http.StatusOK)

	if _, err = w.Write(data); err != nil {
		s.deps.Logger.Error("Error writing export", slog.String("error", err.Error()))
	}
}
