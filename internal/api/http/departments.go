package api

import (
	"net/http"

	"github.com/adamanr/ems_service/internal/entity"
)

func (s *Server) GetDepartments(w http.ResponseWriter, r *http.Request) {
	admin, err := s.actingAdmin(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	departments, err := s.Controllers.DepartmentController.GetDepartments(r.Context(), admin)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.httpResponse(w, http.StatusOK, departments, "success")
}

func (s *Server) GetDepartmentByID(w http.ResponseWriter, r *http.Request) {
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

	department, err := s.Controllers.DepartmentController.GetDepartmentByID(r.Context(), id, admin)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.httpResponse(w, http.StatusOK, department, "success")
}

func (s *Server) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	admin, err := s.actingAdmin(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var req entity.DepartmentRequest
	if err = decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	department, err := s.Controllers.DepartmentController.CreateDepartment(r.Context(), req, admin)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.httpResponse(w, http.StatusCreated, department, "success")
}

func (s *Server) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
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

	var req entity.DepartmentRequest
	if err = decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	department, err := s.Controllers.DepartmentController.UpdateDepartment(r.Context(), id, req, admin)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.httpResponse(w, http.StatusOK, department, "success")
}

func (s *Server) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
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

	if err = s.Controllers.DepartmentController.DeleteDepartment(r.Context(), id, admin); err != nil {
		s.fail(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
