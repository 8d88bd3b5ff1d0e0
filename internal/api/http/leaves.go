package api

import (
	"net/http"

	"github.com/adamanr/ems_service/internal/entity"
)

func (s *Server) ApplyLeave(w http.ResponseWriter, r *http.Request) {
	var app entity.LeaveApplication
	if err := decode(r, &app); err != nil {
		s.fail(w, r, err)
		return
	}

	req, err := s.Controllers.LeaveController.Apply(r.Context(), app)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.httpResponse(w, http.StatusCreated, req, "success")
}

func (s *Server) ListEmployeeLeaves(w http.ResponseWriter, r *http.Request) {
	employeeID, err := pathID(r, "employeeID")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	reqs, err := s.Controllers.LeaveController.ListForEmployee(r.Context(), employeeID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.httpResponse(w, http.StatusOK, reqs, "success")
}

func (s *Server) CancelLeave(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	employeeID, err := pathID(r, "employeeID")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	req, err := s.Controllers.LeaveController.Cancel(r.Context(), id, employeeID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.httpResponse(w, http.StatusOK, req, "success")
}

func (s *Server) ListAdministratorLeaves(w http.ResponseWriter, r *http.Request) {
	admin, err := s.actingAdmin(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	reqs, err := s.Controllers.LeaveController.ListForAdministrator(r.Context(), admin, r.URL.Query().Get("status"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.httpResponse(w, http.StatusOK, reqs, "success")
}

func (s *Server) GetAdministratorLeave(w http.ResponseWriter, r *http.Request) {
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

	req, err := s.Controllers.LeaveController.GetForAdministrator(r.Context(), id, admin)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.httpResponse(w, http.StatusOK, req, "success")
}

func (s *Server) ActionLeave(w http.ResponseWriter, r *http.Request) {
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

	var action entity.LeaveAction
	if err = decode(r, &action); err != nil {
		s.fail(w, r, err)
		return
	}

	req, err := s.Controllers.LeaveController.Action(r.Context(), id, admin, action)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.httpResponse(w, http.StatusOK, req, "success")
}
