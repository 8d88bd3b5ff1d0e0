package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) ListAdministrators(w http.ResponseWriter, r *http.Request) {
	admins, err := s.Controllers.DirectoryController.ListAdministrators(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.httpResponse(w, http.StatusOK, admins, "success")
}

func (s *Server) ListAdministratorDepartments(w http.ResponseWriter, r *http.Request) {
	depts, err := s.Controllers.DirectoryController.ListDepartmentsForAdministrator(r.Context(), chi.URLParam(r, "adminID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.httpResponse(w, http.StatusOK, depts, "success")
}
