package api

import "net/http"

func (s *Server) DashboardSummary(w http.ResponseWriter, r *http.Request) {
	admin, err := s.actingAdmin(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	summary, err := s.Controllers.DashboardController.Summarize(r.Context(), admin)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.httpResponse(w, http.StatusOK, summary, "success")
}
