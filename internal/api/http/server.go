package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/adamanr/ems_service/internal/apperr"
	"github.com/adamanr/ems_service/internal/controllers"
	"github.com/adamanr/ems_service/internal/entity"
	"github.com/go-chi/chi/v5"
)

// AdminHeader carries the id of the administrator acting on a request.
const AdminHeader = "X-Admin-Id"

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Server struct {
	deps        *controllers.Dependens
	Controllers *controllers.Controllers
}

func NewServer(deps *controllers.Dependens) *Server {
	return &Server{
		deps:        deps,
		Controllers: controllers.NewControllers(deps),
	}
}

// Routes mounts every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.Healthz)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.Register)
			r.Post("/verify", s.VerifyCode)
			r.Post("/resend", s.ResendCode)
			r.Post("/login", s.Login)
		})

		r.Get("/admins", s.ListAdministrators)
		r.Get("/admins/{adminID}/departments", s.ListAdministratorDepartments)

		r.Route("/departments", func(r chi.Router) {
			r.Get("/", s.GetDepartments)
			r.Post("/", s.CreateDepartment)
			r.Get("/{id}", s.GetDepartmentByID)
			r.Put("/{id}", s.UpdateDepartment)
			r.Delete("/{id}", s.DeleteDepartment)
		})

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", s.GetEmployees)
			r.Post("/", s.CreateEmployee)
			r.Get("/export", s.ExportEmployees)
			r.Get("/{id}", s.GetEmployeeByID)
			r.Put("/{id}", s.UpdateEmployee)
			r.Delete("/{id}", s.DeleteEmployee)
		})

		r.Route("/leaves", func(r chi.Router) {
			r.Post("/", s.ApplyLeave)
			r.Get("/employee/{employeeID}", s.ListEmployeeLeaves)
			r.Put("/{id}/cancel/{employeeID}", s.CancelLeave)
			r.Get("/admin", s.ListAdministratorLeaves)
			r.Get("/admin/{id}", s.GetAdministratorLeave)
			r.Put("/admin/{id}/action", s.ActionLeave)
		})

		r.Get("/dashboard/summary", s.DashboardSummary)
	})
}

func (s *Server) Healthz(w http.ResponseWriter, _ *http.Request) {
	s.httpResponse(w, http.StatusOK, map[string]string{"status": "ok"}, "success")
}

// actingAdmin resolves the administrator named by the request header.
func (s *Server) actingAdmin(r *http.Request) (*entity.Account, error) {
	return s.Controllers.ScopeController.ResolveActingAdministrator(r.Context(), r.Header.Get(AdminHeader))
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Wrap(apperr.ErrInvalidInput, "malformed request body")
	}

	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Wrap(apperr.ErrMalformedIdentifier, "%s %q", name, raw)
	}

	return id, nil
}

// StatusOf maps an error kind to its HTTP status.
func StatusOf(err error) int {
	switch apperr.KindOf(err) {
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Forbidden:
		return http.StatusForbidden
	case apperr.Unauthorized:
		return http.StatusUnauthorized
	case apperr.Duplicate, apperr.InvalidTransition:
		return http.StatusConflict
	case apperr.InvalidArgument:
		return http.StatusBadRequest
	case apperr.Expired:
		return http.StatusGone
	case apperr.RateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusOf(err)

	body := errorBody{Code: apperr.CodeOf(err), Message: err.Error()}
	if status == http.StatusInternalServerError {
		body = errorBody{Code: apperr.ErrInternal.Code, Message: apperr.ErrInternal.Message}
		s.deps.Logger.Error("Request failed",
			slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.String("error", err.Error()))
	} else {
		s.deps.Logger.Warn("Request rejected",
			slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.String("code", body.Code))
	}

	s.httpResponse(w, status, body, "error")
}

func (s *Server) httpResponse(w http.ResponseWriter, status int, data any, respType string) {
	resp := map[string]any{
		"status": status,
		"type":   respType,
		"data":   data,
	}

	respData, marshalErr := json.Marshal(resp)
	if marshalErr != nil {
		s.deps.Logger.Error("Error marshaling response", slog.String("error", marshalErr.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if _, err := w.Write(respData); err != nil {
		s.deps.Logger.Error("Error writing response", slog.String("error", err.Error()))
	}
}
