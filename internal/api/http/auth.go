package api

import (
	"net/http"

	"github.com/adamanr/ems_service/internal/entity"
)

// Register signs up an administrator or employee and mails a verification code.
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req entity.RegistrationRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	resp, err := s.Controllers.AuthController.Register(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.httpResponse(w, http.StatusCreated, resp, "success")
}

func (s *Server) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req entity.VerifyCodeRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	profile, err := s.Controllers.AuthController.VerifyCode(r.Context(), req.Email, req.Code)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.httpResponse(w, http.StatusOK, profile, "success")
}

func (s *Server) ResendCode(w http.ResponseWriter, r *http.Request) {
	var req entity.ResendCodeRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.Controllers.AuthController.ResendCode(r.Context(), req.Email); err != nil {
		s.fail(w, r, err)
		return
	}

	s.httpResponse(w, http.StatusOK, map[string]string{"message": "A new verification code has been sent"}, "success")
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req entity.LoginRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	profile, err := s.Controllers.AuthController.Login(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.httpResponse(w, http.StatusOK, profile, "success")
}
