package http

import (
	"net/http"

	"github.com/optimatax/reliefdesk/pkg/domain/model/auth"
	"github.com/optimatax/reliefdesk/pkg/usecase"
)

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password" masq:"secret"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password" masq:"secret"`
}

func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	user, token, err := s.authUC.Register(r.Context(), usecase.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, sessionResponse{User: toUserResponse(user), Token: token})
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	user, token, err := s.authUC.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, sessionResponse{User: toUserResponse(user), Token: token})
}

// meHandler returns the account of the current token
func (s *Server) meHandler(w http.ResponseWriter, r *http.Request) {
	token, err := auth.TokenFromContext(r.Context())
	if err != nil {
		writeError(r.Context(), w, usecase.ErrUnauthenticated)
		return
	}

	user, err := s.authUC.Me(r.Context(), token)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toUserResponse(user))
}
