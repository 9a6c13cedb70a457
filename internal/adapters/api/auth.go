package api

import (
	"errors"
	"log/slog"
	"net/http"

	"factoryplan/internal/application/orchestrators"
	"factoryplan/internal/domain/user"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginUser struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type loginResponse struct {
	Token string    `json:"token"`
	User  loginUser `json:"user"`
}

// handleLogin handles POST /users/login.
// Bad credentials answer 400 so the dashboard can show the message; 401 is
// reserved for rejected bearer tokens.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !strictDecode(w, r, &req) {
		return
	}
	res, err := orchestrators.ExecuteIssueToken(r.Context(), orchestrators.IssueTokenInput{
		Username: req.Username,
		Password: req.Password,
	}, orchestrators.IssueTokenDeps{
		UserStore:     s.stores.Users,
		GenerateToken: s.newToken,
		Now:           s.now,
	})
	switch {
	case errors.Is(err, orchestrators.ErrMissingCredentials):
		writeMessage(w, http.StatusBadRequest, "Username and password are required")
		return
	case errors.Is(err, orchestrators.ErrInvalidCredentials):
		writeMessage(w, http.StatusBadRequest, "Invalid credentials")
		return
	case err != nil:
		internalError(w, err)
		return
	}

	if n, err := s.stores.Users.DeleteExpiredTokens(r.Context(), s.now()); err != nil {
		slog.Warn("token_sweep_failed", "error", err)
	} else if n > 0 {
		slog.Debug("token_sweep", "deleted", n)
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token: res.Token,
		User:  loginUser{Username: res.Username, Role: res.Role},
	})
}

// editor wraps a mutation that any logged-in user may perform.
func (s *Server) editor(h http.HandlerFunc) http.HandlerFunc {
	return s.authorize(h, false)
}

// admin wraps a mutation that needs the admin role.
func (s *Server) admin(h http.HandlerFunc) http.HandlerFunc {
	return s.authorize(h, true)
}

func (s *Server) authorize(h http.HandlerFunc, adminOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok, err := orchestrators.ExecuteVerifyToken(r.Context(), r.Header.Get("Authorization"), orchestrators.VerifyTokenDeps{
			TokenStore: s.stores.Users,
			Now:        s.now,
		})
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, err.Error())
			return
		}
		if adminOnly && tok.Role != user.RoleAdmin {
			slog.Info("auth_event", "event", "forbidden", "user_id", tok.UserID, "path", r.URL.Path)
			writeMessage(w, http.StatusForbidden, "Admin role required")
			return
		}
		h(w, r)
	}
}
