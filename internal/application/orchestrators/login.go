package orchestrators

import (
	"context"
	"log/slog"
	"strings"

	"factoryplan/internal/adapters/backend"
)

// LoginGateway defines the backend interface needed by Login.
type LoginGateway interface {
	Login(ctx context.Context, username, password string) (backend.LoginResult, error)
}

// LoginInput carries the login form.
type LoginInput struct {
	Username string
	Password string
}

// LoginResult carries what the dashboard stores in the session.
type LoginResult struct {
	Token    string
	Username string
	IsAdmin  bool
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	Users LoginGateway
}

// ExecuteLogin exchanges credentials for a backend bearer token.
// PRE: Username and password provided, otherwise no request is issued
// POST: Returns the token and admin flag for session creation
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return LoginResult{}, ErrMissingCredentials
	}

	res, err := deps.Users.Login(ctx, username, input.Password)
	if err != nil {
		slog.Info("auth_event", "event", "login_failed", "username", username, "error", err)
		return LoginResult{}, err
	}

	slog.Info("auth_event", "event", "login_success", "username", res.Username, "admin", res.IsAdmin())
	return LoginResult{Token: res.Token, Username: res.Username, IsAdmin: res.IsAdmin()}, nil
}
