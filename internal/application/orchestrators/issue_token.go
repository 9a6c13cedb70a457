package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"factoryplan/internal/domain/user"
)

// UserStoreForIssueToken defines the store interface needed by IssueToken.
type UserStoreForIssueToken interface {
	GetByUsername(ctx context.Context, username string) (user.User, error)
	SaveToken(ctx context.Context, t user.Token) error
}

// IssueTokenInput carries the credentials posted to /users/login.
type IssueTokenInput struct {
	Username string
	Password string
}

// IssueTokenResult is the bearer token handed back to the dashboard.
type IssueTokenResult struct {
	Token    string
	Username string
	Role     string
}

// IssueTokenDeps holds dependencies for IssueToken.
type IssueTokenDeps struct {
	UserStore     UserStoreForIssueToken
	GenerateToken func() string
	Now           func() time.Time
}

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrMissingCredentials = errors.New("username and password are required")
)

// ExecuteIssueToken checks credentials and stores a new bearer token.
// PRE: Username and password provided
// POST: A token valid for user.TokenLifetime is persisted and returned
func ExecuteIssueToken(ctx context.Context, input IssueTokenInput, deps IssueTokenDeps) (IssueTokenResult, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return IssueTokenResult{}, ErrMissingCredentials
	}

	u, err := deps.UserStore.GetByUsername(ctx, username)
	if err != nil {
		slog.Info("auth_event", "event", "login_failed", "username", username, "reason", "not_found")
		return IssueTokenResult{}, ErrInvalidCredentials
	}
	if err := u.CheckPassword(input.Password); err != nil {
		slog.Info("auth_event", "event", "login_failed", "username", username, "reason", "wrong_password")
		return IssueTokenResult{}, ErrInvalidCredentials
	}

	tok := user.Token{
		Token:     deps.GenerateToken(),
		UserID:    u.ID,
		Role:      u.Role,
		ExpiresAt: deps.Now().Add(user.TokenLifetime),
	}
	if err := deps.UserStore.SaveToken(ctx, tok); err != nil {
		return IssueTokenResult{}, err
	}

	slog.Info("auth_event", "event", "login_success", "username", username, "role", u.Role)
	return IssueTokenResult{Token: tok.Token, Username: u.Username, Role: u.Role}, nil
}

// TokenStoreForVerify defines the store interface needed by VerifyToken.
type TokenStoreForVerify interface {
	GetToken(ctx context.Context, token string) (user.Token, error)
}

// VerifyTokenDeps holds dependencies for VerifyToken.
type VerifyTokenDeps struct {
	TokenStore TokenStoreForVerify
	Now        func() time.Time
}

var (
	ErrTokenMissing = errors.New("authentication required")
	ErrTokenInvalid = errors.New("invalid or expired token")
)

// ExecuteVerifyToken resolves an Authorization header value to a live token.
// PRE: header is the raw Authorization header (may be empty)
// POST: Returns the token, ErrTokenMissing, or ErrTokenInvalid for unknown and expired tokens
func ExecuteVerifyToken(ctx context.Context, header string, deps VerifyTokenDeps) (user.Token, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return user.Token{}, ErrTokenMissing
	}
	tok, err := deps.TokenStore.GetToken(ctx, raw)
	if err != nil {
		return user.Token{}, ErrTokenInvalid
	}
	if tok.Expired(deps.Now()) {
		slog.Info("auth_event", "event", "token_expired", "user_id", tok.UserID)
		return user.Token{}, ErrTokenInvalid
	}
	return tok, nil
}
