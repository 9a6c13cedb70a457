package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"factoryplan/internal/domain/access"
	"factoryplan/internal/domain/notification"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const sessionContextKey contextKey = "session"

// SessionLifetime is how long a dashboard session lives after login.
const SessionLifetime = 24 * time.Hour

// SecureCookies marks the session cookie Secure. Set from main in production.
var SecureCookies = false

// Session is a logged-in dashboard user. Token is the backend bearer credential
// and never leaves the server.
type Session struct {
	ID        string
	Token     string
	Username  string
	IsAdmin   bool
	Editing   bool
	Flash     notification.Flash
	CreatedAt time.Time
}

// Access derives the explicit auth context for views and editors.
// INVARIANT: Session fields are not mutated
func (s Session) Access() access.Context {
	return access.Context{
		LoggedIn: s.Token != "",
		Admin:    s.IsAdmin,
		Editing:  s.Editing,
	}
}

// SessionStore is an in-memory session store.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

// Create stores a new session and returns its id.
// PRE: sess.Token is the bearer token returned by the backend login
// POST: Session is stored with a fresh id and CreatedAt
func (ss *SessionStore) Create(sess Session) (string, error) {
	id, err := generateToken()
	if err != nil {
		return "", err
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	sess.ID = id
	sess.CreatedAt = ss.now()
	ss.sessions[id] = sess
	return id, nil
}

// Get retrieves a session by id.
// PRE: id is non-empty
// POST: Returns session if present and not expired; expired sessions are dropped
func (ss *SessionStore) Get(id string) (Session, bool) {
	ss.mu.RLock()
	sess, ok := ss.sessions[id]
	ss.mu.RUnlock()
	if !ok {
		return Session{}, false
	}
	if ss.now().Sub(sess.CreatedAt) > SessionLifetime {
		ss.Delete(id)
		return Session{}, false
	}
	return sess, true
}

// Delete removes a session by id.
// POST: Session with given id is removed
func (ss *SessionStore) Delete(id string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.sessions, id)
}

// Update replaces the session for a given id in-place.
// PRE: id exists in the store
// POST: Session is replaced with the new value
func (ss *SessionStore) Update(id string, sess Session) bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if _, ok := ss.sessions[id]; !ok {
		return false
	}
	sess.ID = id
	ss.sessions[id] = sess
	return true
}

// SetFlash stores a one-shot message for the next page render of the session.
func (ss *SessionStore) SetFlash(id string, f notification.Flash) bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	sess, ok := ss.sessions[id]
	if !ok {
		return false
	}
	sess.Flash = f
	ss.sessions[id] = sess
	return true
}

// TakeFlash returns and clears the pending message of the session.
func (ss *SessionStore) TakeFlash(id string) notification.Flash {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	sess, ok := ss.sessions[id]
	if !ok {
		return notification.Flash{}
	}
	f := sess.Flash
	sess.Flash = notification.Flash{}
	ss.sessions[id] = sess
	return f
}

// ToggleEditing flips the editing switch and returns the new value.
func (ss *SessionStore) ToggleEditing(id string) (bool, bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	sess, ok := ss.sessions[id]
	if !ok {
		return false, false
	}
	sess.Editing = !sess.Editing
	ss.sessions[id] = sess
	return sess.Editing, true
}

// Len is the number of stored sessions, expired ones included.
func (ss *SessionStore) Len() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.sessions)
}

const sessionCookieName = "factoryplan_session"

// Auth returns middleware that extracts the session from the cookie and sets it in context.
// It does NOT block anonymous requests; use RequireAuth for that.
func Auth(sessions *SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookieName)
			if err == nil && cookie.Value != "" {
				if sess, ok := sessions.Get(cookie.Value); ok {
					r = r.WithContext(ContextWithSession(r.Context(), sess))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth returns middleware that sends anonymous requests to the login page.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSessionFromContext(r.Context()); !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetSessionFromContext extracts the session from the request context.
func GetSessionFromContext(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(sessionContextKey).(Session)
	return sess, ok
}

// AccessFromContext returns the auth context of the request; anonymous when there is no session.
func AccessFromContext(ctx context.Context) access.Context {
	sess, ok := GetSessionFromContext(ctx)
	if !ok {
		return access.Anonymous
	}
	return sess.Access()
}

// SetSessionCookie sets the session cookie on the response.
func SetSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   int(SessionLifetime.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

// SessionCookieName is exported for tests that build requests by hand.
func SessionCookieName() string {
	return sessionCookieName
}

// ContextWithSession returns a context with the given session set.
func ContextWithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
