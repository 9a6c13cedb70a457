package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"factoryplan/internal/adapters/backend"
	"factoryplan/internal/adapters/http/middleware"
	"factoryplan/internal/application/orchestrators"
	"factoryplan/internal/application/projections"
	"factoryplan/internal/domain/access"
	"factoryplan/internal/domain/editstate"
	"factoryplan/internal/domain/matrix"
	"factoryplan/internal/domain/notification"
	"factoryplan/internal/domain/phase"
	"factoryplan/internal/domain/potential"
	"factoryplan/internal/domain/profile"
)

//go:embed templates/*.html
var templateFS embed.FS

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// previewRunes is how much of a long text is shown before "Show more".
const previewRunes = 160

// Messages shown on the login page.
const (
	msgMissingCredentials = "Please enter your username and password"
	msgSessionExpired     = "Your session has expired. Please log in again."
)

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealth)

	mux.HandleFunc("GET /login", handleLoginPage)
	mux.HandleFunc("POST /login", handleLogin)
	mux.HandleFunc("POST /logout", handleLogout)
	mux.Handle("POST /editing", withSession(handleToggleEditing))
	mux.Handle("GET /admin/perf", withSession(handleAdminPerf))

	// Phases
	mux.HandleFunc("GET /{$}", handleOverview)
	mux.HandleFunc("GET /phases/{id}", handlePhasePage)
	mux.Handle("POST /phases", withSession(handleSavePhase))
	mux.Handle("POST /phases/{id}", withSession(handleSavePhase))
	mux.Handle("GET /phases/{id}/delete", withSession(handleConfirmDeletePhase))
	mux.Handle("POST /phases/{id}/delete", withSession(handleDeletePhase))

	// Subphases
	mux.Handle("POST /phases/{id}/subphases", withSession(handleSaveSubphase))
	mux.Handle("GET /phases/{id}/subphases/{sid}/delete", withSession(handleConfirmDeleteSubphase))
	mux.Handle("POST /phases/{id}/subphases/{sid}/delete", withSession(handleDeleteSubphase))

	// Potentials
	mux.Handle("POST /phases/{id}/potentials", withSession(handleSavePotential))
	mux.Handle("POST /potentials/{id}/rating", withSession(handleRatePotential))
	mux.Handle("GET /potentials/{id}/delete", withSession(handleConfirmDeletePotential))
	mux.Handle("POST /potentials/{id}/delete", withSession(handleDeletePotential))
	mux.HandleFunc("GET /top-rated", handleTopRated)

	// Profile and product sections
	mux.Handle("POST /phases/{id}/profile/sections/{sid}", withSession(handleUpdateProfileSection))
	mux.HandleFunc("GET /product-development", handleProductPage)
	mux.Handle("POST /product-development/{sid}", withSession(handleUpdateProductSection))

	// Interface matrix
	mux.Handle("POST /phases/{id}/matrix", withSession(handleSaveMatrixCategory))
	mux.Handle("GET /matrix/categories/{cid}/delete", withSession(handleConfirmDeleteMatrixCategory))
	mux.Handle("POST /matrix/categories/{cid}/delete", withSession(handleDeleteMatrixCategory))
}

// withSession sends anonymous requests to the login page and hands the session to h.
func withSession(h func(http.ResponseWriter, *http.Request, middleware.Session)) http.Handler {
	return middleware.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.GetSessionFromContext(r.Context())
		h(w, r, sess)
	}))
}

// apiFor returns the backend services bound to the request's token, if any.
func apiFor(r *http.Request) *backend.API {
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		return backend.NewAPI(backendClient.WithToken(sess.Token))
	}
	return backend.NewAPI(backendClient)
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// --- Rendering ---

// layoutData is what layout.html needs besides the page.
type layoutData struct {
	LoggedIn bool
	Username string
	Access   access.Context
	Flash    notification.Flash
	Path     string
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	renderTemplateStatus(w, r, http.StatusOK, templateName, data)
}

// renderTemplateStatus renders templateName inside the layout. The pending
// flash of the session is consumed by this render.
func renderTemplateStatus(w http.ResponseWriter, r *http.Request, status int, templateName string, data any) {
	layout := layoutData{Path: r.URL.RequestURI()}
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		layout.LoggedIn = true
		layout.Username = sess.Username
		layout.Access = sess.Access()
		layout.Flash = sessions.TakeFlash(sess.ID)
	}

	funcMap := template.FuncMap{
		"layout":    func() layoutData { return layout },
		"csrfField": func() template.HTML { return csrf.TemplateField(r) },
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
		"isEditing":   editstate.IsEditing,
		"isNew":       editstate.IsNew,
		"isExpanded":  func(e editstate.Expanded, i int) bool { return e[i] },
		"preview":     preview,
		"isLong":      func(s string) bool { return utf8.RuneCountInString(s) > previewRunes },
		"stars":       func() []int { return []int{1, 2, 3, 4, 5} },
		"joinLines":   func(lines []string) string { return strings.Join(lines, "\n") },
		"stageDesc":   stageDesc,
		"matrixTypes": func() []matrix.CategoryType { return matrix.Types },
		"tabs":        func() []projections.Tab { return projections.Tabs },
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+templateName)
	if err != nil {
		internalError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func preview(s string) string {
	if utf8.RuneCountInString(s) <= previewRunes {
		return s
	}
	runes := []rune(s)
	return strings.TrimRightFunc(string(runes[:previewRunes]), unicode.IsSpace) + "…"
}

func stageDesc(no int) string {
	st, ok := phase.StageByNo(no)
	if !ok {
		return ""
	}
	return st.ShortDesc
}

// errorPage is rendered when a page cannot be fetched.
type errorPage struct {
	Message string
}

// renderFetchError handles a failed page fetch: a rejected token logs the
// user out, everything else is shown in place.
func renderFetchError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if errors.Is(err, backend.ErrUnauthorized) {
		expireSession(w, r)
		return
	}
	status := http.StatusBadGateway
	msg := backend.UserMessage(err, fallback)
	if errors.Is(err, projections.ErrPhaseNotFound) || backend.IsStatus(err, http.StatusNotFound) {
		status = http.StatusNotFound
		msg = "Phase not found"
	}
	slog.Warn("page_fetch_failed", "path", r.URL.Path, "status", status, "error", err)
	renderTemplateStatus(w, r, status, "error.html", errorPage{Message: msg})
}

// --- Mutations ---

// expireSession ends a session whose backend token was rejected.
// POST: Session deleted, cookie cleared, redirected to the login page
func expireSession(w http.ResponseWriter, r *http.Request) {
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		sessions.Delete(sess.ID)
		slog.Info("auth_event", "event", "session_expired", "username", sess.Username, "path", r.URL.Path)
	}
	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/login?expired=1", http.StatusSeeOther)
}

// userErrors are shown to the user as they are.
var userErrors = []error{
	access.ErrForbidden,
	phase.ErrInvalidPhaseNo, phase.ErrEmptyTitle, phase.ErrEmptyProfileInfo,
	phase.ErrEmptySubphaseName, phase.ErrMissingPhase, phase.ErrInvalidOrderNumber,
	potential.ErrEmptyTitle, potential.ErrEmptyCategory, potential.ErrEmptyDescription,
	potential.ErrMissingPhase, potential.ErrInvalidRating,
	profile.ErrEmptySectionTitle, profile.ErrEmptyContent,
	matrix.ErrInvalidType, matrix.ErrEmptyTitle, matrix.ErrMissingPhase, matrix.ErrTypeTaken,
	orchestrators.ErrSectionNotUpdated,
}

// errorMessage picks the notification text for a failed action: validation
// errors verbatim, otherwise the backend's message or fallback.
func errorMessage(err error, fallback string) string {
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return sentence(err.Error())
		}
	}
	return backend.UserMessage(err, fallback)
}

func sentence(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// finishMutation redirects after a form submission. On success the list view
// is shown again with a success notification; on failure the previous view
// is kept and an error notification explains why. A rejected token ends the
// session instead.
func finishMutation(w http.ResponseWriter, r *http.Request, sess middleware.Session, err error, success, fallback, done, back string) {
	switch {
	case err == nil:
		sessions.SetFlash(sess.ID, notification.Flash{Notification: ptr(notification.Success(success))})
		http.Redirect(w, r, done, http.StatusSeeOther)
		return
	case errors.Is(err, backend.ErrUnauthorized):
		expireSession(w, r)
		return
	case errors.Is(err, orchestrators.ErrNotConfirmed):
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	msg := errorMessage(err, fallback)
	slog.Info("content_event", "event", "mutation_failed", "path", r.URL.Path, "username", sess.Username, "message", msg, "error", err)
	sessions.SetFlash(sess.ID, notification.Flash{Notification: ptr(notification.Error(msg))})
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func ptr[T any](v T) *T {
	return &v
}

// --- Request helpers ---

// pathID parses a positive integer path value.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// formID parses an optional positive id form value; anything else is zero.
func formID(r *http.Request, name string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(r.FormValue(name)), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// formInt parses an integer form value; anything else is zero.
func formInt(r *http.Request, name string) int {
	n, err := strconv.Atoi(strings.TrimSpace(r.FormValue(name)))
	if err != nil {
		return 0
	}
	return n
}

// beginEdit is the `edit` query value that opens the form for id (zero for a
// new record) from state s. It is empty while another form is open.
func beginEdit(s editstate.State, id int64) string {
	if s == nil {
		s = editstate.Viewing{}
	}
	var (
		next editstate.State
		err  error
	)
	if id == 0 {
		next, err = editstate.BeginNew(s)
	} else {
		next, err = editstate.BeginEdit(s, id)
	}
	if err != nil {
		return ""
	}
	return editstate.Encode(next)
}

// editToken is the `edit` query value that reopens the form for id after a failed save.
func editToken(id int64) string {
	return beginEdit(editstate.Viewing{}, id)
}

// phaseURL links to a tab of a phase page, optionally with an open editor.
func phaseURL(phaseID int64, tab projections.Tab, edit string) string {
	q := url.Values{}
	q.Set("tab", string(tab))
	if edit != "" {
		q.Set("edit", edit)
	}
	return "/phases/" + strconv.FormatInt(phaseID, 10) + "?" + q.Encode()
}

// overviewURL links to the phase list, optionally with an open editor.
func overviewURL(edit string) string {
	if edit == "" {
		return "/"
	}
	return "/?edit=" + url.QueryEscape(edit)
}

// localPath accepts only same-site absolute paths for redirects.
func localPath(raw, fallback string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return fallback
	}
	return raw
}

// --- Delete confirmation ---

// confirmPage is the blocking "are you sure" prompt shown before a delete.
type confirmPage struct {
	Entity string
	Name   string
	Action string
	Cancel string
	Hidden map[string]string
}

// --- Session handlers ---

type loginPage struct {
	Username string
	Notice   *notification.Notification
	Dialog   *notification.Dialog
}

// handleLoginPage handles GET /login
func handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	var page loginPage
	if r.URL.Query().Get("expired") == "1" {
		page.Notice = ptr(notification.Error(msgSessionExpired))
	}
	renderTemplate(w, r, "login.html", page)
}

// handleLogin handles POST /login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	input := orchestrators.LoginInput{
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
	}
	page := loginPage{Username: strings.TrimSpace(input.Username)}

	result, err := orchestrators.ExecuteLogin(r.Context(), input, orchestrators.LoginDeps{
		Users: backend.NewAPI(backendClient).Users,
	})
	switch {
	case errors.Is(err, orchestrators.ErrMissingCredentials):
		page.Notice = ptr(notification.Error(msgMissingCredentials))
		renderTemplateStatus(w, r, http.StatusBadRequest, "login.html", page)
		return
	case err != nil:
		page.Notice = ptr(notification.Error(backend.UserMessage(err, notification.MsgServerError)))
		renderTemplateStatus(w, r, http.StatusUnauthorized, "login.html", page)
		return
	}

	id, err := sessions.Create(middleware.Session{
		Token:    result.Token,
		Username: result.Username,
		IsAdmin:  result.IsAdmin,
		Editing:  true,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, id)

	dialog := notification.SuccessDialog(notification.MsgLoggedIn, "/")
	page.Dialog = &dialog
	renderTemplate(w, r, "login.html", page)
}

// handleLogout handles POST /logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		sessions.Delete(sess.ID)
		slog.Info("auth_event", "event", "logout", "username", sess.Username)
	}
	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleToggleEditing handles POST /editing
func handleToggleEditing(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	editing, _ := sessions.ToggleEditing(sess.ID)
	slog.Debug("editing_toggled", "username", sess.Username, "editing", editing)
	http.Redirect(w, r, localPath(r.FormValue("back"), "/"), http.StatusSeeOther)
}

// maxPerfWindow bounds the ?minutes= window of /admin/perf.
const maxPerfWindow = 24 * time.Hour

// handleAdminPerf handles GET /admin/perf?minutes=15
func handleAdminPerf(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	if !sess.IsAdmin {
		slog.Warn("auth_denied", "path", r.URL.Path, "username", sess.Username, "required", "admin")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	minutes, err := strconv.Atoi(r.URL.Query().Get("minutes"))
	if err != nil || minutes <= 0 {
		minutes = 15
	}
	minutes = min(minutes, int(maxPerfWindow/time.Minute))
	snap := perfCollector.Snapshot(timeNow().Add(-time.Duration(minutes)*time.Minute), 10)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		slog.Warn("perf_encode_failed", "error", err)
	}
}
