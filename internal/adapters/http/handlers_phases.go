package web

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"factoryplan/internal/adapters/http/middleware"
	"factoryplan/internal/application/orchestrators"
	"factoryplan/internal/application/projections"
	"factoryplan/internal/domain/access"
	"factoryplan/internal/domain/editstate"
	"factoryplan/internal/domain/matrix"
	"factoryplan/internal/domain/notification"
	"factoryplan/internal/domain/phase"
	"factoryplan/internal/domain/potential"
)

// handleOverview handles GET /?edit= (phase list)
func handleOverview(w http.ResponseWriter, r *http.Request) {
	api := apiFor(r)
	result, err := projections.QueryPhaseOverview(r.Context(), projections.PhaseOverviewQuery{
		Access: middleware.AccessFromContext(r.Context()),
		Edit:   editstate.Parse(r.URL.Query().Get("edit")),
	}, projections.PhaseOverviewDeps{Phases: api.Phases})
	if err != nil {
		renderFetchError(w, r, err, "Failed to load phases")
		return
	}
	renderTemplate(w, r, "overview.html", overviewPage{result})
}

// overviewPage is the phase list.
type overviewPage struct {
	projections.PhaseOverviewResult
}

// EditURL opens the phase editor for id (zero opens the add form).
// It is empty while another form is open.
func (o overviewPage) EditURL(id int64) string {
	t := beginEdit(o.Edit, id)
	if t == "" {
		return ""
	}
	return overviewURL(t)
}

// NewPhase prefills the add form.
func (o overviewPage) NewPhase() phase.Phase {
	return phase.Phase{PhaseNo: o.NextPhaseNo}
}

// DeleteURL links to the delete prompt of p.
func (overviewPage) DeleteURL(p phase.Phase) string {
	return "/phases/" + strconv.FormatInt(p.ID, 10) + "/delete"
}

// phasePage is the phase view: the projection plus the links the tabs need.
type phasePage struct {
	projections.PhasePageResult
	EditToken string
	Expand    string
}

// TabURL links to another tab of the same phase.
func (p phasePage) TabURL(tab projections.Tab) string {
	return phaseURL(p.Phase.ID, tab, "")
}

// EditURL opens the editor for id on the current tab (zero opens the add form).
// It is empty while another form is open.
func (p phasePage) EditURL(id int64) string {
	t := beginEdit(p.Edit, id)
	if t == "" {
		return ""
	}
	return phaseURL(p.Phase.ID, p.Tab, t)
}

// CancelURL closes any open editor.
func (p phasePage) CancelURL() string {
	return phaseURL(p.Phase.ID, p.Tab, editstate.Encode(editstate.Finish(p.Edit)))
}

// ExpandURL flips the expanded state of list entry i.
func (p phasePage) ExpandURL(i int) string {
	u := phaseURL(p.Phase.ID, p.Tab, p.EditToken)
	if e := p.Expanded.Toggle(i).Encode(); e != "" {
		u += "&expand=" + e
	}
	return u
}

// NewPotential, NewSubphase and NewCategory prefill the add forms of the tabs.
func (p phasePage) NewPotential() potential.Potential {
	return potential.Potential{PhaseID: p.Phase.ID}
}

func (p phasePage) NewSubphase() phase.Subphase {
	return phase.Subphase{PhaseID: p.Phase.ID}
}

func (p phasePage) NewCategory() matrix.Category {
	c := matrix.Category{PhaseID: p.Phase.ID, CategoryType: matrix.TypeOutputs}
	if p.Matrix != nil {
		c.CategoryType = matrix.FirstFree(p.Matrix.Slots)
	}
	return c
}

// DeletePotentialURL links to the delete prompt of a potential of this phase.
func (p phasePage) DeletePotentialURL(pt potential.Potential) string {
	return topRatedPage{}.DeleteURL(pt)
}

// DeleteSubphaseURL links to the delete prompt of a subphase.
func (p phasePage) DeleteSubphaseURL(s phase.Subphase) string {
	return "/phases/" + strconv.FormatInt(p.Phase.ID, 10) + "/subphases/" + strconv.FormatInt(s.ID, 10) +
		"/delete?title=" + url.QueryEscape(s.Name)
}

// DeleteCategoryURL links to the delete prompt of a matrix category.
func (p phasePage) DeleteCategoryURL(c *matrix.Category) string {
	q := url.Values{}
	q.Set("phase", strconv.FormatInt(p.Phase.ID, 10))
	q.Set("title", c.Title)
	return "/matrix/categories/" + strconv.FormatInt(c.ID, 10) + "/delete?" + q.Encode()
}

// handlePhasePage handles GET /phases/{id}?tab=&edit=&expand=
func handlePhasePage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	api := apiFor(r)
	result, err := projections.QueryPhasePage(r.Context(), projections.PhasePageQuery{
		PhaseID:  id,
		Tab:      projections.ParseTab(q.Get("tab")),
		Access:   middleware.AccessFromContext(r.Context()),
		Edit:     editstate.Parse(q.Get("edit")),
		Expanded: editstate.ParseExpanded(q.Get("expand")),
	}, projections.PhasePageDeps{
		Phases:     api.Phases,
		Subphases:  api.Subphases,
		Potentials: api.Potentials,
		Profiles:   api.Profiles,
		Matrix:     api.Matrix,
	})
	if err != nil {
		renderFetchError(w, r, err, "Failed to load phase")
		return
	}
	renderTemplate(w, r, "phase.html", phasePage{
		PhasePageResult: result,
		EditToken:       editstate.Encode(result.Edit),
		Expand:          result.Expanded.Encode(),
	})
}

// handleSavePhase handles POST /phases and POST /phases/{id}
func handleSavePhase(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	var id int64
	if r.PathValue("id") != "" {
		var ok bool
		if id, ok = pathID(r, "id"); !ok {
			http.NotFound(w, r)
			return
		}
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	p := phase.Phase{
		ID:          id,
		PhaseNo:     formInt(r, "phaseNo"),
		Title:       r.FormValue("title"),
		ProfileInfo: r.FormValue("profile_info"),
	}
	res, err := orchestrators.ExecuteSavePhase(r.Context(), orchestrators.SavePhaseInput{
		Access: sess.Access(),
		Actor:  sess.Username,
		Phase:  p,
	}, orchestrators.SavePhaseDeps{
		Phases: apiFor(r).Phases,
		Notify: contentNotifier(),
	})
	finishMutation(w, r, sess, err, res.Message(), notification.MsgSaveFailed, overviewURL(""), overviewURL(editToken(id)))
}

// handleConfirmDeletePhase handles GET /phases/{id}/delete
func handleConfirmDeletePhase(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if !requireLevel(w, r, sess, access.LevelAdmin, "/") {
		return
	}
	p, err := apiFor(r).Phases.Get(r.Context(), id)
	if err != nil {
		renderFetchError(w, r, err, "Failed to load phase")
		return
	}
	renderTemplate(w, r, "confirm_delete.html", confirmPage{
		Entity: "phase",
		Name:   p.Title,
		Action: "/phases/" + strconv.FormatInt(id, 10) + "/delete",
		Cancel: "/",
		Hidden: map[string]string{"title": p.Title},
	})
}

// handleDeletePhase handles POST /phases/{id}/delete (confirm=yes)
func handleDeletePhase(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	err := orchestrators.ExecuteDeletePhase(r.Context(), orchestrators.DeleteInput{
		Access:    sess.Access(),
		Actor:     sess.Username,
		ID:        id,
		PhaseID:   id,
		Title:     r.FormValue("title"),
		Confirmed: r.FormValue("confirm") == "yes",
	}, orchestrators.DeletePhaseDeps{
		Phases: apiFor(r).Phases,
		Notify: contentNotifier(),
	})
	finishMutation(w, r, sess, err, notification.MsgDeleted, notification.MsgDeleteFailed, "/", "/")
}

// requireLevel flashes ErrForbidden and redirects to back unless the session may edit at level.
func requireLevel(w http.ResponseWriter, r *http.Request, sess middleware.Session, level access.Level, back string) bool {
	if err := sess.Access().Require(level); err != nil {
		finishMutation(w, r, sess, err, "", notification.MsgDeleteFailed, back, back)
		return false
	}
	return true
}

// --- Subphases ---

// handleSaveSubphase handles POST /phases/{id}/subphases (id form field set for updates)
func handleSaveSubphase(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	phaseID, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	id := formID(r, "id")
	s := phase.Subphase{
		ID:          id,
		PhaseID:     phaseID,
		Name:        r.FormValue("name"),
		Details:     strings.Split(strings.ReplaceAll(r.FormValue("details"), "\r\n", "\n"), "\n"),
		OrderNumber: formInt(r, "orderNumber"),
	}
	res, err := orchestrators.ExecuteSaveSubphase(r.Context(), orchestrators.SaveSubphaseInput{
		Access:   sess.Access(),
		Actor:    sess.Username,
		Subphase: s,
	}, orchestrators.SaveSubphaseDeps{
		Subphases: apiFor(r).Subphases,
		Notify:    contentNotifier(),
	})
	finishMutation(w, r, sess, err, res.Message(), notification.MsgSaveFailed,
		phaseURL(phaseID, projections.TabSubphases, ""),
		phaseURL(phaseID, projections.TabSubphases, editToken(id)))
}

// handleConfirmDeleteSubphase handles GET /phases/{id}/subphases/{sid}/delete
func handleConfirmDeleteSubphase(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	phaseID, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	id, ok := pathID(r, "sid")
	if !ok {
		http.NotFound(w, r)
		return
	}
	back := phaseURL(phaseID, projections.TabSubphases, "")
	if !requireLevel(w, r, sess, access.LevelEditor, back) {
		return
	}
	title := r.URL.Query().Get("title")
	renderTemplate(w, r, "confirm_delete.html", confirmPage{
		Entity: "subphase",
		Name:   title,
		Action: "/phases/" + strconv.FormatInt(phaseID, 10) + "/subphases/" + strconv.FormatInt(id, 10) + "/delete",
		Cancel: back,
		Hidden: map[string]string{"title": title},
	})
}

// handleDeleteSubphase handles POST /phases/{id}/subphases/{sid}/delete (confirm=yes)
func handleDeleteSubphase(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	phaseID, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	id, ok := pathID(r, "sid")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	err := orchestrators.ExecuteDeleteSubphase(r.Context(), orchestrators.DeleteInput{
		Access:    sess.Access(),
		Actor:     sess.Username,
		ID:        id,
		PhaseID:   phaseID,
		Title:     r.FormValue("title"),
		Confirmed: r.FormValue("confirm") == "yes",
	}, orchestrators.DeleteSubphaseDeps{
		Subphases: apiFor(r).Subphases,
		Notify:    contentNotifier(),
	})
	back := phaseURL(phaseID, projections.TabSubphases, "")
	finishMutation(w, r, sess, err, notification.MsgDeleted, notification.MsgDeleteFailed, back, back)
}
