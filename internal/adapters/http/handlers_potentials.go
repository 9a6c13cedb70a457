package web

import (
	"net/http"
	"net/url"
	"strconv"

	"factoryplan/internal/adapters/http/middleware"
	"factoryplan/internal/application/orchestrators"
	"factoryplan/internal/application/projections"
	"factoryplan/internal/domain/access"
	"factoryplan/internal/domain/notification"
	"factoryplan/internal/domain/potential"
)

// potentialsURL is the potentials tab of phaseID, or the top-rated page when the phase is unknown.
func potentialsURL(phaseID int64, edit string) string {
	if phaseID <= 0 {
		return "/top-rated"
	}
	return phaseURL(phaseID, projections.TabPotentials, edit)
}

// handleSavePotential handles POST /phases/{id}/potentials (id form field set for updates)
func handleSavePotential(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
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
	p := potential.Potential{
		ID:          id,
		PhaseID:     phaseID,
		Category:    r.FormValue("category"),
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
	}
	res, err := orchestrators.ExecuteSavePotential(r.Context(), orchestrators.SavePotentialInput{
		Access:    sess.Access(),
		Actor:     sess.Username,
		Potential: p,
	}, orchestrators.SavePotentialDeps{
		Potentials: apiFor(r).Potentials,
		Notify:     contentNotifier(),
	})
	finishMutation(w, r, sess, err, res.Message(), notification.MsgSaveFailed,
		potentialsURL(phaseID, ""), potentialsURL(phaseID, editToken(id)))
}

// handleRatePotential handles POST /potentials/{id}/rating (rating=1..5, phase=)
func handleRatePotential(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	phaseID := formID(r, "phase")
	err := orchestrators.ExecuteRatePotential(r.Context(), orchestrators.RatePotentialInput{
		Access:  sess.Access(),
		Actor:   sess.Username,
		ID:      id,
		PhaseID: phaseID,
		Rating:  formInt(r, "rating"),
	}, orchestrators.RatePotentialDeps{
		Potentials: apiFor(r).Potentials,
		Notify:     contentNotifier(),
	})
	back := localPath(r.FormValue("back"), potentialsURL(phaseID, ""))
	finishMutation(w, r, sess, err, notification.MsgRated, notification.MsgRateFailed, back, back)
}

// handleConfirmDeletePotential handles GET /potentials/{id}/delete?phase=&title=
func handleConfirmDeletePotential(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	phaseID := formID(r, "phase")
	back := potentialsURL(phaseID, "")
	if !requireLevel(w, r, sess, access.LevelAdmin, back) {
		return
	}
	renderTemplate(w, r, "confirm_delete.html", confirmPage{
		Entity: "potential",
		Name:   q.Get("title"),
		Action: "/potentials/" + strconv.FormatInt(id, 10) + "/delete",
		Cancel: back,
		Hidden: map[string]string{
			"phase": strconv.FormatInt(phaseID, 10),
			"title": q.Get("title"),
		},
	})
}

// handleDeletePotential handles POST /potentials/{id}/delete (confirm=yes)
func handleDeletePotential(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	phaseID := formID(r, "phase")
	err := orchestrators.ExecuteDeletePotential(r.Context(), orchestrators.DeleteInput{
		Access:    sess.Access(),
		Actor:     sess.Username,
		ID:        id,
		PhaseID:   phaseID,
		Title:     r.FormValue("title"),
		Confirmed: r.FormValue("confirm") == "yes",
	}, orchestrators.DeletePotentialDeps{
		Potentials: apiFor(r).Potentials,
		Notify:     contentNotifier(),
	})
	back := potentialsURL(phaseID, "")
	finishMutation(w, r, sess, err, notification.MsgDeleted, notification.MsgDeleteFailed, back, back)
}

// topRatedPage is the cross-phase ranking.
type topRatedPage struct {
	projections.TopRatedResult
	CanRate bool
}

// DeleteURL links to the delete prompt of p.
func (topRatedPage) DeleteURL(p potential.Potential) string {
	q := url.Values{}
	q.Set("phase", strconv.FormatInt(p.PhaseID, 10))
	q.Set("title", p.Title)
	return "/potentials/" + strconv.FormatInt(p.ID, 10) + "/delete?" + q.Encode()
}

// handleTopRated handles GET /top-rated
func handleTopRated(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryTopRated(r.Context(), projections.TopRatedDeps{
		Potentials: apiFor(r).Potentials,
	})
	if err != nil {
		renderFetchError(w, r, err, "Failed to load potentials")
		return
	}
	renderTemplate(w, r, "top_rated.html", topRatedPage{
		TopRatedResult: result,
		CanRate:        middleware.AccessFromContext(r.Context()).Allows(access.LevelAdmin),
	})
}
