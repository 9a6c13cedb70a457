package web

import (
	"net/http"
	"strconv"

	"factoryplan/internal/adapters/http/middleware"
	"factoryplan/internal/application/orchestrators"
	"factoryplan/internal/application/projections"
	"factoryplan/internal/domain/access"
	"factoryplan/internal/domain/editstate"
	"factoryplan/internal/domain/matrix"
	"factoryplan/internal/domain/notification"
	"factoryplan/internal/domain/profile"
)

// sectionUpdateFromForm reads the section editor. The reference line is only
// sent when the section has one (has_reference=1).
func sectionUpdateFromForm(r *http.Request) profile.SectionUpdate {
	u := profile.SectionUpdate{
		SectionTitle: r.FormValue("section_title"),
		Content:      r.FormValue("content"),
	}
	if r.FormValue("has_reference") == "1" {
		ref := r.FormValue("reference_text")
		u.ReferenceText = &ref
	}
	return u
}

// handleUpdateProfileSection handles POST /phases/{id}/profile/sections/{sid}
func handleUpdateProfileSection(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	phaseID, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	sectionID, ok := pathID(r, "sid")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	err := orchestrators.ExecuteUpdateProfileSection(r.Context(), orchestrators.UpdateSectionInput{
		Access:    sess.Access(),
		Actor:     sess.Username,
		PhaseID:   phaseID,
		SectionID: sectionID,
		Update:    sectionUpdateFromForm(r),
	}, orchestrators.UpdateProfileSectionDeps{
		Profiles: apiFor(r).Profiles,
		Notify:   contentNotifier(),
	})
	finishMutation(w, r, sess, err, notification.MsgSectionSaved, notification.MsgSaveFailed,
		phaseURL(phaseID, projections.TabProfile, ""),
		phaseURL(phaseID, projections.TabProfile, editToken(sectionID)))
}

// productPage is the product development overview.
type productPage struct {
	projections.ProductOverviewResult
}

// EditURL opens the editor of section id.
func (p productPage) EditURL(id int64) string {
	t := beginEdit(p.Edit, id)
	if t == "" {
		return ""
	}
	return "/product-development?edit=" + t
}

// handleProductPage handles GET /product-development?edit=
func handleProductPage(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryProductOverview(r.Context(), projections.ProductOverviewQuery{
		Access: middleware.AccessFromContext(r.Context()),
		Edit:   editstate.Parse(r.URL.Query().Get("edit")),
	}, projections.ProductOverviewDeps{
		Sections: apiFor(r).ProductSections,
	})
	if err != nil {
		renderFetchError(w, r, err, "Failed to load product development")
		return
	}
	renderTemplate(w, r, "product.html", productPage{result})
}

// handleUpdateProductSection handles POST /product-development/{sid}
func handleUpdateProductSection(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	sectionID, ok := pathID(r, "sid")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	err := orchestrators.ExecuteUpdateProductSection(r.Context(), orchestrators.UpdateSectionInput{
		Access:    sess.Access(),
		Actor:     sess.Username,
		SectionID: sectionID,
		Update:    sectionUpdateFromForm(r),
	}, orchestrators.UpdateProductSectionDeps{
		Sections: apiFor(r).ProductSections,
		Notify:   contentNotifier(),
	})
	finishMutation(w, r, sess, err, notification.MsgSectionSaved, notification.MsgSaveFailed,
		"/product-development", "/product-development?edit="+editToken(sectionID))
}

// --- Interface matrix ---

// handleSaveMatrixCategory handles POST /phases/{id}/matrix (id form field set for updates)
func handleSaveMatrixCategory(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
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
	c := matrix.Category{
		ID:           id,
		PhaseID:      phaseID,
		CategoryType: matrix.CategoryType(r.FormValue("category_type")),
		Title:        r.FormValue("title"),
		Description:  r.FormValue("description"),
		DetailText:   r.FormValue("detail_text"),
	}
	res, err := orchestrators.ExecuteSaveMatrixCategory(r.Context(), orchestrators.SaveMatrixCategoryInput{
		Access:   sess.Access(),
		Actor:    sess.Username,
		Category: c,
	}, orchestrators.SaveMatrixCategoryDeps{
		Matrix: apiFor(r).Matrix,
		Notify: contentNotifier(),
	})
	finishMutation(w, r, sess, err, res.Message(), notification.MsgSaveFailed,
		phaseURL(phaseID, projections.TabMatrix, ""),
		phaseURL(phaseID, projections.TabMatrix, editToken(id)))
}

// handleConfirmDeleteMatrixCategory handles GET /matrix/categories/{cid}/delete?phase=&title=
func handleConfirmDeleteMatrixCategory(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	id, ok := pathID(r, "cid")
	if !ok {
		http.NotFound(w, r)
		return
	}
	phaseID := formID(r, "phase")
	back := matrixURL(phaseID)
	if !requireLevel(w, r, sess, access.LevelAdmin, back) {
		return
	}
	title := r.URL.Query().Get("title")
	renderTemplate(w, r, "confirm_delete.html", confirmPage{
		Entity: "matrix category",
		Name:   title,
		Action: "/matrix/categories/" + strconv.FormatInt(id, 10) + "/delete",
		Cancel: back,
		Hidden: map[string]string{
			"phase": strconv.FormatInt(phaseID, 10),
			"title": title,
		},
	})
}

// handleDeleteMatrixCategory handles POST /matrix/categories/{cid}/delete (confirm=yes)
func handleDeleteMatrixCategory(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	id, ok := pathID(r, "cid")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	phaseID := formID(r, "phase")
	err := orchestrators.ExecuteDeleteMatrixCategory(r.Context(), orchestrators.DeleteInput{
		Access:    sess.Access(),
		Actor:     sess.Username,
		ID:        id,
		PhaseID:   phaseID,
		Title:     r.FormValue("title"),
		Confirmed: r.FormValue("confirm") == "yes",
	}, orchestrators.DeleteMatrixCategoryDeps{
		Matrix: apiFor(r).Matrix,
		Notify: contentNotifier(),
	})
	back := matrixURL(phaseID)
	finishMutation(w, r, sess, err, notification.MsgDeleted, notification.MsgDeleteFailed, back, back)
}

func matrixURL(phaseID int64) string {
	if phaseID <= 0 {
		return "/"
	}
	return phaseURL(phaseID, projections.TabMatrix, "")
}
