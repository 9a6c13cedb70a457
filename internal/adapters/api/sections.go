package api

import (
	"net/http"
	"strings"

	"factoryplan/internal/domain/matrix"
	"factoryplan/internal/domain/profile"
)

type profileResponse struct {
	Sections []profile.Section `json:"sections"`
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	sections, err := s.stores.Profiles.ListSections(r.Context(), id)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{Sections: sections})
}

// decodeSectionUpdate reads and validates a section PATCH body.
func decodeSectionUpdate(w http.ResponseWriter, r *http.Request) (profile.SectionUpdate, bool) {
	var u profile.SectionUpdate
	if !strictDecode(w, r, &u) {
		return u, false
	}
	u.SectionTitle = strings.TrimSpace(u.SectionTitle)
	if err := u.Validate(); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return u, false
	}
	return u, true
}

func (s *Server) handleUpdateProfileSection(w http.ResponseWriter, r *http.Request) {
	phaseID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	id, ok := pathID(w, r, "sid")
	if !ok {
		return
	}
	u, ok := decodeSectionUpdate(w, r)
	if !ok {
		return
	}
	if err := s.stores.Profiles.UpdateSection(r.Context(), phaseID, id, u); err != nil {
		storeError(w, err, "Section not found")
		return
	}
	writeMessage(w, http.StatusOK, profile.UpdatedMessage)
}

func (s *Server) handleListProductSections(w http.ResponseWriter, r *http.Request) {
	sections, err := s.stores.Profiles.ListProductSections(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sections)
}

func (s *Server) handleUpdateProductSection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	u, ok := decodeSectionUpdate(w, r)
	if !ok {
		return
	}
	if err := s.stores.Profiles.UpdateProductSection(r.Context(), id, u); err != nil {
		storeError(w, err, "Section not found")
		return
	}
	writeMessage(w, http.StatusOK, profile.UpdatedMessage)
}

func (s *Server) handleMatrixForPhase(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	cats, err := s.stores.Matrix.ListByPhase(r.Context(), id)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleCategoryTitles(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	titles, err := s.stores.Matrix.Titles(r.Context(), id)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, titles)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req matrix.Payload
	if !strictDecode(w, r, &req) {
		return
	}
	s.saveCategory(w, r, 0, req, http.StatusCreated)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req matrix.Payload
	if !strictDecode(w, r, &req) {
		return
	}
	s.saveCategory(w, r, id, req, http.StatusOK)
}

func (s *Server) saveCategory(w http.ResponseWriter, r *http.Request, id int64, req matrix.Payload, status int) {
	c := matrix.Category{
		ID:           id,
		PhaseID:      req.PhaseID,
		CategoryType: req.CategoryType,
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		DetailText:   req.DetailText,
	}
	if err := c.Validate(); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.phaseExists(w, r, c.PhaseID) {
		return
	}
	newID, err := s.stores.Matrix.Save(r.Context(), c)
	if err != nil {
		storeError(w, err, "Category not found")
		return
	}
	c.ID = newID
	writeJSON(w, status, c)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.stores.Matrix.Delete(r.Context(), id); err != nil {
		storeError(w, err, "Category not found")
		return
	}
	writeMessage(w, http.StatusOK, "Category deleted successfully")
}
