package api

import (
	"net/http"
	"strings"

	"factoryplan/internal/domain/phase"
	"factoryplan/internal/domain/potential"
)

type phaseRequest struct {
	PhaseNo     int    `json:"phaseNo"`
	Title       string `json:"title"`
	ProfileInfo string `json:"profile_info"`
}

func (req phaseRequest) phase(id int64) phase.Phase {
	return phase.Phase{
		ID:          id,
		PhaseNo:     req.PhaseNo,
		Title:       strings.TrimSpace(req.Title),
		ProfileInfo: strings.TrimSpace(req.ProfileInfo),
	}
}

func (s *Server) handleListPhases(w http.ResponseWriter, r *http.Request) {
	phases, err := s.stores.Phases.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, phases)
}

func (s *Server) handleGetPhase(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := s.stores.Phases.GetByID(r.Context(), id)
	if err != nil {
		storeError(w, err, "Phase not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCreatePhase(w http.ResponseWriter, r *http.Request) {
	var req phaseRequest
	if !strictDecode(w, r, &req) {
		return
	}
	s.savePhase(w, r, req.phase(0), http.StatusCreated)
}

func (s *Server) handleUpdatePhase(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req phaseRequest
	if !strictDecode(w, r, &req) {
		return
	}
	s.savePhase(w, r, req.phase(id), http.StatusOK)
}

func (s *Server) savePhase(w http.ResponseWriter, r *http.Request, p phase.Phase, status int) {
	if err := p.Validate(); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := s.stores.Phases.Save(r.Context(), p)
	if err != nil {
		storeError(w, err, "Phase not found")
		return
	}
	p.ID = id
	writeJSON(w, status, p)
}

func (s *Server) handleDeletePhase(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.stores.Phases.Delete(r.Context(), id); err != nil {
		storeError(w, err, "Phase not found")
		return
	}
	writeMessage(w, http.StatusOK, "Phase deleted successfully")
}

type subphaseRequest struct {
	Name        string   `json:"name"`
	Details     []string `json:"details"`
	OrderNumber int      `json:"orderNumber"`
}

func (s *Server) handleListSubphases(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	subs, err := s.stores.Phases.ListSubphases(r.Context(), id)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (s *Server) handleCreateSubphase(w http.ResponseWriter, r *http.Request) {
	s.saveSubphase(w, r, false)
}

func (s *Server) handleUpdateSubphase(w http.ResponseWriter, r *http.Request) {
	s.saveSubphase(w, r, true)
}

func (s *Server) saveSubphase(w http.ResponseWriter, r *http.Request, existing bool) {
	phaseID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var id int64
	if existing {
		if id, ok = pathID(w, r, "sid"); !ok {
			return
		}
	}
	var req subphaseRequest
	if !strictDecode(w, r, &req) {
		return
	}
	if !s.phaseExists(w, r, phaseID) {
		return
	}

	sp := phase.Subphase{ID: id, PhaseID: phaseID, Name: strings.TrimSpace(req.Name), Details: req.Details, OrderNumber: req.OrderNumber}
	sp.CleanDetails()
	if err := sp.Validate(); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	newID, err := s.stores.Phases.SaveSubphase(r.Context(), sp)
	if err != nil {
		storeError(w, err, "Subphase not found")
		return
	}
	sp.ID = newID
	status := http.StatusOK
	if !existing {
		status = http.StatusCreated
	}
	writeJSON(w, status, sp)
}

func (s *Server) handleDeleteSubphase(w http.ResponseWriter, r *http.Request) {
	phaseID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	id, ok := pathID(w, r, "sid")
	if !ok {
		return
	}
	if err := s.stores.Phases.DeleteSubphase(r.Context(), phaseID, id); err != nil {
		storeError(w, err, "Subphase not found")
		return
	}
	writeMessage(w, http.StatusOK, "Subphase deleted successfully")
}

// phaseExists answers 404 when the phase is unknown.
func (s *Server) phaseExists(w http.ResponseWriter, r *http.Request, id int64) bool {
	if _, err := s.stores.Phases.GetByID(r.Context(), id); err != nil {
		storeError(w, err, "Phase not found")
		return false
	}
	return true
}

func (s *Server) handleListPotentials(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "phaseId")
	if !ok {
		return
	}
	ps, err := s.stores.Potentials.ListByPhase(r.Context(), id)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (s *Server) handleTopRated(w http.ResponseWriter, r *http.Request) {
	ps, err := s.stores.Potentials.TopRated(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (s *Server) handleCreatePotential(w http.ResponseWriter, r *http.Request) {
	var req potential.Payload
	if !strictDecode(w, r, &req) {
		return
	}
	s.savePotential(w, r, 0, req, http.StatusCreated)
}

func (s *Server) handleUpdatePotential(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req potential.Payload
	if !strictDecode(w, r, &req) {
		return
	}
	s.savePotential(w, r, id, req, http.StatusOK)
}

func (s *Server) savePotential(w http.ResponseWriter, r *http.Request, id int64, req potential.Payload, status int) {
	p := potential.Potential{
		ID:          id,
		PhaseID:     req.PhaseID,
		Category:    strings.TrimSpace(req.Category),
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
	}
	if err := p.Validate(); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.phaseExists(w, r, p.PhaseID) {
		return
	}
	newID, err := s.stores.Potentials.Save(r.Context(), p)
	if err != nil {
		storeError(w, err, "Potential not found")
		return
	}
	saved, err := s.stores.Potentials.GetByID(r.Context(), newID)
	if err != nil {
		storeError(w, err, "Potential not found")
		return
	}
	writeJSON(w, status, saved)
}

func (s *Server) handleDeletePotential(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.stores.Potentials.Delete(r.Context(), id); err != nil {
		storeError(w, err, "Potential not found")
		return
	}
	writeMessage(w, http.StatusOK, "Potential deleted successfully")
}

type ratingRequest struct {
	Rating int `json:"rating"`
}

func (s *Server) handleRatePotential(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req ratingRequest
	if !strictDecode(w, r, &req) {
		return
	}
	if err := potential.ValidateRating(req.Rating); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.stores.Potentials.Rate(r.Context(), id, req.Rating); err != nil {
		storeError(w, err, "Potential not found")
		return
	}
	writeMessage(w, http.StatusOK, "Rating updated successfully")
}
