package phase

import (
	"errors"
	"strconv"
	"strings"
)

// StageCount is the number of planning stages in the factory planning lifecycle.
const StageCount = 7

// Domain errors
var (
	ErrInvalidPhaseNo     = errors.New("phase number must be between 1 and 7")
	ErrEmptyTitle         = errors.New("phase title cannot be empty")
	ErrEmptyProfileInfo   = errors.New("phase profile info cannot be empty")
	ErrEmptySubphaseName  = errors.New("please enter a name for the subphase")
	ErrMissingPhase       = errors.New("subphase must belong to a phase")
	ErrInvalidOrderNumber = errors.New("subphase order number must be positive")
)

// Phase is one stage of the factory planning lifecycle.
type Phase struct {
	ID          int64  `json:"id"`
	PhaseNo     int    `json:"phaseNo"`
	Title       string `json:"title"`
	ProfileInfo string `json:"profile_info"`
}

// Validate checks the required fields of a Phase.
// PRE: Phase struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Phase) Validate() error {
	if p.PhaseNo < 1 || p.PhaseNo > StageCount {
		return ErrInvalidPhaseNo
	}
	if strings.TrimSpace(p.Title) == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(p.ProfileInfo) == "" {
		return ErrEmptyProfileInfo
	}
	return nil
}

// Label returns the display label, e.g. "Phase 4: Detailed planning".
func (p Phase) Label() string {
	if p.Title == "" {
		return "Phase " + strconv.Itoa(p.PhaseNo)
	}
	return "Phase " + strconv.Itoa(p.PhaseNo) + ": " + p.Title
}

// Subphase is a named work package ("LP") inside a phase with a list of detail lines.
type Subphase struct {
	ID          int64    `json:"id"`
	PhaseID     int64    `json:"phase_id"`
	Name        string   `json:"name"`
	Details     []string `json:"details"`
	OrderNumber int      `json:"orderNumber"`
}

// Validate checks the required fields of a Subphase.
// PRE: Subphase struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Subphase) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptySubphaseName
	}
	if s.PhaseID <= 0 {
		return ErrMissingPhase
	}
	if s.OrderNumber < 0 {
		return ErrInvalidOrderNumber
	}
	return nil
}

// CleanDetails drops blank detail lines and trims the rest.
// POST: Details contains only non-empty, trimmed entries (never nil)
func (s *Subphase) CleanDetails() {
	out := make([]string, 0, len(s.Details))
	for _, d := range s.Details {
		if d = strings.TrimSpace(d); d != "" {
			out = append(out, d)
		}
	}
	s.Details = out
}

// Stage describes one of the seven canonical planning stages.
type Stage struct {
	No        int
	Name      string
	ShortDesc string
}

// Stages lists the canonical planning stages in lifecycle order.
var Stages = []Stage{
	{1, "Setting of objectives", "Strategic planning and goal definition"},
	{2, "Establishment of product basis", "Product requirements and specifications"},
	{3, "Concept planning", "Layout and process conceptualization"},
	{4, "Detailed planning", "Technical specifications and implementation"},
	{5, "Preparation for realization", "Implementation readiness"},
	{6, "Monitoring of realization", "Execution oversight"},
	{7, "Ramp-up support", "Production stabilization"},
}

// StageByNo returns the canonical stage for a phase number.
func StageByNo(no int) (Stage, bool) {
	if no < 1 || no > len(Stages) {
		return Stage{}, false
	}
	return Stages[no-1], true
}
