package potential

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Rating bounds. A zero or nil rating means "not rated yet".
const (
	MinRating = 0
	MaxRating = 5
)

// Domain errors
var (
	ErrEmptyTitle       = errors.New("potential title cannot be empty")
	ErrEmptyCategory    = errors.New("potential category cannot be empty")
	ErrEmptyDescription = errors.New("potential description cannot be empty")
	ErrMissingPhase     = errors.New("potential must belong to a phase")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
)

// Potential is a rated AI opportunity attached to a phase.
// PhaseNo and PhaseTitle are only populated by the top-rated listing.
type Potential struct {
	ID          int64  `json:"id"`
	PhaseID     int64  `json:"phaseId"`
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Rating      *int   `json:"rating"`
	PhaseNo     int    `json:"phaseNo,omitempty"`
	PhaseTitle  string `json:"phaseTitle,omitempty"`
}

// Validate checks the required fields of a Potential.
// PRE: Potential is populated from the edit form
// POST: Returns nil if valid, error otherwise
func (p *Potential) Validate() error {
	if strings.TrimSpace(p.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(p.Title) == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(p.Description) == "" {
		return ErrEmptyDescription
	}
	if p.PhaseID <= 0 {
		return ErrMissingPhase
	}
	if p.Rating != nil && (*p.Rating < MinRating || *p.Rating > MaxRating) {
		return ErrInvalidRating
	}
	return nil
}

// Stars returns the rating as a 0..5 value for display.
func (p Potential) Stars() int {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}

// PhaseLabel renders the phase reference shown in the top-rated listing.
// Returns "" when neither the phase number nor title are known.
func (p Potential) PhaseLabel() string {
	switch {
	case p.PhaseNo != 0 && p.PhaseTitle != "":
		return fmt.Sprintf("Phase %d: %s", p.PhaseNo, p.PhaseTitle)
	case p.PhaseNo != 0:
		return fmt.Sprintf("Phase %d", p.PhaseNo)
	case p.PhaseTitle != "":
		return fmt.Sprintf("Phase ID: %d", p.PhaseID)
	}
	return ""
}

// ValidateRating checks a star value submitted from the rating control.
func ValidateRating(r int) error {
	if r < 1 || r > MaxRating {
		return ErrInvalidRating
	}
	return nil
}

// SortTopRated orders potentials by rating descending with unrated entries last.
// The sort is stable so equal ratings keep backend order.
func SortTopRated(ps []Potential) []Potential {
	out := make([]Potential, len(ps))
	copy(out, ps)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Rating, out[j].Rating
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return *a > *b
	})
	return out
}

// Payload is the full-record body submitted on create and update.
type Payload struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
	PhaseID     int64  `json:"phaseId"`
}

// PayloadOf builds the submit body for a potential.
func PayloadOf(p Potential) Payload {
	return Payload{
		Title:       p.Title,
		Category:    p.Category,
		Description: p.Description,
		PhaseID:     p.PhaseID,
	}
}
