package matrix

import (
	"errors"
	"strings"
)

// CategoryType is the fixed kind of a matrix entry.
type CategoryType string

// Category types. Outputs and outcomes describe what a phase hands on; the
// three influence kinds describe how it acts on other phases.
const (
	TypeOutputs           CategoryType = "outputs"
	TypeOutcomes          CategoryType = "outcomes"
	TypeDirectInfluence   CategoryType = "direct_influence"
	TypeIndirectInfluence CategoryType = "indirect_influence"
	TypeFeedbackLoop      CategoryType = "feedback_loop"
)

// Types lists the category types in display order.
var Types = []CategoryType{TypeOutputs, TypeOutcomes, TypeDirectInfluence, TypeIndirectInfluence, TypeFeedbackLoop}

// Legend holds the display label and colour for each category type.
var Legend = map[CategoryType]struct {
	Label string
	Color string
}{
	TypeOutputs:           {"Outputs", "#059669"},
	TypeOutcomes:          {"Outcomes", "#0D9488"},
	TypeDirectInfluence:   {"Direct Influence", "#10B981"},
	TypeIndirectInfluence: {"Indirect Influence", "#3B82F6"},
	TypeFeedbackLoop:      {"Feedback Loop", "#8B5CF6"},
}

// Domain errors
var (
	ErrInvalidType  = errors.New("category type must be one of: outputs, outcomes, direct_influence, indirect_influence, feedback_loop")
	ErrEmptyTitle   = errors.New("category title cannot be empty")
	ErrMissingPhase = errors.New("category must belong to a phase")
	ErrTypeTaken    = errors.New("this phase already has an entry of that category type")
)

// Valid reports whether t is one of the fixed types.
func (t CategoryType) Valid() bool {
	for _, v := range Types {
		if v == t {
			return true
		}
	}
	return false
}

// Label returns the human label for the type.
func (t CategoryType) Label() string {
	if l, ok := Legend[t]; ok {
		return l.Label
	}
	return string(t)
}

// Color returns the legend colour for the type.
func (t CategoryType) Color() string {
	if l, ok := Legend[t]; ok {
		return l.Color
	}
	return "#6B7280"
}

// Category is a fixed-type cross-phase relationship entry for one phase.
type Category struct {
	ID           int64        `json:"id"`
	PhaseID      int64        `json:"phase_id"`
	CategoryType CategoryType `json:"category_type"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	DetailText   string       `json:"detail_text"`
}

// Validate checks the required fields of a Category.
// PRE: Category is populated from the edit form
// POST: Returns nil if valid, error otherwise
func (c *Category) Validate() error {
	if !c.CategoryType.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(c.Title) == "" {
		return ErrEmptyTitle
	}
	if c.PhaseID <= 0 {
		return ErrMissingPhase
	}
	return nil
}

// Payload is the full-record body submitted on create and update.
type Payload struct {
	PhaseID      int64        `json:"phase_id"`
	CategoryType CategoryType `json:"category_type"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	DetailText   string       `json:"detail_text"`
}

// PayloadOf builds the submit body for a category.
func PayloadOf(c Category) Payload {
	return Payload{
		PhaseID:      c.PhaseID,
		CategoryType: c.CategoryType,
		Title:        c.Title,
		DetailText:   c.DetailText,
		Description:  c.Description,
	}
}

// Slot is one rendered row of the matrix: a type and the category occupying it, if any.
type Slot struct {
	Type     CategoryType
	Category *Category
}

// PickPerType reduces categories to at most one per type, in display order.
// The first category of a type wins; later duplicates and unknown types are dropped.
func PickPerType(categories []Category) []Slot {
	byType := make(map[CategoryType]*Category, len(Types))
	for i := range categories {
		c := &categories[i]
		if !c.CategoryType.Valid() {
			continue
		}
		if _, seen := byType[c.CategoryType]; !seen {
			byType[c.CategoryType] = c
		}
	}
	slots := make([]Slot, 0, len(Types))
	for _, t := range Types {
		slots = append(slots, Slot{Type: t, Category: byType[t]})
	}
	return slots
}

// Occupant returns the category shown in the slot of type t, or nil when the slot is empty.
func Occupant(categories []Category, t CategoryType) *Category {
	for _, s := range PickPerType(categories) {
		if s.Type == t {
			return s.Category
		}
	}
	return nil
}

// FirstFree returns the first type in display order without a category, or
// TypeOutputs when every slot is taken.
func FirstFree(slots []Slot) CategoryType {
	for _, s := range slots {
		if s.Category == nil {
			return s.Type
		}
	}
	return TypeOutputs
}
