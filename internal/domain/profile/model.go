package profile

import (
	"errors"
	"fmt"
	"strings"
)

// UpdatedMessage is the acknowledgement the backend returns for a successful section update.
const UpdatedMessage = "Section updated successfully"

// DefaultIcon is rendered when a section names an icon that is not in the allowlist.
const DefaultIcon = "FileText"

// defaultProfileTitle is used when a phase profile has no sections to borrow a title from.
const defaultProfileTitle = "Detailed Planning"

// Domain errors
var (
	ErrEmptySectionTitle = errors.New("section title cannot be empty")
	ErrEmptyContent      = errors.New("section content cannot be empty")
)

// Icons is the union of icon names used by phase profiles and the product development overview.
var Icons = []string{
	"FileText", "Users", "Cloud", "Wrench", "Link2", "AlertTriangle", "Target", "Lightbulb",
	"Book", "Puzzle", "Cog", "Microscope", "LineChart", "ShieldCheck", "Trophy", "Boxes",
}

// Section is a titled content block describing one aspect of a phase.
// ReferenceText is nil when the section carries no reference line at all,
// which also hides the reference input while editing.
type Section struct {
	ID            int64   `json:"id"`
	PhaseID       int64   `json:"phase_id"`
	SectionIcon   string  `json:"section_icon"`
	SectionTitle  string  `json:"section_title"`
	Content       string  `json:"content"`
	ReferenceText *string `json:"reference_text"`
}

// Icon returns the section icon, falling back to DefaultIcon.
func (s Section) Icon() string {
	return ResolveIcon(s.SectionIcon)
}

// HasReference reports whether the section has a reference slot (possibly empty).
func (s Section) HasReference() bool {
	return s.ReferenceText != nil
}

// Reference returns the reference text or "".
func (s Section) Reference() string {
	if s.ReferenceText == nil {
		return ""
	}
	return *s.ReferenceText
}

// Profile is the ordered set of sections for a phase.
type Profile struct {
	Sections []Section `json:"sections"`
}

// Title builds the profile heading: "Phase {id}: {first section title}".
func (p Profile) Title(phaseID int64) string {
	title := defaultProfileTitle
	if len(p.Sections) > 0 && p.Sections[0].SectionTitle != "" {
		title = p.Sections[0].SectionTitle
	}
	return fmt.Sprintf("Phase %d: %s", phaseID, title)
}

// SectionUpdate is the full-record payload for PATCHing a section.
type SectionUpdate struct {
	SectionTitle  string  `json:"section_title"`
	Content       string  `json:"content"`
	ReferenceText *string `json:"reference_text"`
}

// Validate checks the required fields of a SectionUpdate.
// PRE: SectionUpdate is populated from the edit form
// POST: Returns nil if valid, error otherwise
func (u *SectionUpdate) Validate() error {
	if strings.TrimSpace(u.SectionTitle) == "" {
		return ErrEmptySectionTitle
	}
	if strings.TrimSpace(u.Content) == "" {
		return ErrEmptyContent
	}
	return nil
}

// ProductSection is a block of the product development overview.
type ProductSection struct {
	ID            int64   `json:"id"`
	IconName      string  `json:"icon_name"`
	SectionTitle  string  `json:"section_title"`
	Content       string  `json:"content"`
	ReferenceText *string `json:"reference_text"`
}

// Icon returns the section icon, falling back to DefaultIcon.
func (s ProductSection) Icon() string {
	return ResolveIcon(s.IconName)
}

// Reference returns the reference text or "".
func (s ProductSection) Reference() string {
	if s.ReferenceText == nil {
		return ""
	}
	return *s.ReferenceText
}

// ResolveIcon maps an icon name onto the allowlist.
func ResolveIcon(name string) string {
	for _, icon := range Icons {
		if icon == name {
			return icon
		}
	}
	return DefaultIcon
}
