// Package editstate models the view/edit state shared by every list editor:
// a tagged union of Viewing, EditingExisting{ID} and EditingNew.
package editstate

import (
	"errors"
	"sort"
	"strconv"
	"strings"
)

// NewToken is the query value selecting the "add new record" form.
const NewToken = "new"

// ErrIllegalTransition is returned when an edit starts while another edit is open.
var ErrIllegalTransition = errors.New("an edit is already in progress")

// State is one of Viewing, EditingExisting or EditingNew.
type State interface {
	isState()
}

// Viewing is the read-only state.
type Viewing struct{}

// EditingExisting is editing the record with ID.
type EditingExisting struct {
	ID int64
}

// EditingNew is filling the form for a record that does not exist yet.
type EditingNew struct{}

func (Viewing) isState()         {}
func (EditingExisting) isState() {}
func (EditingNew) isState()      {}

// Parse decodes the `edit` query value. Anything unrecognised is Viewing.
func Parse(raw string) State {
	raw = strings.TrimSpace(raw)
	switch raw {
	case "":
		return Viewing{}
	case NewToken:
		return EditingNew{}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return Viewing{}
	}
	return EditingExisting{ID: id}
}

// Encode is the inverse of Parse.
func Encode(s State) string {
	switch v := s.(type) {
	case EditingExisting:
		return strconv.FormatInt(v.ID, 10)
	case EditingNew:
		return NewToken
	}
	return ""
}

// Gate forces Viewing when the caller may not edit.
func Gate(s State, canEdit bool) State {
	if !canEdit {
		return Viewing{}
	}
	return s
}

// BeginEdit moves Viewing → EditingExisting{id}.
// PRE: s is Viewing, id > 0
// POST: Returns EditingExisting or ErrIllegalTransition
func BeginEdit(s State, id int64) (State, error) {
	if _, ok := s.(Viewing); !ok || id <= 0 {
		return s, ErrIllegalTransition
	}
	return EditingExisting{ID: id}, nil
}

// BeginNew moves Viewing → EditingNew.
func BeginNew(s State) (State, error) {
	if _, ok := s.(Viewing); !ok {
		return s, ErrIllegalTransition
	}
	return EditingNew{}, nil
}

// Finish ends any edit (save success or cancel).
func Finish(State) State {
	return Viewing{}
}

// IsEditing reports whether s is editing the record with id.
func IsEditing(s State, id int64) bool {
	e, ok := s.(EditingExisting)
	return ok && e.ID == id
}

// IsNew reports whether s is the add-new form.
func IsNew(s State) bool {
	_, ok := s.(EditingNew)
	return ok
}

// Expanded is the set of expanded list indices for show more / show less toggles.
type Expanded map[int]bool

// ParseExpanded decodes a comma-separated index list such as "0,2".
func ParseExpanded(raw string) Expanded {
	e := Expanded{}
	for _, part := range strings.Split(raw, ",") {
		if i, err := strconv.Atoi(strings.TrimSpace(part)); err == nil && i >= 0 {
			e[i] = true
		}
	}
	return e
}

// Toggle returns a copy of e with index i flipped.
func (e Expanded) Toggle(i int) Expanded {
	out := make(Expanded, len(e)+1)
	for k, v := range e {
		if v {
			out[k] = true
		}
	}
	if out[i] {
		delete(out, i)
	} else {
		out[i] = true
	}
	return out
}

// Encode renders the set as a sorted comma-separated list.
func (e Expanded) Encode() string {
	idx := make([]int, 0, len(e))
	for k, v := range e {
		if v {
			idx = append(idx, k)
		}
	}
	sort.Ints(idx)
	parts := make([]string, len(idx))
	for i, k := range idx {
		parts[i] = strconv.Itoa(k)
	}
	return strings.Join(parts, ",")
}
