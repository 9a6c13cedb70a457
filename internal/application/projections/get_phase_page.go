package projections

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"factoryplan/internal/domain/access"
	"factoryplan/internal/domain/editstate"
	"factoryplan/internal/domain/phase"
	"factoryplan/internal/domain/potential"
	"factoryplan/internal/domain/profile"
)

// ErrPhaseNotFound is returned when the requested phase is not in the phase list.
var ErrPhaseNotFound = errors.New("phase not found")

// Tab is one of the views of a phase.
type Tab string

const (
	TabProfile    Tab = "profile"
	TabPotentials Tab = "potentials"
	TabMatrix     Tab = "matrix"
	TabSubphases  Tab = "subphases"
)

// Tabs lists the phase tabs in display order.
var Tabs = []Tab{TabProfile, TabPotentials, TabMatrix, TabSubphases}

// ParseTab maps a query value onto a tab, defaulting to the profile.
func ParseTab(raw string) Tab {
	for _, t := range Tabs {
		if string(t) == raw {
			return t
		}
	}
	return TabProfile
}

// EditLevel is the right needed to change the content of the tab.
func (t Tab) EditLevel() access.Level {
	switch t {
	case TabPotentials, TabMatrix:
		return access.LevelAdmin
	}
	return access.LevelEditor
}

// Label is the tab heading.
func (t Tab) Label() string {
	switch t {
	case TabPotentials:
		return "AI Potentials"
	case TabMatrix:
		return "Interface Matrix"
	case TabSubphases:
		return "Subphases"
	}
	return "Profile"
}

// PhasePageQuery carries the route and view state of a phase page.
type PhasePageQuery struct {
	PhaseID  int64
	Tab      Tab
	Access   access.Context
	Edit     editstate.State
	Expanded editstate.Expanded
}

// PhasePageDeps holds dependencies for the phase page projection.
type PhasePageDeps struct {
	Phases     PhaseReader
	Subphases  SubphaseReader
	Potentials PotentialReader
	Profiles   ProfileReader
	Matrix     MatrixReader
}

// ProfileView is the profile tab.
type ProfileView struct {
	Title    string
	Sections []profile.Section
}

// PhasePageResult is everything the phase page renders. Only the field of the
// active tab is populated.
type PhasePageResult struct {
	Phases   []phase.Phase
	Phase    phase.Phase
	Tab      Tab
	Access   access.Context
	CanEdit  bool
	Edit     editstate.State
	Expanded editstate.Expanded

	Profile    *ProfileView
	Potentials []potential.Potential
	Matrix     *MatrixResult
	Subphases  []phase.Subphase
}

// QueryPhasePage fetches the phase list and the active tab's data concurrently.
// PRE: PhaseID > 0
// POST: Fails as a whole on the first fetch error; Edit is Viewing unless the tab may be edited
func QueryPhasePage(ctx context.Context, query PhasePageQuery, deps PhasePageDeps) (PhasePageResult, error) {
	tab := ParseTab(string(query.Tab))
	canEdit := query.Access.Allows(tab.EditLevel())
	edit := query.Edit
	if edit == nil {
		edit = editstate.Viewing{}
	}
	expanded := query.Expanded
	if expanded == nil {
		expanded = editstate.Expanded{}
	}
	res := PhasePageResult{
		Tab:      tab,
		Access:   query.Access,
		CanEdit:  canEdit,
		Edit:     editstate.Gate(edit, canEdit),
		Expanded: expanded,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		phases, err := deps.Phases.List(gctx)
		res.Phases = phases
		return err
	})
	g.Go(func() error {
		return fetchTab(gctx, query.PhaseID, tab, deps, &res)
	})
	if err := g.Wait(); err != nil {
		return PhasePageResult{}, err
	}

	for _, p := range res.Phases {
		if p.ID == query.PhaseID {
			res.Phase = p
			return res, nil
		}
	}
	return PhasePageResult{}, ErrPhaseNotFound
}

// fetchTab writes only the tab fields of res.
func fetchTab(ctx context.Context, phaseID int64, tab Tab, deps PhasePageDeps, res *PhasePageResult) error {
	switch tab {
	case TabPotentials:
		ps, err := deps.Potentials.List(ctx, phaseID)
		res.Potentials = ps
		return err
	case TabMatrix:
		m, err := QueryMatrix(ctx, MatrixQuery{PhaseID: phaseID}, MatrixDeps{Matrix: deps.Matrix})
		if err != nil {
			return err
		}
		res.Matrix = &m
		return nil
	case TabSubphases:
		subs, err := deps.Subphases.List(ctx, phaseID)
		res.Subphases = subs
		return err
	}
	p, err := deps.Profiles.Get(ctx, phaseID)
	if err != nil {
		return err
	}
	res.Profile = &ProfileView{Title: p.Title(phaseID), Sections: p.Sections}
	return nil
}
