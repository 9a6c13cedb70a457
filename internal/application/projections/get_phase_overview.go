package projections

import (
	"context"

	"factoryplan/internal/domain/access"
	"factoryplan/internal/domain/editstate"
	"factoryplan/internal/domain/phase"
)

// PhaseOverviewQuery carries the view state of the phase list.
type PhaseOverviewQuery struct {
	Access access.Context
	Edit   editstate.State
}

// PhaseOverviewDeps holds dependencies for the phase overview projection.
type PhaseOverviewDeps struct {
	Phases PhaseReader
}

// PhaseOverviewResult is the landing page: every phase in lifecycle order.
type PhaseOverviewResult struct {
	Phases  []phase.Phase
	CanEdit bool
	Edit    editstate.State
	// NextPhaseNo prefills the add form.
	NextPhaseNo int
}

// QueryPhaseOverview lists the phases. Phases are edited by admins only.
// POST: Edit is Viewing unless the caller may edit
func QueryPhaseOverview(ctx context.Context, query PhaseOverviewQuery, deps PhaseOverviewDeps) (PhaseOverviewResult, error) {
	phases, err := deps.Phases.List(ctx)
	if err != nil {
		return PhaseOverviewResult{}, err
	}
	canEdit := query.Access.Allows(access.LevelAdmin)
	edit := query.Edit
	if edit == nil {
		edit = editstate.Viewing{}
	}

	next := 1
	for _, p := range phases {
		if p.PhaseNo >= next {
			next = p.PhaseNo + 1
		}
	}
	if next > phase.StageCount {
		next = phase.StageCount
	}
	return PhaseOverviewResult{
		Phases:      phases,
		CanEdit:     canEdit,
		Edit:        editstate.Gate(edit, canEdit),
		NextPhaseNo: next,
	}, nil
}
