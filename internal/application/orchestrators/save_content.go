package orchestrators

import (
	"context"
	"log/slog"
	"strings"

	"factoryplan/internal/domain/access"
	"factoryplan/internal/domain/matrix"
	"factoryplan/internal/domain/notification"
	"factoryplan/internal/domain/phase"
	"factoryplan/internal/domain/potential"
)

// SaveResult reports which request a save issued.
type SaveResult struct {
	Created bool
}

// Message is the success notification for the save.
func (r SaveResult) Message() string {
	if r.Created {
		return notification.MsgAdded
	}
	return notification.MsgUpdated
}

func (r SaveResult) action() notification.Action {
	if r.Created {
		return notification.ActionAdded
	}
	return notification.ActionUpdated
}

// --- Save Potential ---

// PotentialSaver defines the backend interface needed by SavePotential.
type PotentialSaver interface {
	Save(ctx context.Context, p potential.Potential) (bool, error)
}

// SavePotentialInput carries the edit form of a potential.
type SavePotentialInput struct {
	Access    access.Context
	Actor     string
	Potential potential.Potential
}

// SavePotentialDeps holds dependencies for SavePotential.
type SavePotentialDeps struct {
	Potentials PotentialSaver
	Notify     Notifier
}

// ExecuteSavePotential creates or updates a potential.
// PRE: Access allows admin edits
// POST: Exactly one POST (ID zero) or PATCH is issued, none when validation fails
func ExecuteSavePotential(ctx context.Context, input SavePotentialInput, deps SavePotentialDeps) (SaveResult, error) {
	if err := input.Access.Require(access.LevelAdmin); err != nil {
		return SaveResult{}, err
	}
	p := input.Potential
	p.Category = strings.TrimSpace(p.Category)
	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)
	if err := p.Validate(); err != nil {
		return SaveResult{}, err
	}

	created, err := deps.Potentials.Save(ctx, p)
	if err != nil {
		return SaveResult{}, err
	}
	res := SaveResult{Created: created}
	slog.Info("content_event", "event", "potential_saved", "id", p.ID, "phase_id", p.PhaseID, "created", created, "actor", input.Actor)
	deps.Notify.notify(ctx, notification.Change{Entity: "Potential", Action: res.action(), Title: p.Title, PhaseID: p.PhaseID, Actor: input.Actor})
	return res, nil
}

// --- Save Phase ---

// PhaseSaver defines the backend interface needed by SavePhase.
type PhaseSaver interface {
	Save(ctx context.Context, p phase.Phase) (bool, error)
}

// SavePhaseInput carries the phase form.
type SavePhaseInput struct {
	Access access.Context
	Actor  string
	Phase  phase.Phase
}

// SavePhaseDeps holds dependencies for SavePhase.
type SavePhaseDeps struct {
	Phases PhaseSaver
	Notify Notifier
}

// ExecuteSavePhase creates or updates a phase.
// PRE: Access allows admin edits
// POST: phaseNo, title and profile_info were all present, or no request is issued
func ExecuteSavePhase(ctx context.Context, input SavePhaseInput, deps SavePhaseDeps) (SaveResult, error) {
	if err := input.Access.Require(access.LevelAdmin); err != nil {
		return SaveResult{}, err
	}
	p := input.Phase
	p.Title = strings.TrimSpace(p.Title)
	p.ProfileInfo = strings.TrimSpace(p.ProfileInfo)
	if err := p.Validate(); err != nil {
		return SaveResult{}, err
	}

	created, err := deps.Phases.Save(ctx, p)
	if err != nil {
		return SaveResult{}, err
	}
	res := SaveResult{Created: created}
	slog.Info("content_event", "event", "phase_saved", "id", p.ID, "phase_no", p.PhaseNo, "created", created, "actor", input.Actor)
	deps.Notify.notify(ctx, notification.Change{Entity: "Phase", Action: res.action(), Title: p.Title, PhaseID: p.ID, Actor: input.Actor})
	return res, nil
}

// --- Save Subphase ---

// SubphaseSaver defines the backend interface needed by SaveSubphase.
type SubphaseSaver interface {
	List(ctx context.Context, phaseID int64) ([]phase.Subphase, error)
	Save(ctx context.Context, s phase.Subphase) (bool, error)
}

// SaveSubphaseInput carries the subphase form. Details holds one line per entry.
type SaveSubphaseInput struct {
	Access   access.Context
	Actor    string
	Subphase phase.Subphase
}

// SaveSubphaseDeps holds dependencies for SaveSubphase.
type SaveSubphaseDeps struct {
	Subphases SubphaseSaver
	Notify    Notifier
}

// ExecuteSaveSubphase creates or updates a subphase.
// A new subphase without an order number is appended after the existing ones;
// an update without one keeps the stored order.
// PRE: Access allows editor edits
// POST: Blank detail lines are dropped; no mutating request when the name is empty
func ExecuteSaveSubphase(ctx context.Context, input SaveSubphaseInput, deps SaveSubphaseDeps) (SaveResult, error) {
	if err := input.Access.Require(access.LevelEditor); err != nil {
		return SaveResult{}, err
	}
	s := input.Subphase
	s.Name = strings.TrimSpace(s.Name)
	s.CleanDetails()
	if err := s.Validate(); err != nil {
		return SaveResult{}, err
	}

	if s.OrderNumber == 0 {
		existing, err := deps.Subphases.List(ctx, s.PhaseID)
		if err != nil {
			return SaveResult{}, err
		}
		s.OrderNumber = len(existing) + 1
		for _, e := range existing {
			if s.ID != 0 && e.ID == s.ID {
				s.OrderNumber = e.OrderNumber
				break
			}
		}
	}

	created, err := deps.Subphases.Save(ctx, s)
	if err != nil {
		return SaveResult{}, err
	}
	res := SaveResult{Created: created}
	slog.Info("content_event", "event", "subphase_saved", "id", s.ID, "phase_id", s.PhaseID, "created", created, "actor", input.Actor)
	deps.Notify.notify(ctx, notification.Change{Entity: "Subphase", Action: res.action(), Title: s.Name, PhaseID: s.PhaseID, Actor: input.Actor})
	return res, nil
}

// --- Save Matrix Category ---

// MatrixCategorySaver defines the backend interface needed by SaveMatrixCategory.
type MatrixCategorySaver interface {
	ForPhase(ctx context.Context, phaseID int64) ([]matrix.Category, error)
	SaveCategory(ctx context.Context, c matrix.Category) (bool, error)
}

// SaveMatrixCategoryInput carries the matrix category form.
type SaveMatrixCategoryInput struct {
	Access   access.Context
	Actor    string
	Category matrix.Category
}

// SaveMatrixCategoryDeps holds dependencies for SaveMatrixCategory.
type SaveMatrixCategoryDeps struct {
	Matrix MatrixCategorySaver
	Notify Notifier
}

// ExecuteSaveMatrixCategory creates or updates a matrix category.
// PRE: Access allows admin edits
// POST: category_type is one of the fixed types, title is present and the type's slot
// is free or held by this category, or no request is issued
func ExecuteSaveMatrixCategory(ctx context.Context, input SaveMatrixCategoryInput, deps SaveMatrixCategoryDeps) (SaveResult, error) {
	if err := input.Access.Require(access.LevelAdmin); err != nil {
		return SaveResult{}, err
	}
	c := input.Category
	c.Title = strings.TrimSpace(c.Title)
	c.Description = strings.TrimSpace(c.Description)
	c.DetailText = strings.TrimSpace(c.DetailText)
	if err := c.Validate(); err != nil {
		return SaveResult{}, err
	}
	existing, err := deps.Matrix.ForPhase(ctx, c.PhaseID)
	if err != nil {
		return SaveResult{}, err
	}
	if o := matrix.Occupant(existing, c.CategoryType); o != nil && o.ID != c.ID {
		return SaveResult{}, matrix.ErrTypeTaken
	}

	created, err := deps.Matrix.SaveCategory(ctx, c)
	if err != nil {
		return SaveResult{}, err
	}
	res := SaveResult{Created: created}
	slog.Info("content_event", "event", "matrix_category_saved", "id", c.ID, "phase_id", c.PhaseID, "type", c.CategoryType, "created", created, "actor", input.Actor)
	deps.Notify.notify(ctx, notification.Change{Entity: "Matrix category", Action: res.action(), Title: c.Title, PhaseID: c.PhaseID, Actor: input.Actor})
	return res, nil
}
