package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"factoryplan/internal/domain/access"
	"factoryplan/internal/domain/notification"
)

// ErrNotConfirmed is returned when a delete reaches the orchestrator without confirmation.
var ErrNotConfirmed = errors.New("delete was not confirmed")

// DeleteInput identifies the record to delete. PhaseID scopes nested records
// and labels the change notification. Title is only used for the notification.
type DeleteInput struct {
	Access    access.Context
	Actor     string
	ID        int64
	PhaseID   int64
	Title     string
	Confirmed bool
}

// PotentialDeleter defines the backend interface needed by DeletePotential.
type PotentialDeleter interface {
	Delete(ctx context.Context, id int64) error
}

// PhaseDeleter defines the backend interface needed by DeletePhase.
type PhaseDeleter interface {
	Delete(ctx context.Context, id int64) error
}

// SubphaseDeleter defines the backend interface needed by DeleteSubphase.
type SubphaseDeleter interface {
	Delete(ctx context.Context, phaseID, id int64) error
}

// MatrixCategoryDeleter defines the backend interface needed by DeleteMatrixCategory.
type MatrixCategoryDeleter interface {
	DeleteCategory(ctx context.Context, id int64) error
}

// DeletePotentialDeps holds dependencies for DeletePotential.
type DeletePotentialDeps struct {
	Potentials PotentialDeleter
	Notify     Notifier
}

// DeletePhaseDeps holds dependencies for DeletePhase.
type DeletePhaseDeps struct {
	Phases PhaseDeleter
	Notify Notifier
}

// DeleteSubphaseDeps holds dependencies for DeleteSubphase.
type DeleteSubphaseDeps struct {
	Subphases SubphaseDeleter
	Notify    Notifier
}

// DeleteMatrixCategoryDeps holds dependencies for DeleteMatrixCategory.
type DeleteMatrixCategoryDeps struct {
	Matrix MatrixCategoryDeleter
	Notify Notifier
}

// ExecuteDeletePotential removes a potential.
// PRE: Access allows admin edits; the user confirmed
// POST: Exactly one DELETE is issued, none otherwise
func ExecuteDeletePotential(ctx context.Context, input DeleteInput, deps DeletePotentialDeps) error {
	return deleteContent(ctx, input, access.LevelAdmin, "Potential", deps.Notify, func() error {
		return deps.Potentials.Delete(ctx, input.ID)
	})
}

// ExecuteDeletePhase removes a phase together with everything attached to it.
// PRE: Access allows admin edits; the user confirmed
// POST: Exactly one DELETE is issued, none otherwise
func ExecuteDeletePhase(ctx context.Context, input DeleteInput, deps DeletePhaseDeps) error {
	return deleteContent(ctx, input, access.LevelAdmin, "Phase", deps.Notify, func() error {
		return deps.Phases.Delete(ctx, input.ID)
	})
}

// ExecuteDeleteSubphase removes a subphase of input.PhaseID.
// PRE: Access allows editor edits; the user confirmed
// POST: Exactly one DELETE is issued, none otherwise
func ExecuteDeleteSubphase(ctx context.Context, input DeleteInput, deps DeleteSubphaseDeps) error {
	return deleteContent(ctx, input, access.LevelEditor, "Subphase", deps.Notify, func() error {
		return deps.Subphases.Delete(ctx, input.PhaseID, input.ID)
	})
}

// ExecuteDeleteMatrixCategory removes a matrix category.
// PRE: Access allows admin edits; the user confirmed
// POST: Exactly one DELETE is issued, none otherwise
func ExecuteDeleteMatrixCategory(ctx context.Context, input DeleteInput, deps DeleteMatrixCategoryDeps) error {
	return deleteContent(ctx, input, access.LevelAdmin, "Matrix category", deps.Notify, func() error {
		return deps.Matrix.DeleteCategory(ctx, input.ID)
	})
}

func deleteContent(ctx context.Context, input DeleteInput, level access.Level, entity string, notify Notifier, del func() error) error {
	if err := input.Access.Require(level); err != nil {
		return err
	}
	if !input.Confirmed {
		return ErrNotConfirmed
	}
	if input.ID <= 0 {
		return errors.New("record ID is required")
	}
	if err := del(); err != nil {
		return err
	}
	slog.Info("content_event", "event", "deleted", "entity", entity, "id", input.ID, "phase_id", input.PhaseID, "actor", input.Actor)
	notify.notify(ctx, notification.Change{Entity: entity, Action: notification.ActionDeleted, Title: input.Title, PhaseID: input.PhaseID, Actor: input.Actor})
	return nil
}
