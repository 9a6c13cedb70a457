package orchestrators

import (
	"context"
	"log/slog"

	"factoryplan/internal/domain/access"
	"factoryplan/internal/domain/notification"
	"factoryplan/internal/domain/potential"
)

// PotentialRater defines the backend interface needed by RatePotential.
type PotentialRater interface {
	Rate(ctx context.Context, id int64, rating int) error
}

// RatePotentialInput carries a click on the star control.
type RatePotentialInput struct {
	Access  access.Context
	Actor   string
	ID      int64
	PhaseID int64
	Rating  int
}

// RatePotentialDeps holds dependencies for RatePotential.
type RatePotentialDeps struct {
	Potentials PotentialRater
	Notify     Notifier
}

// ExecuteRatePotential sets the star rating of a potential.
// PRE: Access allows admin edits; 1 <= Rating <= 5
// POST: One PATCH /potential/:id/rating is issued, none when the rating is out of range
func ExecuteRatePotential(ctx context.Context, input RatePotentialInput, deps RatePotentialDeps) error {
	if err := input.Access.Require(access.LevelAdmin); err != nil {
		return err
	}
	if err := potential.ValidateRating(input.Rating); err != nil {
		return err
	}
	if err := deps.Potentials.Rate(ctx, input.ID, input.Rating); err != nil {
		return err
	}
	slog.Info("content_event", "event", "potential_rated", "id", input.ID, "rating", input.Rating, "actor", input.Actor)
	deps.Notify.notify(ctx, notification.Change{Entity: "Potential", Action: notification.ActionRated, PhaseID: input.PhaseID, Actor: input.Actor})
	return nil
}
