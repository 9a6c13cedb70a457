package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"factoryplan/internal/domain/access"
	"factoryplan/internal/domain/notification"
	"factoryplan/internal/domain/profile"
)

// ErrSectionNotUpdated is returned when the backend answers without the success acknowledgement.
var ErrSectionNotUpdated = errors.New("failed to update section")

// ProfileSectionUpdater defines the backend interface needed by UpdateProfileSection.
type ProfileSectionUpdater interface {
	UpdateSection(ctx context.Context, phaseID, sectionID int64, u profile.SectionUpdate) (string, error)
}

// ProductSectionUpdater defines the backend interface needed by UpdateProductSection.
type ProductSectionUpdater interface {
	Update(ctx context.Context, id int64, u profile.SectionUpdate) (string, error)
}

// UpdateSectionInput carries the section edit form. PhaseID is zero for product sections.
type UpdateSectionInput struct {
	Access    access.Context
	Actor     string
	PhaseID   int64
	SectionID int64
	Update    profile.SectionUpdate
}

// UpdateProfileSectionDeps holds dependencies for UpdateProfileSection.
type UpdateProfileSectionDeps struct {
	Profiles ProfileSectionUpdater
	Notify   Notifier
}

// UpdateProductSectionDeps holds dependencies for UpdateProductSection.
type UpdateProductSectionDeps struct {
	Sections ProductSectionUpdater
	Notify   Notifier
}

// ExecuteUpdateProfileSection PATCHes one section of a phase profile.
// PRE: Access allows editor edits
// POST: Succeeds only when the backend acknowledges with profile.UpdatedMessage
func ExecuteUpdateProfileSection(ctx context.Context, input UpdateSectionInput, deps UpdateProfileSectionDeps) error {
	u, err := prepareSectionUpdate(input)
	if err != nil {
		return err
	}
	msg, err := deps.Profiles.UpdateSection(ctx, input.PhaseID, input.SectionID, u)
	if err != nil {
		return err
	}
	if msg != profile.UpdatedMessage {
		slog.Warn("content_event", "event", "section_update_unacknowledged", "phase_id", input.PhaseID, "section_id", input.SectionID, "message", msg)
		return ErrSectionNotUpdated
	}
	slog.Info("content_event", "event", "profile_section_updated", "phase_id", input.PhaseID, "section_id", input.SectionID, "actor", input.Actor)
	deps.Notify.notify(ctx, notification.Change{Entity: "Profile section", Action: notification.ActionUpdated, Title: u.SectionTitle, PhaseID: input.PhaseID, Actor: input.Actor})
	return nil
}

// ExecuteUpdateProductSection PATCHes one product development section.
// PRE: Access allows editor edits
// POST: Succeeds only when the backend acknowledges with profile.UpdatedMessage
func ExecuteUpdateProductSection(ctx context.Context, input UpdateSectionInput, deps UpdateProductSectionDeps) error {
	u, err := prepareSectionUpdate(input)
	if err != nil {
		return err
	}
	msg, err := deps.Sections.Update(ctx, input.SectionID, u)
	if err != nil {
		return err
	}
	if msg != profile.UpdatedMessage {
		slog.Warn("content_event", "event", "section_update_unacknowledged", "section_id", input.SectionID, "message", msg)
		return ErrSectionNotUpdated
	}
	slog.Info("content_event", "event", "product_section_updated", "section_id", input.SectionID, "actor", input.Actor)
	deps.Notify.notify(ctx, notification.Change{Entity: "Product section", Action: notification.ActionUpdated, Title: u.SectionTitle, Actor: input.Actor})
	return nil
}

func prepareSectionUpdate(input UpdateSectionInput) (profile.SectionUpdate, error) {
	if err := input.Access.Require(access.LevelEditor); err != nil {
		return profile.SectionUpdate{}, err
	}
	u := input.Update
	u.SectionTitle = strings.TrimSpace(u.SectionTitle)
	u.Content = strings.TrimSpace(u.Content)
	if err := u.Validate(); err != nil {
		return profile.SectionUpdate{}, err
	}
	return u, nil
}
