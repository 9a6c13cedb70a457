package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"factoryplan/internal/domain/phase"
	"factoryplan/internal/domain/profile"
	"factoryplan/internal/domain/user"
)

type seedPhaseStore interface {
	List(ctx context.Context) ([]phase.Phase, error)
	Save(ctx context.Context, p phase.Phase) (int64, error)
}

type seedProfileStore interface {
	CreateSection(ctx context.Context, s profile.Section) (int64, error)
	ListProductSections(ctx context.Context) ([]profile.ProductSection, error)
	CreateProductSection(ctx context.Context, s profile.ProductSection) (int64, error)
}

type seedUserStore interface {
	Count(ctx context.Context) (int, error)
	Save(ctx context.Context, u user.User) (int64, error)
}

// SeedContentDeps holds stores needed for first-start seeding.
type SeedContentDeps struct {
	PhaseStore   seedPhaseStore
	ProfileStore seedProfileStore
	UserStore    seedUserStore
}

// SeedContentInput carries the initial admin credentials.
type SeedContentInput struct {
	AdminUsername string
	AdminPassword string
}

// SeedContentResult reports what was created.
type SeedContentResult struct {
	Phases          int
	ProductSections int
	AdminCreated    bool
}

// productSeed is the initial product development overview.
var productSeed = []profile.ProductSection{
	{IconName: "Lightbulb", SectionTitle: "Product idea", Content: "Describe the product and the market need it addresses."},
	{IconName: "Boxes", SectionTitle: "Variants and volumes", Content: "Expected variants, quantities and their ramp over the product life cycle."},
	{IconName: "Cog", SectionTitle: "Manufacturing technology", Content: "Key processes and technologies the product requires."},
}

// ExecuteSeedContent creates the seven canonical phases with one profile section each,
// the product development overview and an admin user, skipping whatever already exists.
// POST: Running twice creates nothing the second time
func ExecuteSeedContent(ctx context.Context, input SeedContentInput, deps SeedContentDeps) (SeedContentResult, error) {
	var res SeedContentResult

	existing, err := deps.PhaseStore.List(ctx)
	if err != nil {
		return res, err
	}
	if len(existing) == 0 {
		for _, st := range phase.Stages {
			id, err := deps.PhaseStore.Save(ctx, phase.Phase{PhaseNo: st.No, Title: st.Name, ProfileInfo: st.ShortDesc})
			if err != nil {
				return res, fmt.Errorf("seeding phase %d: %w", st.No, err)
			}
			if _, err := deps.ProfileStore.CreateSection(ctx, profile.Section{
				PhaseID:      id,
				SectionIcon:  "Target",
				SectionTitle: st.Name,
				Content:      st.ShortDesc,
			}); err != nil {
				return res, fmt.Errorf("seeding profile for phase %d: %w", st.No, err)
			}
			res.Phases++
		}
	}

	products, err := deps.ProfileStore.ListProductSections(ctx)
	if err != nil {
		return res, err
	}
	if len(products) == 0 {
		for _, ps := range productSeed {
			if _, err := deps.ProfileStore.CreateProductSection(ctx, ps); err != nil {
				return res, fmt.Errorf("seeding product section: %w", err)
			}
			res.ProductSections++
		}
	}

	users, err := deps.UserStore.Count(ctx)
	if err != nil {
		return res, err
	}
	if users == 0 && input.AdminUsername != "" {
		admin := user.User{Username: input.AdminUsername, Role: user.RoleAdmin}
		if err := admin.SetPassword(input.AdminPassword); err != nil {
			return res, fmt.Errorf("seeding admin: %w", err)
		}
		if err := admin.Validate(); err != nil {
			return res, fmt.Errorf("seeding admin: %w", err)
		}
		if _, err := deps.UserStore.Save(ctx, admin); err != nil {
			return res, fmt.Errorf("seeding admin: %w", err)
		}
		res.AdminCreated = true
	}

	slog.Info("seed_content", "phases", res.Phases, "product_sections", res.ProductSections, "admin_created", res.AdminCreated)
	return res, nil
}
