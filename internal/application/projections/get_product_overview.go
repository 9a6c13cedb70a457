package projections

import (
	"context"

	"factoryplan/internal/domain/access"
	"factoryplan/internal/domain/editstate"
	"factoryplan/internal/domain/profile"
)

// ProductOverviewQuery carries the view state of the product development page.
type ProductOverviewQuery struct {
	Access access.Context
	Edit   editstate.State
}

// ProductOverviewDeps holds dependencies for the product overview projection.
type ProductOverviewDeps struct {
	Sections ProductSectionReader
}

// ProductOverviewResult is the product development overview.
type ProductOverviewResult struct {
	Sections []profile.ProductSection
	CanEdit  bool
	Edit     editstate.State
}

// QueryProductOverview lists the product development sections.
// POST: Edit is Viewing unless the caller may edit
func QueryProductOverview(ctx context.Context, query ProductOverviewQuery, deps ProductOverviewDeps) (ProductOverviewResult, error) {
	sections, err := deps.Sections.List(ctx)
	if err != nil {
		return ProductOverviewResult{}, err
	}
	canEdit := query.Access.Allows(access.LevelEditor)
	edit := query.Edit
	if edit == nil {
		edit = editstate.Viewing{}
	}
	return ProductOverviewResult{
		Sections: sections,
		CanEdit:  canEdit,
		Edit:     editstate.Gate(edit, canEdit),
	}, nil
}
