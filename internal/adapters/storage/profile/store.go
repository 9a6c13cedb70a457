package profile

import (
	"context"

	domain "factoryplan/internal/domain/profile"
)

// Store persists phase profile sections and product development sections.
type Store interface {
	ListSections(ctx context.Context, phaseID int64) ([]domain.Section, error)
	CreateSection(ctx context.Context, s domain.Section) (int64, error)
	UpdateSection(ctx context.Context, phaseID, id int64, u domain.SectionUpdate) error

	ListProductSections(ctx context.Context) ([]domain.ProductSection, error)
	CreateProductSection(ctx context.Context, s domain.ProductSection) (int64, error)
	UpdateProductSection(ctx context.Context, id int64, u domain.SectionUpdate) error
}
