package profile

import (
	"context"
	"database/sql"

	"factoryplan/internal/adapters/storage"
	domain "factoryplan/internal/domain/profile"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// ListSections returns the sections of a phase profile in display order.
func (s *SQLiteStore) ListSections(ctx context.Context, phaseID int64) ([]domain.Section, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, phase_id, section_icon, section_title, content, reference_text
		 FROM profile_section WHERE phase_id = ? ORDER BY position, id`, phaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Section{}
	for rows.Next() {
		var sec domain.Section
		var ref sql.NullString
		if err := rows.Scan(&sec.ID, &sec.PhaseID, &sec.SectionIcon, &sec.SectionTitle, &sec.Content, &ref); err != nil {
			return nil, err
		}
		sec.ReferenceText = storage.StringPtr(ref)
		out = append(out, sec)
	}
	return out, rows.Err()
}

// CreateSection appends a section to a phase profile.
// POST: The section is placed after the existing ones
func (s *SQLiteStore) CreateSection(ctx context.Context, sec domain.Section) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO profile_section (phase_id, section_icon, section_title, content, reference_text, position)
		 VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM profile_section WHERE phase_id = ?))`,
		sec.PhaseID, sec.Icon(), sec.SectionTitle, sec.Content, storage.NullableString(sec.ReferenceText), sec.PhaseID)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateSection replaces the editable fields of a section of the given phase.
// A nil ReferenceText leaves the stored reference untouched.
// PRE: u has been validated
func (s *SQLiteStore) UpdateSection(ctx context.Context, phaseID, id int64, u domain.SectionUpdate) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE profile_section
		 SET section_title = ?, content = ?, reference_text = COALESCE(?, reference_text)
		 WHERE id = ? AND phase_id = ?`,
		u.SectionTitle, u.Content, storage.NullableString(u.ReferenceText), id, phaseID)
	if err != nil {
		return err
	}
	return storage.RequireAffected(res, "profile section", id)
}

// ListProductSections returns the product development overview in display order.
func (s *SQLiteStore) ListProductSections(ctx context.Context) ([]domain.ProductSection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, icon_name, section_title, content, reference_text
		 FROM product_section ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.ProductSection{}
	for rows.Next() {
		var sec domain.ProductSection
		var ref sql.NullString
		if err := rows.Scan(&sec.ID, &sec.IconName, &sec.SectionTitle, &sec.Content, &ref); err != nil {
			return nil, err
		}
		sec.ReferenceText = storage.StringPtr(ref)
		out = append(out, sec)
	}
	return out, rows.Err()
}

// CreateProductSection appends a product development section.
func (s *SQLiteStore) CreateProductSection(ctx context.Context, sec domain.ProductSection) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO product_section (icon_name, section_title, content, reference_text, position)
		 VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM product_section))`,
		sec.Icon(), sec.SectionTitle, sec.Content, storage.NullableString(sec.ReferenceText))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateProductSection replaces the editable fields of a product development section.
// PRE: u has been validated
func (s *SQLiteStore) UpdateProductSection(ctx context.Context, id int64, u domain.SectionUpdate) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE product_section
		 SET section_title = ?, content = ?, reference_text = COALESCE(?, reference_text)
		 WHERE id = ?`,
		u.SectionTitle, u.Content, storage.NullableString(u.ReferenceText), id)
	if err != nil {
		return err
	}
	return storage.RequireAffected(res, "product section", id)
}
