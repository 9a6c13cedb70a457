package matrix

import (
	"context"

	"factoryplan/internal/adapters/storage"
	domain "factoryplan/internal/domain/matrix"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// ListByPhase returns the categories of a phase in insertion order.
// Several categories of the same type may exist; the dashboard renders the first.
func (s *SQLiteStore) ListByPhase(ctx context.Context, phaseID int64) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, phase_id, category_type, title, description, detail_text
		 FROM matrix_category WHERE phase_id = ? ORDER BY id`, phaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.PhaseID, &c.CategoryType, &c.Title, &c.Description, &c.DetailText); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Titles returns the distinct category titles of a phase, alphabetically.
func (s *SQLiteStore) Titles(ctx context.Context, phaseID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT title FROM matrix_category WHERE phase_id = ? ORDER BY title`, phaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Save inserts a category when c.ID is zero and updates it otherwise.
// PRE: c has been validated
// POST: Returns the id of the stored row
func (s *SQLiteStore) Save(ctx context.Context, c domain.Category) (int64, error) {
	if c.ID == 0 {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO matrix_category (phase_id, category_type, title, description, detail_text)
			 VALUES (?, ?, ?, ?, ?)`,
			c.PhaseID, c.CategoryType, c.Title, c.Description, c.DetailText)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE matrix_category SET phase_id = ?, category_type = ?, title = ?, description = ?, detail_text = ?
		 WHERE id = ?`,
		c.PhaseID, c.CategoryType, c.Title, c.Description, c.DetailText, c.ID)
	if err != nil {
		return 0, err
	}
	return c.ID, storage.RequireAffected(res, "matrix category", c.ID)
}

// Delete removes a category.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM matrix_category WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return storage.RequireAffected(res, "matrix category", id)
}
