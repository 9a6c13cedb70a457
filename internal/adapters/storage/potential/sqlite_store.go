package potential

import (
	"context"
	"database/sql"
	"fmt"

	"factoryplan/internal/adapters/storage"
	domain "factoryplan/internal/domain/potential"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const potentialColumns = `p.id, p.phase_id, p.category, p.title, p.description, p.rating`

// ListByPhase returns the potentials of a phase in insertion order.
func (s *SQLiteStore) ListByPhase(ctx context.Context, phaseID int64) ([]domain.Potential, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+potentialColumns+` FROM potential p WHERE p.phase_id = ? ORDER BY p.id`, phaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Potential{}
	for rows.Next() {
		p, err := scanPotential(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetByID retrieves a potential.
// PRE: id > 0
// POST: Returns the potential or an error wrapping sql.ErrNoRows
func (s *SQLiteStore) GetByID(ctx context.Context, id int64) (domain.Potential, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+potentialColumns+` FROM potential p WHERE p.id = ?`, id)
	p, err := scanPotential(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Potential{}, fmt.Errorf("potential %d not found: %w", id, err)
	}
	return p, err
}

// Save inserts a potential when p.ID is zero and updates its content otherwise.
// The rating is only changed through Rate.
// PRE: p has been validated
// POST: Returns the id of the stored row
func (s *SQLiteStore) Save(ctx context.Context, p domain.Potential) (int64, error) {
	if p.ID == 0 {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO potential (phase_id, category, title, description, rating) VALUES (?, ?, ?, ?, ?)`,
			p.PhaseID, p.Category, p.Title, p.Description, nullableInt(p.Rating))
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE potential SET phase_id = ?, category = ?, title = ?, description = ? WHERE id = ?`,
		p.PhaseID, p.Category, p.Title, p.Description, p.ID)
	if err != nil {
		return 0, err
	}
	return p.ID, storage.RequireAffected(res, "potential", p.ID)
}

// Delete removes a potential.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM potential WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return storage.RequireAffected(res, "potential", id)
}

// Rate sets the star rating of a potential.
// PRE: rating is within 1..5
func (s *SQLiteStore) Rate(ctx context.Context, id int64, rating int) error {
	res, err := s.db.ExecContext(ctx, `UPDATE potential SET rating = ? WHERE id = ?`, rating, id)
	if err != nil {
		return err
	}
	return storage.RequireAffected(res, "potential", id)
}

// TopRated returns every potential joined with its phase number and title,
// rated ones first by rating descending.
func (s *SQLiteStore) TopRated(ctx context.Context) ([]domain.Potential, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+potentialColumns+`, ph.phase_no, ph.title
		 FROM potential p JOIN phase ph ON ph.id = p.phase_id
		 ORDER BY p.rating IS NULL, p.rating DESC, p.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Potential{}
	for rows.Next() {
		var p domain.Potential
		var rating sql.NullInt64
		if err := rows.Scan(&p.ID, &p.PhaseID, &p.Category, &p.Title, &p.Description, &rating,
			&p.PhaseNo, &p.PhaseTitle); err != nil {
			return nil, err
		}
		p.Rating = intPtr(rating)
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPotential(scan func(dest ...any) error) (domain.Potential, error) {
	var p domain.Potential
	var rating sql.NullInt64
	if err := scan(&p.ID, &p.PhaseID, &p.Category, &p.Title, &p.Description, &rating); err != nil {
		return domain.Potential{}, err
	}
	p.Rating = intPtr(rating)
	return p, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
