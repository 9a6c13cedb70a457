package phase

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"factoryplan/internal/adapters/storage"
	domain "factoryplan/internal/domain/phase"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// List returns every phase ordered by phase number.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Phase, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, phase_no, title, profile_info FROM phase ORDER BY phase_no`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	phases := []domain.Phase{}
	for rows.Next() {
		var p domain.Phase
		if err := rows.Scan(&p.ID, &p.PhaseNo, &p.Title, &p.ProfileInfo); err != nil {
			return nil, err
		}
		phases = append(phases, p)
	}
	return phases, rows.Err()
}

// GetByID retrieves a phase.
// PRE: id > 0
// POST: Returns the phase or an error wrapping sql.ErrNoRows
func (s *SQLiteStore) GetByID(ctx context.Context, id int64) (domain.Phase, error) {
	var p domain.Phase
	err := s.db.QueryRowContext(ctx,
		`SELECT id, phase_no, title, profile_info FROM phase WHERE id = ?`, id).
		Scan(&p.ID, &p.PhaseNo, &p.Title, &p.ProfileInfo)
	if err == sql.ErrNoRows {
		return domain.Phase{}, fmt.Errorf("phase %d not found: %w", id, err)
	}
	return p, err
}

// Save inserts a phase when p.ID is zero and updates it otherwise.
// PRE: p has been validated
// POST: Returns the id of the stored row
func (s *SQLiteStore) Save(ctx context.Context, p domain.Phase) (int64, error) {
	if p.ID == 0 {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO phase (phase_no, title, profile_info) VALUES (?, ?, ?)`,
			p.PhaseNo, p.Title, p.ProfileInfo)
		if err != nil {
			return 0, storage.MapConstraint(err, "phase number")
		}
		return res.LastInsertId()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE phase SET phase_no = ?, title = ?, profile_info = ? WHERE id = ?`,
		p.PhaseNo, p.Title, p.ProfileInfo, p.ID)
	if err != nil {
		return 0, storage.MapConstraint(err, "phase number")
	}
	return p.ID, storage.RequireAffected(res, "phase", p.ID)
}

// Delete removes a phase and, by cascade, everything attached to it.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM phase WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return storage.RequireAffected(res, "phase", id)
}

// ListSubphases returns the subphases of a phase ordered by order number.
func (s *SQLiteStore) ListSubphases(ctx context.Context, phaseID int64) ([]domain.Subphase, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, phase_id, name, details, order_number FROM subphase
		 WHERE phase_id = ? ORDER BY order_number, id`, phaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := []domain.Subphase{}
	for rows.Next() {
		var sp domain.Subphase
		var details string
		if err := rows.Scan(&sp.ID, &sp.PhaseID, &sp.Name, &details, &sp.OrderNumber); err != nil {
			return nil, err
		}
		sp.Details = decodeDetails(details, sp.ID)
		subs = append(subs, sp)
	}
	return subs, rows.Err()
}

// SaveSubphase inserts or updates a subphase.
// A new subphase without an order number is appended after the existing ones.
// PRE: sp has been validated
// POST: Returns the id of the stored row
func (s *SQLiteStore) SaveSubphase(ctx context.Context, sp domain.Subphase) (int64, error) {
	sp.CleanDetails()
	details, err := json.Marshal(sp.Details)
	if err != nil {
		return 0, err
	}
	if sp.ID == 0 {
		if sp.OrderNumber == 0 {
			if err := s.db.QueryRowContext(ctx,
				`SELECT COALESCE(MAX(order_number), 0) + 1 FROM subphase WHERE phase_id = ?`, sp.PhaseID).
				Scan(&sp.OrderNumber); err != nil {
				return 0, err
			}
		}
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO subphase (phase_id, name, details, order_number) VALUES (?, ?, ?, ?)`,
			sp.PhaseID, sp.Name, string(details), sp.OrderNumber)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE subphase SET name = ?, details = ?, order_number = ? WHERE id = ? AND phase_id = ?`,
		sp.Name, string(details), sp.OrderNumber, sp.ID, sp.PhaseID)
	if err != nil {
		return 0, err
	}
	return sp.ID, storage.RequireAffected(res, "subphase", sp.ID)
}

// DeleteSubphase removes a subphase of the given phase.
func (s *SQLiteStore) DeleteSubphase(ctx context.Context, phaseID, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM subphase WHERE id = ? AND phase_id = ?`, id, phaseID)
	if err != nil {
		return err
	}
	return storage.RequireAffected(res, "subphase", id)
}

func decodeDetails(raw string, id int64) []string {
	out := []string{}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		slog.Warn("subphase: failed to decode details", "subphase_id", id, "error", err)
		return []string{}
	}
	return out
}
