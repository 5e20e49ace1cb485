package specialities

import (
	"context"
	"database/sql"
)

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) List(ctx context.Context, includeDisabled bool) ([]Speciality, error) {
	q := `
		SELECT speciality_id, name, code, is_disabled
		FROM specialities
	`
	if !includeDisabled {
		q += ` WHERE is_disabled = 0`
	}
	q += ` ORDER BY speciality_id`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make([]Speciality, 0, 16)
	for rows.Next() {
		var sp Speciality
		if err := rows.Scan(&sp.SpecialityID, &sp.Name, &sp.Code, &sp.IsDisabled); err != nil {
			return nil, err
		}
		res = append(res, sp)
	}
	return res, rows.Err()
}

func (s *Store) GetByID(ctx context.Context, id int64) (*Speciality, error) {
	const q = `
		SELECT speciality_id, name, code, is_disabled
		FROM specialities
		WHERE speciality_id = ?
	`
	var sp Speciality
	err := s.db.QueryRowContext(ctx, q, id).Scan(&sp.SpecialityID, &sp.Name, &sp.Code, &sp.IsDisabled)
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

func (s *Store) Create(ctx context.Context, name, code string) (*Speciality, error) {
	const q = `
		INSERT INTO specialities (name, code, is_disabled)
		VALUES (?, ?, 0)
	`
	r, err := s.db.ExecContext(ctx, q, name, code)
	if err != nil {
		return nil, err
	}
	lastID, err := r.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Speciality{SpecialityID: lastID, Name: name, Code: code}, nil
}

func (s *Store) Update(ctx context.Context, id int64, name, code string, disabled bool) error {
	const q = `
		UPDATE specialities
		SET name = ?, code = ?, is_disabled = ?
		WHERE speciality_id = ?
	`
	r, err := s.db.ExecContext(ctx, q, name, code, disabled, id)
	if err != nil {
		return err
	}
	aff, err := r.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Disable is the DELETE semantics: flip is_disabled, keep the row.
func (s *Store) Disable(ctx context.Context, id int64) error {
	const q = `
		UPDATE specialities
		SET is_disabled = 1
		WHERE speciality_id = ?
	`
	r, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	aff, err := r.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}
