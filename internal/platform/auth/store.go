package auth

import (
	"context"
	"database/sql"
	"errors"
)

type Account struct {
	UserID       int64
	Name         string
	PasswordHash string
	Role         string
	IsDisabled   bool
	CreatedAt    string
}

type AccountStore interface {
	GetByName(ctx context.Context, name string) (*Account, error)
	GetByID(ctx context.Context, id int64) (*Account, error)
	Create(ctx context.Context, a *Account) error
	Delete(ctx context.Context, id int64) (int64, error)
	Rename(ctx context.Context, id int64, newName string) (int64, error)
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) AccountStore {
	return &Store{db: db}
}

func (s *Store) GetByName(ctx context.Context, name string) (*Account, error) {
	const q = `
SELECT user_id, name, password_hash, role, is_disabled, created_at
FROM users
WHERE name = ?
LIMIT 1
`
	return s.scanOne(s.db.QueryRowContext(ctx, q, name))
}

func (s *Store) GetByID(ctx context.Context, id int64) (*Account, error) {
	const q = `
SELECT user_id, name, password_hash, role, is_disabled, created_at
FROM users
WHERE user_id = ?
LIMIT 1
`
	return s.scanOne(s.db.QueryRowContext(ctx, q, id))
}

func (s *Store) scanOne(row *sql.Row) (*Account, error) {
	var a Account
	var isDisabledInt int
	err := row.Scan(
		&a.UserID,
		&a.Name,
		&a.PasswordHash,
		&a.Role,
		&isDisabledInt,
		&a.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if isDisabledInt != 0 {
		a.IsDisabled = true
	}
	return &a, nil
}

func (s *Store) Create(ctx context.Context, a *Account) error {
	const q = `
INSERT INTO users (name, password_hash, role, is_disabled, created_at)
VALUES (?, ?, ?, 0, NOW(6))
`
	res, err := s.db.ExecContext(ctx, q, a.Name, a.PasswordHash, a.Role)
	if err != nil {
		return err
	}
	a.UserID, err = res.LastInsertId()
	return err
}

func (s *Store) Delete(ctx context.Context, id int64) (int64, error) {
	const q = `DELETE FROM users WHERE user_id = ?`
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) Rename(ctx context.Context, id int64, newName string) (int64, error) {
	const q = `UPDATE users SET name = ? WHERE user_id = ?`
	res, err := s.db.ExecContext(ctx, q, newName, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
