package consumables

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

type Store struct {
	db *sql.DB
}

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

func (st *Store) Insert(ctx context.Context, m *Consumable) error {
	const q = `INSERT INTO consumables (name, description) VALUES (?, ?)`
	res, err := st.db.ExecContext(ctx, q, m.Name, m.Description)
	if err != nil {
		return err
	}
	m.ConsumableID, err = res.LastInsertId()
	return err
}

func (st *Store) GetByID(ctx context.Context, id int64) (*Consumable, error) {
	const q = `SELECT consumable_id, name, description FROM consumables WHERE consumable_id = ?`
	var m Consumable
	err := st.db.QueryRowContext(ctx, q, id).Scan(&m.ConsumableID, &m.Name, &m.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound("consumable not found")
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (st *Store) List(ctx context.Context, name string, p Page) ([]Consumable, int64, error) {
	var (
		where strings.Builder
		args  []any
	)
	where.WriteString("WHERE 1=1")
	if s := strings.TrimSpace(name); s != "" {
		where.WriteString(" AND name LIKE ?")
		args = append(args, "%"+s+"%")
	}

	listQ := `
SELECT consumable_id, name, description
FROM consumables ` + where.String() + `
ORDER BY consumable_id ASC
LIMIT ? OFFSET ?`
	rows, err := st.db.QueryContext(ctx, listQ, append(args, p.Limit, p.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Consumable
	for rows.Next() {
		var m Consumable
		if err := rows.Scan(&m.ConsumableID, &m.Name, &m.Description); err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := st.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM consumables `+where.String(), args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (st *Store) Update(ctx context.Context, id int64, in UpdateConsumableRequest) (int64, error) {
	var (
		set  []string
		args []any
	)
	if in.Name != nil {
		set = append(set, "name = ?")
		args = append(args, *in.Name)
	}
	if in.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *in.Description)
	}
	if len(set) == 0 {
		var one int
		err := st.db.QueryRowContext(ctx, `SELECT 1 FROM consumables WHERE consumable_id = ?`, id).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 1, err
	}

	q := `UPDATE consumables SET ` + strings.Join(set, ", ") + ` WHERE consumable_id = ?`
	res, err := st.db.ExecContext(ctx, q, append(args, id)...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (st *Store) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := st.db.ExecContext(ctx, `DELETE FROM consumables WHERE consumable_id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
