package adventurers

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/MaxChevalier/LesCapucheDOpale-cloud-sub000/internal/platform/db"
)

type Store struct {
	db *sql.DB
}

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

func (st *Store) Insert(ctx context.Context, m *Adventurer) error {
	const q = `
INSERT INTO adventurers (name, speciality_id, daily_rate, experience)
VALUES (?, ?, ?, ?)`
	res, err := st.db.ExecContext(ctx, q, m.Name, m.SpecialityID, m.DailyRate, m.Experience)
	if err != nil {
		return err
	}
	m.AdventurerID, err = res.LastInsertId()
	return err
}

func (st *Store) GetByID(ctx context.Context, id int64) (*Adventurer, error) {
	const q = `
SELECT adventurer_id, name, speciality_id, daily_rate, experience
FROM adventurers
WHERE adventurer_id = ?`
	var m Adventurer
	err := st.db.QueryRowContext(ctx, q, id).Scan(
		&m.AdventurerID, &m.Name, &m.SpecialityID, &m.DailyRate, &m.Experience,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound("adventurer not found")
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (st *Store) List(ctx context.Context, q SearchQuery, p Page) ([]Adventurer, int64, error) {
	var (
		where strings.Builder
		args  []any
	)
	where.WriteString("WHERE 1=1")
	if s := strings.TrimSpace(q.Name); s != "" {
		where.WriteString(" AND name LIKE ?")
		args = append(args, "%"+s+"%")
	}
	if q.SpecialityID != nil {
		where.WriteString(" AND speciality_id = ?")
		args = append(args, *q.SpecialityID)
	}

	order := "adventurer_id ASC"
	if p.Order == "name" {
		order = "name ASC"
	}

	listQ := `
SELECT adventurer_id, name, speciality_id, daily_rate, experience
FROM adventurers ` + where.String() + `
ORDER BY ` + order + `
LIMIT ? OFFSET ?`
	rows, err := st.db.QueryContext(ctx, listQ, append(args, p.Limit, p.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Adventurer
	for rows.Next() {
		var m Adventurer
		if err := rows.Scan(&m.AdventurerID, &m.Name, &m.SpecialityID, &m.DailyRate, &m.Experience); err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	countQ := `SELECT COUNT(*) FROM adventurers ` + where.String()
	var total int64
	if err := st.db.QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (st *Store) Update(ctx context.Context, id int64, in UpdateAdventurerRequest) (int64, error) {
	var (
		set  []string
		args []any
	)
	if in.Name != nil {
		set = append(set, "name = ?")
		args = append(args, *in.Name)
	}
	if in.SpecialityID != nil {
		set = append(set, "speciality_id = ?")
		args = append(args, *in.SpecialityID)
	}
	if in.DailyRate != nil {
		set = append(set, "daily_rate = ?")
		args = append(args, *in.DailyRate)
	}
	if in.Experience != nil {
		set = append(set, "experience = ?")
		args = append(args, *in.Experience)
	}
	if len(set) == 0 {
		// nothing to change, still report whether the row exists
		var one int
		err := st.db.QueryRowContext(ctx, `SELECT 1 FROM adventurers WHERE adventurer_id = ?`, id).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 1, err
	}

	q := `UPDATE adventurers SET ` + strings.Join(set, ", ") + ` WHERE adventurer_id = ?`
	res, err := st.db.ExecContext(ctx, q, append(args, id)...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (st *Store) Delete(ctx context.Context, id int64) (int64, error) {
	var affected int64
	err := db.RunInTx(ctx, st.db, nil, func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM adventurer_equipments WHERE adventurer_id = ?`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM adventurer_consumables WHERE adventurer_id = ?`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM adventurers WHERE adventurer_id = ?`, id)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	return affected, err
}

func (st *Store) ReplaceEquipmentTags(ctx context.Context, id int64, ids []int64) error {
	return st.replaceTags(ctx, "adventurer_equipments", "equipment_id", id, ids)
}

func (st *Store) ReplaceConsumableTags(ctx context.Context, id int64, ids []int64) error {
	return st.replaceTags(ctx, "adventurer_consumables", "consumable_id", id, ids)
}

func (st *Store) replaceTags(ctx context.Context, table, column string, id int64, ids []int64) error {
	return db.RunInTx(ctx, st.db, nil, func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE adventurer_id = ?`, id); err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		var (
			sb   strings.Builder
			args []any
		)
		sb.WriteString(`INSERT IGNORE INTO ` + table + ` (adventurer_id, ` + column + `) VALUES `)
		for i, v := range ids {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("(?, ?)")
			args = append(args, id, v)
		}
		_, err := tx.ExecContext(ctx, sb.String(), args...)
		return err
	})
}

func (st *Store) ListEquipmentTags(ctx context.Context, id int64) ([]int64, error) {
	return st.listTags(ctx, "adventurer_equipments", "equipment_id", id)
}

func (st *Store) ListConsumableTags(ctx context.Context, id int64) ([]int64, error) {
	return st.listTags(ctx, "adventurer_consumables", "consumable_id", id)
}

func (st *Store) listTags(ctx context.Context, table, column string, id int64) ([]int64, error) {
	q := `SELECT ` + column + ` FROM ` + table + ` WHERE adventurer_id = ? ORDER BY ` + column
	rows, err := st.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		ids = append(ids, v)
	}
	return ids, rows.Err()
}
