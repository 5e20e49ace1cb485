package equipment

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

func (st *Store) Insert(ctx context.Context, m *Equipment) error {
	const q = `INSERT INTO equipments (name, description, max_durability) VALUES (?, ?, ?)`
	res, err := st.db.ExecContext(ctx, q, m.Name, m.Description, m.MaxDurability)
	if err != nil {
		return err
	}
	m.EquipmentID, err = res.LastInsertId()
	return err
}

func (st *Store) GetByID(ctx context.Context, id int64) (*Equipment, int64, error) {
	const q = `
SELECT e.equipment_id, e.name, e.description, e.max_durability,
       (SELECT COUNT(*) FROM equipment_stocks es WHERE es.equipment_id = e.equipment_id)
FROM equipments e
WHERE e.equipment_id = ?`
	var (
		m     Equipment
		count int64
	)
	err := st.db.QueryRowContext(ctx, q, id).Scan(&m.EquipmentID, &m.Name, &m.Description, &m.MaxDurability, &count)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, ErrNotFound("equipment not found")
	}
	if err != nil {
		return nil, 0, err
	}
	return &m, count, nil
}

func (st *Store) List(ctx context.Context, name string, p Page) ([]Equipment, map[int64]int64, int64, error) {
	var (
		where strings.Builder
		args  []any
	)
	where.WriteString("WHERE 1=1")
	if s := strings.TrimSpace(name); s != "" {
		where.WriteString(" AND e.name LIKE ?")
		args = append(args, "%"+s+"%")
	}

	listQ := `
SELECT e.equipment_id, e.name, e.description, e.max_durability,
       COUNT(es.equipment_stock_id)
FROM equipments e
LEFT JOIN equipment_stocks es ON es.equipment_id = e.equipment_id
` + where.String() + `
GROUP BY e.equipment_id
ORDER BY e.equipment_id ASC
LIMIT ? OFFSET ?`
	rows, err := st.db.QueryContext(ctx, listQ, append(args, p.Limit, p.Offset)...)
	if err != nil {
		return nil, nil, 0, err
	}
	defer rows.Close()

	var (
		items  []Equipment
		counts = make(map[int64]int64)
	)
	for rows.Next() {
		var (
			m Equipment
			n int64
		)
		if err := rows.Scan(&m.EquipmentID, &m.Name, &m.Description, &m.MaxDurability, &n); err != nil {
			return nil, nil, 0, err
		}
		items = append(items, m)
		counts[m.EquipmentID] = n
	}
	if err := rows.Err(); err != nil {
		return nil, nil, 0, err
	}

	var total int64
	if err := st.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM equipments e `+where.String(), args...).Scan(&total); err != nil {
		return nil, nil, 0, err
	}
	return items, counts, total, nil
}

func (st *Store) Update(ctx context.Context, id int64, in UpdateEquipmentRequest) (int64, error) {
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
		err := st.db.QueryRowContext(ctx, `SELECT 1 FROM equipments WHERE equipment_id = ?`, id).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 1, err
	}

	q := `UPDATE equipments SET ` + strings.Join(set, ", ") + ` WHERE equipment_id = ?`
	res, err := st.db.ExecContext(ctx, q, append(args, id)...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (st *Store) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := st.db.ExecContext(ctx, `DELETE FROM equipments WHERE equipment_id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// InsertStocks mints count fresh instances, each at the definition's max
// durability and with the given status. Returns the new stock ids.
func (st *Store) InsertStocks(ctx context.Context, equipmentID int64, count int, statusID int64) ([]int64, error) {
	var maxDurability int
	err := st.db.QueryRowContext(ctx,
		`SELECT max_durability FROM equipments WHERE equipment_id = ?`, equipmentID,
	).Scan(&maxDurability)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound("equipment not found")
	}
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, count)
	err = db.RunInTx(ctx, st.db, nil, func(ctx context.Context, tx db.DBTX) error {
		const q = `INSERT INTO equipment_stocks (equipment_id, durability, status_id) VALUES (?, ?, ?)`
		for i := 0; i < count; i++ {
			res, err := tx.ExecContext(ctx, q, equipmentID, maxDurability, statusID)
			if err != nil {
				return err
			}
			id, err := res.LastInsertId()
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (st *Store) GetStock(ctx context.Context, stockID int64) (*Stock, error) {
	const q = `
SELECT equipment_stock_id, equipment_id, durability, status_id
FROM equipment_stocks
WHERE equipment_stock_id = ?`
	var m Stock
	err := st.db.QueryRowContext(ctx, q, stockID).Scan(&m.EquipmentStockID, &m.EquipmentID, &m.Durability, &m.StatusID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound("equipment stock not found")
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (st *Store) ListStocks(ctx context.Context, equipmentID *int64, statusID *int64, p Page) ([]Stock, int64, error) {
	var (
		where strings.Builder
		args  []any
	)
	where.WriteString("WHERE 1=1")
	if equipmentID != nil {
		where.WriteString(" AND equipment_id = ?")
		args = append(args, *equipmentID)
	}
	if statusID != nil {
		where.WriteString(" AND status_id = ?")
		args = append(args, *statusID)
	}

	listQ := `
SELECT equipment_stock_id, equipment_id, durability, status_id
FROM equipment_stocks ` + where.String() + `
ORDER BY equipment_stock_id ASC
LIMIT ? OFFSET ?`
	rows, err := st.db.QueryContext(ctx, listQ, append(args, p.Limit, p.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Stock
	for rows.Next() {
		var m Stock
		if err := rows.Scan(&m.EquipmentStockID, &m.EquipmentID, &m.Durability, &m.StatusID); err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := st.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM equipment_stocks `+where.String(), args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (st *Store) DeleteStock(ctx context.Context, stockID int64) (int64, error) {
	res, err := st.db.ExecContext(ctx, `DELETE FROM equipment_stocks WHERE equipment_stock_id = ?`, stockID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
