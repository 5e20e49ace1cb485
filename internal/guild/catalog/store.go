package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/MaxChevalier/LesCapucheDOpale-cloud-sub000/internal/platform/db"
)

// Store is the Catalog Store collaborator of the quest engine: batch
// existence checks for adventurers and equipment stocks, the seeded status
// table, and durability reads/writes on equipment stocks.
type Store struct {
	db *sql.DB

	// name -> status_id, filled by Seed and read-only afterwards.
	statusIDs map[Status]int64
	statusTag map[int64]Status
}

func NewStore(conn *sql.DB) *Store {
	return &Store{
		db:        conn,
		statusIDs: make(map[Status]int64),
		statusTag: make(map[int64]Status),
	}
}

// Seed inserts the fixed status rows if missing and caches their ids.
// Idempotent; must run once before the HTTP layer starts serving.
func (s *Store) Seed(ctx context.Context) error {
	const ins = `INSERT IGNORE INTO statuses (name) VALUES (?)`
	for _, st := range SeededStatuses {
		if _, err := s.db.ExecContext(ctx, ins, string(st)); err != nil {
			return fmt.Errorf("failed to seed status %s: %w", st, err)
		}
	}

	rows, err := s.db.QueryContext(ctx, `SELECT status_id, name FROM statuses`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return err
		}
		s.statusIDs[Status(name)] = id
		s.statusTag[id] = Status(name)
	}
	return rows.Err()
}

// StatusID resolves a seeded tag to its row id. Panics on an unseeded tag
// because that is a programming error, not runtime input.
func (s *Store) StatusID(tag Status) int64 {
	id, ok := s.statusIDs[tag]
	if !ok {
		panic(fmt.Sprintf("catalog: status %q not seeded", tag))
	}
	return id
}

// LookupStatusID is the non-panicking variant for runtime input.
func (s *Store) LookupStatusID(tag Status) (int64, bool) {
	id, ok := s.statusIDs[tag]
	return id, ok
}

// StatusTag resolves a row id back to its tag ("" for catalog rows that are
// not part of the seeded set).
func (s *Store) StatusTag(id int64) Status {
	return s.statusTag[id]
}

// FilterAdventurerIDs returns the subset of ids that exist, in no
// particular order. Duplicate input ids collapse.
func (s *Store) FilterAdventurerIDs(ctx context.Context, ids []int64) ([]int64, error) {
	return s.filterIDs(ctx, `SELECT adventurer_id FROM adventurers WHERE adventurer_id IN (%s)`, ids)
}

// FilterEquipmentStockIDs returns the subset of ids that exist.
func (s *Store) FilterEquipmentStockIDs(ctx context.Context, ids []int64) ([]int64, error) {
	return s.filterIDs(ctx, `SELECT equipment_stock_id FROM equipment_stocks WHERE equipment_stock_id IN (%s)`, ids)
}

func (s *Store) filterIDs(ctx context.Context, queryTmpl string, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(queryTmpl, placeholders), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var found []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found = append(found, id)
	}
	return found, rows.Err()
}

// GetEquipmentStock reads one stock row joined with its equipment definition.
func (s *Store) GetEquipmentStock(ctx context.Context, stockID int64) (*EquipmentStock, error) {
	const q = `
	SELECT es.equipment_stock_id, es.equipment_id, es.durability, e.max_durability, es.status_id
	FROM equipment_stocks es
	JOIN equipments e ON e.equipment_id = es.equipment_id
	WHERE es.equipment_stock_id = ?`

	var m EquipmentStock
	err := s.db.QueryRowContext(ctx, q, stockID).Scan(
		&m.EquipmentStockID, &m.EquipmentID, &m.Durability, &m.MaxDurability, &m.StatusID,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// applyWear returns the durability and status a stock ends at after one use:
// wear subtracts, floored at zero, and a stock worn down to zero is BROKEN,
// otherwise it goes back to AVAILABLE.
func applyWear(durability, wear int) (int, Status) {
	d := durability - wear
	if d <= 0 {
		return 0, StatusBroken
	}
	return d, StatusAvailable
}

// ApplyWearTx decrements durability within a caller-owned transaction. The
// stock row is locked first so the read-modify-write stays atomic.
func (s *Store) ApplyWearTx(ctx context.Context, tx db.DBTX, stockID int64, wear int) error {
	const sel = `SELECT durability FROM equipment_stocks WHERE equipment_stock_id = ? FOR UPDATE`
	var durability int
	if err := tx.QueryRowContext(ctx, sel, stockID).Scan(&durability); err != nil {
		return err
	}

	d, status := applyWear(durability, wear)
	const upd = `UPDATE equipment_stocks SET durability = ?, status_id = ? WHERE equipment_stock_id = ?`
	_, err := tx.ExecContext(ctx, upd, d, s.StatusID(status), stockID)
	return err
}

// ReleaseStockTx marks a stock AVAILABLE again (keeps BROKEN as is).
func (s *Store) ReleaseStockTx(ctx context.Context, tx db.DBTX, stockID int64) error {
	const q = `UPDATE equipment_stocks SET status_id = ? WHERE equipment_stock_id = ? AND status_id <> ?`
	_, err := tx.ExecContext(ctx, q, s.StatusID(StatusAvailable), stockID, s.StatusID(StatusBroken))
	return err
}

// MarkStockBorrowedTx flags a stock as committed to a started quest.
func (s *Store) MarkStockBorrowedTx(ctx context.Context, tx db.DBTX, stockID int64) error {
	const q = `UPDATE equipment_stocks SET status_id = ? WHERE equipment_stock_id = ?`
	_, err := tx.ExecContext(ctx, q, s.StatusID(StatusBorrowed), stockID)
	return err
}

// Repair resets durability to the equipment's max and the status to
// AVAILABLE. Returns the number of rows touched (0 = unknown stock).
func (s *Store) Repair(ctx context.Context, stockID int64) (int64, error) {
	const q = `
	UPDATE equipment_stocks es
	JOIN equipments e ON e.equipment_id = es.equipment_id
	SET es.durability = e.max_durability, es.status_id = ?
	WHERE es.equipment_stock_id = ?`

	res, err := s.db.ExecContext(ctx, q, s.StatusID(StatusAvailable), stockID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
