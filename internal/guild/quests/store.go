package quests

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	mysql "github.com/go-sql-driver/mysql"

	"github.com/MaxChevalier/LesCapucheDOpale-cloud-sub000/internal/guild/catalog"
	"github.com/MaxChevalier/LesCapucheDOpale-cloud-sub000/internal/guild/ledger"
	"github.com/MaxChevalier/LesCapucheDOpale-cloud-sub000/internal/platform/db"
)

type Store struct {
	db      *sql.DB
	catalog *catalog.Store
	ledger  *ledger.Store
}

func NewStore(conn *sql.DB, cat *catalog.Store, led *ledger.Store) *Store {
	return &Store{db: conn, catalog: cat, ledger: led}
}

// translateFK maps a foreign-key failure to NOT_FOUND: an id that passed the
// existence pre-check can still vanish before the write lands (TOCTOU), and
// callers must see one consistent taxonomy.
func translateFK(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == 1452 {
		return ErrNotFound("referenced id no longer exists")
	}
	return err
}

// lockQuest reads the quest row under FOR UPDATE, serializing every
// transition and assignment mutation on the same quest id. Different quests
// proceed in parallel.
func (s *Store) lockQuest(ctx context.Context, tx db.DBTX, questID int64) (*Quest, error) {
	const q = `
	SELECT quest_id, quest_ulid, name, description, final_date, reward,
	       estimated_duration, recommended_xp, status_id, creator_user_id, created_at
	FROM quests WHERE quest_id = ? FOR UPDATE`
	return s.scanQuest(tx.QueryRowContext(ctx, q, questID))
}

func (s *Store) scanQuest(row *sql.Row) (*Quest, error) {
	var m Quest
	err := row.Scan(
		&m.QuestID, &m.QuestULID, &m.Name, &m.Description, &m.FinalDate, &m.Reward,
		&m.EstimatedDuration, &m.RecommendedXP, &m.StatusID, &m.CreatorUserID, &m.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound("quest not found")
		}
		return nil, err
	}
	m.Status = s.catalog.StatusTag(m.StatusID)
	return &m, nil
}

// guardStatus rejects a locked quest whose current status is outside the
// allowed sources of the attempted action.
func guardStatus(q *Quest, action Action, allowed []catalog.Status) error {
	for _, st := range allowed {
		if q.Status == st {
			return nil
		}
	}
	return ErrInvalidTransition(fmt.Sprintf(
		"cannot %s quest %d from status %s (allowed: %s)",
		action, q.QuestID, q.Status, statusListString(allowed)))
}

func (s *Store) GetQuest(ctx context.Context, questID int64) (*Quest, error) {
	const q = `
	SELECT quest_id, quest_ulid, name, description, final_date, reward,
	       estimated_duration, recommended_xp, status_id, creator_user_id, created_at
	FROM quests WHERE quest_id = ?`
	return s.scanQuest(s.db.QueryRowContext(ctx, q, questID))
}

// CreateQuest inserts the quest plus its initial assignment rows in one
// transaction; a failing assignment insert rolls back the whole create.
func (s *Store) CreateQuest(ctx context.Context, m *Quest, advIDs, stockIDs []int64) error {
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		const q = `
		INSERT INTO quests
		(quest_ulid, name, description, final_date, reward, estimated_duration, recommended_xp, status_id, creator_user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

		res, err := tx.ExecContext(ctx, q,
			m.QuestULID, m.Name, m.Description, m.FinalDate, m.Reward,
			m.EstimatedDuration, m.RecommendedXP,
			s.catalog.StatusID(catalog.StatusWaitingForValidation),
			m.CreatorUserID, m.CreatedAt,
		)
		if err != nil {
			return err
		}
		id, _ := res.LastInsertId()
		m.QuestID = id
		m.Status = catalog.StatusWaitingForValidation

		if err := insertAssignments(ctx, tx, "quest_adventurers", "adventurer_id", m.QuestID, advIDs); err != nil {
			return err
		}
		return insertAssignments(ctx, tx, "quest_equipment_stocks", "equipment_stock_id", m.QuestID, stockIDs)
	})
	return translateFK(err)
}

// UpdateQuest applies a partial update under the quest lock. Any edit while
// the quest has not started re-opens it for validation: the status always
// resets to WAITING_FOR_VALIDATION.
func (s *Store) UpdateQuest(ctx context.Context, questID int64, p UpdatePatch) error {
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		q, err := s.lockQuest(ctx, tx, questID)
		if err != nil {
			return err
		}
		if err := guardStatus(q, ActionUpdate, SourcesFor(ActionUpdate)); err != nil {
			return err
		}

		sets := []string{"status_id = ?"}
		args := []any{s.catalog.StatusID(catalog.StatusWaitingForValidation)}
		if p.Name != nil {
			sets = append(sets, "name = ?")
			args = append(args, *p.Name)
		}
		if p.Description != nil {
			sets = append(sets, "description = ?")
			args = append(args, *p.Description)
		}
		if p.FinalDate != nil {
			sets = append(sets, "final_date = ?")
			args = append(args, *p.FinalDate)
		}
		if p.Reward != nil {
			sets = append(sets, "reward = ?")
			args = append(args, *p.Reward)
		}
		if p.EstimatedDuration != nil {
			sets = append(sets, "estimated_duration = ?")
			args = append(args, *p.EstimatedDuration)
		}
		args = append(args, questID)

		stmt := fmt.Sprintf(`UPDATE quests SET %s WHERE quest_id = ?`, strings.Join(sets, ", "))
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			return err
		}

		if p.ReplaceAdventurers {
			if err := replaceAssignments(ctx, tx, "quest_adventurers", "adventurer_id", questID, p.AdventurerIDs); err != nil {
				return err
			}
		}
		if p.ReplaceStocks {
			if err := replaceAssignments(ctx, tx, "quest_equipment_stocks", "equipment_stock_id", questID, p.EquipmentStockIDs); err != nil {
				return err
			}
		}
		return nil
	})
	return translateFK(err)
}

// ExecTransition flips the status after rechecking the guard under the quest
// lock. The optional recommendedXP accompanies the validate transition.
func (s *Store) ExecTransition(ctx context.Context, questID int64, action Action, to catalog.Status, recommendedXP *int) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		q, err := s.lockQuest(ctx, tx, questID)
		if err != nil {
			return err
		}
		if err := guardStatus(q, action, SourcesFor(action)); err != nil {
			return err
		}

		if recommendedXP != nil {
			_, err = tx.ExecContext(ctx,
				`UPDATE quests SET status_id = ?, recommended_xp = ? WHERE quest_id = ?`,
				s.catalog.StatusID(to), *recommendedXP, questID)
		} else {
			_, err = tx.ExecContext(ctx,
				`UPDATE quests SET status_id = ? WHERE quest_id = ?`,
				s.catalog.StatusID(to), questID)
		}
		if err != nil {
			return err
		}

		// A starting quest takes its equipment out of circulation; an
		// abandoned one hands it back.
		if eff := stockEffectFor(to); eff != stockKeep {
			stockIDs, err := listAssignedIDs(ctx, tx, "quest_equipment_stocks", "equipment_stock_id", questID)
			if err != nil {
				return err
			}
			for _, id := range stockIDs {
				if eff == stockBorrow {
					err = s.catalog.MarkStockBorrowedTx(ctx, tx, id)
				} else {
					err = s.catalog.ReleaseStockTx(ctx, tx, id)
				}
				if err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// ExecFinish closes a started quest in one transaction: status flip, the
// reward entry on the ledger (success only), equipment wear (success only)
// and the release of the assigned stocks either way. Assignment rows stay
// for history.
func (s *Store) ExecFinish(ctx context.Context, questID int64, to catalog.Status, wear int, reward *ledger.Transaction) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		q, err := s.lockQuest(ctx, tx, questID)
		if err != nil {
			return err
		}
		if err := guardStatus(q, ActionFinish, SourcesFor(ActionFinish)); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE quests SET status_id = ? WHERE quest_id = ?`,
			s.catalog.StatusID(to), questID); err != nil {
			return err
		}

		if reward != nil {
			if err := s.ledger.AppendTx(ctx, tx, reward); err != nil {
				return err
			}
		}

		stockIDs, err := listAssignedIDs(ctx, tx, "quest_equipment_stocks", "equipment_stock_id", questID)
		if err != nil {
			return err
		}
		for _, id := range stockIDs {
			if to == catalog.StatusSucceeded {
				err = s.catalog.ApplyWearTx(ctx, tx, id, wear)
			} else {
				err = s.catalog.ReleaseStockTx(ctx, tx, id)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// ===== Assignment mutation =====

func (s *Store) AttachAdventurers(ctx context.Context, questID int64, ids []int64) error {
	return s.mutateAssignments(ctx, questID, func(ctx context.Context, tx db.DBTX) error {
		return insertAssignments(ctx, tx, "quest_adventurers", "adventurer_id", questID, ids)
	})
}

func (s *Store) DetachAdventurers(ctx context.Context, questID int64, ids []int64) error {
	return s.mutateAssignments(ctx, questID, func(ctx context.Context, tx db.DBTX) error {
		return deleteAssignments(ctx, tx, "quest_adventurers", "adventurer_id", questID, ids)
	})
}

func (s *Store) SetAdventurers(ctx context.Context, questID int64, ids []int64) error {
	return s.mutateAssignments(ctx, questID, func(ctx context.Context, tx db.DBTX) error {
		return replaceAssignments(ctx, tx, "quest_adventurers", "adventurer_id", questID, ids)
	})
}

func (s *Store) AttachEquipmentStocks(ctx context.Context, questID int64, ids []int64) error {
	return s.mutateAssignments(ctx, questID, func(ctx context.Context, tx db.DBTX) error {
		return insertAssignments(ctx, tx, "quest_equipment_stocks", "equipment_stock_id", questID, ids)
	})
}

func (s *Store) DetachEquipmentStocks(ctx context.Context, questID int64, ids []int64) error {
	return s.mutateAssignments(ctx, questID, func(ctx context.Context, tx db.DBTX) error {
		return deleteAssignments(ctx, tx, "quest_equipment_stocks", "equipment_stock_id", questID, ids)
	})
}

func (s *Store) SetEquipmentStocks(ctx context.Context, questID int64, ids []int64) error {
	return s.mutateAssignments(ctx, questID, func(ctx context.Context, tx db.DBTX) error {
		return replaceAssignments(ctx, tx, "quest_equipment_stocks", "equipment_stock_id", questID, ids)
	})
}

// mutateAssignments wraps an assignment mutation with the quest lock and the
// eligibility guard shared by attach, detach and set.
func (s *Store) mutateAssignments(ctx context.Context, questID int64, fn func(ctx context.Context, tx db.DBTX) error) error {
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		q, err := s.lockQuest(ctx, tx, questID)
		if err != nil {
			return err
		}
		if err := guardStatus(q, ActionAssign, SourcesFor(ActionAssign)); err != nil {
			return err
		}
		return fn(ctx, tx)
	})
	return translateFK(err)
}

// insertAssignments unions ids into the set. INSERT IGNORE on the composite
// primary key makes attaching an already-attached id a no-op.
func insertAssignments(ctx context.Context, tx db.DBTX, table, column string, questID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	stmt := fmt.Sprintf(`INSERT IGNORE INTO %s (quest_id, %s) VALUES %s`,
		table, column, strings.TrimSuffix(strings.Repeat("(?, ?),", len(ids)), ","))
	args := make([]any, 0, len(ids)*2)
	for _, id := range ids {
		args = append(args, questID, id)
	}
	_, err := tx.ExecContext(ctx, stmt, args...)
	return err
}

// deleteAssignments removes ids from the set; absent ids are no-ops.
func deleteAssignments(ctx context.Context, tx db.DBTX, table, column string, questID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	stmt := fmt.Sprintf(`DELETE FROM %s WHERE quest_id = ? AND %s IN (%s)`,
		table, column, strings.TrimSuffix(strings.Repeat("?,", len(ids)), ","))
	args := make([]any, 0, len(ids)+1)
	args = append(args, questID)
	for _, id := range ids {
		args = append(args, id)
	}
	_, err := tx.ExecContext(ctx, stmt, args...)
	return err
}

// replaceAssignments swaps the whole set for exactly ids (empty clears it).
func replaceAssignments(ctx context.Context, tx db.DBTX, table, column string, questID int64, ids []int64) error {
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE quest_id = ?`, table), questID); err != nil {
		return err
	}
	return insertAssignments(ctx, tx, table, column, questID, ids)
}

func listAssignedIDs(ctx context.Context, tx db.DBTX, table, column string, questID int64) ([]int64, error) {
	stmt := fmt.Sprintf(`SELECT %s FROM %s WHERE quest_id = ? ORDER BY %s`, column, table, column)
	rows, err := tx.QueryContext(ctx, stmt, questID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// ===== Reads for metrics and responses =====

func (s *Store) ListAssignedAdventurers(ctx context.Context, questID int64) ([]AssignedAdventurer, error) {
	const q = `
	SELECT a.adventurer_id, a.daily_rate, a.experience
	FROM quest_adventurers qa
	JOIN adventurers a ON a.adventurer_id = qa.adventurer_id
	WHERE qa.quest_id = ?
	ORDER BY a.adventurer_id`

	rows, err := s.db.QueryContext(ctx, q, questID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AssignedAdventurer
	for rows.Next() {
		var a AssignedAdventurer
		if err := rows.Scan(&a.AdventurerID, &a.DailyRate, &a.Experience); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) ListAssignedStockIDs(ctx context.Context, questID int64) ([]int64, error) {
	return listAssignedIDs(ctx, s.db, "quest_equipment_stocks", "equipment_stock_id", questID)
}

// ===== Listing =====

func (s *Store) ListQuests(ctx context.Context, f QuestFilter, p Page) ([]Quest, int64, error) {
	where := []string{"1=1"}
	args := []any{}
	if f.Status != nil {
		where = append(where, "status_id = ?")
		args = append(args, s.catalog.StatusID(*f.Status))
	}
	if f.CreatorUserID != nil {
		where = append(where, "creator_user_id = ?")
		args = append(args, *f.CreatorUserID)
	}

	order := "DESC"
	if strings.ToLower(p.Order) == "asc" {
		order = "ASC"
	}
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Offset < 0 {
		p.Offset = 0
	}

	stmt := fmt.Sprintf(`
	SELECT quest_id, quest_ulid, name, description, final_date, reward,
	       estimated_duration, recommended_xp, status_id, creator_user_id, created_at
	FROM quests WHERE %s ORDER BY created_at %s, quest_id %s LIMIT ? OFFSET ?`,
		strings.Join(where, " AND "), order, order)

	rows, err := s.db.QueryContext(ctx, stmt, append(args, p.Limit, p.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Quest
	for rows.Next() {
		var m Quest
		if err := rows.Scan(
			&m.QuestID, &m.QuestULID, &m.Name, &m.Description, &m.FinalDate, &m.Reward,
			&m.EstimatedDuration, &m.RecommendedXP, &m.StatusID, &m.CreatorUserID, &m.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		m.Status = s.catalog.StatusTag(m.StatusID)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	cnt := fmt.Sprintf(`SELECT COUNT(*) FROM quests WHERE %s`, strings.Join(where, " AND "))
	if err := s.db.QueryRowContext(ctx, cnt, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// DeleteQuest removes the quest and its assignment rows. Explicit delete
// only; no lifecycle transition ever destroys a quest.
func (s *Store) DeleteQuest(ctx context.Context, questID int64) (int64, error) {
	var affected int64
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM quest_adventurers WHERE quest_id = ?`, questID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM quest_equipment_stocks WHERE quest_id = ?`, questID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM quests WHERE quest_id = ?`, questID)
		if err != nil {
			return err
		}
		affected, _ = res.RowsAffected()
		return nil
	})
	return affected, err
}
