package ledger

import (
	"context"
	"database/sql"

	"github.com/MaxChevalier/LesCapucheDOpale-cloud-sub000/internal/platform/db"
)

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

// AppendTx runs the read-modify-write inside a caller-owned transaction:
// lock the newest row, derive the new running total, insert. Locking the
// last row serializes concurrent appends; two writers racing here would
// otherwise both read the same previous total. On an empty table there is no
// row to lock and the flow relies on InnoDB's REPEATABLE READ gap locking to
// abort one of two racing first appends; under READ COMMITTED that race
// would silently produce inconsistent totals.
func (s *Store) AppendTx(ctx context.Context, tx db.DBTX, t *Transaction) error {
	const last = `SELECT total FROM transactions ORDER BY transaction_id DESC LIMIT 1 FOR UPDATE`
	var prev int64
	if err := tx.QueryRowContext(ctx, last).Scan(&prev); err != nil && err != sql.ErrNoRows {
		return err
	}
	t.Total = prev + t.Amount

	const ins = `
	INSERT INTO transactions (transaction_ulid, amount, description, total, created_at)
	VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, ins, t.TransactionULID, t.Amount, t.Description, t.Total, t.CreatedAt)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	t.TransactionID = id
	return nil
}

func (s *Store) Append(ctx context.Context, t *Transaction) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		return s.AppendTx(ctx, tx, t)
	})
}

// Balance is the total of the newest entry, 0 for an empty ledger. O(1).
func (s *Store) Balance(ctx context.Context) (int64, error) {
	const q = `SELECT total FROM transactions ORDER BY transaction_id DESC LIMIT 1`
	var total int64
	if err := s.db.QueryRowContext(ctx, q).Scan(&total); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, err
	}
	return total, nil
}

// List returns entries newest first plus the total row count.
func (s *Store) List(ctx context.Context, p Page) ([]Transaction, int64, error) {
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Offset < 0 {
		p.Offset = 0
	}

	const q = `
	SELECT transaction_id, transaction_ulid, amount, description, total, created_at
	FROM transactions
	ORDER BY created_at DESC, transaction_id DESC
	LIMIT ? OFFSET ?`

	rows, err := s.db.QueryContext(ctx, q, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.TransactionID, &t.TransactionULID, &t.Amount, &t.Description, &t.Total, &t.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Stats aggregates income, expenses, balance and count in one pass. This is
// the only place allowed to re-sum the table, and only for the income and
// expense partitions; the balance still comes from the newest total.
func (s *Store) Stats(ctx context.Context) (*Statistics, error) {
	const q = `
	SELECT
		COALESCE(SUM(CASE WHEN amount > 0 THEN amount ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN amount < 0 THEN -amount ELSE 0 END), 0),
		COUNT(*)
	FROM transactions`

	var st Statistics
	if err := s.db.QueryRowContext(ctx, q).Scan(&st.TotalIncome, &st.TotalExpenses, &st.Count); err != nil {
		return nil, err
	}

	balance, err := s.Balance(ctx)
	if err != nil {
		return nil, err
	}
	st.Balance = balance
	return &st, nil
}
