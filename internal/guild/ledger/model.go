package ledger

import "time"

// Transaction is one immutable row of the guild's cash ledger. Total is the
// running balance immediately after this entry; it is written once at insert
// time and never recomputed by summing the table.
type Transaction struct {
	TransactionID   int64
	TransactionULID string
	Amount          int64 // minor currency units; positive = income, negative = expense
	Description     string
	Total           int64
	CreatedAt       time.Time
}

// Statistics partitions the whole ledger by the sign of Amount.
type Statistics struct {
	TotalIncome   int64
	TotalExpenses int64 // absolute value of the negative amounts
	Balance       int64
	Count         int64
}

type Page struct {
	Limit  int
	Offset int
}
