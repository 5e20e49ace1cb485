package ledger

import "time"

// Transaction creation request. Amount carries the direction in its sign:
// positive = income, negative = expense. Zero is rejected.
type CreateTransactionRequest struct {
	Amount      int64  `json:"amount" binding:"required"`
	Description string `json:"description" binding:"required"`
}

type TransactionResponse struct {
	TransactionID   int64     `json:"transaction_id"`
	TransactionULID string    `json:"transaction_ulid"`
	Amount          int64     `json:"amount"`
	Description     string    `json:"description"`
	Total           int64     `json:"total"`
	CreatedAt       time.Time `json:"created_at"`
}

type ListTransactionsResult struct {
	Items      []TransactionResponse `json:"items"`
	Total      int64                 `json:"total"`
	NextOffset int                   `json:"next_offset"`
}

type BalanceResponse struct {
	Balance int64 `json:"balance"`
}

type StatisticsResponse struct {
	TotalIncome   int64 `json:"total_income"`
	TotalExpenses int64 `json:"total_expenses"`
	Balance       int64 `json:"balance"`
	Count         int64 `json:"count"`
}
