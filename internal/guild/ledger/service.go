package ledger

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	ulid "github.com/oklog/ulid/v2"
)

// ===== Error model (same shape as the quests package) =====

type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code
	Message string
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

func ToHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return 400
		case CodeNotFound:
			return 404
		default:
			return 500
		}
	}
	return 500
}

// ===== Clock & ID =====

type Clock interface{ Now() time.Time }
type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type IDGen interface{ NewULID(t time.Time) string }
type ulidGen struct{}

func (ulidGen) NewULID(t time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// ===== Store seam =====

// TransactionStore is what the service needs from storage. Append must be
// serialized: the implementation owns the transaction boundary that makes
// "read last total, add, insert" atomic.
type TransactionStore interface {
	Append(ctx context.Context, t *Transaction) error
	Balance(ctx context.Context) (int64, error)
	List(ctx context.Context, p Page) ([]Transaction, int64, error)
	Stats(ctx context.Context) (*Statistics, error)
}

// ===== Service =====

type Service struct {
	store TransactionStore
	clock Clock
	id    IDGen
}

func NewService(conn *sql.DB) *Service {
	return &Service{store: NewStore(conn), clock: realClock{}, id: ulidGen{}}
}

// Add appends one entry. Entries are immutable once written; corrections are
// new entries with the opposite sign.
func (s *Service) Add(ctx context.Context, in CreateTransactionRequest) (TransactionResponse, error) {
	if in.Amount == 0 {
		return TransactionResponse{}, ErrInvalid("amount must be non-zero")
	}
	if strings.TrimSpace(in.Description) == "" {
		return TransactionResponse{}, ErrInvalid("description is required")
	}

	now := s.clock.Now()
	t := &Transaction{
		TransactionULID: s.id.NewULID(now),
		Amount:          in.Amount,
		Description:     in.Description,
		CreatedAt:       now,
	}

	if err := s.store.Append(ctx, t); err != nil {
		return TransactionResponse{}, err
	}
	return buildTransactionResponse(t), nil
}

func (s *Service) Balance(ctx context.Context) (BalanceResponse, error) {
	balance, err := s.store.Balance(ctx)
	if err != nil {
		return BalanceResponse{}, err
	}
	return BalanceResponse{Balance: balance}, nil
}

func (s *Service) History(ctx context.Context, p Page) (ListTransactionsResult, error) {
	items, total, err := s.store.List(ctx, p)
	if err != nil {
		return ListTransactionsResult{}, err
	}

	res := make([]TransactionResponse, 0, len(items))
	for i := range items {
		res = append(res, buildTransactionResponse(&items[i]))
	}

	next := p.Offset + p.Limit
	if next >= int(total) {
		next = 0
	} // 0 = end of list
	return ListTransactionsResult{Items: res, Total: total, NextOffset: next}, nil
}

func (s *Service) Statistics(ctx context.Context) (StatisticsResponse, error) {
	st, err := s.store.Stats(ctx)
	if err != nil {
		return StatisticsResponse{}, err
	}
	return StatisticsResponse{
		TotalIncome:   st.TotalIncome,
		TotalExpenses: st.TotalExpenses,
		Balance:       st.Balance,
		Count:         st.Count,
	}, nil
}

func buildTransactionResponse(t *Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:   t.TransactionID,
		TransactionULID: t.TransactionULID,
		Amount:          t.Amount,
		Description:     t.Description,
		Total:           t.Total,
		CreatedAt:       t.CreatedAt,
	}
}
