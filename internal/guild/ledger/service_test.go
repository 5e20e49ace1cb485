package ledger

import (
	"context"
	"testing"
	"time"
)

// fakeStore keeps the append-only log in memory, honoring the store
// contract: each appended entry's total is the previous total plus its
// amount, and entries are never mutated afterwards.
type fakeStore struct {
	entries []Transaction
}

func (f *fakeStore) Append(_ context.Context, t *Transaction) error {
	prev := int64(0)
	if n := len(f.entries); n > 0 {
		prev = f.entries[n-1].Total
	}
	t.TransactionID = int64(len(f.entries) + 1)
	t.Total = prev + t.Amount
	f.entries = append(f.entries, *t)
	return nil
}

func (f *fakeStore) Balance(context.Context) (int64, error) {
	if len(f.entries) == 0 {
		return 0, nil
	}
	return f.entries[len(f.entries)-1].Total, nil
}

func (f *fakeStore) List(_ context.Context, p Page) ([]Transaction, int64, error) {
	// Newest first.
	var out []Transaction
	for i := len(f.entries) - 1; i >= 0; i-- {
		out = append(out, f.entries[i])
	}
	if p.Offset < len(out) {
		out = out[p.Offset:]
	} else {
		out = nil
	}
	if p.Limit > 0 && len(out) > p.Limit {
		out = out[:p.Limit]
	}
	return out, int64(len(f.entries)), nil
}

func (f *fakeStore) Stats(context.Context) (*Statistics, error) {
	var st Statistics
	for _, t := range f.entries {
		if t.Amount > 0 {
			st.TotalIncome += t.Amount
		} else {
			st.TotalExpenses += -t.Amount
		}
	}
	st.Count = int64(len(f.entries))
	balance, _ := f.Balance(context.Background())
	st.Balance = balance
	return &st, nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type seqIDGen struct{ n int }

func (g *seqIDGen) NewULID(time.Time) string {
	g.n++
	return "01TESTULID" + string(rune('A'+g.n-1))
}

func newTestService(store TransactionStore) *Service {
	return &Service{
		store: store,
		clock: fixedClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
		id:    &seqIDGen{},
	}
}

func TestAddValidation(t *testing.T) {
	svc := newTestService(&fakeStore{})

	if _, err := svc.Add(context.Background(), CreateTransactionRequest{Amount: 0, Description: "x"}); err == nil {
		t.Fatal("expected error for zero amount")
	}
	if _, err := svc.Add(context.Background(), CreateTransactionRequest{Amount: 10, Description: "  "}); err == nil {
		t.Fatal("expected error for blank description")
	}

	fs := &fakeStore{}
	svc = newTestService(fs)
	if _, err := svc.Add(context.Background(), CreateTransactionRequest{Amount: 0, Description: "x"}); err == nil {
		t.Fatal("expected error")
	}
	if len(fs.entries) != 0 {
		t.Fatal("rejected entry must not reach the store")
	}
}

func TestRunningTotals(t *testing.T) {
	fs := &fakeStore{}
	svc := newTestService(fs)
	ctx := context.Background()

	amounts := []int64{500, -120, 300, -80, 1}
	var sum int64
	for _, a := range amounts {
		res, err := svc.Add(ctx, CreateTransactionRequest{Amount: a, Description: "entry"})
		if err != nil {
			t.Fatalf("Add(%d): %v", a, err)
		}
		sum += a
		if res.Total != sum {
			t.Fatalf("entry total = %d, want prefix sum %d", res.Total, sum)
		}

		bal, err := svc.Balance(ctx)
		if err != nil {
			t.Fatalf("Balance: %v", err)
		}
		if bal.Balance != sum {
			t.Fatalf("balance = %d, want %d", bal.Balance, sum)
		}
	}
}

func TestStatisticsIdentity(t *testing.T) {
	fs := &fakeStore{}
	svc := newTestService(fs)
	ctx := context.Background()

	for _, a := range []int64{500, -120, 300, -80} {
		if _, err := svc.Add(ctx, CreateTransactionRequest{Amount: a, Description: "entry"}); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	st, err := svc.Statistics(ctx)
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if st.TotalIncome != 800 || st.TotalExpenses != 200 {
		t.Fatalf("income/expenses = %d/%d, want 800/200", st.TotalIncome, st.TotalExpenses)
	}
	if st.TotalIncome-st.TotalExpenses != st.Balance {
		t.Fatalf("income - expenses = %d, balance = %d", st.TotalIncome-st.TotalExpenses, st.Balance)
	}
	if st.Count != 4 {
		t.Fatalf("count = %d, want 4", st.Count)
	}
}

func TestEmptyLedger(t *testing.T) {
	svc := newTestService(&fakeStore{})
	ctx := context.Background()

	bal, err := svc.Balance(ctx)
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if bal.Balance != 0 {
		t.Fatalf("balance = %d, want 0", bal.Balance)
	}

	st, err := svc.Statistics(ctx)
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if st.TotalIncome != 0 || st.TotalExpenses != 0 || st.Balance != 0 || st.Count != 0 {
		t.Fatalf("statistics of empty ledger = %+v", st)
	}
}

func TestHistoryPagination(t *testing.T) {
	fs := &fakeStore{}
	svc := newTestService(fs)
	ctx := context.Background()

	for i := int64(1); i <= 5; i++ {
		if _, err := svc.Add(ctx, CreateTransactionRequest{Amount: i, Description: "entry"}); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	res, err := svc.History(ctx, Page{Limit: 2, Offset: 0})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if res.Total != 5 || len(res.Items) != 2 {
		t.Fatalf("total=%d items=%d, want 5/2", res.Total, len(res.Items))
	}
	// Newest first.
	if res.Items[0].Amount != 5 || res.Items[1].Amount != 4 {
		t.Fatalf("unexpected ordering: %+v", res.Items)
	}
	if res.NextOffset != 2 {
		t.Fatalf("next_offset = %d, want 2", res.NextOffset)
	}

	last, err := svc.History(ctx, Page{Limit: 2, Offset: 4})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(last.Items) != 1 || last.NextOffset != 0 {
		t.Fatalf("last page items=%d next=%d, want 1/0", len(last.Items), last.NextOffset)
	}
}
