package quests

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/MaxChevalier/LesCapucheDOpale-cloud-sub000/internal/guild/catalog"
	"github.com/MaxChevalier/LesCapucheDOpale-cloud-sub000/internal/guild/ledger"
)

// ===== fakes =====

// fakeCatalog knows a fixed set of adventurers and stocks.
type fakeCatalog struct {
	adventurers map[int64]AssignedAdventurer
	stocks      map[int64]struct{}
}

func (f *fakeCatalog) FilterAdventurerIDs(_ context.Context, ids []int64) ([]int64, error) {
	var found []int64
	for _, id := range ids {
		if _, ok := f.adventurers[id]; ok {
			found = append(found, id)
		}
	}
	return found, nil
}

func (f *fakeCatalog) FilterEquipmentStockIDs(_ context.Context, ids []int64) ([]int64, error) {
	var found []int64
	for _, id := range ids {
		if _, ok := f.stocks[id]; ok {
			found = append(found, id)
		}
	}
	return found, nil
}

type finishCall struct {
	to     catalog.Status
	wear   int
	reward *ledger.Transaction
}

// fakeQuestStore honors the store contract in memory, reusing the package's
// own guard and stock-effect mapping so the tests exercise the real
// transition table.
type fakeQuestStore struct {
	catalog     *fakeCatalog
	nextID      int64
	quests      map[int64]*Quest
	advSets     map[int64]map[int64]struct{}
	stockSet    map[int64]map[int64]struct{}
	stockStatus map[int64]catalog.Status
	finishes    []finishCall
}

func newFakeQuestStore(cat *fakeCatalog) *fakeQuestStore {
	f := &fakeQuestStore{
		catalog:     cat,
		quests:      make(map[int64]*Quest),
		advSets:     make(map[int64]map[int64]struct{}),
		stockSet:    make(map[int64]map[int64]struct{}),
		stockStatus: make(map[int64]catalog.Status),
	}
	for id := range cat.stocks {
		f.stockStatus[id] = catalog.StatusAvailable
	}
	return f
}

func (f *fakeQuestStore) GetQuest(_ context.Context, id int64) (*Quest, error) {
	q, ok := f.quests[id]
	if !ok {
		return nil, ErrNotFound("quest not found")
	}
	cp := *q
	return &cp, nil
}

func (f *fakeQuestStore) CreateQuest(_ context.Context, m *Quest, advIDs, stockIDs []int64) error {
	f.nextID++
	m.QuestID = f.nextID
	m.Status = catalog.StatusWaitingForValidation
	cp := *m
	f.quests[m.QuestID] = &cp
	f.advSets[m.QuestID] = idSet(advIDs)
	f.stockSet[m.QuestID] = idSet(stockIDs)
	return nil
}

func (f *fakeQuestStore) UpdateQuest(_ context.Context, id int64, p UpdatePatch) error {
	q, ok := f.quests[id]
	if !ok {
		return ErrNotFound("quest not found")
	}
	if err := guardStatus(q, ActionUpdate, SourcesFor(ActionUpdate)); err != nil {
		return err
	}
	q.Status = catalog.StatusWaitingForValidation
	if p.Name != nil {
		q.Name = *p.Name
	}
	if p.Description != nil {
		q.Description.String, q.Description.Valid = *p.Description, true
	}
	if p.FinalDate != nil {
		q.FinalDate.Time, q.FinalDate.Valid = *p.FinalDate, true
	}
	if p.Reward != nil {
		q.Reward = *p.Reward
	}
	if p.EstimatedDuration != nil {
		q.EstimatedDuration = *p.EstimatedDuration
	}
	if p.ReplaceAdventurers {
		f.advSets[id] = idSet(p.AdventurerIDs)
	}
	if p.ReplaceStocks {
		f.stockSet[id] = idSet(p.EquipmentStockIDs)
	}
	return nil
}

func (f *fakeQuestStore) ExecTransition(_ context.Context, id int64, action Action, to catalog.Status, recommendedXP *int) error {
	q, ok := f.quests[id]
	if !ok {
		return ErrNotFound("quest not found")
	}
	if err := guardStatus(q, action, SourcesFor(action)); err != nil {
		return err
	}
	q.Status = to
	if recommendedXP != nil {
		q.RecommendedXP = *recommendedXP
	}
	if eff := stockEffectFor(to); eff != stockKeep {
		for st := range f.stockSet[id] {
			if eff == stockBorrow {
				f.stockStatus[st] = catalog.StatusBorrowed
			} else {
				f.stockStatus[st] = catalog.StatusAvailable
			}
		}
	}
	return nil
}

func (f *fakeQuestStore) ExecFinish(_ context.Context, id int64, to catalog.Status, wear int, reward *ledger.Transaction) error {
	q, ok := f.quests[id]
	if !ok {
		return ErrNotFound("quest not found")
	}
	if err := guardStatus(q, ActionFinish, SourcesFor(ActionFinish)); err != nil {
		return err
	}
	q.Status = to
	f.finishes = append(f.finishes, finishCall{to: to, wear: wear, reward: reward})
	return nil
}

func (f *fakeQuestStore) mutate(id int64, fn func(q *Quest) error) error {
	q, ok := f.quests[id]
	if !ok {
		return ErrNotFound("quest not found")
	}
	if err := guardStatus(q, ActionAssign, SourcesFor(ActionAssign)); err != nil {
		return err
	}
	return fn(q)
}

func (f *fakeQuestStore) AttachAdventurers(_ context.Context, id int64, ids []int64) error {
	return f.mutate(id, func(*Quest) error {
		for _, a := range ids {
			f.advSets[id][a] = struct{}{}
		}
		return nil
	})
}

func (f *fakeQuestStore) DetachAdventurers(_ context.Context, id int64, ids []int64) error {
	return f.mutate(id, func(*Quest) error {
		for _, a := range ids {
			delete(f.advSets[id], a)
		}
		return nil
	})
}

func (f *fakeQuestStore) SetAdventurers(_ context.Context, id int64, ids []int64) error {
	return f.mutate(id, func(*Quest) error {
		f.advSets[id] = idSet(ids)
		return nil
	})
}

func (f *fakeQuestStore) AttachEquipmentStocks(_ context.Context, id int64, ids []int64) error {
	return f.mutate(id, func(*Quest) error {
		for _, st := range ids {
			f.stockSet[id][st] = struct{}{}
		}
		return nil
	})
}

func (f *fakeQuestStore) DetachEquipmentStocks(_ context.Context, id int64, ids []int64) error {
	return f.mutate(id, func(*Quest) error {
		for _, st := range ids {
			delete(f.stockSet[id], st)
		}
		return nil
	})
}

func (f *fakeQuestStore) SetEquipmentStocks(_ context.Context, id int64, ids []int64) error {
	return f.mutate(id, func(*Quest) error {
		f.stockSet[id] = idSet(ids)
		return nil
	})
}

func (f *fakeQuestStore) ListAssignedAdventurers(_ context.Context, id int64) ([]AssignedAdventurer, error) {
	var out []AssignedAdventurer
	for a := range f.advSets[id] {
		out = append(out, f.catalog.adventurers[a])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AdventurerID < out[j].AdventurerID })
	return out, nil
}

func (f *fakeQuestStore) ListAssignedStockIDs(_ context.Context, id int64) ([]int64, error) {
	var out []int64
	for st := range f.stockSet[id] {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (f *fakeQuestStore) ListQuests(_ context.Context, _ QuestFilter, _ Page) ([]Quest, int64, error) {
	var out []Quest
	for _, q := range f.quests {
		out = append(out, *q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestID < out[j].QuestID })
	return out, int64(len(out)), nil
}

func (f *fakeQuestStore) DeleteQuest(_ context.Context, id int64) (int64, error) {
	if _, ok := f.quests[id]; !ok {
		return 0, nil
	}
	delete(f.quests, id)
	delete(f.advSets, id)
	delete(f.stockSet, id)
	return 1, nil
}

func idSet(ids []int64) map[int64]struct{} {
	m := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

// ===== harness =====

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type seqIDGen struct{ n int }

func (g *seqIDGen) NewULID(time.Time) string {
	g.n++
	return "01QUESTULID" + string(rune('A'+g.n-1))
}

func newTestService() (*Service, *fakeQuestStore, *fakeCatalog) {
	cat := &fakeCatalog{
		adventurers: map[int64]AssignedAdventurer{
			1: {AdventurerID: 1, DailyRate: 100, Experience: 50},
			2: {AdventurerID: 2, DailyRate: 150, Experience: 30},
			3: {AdventurerID: 3, DailyRate: 200, Experience: 120},
		},
		stocks: map[int64]struct{}{10: {}, 11: {}},
	}
	store := newFakeQuestStore(cat)
	svc := &Service{
		store:   store,
		catalog: cat,
		clock:   fixedClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
		id:      &seqIDGen{},
		wear:    10,
	}
	return svc, store, cat
}

func mustCreate(t *testing.T, svc *Service, in CreateQuestRequest) QuestResponse {
	t.Helper()
	res, err := svc.Create(context.Background(), 7, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return res
}

func wantCode(t *testing.T, err error, code Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	api, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if api.Code != code {
		t.Fatalf("error code = %s, want %s (%v)", api.Code, code, err)
	}
}

// ===== tests =====

func TestCreateQuest(t *testing.T) {
	svc, store, _ := newTestService()

	res := mustCreate(t, svc, CreateQuestRequest{
		Name:              "Escort the caravan",
		Reward:            500,
		EstimatedDuration: 5,
		AdventurerIDs:     []int64{1, 2},
		EquipmentStockIDs: []int64{10},
	})

	if res.Status != string(catalog.StatusWaitingForValidation) {
		t.Fatalf("status = %s, want WAITING_FOR_VALIDATION", res.Status)
	}
	if res.CreatorUserID != 7 {
		t.Fatalf("creator = %d, want 7", res.CreatorUserID)
	}
	// rates 100 + 150 over 5 days
	if res.Cost != 1250 {
		t.Fatalf("cost = %d, want 1250", res.Cost)
	}
	if res.CostDenominations.Hundreds != 12 || res.CostDenominations.Tens != 5 || res.CostDenominations.Units != 0 {
		t.Fatalf("cost denominations = %+v", res.CostDenominations)
	}
	// recommendedXP not set yet, so no success estimate.
	if res.SuccessRate != 0 {
		t.Fatalf("success rate = %v, want 0 before validation", res.SuccessRate)
	}
	if len(store.quests) != 1 {
		t.Fatalf("store has %d quests, want 1", len(store.quests))
	}
}

func TestCreateQuestValidation(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, 7, CreateQuestRequest{Name: "  ", EstimatedDuration: 5})
	wantCode(t, err, CodeInvalidArgument)

	_, err = svc.Create(ctx, 7, CreateQuestRequest{Name: "x", EstimatedDuration: 0})
	wantCode(t, err, CodeInvalidArgument)

	_, err = svc.Create(ctx, 7, CreateQuestRequest{Name: "x", EstimatedDuration: 5, Reward: -1})
	wantCode(t, err, CodeInvalidArgument)

	d := "03/01/2024"
	_, err = svc.Create(ctx, 7, CreateQuestRequest{Name: "x", EstimatedDuration: 5, FinalDate: &d})
	wantCode(t, err, CodeInvalidArgument)

	if len(store.quests) != 0 {
		t.Fatal("no quest may be created on validation failure")
	}
}

func TestCreateQuestMissingIDs(t *testing.T) {
	svc, store, _ := newTestService()

	_, err := svc.Create(context.Background(), 7, CreateQuestRequest{
		Name:              "x",
		EstimatedDuration: 5,
		AdventurerIDs:     []int64{1, 99, 42},
	})
	wantCode(t, err, CodeNotFound)
	// Every missing id is named.
	if msg := err.Error(); !strings.Contains(msg, "42") || !strings.Contains(msg, "99") {
		t.Fatalf("error must name all missing ids: %v", msg)
	}
	if len(store.quests) != 0 {
		t.Fatal("create must be rejected as a whole")
	}

	_, err = svc.Create(context.Background(), 7, CreateQuestRequest{
		Name:              "x",
		EstimatedDuration: 5,
		EquipmentStockIDs: []int64{10, 77},
	})
	wantCode(t, err, CodeNotFound)
	if !strings.Contains(err.Error(), "77") {
		t.Fatalf("error must name the missing stock id: %v", err)
	}
}

func TestUpdateResetsStatus(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	res := mustCreate(t, svc, CreateQuestRequest{Name: "x", EstimatedDuration: 5})
	if _, err := svc.Validate(ctx, res.QuestID, 100, RoleGuildMaster); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	name := "y"
	upd, err := svc.Update(ctx, res.QuestID, UpdateQuestRequest{Name: &name})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if upd.Status != string(catalog.StatusWaitingForValidation) {
		t.Fatalf("status after edit = %s, want WAITING_FOR_VALIDATION", upd.Status)
	}
	if upd.Name != "y" {
		t.Fatalf("name = %s, want y", upd.Name)
	}
	// Omitted fields stay untouched.
	if upd.EstimatedDuration != 5 {
		t.Fatalf("estimated_duration = %d, want 5", upd.EstimatedDuration)
	}

	// Updating a started quest is not allowed.
	q := store.quests[res.QuestID]
	q.Status = catalog.StatusStarted
	_, err = svc.Update(ctx, res.QuestID, UpdateQuestRequest{Name: &name})
	wantCode(t, err, CodeInvalidTransition)
}

func TestLifecycleHappyPath(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	res := mustCreate(t, svc, CreateQuestRequest{Name: "x", Reward: 500, EstimatedDuration: 5, AdventurerIDs: []int64{1, 2}})
	id := res.QuestID

	v, err := svc.Validate(ctx, id, 100, RoleGuildMaster)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if v.Status != string(catalog.StatusValidated) || v.RecommendedXP != 100 {
		t.Fatalf("after validate: status=%s xp=%d", v.Status, v.RecommendedXP)
	}
	// Contributions 0.5 + 0.3 over denominator 1.6.
	if v.SuccessRate != 0.40 {
		t.Fatalf("success rate = %v, want 0.40", v.SuccessRate)
	}

	st, err := svc.Start(ctx, id)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if st.Status != string(catalog.StatusStarted) {
		t.Fatalf("after start: %s", st.Status)
	}

	fin, err := svc.Finish(ctx, id, true)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if fin.Status != string(catalog.StatusSucceeded) {
		t.Fatalf("after finish: %s", fin.Status)
	}
}

func TestTransitionGuards(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	res := mustCreate(t, svc, CreateQuestRequest{Name: "x", EstimatedDuration: 5})
	id := res.QuestID

	// Start from WAITING_FOR_VALIDATION is invalid.
	_, err := svc.Start(ctx, id)
	wantCode(t, err, CodeInvalidTransition)

	// Finish before start is invalid.
	_, err = svc.Finish(ctx, id, true)
	wantCode(t, err, CodeInvalidTransition)

	// Invalidate a non-validated quest is invalid.
	_, err = svc.Invalidate(ctx, id, RoleGuildMaster)
	wantCode(t, err, CodeInvalidTransition)

	// Terminal statuses reject everything.
	store.quests[id].Status = catalog.StatusSucceeded
	_, err = svc.Validate(ctx, id, 100, RoleGuildMaster)
	wantCode(t, err, CodeInvalidTransition)
	_, err = svc.Refuse(ctx, id, RoleGuildMaster)
	wantCode(t, err, CodeInvalidTransition)

	// Unknown quest.
	_, err = svc.Start(ctx, 9999)
	wantCode(t, err, CodeNotFound)
}

func TestRoleGating(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	res := mustCreate(t, svc, CreateQuestRequest{Name: "x", EstimatedDuration: 5})
	id := res.QuestID

	_, err := svc.Validate(ctx, id, 100, RoleClient)
	wantCode(t, err, CodeForbidden)
	if store.quests[id].Status != catalog.StatusWaitingForValidation {
		t.Fatal("forbidden call must not change the status")
	}

	_, err = svc.Refuse(ctx, id, RoleAdventurer)
	wantCode(t, err, CodeForbidden)

	if _, err := svc.Validate(ctx, id, 100, RoleGuildMaster); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if _, err := svc.Start(ctx, id); err != nil {
		t.Fatalf("Start: %v", err)
	}

	_, err = svc.Abandon(ctx, id, RoleGuildMaster)
	wantCode(t, err, CodeForbidden)

	ab, err := svc.Abandon(ctx, id, RoleClient)
	if err != nil {
		t.Fatalf("Abandon: %v", err)
	}
	if ab.Status != string(catalog.StatusCancelled) {
		t.Fatalf("after abandon: %s", ab.Status)
	}
}

func TestAbandonReleasesEquipment(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	res := mustCreate(t, svc, CreateQuestRequest{Name: "x", EstimatedDuration: 5, EquipmentStockIDs: []int64{10, 11}})
	id := res.QuestID
	if _, err := svc.Validate(ctx, id, 100, RoleGuildMaster); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if _, err := svc.Start(ctx, id); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for _, st := range []int64{10, 11} {
		if store.stockStatus[st] != catalog.StatusBorrowed {
			t.Fatalf("stock %d after start = %s, want BORROWED", st, store.stockStatus[st])
		}
	}

	ab, err := svc.Abandon(ctx, id, RoleClient)
	if err != nil {
		t.Fatalf("Abandon: %v", err)
	}
	if ab.Status != string(catalog.StatusCancelled) {
		t.Fatalf("after abandon: %s", ab.Status)
	}
	// The quest is terminal; its equipment must not stay borrowed.
	for _, st := range []int64{10, 11} {
		if store.stockStatus[st] != catalog.StatusAvailable {
			t.Fatalf("stock %d after abandon = %s, want AVAILABLE", st, store.stockStatus[st])
		}
	}
}

func TestFinishPostsRewardOnce(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	res := mustCreate(t, svc, CreateQuestRequest{Name: "Slay the wyvern", Reward: 500, EstimatedDuration: 5, EquipmentStockIDs: []int64{10, 11}})
	id := res.QuestID
	if _, err := svc.Validate(ctx, id, 100, RoleGuildMaster); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if _, err := svc.Start(ctx, id); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := svc.Finish(ctx, id, true); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	if len(store.finishes) != 1 {
		t.Fatalf("finish calls = %d, want 1", len(store.finishes))
	}
	call := store.finishes[0]
	if call.reward == nil {
		t.Fatal("success must carry a reward entry")
	}
	if call.reward.Amount != 500 {
		t.Fatalf("reward amount = %d, want 500", call.reward.Amount)
	}
	if !strings.Contains(call.reward.Description, "Slay the wyvern") {
		t.Fatalf("reward description must name the quest: %q", call.reward.Description)
	}
	if call.wear != 10 {
		t.Fatalf("wear = %d, want configured 10", call.wear)
	}

	// Finishing again is invalid: the reward can never double-post.
	_, err := svc.Finish(ctx, id, true)
	wantCode(t, err, CodeInvalidTransition)
	if len(store.finishes) != 1 {
		t.Fatal("no second finish may reach the store")
	}
}

func TestFinishFailurePostsNothing(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	res := mustCreate(t, svc, CreateQuestRequest{Name: "x", Reward: 500, EstimatedDuration: 5})
	id := res.QuestID
	if _, err := svc.Validate(ctx, id, 100, RoleGuildMaster); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if _, err := svc.Start(ctx, id); err != nil {
		t.Fatalf("Start: %v", err)
	}

	fin, err := svc.Finish(ctx, id, false)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if fin.Status != string(catalog.StatusFailed) {
		t.Fatalf("after failed finish: %s", fin.Status)
	}
	if store.finishes[0].reward != nil {
		t.Fatal("failure must not post a reward")
	}
}

func TestFinishZeroRewardPostsNothing(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	res := mustCreate(t, svc, CreateQuestRequest{Name: "x", Reward: 0, EstimatedDuration: 5})
	id := res.QuestID
	if _, err := svc.Validate(ctx, id, 100, RoleGuildMaster); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if _, err := svc.Start(ctx, id); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := svc.Finish(ctx, id, true); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if store.finishes[0].reward != nil {
		t.Fatal("a zero reward has no monetary consequence")
	}
}

func TestAssignmentSemantics(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	res := mustCreate(t, svc, CreateQuestRequest{Name: "x", EstimatedDuration: 5})
	id := res.QuestID

	// Attach unions; attaching an already-attached id is a no-op.
	r, err := svc.AttachAdventurers(ctx, id, []int64{1, 2})
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if !equalIDs(r.AdventurerIDs, []int64{1, 2}) {
		t.Fatalf("after attach: %v", r.AdventurerIDs)
	}
	r, err = svc.AttachAdventurers(ctx, id, []int64{2, 3})
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if !equalIDs(r.AdventurerIDs, []int64{1, 2, 3}) {
		t.Fatalf("after second attach: %v", r.AdventurerIDs)
	}

	// Detach removes; detaching an absent id is a no-op, not an error.
	r, err = svc.DetachAdventurers(ctx, id, []int64{3, 2})
	if err != nil {
		t.Fatalf("Detach: %v", err)
	}
	if !equalIDs(r.AdventurerIDs, []int64{1}) {
		t.Fatalf("after detach: %v", r.AdventurerIDs)
	}
	r, err = svc.DetachAdventurers(ctx, id, []int64{3})
	if err != nil {
		t.Fatalf("Detach absent: %v", err)
	}
	if !equalIDs(r.AdventurerIDs, []int64{1}) {
		t.Fatalf("detach of absent id changed the set: %v", r.AdventurerIDs)
	}

	// Set replaces exactly; twice in a row is stable; empty clears.
	r, err = svc.SetAdventurers(ctx, id, []int64{2, 3})
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !equalIDs(r.AdventurerIDs, []int64{2, 3}) {
		t.Fatalf("after set: %v", r.AdventurerIDs)
	}
	r, err = svc.SetAdventurers(ctx, id, []int64{2, 3})
	if err != nil {
		t.Fatalf("Set again: %v", err)
	}
	if !equalIDs(r.AdventurerIDs, []int64{2, 3}) {
		t.Fatalf("set is not idempotent: %v", r.AdventurerIDs)
	}
	r, err = svc.SetAdventurers(ctx, id, nil)
	if err != nil {
		t.Fatalf("Set empty: %v", err)
	}
	if len(r.AdventurerIDs) != 0 {
		t.Fatalf("empty set must clear: %v", r.AdventurerIDs)
	}

	// Attach and detach require at least one id.
	_, err = svc.AttachAdventurers(ctx, id, nil)
	wantCode(t, err, CodeInvalidArgument)
	_, err = svc.DetachEquipmentStocks(ctx, id, nil)
	wantCode(t, err, CodeInvalidArgument)
}

func TestAssignmentNoPartialMutation(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	res := mustCreate(t, svc, CreateQuestRequest{Name: "x", EstimatedDuration: 5, AdventurerIDs: []int64{1}})
	id := res.QuestID

	_, err := svc.AttachAdventurers(ctx, id, []int64{2, 99})
	wantCode(t, err, CodeNotFound)
	if !strings.Contains(err.Error(), "99") {
		t.Fatalf("error must name the missing id: %v", err)
	}
	got, _ := store.ListAssignedAdventurers(ctx, id)
	if len(got) != 1 || got[0].AdventurerID != 1 {
		t.Fatalf("association set changed on failed attach: %+v", got)
	}

	_, err = svc.SetEquipmentStocks(ctx, id, []int64{10, 404})
	wantCode(t, err, CodeNotFound)
	stocks, _ := store.ListAssignedStockIDs(ctx, id)
	if len(stocks) != 0 {
		t.Fatalf("stock set changed on failed set: %v", stocks)
	}
}

func TestAssignmentRejectedInTerminalState(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	res := mustCreate(t, svc, CreateQuestRequest{Name: "x", EstimatedDuration: 5})
	id := res.QuestID
	store.quests[id].Status = catalog.StatusRefused

	_, err := svc.AttachAdventurers(ctx, id, []int64{1})
	wantCode(t, err, CodeInvalidTransition)
	_, err = svc.SetEquipmentStocks(ctx, id, []int64{10})
	wantCode(t, err, CodeInvalidTransition)

	// STARTED still accepts assignment changes.
	store.quests[id].Status = catalog.StatusStarted
	if _, err := svc.AttachAdventurers(ctx, id, []int64{1}); err != nil {
		t.Fatalf("assignment during execution must work: %v", err)
	}
}

func TestDelete(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	res := mustCreate(t, svc, CreateQuestRequest{Name: "x", EstimatedDuration: 5})
	if err := svc.Delete(ctx, res.QuestID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	err := svc.Delete(ctx, res.QuestID)
	wantCode(t, err, CodeNotFound)
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
