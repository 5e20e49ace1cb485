package quests

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	ulid "github.com/oklog/ulid/v2"

	"github.com/MaxChevalier/LesCapucheDOpale-cloud-sub000/internal/guild/catalog"
	"github.com/MaxChevalier/LesCapucheDOpale-cloud-sub000/internal/guild/ledger"
	"github.com/MaxChevalier/LesCapucheDOpale-cloud-sub000/internal/guild/metrics"
)

// -------------- Clock & ID --------------

type Clock interface{ Now() time.Time }
type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type IDGen interface{ NewULID(t time.Time) string }
type ulidGen struct{}

func (ulidGen) NewULID(t time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// -------------- Store seams --------------

// QuestStore is what the engine needs from quest storage. Every Exec* and
// mutation method is transactional per quest: the implementation locks the
// quest row, rechecks the status guard, then applies.
type QuestStore interface {
	GetQuest(ctx context.Context, questID int64) (*Quest, error)
	CreateQuest(ctx context.Context, m *Quest, advIDs, stockIDs []int64) error
	UpdateQuest(ctx context.Context, questID int64, p UpdatePatch) error
	ExecTransition(ctx context.Context, questID int64, action Action, to catalog.Status, recommendedXP *int) error
	ExecFinish(ctx context.Context, questID int64, to catalog.Status, wear int, reward *ledger.Transaction) error

	AttachAdventurers(ctx context.Context, questID int64, ids []int64) error
	DetachAdventurers(ctx context.Context, questID int64, ids []int64) error
	SetAdventurers(ctx context.Context, questID int64, ids []int64) error
	AttachEquipmentStocks(ctx context.Context, questID int64, ids []int64) error
	DetachEquipmentStocks(ctx context.Context, questID int64, ids []int64) error
	SetEquipmentStocks(ctx context.Context, questID int64, ids []int64) error

	ListAssignedAdventurers(ctx context.Context, questID int64) ([]AssignedAdventurer, error)
	ListAssignedStockIDs(ctx context.Context, questID int64) ([]int64, error)
	ListQuests(ctx context.Context, f QuestFilter, p Page) ([]Quest, int64, error)
	DeleteQuest(ctx context.Context, questID int64) (int64, error)
}

// CatalogChecker is the existence-check slice of the Catalog Store.
type CatalogChecker interface {
	FilterAdventurerIDs(ctx context.Context, ids []int64) ([]int64, error)
	FilterEquipmentStockIDs(ctx context.Context, ids []int64) ([]int64, error)
}

// -------------- Service --------------

type Service struct {
	store   QuestStore
	catalog CatalogChecker
	clock   Clock
	id      IDGen
	wear    int // durability lost per successful quest
}

func NewService(conn *sql.DB, cat *catalog.Store, led *ledger.Store, wearPerQuest int) *Service {
	return &Service{
		store:   NewStore(conn, cat, led),
		catalog: cat,
		clock:   realClock{},
		id:      ulidGen{},
		wear:    wearPerQuest,
	}
}

// Create opens a new quest in WAITING_FOR_VALIDATION. Every id in the
// optional initial assignment lists must exist; a single missing id rejects
// the whole create.
func (s *Service) Create(ctx context.Context, creatorID int64, in CreateQuestRequest) (QuestResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return QuestResponse{}, ErrInvalid("name is required")
	}
	if in.EstimatedDuration <= 0 {
		return QuestResponse{}, ErrInvalid("estimated_duration must be > 0")
	}
	if in.Reward < 0 {
		return QuestResponse{}, ErrInvalid("reward must be >= 0")
	}

	finalDate, err := parseDate(in.FinalDate)
	if err != nil {
		return QuestResponse{}, err
	}

	advIDs := dedupeIDs(in.AdventurerIDs)
	stockIDs := dedupeIDs(in.EquipmentStockIDs)
	if err := s.checkAdventurersExist(ctx, advIDs); err != nil {
		return QuestResponse{}, err
	}
	if err := s.checkStocksExist(ctx, stockIDs); err != nil {
		return QuestResponse{}, err
	}

	now := s.clock.Now()
	m := &Quest{
		QuestULID:         s.id.NewULID(now),
		Name:              in.Name,
		Reward:            in.Reward,
		EstimatedDuration: in.EstimatedDuration,
		CreatorUserID:     creatorID,
		CreatedAt:         now,
	}
	if in.Description != nil && *in.Description != "" {
		m.Description.String, m.Description.Valid = *in.Description, true
	}
	if finalDate != nil {
		m.FinalDate.Time, m.FinalDate.Valid = *finalDate, true
	}

	if err := s.store.CreateQuest(ctx, m, advIDs, stockIDs); err != nil {
		return QuestResponse{}, err
	}
	return s.respond(ctx, m.QuestID)
}

// Update applies a partial edit. Only supplied fields change; any edit while
// the quest has not started resets it to WAITING_FOR_VALIDATION.
func (s *Service) Update(ctx context.Context, questID int64, in UpdateQuestRequest) (QuestResponse, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return QuestResponse{}, ErrInvalid("name must not be empty")
	}
	if in.EstimatedDuration != nil && *in.EstimatedDuration <= 0 {
		return QuestResponse{}, ErrInvalid("estimated_duration must be > 0")
	}
	if in.Reward != nil && *in.Reward < 0 {
		return QuestResponse{}, ErrInvalid("reward must be >= 0")
	}

	p := UpdatePatch{
		Name:              in.Name,
		Description:       in.Description,
		Reward:            in.Reward,
		EstimatedDuration: in.EstimatedDuration,
	}

	finalDate, err := parseDate(in.FinalDate)
	if err != nil {
		return QuestResponse{}, err
	}
	p.FinalDate = finalDate

	if in.AdventurerIDs != nil {
		ids := dedupeIDs(*in.AdventurerIDs)
		if err := s.checkAdventurersExist(ctx, ids); err != nil {
			return QuestResponse{}, err
		}
		p.AdventurerIDs = ids
		p.ReplaceAdventurers = true
	}
	if in.EquipmentStockIDs != nil {
		ids := dedupeIDs(*in.EquipmentStockIDs)
		if err := s.checkStocksExist(ctx, ids); err != nil {
			return QuestResponse{}, err
		}
		p.EquipmentStockIDs = ids
		p.ReplaceStocks = true
	}

	if err := s.store.UpdateQuest(ctx, questID, p); err != nil {
		return QuestResponse{}, err
	}
	return s.respond(ctx, questID)
}

// -------------- Transitions --------------

// Validate: WAITING_FOR_VALIDATION -> VALIDATED, guild master only. Sets the
// recommended experience the success-rate is measured against.
func (s *Service) Validate(ctx context.Context, questID int64, recommendedXP int, actor Role) (QuestResponse, error) {
	if err := CheckRole(ActionValidate, actor); err != nil {
		return QuestResponse{}, err
	}
	if recommendedXP <= 0 {
		return QuestResponse{}, ErrInvalid("recommended_xp must be > 0")
	}
	if err := s.store.ExecTransition(ctx, questID, ActionValidate, catalog.StatusValidated, &recommendedXP); err != nil {
		return QuestResponse{}, err
	}
	return s.respond(ctx, questID)
}

// Invalidate: VALIDATED -> WAITING_FOR_VALIDATION, guild master only.
func (s *Service) Invalidate(ctx context.Context, questID int64, actor Role) (QuestResponse, error) {
	if err := CheckRole(ActionInvalidate, actor); err != nil {
		return QuestResponse{}, err
	}
	if err := s.store.ExecTransition(ctx, questID, ActionInvalidate, catalog.StatusWaitingForValidation, nil); err != nil {
		return QuestResponse{}, err
	}
	return s.respond(ctx, questID)
}

// Refuse: WAITING_FOR_VALIDATION | VALIDATED -> REFUSED, guild master only.
func (s *Service) Refuse(ctx context.Context, questID int64, actor Role) (QuestResponse, error) {
	if err := CheckRole(ActionRefuse, actor); err != nil {
		return QuestResponse{}, err
	}
	if err := s.store.ExecTransition(ctx, questID, ActionRefuse, catalog.StatusRefused, nil); err != nil {
		return QuestResponse{}, err
	}
	return s.respond(ctx, questID)
}

// Start: VALIDATED -> STARTED. Assignment completeness is the caller's
// responsibility; this only flips the status and flags the equipment
// borrowed.
func (s *Service) Start(ctx context.Context, questID int64) (QuestResponse, error) {
	if err := s.store.ExecTransition(ctx, questID, ActionStart, catalog.StatusStarted, nil); err != nil {
		return QuestResponse{}, err
	}
	return s.respond(ctx, questID)
}

// Abandon: STARTED -> CANCELLED, client only.
func (s *Service) Abandon(ctx context.Context, questID int64, actor Role) (QuestResponse, error) {
	if err := CheckRole(ActionAbandon, actor); err != nil {
		return QuestResponse{}, err
	}
	if err := s.store.ExecTransition(ctx, questID, ActionAbandon, catalog.StatusCancelled, nil); err != nil {
		return QuestResponse{}, err
	}
	return s.respond(ctx, questID)
}

// Finish closes a started quest. Success credits the reward to the ledger
// and wears the assigned equipment; failure posts nothing. Either way the
// resources are freed for other quests.
func (s *Service) Finish(ctx context.Context, questID int64, success bool) (QuestResponse, error) {
	q, err := s.store.GetQuest(ctx, questID)
	if err != nil {
		return QuestResponse{}, err
	}

	to := catalog.StatusFailed
	var reward *ledger.Transaction
	if success {
		to = catalog.StatusSucceeded
		if q.Reward != 0 {
			now := s.clock.Now()
			reward = &ledger.Transaction{
				TransactionULID: s.id.NewULID(now),
				Amount:          q.Reward,
				Description:     fmt.Sprintf("Quest reward: %s", q.Name),
				CreatedAt:       now,
			}
		}
	}

	if err := s.store.ExecFinish(ctx, questID, to, s.wear, reward); err != nil {
		return QuestResponse{}, err
	}
	return s.respond(ctx, questID)
}

// -------------- Assignment --------------

func (s *Service) AttachAdventurers(ctx context.Context, questID int64, ids []int64) (QuestResponse, error) {
	return s.mutateAdventurers(ctx, questID, ids, true, s.store.AttachAdventurers)
}

func (s *Service) DetachAdventurers(ctx context.Context, questID int64, ids []int64) (QuestResponse, error) {
	return s.mutateAdventurers(ctx, questID, ids, true, s.store.DetachAdventurers)
}

func (s *Service) SetAdventurers(ctx context.Context, questID int64, ids []int64) (QuestResponse, error) {
	return s.mutateAdventurers(ctx, questID, ids, false, s.store.SetAdventurers)
}

func (s *Service) AttachEquipmentStocks(ctx context.Context, questID int64, ids []int64) (QuestResponse, error) {
	return s.mutateStocks(ctx, questID, ids, true, s.store.AttachEquipmentStocks)
}

func (s *Service) DetachEquipmentStocks(ctx context.Context, questID int64, ids []int64) (QuestResponse, error) {
	return s.mutateStocks(ctx, questID, ids, true, s.store.DetachEquipmentStocks)
}

func (s *Service) SetEquipmentStocks(ctx context.Context, questID int64, ids []int64) (QuestResponse, error) {
	return s.mutateStocks(ctx, questID, ids, false, s.store.SetEquipmentStocks)
}

func (s *Service) mutateAdventurers(ctx context.Context, questID int64, ids []int64, requireIDs bool,
	op func(ctx context.Context, questID int64, ids []int64) error) (QuestResponse, error) {

	if requireIDs && len(ids) == 0 {
		return QuestResponse{}, ErrInvalid("ids must not be empty")
	}
	ids = dedupeIDs(ids)
	if err := s.checkAdventurersExist(ctx, ids); err != nil {
		return QuestResponse{}, err
	}
	if err := op(ctx, questID, ids); err != nil {
		return QuestResponse{}, err
	}
	return s.respond(ctx, questID)
}

func (s *Service) mutateStocks(ctx context.Context, questID int64, ids []int64, requireIDs bool,
	op func(ctx context.Context, questID int64, ids []int64) error) (QuestResponse, error) {

	if requireIDs && len(ids) == 0 {
		return QuestResponse{}, ErrInvalid("ids must not be empty")
	}
	ids = dedupeIDs(ids)
	if err := s.checkStocksExist(ctx, ids); err != nil {
		return QuestResponse{}, err
	}
	if err := op(ctx, questID, ids); err != nil {
		return QuestResponse{}, err
	}
	return s.respond(ctx, questID)
}

// -------------- Reads --------------

func (s *Service) Get(ctx context.Context, questID int64) (QuestResponse, error) {
	return s.respond(ctx, questID)
}

func (s *Service) List(ctx context.Context, f QuestFilter, p Page) (ListQuestsResult, error) {
	quests, total, err := s.store.ListQuests(ctx, f, p)
	if err != nil {
		return ListQuestsResult{}, err
	}

	items := make([]QuestResponse, 0, len(quests))
	for i := range quests {
		resp, err := s.buildResponse(ctx, &quests[i])
		if err != nil {
			return ListQuestsResult{}, err
		}
		items = append(items, resp)
	}

	next := p.Offset + p.Limit
	if next >= int(total) {
		next = 0
	} // 0 = end of list
	return ListQuestsResult{Items: items, Total: total, NextOffset: next}, nil
}

func (s *Service) Delete(ctx context.Context, questID int64) error {
	n, err := s.store.DeleteQuest(ctx, questID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound("quest not found")
	}
	return nil
}

// -------------- Existence checks --------------

func (s *Service) checkAdventurersExist(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := s.catalog.FilterAdventurerIDs(ctx, ids)
	if err != nil {
		return err
	}
	if missing := missingIDs(ids, found); len(missing) > 0 {
		return ErrNotFound("adventurers not found: " + joinIDs(missing))
	}
	return nil
}

func (s *Service) checkStocksExist(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := s.catalog.FilterEquipmentStockIDs(ctx, ids)
	if err != nil {
		return err
	}
	if missing := missingIDs(ids, found); len(missing) > 0 {
		return ErrNotFound("equipment stocks not found: " + joinIDs(missing))
	}
	return nil
}

// -------------- Response building --------------

// respond reloads the quest and recomputes cost and success-rate from the
// current assignment set.
func (s *Service) respond(ctx context.Context, questID int64) (QuestResponse, error) {
	q, err := s.store.GetQuest(ctx, questID)
	if err != nil {
		return QuestResponse{}, err
	}
	return s.buildResponse(ctx, q)
}

func (s *Service) buildResponse(ctx context.Context, q *Quest) (QuestResponse, error) {
	advs, err := s.store.ListAssignedAdventurers(ctx, q.QuestID)
	if err != nil {
		return QuestResponse{}, err
	}
	stockIDs, err := s.store.ListAssignedStockIDs(ctx, q.QuestID)
	if err != nil {
		return QuestResponse{}, err
	}

	advIDs := make([]int64, 0, len(advs))
	inputs := make([]metrics.AdventurerInput, 0, len(advs))
	for _, a := range advs {
		advIDs = append(advIDs, a.AdventurerID)
		inputs = append(inputs, metrics.AdventurerInput{DailyRate: a.DailyRate, Experience: a.Experience})
	}
	if stockIDs == nil {
		stockIDs = []int64{}
	}

	cost := metrics.Cost(inputs, q.EstimatedDuration)

	resp := QuestResponse{
		QuestID:           q.QuestID,
		QuestULID:         q.QuestULID,
		Name:              q.Name,
		Reward:            q.Reward,
		EstimatedDuration: q.EstimatedDuration,
		RecommendedXP:     q.RecommendedXP,
		Status:            string(q.Status),
		CreatorUserID:     q.CreatorUserID,
		AdventurerIDs:     advIDs,
		EquipmentStockIDs: stockIDs,
		Cost:              cost,
		CostDenominations: metrics.DecomposeAmount(cost),
		SuccessRate:       metrics.SuccessRate(inputs, q.RecommendedXP),
		CreatedAt:         q.CreatedAt,
	}
	if q.Description.Valid {
		v := q.Description.String
		resp.Description = &v
	}
	if q.FinalDate.Valid {
		v := q.FinalDate.Time
		resp.FinalDate = &v
	}
	return resp, nil
}

// -------------- helpers --------------

func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, ErrInvalid("invalid final_date format, expected YYYY-MM-DD")
	}
	return &t, nil
}

func dedupeIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// missingIDs returns the requested ids absent from found, sorted.
func missingIDs(requested, found []int64) []int64 {
	have := make(map[int64]struct{}, len(found))
	for _, id := range found {
		have[id] = struct{}{}
	}
	var missing []int64
	for _, id := range requested {
		if _, ok := have[id]; !ok {
			missing = append(missing, id)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}
