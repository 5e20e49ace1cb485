package quests

import (
	"database/sql"
	"time"

	"github.com/MaxChevalier/LesCapucheDOpale-cloud-sub000/internal/guild/catalog"
)

// Quest is one row of the quests table. Status carries the seeded tag of
// StatusID, resolved by the store on every read.
type Quest struct {
	QuestID           int64
	QuestULID         string
	Name              string
	Description       sql.NullString
	FinalDate         sql.NullTime
	Reward            int64 // minor currency units
	EstimatedDuration int   // days
	RecommendedXP     int
	StatusID          int64
	Status            catalog.Status
	CreatorUserID     int64
	CreatedAt         time.Time
}

// AssignedAdventurer is the slice of an assigned adventurer the metrics
// calculator needs.
type AssignedAdventurer struct {
	AdventurerID int64
	DailyRate    int64
	Experience   int
}

// UpdatePatch applies partial-update semantics: nil means untouched. A
// non-nil empty id slice clears the corresponding assignment set.
type UpdatePatch struct {
	Name              *string
	Description       *string
	FinalDate         *time.Time
	Reward            *int64
	EstimatedDuration *int
	AdventurerIDs     []int64
	EquipmentStockIDs []int64

	ReplaceAdventurers bool
	ReplaceStocks      bool
}

type QuestFilter struct {
	Status        *catalog.Status
	CreatorUserID *int64
}

type Page struct {
	Limit  int
	Offset int
	Order  string // "asc" or "desc"
}
