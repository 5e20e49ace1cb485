package adventurers

import "database/sql"

// Adventurer is a hireable unit with a daily wage and an experience score.
// The equipment and consumable sets are capability tags for the web client;
// the quest engine never reads them.
type Adventurer struct {
	AdventurerID int64
	Name         string
	SpecialityID sql.NullInt64
	DailyRate    int64 // minor currency units per day
	Experience   int
}

type Page struct {
	Limit  int
	Offset int
	Order  string // "asc" or "desc"
}

type SearchQuery struct {
	Name         string
	SpecialityID *int64
}
