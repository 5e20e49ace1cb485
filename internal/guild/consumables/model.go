package consumables

import "database/sql"

// Consumable is a single-use item definition. Adventurers reference these
// as capability tags; there is no per-unit stock tracking.
type Consumable struct {
	ConsumableID int64
	Name         string
	Description  sql.NullString
}

type Page struct {
	Limit  int
	Offset int
}
