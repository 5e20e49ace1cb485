package equipment

import "database/sql"

// Equipment is a reusable item definition. Physical instances live in
// equipment_stocks, each with its own durability counter.
type Equipment struct {
	EquipmentID   int64
	Name          string
	Description   sql.NullString
	MaxDurability int
}

// Stock is one physical instance of an equipment definition.
type Stock struct {
	EquipmentStockID int64
	EquipmentID      int64
	Durability       int
	StatusID         int64
}

type Page struct {
	Limit  int
	Offset int
}
