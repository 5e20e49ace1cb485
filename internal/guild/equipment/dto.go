package equipment

type CreateEquipmentRequest struct {
	Name          string  `json:"name" binding:"required"`
	Description   *string `json:"description,omitempty"`
	MaxDurability int     `json:"max_durability" binding:"required"`
}

type UpdateEquipmentRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// CreateStocksRequest mints new physical instances of one definition.
type CreateStocksRequest struct {
	EquipmentID int64 `json:"equipment_id" binding:"required"`
	Count       int   `json:"count"`
}

type EquipmentResponse struct {
	EquipmentID   int64   `json:"equipment_id"`
	Name          string  `json:"name"`
	Description   *string `json:"description,omitempty"`
	MaxDurability int     `json:"max_durability"`
	StockCount    int64   `json:"stock_count"`
}

type StockResponse struct {
	EquipmentStockID int64  `json:"equipment_stock_id"`
	EquipmentID      int64  `json:"equipment_id"`
	Durability       int    `json:"durability"`
	Status           string `json:"status"`
}

type ListEquipmentResult struct {
	Items      []EquipmentResponse `json:"items"`
	Total      int64               `json:"total"`
	NextOffset int                 `json:"next_offset"`
}

type ListStocksResult struct {
	Items      []StockResponse `json:"items"`
	Total      int64           `json:"total"`
	NextOffset int             `json:"next_offset"`
}
