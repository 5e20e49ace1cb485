package consumables

type CreateConsumableRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description,omitempty"`
}

type UpdateConsumableRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type ConsumableResponse struct {
	ConsumableID int64   `json:"consumable_id"`
	Name         string  `json:"name"`
	Description  *string `json:"description,omitempty"`
}

type ListConsumablesResult struct {
	Items      []ConsumableResponse `json:"items"`
	Total      int64                `json:"total"`
	NextOffset int                  `json:"next_offset"`
}
