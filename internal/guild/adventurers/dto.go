package adventurers

// ===== Requests =====

type CreateAdventurerRequest struct {
	Name         string `json:"name" binding:"required"`
	SpecialityID *int64 `json:"speciality_id,omitempty"`
	DailyRate    int64  `json:"daily_rate" binding:"required"`
	Experience   int    `json:"experience"`
}

type UpdateAdventurerRequest struct {
	Name         *string `json:"name,omitempty"`
	SpecialityID *int64  `json:"speciality_id,omitempty"`
	DailyRate    *int64  `json:"daily_rate,omitempty"`
	Experience   *int    `json:"experience,omitempty"`
}

// SetTagsRequest replaces a capability-tag set; empty clears it.
type SetTagsRequest struct {
	IDs []int64 `json:"ids"`
}

// ===== Responses =====

type AdventurerResponse struct {
	AdventurerID  int64   `json:"adventurer_id"`
	Name          string  `json:"name"`
	SpecialityID  *int64  `json:"speciality_id,omitempty"`
	DailyRate     int64   `json:"daily_rate"`
	Experience    int     `json:"experience"`
	EquipmentIDs  []int64 `json:"equipment_ids"`
	ConsumableIDs []int64 `json:"consumable_ids"`
}

type ListAdventurersResult struct {
	Items      []AdventurerResponse `json:"items"`
	Total      int64                `json:"total"`
	NextOffset int                  `json:"next_offset"`
}
