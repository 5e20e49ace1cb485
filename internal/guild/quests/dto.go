package quests

import (
	"time"

	"github.com/MaxChevalier/LesCapucheDOpale-cloud-sub000/internal/guild/metrics"
)

// ===== Requests =====

type CreateQuestRequest struct {
	Name              string  `json:"name" binding:"required"`
	Description       *string `json:"description,omitempty"`
	FinalDate         *string `json:"final_date,omitempty"` // "2006-01-02"
	Reward            int64   `json:"reward"`
	EstimatedDuration int     `json:"estimated_duration" binding:"required"`
	AdventurerIDs     []int64 `json:"adventurer_ids,omitempty"`
	EquipmentStockIDs []int64 `json:"equipment_stock_ids,omitempty"`
}

type UpdateQuestRequest struct {
	Name              *string  `json:"name,omitempty"`
	Description       *string  `json:"description,omitempty"`
	FinalDate         *string  `json:"final_date,omitempty"`
	Reward            *int64   `json:"reward,omitempty"`
	EstimatedDuration *int     `json:"estimated_duration,omitempty"`
	AdventurerIDs     *[]int64 `json:"adventurer_ids,omitempty"`
	EquipmentStockIDs *[]int64 `json:"equipment_stock_ids,omitempty"`
}

type ValidateQuestRequest struct {
	RecommendedXP int `json:"recommended_xp" binding:"required"`
}

type FinishQuestRequest struct {
	Success *bool `json:"success" binding:"required"`
}

// AssignRequest carries the id list of an attach/detach/set call. Set may be
// empty; attach and detach require at least one id by convention.
type AssignRequest struct {
	IDs []int64 `json:"ids"`
}

// ===== Responses =====

// QuestResponse always carries freshly recomputed cost and success-rate so
// the client never reads stale derived values.
type QuestResponse struct {
	QuestID           int64                 `json:"quest_id"`
	QuestULID         string                `json:"quest_ulid"`
	Name              string                `json:"name"`
	Description       *string               `json:"description,omitempty"`
	FinalDate         *time.Time            `json:"final_date,omitempty"`
	Reward            int64                 `json:"reward"`
	EstimatedDuration int                   `json:"estimated_duration"`
	RecommendedXP     int                   `json:"recommended_xp"`
	Status            string                `json:"status"`
	CreatorUserID     int64                 `json:"creator_user_id"`
	AdventurerIDs     []int64               `json:"adventurer_ids"`
	EquipmentStockIDs []int64               `json:"equipment_stock_ids"`
	Cost              int64                 `json:"cost"`
	CostDenominations metrics.Denominations `json:"cost_denominations"`
	SuccessRate       float64               `json:"success_rate"`
	CreatedAt         time.Time             `json:"created_at"`
}

type ListQuestsResult struct {
	Items      []QuestResponse `json:"items"`
	Total      int64           `json:"total"`
	NextOffset int             `json:"next_offset"`
}
