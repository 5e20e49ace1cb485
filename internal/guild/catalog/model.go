package catalog

// Status is a stable tag for a row of the statuses table. The table stays
// open-ended for the web client, but these tags are seeded once at startup
// and the quest lifecycle only ever references them, never a name lookup.
type Status string

const (
	// Quest lifecycle phases.
	StatusWaitingForValidation Status = "WAITING_FOR_VALIDATION"
	StatusValidated            Status = "VALIDATED"
	StatusStarted              Status = "STARTED"
	StatusRefused              Status = "REFUSED"
	StatusCancelled            Status = "CANCELLED"
	StatusSucceeded            Status = "SUCCEEDED"
	StatusFailed               Status = "FAILED"

	// Equipment stock statuses.
	StatusAvailable Status = "AVAILABLE"
	StatusBorrowed  Status = "BORROWED"
	StatusBroken    Status = "BROKEN"
)

// SeededStatuses is the full set inserted by Seed.
var SeededStatuses = []Status{
	StatusWaitingForValidation,
	StatusValidated,
	StatusStarted,
	StatusRefused,
	StatusCancelled,
	StatusSucceeded,
	StatusFailed,
	StatusAvailable,
	StatusBorrowed,
	StatusBroken,
}

// Terminal reports whether a quest in this status can never transition again.
func (s Status) Terminal() bool {
	switch s {
	case StatusRefused, StatusCancelled, StatusSucceeded, StatusFailed:
		return true
	}
	return false
}

// EquipmentStock is the catalog view the quest engine needs: one physical,
// durability-tracked instance of an equipment definition.
type EquipmentStock struct {
	EquipmentStockID int64
	EquipmentID      int64
	Durability       int
	MaxDurability    int
	StatusID         int64
}
