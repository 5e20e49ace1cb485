package specialities

// Speciality is a lookup row adventurers reference. Deleting one only
// disables it so historical adventurer rows keep their reference.
type Speciality struct {
	SpecialityID int64  `json:"speciality_id"`
	Name         string `json:"name"`
	Code         string `json:"code"`
	IsDisabled   bool   `json:"is_disabled"`
}
