package models

// TimeSlot is one fixed 30-minute interval in the daily schedule grid.
// The slot table is immutable reference data; ids are stable and referenced
// by assignments and by teacher/student availability sets.
type TimeSlot struct {
	ID        int64  `db:"id" json:"id"`
	StartTime string `db:"start_time" json:"start_time"`
	EndTime   string `db:"end_time" json:"end_time"`
	SlotOrder int    `db:"slot_order" json:"slot_order"`
}
