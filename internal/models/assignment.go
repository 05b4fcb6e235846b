package models

import (
	"strings"
	"time"

	"github.com/lib/pq"
)

// Assignment binds teachers to students for one time slot on one date. The
// junction rows are owned by the assignment and replaced wholesale on update;
// the referenced Teacher/Student rows live independently.
type Assignment struct {
	ID           string    `db:"id" json:"id"`
	Date         string    `db:"date" json:"date"`
	TimeSlotID   int64     `db:"time_slot_id" json:"time_slot_id"`
	Subject      *string   `db:"subject" json:"subject,omitempty"`
	Notes        *string   `db:"notes" json:"notes,omitempty"`
	ColorKeyword *string   `db:"color_keyword" json:"color_keyword,omitempty"`
	// RoomID survives in the schema for compatibility but is always nil:
	// classes are online and room-based conflict checking was removed.
	RoomID    *string   `db:"room_id" json:"room_id,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	Teachers []AssignmentTeacher `db:"-" json:"teachers"`
	Students []AssignmentStudent `db:"-" json:"students"`
}

// AssignmentTeacher is the teacher side of an assignment's junction rows.
// Date and time slot are denormalized onto the row so the schema can carry a
// partial unique index over (date, time_slot_id, teacher_id) for active
// assignments.
type AssignmentTeacher struct {
	AssignmentID string `db:"assignment_id" json:"-"`
	TeacherID    string `db:"teacher_id" json:"teacher_id"`
	Date         string `db:"date" json:"-"`
	TimeSlotID   int64  `db:"time_slot_id" json:"-"`
	IsSubstitute bool   `db:"is_substitute" json:"is_substitute"`
}

// AssignmentStudent is the student side of an assignment's junction rows.
type AssignmentStudent struct {
	AssignmentID string  `db:"assignment_id" json:"-"`
	StudentID    string  `db:"student_id" json:"student_id"`
	Date         string  `db:"date" json:"-"`
	TimeSlotID   int64   `db:"time_slot_id" json:"-"`
	SubmissionID *string `db:"submission_id" json:"submission_id,omitempty"`
}

// AssignmentPatch enumerates the independently optional fields of a partial
// update. A nil field keeps the stored value; a supplied Teachers or Students
// slice replaces that whole side. RoomID is not patchable: it is forced to
// NULL on every update.
type AssignmentPatch struct {
	Date         *string              `json:"date,omitempty"`
	TimeSlotID   *int64               `json:"time_slot_id,omitempty"`
	Subject      *string              `json:"subject,omitempty"`
	Notes        *string              `json:"notes,omitempty"`
	ColorKeyword *string              `json:"color_keyword,omitempty"`
	Teachers     *[]AssignmentTeacher `json:"teachers,omitempty"`
	Students     *[]AssignmentStudent `json:"students,omitempty"`
}

// ValidationResult reports the outcome of conflict validation.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// AssignmentConflict identifies one blocking assignment found during
// validation. Kind is "teacher" or "student"; CounterpartNames carries the
// names already bound to the conflicting party at that slot so operators can
// suggest an alternative.
type AssignmentConflict struct {
	AssignmentID     string         `json:"assignment_id"`
	Kind             string         `json:"kind"`
	PartyID          string         `json:"party_id"`
	PartyName        string         `json:"party_name"`
	CounterpartNames pq.StringArray `json:"counterpart_names"`
}

// Message renders the operator-facing conflict description.
func (c AssignmentConflict) Message() string {
	var b strings.Builder
	b.WriteString(c.Kind)
	b.WriteString(" ")
	b.WriteString(c.PartyName)
	b.WriteString(" is already assigned at this time")
	if len(c.CounterpartNames) > 0 {
		b.WriteString(" (with ")
		b.WriteString(strings.Join(c.CounterpartNames, ", "))
		b.WriteString(")")
	}
	return b.String()
}

// AssignmentConflictError is returned when a prospective assignment collides
// with existing active assignments.
type AssignmentConflictError struct {
	Message   string               `json:"message"`
	Conflicts []AssignmentConflict `json:"conflicts"`
}

// Error implements the error interface.
func (e *AssignmentConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
