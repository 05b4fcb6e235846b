package models

// DroppedReference records a teacher or student reference that could not be
// remapped during a copy and was therefore left off the cloned assignment.
type DroppedReference struct {
	SourceAssignmentID string `json:"source_assignment_id"`
	Kind               string `json:"kind"`
	RefID              string `json:"ref_id"`
}

// CopyDaySummary itemises the outcome of a single-day copy. Copies are best
// effort: a conflicting slot is reported here instead of aborting the rest.
type CopyDaySummary struct {
	SourceDate string `json:"source_date"`
	TargetDate string `json:"target_date"`

	DeletedAssignments int `json:"deleted_assignments"`
	DeletedTeachers    int `json:"deleted_teachers"`
	DeletedStudents    int `json:"deleted_students"`

	TeachersCopied     int `json:"teachers_copied"`
	StudentsCopied     int `json:"students_copied"`
	AssignmentsCopied  int `json:"assignments_copied"`
	AssignmentsSkipped int `json:"assignments_skipped"`

	Conflicts   []AssignmentConflict `json:"conflicts,omitempty"`
	DroppedRefs []DroppedReference   `json:"dropped_refs,omitempty"`
}

// CopyWeekSummary aggregates the seven per-day results of a week copy.
type CopyWeekSummary struct {
	SourceStart string           `json:"source_start"`
	TargetStart string           `json:"target_start"`
	Days        []CopyDaySummary `json:"days"`

	TeachersCopied    int `json:"teachers_copied"`
	StudentsCopied    int `json:"students_copied"`
	AssignmentsCopied int `json:"assignments_copied"`
}
