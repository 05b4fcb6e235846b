package models

import (
	"time"

	"github.com/lib/pq"
)

// Teacher is a date-scoped instructor row. A logical person may have one row
// per scheduled date; rows are unified only by case-insensitive name matching.
type Teacher struct {
	ID           string        `db:"id" json:"id"`
	FullName     string        `db:"full_name" json:"full_name"`
	Availability pq.Int64Array `db:"availability" json:"availability"`
	Date         string        `db:"date" json:"date"`
	ColorKeyword *string       `db:"color_keyword" json:"color_keyword,omitempty"`
	Active       bool          `db:"active" json:"active"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`
}

// TeacherFilter captures listing options for teachers.
type TeacherFilter struct {
	Date       string
	Search     string
	ActiveOnly bool
}
