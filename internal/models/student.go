package models

import (
	"time"

	"github.com/lib/pq"
)

// Student is a date-scoped learner row, structurally parallel to Teacher with
// an optional display name and a weakness annotation carried for tutoring
// context.
type Student struct {
	ID           string        `db:"id" json:"id"`
	FullName     string        `db:"full_name" json:"full_name"`
	DisplayName  *string       `db:"display_name" json:"display_name,omitempty"`
	Weakness     *string       `db:"weakness" json:"weakness,omitempty"`
	Availability pq.Int64Array `db:"availability" json:"availability"`
	Date         string        `db:"date" json:"date"`
	ColorKeyword *string       `db:"color_keyword" json:"color_keyword,omitempty"`
	Active       bool          `db:"active" json:"active"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`
}

// StudentFilter captures listing options for students.
type StudentFilter struct {
	Date       string
	Search     string
	ActiveOnly bool
}
