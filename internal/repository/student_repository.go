package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hanare-juku/schedule-api/internal/models"
)

// StudentRepository manages persistence for date-scoped student rows.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = "id, full_name, display_name, weakness, availability, date, color_keyword, active, created_at, updated_at"

// ListByDate returns students scheduled on a date.
func (r *StudentRepository) ListByDate(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	base := "FROM students WHERE date = $1"
	args := []interface{}{filter.Date}

	if filter.ActiveOnly {
		base += " AND active = TRUE"
	}
	if filter.Search != "" {
		base += fmt.Sprintf(" AND (LOWER(full_name) LIKE $%d OR LOWER(COALESCE(display_name, '')) LIKE $%d)", len(args)+1, len(args)+1)
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY full_name ASC", studentColumns, base)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID fetches a student row by id regardless of active state.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByName locates a student row for a date by case-insensitive name match,
// including inactive rows so callers can reactivate instead of duplicating.
func (r *StudentRepository) FindByName(ctx context.Context, date, name string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE date = $1 AND LOWER(full_name) = LOWER($2) ORDER BY active DESC, created_at DESC LIMIT 1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, date, name); err != nil {
		return nil, err
	}
	return &student, nil
}

// Create inserts a student row.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now

	const query = `INSERT INTO students (id, full_name, display_name, weakness, availability, date, color_keyword, active, created_at, updated_at) VALUES (:id, :full_name, :display_name, :weakness, :availability, :date, :color_keyword, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update overwrites the mutable fields of a student row.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET full_name = :full_name, display_name = :display_name, weakness = :weakness, availability = :availability, color_keyword = :color_keyword, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Deactivate soft-deletes a student row.
func (r *StudentRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE students SET active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate student: %w", err)
	}
	return nil
}

// DeactivateByDate soft-deletes every active student on a date.
func (r *StudentRepository) DeactivateByDate(ctx context.Context, date string) (int, error) {
	const query = `UPDATE students SET active = FALSE, updated_at = $2 WHERE date = $1 AND active = TRUE`
	res, err := r.db.ExecContext(ctx, query, date, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("deactivate students by date: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deactivate students by date: %w", err)
	}
	return int(affected), nil
}
