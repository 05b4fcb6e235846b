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

// TeacherRepository manages persistence for date-scoped teacher rows.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

const teacherColumns = "id, full_name, availability, date, color_keyword, active, created_at, updated_at"

// ListByDate returns teachers scheduled on a date, optionally filtered by a
// case-insensitive name search.
func (r *TeacherRepository) ListByDate(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, error) {
	base := "FROM teachers WHERE date = $1"
	args := []interface{}{filter.Date}

	if filter.ActiveOnly {
		base += " AND active = TRUE"
	}
	if filter.Search != "" {
		base += fmt.Sprintf(" AND LOWER(full_name) LIKE $%d", len(args)+1)
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY full_name ASC", teacherColumns, base)
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query, args...); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, nil
}

// FindByID fetches a teacher row by id regardless of active state.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	query := fmt.Sprintf("SELECT %s FROM teachers WHERE id = $1", teacherColumns)
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// FindByName locates a teacher row for a date by case-insensitive name match.
// Inactive rows are included so callers can reactivate instead of duplicating.
// Active rows win when both exist.
func (r *TeacherRepository) FindByName(ctx context.Context, date, name string) (*models.Teacher, error) {
	query := fmt.Sprintf("SELECT %s FROM teachers WHERE date = $1 AND LOWER(full_name) = LOWER($2) ORDER BY active DESC, created_at DESC LIMIT 1", teacherColumns)
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, date, name); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// Create inserts a teacher row.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if teacher.CreatedAt.IsZero() {
		teacher.CreatedAt = now
	}
	teacher.UpdatedAt = now

	const query = `INSERT INTO teachers (id, full_name, availability, date, color_keyword, active, created_at, updated_at) VALUES (:id, :full_name, :availability, :date, :color_keyword, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		return fmt.Errorf("create teacher: %w", err)
	}
	return nil
}

// Update overwrites the mutable fields of a teacher row.
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	teacher.UpdatedAt = time.Now().UTC()
	const query = `UPDATE teachers SET full_name = :full_name, availability = :availability, color_keyword = :color_keyword, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		return fmt.Errorf("update teacher: %w", err)
	}
	return nil
}

// Deactivate soft-deletes a teacher row.
func (r *TeacherRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE teachers SET active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate teacher: %w", err)
	}
	return nil
}

// DeactivateByDate soft-deletes every active teacher on a date and reports how
// many rows were flipped.
func (r *TeacherRepository) DeactivateByDate(ctx context.Context, date string) (int, error) {
	const query = `UPDATE teachers SET active = FALSE, updated_at = $2 WHERE date = $1 AND active = TRUE`
	res, err := r.db.ExecContext(ctx, query, date, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("deactivate teachers by date: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deactivate teachers by date: %w", err)
	}
	return int(affected), nil
}
