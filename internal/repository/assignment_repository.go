package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/hanare-juku/schedule-api/internal/models"
)

// AssignmentRepository manages persistence for assignments and their
// teacher/student junction rows. Junction rows are owned by the assignment:
// they are written and replaced together with it, never independently.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs an AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

const assignmentColumns = "id, date, time_slot_id, subject, notes, color_keyword, room_id, active, created_at, updated_at"

// IsUniqueViolation reports whether err is a PostgreSQL unique or exclusion
// constraint violation. The deployed schema carries partial unique indexes
// over junction rows of active assignments, which backstop the advisory
// conflict validator against concurrent writes.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" || pqErr.Code == "23P01"
	}
	return false
}

// ListByDate returns assignments on a date with participants attached.
// Soft-deleted assignments are excluded unless includeInactive is set.
func (r *AssignmentRepository) ListByDate(ctx context.Context, date string, includeInactive bool) ([]models.Assignment, error) {
	query := fmt.Sprintf("SELECT %s FROM assignments WHERE date = $1", assignmentColumns)
	if !includeInactive {
		query += " AND active = TRUE"
	}
	query += " ORDER BY time_slot_id ASC, created_at ASC"

	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, date); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	if err := r.attachParticipants(ctx, assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// ListByDateRange returns active assignments with start <= date <= end.
// Dates are plain YYYY-MM-DD strings, so lexicographic comparison is
// calendar comparison.
func (r *AssignmentRepository) ListByDateRange(ctx context.Context, startDate, endDate string) ([]models.Assignment, error) {
	query := fmt.Sprintf("SELECT %s FROM assignments WHERE date >= $1 AND date <= $2 AND active = TRUE ORDER BY date ASC, time_slot_id ASC", assignmentColumns)
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, startDate, endDate); err != nil {
		return nil, fmt.Errorf("list assignments by range: %w", err)
	}
	if err := r.attachParticipants(ctx, assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// ListByStudent returns active assignments that include the student.
func (r *AssignmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Assignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM assignments a WHERE a.active = TRUE AND EXISTS (SELECT 1 FROM assignment_students s WHERE s.assignment_id = a.id AND s.student_id = $1) ORDER BY a.date ASC, a.time_slot_id ASC`,
		"a.id, a.date, a.time_slot_id, a.subject, a.notes, a.color_keyword, a.room_id, a.active, a.created_at, a.updated_at")
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, studentID); err != nil {
		return nil, fmt.Errorf("list assignments by student: %w", err)
	}
	if err := r.attachParticipants(ctx, assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// FindByID loads an assignment by id, active or not, with participants.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	query := fmt.Sprintf("SELECT %s FROM assignments WHERE id = $1", assignmentColumns)
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	single := []models.Assignment{assignment}
	if err := r.attachParticipants(ctx, single); err != nil {
		return nil, err
	}
	return &single[0], nil
}

// Create inserts the assignment and its junction rows in one transaction.
// RoomID is never persisted with a value.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) (err error) {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = now
	}
	assignment.UpdatedAt = now
	assignment.RoomID = nil

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create assignment: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO assignments (id, date, time_slot_id, subject, notes, color_keyword, room_id, active, created_at, updated_at) VALUES (:id, :date, :time_slot_id, :subject, :notes, :color_keyword, NULL, :active, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}

	if err = r.insertParticipants(ctx, tx, assignment); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create assignment: %w", err)
	}
	return nil
}

// Update applies a patch in one transaction. Absent fields keep their stored
// values via COALESCE; a supplied side replaces that side's junction rows
// wholesale; room_id is forced to NULL regardless of patch contents. Returns
// sql.ErrNoRows when the id is unknown.
func (r *AssignmentRepository) Update(ctx context.Context, id string, patch models.AssignmentPatch) (result *models.Assignment, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update assignment: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := fmt.Sprintf(`UPDATE assignments SET
		date = COALESCE($2, date),
		time_slot_id = COALESCE($3, time_slot_id),
		subject = COALESCE($4, subject),
		notes = COALESCE($5, notes),
		color_keyword = COALESCE($6, color_keyword),
		room_id = NULL,
		updated_at = $7
		WHERE id = $1
		RETURNING %s`, assignmentColumns)

	var updated models.Assignment
	err = tx.GetContext(ctx, &updated, query, id, patch.Date, patch.TimeSlotID, patch.Subject, patch.Notes, patch.ColorKeyword, time.Now().UTC())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("update assignment: %w", err)
	}

	// Keep the denormalized slot coordinates on junction rows in sync when
	// the assignment moved but a side was not replaced.
	const syncTeachers = `UPDATE assignment_teachers SET date = $2, time_slot_id = $3 WHERE assignment_id = $1`
	const syncStudents = `UPDATE assignment_students SET date = $2, time_slot_id = $3 WHERE assignment_id = $1`

	if patch.Teachers != nil {
		if _, err = tx.ExecContext(ctx, `DELETE FROM assignment_teachers WHERE assignment_id = $1`, id); err != nil {
			return nil, fmt.Errorf("replace assignment teachers: %w", err)
		}
		for _, link := range *patch.Teachers {
			link.AssignmentID = id
			link.Date = updated.Date
			link.TimeSlotID = updated.TimeSlotID
			if _, err = tx.NamedExecContext(ctx, `INSERT INTO assignment_teachers (assignment_id, teacher_id, date, time_slot_id, is_substitute) VALUES (:assignment_id, :teacher_id, :date, :time_slot_id, :is_substitute)`, &link); err != nil {
				return nil, fmt.Errorf("insert assignment teacher: %w", err)
			}
		}
	} else if _, err = tx.ExecContext(ctx, syncTeachers, id, updated.Date, updated.TimeSlotID); err != nil {
		return nil, fmt.Errorf("sync assignment teachers: %w", err)
	}

	if patch.Students != nil {
		if _, err = tx.ExecContext(ctx, `DELETE FROM assignment_students WHERE assignment_id = $1`, id); err != nil {
			return nil, fmt.Errorf("replace assignment students: %w", err)
		}
		for _, link := range *patch.Students {
			link.AssignmentID = id
			link.Date = updated.Date
			link.TimeSlotID = updated.TimeSlotID
			if _, err = tx.NamedExecContext(ctx, `INSERT INTO assignment_students (assignment_id, student_id, date, time_slot_id, submission_id) VALUES (:assignment_id, :student_id, :date, :time_slot_id, :submission_id)`, &link); err != nil {
				return nil, fmt.Errorf("insert assignment student: %w", err)
			}
		}
	} else if _, err = tx.ExecContext(ctx, syncStudents, id, updated.Date, updated.TimeSlotID); err != nil {
		return nil, fmt.Errorf("sync assignment students: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update assignment: %w", err)
	}

	return r.FindByID(ctx, updated.ID)
}

// SetActive flips the soft-delete flag. Returns sql.ErrNoRows for unknown ids.
func (r *AssignmentRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE assignments SET active = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, active, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set assignment active: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set assignment active: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeactivateByDate soft-deletes every active assignment on a date.
func (r *AssignmentRepository) DeactivateByDate(ctx context.Context, date string) (int, error) {
	const query = `UPDATE assignments SET active = FALSE, updated_at = $2 WHERE date = $1 AND active = TRUE`
	res, err := r.db.ExecContext(ctx, query, date, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("deactivate assignments by date: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deactivate assignments by date: %w", err)
	}
	return int(affected), nil
}

// CountActiveByDate counts active assignments on a date.
func (r *AssignmentRepository) CountActiveByDate(ctx context.Context, date string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM assignments WHERE date = $1 AND active = TRUE`, date); err != nil {
		return 0, fmt.Errorf("count assignments by date: %w", err)
	}
	return count, nil
}

// FindTeacherConflicts returns active assignments occupying the same date and
// slot as the candidate for a given teacher, along with the student names
// already bound there. The candidate's own id is excluded so a no-op update
// does not self-conflict.
func (r *AssignmentRepository) FindTeacherConflicts(ctx context.Context, date string, timeSlotID int64, teacherID, excludeID string) ([]models.AssignmentConflict, error) {
	const query = `SELECT a.id AS assignment_id, t.full_name AS party_name,
		COALESCE(ARRAY_AGG(s.full_name ORDER BY s.full_name) FILTER (WHERE s.full_name IS NOT NULL), '{}') AS counterpart_names
		FROM assignment_teachers att
		JOIN assignments a ON a.id = att.assignment_id AND a.active = TRUE
		JOIN teachers t ON t.id = att.teacher_id
		LEFT JOIN assignment_students ats ON ats.assignment_id = a.id
		LEFT JOIN students s ON s.id = ats.student_id
		WHERE att.date = $1 AND att.time_slot_id = $2 AND att.teacher_id = $3 AND a.id <> $4
		GROUP BY a.id, t.full_name`
	var rows []conflictRow
	if err := r.db.SelectContext(ctx, &rows, query, date, timeSlotID, teacherID, excludeID); err != nil {
		return nil, fmt.Errorf("find teacher conflicts: %w", err)
	}
	return toConflicts(rows, "teacher", teacherID), nil
}

// FindStudentConflicts is the student-side mirror of FindTeacherConflicts and
// reports the teacher names already bound at the slot.
func (r *AssignmentRepository) FindStudentConflicts(ctx context.Context, date string, timeSlotID int64, studentID, excludeID string) ([]models.AssignmentConflict, error) {
	const query = `SELECT a.id AS assignment_id, s.full_name AS party_name,
		COALESCE(ARRAY_AGG(t.full_name ORDER BY t.full_name) FILTER (WHERE t.full_name IS NOT NULL), '{}') AS counterpart_names
		FROM assignment_students ats
		JOIN assignments a ON a.id = ats.assignment_id AND a.active = TRUE
		JOIN students s ON s.id = ats.student_id
		LEFT JOIN assignment_teachers att ON att.assignment_id = a.id
		LEFT JOIN teachers t ON t.id = att.teacher_id
		WHERE ats.date = $1 AND ats.time_slot_id = $2 AND ats.student_id = $3 AND a.id <> $4
		GROUP BY a.id, s.full_name`
	var rows []conflictRow
	if err := r.db.SelectContext(ctx, &rows, query, date, timeSlotID, studentID, excludeID); err != nil {
		return nil, fmt.Errorf("find student conflicts: %w", err)
	}
	return toConflicts(rows, "student", studentID), nil
}

type conflictRow struct {
	AssignmentID     string         `db:"assignment_id"`
	PartyName        string         `db:"party_name"`
	CounterpartNames pq.StringArray `db:"counterpart_names"`
}

func toConflicts(rows []conflictRow, kind, partyID string) []models.AssignmentConflict {
	conflicts := make([]models.AssignmentConflict, 0, len(rows))
	for _, row := range rows {
		conflicts = append(conflicts, models.AssignmentConflict{
			AssignmentID:     row.AssignmentID,
			Kind:             kind,
			PartyID:          partyID,
			PartyName:        row.PartyName,
			CounterpartNames: row.CounterpartNames,
		})
	}
	return conflicts
}

func (r *AssignmentRepository) insertParticipants(ctx context.Context, tx *sqlx.Tx, assignment *models.Assignment) error {
	for i := range assignment.Teachers {
		link := assignment.Teachers[i]
		link.AssignmentID = assignment.ID
		link.Date = assignment.Date
		link.TimeSlotID = assignment.TimeSlotID
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO assignment_teachers (assignment_id, teacher_id, date, time_slot_id, is_substitute) VALUES (:assignment_id, :teacher_id, :date, :time_slot_id, :is_substitute)`, &link); err != nil {
			return fmt.Errorf("insert assignment teacher: %w", err)
		}
		assignment.Teachers[i] = link
	}
	for i := range assignment.Students {
		link := assignment.Students[i]
		link.AssignmentID = assignment.ID
		link.Date = assignment.Date
		link.TimeSlotID = assignment.TimeSlotID
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO assignment_students (assignment_id, student_id, date, time_slot_id, submission_id) VALUES (:assignment_id, :student_id, :date, :time_slot_id, :submission_id)`, &link); err != nil {
			return fmt.Errorf("insert assignment student: %w", err)
		}
		assignment.Students[i] = link
	}
	return nil
}

func (r *AssignmentRepository) attachParticipants(ctx context.Context, assignments []models.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}
	ids := make([]string, len(assignments))
	index := make(map[string]int, len(assignments))
	for i := range assignments {
		ids[i] = assignments[i].ID
		index[assignments[i].ID] = i
		assignments[i].Teachers = []models.AssignmentTeacher{}
		assignments[i].Students = []models.AssignmentStudent{}
	}

	var teacherLinks []models.AssignmentTeacher
	if err := r.db.SelectContext(ctx, &teacherLinks, `SELECT assignment_id, teacher_id, date, time_slot_id, is_substitute FROM assignment_teachers WHERE assignment_id = ANY($1) ORDER BY teacher_id`, pq.Array(ids)); err != nil {
		return fmt.Errorf("load assignment teachers: %w", err)
	}
	for _, link := range teacherLinks {
		if i, ok := index[link.AssignmentID]; ok {
			assignments[i].Teachers = append(assignments[i].Teachers, link)
		}
	}

	var studentLinks []models.AssignmentStudent
	if err := r.db.SelectContext(ctx, &studentLinks, `SELECT assignment_id, student_id, date, time_slot_id, submission_id FROM assignment_students WHERE assignment_id = ANY($1) ORDER BY student_id`, pq.Array(ids)); err != nil {
		return fmt.Errorf("load assignment students: %w", err)
	}
	for _, link := range studentLinks {
		if i, ok := index[link.AssignmentID]; ok {
			assignments[i].Students = append(assignments[i].Students, link)
		}
	}
	return nil
}
