package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanare-juku/schedule-api/internal/models"
)

func assignmentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "date", "time_slot_id", "subject", "notes", "color_keyword", "room_id", "active", "created_at", "updated_at"})
}

func TestAssignmentListByDateAttachesParticipants(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, date, time_slot_id, subject, notes, color_keyword, room_id, active, created_at, updated_at FROM assignments WHERE date = $1 AND active = TRUE ORDER BY time_slot_id ASC, created_at ASC")).
		WithArgs("2026-04-06").
		WillReturnRows(assignmentRows().AddRow("a1", "2026-04-06", int64(2), "math", nil, nil, nil, true, now, now))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT assignment_id, teacher_id, date, time_slot_id, is_substitute FROM assignment_teachers WHERE assignment_id = ANY($1) ORDER BY teacher_id")).
		WillReturnRows(sqlmock.NewRows([]string{"assignment_id", "teacher_id", "date", "time_slot_id", "is_substitute"}).
			AddRow("a1", "t1", "2026-04-06", int64(2), true))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT assignment_id, student_id, date, time_slot_id, submission_id FROM assignment_students WHERE assignment_id = ANY($1) ORDER BY student_id")).
		WillReturnRows(sqlmock.NewRows([]string{"assignment_id", "student_id", "date", "time_slot_id", "submission_id"}).
			AddRow("a1", "s1", "2026-04-06", int64(2), nil).
			AddRow("a1", "s2", "2026-04-06", int64(2), "sub-9"))

	assignments, err := repo.ListByDate(context.Background(), "2026-04-06", false)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	require.Len(t, assignments[0].Teachers, 1)
	assert.True(t, assignments[0].Teachers[0].IsSubstitute)
	require.Len(t, assignments[0].Students, 2)
	require.NotNil(t, assignments[0].Students[1].SubmissionID)
	assert.Equal(t, "sub-9", *assignments[0].Students[1].SubmissionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentCreateRunsInTransaction(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO assignments").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO assignment_teachers").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO assignment_students").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	room := "north-annex"
	assignment := &models.Assignment{
		Date:       "2026-04-06",
		TimeSlotID: 2,
		RoomID:     &room,
		Active:     true,
		Teachers:   []models.AssignmentTeacher{{TeacherID: "t1"}},
		Students:   []models.AssignmentStudent{{StudentID: "s1"}},
	}
	require.NoError(t, repo.Create(context.Background(), assignment))
	assert.NotEmpty(t, assignment.ID)
	assert.Nil(t, assignment.RoomID)
	assert.Equal(t, assignment.ID, assignment.Teachers[0].AssignmentID)
	assert.Equal(t, "2026-04-06", assignment.Students[0].Date)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentCreateRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO assignments").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO assignment_teachers").
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	assignment := &models.Assignment{
		Date:       "2026-04-06",
		TimeSlotID: 2,
		Active:     true,
		Teachers:   []models.AssignmentTeacher{{TeacherID: "t1"}},
	}
	err := repo.Create(context.Background(), assignment)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentSetActiveUnknownID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE assignments SET active = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("missing", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetActive(context.Background(), "missing", true)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentDeactivateByDate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE assignments SET active = FALSE, updated_at = $2 WHERE date = $1 AND active = TRUE")).
		WithArgs("2026-04-06", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 5))

	count, err := repo.DeactivateByDate(context.Background(), "2026-04-06")
	require.NoError(t, err)
	assert.Equal(t, 5, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindTeacherConflicts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	rows := sqlmock.NewRows([]string{"assignment_id", "party_name", "counterpart_names"}).
		AddRow("a9", "Aoki", pq.StringArray{"Sato Yui", "Tanaka Ren"})
	mock.ExpectQuery("SELECT a.id AS assignment_id, t.full_name AS party_name").
		WithArgs("2026-04-06", int64(2), "t1", "").
		WillReturnRows(rows)

	conflicts, err := repo.FindTeacherConflicts(context.Background(), "2026-04-06", 2, "t1", "")
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "teacher", conflicts[0].Kind)
	assert.Equal(t, "t1", conflicts[0].PartyID)
	assert.Contains(t, conflicts[0].Message(), "Aoki")
	assert.Contains(t, conflicts[0].Message(), "Sato Yui")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23P01"}))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("plain")))
}
