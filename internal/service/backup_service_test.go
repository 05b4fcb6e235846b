package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanare-juku/schedule-api/internal/models"
	"github.com/hanare-juku/schedule-api/pkg/storage"
)

type staticAssignmentSource struct {
	assignments []models.Assignment
}

func (s *staticAssignmentSource) ListByDate(ctx context.Context, date string, includeInactive bool) ([]models.Assignment, error) {
	return s.assignments, nil
}

type staticTeacherSource struct {
	teachers []models.Teacher
}

func (s *staticTeacherSource) ListByDate(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, error) {
	return s.teachers, nil
}

type staticStudentSource struct {
	students []models.Student
}

func (s *staticStudentSource) ListByDate(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	return s.students, nil
}

func newBackupFixture(t *testing.T) *BackupService {
	t.Helper()
	subject := "math"
	assignments := &staticAssignmentSource{assignments: []models.Assignment{{
		ID:         "a1",
		Date:       "2026-04-06",
		TimeSlotID: 2,
		Subject:    &subject,
		Active:     true,
		Teachers: []models.AssignmentTeacher{
			{TeacherID: "t1"},
			{TeacherID: "t2", IsSubstitute: true},
		},
		Students: []models.AssignmentStudent{{StudentID: "s1"}},
	}}}
	teachers := &staticTeacherSource{teachers: []models.Teacher{
		{ID: "t1", FullName: "Aoki"},
		{ID: "t2", FullName: "Kimura"},
	}}
	students := &staticStudentSource{students: []models.Student{
		{ID: "s1", FullName: "Sato Yui"},
	}}

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return NewBackupService(assignments, teachers, students, store, nil)
}

func TestExportDayCSVResolvesNames(t *testing.T) {
	svc := newBackupFixture(t)

	payload, err := svc.ExportDayCSV(context.Background(), "2026-04-06")
	require.NoError(t, err)

	body := string(payload)
	assert.Contains(t, body, "assignment_id")
	assert.Contains(t, body, "Aoki; Kimura (sub)")
	assert.Contains(t, body, "Sato Yui")
	assert.Contains(t, body, "math")
}

func TestExportDayPDFProducesDocument(t *testing.T) {
	svc := newBackupFixture(t)

	payload, err := svc.ExportDayPDF(context.Background(), "2026-04-06")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}

func TestSnapshotDayWritesFile(t *testing.T) {
	svc := newBackupFixture(t)

	path, err := svc.SnapshotDay(context.Background(), "2026-04-06")
	require.NoError(t, err)
	assert.Contains(t, path, "assignments-2026-04-06")
	assert.True(t, strings.HasSuffix(path, ".csv"))
}

func TestSnapshotDayAsyncWithoutQueue(t *testing.T) {
	svc := newBackupFixture(t)

	// No queue attached: must log and return, never panic.
	svc.SnapshotDayAsync("2026-04-06")
}
