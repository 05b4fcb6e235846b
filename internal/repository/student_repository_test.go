package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanare-juku/schedule-api/internal/models"
)

func studentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "full_name", "display_name", "weakness", "availability", "date", "color_keyword", "active", "created_at", "updated_at"})
}

func TestStudentListByDate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	weakness := "fractions"
	rows := studentRows().
		AddRow("s1", "Sato Yui", "Yui", weakness, pq.Int64Array{2, 3}, "2026-04-06", nil, true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, full_name, display_name, weakness, availability, date, color_keyword, active, created_at, updated_at FROM students WHERE date = $1 AND active = TRUE ORDER BY full_name ASC")).
		WithArgs("2026-04-06").
		WillReturnRows(rows)

	students, err := repo.ListByDate(context.Background(), models.StudentFilter{Date: "2026-04-06", ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, students, 1)
	require.NotNil(t, students[0].DisplayName)
	assert.Equal(t, "Yui", *students[0].DisplayName)
	require.NotNil(t, students[0].Weakness)
	assert.Equal(t, "fractions", *students[0].Weakness)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentFindByNamePrefersActive(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, full_name, display_name, weakness, availability, date, color_keyword, active, created_at, updated_at FROM students WHERE date = $1 AND LOWER(full_name) = LOWER($2) ORDER BY active DESC, created_at DESC LIMIT 1")).
		WithArgs("2026-04-06", "Sato Yui").
		WillReturnRows(studentRows().AddRow("s1", "Sato Yui", "Yui", nil, pq.Int64Array{}, "2026-04-06", nil, true, now, now))

	student, err := repo.FindByName(context.Background(), "2026-04-06", "Sato Yui")
	require.NoError(t, err)
	assert.True(t, student.Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentDeactivate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET active = FALSE, updated_at = $2 WHERE id = $1")).
		WithArgs("s1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Deactivate(context.Background(), "s1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
