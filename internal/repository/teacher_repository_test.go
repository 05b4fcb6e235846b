package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanare-juku/schedule-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func teacherRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "full_name", "availability", "date", "color_keyword", "active", "created_at", "updated_at"})
}

func TestTeacherListByDate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	now := time.Now()
	rows := teacherRows().
		AddRow("t1", "Aoki", pq.Int64Array{1, 2}, "2026-04-06", nil, true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, full_name, availability, date, color_keyword, active, created_at, updated_at FROM teachers WHERE date = $1 AND active = TRUE ORDER BY full_name ASC")).
		WithArgs("2026-04-06").
		WillReturnRows(rows)

	teachers, err := repo.ListByDate(context.Background(), models.TeacherFilter{Date: "2026-04-06", ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, teachers, 1)
	assert.Equal(t, "Aoki", teachers[0].FullName)
	assert.Equal(t, pq.Int64Array{1, 2}, teachers[0].Availability)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherListByDateSearch(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, full_name, availability, date, color_keyword, active, created_at, updated_at FROM teachers WHERE date = $1 AND LOWER(full_name) LIKE $2 ORDER BY full_name ASC")).
		WithArgs("2026-04-06", "%aok%").
		WillReturnRows(teacherRows().AddRow("t1", "Aoki", pq.Int64Array{}, "2026-04-06", nil, true, now, now))

	teachers, err := repo.ListByDate(context.Background(), models.TeacherFilter{Date: "2026-04-06", Search: "Aok"})
	require.NoError(t, err)
	assert.Len(t, teachers, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherFindByName(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, full_name, availability, date, color_keyword, active, created_at, updated_at FROM teachers WHERE date = $1 AND LOWER(full_name) = LOWER($2) ORDER BY active DESC, created_at DESC LIMIT 1")).
		WithArgs("2026-04-06", "Aoki").
		WillReturnRows(teacherRows().AddRow("t1", "Aoki", pq.Int64Array{3}, "2026-04-06", nil, false, now, now))

	teacher, err := repo.FindByName(context.Background(), "2026-04-06", "Aoki")
	require.NoError(t, err)
	assert.Equal(t, "t1", teacher.ID)
	assert.False(t, teacher.Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherCreateGeneratesID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectExec("INSERT INTO teachers").WillReturnResult(sqlmock.NewResult(0, 1))

	teacher := &models.Teacher{FullName: "Aoki", Date: "2026-04-06", Active: true}
	require.NoError(t, repo.Create(context.Background(), teacher))
	assert.NotEmpty(t, teacher.ID)
	assert.False(t, teacher.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherDeactivateByDate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE teachers SET active = FALSE, updated_at = $2 WHERE date = $1 AND active = TRUE")).
		WithArgs("2026-04-06", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	count, err := repo.DeactivateByDate(context.Background(), "2026-04-06")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
