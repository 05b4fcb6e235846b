package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeSlotList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTimeSlotRepository(db)

	rows := sqlmock.NewRows([]string{"id", "start_time", "end_time", "slot_order"}).
		AddRow(int64(1), "16:00", "17:10", 1).
		AddRow(int64(2), "17:20", "18:30", 2)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, start_time, end_time, slot_order FROM time_slots ORDER BY slot_order ASC")).
		WillReturnRows(rows)

	slots, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "16:00", slots[0].StartTime)
	assert.Equal(t, 2, slots[1].SlotOrder)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeSlotFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTimeSlotRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, start_time, end_time, slot_order FROM time_slots WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "start_time", "end_time", "slot_order"}).
			AddRow(int64(3), "18:40", "19:50", 3))

	slot, err := repo.FindByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), slot.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
