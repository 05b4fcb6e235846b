package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanare-juku/schedule-api/internal/models"
	appErrors "github.com/hanare-juku/schedule-api/pkg/errors"
)

type mockTeacherRepo struct {
	teachers map[string]*models.Teacher
	created  int
	updated  int
}

func newMockTeacherRepo() *mockTeacherRepo {
	return &mockTeacherRepo{teachers: make(map[string]*models.Teacher)}
}

func (m *mockTeacherRepo) ListByDate(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, error) {
	var out []models.Teacher
	for _, t := range m.teachers {
		if t.Date == filter.Date && (!filter.ActiveOnly || t.Active) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *mockTeacherRepo) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if t, ok := m.teachers[id]; ok {
		clone := *t
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTeacherRepo) FindByName(ctx context.Context, date, name string) (*models.Teacher, error) {
	var best *models.Teacher
	for _, t := range m.teachers {
		if t.Date != date || t.FullName != name {
			continue
		}
		if best == nil || (t.Active && !best.Active) {
			best = t
		}
	}
	if best == nil {
		return nil, sql.ErrNoRows
	}
	clone := *best
	return &clone, nil
}

func (m *mockTeacherRepo) Create(ctx context.Context, teacher *models.Teacher) error {
	m.created++
	if teacher.ID == "" {
		teacher.ID = "created"
	}
	clone := *teacher
	m.teachers[teacher.ID] = &clone
	return nil
}

func (m *mockTeacherRepo) Update(ctx context.Context, teacher *models.Teacher) error {
	m.updated++
	clone := *teacher
	m.teachers[teacher.ID] = &clone
	return nil
}

func (m *mockTeacherRepo) Deactivate(ctx context.Context, id string) error {
	if t, ok := m.teachers[id]; ok {
		t.Active = false
		return nil
	}
	return sql.ErrNoRows
}

func TestTeacherFindOrCreateReturnsActiveMatch(t *testing.T) {
	repo := newMockTeacherRepo()
	repo.teachers["t1"] = &models.Teacher{ID: "t1", FullName: "Aoki", Date: "2026-04-06", Active: true}
	svc := NewTeacherService(repo, nil, nil)

	teacher, err := svc.FindOrCreateForDate(context.Background(), CreateTeacherRequest{FullName: "Aoki", Date: "2026-04-06"})
	require.NoError(t, err)
	assert.Equal(t, "t1", teacher.ID)
	assert.Zero(t, repo.created)
}

func TestTeacherFindOrCreateReactivates(t *testing.T) {
	repo := newMockTeacherRepo()
	repo.teachers["t1"] = &models.Teacher{ID: "t1", FullName: "Aoki", Date: "2026-04-06", Active: false}
	svc := NewTeacherService(repo, nil, nil)

	teacher, err := svc.FindOrCreateForDate(context.Background(), CreateTeacherRequest{
		FullName:     "Aoki",
		Date:         "2026-04-06",
		Availability: []int64{1, 4},
	})
	require.NoError(t, err)
	assert.Equal(t, "t1", teacher.ID)
	assert.True(t, teacher.Active)
	assert.EqualValues(t, []int64{1, 4}, []int64(teacher.Availability))
	assert.Zero(t, repo.created)
	assert.Equal(t, 1, repo.updated)
}

func TestTeacherFindOrCreateCreatesFreshRow(t *testing.T) {
	repo := newMockTeacherRepo()
	svc := NewTeacherService(repo, nil, nil)

	teacher, err := svc.FindOrCreateForDate(context.Background(), CreateTeacherRequest{FullName: "Aoki", Date: "2026-04-06"})
	require.NoError(t, err)
	assert.True(t, teacher.Active)
	assert.Equal(t, 1, repo.created)
}

func TestTeacherGetNotFound(t *testing.T) {
	svc := NewTeacherService(newMockTeacherRepo(), nil, nil)

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTeacherCreateRejectsBadDate(t *testing.T) {
	svc := NewTeacherService(newMockTeacherRepo(), nil, nil)

	_, err := svc.Create(context.Background(), CreateTeacherRequest{FullName: "Aoki", Date: "06-04-2026"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTeacherDelete(t *testing.T) {
	repo := newMockTeacherRepo()
	repo.teachers["t1"] = &models.Teacher{ID: "t1", FullName: "Aoki", Date: "2026-04-06", Active: true}
	svc := NewTeacherService(repo, nil, nil)

	deleted, err := svc.Delete(context.Background(), "t1")
	require.NoError(t, err)
	assert.False(t, deleted.Active)
	assert.False(t, repo.teachers["t1"].Active)
}
