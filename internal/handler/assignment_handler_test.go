package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanare-juku/schedule-api/internal/models"
	"github.com/hanare-juku/schedule-api/internal/service"
)

// stubAssignmentRepo backs an AssignmentService in handler tests. Only the
// paths the handlers touch carry behaviour.
type stubAssignmentRepo struct {
	assignments map[string]*models.Assignment
	conflicts   []models.AssignmentConflict
}

func newStubAssignmentRepo() *stubAssignmentRepo {
	return &stubAssignmentRepo{assignments: make(map[string]*models.Assignment)}
}

func (m *stubAssignmentRepo) ListByDate(ctx context.Context, date string, includeInactive bool) ([]models.Assignment, error) {
	var out []models.Assignment
	for _, a := range m.assignments {
		if a.Date == date && (includeInactive || a.Active) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *stubAssignmentRepo) ListByDateRange(ctx context.Context, startDate, endDate string) ([]models.Assignment, error) {
	return nil, nil
}

func (m *stubAssignmentRepo) ListByStudent(ctx context.Context, studentID string) ([]models.Assignment, error) {
	return nil, nil
}

func (m *stubAssignmentRepo) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	if a, ok := m.assignments[id]; ok {
		clone := *a
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (m *stubAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = "created"
	}
	clone := *assignment
	m.assignments[assignment.ID] = &clone
	return nil
}

func (m *stubAssignmentRepo) Update(ctx context.Context, id string, patch models.AssignmentPatch) (*models.Assignment, error) {
	a, ok := m.assignments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if patch.TimeSlotID != nil {
		a.TimeSlotID = *patch.TimeSlotID
	}
	clone := *a
	return &clone, nil
}

func (m *stubAssignmentRepo) SetActive(ctx context.Context, id string, active bool) error {
	if a, ok := m.assignments[id]; ok {
		a.Active = active
		return nil
	}
	return sql.ErrNoRows
}

func (m *stubAssignmentRepo) DeactivateByDate(ctx context.Context, date string) (int, error) {
	count := 0
	for _, a := range m.assignments {
		if a.Date == date && a.Active {
			a.Active = false
			count++
		}
	}
	return count, nil
}

func (m *stubAssignmentRepo) CountActiveByDate(ctx context.Context, date string) (int, error) {
	return 0, nil
}

func (m *stubAssignmentRepo) FindTeacherConflicts(ctx context.Context, date string, timeSlotID int64, teacherID, excludeID string) ([]models.AssignmentConflict, error) {
	var out []models.AssignmentConflict
	for _, c := range m.conflicts {
		if c.Kind == "teacher" && c.PartyID == teacherID && c.AssignmentID != excludeID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *stubAssignmentRepo) FindStudentConflicts(ctx context.Context, date string, timeSlotID int64, studentID, excludeID string) ([]models.AssignmentConflict, error) {
	var out []models.AssignmentConflict
	for _, c := range m.conflicts {
		if c.Kind == "student" && c.PartyID == studentID && c.AssignmentID != excludeID {
			out = append(out, c)
		}
	}
	return out, nil
}

func newAssignmentRouter(repo *stubAssignmentRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewAssignmentService(repo, nil, nil, nil, nil)
	h := NewAssignmentHandler(svc)

	r := gin.New()
	r.GET("/assignments", h.ListByDate)
	r.POST("/assignments", h.Create)
	r.POST("/assignments/validate", h.Validate)
	r.PUT("/assignments/:id", h.Update)
	r.DELETE("/assignments/:id", h.Delete)
	r.POST("/assignments/:id/restore", h.Restore)
	r.DELETE("/days/:date/assignments", h.DeleteAllForDate)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		require.NoError(t, err)
	}
	req, err := http.NewRequest(method, path, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAssignmentCreateEndpoint(t *testing.T) {
	repo := newStubAssignmentRepo()
	r := newAssignmentRouter(repo)

	w := doJSON(t, r, http.MethodPost, "/assignments", gin.H{
		"date":         "2026-04-06",
		"time_slot_id": 2,
		"teachers":     []gin.H{{"teacher_id": "t1"}},
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, repo.assignments, 1)
}

func TestAssignmentCreateConflictEndpoint(t *testing.T) {
	repo := newStubAssignmentRepo()
	repo.conflicts = []models.AssignmentConflict{{
		AssignmentID: "a9", Kind: "teacher", PartyID: "t1", PartyName: "Aoki",
	}}
	r := newAssignmentRouter(repo)

	w := doJSON(t, r, http.MethodPost, "/assignments", gin.H{
		"date":         "2026-04-06",
		"time_slot_id": 2,
		"teachers":     []gin.H{{"teacher_id": "t1"}},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Aoki")
}

func TestAssignmentListRequiresDate(t *testing.T) {
	r := newAssignmentRouter(newStubAssignmentRepo())

	w := doJSON(t, r, http.MethodGet, "/assignments", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssignmentUpdateRevalidatesSlot(t *testing.T) {
	repo := newStubAssignmentRepo()
	repo.assignments["a1"] = &models.Assignment{
		ID: "a1", Date: "2026-04-06", TimeSlotID: 2, Active: true,
		Teachers: []models.AssignmentTeacher{{TeacherID: "t1"}},
	}
	repo.conflicts = []models.AssignmentConflict{{
		AssignmentID: "a2", Kind: "teacher", PartyID: "t1", PartyName: "Aoki",
	}}
	r := newAssignmentRouter(repo)

	w := doJSON(t, r, http.MethodPut, "/assignments/a1", gin.H{"time_slot_id": 3})
	assert.Equal(t, http.StatusConflict, w.Code)
	// Storage untouched on rejection.
	assert.Equal(t, int64(2), repo.assignments["a1"].TimeSlotID)
}

func TestAssignmentUpdateOwnSlotSucceeds(t *testing.T) {
	repo := newStubAssignmentRepo()
	repo.assignments["a1"] = &models.Assignment{
		ID: "a1", Date: "2026-04-06", TimeSlotID: 2, Active: true,
		Teachers: []models.AssignmentTeacher{{TeacherID: "t1"}},
	}
	// The only conflict on record is the assignment being updated.
	repo.conflicts = []models.AssignmentConflict{{
		AssignmentID: "a1", Kind: "teacher", PartyID: "t1", PartyName: "Aoki",
	}}
	r := newAssignmentRouter(repo)

	w := doJSON(t, r, http.MethodPut, "/assignments/a1", gin.H{"time_slot_id": 3})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(3), repo.assignments["a1"].TimeSlotID)
}

func TestAssignmentDeleteAndRestoreEndpoints(t *testing.T) {
	repo := newStubAssignmentRepo()
	repo.assignments["a1"] = &models.Assignment{ID: "a1", Date: "2026-04-06", TimeSlotID: 2, Active: true}
	r := newAssignmentRouter(repo)

	w := doJSON(t, r, http.MethodDelete, "/assignments/a1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, repo.assignments["a1"].Active)

	w = doJSON(t, r, http.MethodPost, "/assignments/a1/restore", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, repo.assignments["a1"].Active)
}

func TestDeleteAllForDateEndpoint(t *testing.T) {
	repo := newStubAssignmentRepo()
	repo.assignments["a1"] = &models.Assignment{ID: "a1", Date: "2026-04-06", Active: true}
	repo.assignments["a2"] = &models.Assignment{ID: "a2", Date: "2026-04-06", Active: true}
	r := newAssignmentRouter(repo)

	w := doJSON(t, r, http.MethodDelete, "/days/2026-04-06/assignments", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "\"deleted_count\":2")
}
