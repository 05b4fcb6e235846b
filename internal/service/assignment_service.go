package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hanare-juku/schedule-api/internal/models"
	"github.com/hanare-juku/schedule-api/internal/repository"
	appErrors "github.com/hanare-juku/schedule-api/pkg/errors"
)

type assignmentRepository interface {
	ListByDate(ctx context.Context, date string, includeInactive bool) ([]models.Assignment, error)
	ListByDateRange(ctx context.Context, startDate, endDate string) ([]models.Assignment, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Assignment, error)
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, id string, patch models.AssignmentPatch) (*models.Assignment, error)
	SetActive(ctx context.Context, id string, active bool) error
	DeactivateByDate(ctx context.Context, date string) (int, error)
	CountActiveByDate(ctx context.Context, date string) (int, error)
	FindTeacherConflicts(ctx context.Context, date string, timeSlotID int64, teacherID, excludeID string) ([]models.AssignmentConflict, error)
	FindStudentConflicts(ctx context.Context, date string, timeSlotID int64, studentID, excludeID string) ([]models.AssignmentConflict, error)
}

type backupScheduler interface {
	SnapshotDayAsync(date string)
}

// TeacherLinkRequest references a teacher on an assignment payload.
type TeacherLinkRequest struct {
	TeacherID    string `json:"teacher_id" validate:"required"`
	IsSubstitute bool   `json:"is_substitute"`
}

// StudentLinkRequest references a student on an assignment payload.
type StudentLinkRequest struct {
	StudentID    string  `json:"student_id" validate:"required"`
	SubmissionID *string `json:"submission_id"`
}

// CreateAssignmentRequest describes the payload for creating an assignment.
type CreateAssignmentRequest struct {
	Date         string               `json:"date" validate:"required,datetime=2006-01-02"`
	TimeSlotID   int64                `json:"time_slot_id" validate:"required"`
	Subject      *string              `json:"subject"`
	Notes        *string              `json:"notes"`
	ColorKeyword *string              `json:"color_keyword"`
	Teachers     []TeacherLinkRequest `json:"teachers" validate:"dive"`
	Students     []StudentLinkRequest `json:"students" validate:"dive"`
}

// ValidateAssignmentRequest is the conflict-validation payload. ID is set on
// updates so the candidate does not conflict with itself.
type ValidateAssignmentRequest struct {
	ID         string               `json:"id"`
	Date       string               `json:"date" validate:"required,datetime=2006-01-02"`
	TimeSlotID int64                `json:"time_slot_id" validate:"required"`
	Teachers   []TeacherLinkRequest `json:"teachers" validate:"dive"`
	Students   []StudentLinkRequest `json:"students" validate:"dive"`
}

// UpdateAssignmentRequest carries an explicit patch; every field is
// independently optional.
type UpdateAssignmentRequest struct {
	Date         *string               `json:"date" validate:"omitempty,datetime=2006-01-02"`
	TimeSlotID   *int64                `json:"time_slot_id"`
	Subject      *string               `json:"subject"`
	Notes        *string               `json:"notes"`
	ColorKeyword *string               `json:"color_keyword"`
	Teachers     *[]TeacherLinkRequest `json:"teachers" validate:"omitempty,dive"`
	Students     *[]StudentLinkRequest `json:"students" validate:"omitempty,dive"`
}

// DeleteAllResult reports a bulk soft-delete.
type DeleteAllResult struct {
	Date         string `json:"date"`
	DeletedCount int    `json:"deleted_count"`
}

// AssignmentService owns the assignment lifecycle and the conflict validator.
// The validator is advisory: every mutation path here calls it explicitly,
// and the schema's partial unique indexes backstop races it cannot see.
type AssignmentService struct {
	repo      assignmentRepository
	cache     *CacheService
	backup    backupScheduler
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService instantiates AssignmentService. cache and backup may
// be nil; the service degrades to uncached, snapshot-free behaviour.
func NewAssignmentService(repo assignmentRepository, cache *CacheService, backup backupScheduler, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{repo: repo, cache: cache, backup: backup, validator: validate, logger: logger}
}

func assignmentsCacheKey(date string) string {
	return "assignments:date:" + date
}

// ListByDate returns the active assignments for a date, cache-aside.
func (s *AssignmentService) ListByDate(ctx context.Context, date string) ([]models.Assignment, error) {
	key := assignmentsCacheKey(date)
	if s.cache.Enabled() {
		var cached []models.Assignment
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	assignments, err := s.repo.ListByDate(ctx, date, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}

	if s.cache.Enabled() {
		_ = s.cache.Set(ctx, key, assignments, 0)
	}
	return assignments, nil
}

// ListByDateRange returns active assignments for `days` consecutive dates
// starting at startDate.
func (s *AssignmentService) ListByDateRange(ctx context.Context, startDate string, days int) ([]models.Assignment, error) {
	if days < 1 {
		days = 1
	}
	endDate, err := addDays(startDate, days-1)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start date")
	}
	assignments, err := s.repo.ListByDateRange(ctx, startDate, endDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments by range")
	}
	return assignments, nil
}

// ListByStudent returns active assignments that include a student.
func (s *AssignmentService) ListByStudent(ctx context.Context, studentID string) ([]models.Assignment, error) {
	assignments, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list student assignments")
	}
	return assignments, nil
}

// Get loads an assignment by id, soft-deleted rows included.
func (s *AssignmentService) Get(ctx context.Context, id string) (*models.Assignment, error) {
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return assignment, nil
}

// Validate runs the conflict check for a prospective assignment. Per-entity
// queries keep each error attributable to a specific teacher or student. A
// candidate with no participants is trivially valid: the at-least-one rule
// belongs to the mutation paths, not the validator.
func (s *AssignmentService) Validate(ctx context.Context, req ValidateAssignmentRequest) (*models.ValidationResult, []models.AssignmentConflict, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid validation payload")
	}

	var conflicts []models.AssignmentConflict
	for _, link := range req.Teachers {
		found, err := s.repo.FindTeacherConflicts(ctx, req.Date, req.TimeSlotID, link.TeacherID, req.ID)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher conflicts")
		}
		conflicts = append(conflicts, found...)
	}
	for _, link := range req.Students {
		found, err := s.repo.FindStudentConflicts(ctx, req.Date, req.TimeSlotID, link.StudentID, req.ID)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student conflicts")
		}
		conflicts = append(conflicts, found...)
	}

	result := &models.ValidationResult{Valid: len(conflicts) == 0}
	for _, c := range conflicts {
		result.Errors = append(result.Errors, c.Message())
	}
	return result, conflicts, nil
}

// Create validates defensively and inserts the assignment with its junction
// rows atomically. An assignment needs at least one participant.
func (s *AssignmentService) Create(ctx context.Context, req CreateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	if len(req.Teachers) == 0 && len(req.Students) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "assignment requires at least one teacher or student")
	}

	result, conflicts, err := s.Validate(ctx, ValidateAssignmentRequest{
		Date:       req.Date,
		TimeSlotID: req.TimeSlotID,
		Teachers:   req.Teachers,
		Students:   req.Students,
	})
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, ConflictError(conflicts)
	}

	assignment := &models.Assignment{
		Date:         req.Date,
		TimeSlotID:   req.TimeSlotID,
		Subject:      req.Subject,
		Notes:        req.Notes,
		ColorKeyword: req.ColorKeyword,
		Active:       true,
		Teachers:     toTeacherLinks(req.Teachers),
		Students:     toStudentLinks(req.Students),
	}

	if err := s.repo.Create(ctx, assignment); err != nil {
		if repository.IsUniqueViolation(err) {
			// A concurrent writer won the slot between our read and the
			// insert; the schema constraint is the backstop.
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "assignment slot was taken concurrently")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}

	s.invalidateDate(ctx, req.Date)
	return assignment, nil
}

// Update applies a partial patch. It does not revalidate conflicts itself:
// callers are expected to run Validate first, and the schema constraint
// catches what they miss on replaced sides.
func (s *AssignmentService) Update(ctx context.Context, id string, req UpdateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment patch")
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	patch := models.AssignmentPatch{
		Date:         req.Date,
		TimeSlotID:   req.TimeSlotID,
		Subject:      req.Subject,
		Notes:        req.Notes,
		ColorKeyword: req.ColorKeyword,
	}
	if req.Teachers != nil {
		links := toTeacherLinks(*req.Teachers)
		patch.Teachers = &links
	}
	if req.Students != nil {
		links := toStudentLinks(*req.Students)
		patch.Students = &links
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "assignment slot was taken concurrently")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assignment")
	}

	s.invalidateDate(ctx, existing.Date)
	if updated.Date != existing.Date {
		s.invalidateDate(ctx, updated.Date)
	}
	return updated, nil
}

// Delete soft-deletes an assignment. Deleting an already-inactive assignment
// is a no-op.
func (s *AssignmentService) Delete(ctx context.Context, id string) (*models.Assignment, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !existing.Active {
		return existing, nil
	}

	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	existing.Active = false
	s.invalidateDate(ctx, existing.Date)
	return existing, nil
}

// Restore flips an inactive assignment back to active. It deliberately does
// not re-run the conflict validator: a slot reused since the soft-delete is
// reintroduced as a conflict, matching the historical behaviour operators
// rely on when undoing a deletion.
func (s *AssignmentService) Restore(ctx context.Context, id string) (*models.Assignment, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Active {
		return existing, nil
	}

	if err := s.repo.SetActive(ctx, id, true); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to restore assignment")
	}
	existing.Active = true
	s.invalidateDate(ctx, existing.Date)
	return existing, nil
}

// DeleteAllForDate soft-deletes every active assignment on a date. A backup
// snapshot is enqueued first as a fire-and-forget safety net; it is not
// transactionally tied to the delete.
func (s *AssignmentService) DeleteAllForDate(ctx context.Context, date string) (*DeleteAllResult, error) {
	if s.backup != nil {
		s.backup.SnapshotDayAsync(date)
	}

	count, err := s.repo.DeactivateByDate(ctx, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignments")
	}
	s.invalidateDate(ctx, date)
	return &DeleteAllResult{Date: date, DeletedCount: count}, nil
}

func (s *AssignmentService) invalidateDate(ctx context.Context, date string) {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.Invalidate(ctx, assignmentsCacheKey(date)+"*"); err != nil {
		s.logger.Warn("assignment cache invalidation failed", zap.String("date", date), zap.Error(err))
	}
}

// ConflictError wraps validator conflicts into the shared error taxonomy.
func ConflictError(conflicts []models.AssignmentConflict) error {
	messages := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		messages = append(messages, c.Message())
	}
	domainErr := &models.AssignmentConflictError{
		Message:   fmt.Sprintf("validation failed: %d scheduling conflict(s)", len(conflicts)),
		Conflicts: conflicts,
	}
	msg := domainErr.Message
	if len(messages) > 0 {
		msg = "validation failed: " + messages[0]
	}
	return appErrors.Wrap(domainErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, msg)
}

func toTeacherLinks(reqs []TeacherLinkRequest) []models.AssignmentTeacher {
	links := make([]models.AssignmentTeacher, 0, len(reqs))
	for _, r := range reqs {
		links = append(links, models.AssignmentTeacher{TeacherID: r.TeacherID, IsSubstitute: r.IsSubstitute})
	}
	return links
}

func toStudentLinks(reqs []StudentLinkRequest) []models.AssignmentStudent {
	links := make([]models.AssignmentStudent, 0, len(reqs))
	for _, r := range reqs {
		links = append(links, models.AssignmentStudent{StudentID: r.StudentID, SubmissionID: r.SubmissionID})
	}
	return links
}
