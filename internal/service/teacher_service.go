package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/hanare-juku/schedule-api/internal/models"
	appErrors "github.com/hanare-juku/schedule-api/pkg/errors"
)

type teacherRepository interface {
	ListByDate(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	FindByName(ctx context.Context, date, name string) (*models.Teacher, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	Deactivate(ctx context.Context, id string) error
}

// CreateTeacherRequest describes payload for creating a teacher row.
type CreateTeacherRequest struct {
	FullName     string  `json:"full_name" validate:"required"`
	Date         string  `json:"date" validate:"required,datetime=2006-01-02"`
	Availability []int64 `json:"availability"`
	ColorKeyword *string `json:"color_keyword"`
}

// UpdateTeacherRequest overwrites the mutable fields of a teacher row.
type UpdateTeacherRequest struct {
	FullName     string  `json:"full_name" validate:"required"`
	Availability []int64 `json:"availability"`
	ColorKeyword *string `json:"color_keyword"`
}

// TeacherService coordinates teacher directory operations. Name+date
// uniqueness among active rows is advisory: the find-then-reactivate pattern
// below prevents duplicates on the happy path but no storage constraint
// enforces it.
type TeacherService struct {
	repo      teacherRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService instantiates TeacherService.
func NewTeacherService(repo teacherRepository, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, validator: validate, logger: logger}
}

// ListByDate returns teachers scheduled on a date.
func (s *TeacherService) ListByDate(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, error) {
	teachers, err := s.repo.ListByDate(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	return teachers, nil
}

// Get loads a teacher row by id.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return teacher, nil
}

// Create inserts a teacher row for a date.
func (s *TeacherService) Create(ctx context.Context, req CreateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}

	teacher := &models.Teacher{
		FullName:     req.FullName,
		Availability: pq.Int64Array(req.Availability),
		Date:         req.Date,
		ColorKeyword: req.ColorKeyword,
		Active:       true,
	}
	if err := s.repo.Create(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher")
	}
	return teacher, nil
}

// Update overwrites a teacher row's mutable fields.
func (s *TeacherService) Update(ctx context.Context, id string, req UpdateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}

	teacher, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	teacher.FullName = req.FullName
	teacher.Availability = pq.Int64Array(req.Availability)
	teacher.ColorKeyword = req.ColorKeyword

	if err := s.repo.Update(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teacher")
	}
	return teacher, nil
}

// Delete soft-deletes a teacher row.
func (s *TeacherService) Delete(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !teacher.Active {
		return teacher, nil
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete teacher")
	}
	teacher.Active = false
	return teacher, nil
}

// FindOrCreateForDate resolves a teacher for a date by case-insensitive name:
// an active match is returned as-is, an inactive match is reactivated and
// overwritten with the requested fields, and no match creates a fresh row.
func (s *TeacherService) FindOrCreateForDate(ctx context.Context, req CreateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}

	existing, err := s.repo.FindByName(ctx, req.Date, req.FullName)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up teacher")
		}
		return s.Create(ctx, req)
	}

	if existing.Active {
		return existing, nil
	}

	existing.FullName = req.FullName
	existing.Availability = pq.Int64Array(req.Availability)
	existing.ColorKeyword = req.ColorKeyword
	existing.Active = true
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reactivate teacher")
	}
	s.logger.Info("reactivated teacher", zap.String("teacher_id", existing.ID), zap.String("date", existing.Date))
	return existing, nil
}
