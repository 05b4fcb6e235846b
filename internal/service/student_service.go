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

type studentRepository interface {
	ListByDate(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByName(ctx context.Context, date, name string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Deactivate(ctx context.Context, id string) error
}

// CreateStudentRequest describes payload for creating a student row.
type CreateStudentRequest struct {
	FullName     string  `json:"full_name" validate:"required"`
	Date         string  `json:"date" validate:"required,datetime=2006-01-02"`
	DisplayName  *string `json:"display_name"`
	Weakness     *string `json:"weakness"`
	Availability []int64 `json:"availability"`
	ColorKeyword *string `json:"color_keyword"`
}

// UpdateStudentRequest overwrites the mutable fields of a student row.
type UpdateStudentRequest struct {
	FullName     string  `json:"full_name" validate:"required"`
	DisplayName  *string `json:"display_name"`
	Weakness     *string `json:"weakness"`
	Availability []int64 `json:"availability"`
	ColorKeyword *string `json:"color_keyword"`
}

// StudentService coordinates student directory operations, mirroring
// TeacherService including the advisory name+date uniqueness.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService instantiates StudentService.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// ListByDate returns students scheduled on a date.
func (s *StudentService) ListByDate(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	students, err := s.repo.ListByDate(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}

// Get loads a student row by id.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create inserts a student row for a date.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	student := &models.Student{
		FullName:     req.FullName,
		DisplayName:  req.DisplayName,
		Weakness:     req.Weakness,
		Availability: pq.Int64Array(req.Availability),
		Date:         req.Date,
		ColorKeyword: req.ColorKeyword,
		Active:       true,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	return student, nil
}

// Update overwrites a student row's mutable fields.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	student.FullName = req.FullName
	student.DisplayName = req.DisplayName
	student.Weakness = req.Weakness
	student.Availability = pq.Int64Array(req.Availability)
	student.ColorKeyword = req.ColorKeyword

	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// Delete soft-deletes a student row.
func (s *StudentService) Delete(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !student.Active {
		return student, nil
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	student.Active = false
	return student, nil
}

// FindOrCreateForDate resolves a student for a date by case-insensitive name,
// reactivating an inactive match instead of creating a duplicate row.
func (s *StudentService) FindOrCreateForDate(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	existing, err := s.repo.FindByName(ctx, req.Date, req.FullName)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up student")
		}
		return s.Create(ctx, req)
	}

	if existing.Active {
		return existing, nil
	}

	existing.FullName = req.FullName
	existing.DisplayName = req.DisplayName
	existing.Weakness = req.Weakness
	existing.Availability = pq.Int64Array(req.Availability)
	existing.ColorKeyword = req.ColorKeyword
	existing.Active = true
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reactivate student")
	}
	s.logger.Info("reactivated student", zap.String("student_id", existing.ID), zap.String("date", existing.Date))
	return existing, nil
}
