package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hanare-juku/schedule-api/internal/models"
	appErrors "github.com/hanare-juku/schedule-api/pkg/errors"
)

type copyTeacherStore interface {
	ListByDate(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	DeactivateByDate(ctx context.Context, date string) (int, error)
}

type copyStudentStore interface {
	ListByDate(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	DeactivateByDate(ctx context.Context, date string) (int, error)
}

type copyAssignmentStore interface {
	ListByDate(ctx context.Context, date string, includeInactive bool) ([]models.Assignment, error)
	DeactivateByDate(ctx context.Context, date string) (int, error)
}

// assignmentCreator routes cloned assignments through the normal create path
// so every copy is subject to the conflict validator.
type assignmentCreator interface {
	Create(ctx context.Context, req CreateAssignmentRequest) (*models.Assignment, error)
}

// CopyService duplicates teachers, students, and assignments between dates.
// Because Teacher and Student rows are date-scoped, copying a schedule is a
// full clone-and-remap: every copied assignment references newly minted rows
// on the target date, never the originals.
type CopyService struct {
	teachers    copyTeacherStore
	students    copyStudentStore
	assignments copyAssignmentStore
	creator     assignmentCreator
	logger      *zap.Logger
}

// NewCopyService instantiates CopyService.
func NewCopyService(teachers copyTeacherStore, students copyStudentStore, assignments copyAssignmentStore, creator assignmentCreator, logger *zap.Logger) *CopyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CopyService{teachers: teachers, students: students, assignments: assignments, creator: creator, logger: logger}
}

// CopyDay replaces everything on targetDate with clones of sourceDate. The
// target day is fully overwritten, not merged: existing rows are soft-deleted
// first, which also makes repeated copies idempotent in resulting counts.
// Copies are best effort per assignment; conflicts and dropped references are
// itemised on the summary instead of aborting the run.
func (s *CopyService) CopyDay(ctx context.Context, sourceDate, targetDate string) (*models.CopyDaySummary, error) {
	if _, err := daysBetween(sourceDate, targetDate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid copy dates")
	}
	if sourceDate == targetDate {
		return nil, appErrors.Clone(appErrors.ErrValidation, "source and target dates must differ")
	}

	summary := &models.CopyDaySummary{SourceDate: sourceDate, TargetDate: targetDate}
	if err := s.clearTarget(ctx, targetDate, summary); err != nil {
		return nil, err
	}

	teacherMap, studentMap, err := s.cloneEntities(ctx, sourceDate, targetDate, summary)
	if err != nil {
		return nil, err
	}

	lookupTeacher := func(sourceAssignmentDate, id string) (string, bool) {
		newID, ok := teacherMap[id]
		return newID, ok
	}
	lookupStudent := func(sourceAssignmentDate, id string) (string, bool) {
		newID, ok := studentMap[id]
		return newID, ok
	}

	if err := s.copyAssignments(ctx, sourceDate, targetDate, lookupTeacher, lookupStudent, summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// CopyWeek clones seven consecutive days starting at sourceStart onto the
// week starting at targetStart, shifting every assignment by the same
// calendar-day delta. Identity maps are keyed by date and id together since
// the same logical person has distinct rows on each day of the source week.
// The whole 7-day target window is destructively overwritten.
func (s *CopyService) CopyWeek(ctx context.Context, sourceStart, targetStart string) (*models.CopyWeekSummary, error) {
	offset, err := daysBetween(sourceStart, targetStart)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid copy dates")
	}
	if offset == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "source and target weeks must differ")
	}

	week := &models.CopyWeekSummary{SourceStart: sourceStart, TargetStart: targetStart}

	teacherMap := make(map[string]string)
	studentMap := make(map[string]string)
	compositeKey := func(date, id string) string {
		return fmt.Sprintf("%s-%s", date, id)
	}

	// Clear and clone the entire target window first so cross-day lookups
	// during the assignment pass always see the full week's id maps.
	summaries := make([]*models.CopyDaySummary, 0, 7)
	for i := 0; i < 7; i++ {
		sourceDate, err := addDays(sourceStart, i)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid source week")
		}
		targetDate, err := addDays(sourceDate, offset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid target week")
		}

		summary := &models.CopyDaySummary{SourceDate: sourceDate, TargetDate: targetDate}
		if err := s.clearTarget(ctx, targetDate, summary); err != nil {
			return nil, err
		}

		dayTeachers, dayStudents, err := s.cloneEntities(ctx, sourceDate, targetDate, summary)
		if err != nil {
			return nil, err
		}
		for oldID, newID := range dayTeachers {
			teacherMap[compositeKey(sourceDate, oldID)] = newID
		}
		for oldID, newID := range dayStudents {
			studentMap[compositeKey(sourceDate, oldID)] = newID
		}
		summaries = append(summaries, summary)
	}

	lookupTeacher := func(sourceDate, id string) (string, bool) {
		newID, ok := teacherMap[compositeKey(sourceDate, id)]
		return newID, ok
	}
	lookupStudent := func(sourceDate, id string) (string, bool) {
		newID, ok := studentMap[compositeKey(sourceDate, id)]
		return newID, ok
	}

	for _, summary := range summaries {
		if err := s.copyAssignments(ctx, summary.SourceDate, summary.TargetDate, lookupTeacher, lookupStudent, summary); err != nil {
			return nil, err
		}
		week.Days = append(week.Days, *summary)
		week.TeachersCopied += summary.TeachersCopied
		week.StudentsCopied += summary.StudentsCopied
		week.AssignmentsCopied += summary.AssignmentsCopied
	}
	return week, nil
}

func (s *CopyService) clearTarget(ctx context.Context, targetDate string, summary *models.CopyDaySummary) error {
	deletedAssignments, err := s.assignments.DeactivateByDate(ctx, targetDate)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear target assignments")
	}
	deletedTeachers, err := s.teachers.DeactivateByDate(ctx, targetDate)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear target teachers")
	}
	deletedStudents, err := s.students.DeactivateByDate(ctx, targetDate)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear target students")
	}
	summary.DeletedAssignments = deletedAssignments
	summary.DeletedTeachers = deletedTeachers
	summary.DeletedStudents = deletedStudents
	return nil
}

func (s *CopyService) cloneEntities(ctx context.Context, sourceDate, targetDate string, summary *models.CopyDaySummary) (map[string]string, map[string]string, error) {
	teachers, err := s.teachers.ListByDate(ctx, models.TeacherFilter{Date: sourceDate, ActiveOnly: true})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list source teachers")
	}
	teacherMap := make(map[string]string, len(teachers))
	for _, t := range teachers {
		clone := models.Teacher{
			FullName:     t.FullName,
			Availability: t.Availability,
			Date:         targetDate,
			ColorKeyword: t.ColorKeyword,
			Active:       true,
		}
		if err := s.teachers.Create(ctx, &clone); err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clone teacher")
		}
		teacherMap[t.ID] = clone.ID
		summary.TeachersCopied++
	}

	students, err := s.students.ListByDate(ctx, models.StudentFilter{Date: sourceDate, ActiveOnly: true})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list source students")
	}
	studentMap := make(map[string]string, len(students))
	for _, st := range students {
		clone := models.Student{
			FullName:     st.FullName,
			DisplayName:  st.DisplayName,
			Weakness:     st.Weakness,
			Availability: st.Availability,
			Date:         targetDate,
			ColorKeyword: st.ColorKeyword,
			Active:       true,
		}
		if err := s.students.Create(ctx, &clone); err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clone student")
		}
		studentMap[st.ID] = clone.ID
		summary.StudentsCopied++
	}

	return teacherMap, studentMap, nil
}

type refLookup func(sourceDate, id string) (string, bool)

func (s *CopyService) copyAssignments(ctx context.Context, sourceDate, targetDate string, lookupTeacher, lookupStudent refLookup, summary *models.CopyDaySummary) error {
	assignments, err := s.assignments.ListByDate(ctx, sourceDate, false)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list source assignments")
	}

	for _, source := range assignments {
		req := CreateAssignmentRequest{
			Date:         targetDate,
			TimeSlotID:   source.TimeSlotID,
			Subject:      source.Subject,
			Notes:        source.Notes,
			ColorKeyword: source.ColorKeyword,
		}

		for _, link := range source.Teachers {
			newID, ok := lookupTeacher(sourceDate, link.TeacherID)
			if !ok {
				// Reference to a row that was not active on the source day;
				// drop it from the clone but keep the drop auditable.
				summary.DroppedRefs = append(summary.DroppedRefs, models.DroppedReference{
					SourceAssignmentID: source.ID,
					Kind:               "teacher",
					RefID:              link.TeacherID,
				})
				continue
			}
			req.Teachers = append(req.Teachers, TeacherLinkRequest{TeacherID: newID, IsSubstitute: link.IsSubstitute})
		}
		for _, link := range source.Students {
			newID, ok := lookupStudent(sourceDate, link.StudentID)
			if !ok {
				summary.DroppedRefs = append(summary.DroppedRefs, models.DroppedReference{
					SourceAssignmentID: source.ID,
					Kind:               "student",
					RefID:              link.StudentID,
				})
				continue
			}
			req.Students = append(req.Students, StudentLinkRequest{StudentID: newID, SubmissionID: link.SubmissionID})
		}

		if len(req.Teachers) == 0 && len(req.Students) == 0 {
			summary.AssignmentsSkipped++
			continue
		}

		if _, err := s.creator.Create(ctx, req); err != nil {
			appErr := appErrors.FromError(err)
			if appErr.Code == appErrors.ErrConflict.Code {
				var domainErr *models.AssignmentConflictError
				if errors.As(err, &domainErr) {
					summary.Conflicts = append(summary.Conflicts, domainErr.Conflicts...)
				} else {
					summary.Conflicts = append(summary.Conflicts, models.AssignmentConflict{AssignmentID: source.ID, Kind: "assignment"})
				}
				s.logger.Warn("copy skipped conflicting assignment",
					zap.String("source_assignment_id", source.ID),
					zap.String("target_date", targetDate),
					zap.Int64("time_slot_id", source.TimeSlotID))
				continue
			}
			return err
		}
		summary.AssignmentsCopied++
	}
	return nil
}
