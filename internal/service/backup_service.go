package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hanare-juku/schedule-api/internal/models"
	appErrors "github.com/hanare-juku/schedule-api/pkg/errors"
	"github.com/hanare-juku/schedule-api/pkg/export"
	"github.com/hanare-juku/schedule-api/pkg/jobs"
	"github.com/hanare-juku/schedule-api/pkg/storage"
)

type backupAssignmentSource interface {
	ListByDate(ctx context.Context, date string, includeInactive bool) ([]models.Assignment, error)
}

type backupTeacherSource interface {
	ListByDate(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, error)
}

type backupStudentSource interface {
	ListByDate(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
}

var scheduleExportHeaders = []string{"assignment_id", "date", "time_slot_id", "subject", "teachers", "students", "notes"}

// BackupService snapshots a day's schedule to disk before destructive bulk
// operations and serves the same rendering for on-demand exports. Snapshots
// are a fire-and-forget safety net carried by the jobs queue; they are not
// transactionally tied to the delete they precede.
type BackupService struct {
	assignments backupAssignmentSource
	teachers    backupTeacherSource
	students    backupStudentSource
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	store       *storage.LocalStorage
	queue       *jobs.Queue
	logger      *zap.Logger
}

// NewBackupService instantiates BackupService; call AttachQueue before using
// SnapshotDayAsync.
func NewBackupService(assignments backupAssignmentSource, teachers backupTeacherSource, students backupStudentSource, store *storage.LocalStorage, logger *zap.Logger) *BackupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackupService{
		assignments: assignments,
		teachers:    teachers,
		students:    students,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		store:       store,
		logger:      logger,
	}
}

// AttachQueue wires the background queue used by SnapshotDayAsync.
func (s *BackupService) AttachQueue(queue *jobs.Queue) {
	s.queue = queue
}

// HandleJob processes a queued snapshot request.
func (s *BackupService) HandleJob(ctx context.Context, job jobs.Job) error {
	date, ok := job.Payload.(string)
	if !ok {
		return fmt.Errorf("backup job %s: unexpected payload %T", job.ID, job.Payload)
	}
	path, err := s.SnapshotDay(ctx, date)
	if err != nil {
		return err
	}
	s.logger.Info("schedule snapshot written", zap.String("date", date), zap.String("path", path))
	return nil
}

// SnapshotDayAsync enqueues a snapshot of the date's schedule. Failures to
// enqueue are logged, never propagated: the caller's delete proceeds either
// way.
func (s *BackupService) SnapshotDayAsync(date string) {
	if s.queue == nil {
		s.logger.Warn("backup queue not attached, skipping snapshot", zap.String("date", date))
		return
	}
	err := s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    "schedule_snapshot",
		Payload: date,
	})
	if err != nil {
		s.logger.Warn("failed to enqueue schedule snapshot", zap.String("date", date), zap.Error(err))
	}
}

// SnapshotDay renders the date's active schedule to CSV and writes it under
// the backup directory, returning the stored path.
func (s *BackupService) SnapshotDay(ctx context.Context, date string) (string, error) {
	data, err := s.renderDataset(ctx, date)
	if err != nil {
		return "", err
	}
	payload, err := s.csv.Render(data)
	if err != nil {
		return "", fmt.Errorf("render snapshot csv: %w", err)
	}
	filename := fmt.Sprintf("backups/assignments-%s-%d.csv", date, time.Now().UTC().Unix())
	return s.store.Save(filename, payload)
}

// ExportDayCSV renders the date's active schedule as CSV bytes.
func (s *BackupService) ExportDayCSV(ctx context.Context, date string) ([]byte, error) {
	data, err := s.renderDataset(ctx, date)
	if err != nil {
		return nil, err
	}
	payload, err := s.csv.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
	}
	return payload, nil
}

// ExportDayPDF renders the date's active schedule as a printable PDF.
func (s *BackupService) ExportDayPDF(ctx context.Context, date string) ([]byte, error) {
	data, err := s.renderDataset(ctx, date)
	if err != nil {
		return nil, err
	}
	payload, err := s.pdf.Render(data, fmt.Sprintf("Schedule %s", date))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
	}
	return payload, nil
}

func (s *BackupService) renderDataset(ctx context.Context, date string) (export.Dataset, error) {
	assignments, err := s.assignments.ListByDate(ctx, date, false)
	if err != nil {
		return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments for export")
	}

	teacherNames, studentNames, err := s.nameIndexes(ctx, date)
	if err != nil {
		return export.Dataset{}, err
	}

	rows := make([]map[string]string, 0, len(assignments))
	for _, a := range assignments {
		var teachers []string
		for _, link := range a.Teachers {
			name := teacherNames[link.TeacherID]
			if name == "" {
				name = link.TeacherID
			}
			if link.IsSubstitute {
				name += " (sub)"
			}
			teachers = append(teachers, name)
		}
		var students []string
		for _, link := range a.Students {
			name := studentNames[link.StudentID]
			if name == "" {
				name = link.StudentID
			}
			students = append(students, name)
		}

		row := map[string]string{
			"assignment_id": a.ID,
			"date":          a.Date,
			"time_slot_id":  strconv.FormatInt(a.TimeSlotID, 10),
			"teachers":      strings.Join(teachers, "; "),
			"students":      strings.Join(students, "; "),
		}
		if a.Subject != nil {
			row["subject"] = *a.Subject
		}
		if a.Notes != nil {
			row["notes"] = *a.Notes
		}
		rows = append(rows, row)
	}

	return export.Dataset{Headers: scheduleExportHeaders, Rows: rows}, nil
}

func (s *BackupService) nameIndexes(ctx context.Context, date string) (map[string]string, map[string]string, error) {
	teachers, err := s.teachers.ListByDate(ctx, models.TeacherFilter{Date: date})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers for export")
	}
	teacherNames := make(map[string]string, len(teachers))
	for _, t := range teachers {
		teacherNames[t.ID] = t.FullName
	}

	students, err := s.students.ListByDate(ctx, models.StudentFilter{Date: date})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students for export")
	}
	studentNames := make(map[string]string, len(students))
	for _, st := range students {
		studentNames[st.ID] = st.FullName
	}
	return teacherNames, studentNames, nil
}
