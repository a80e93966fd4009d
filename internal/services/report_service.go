package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/calasanz-edu/report-service/internal/events"
	"github.com/calasanz-edu/report-service/internal/models"
	"github.com/calasanz-edu/report-service/internal/repositories"
	"github.com/calasanz-edu/report-service/internal/validator"
)

type reportService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.Publisher
}

func NewReportService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.Publisher) ReportService {
	return &reportService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// Create opens a new case for (student, purpose). The pre-check below gives
// a friendly conflict fast; the partial unique index is what actually closes
// the race between two concurrent creators, so a unique violation from the
// insert is translated into the same structured conflict.
func (s *reportService) Create(ctx context.Context, req *CreateReportRequest, principal Principal) (*ReportResponse, error) {
	if errs := s.validator.Struct(req); errs != nil {
		return nil, errs
	}

	student, err := s.repo.Student().GetByID(ctx, nil, req.StudentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	if !principal.CanSeeSection(student.Section) {
		return nil, NewPermissionError(principal.ID, "report", "create", "student outside assigned section")
	}

	if existing, err := s.repo.Report().GetActive(ctx, nil, req.StudentID, req.Purpose); err == nil {
		return nil, s.duplicateError(existing)
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check for active report: %w", err)
	}

	report := &models.Report{
		StudentID:      req.StudentID,
		Purpose:        req.Purpose,
		Status:         models.StatusProgramado,
		Objective:      req.Objective,
		AcademicPeriod: req.AcademicPeriod,
		CreatedByID:    principal.ID,
		AssignedToID:   req.AssignedToID,
	}

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		return s.repo.Report().Create(ctx, tx, report)
	})
	if err != nil {
		if repositories.IsUniqueViolation(err, repositories.UniqueActiveReportIndex) {
			// Lost the race; surface the winner as the conflict.
			if existing, getErr := s.repo.Report().GetActive(ctx, nil, req.StudentID, req.Purpose); getErr == nil {
				return nil, s.duplicateError(existing)
			}
			return nil, &DuplicateActiveReportError{Purpose: req.Purpose}
		}
		return nil, err
	}

	s.logger.Info("Report created",
		"report_id", report.ID,
		"student_id", report.StudentID,
		"purpose", report.Purpose,
		"created_by", principal.ID)

	s.publish(ctx, events.ReportCreated, report, principal)

	return s.GetByID(ctx, report.ID, principal)
}

func (s *reportService) GetByID(ctx context.Context, id uint, principal Principal) (*ReportResponse, error) {
	report, err := s.repo.Report().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	if !principal.CanSeeSection(report.Student.Section) {
		return nil, NewPermissionError(principal.ID, "report", "read", "student outside assigned section")
	}

	return s.toResponse(report, principal), nil
}

func (s *reportService) List(ctx context.Context, req *ListReportsRequest, principal Principal) (*ReportListResponse, error) {
	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	filters := repositories.ReportFilters{
		Section:   principal.ReportScope(),
		StudentID: req.StudentID,
		Purpose:   req.Purpose,
		Status:    req.Status,
		Limit:     limit,
		Offset:    req.Skip,
	}

	reports, total, err := s.repo.Report().List(ctx, nil, filters)
	if err != nil {
		return nil, err
	}

	responses := make([]*ReportResponse, len(reports))
	for i, report := range reports {
		responses[i] = s.toResponse(report, principal)
	}

	return &ReportListResponse{
		Reports: responses,
		Total:   total,
		Skip:    req.Skip,
		Limit:   limit,
	}, nil
}

// Close attends the case: status moves to ATENDIDO and the closure time is
// recorded, freeing the (student, purpose) slot for future reports.
func (s *reportService) Close(ctx context.Context, id uint, principal Principal) (*ReportResponse, error) {
	report, err := s.repo.Report().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	if !principal.CanSeeSection(report.Student.Section) {
		return nil, NewPermissionError(principal.ID, "report", "close", "student outside assigned section")
	}
	if report.Status == models.StatusAtendido {
		return nil, ErrReportAlreadyClosed
	}

	closedAt := time.Now()
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		return s.repo.Report().UpdateStatus(ctx, tx, id, models.StatusAtendido, &closedAt)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Report closed", "report_id", id, "closed_by", principal.ID)

	report.Status = models.StatusAtendido
	report.ClosedAt = &closedAt
	s.publish(ctx, events.ReportClosed, report, principal)

	return s.GetByID(ctx, id, principal)
}

func (s *reportService) duplicateError(existing *models.Report) *DuplicateActiveReportError {
	return &DuplicateActiveReportError{
		ReportID:      existing.ID,
		Purpose:       existing.Purpose,
		CreatedByName: existing.CreatedBy.FullName,
		CreatedAt:     existing.CreatedAt,
	}
}

func (s *reportService) toResponse(report *models.Report, principal Principal) *ReportResponse {
	return &ReportResponse{
		Report:   report,
		CanClose: report.Status.Active() && principal.CanSeeSection(report.Student.Section),
	}
}

func (s *reportService) publish(ctx context.Context, eventType events.EventType, report *models.Report, principal Principal) {
	event := &events.ReportEvent{
		Type:       eventType,
		ReportID:   report.ID,
		StudentID:  report.StudentID,
		Purpose:    report.Purpose,
		Status:     report.Status,
		ActorID:    principal.ID,
		OccurredAt: time.Now(),
	}
	if err := s.publisher.PublishReportEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish report event",
			"error", err,
			"event_type", eventType,
			"report_id", report.ID)
	}
}
