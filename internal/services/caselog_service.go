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

type caseLogService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.Publisher
}

func NewCaseLogService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.Publisher) CaseLogService {
	return &caseLogService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// AppendObservation inserts the observation and applies the lifecycle rule
// in one transaction: a reader must never see the entry without the status
// flip or the flip without the entry.
func (s *caseLogService) AppendObservation(ctx context.Context, reportID uint, req *AppendObservationRequest, principal Principal) (*models.Observation, error) {
	if errs := s.validator.Struct(req); errs != nil {
		return nil, errs
	}

	report, err := s.loadVisibleReport(ctx, reportID, principal, "append observation to")
	if err != nil {
		return nil, err
	}

	obs := &models.Observation{
		ReportID:    reportID,
		CreatedByID: principal.ID,
		Title:       req.Title,
		Content:     req.Content,
		DateLog:     logTime(req.DateLog),
	}

	next := models.NextStatusOnObservation(report.Status)
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CaseLog().CreateObservation(ctx, tx, obs); err != nil {
			return err
		}
		if next != report.Status {
			return s.repo.Report().UpdateStatus(ctx, tx, reportID, next, nil)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if next != report.Status {
		s.logger.Info("Report moved to follow-up",
			"report_id", reportID,
			"observation_id", obs.ID)

		report.Status = next
		s.publishStatusChange(ctx, report, principal)
	}

	return obs, nil
}

// AppendRecommendation never touches report status, whatever the current
// status is. The asymmetry with observations is intentional.
func (s *caseLogService) AppendRecommendation(ctx context.Context, reportID uint, req *AppendRecommendationRequest, principal Principal) (*models.Recommendation, error) {
	if errs := s.validator.Struct(req); errs != nil {
		return nil, errs
	}

	if _, err := s.loadVisibleReport(ctx, reportID, principal, "append recommendation to"); err != nil {
		return nil, err
	}

	rec := &models.Recommendation{
		ReportID:    reportID,
		CreatedByID: principal.ID,
		Content:     req.Content,
		DateLog:     logTime(req.DateLog),
	}

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		return s.repo.CaseLog().CreateRecommendation(ctx, tx, rec)
	})
	if err != nil {
		return nil, err
	}

	return rec, nil
}

func (s *caseLogService) ListObservations(ctx context.Context, reportID uint, principal Principal) ([]*models.Observation, error) {
	if _, err := s.loadVisibleReport(ctx, reportID, principal, "read"); err != nil {
		return nil, err
	}
	return s.repo.CaseLog().ListObservations(ctx, nil, reportID)
}

func (s *caseLogService) ListRecommendations(ctx context.Context, reportID uint, principal Principal) ([]*models.Recommendation, error) {
	if _, err := s.loadVisibleReport(ctx, reportID, principal, "read"); err != nil {
		return nil, err
	}
	return s.repo.CaseLog().ListRecommendations(ctx, nil, reportID)
}

func (s *caseLogService) loadVisibleReport(ctx context.Context, reportID uint, principal Principal, action string) (*models.Report, error) {
	report, err := s.repo.Report().GetByID(ctx, nil, reportID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	if !principal.CanSeeSection(report.Student.Section) {
		return nil, NewPermissionError(principal.ID, "report", action, "student outside assigned section")
	}
	return report, nil
}

func (s *caseLogService) publishStatusChange(ctx context.Context, report *models.Report, principal Principal) {
	event := &events.ReportEvent{
		Type:       events.ReportStatusChanged,
		ReportID:   report.ID,
		StudentID:  report.StudentID,
		Purpose:    report.Purpose,
		Status:     report.Status,
		ActorID:    principal.ID,
		OccurredAt: time.Now(),
	}
	if err := s.publisher.PublishReportEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish status change event",
			"error", err,
			"report_id", report.ID)
	}
}

func logTime(t *time.Time) time.Time {
	if t != nil {
		return *t
	}
	return time.Now()
}
