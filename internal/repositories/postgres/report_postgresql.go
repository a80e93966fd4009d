package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/calasanz-edu/report-service/internal/models"
	"github.com/calasanz-edu/report-service/internal/repositories"
)

type ReportPostgreSQL struct {
	db *gorm.DB
}

func NewReportPostgreSQL(db *gorm.DB) repositories.ReportRepository {
	return &ReportPostgreSQL{db: db}
}

func (r *ReportPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Create inserts the report. A unique violation on the active-report index
// means a concurrent caller won the (student, purpose) slot; the raw error
// is returned for the service layer to translate into a structured conflict.
func (r *ReportPostgreSQL) Create(ctx context.Context, tx *gorm.DB, report *models.Report) error {
	if err := r.getDB(tx).WithContext(ctx).Create(report).Error; err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

func (r *ReportPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Report, error) {
	var report models.Report
	err := r.getDB(tx).WithContext(ctx).
		Preload("Student").
		Preload("CreatedBy").
		Preload("AssignedTo").
		First(&report, id).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *ReportPostgreSQL) GetActive(ctx context.Context, tx *gorm.DB, studentID uint, purpose models.EduPurpose) (*models.Report, error) {
	var report models.Report
	err := r.getDB(tx).WithContext(ctx).
		Preload("CreatedBy").
		Where("student_id = ? AND purpose = ?", studentID, purpose).
		Where("status IN ?", []models.ReportStatus{models.StatusProgramado, models.StatusSeguimiento}).
		First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// List orders by creation time descending; callers must not rely on any
// other order. Pagination is plain offset based.
func (r *ReportPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ReportFilters) ([]*models.Report, int64, error) {
	query := r.getDB(tx).WithContext(ctx).Model(&models.Report{})

	if filters.Section != nil {
		query = query.
			Joins("JOIN students ON students.id = reports.student_id").
			Where("students.section = ?", *filters.Section)
	}
	if filters.StudentID != nil {
		query = query.Where("reports.student_id = ?", *filters.StudentID)
	}
	if filters.Purpose != nil {
		query = query.Where("reports.purpose = ?", *filters.Purpose)
	}
	if filters.Status != nil {
		query = query.Where("reports.status = ?", *filters.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reports: %w", err)
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var reports []*models.Report
	err := query.
		Preload("Student").
		Preload("CreatedBy").
		Preload("AssignedTo").
		Order("reports.created_at DESC").
		Find(&reports).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reports: %w", err)
	}

	return reports, total, nil
}

func (r *ReportPostgreSQL) UpdateStatus(ctx context.Context, tx *gorm.DB, reportID uint, status models.ReportStatus, closedAt *time.Time) error {
	updates := map[string]interface{}{"status": status}
	if closedAt != nil {
		updates["closed_at"] = *closedAt
	}

	result := r.getDB(tx).WithContext(ctx).
		Model(&models.Report{}).
		Where("id = ?", reportID).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update report status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
