package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/calasanz-edu/report-service/internal/models"
	"github.com/calasanz-edu/report-service/internal/repositories"
)

type AnalyticsPostgreSQL struct {
	db *gorm.DB
}

func NewAnalyticsPostgreSQL(db *gorm.DB) repositories.AnalyticsRepository {
	return &AnalyticsPostgreSQL{db: db}
}

func (a *AnalyticsPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

// scoped applies the optional section restriction via the student join.
func (a *AnalyticsPostgreSQL) scoped(query *gorm.DB, section *models.SectionBand) *gorm.DB {
	if section == nil {
		return query
	}
	return query.
		Joins("JOIN students ON students.id = reports.student_id").
		Where("students.section = ?", *section)
}

func (a *AnalyticsPostgreSQL) TotalReports(ctx context.Context, tx *gorm.DB, section *models.SectionBand) (int64, error) {
	var count int64
	query := a.scoped(a.getDB(tx).WithContext(ctx).Model(&models.Report{}), section)
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return count, nil
}

func (a *AnalyticsPostgreSQL) DistinctStudentsWithReports(ctx context.Context, tx *gorm.DB, section *models.SectionBand) (int64, error) {
	var count int64
	query := a.scoped(a.getDB(tx).WithContext(ctx).Model(&models.Report{}), section)
	if err := query.Distinct("reports.student_id").Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count students with reports: %w", err)
	}
	return count, nil
}

func (a *AnalyticsPostgreSQL) CountByStatus(ctx context.Context, tx *gorm.DB, section *models.SectionBand) (map[models.ReportStatus]int64, error) {
	type row struct {
		Status models.ReportStatus
		Count  int64
	}
	var rows []row

	query := a.scoped(a.getDB(tx).WithContext(ctx).Model(&models.Report{}), section)
	err := query.
		Select("reports.status, COUNT(*) AS count").
		Group("reports.status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count reports by status: %w", err)
	}

	counts := make(map[models.ReportStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

func (a *AnalyticsPostgreSQL) CountByPurpose(ctx context.Context, tx *gorm.DB, section *models.SectionBand) (map[models.EduPurpose]int64, error) {
	type row struct {
		Purpose models.EduPurpose
		Count   int64
	}
	var rows []row

	query := a.scoped(a.getDB(tx).WithContext(ctx).Model(&models.Report{}), section)
	err := query.
		Select("reports.purpose, COUNT(*) AS count").
		Group("reports.purpose").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count reports by purpose: %w", err)
	}

	counts := make(map[models.EduPurpose]int64, len(rows))
	for _, r := range rows {
		counts[r.Purpose] = r.Count
	}
	return counts, nil
}

func (a *AnalyticsPostgreSQL) CountByCourse(ctx context.Context, tx *gorm.DB, section *models.SectionBand) (map[string]int64, error) {
	type row struct {
		Course string
		Count  int64
	}
	var rows []row

	query := a.getDB(tx).WithContext(ctx).
		Model(&models.Report{}).
		Joins("JOIN students ON students.id = reports.student_id")
	if section != nil {
		query = query.Where("students.section = ?", *section)
	}

	err := query.
		Select("students.course, COUNT(*) AS count").
		Group("students.course").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count reports by course: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Course] = r.Count
	}
	return counts, nil
}

// StudentRanking orders by report count descending with student id as a
// deterministic tiebreak.
func (a *AnalyticsPostgreSQL) StudentRanking(ctx context.Context, tx *gorm.DB, section *models.SectionBand, limit int) ([]repositories.StudentReportCount, error) {
	query := a.getDB(tx).WithContext(ctx).
		Model(&models.Report{}).
		Joins("JOIN students ON students.id = reports.student_id")
	if section != nil {
		query = query.Where("students.section = ?", *section)
	}

	var ranking []repositories.StudentReportCount
	err := query.
		Select("students.id AS student_id, students.full_name, students.course, COUNT(reports.id) AS count").
		Group("students.id, students.full_name, students.course").
		Order("count DESC, students.id ASC").
		Limit(limit).
		Scan(&ranking).Error
	if err != nil {
		return nil, fmt.Errorf("failed to rank students by report count: %w", err)
	}

	return ranking, nil
}
