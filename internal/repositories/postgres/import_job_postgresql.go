package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/calasanz-edu/report-service/internal/models"
	"github.com/calasanz-edu/report-service/internal/repositories"
)

type ImportJobPostgreSQL struct {
	db *gorm.DB
}

func NewImportJobPostgreSQL(db *gorm.DB) repositories.ImportJobRepository {
	return &ImportJobPostgreSQL{db: db}
}

func (i *ImportJobPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return i.db
}

func (i *ImportJobPostgreSQL) Create(ctx context.Context, tx *gorm.DB, job *models.ImportJob) error {
	if err := i.getDB(tx).WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("failed to create import job: %w", err)
	}
	return nil
}

func (i *ImportJobPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ImportJobFilters) ([]*models.ImportJob, int64, error) {
	query := i.getDB(tx).WithContext(ctx).Model(&models.ImportJob{})

	if filters.Kind != nil {
		query = query.Where("kind = ?", *filters.Kind)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count import jobs: %w", err)
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var jobs []*models.ImportJob
	if err := query.Preload("CreatedBy").Order("created_at DESC").Find(&jobs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list import jobs: %w", err)
	}

	return jobs, total, nil
}
