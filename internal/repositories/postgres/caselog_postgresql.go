package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/calasanz-edu/report-service/internal/models"
	"github.com/calasanz-edu/report-service/internal/repositories"
)

type CaseLogPostgreSQL struct {
	db *gorm.DB
}

func NewCaseLogPostgreSQL(db *gorm.DB) repositories.CaseLogRepository {
	return &CaseLogPostgreSQL{db: db}
}

func (c *CaseLogPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}

func (c *CaseLogPostgreSQL) CreateObservation(ctx context.Context, tx *gorm.DB, obs *models.Observation) error {
	if err := c.getDB(tx).WithContext(ctx).Create(obs).Error; err != nil {
		return fmt.Errorf("failed to create observation: %w", err)
	}
	return nil
}

func (c *CaseLogPostgreSQL) CreateRecommendation(ctx context.Context, tx *gorm.DB, rec *models.Recommendation) error {
	if err := c.getDB(tx).WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to create recommendation: %w", err)
	}
	return nil
}

func (c *CaseLogPostgreSQL) ListObservations(ctx context.Context, tx *gorm.DB, reportID uint) ([]*models.Observation, error) {
	var observations []*models.Observation
	err := c.getDB(tx).WithContext(ctx).
		Preload("CreatedBy").
		Where("report_id = ?", reportID).
		Order("date_log DESC").
		Find(&observations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list observations: %w", err)
	}
	return observations, nil
}

func (c *CaseLogPostgreSQL) ListRecommendations(ctx context.Context, tx *gorm.DB, reportID uint) ([]*models.Recommendation, error) {
	var recommendations []*models.Recommendation
	err := c.getDB(tx).WithContext(ctx).
		Preload("CreatedBy").
		Where("report_id = ?", reportID).
		Order("date_log DESC").
		Find(&recommendations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	return recommendations, nil
}
