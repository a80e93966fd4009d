package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/calasanz-edu/report-service/internal/cache"
	"github.com/calasanz-edu/report-service/internal/models"
	"github.com/calasanz-edu/report-service/internal/repositories"
)

type DirectoryPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.Manager
}

func NewDirectoryPostgreSQL(db *gorm.DB, cacheManager *cache.Manager) repositories.DirectoryRepository {
	return &DirectoryPostgreSQL{db: db, cacheManager: cacheManager}
}

func (d *DirectoryPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return d.db
}

func (d *DirectoryPostgreSQL) CreateSection(ctx context.Context, tx *gorm.DB, section *models.Section) error {
	if err := d.getDB(tx).WithContext(ctx).Create(section).Error; err != nil {
		return fmt.Errorf("failed to create section: %w", err)
	}
	cache.SafeInvalidatePattern(ctx, d.cacheManager.Directory, "sections*")
	return nil
}

func (d *DirectoryPostgreSQL) GetSectionByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Section, error) {
	var section models.Section
	if err := d.getDB(tx).WithContext(ctx).Preload("Courses").First(&section, id).Error; err != nil {
		return nil, err
	}
	return &section, nil
}

func (d *DirectoryPostgreSQL) GetSectionByName(ctx context.Context, tx *gorm.DB, name string) (*models.Section, error) {
	var section models.Section
	if err := d.getDB(tx).WithContext(ctx).Where("name = ?", name).First(&section).Error; err != nil {
		return nil, err
	}
	return &section, nil
}

// ListSections feeds the navigation menu on every page load, so the result
// is cached with a short TTL and invalidated by every directory mutation.
func (d *DirectoryPostgreSQL) ListSections(ctx context.Context, tx *gorm.DB) ([]*models.Section, error) {
	var sections []*models.Section

	err := d.cacheManager.Directory.CacheOrExecute(ctx, "sections", &sections, cache.DirectoryCacheConfig.TTL, func() (interface{}, error) {
		var dbSections []*models.Section
		err := d.getDB(tx).WithContext(ctx).
			Preload("Courses", func(db *gorm.DB) *gorm.DB {
				return db.Order("courses.name ASC")
			}).
			Order("name ASC").
			Find(&dbSections).Error
		if err != nil {
			return nil, fmt.Errorf("failed to list sections: %w", err)
		}
		return dbSections, nil
	})
	if err != nil {
		return nil, err
	}

	return sections, nil
}

// DeleteSection cascades to the section's courses.
func (d *DirectoryPostgreSQL) DeleteSection(ctx context.Context, tx *gorm.DB, id uint) error {
	result := d.getDB(tx).WithContext(ctx).Delete(&models.Section{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete section: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	cache.SafeInvalidatePattern(ctx, d.cacheManager.Directory, "sections*")
	return nil
}

func (d *DirectoryPostgreSQL) CreateCourse(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	if err := d.getDB(tx).WithContext(ctx).Create(course).Error; err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	cache.SafeInvalidatePattern(ctx, d.cacheManager.Directory, "sections*")
	return nil
}

func (d *DirectoryPostgreSQL) GetCourseByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	var course models.Course
	if err := d.getDB(tx).WithContext(ctx).First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (d *DirectoryPostgreSQL) DeleteCourse(ctx context.Context, tx *gorm.DB, id uint) error {
	result := d.getDB(tx).WithContext(ctx).Delete(&models.Course{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete course: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	cache.SafeInvalidatePattern(ctx, d.cacheManager.Directory, "sections*")
	return nil
}
