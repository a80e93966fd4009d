package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/calasanz-edu/report-service/internal/models"
	"github.com/calasanz-edu/report-service/internal/repositories"
)

type StudentPostgreSQL struct {
	db *gorm.DB
}

func NewStudentPostgreSQL(db *gorm.DB) repositories.StudentRepository {
	return &StudentPostgreSQL{db: db}
}

// getDB returns the transaction DB if provided, otherwise the default DB.
func (s *StudentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

func (s *StudentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, student *models.Student) error {
	if err := s.getDB(tx).WithContext(ctx).Create(student).Error; err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}
	return nil
}

func (s *StudentPostgreSQL) Update(ctx context.Context, tx *gorm.DB, student *models.Student) error {
	if err := s.getDB(tx).WithContext(ctx).Save(student).Error; err != nil {
		return fmt.Errorf("failed to update student: %w", err)
	}
	return nil
}

func (s *StudentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Student, error) {
	var student models.Student
	if err := s.getDB(tx).WithContext(ctx).First(&student, id).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (s *StudentPostgreSQL) GetByCode(ctx context.Context, tx *gorm.DB, code string) (*models.Student, error) {
	var student models.Student
	if err := s.getDB(tx).WithContext(ctx).Where("code = ?", code).First(&student).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

// UpsertByCode keys on the natural school code so re-imports update in place.
func (s *StudentPostgreSQL) UpsertByCode(ctx context.Context, tx *gorm.DB, student *models.Student) error {
	err := s.getDB(tx).WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"full_name", "email", "section", "course", "updated_at"}),
	}).Create(student).Error
	if err != nil {
		return fmt.Errorf("failed to upsert student %s: %w", student.Code, err)
	}
	return nil
}

func (s *StudentPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.StudentFilters) ([]*models.Student, int64, error) {
	query := s.getDB(tx).WithContext(ctx).Model(&models.Student{})

	if filters.Section != nil {
		query = query.Where("section = ?", *filters.Section)
	}
	if filters.Course != nil {
		query = query.Where("course = ?", *filters.Course)
	}
	if filters.Query != "" {
		like := "%" + filters.Query + "%"
		query = query.Where("full_name ILIKE ? OR code ILIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count students: %w", err)
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var students []*models.Student
	if err := query.Order("full_name ASC").Find(&students).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list students: %w", err)
	}

	return students, total, nil
}

func (s *StudentPostgreSQL) DistinctCourses(ctx context.Context, tx *gorm.DB, section *models.SectionBand) ([]string, error) {
	query := s.getDB(tx).WithContext(ctx).Model(&models.Student{}).Distinct("course")
	if section != nil {
		query = query.Where("section = ?", *section)
	}

	var courses []string
	if err := query.Order("course ASC").Pluck("course", &courses).Error; err != nil {
		return nil, fmt.Errorf("failed to list distinct courses: %w", err)
	}
	return courses, nil
}

// ActiveReportCounts is a store-level aggregate; active reports are never
// resolved by loading and filtering a student's relations in memory.
func (s *StudentPostgreSQL) ActiveReportCounts(ctx context.Context, tx *gorm.DB, studentIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(studentIDs))
	if len(studentIDs) == 0 {
		return counts, nil
	}

	type row struct {
		StudentID uint
		Count     int64
	}
	var rows []row

	err := s.getDB(tx).WithContext(ctx).
		Model(&models.Report{}).
		Select("student_id, COUNT(*) AS count").
		Where("student_id IN ?", studentIDs).
		Where("status IN ?", []models.ReportStatus{models.StatusProgramado, models.StatusSeguimiento}).
		Group("student_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count active reports: %w", err)
	}

	for _, r := range rows {
		counts[r.StudentID] = r.Count
	}
	return counts, nil
}
