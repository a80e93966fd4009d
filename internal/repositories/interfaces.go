package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/calasanz-edu/report-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type StudentFilters struct {
	Section *models.SectionBand `json:"section"`
	Course  *string             `json:"course"`
	Query   string              `json:"query"` // matches name or code
	Limit   int                 `json:"limit"`
	Offset  int                 `json:"offset"`
}

type ReportFilters struct {
	Section   *models.SectionBand  `json:"section"` // scoping filter via student join
	StudentID *uint                `json:"student_id"`
	Purpose   *models.EduPurpose   `json:"purpose"`
	Status    *models.ReportStatus `json:"status"`
	Limit     int                  `json:"limit"`
	Offset    int                  `json:"offset"`
}

type UserFilters struct {
	Role   *models.Role `json:"role"`
	Query  string       `json:"query"` // matches name or email
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

type ImportJobFilters struct {
	Kind   *models.ImportKind `json:"kind"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

// ===== ANALYTICS STRUCTS =====

// StudentReportCount is one row of the report-volume ranking. Ties are
// broken by ascending student id so the order is deterministic.
type StudentReportCount struct {
	StudentID uint   `json:"student_id"`
	FullName  string `json:"name"`
	Course    string `json:"course"`
	Count     int64  `json:"count"`
}

// ===== STORE INTERFACES =====

type StudentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, student *models.Student) error
	Update(ctx context.Context, tx *gorm.DB, student *models.Student) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Student, error)
	GetByCode(ctx context.Context, tx *gorm.DB, code string) (*models.Student, error)

	// UpsertByCode inserts the student or updates the mutable fields
	// (name, course, section, email) of the existing record with the same
	// code. Re-running an import must never create duplicates.
	UpsertByCode(ctx context.Context, tx *gorm.DB, student *models.Student) error

	List(ctx context.Context, tx *gorm.DB, filters StudentFilters) ([]*models.Student, int64, error)
	DistinctCourses(ctx context.Context, tx *gorm.DB, section *models.SectionBand) ([]string, error)

	// ActiveReportCounts returns the number of active reports per student,
	// computed at the storage layer rather than by loading relations.
	ActiveReportCounts(ctx context.Context, tx *gorm.DB, studentIDs []uint) (map[uint]int64, error)
}

type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	Update(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)

	// UpsertByEmail mirrors StudentRepository.UpsertByCode for staff rosters.
	UpsertByEmail(ctx context.Context, tx *gorm.DB, user *models.User) error

	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)
}

type ReportRepository interface {
	Create(ctx context.Context, tx *gorm.DB, report *models.Report) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Report, error)

	// GetActive returns the report holding the (student, purpose) slot,
	// i.e. the one with status in {PROGRAMADO, SEGUIMIENTO}, or a
	// not-found error when the slot is free.
	GetActive(ctx context.Context, tx *gorm.DB, studentID uint, purpose models.EduPurpose) (*models.Report, error)

	List(ctx context.Context, tx *gorm.DB, filters ReportFilters) ([]*models.Report, int64, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, reportID uint, status models.ReportStatus, closedAt *time.Time) error
}

type CaseLogRepository interface {
	CreateObservation(ctx context.Context, tx *gorm.DB, obs *models.Observation) error
	CreateRecommendation(ctx context.Context, tx *gorm.DB, rec *models.Recommendation) error
	ListObservations(ctx context.Context, tx *gorm.DB, reportID uint) ([]*models.Observation, error)
	ListRecommendations(ctx context.Context, tx *gorm.DB, reportID uint) ([]*models.Recommendation, error)
}

type DirectoryRepository interface {
	CreateSection(ctx context.Context, tx *gorm.DB, section *models.Section) error
	GetSectionByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Section, error)
	GetSectionByName(ctx context.Context, tx *gorm.DB, name string) (*models.Section, error)
	ListSections(ctx context.Context, tx *gorm.DB) ([]*models.Section, error)
	DeleteSection(ctx context.Context, tx *gorm.DB, id uint) error

	CreateCourse(ctx context.Context, tx *gorm.DB, course *models.Course) error
	GetCourseByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error)
	DeleteCourse(ctx context.Context, tx *gorm.DB, id uint) error
}

// AnalyticsRepository is the read-only aggregation path. A nil section
// computes global rollups; a non-nil section restricts every figure to
// students of that band.
type AnalyticsRepository interface {
	TotalReports(ctx context.Context, tx *gorm.DB, section *models.SectionBand) (int64, error)
	DistinctStudentsWithReports(ctx context.Context, tx *gorm.DB, section *models.SectionBand) (int64, error)
	CountByStatus(ctx context.Context, tx *gorm.DB, section *models.SectionBand) (map[models.ReportStatus]int64, error)
	CountByPurpose(ctx context.Context, tx *gorm.DB, section *models.SectionBand) (map[models.EduPurpose]int64, error)
	CountByCourse(ctx context.Context, tx *gorm.DB, section *models.SectionBand) (map[string]int64, error)
	StudentRanking(ctx context.Context, tx *gorm.DB, section *models.SectionBand, limit int) ([]StudentReportCount, error)
}

type ImportJobRepository interface {
	Create(ctx context.Context, tx *gorm.DB, job *models.ImportJob) error
	List(ctx context.Context, tx *gorm.DB, filters ImportJobFilters) ([]*models.ImportJob, int64, error)
}
