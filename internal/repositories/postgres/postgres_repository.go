package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/calasanz-edu/report-service/internal/cache"
	"github.com/calasanz-edu/report-service/internal/models"
	"github.com/calasanz-edu/report-service/internal/repositories"
)

// PostgreSQLRepository implements the main Repository interface.
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.Manager

	student   repositories.StudentRepository
	user      repositories.UserRepository
	report    repositories.ReportRepository
	caseLog   repositories.CaseLogRepository
	directory repositories.DirectoryRepository
	analytics repositories.AnalyticsRepository
	importJob repositories.ImportJobRepository
}

// RepositoryConfig holds configuration for repository initialization.
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
}

// NewPostgreSQLRepository creates the repository with all sub-repositories.
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	cacheManager := cache.NewManager(config.RedisClient)

	repo := &PostgreSQLRepository{
		db:           config.DB,
		redisClient:  config.RedisClient,
		cacheManager: cacheManager,
	}

	repo.student = NewStudentPostgreSQL(config.DB)
	repo.user = NewUserPostgreSQL(config.DB)
	repo.report = NewReportPostgreSQL(config.DB)
	repo.caseLog = NewCaseLogPostgreSQL(config.DB)
	repo.directory = NewDirectoryPostgreSQL(config.DB, cacheManager)
	repo.analytics = NewAnalyticsPostgreSQL(config.DB)
	repo.importJob = NewImportJobPostgreSQL(config.DB)

	return repo
}

func (r *PostgreSQLRepository) Student() repositories.StudentRepository     { return r.student }
func (r *PostgreSQLRepository) User() repositories.UserRepository           { return r.user }
func (r *PostgreSQLRepository) Report() repositories.ReportRepository       { return r.report }
func (r *PostgreSQLRepository) CaseLog() repositories.CaseLogRepository     { return r.caseLog }
func (r *PostgreSQLRepository) Directory() repositories.DirectoryRepository { return r.directory }
func (r *PostgreSQLRepository) Analytics() repositories.AnalyticsRepository { return r.analytics }
func (r *PostgreSQLRepository) ImportJob() repositories.ImportJobRepository { return r.importJob }

func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql db: %w", err)
	}
	return sqlDB.Close()
}

// repositoryManager manages migration and lifecycle for the postgres repository.
type repositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &repositoryManager{config: config}
}

// Initialize migrates the schema and creates the partial unique index that
// guarantees the one-active-report-per-(student, purpose) invariant. The
// index must exist before the service takes traffic; the application-level
// pre-check alone leaves a race window between check and insert.
func (m *repositoryManager) Initialize() error {
	db := m.config.DB

	if err := db.AutoMigrate(
		&models.Section{},
		&models.Course{},
		&models.User{},
		&models.Student{},
		&models.Report{},
		&models.Observation{},
		&models.Recommendation{},
		&models.ImportJob{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS ` + repositories.UniqueActiveReportIndex +
			` ON reports (student_id, purpose) WHERE status IN ('PROGRAMADO', 'SEGUIMIENTO')`,
	).Error; err != nil {
		return fmt.Errorf("failed to create active report index: %w", err)
	}

	m.repo = NewPostgreSQLRepository(m.config)
	return nil
}

func (m *repositoryManager) GetRepository() repositories.Repository {
	return m.repo
}

func (m *repositoryManager) HealthCheck(ctx context.Context) error {
	if m.repo == nil {
		return fmt.Errorf("repository not initialized")
	}
	return m.repo.Ping(ctx)
}

func (m *repositoryManager) Shutdown(ctx context.Context) error {
	if m.repo == nil {
		return nil
	}
	return m.repo.Close()
}
