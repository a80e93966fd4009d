package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Repository aggregates all store interfaces.
type Repository interface {
	Student() StudentRepository
	User() UserRepository
	Report() ReportRepository
	CaseLog() CaseLogRepository
	Directory() DirectoryRepository
	Analytics() AnalyticsRepository
	ImportJob() ImportJobRepository

	// WithTransaction runs fn inside one storage transaction. Repository
	// methods receive the tx handle so multi-step writes (observation
	// append + status flip) commit or roll back together.
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error

	Ping(ctx context.Context) error
	Close() error
}

// RepositoryManager owns the repository lifecycle: migration on startup,
// health checks and shutdown.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
