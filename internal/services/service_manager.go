package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/calasanz-edu/report-service/internal/cache"
	"github.com/calasanz-edu/report-service/internal/events"
	"github.com/calasanz-edu/report-service/internal/repositories"
	"github.com/calasanz-edu/report-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager.
type ServiceManagerConfig struct {
	// AnalyticsScopeToSection restricts analytics rollups to the caller's
	// assigned section for non-admin users. Off by default: every
	// authenticated user sees the global figures.
	AnalyticsScopeToSection bool
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	caches    *cache.Manager
	publisher events.Publisher
	config    ServiceManagerConfig

	reportService    ReportService
	caseLogService   CaseLogService
	directoryService DirectoryService
	rosterService    RosterService
	analyticsService AnalyticsService

	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies.
func NewServiceManager(repo repositories.Repository, logger *slog.Logger, v *validator.Validator, caches *cache.Manager, publisher events.Publisher, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		repo:      repo,
		logger:    logger,
		validator: v,
		caches:    caches,
		publisher: publisher,
		config:    config,
	}
}

// Initialize sets up all services and their dependencies.
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	sm.reportService = NewReportService(sm.repo, sm.logger, sm.validator, sm.publisher)
	sm.caseLogService = NewCaseLogService(sm.repo, sm.logger, sm.validator, sm.publisher)
	sm.directoryService = NewDirectoryService(sm.repo, sm.logger, sm.validator)
	sm.rosterService = NewRosterService(sm.repo, sm.logger)
	sm.analyticsService = NewAnalyticsService(sm.repo, sm.logger, sm.caches.Stats, sm.config.AnalyticsScopeToSection)

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters
func (sm *serviceManager) Report() ReportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.reportService
}

func (sm *serviceManager) CaseLog() CaseLogService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.caseLogService
}

func (sm *serviceManager) Directory() DirectoryService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.directoryService
}

func (sm *serviceManager) Roster() RosterService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.rosterService
}

func (sm *serviceManager) Analytics() AnalyticsService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.analyticsService
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if err := sm.publisher.Close(); err != nil {
		sm.logger.Error("Failed to close event publisher", "error", err)
	}

	if err := sm.repo.Close(); err != nil {
		sm.logger.Error("Failed to close repository", "error", err)
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}
