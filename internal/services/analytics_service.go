package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/calasanz-edu/report-service/internal/cache"
	"github.com/calasanz-edu/report-service/internal/models"
	"github.com/calasanz-edu/report-service/internal/repositories"
)

// rankingLimit caps the student ranking at the top reporters.
const rankingLimit = 100

type analyticsService struct {
	repo        repositories.Repository
	logger      *slog.Logger
	statsCache  *cache.Helper
	scopeByRole bool
}

// NewAnalyticsService builds the read-side aggregator. scopeByRole controls
// whether non-admin callers see figures restricted to their section; the
// default deployment keeps the observed behavior (global figures for every
// authenticated user).
func NewAnalyticsService(repo repositories.Repository, logger *slog.Logger, statsCache *cache.Helper, scopeByRole bool) AnalyticsService {
	return &analyticsService{
		repo:        repo,
		logger:      logger,
		statsCache:  statsCache,
		scopeByRole: scopeByRole,
	}
}

func (s *analyticsService) GetAnalytics(ctx context.Context, principal Principal) (*AnalyticsResponse, error) {
	var section *models.SectionBand
	if s.scopeByRole {
		section = principal.ReportScope()
	}

	cacheKey := "analytics:global"
	if section != nil {
		cacheKey = "analytics:section:" + string(*section)
	}

	var response AnalyticsResponse
	err := s.statsCache.CacheOrExecute(ctx, cacheKey, &response, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		return s.compute(ctx, section)
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func (s *analyticsService) compute(ctx context.Context, section *models.SectionBand) (*AnalyticsResponse, error) {
	analytics := s.repo.Analytics()

	totalReports, err := analytics.TotalReports(ctx, nil, section)
	if err != nil {
		return nil, fmt.Errorf("failed to compute total reports: %w", err)
	}

	totalStudents, err := analytics.DistinctStudentsWithReports(ctx, nil, section)
	if err != nil {
		return nil, fmt.Errorf("failed to compute students with reports: %w", err)
	}

	byStatus, err := analytics.CountByStatus(ctx, nil, section)
	if err != nil {
		return nil, fmt.Errorf("failed to compute status counts: %w", err)
	}

	byPurpose, err := analytics.CountByPurpose(ctx, nil, section)
	if err != nil {
		return nil, fmt.Errorf("failed to compute purpose counts: %w", err)
	}

	byCourse, err := analytics.CountByCourse(ctx, nil, section)
	if err != nil {
		return nil, fmt.Errorf("failed to compute course counts: %w", err)
	}

	ranking, err := analytics.StudentRanking(ctx, nil, section, rankingLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to compute student ranking: %w", err)
	}

	entries := make([]StudentRankingEntry, len(ranking))
	for i, row := range ranking {
		entries[i] = StudentRankingEntry{
			Name:   row.FullName,
			Course: row.Course,
			Count:  row.Count,
		}
	}

	return &AnalyticsResponse{
		TotalReports:   totalReports,
		TotalStudents:  totalStudents,
		ByStatus:       byStatus,
		ByPurpose:      byPurpose,
		ByCourse:       byCourse,
		StudentRanking: entries,
	}, nil
}
