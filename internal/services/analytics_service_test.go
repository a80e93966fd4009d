package services

import (
	"context"
	"testing"

	"github.com/calasanz-edu/report-service/internal/cache"
	"github.com/calasanz-edu/report-service/internal/models"
	"github.com/calasanz-edu/report-service/internal/repositories"
)

func newAnalyticsMock() *mockAnalyticsRepo {
	return &mockAnalyticsRepo{
		totalReports:     12,
		distinctStudents: 7,
		byStatus: map[models.ReportStatus]int64{
			models.StatusProgramado:  3,
			models.StatusSeguimiento: 4,
			models.StatusAtendido:    5,
		},
		byPurpose: map[models.EduPurpose]int64{
			models.PurposeAcademico:   8,
			models.PurposeConvivencia: 4,
		},
		byCourse: map[string]int64{"1001": 6, "501": 6},
		ranking: []repositories.StudentReportCount{
			{StudentID: 1, FullName: "Ana Gómez", Course: "1001", Count: 5},
			{StudentID: 2, FullName: "Pedro Díaz", Course: "501", Count: 5},
		},
	}
}

func TestAnalyticsService_GetAnalytics(t *testing.T) {
	ctx := context.Background()

	t.Run("aggregates are consistent and ranking order is preserved", func(t *testing.T) {
		analytics := newAnalyticsMock()
		repo := &mockRepository{analytics: analytics}
		svc := NewAnalyticsService(repo, testLogger(), cache.NewHelper(nil, "stats:"), false)

		resp, err := svc.GetAnalytics(ctx, adminPrincipal())
		if err != nil {
			t.Fatalf("GetAnalytics failed: %v", err)
		}

		if resp.TotalReports != 12 || resp.TotalStudents != 7 {
			t.Errorf("Unexpected totals: %d reports, %d students", resp.TotalReports, resp.TotalStudents)
		}

		var statusSum int64
		for _, n := range resp.ByStatus {
			statusSum += n
		}
		if statusSum != resp.TotalReports {
			t.Errorf("Status counts sum to %d, want %d", statusSum, resp.TotalReports)
		}

		var purposeSum int64
		for _, n := range resp.ByPurpose {
			purposeSum += n
		}
		if purposeSum != resp.TotalReports {
			t.Errorf("Purpose counts sum to %d, want %d", purposeSum, resp.TotalReports)
		}

		if len(resp.StudentRanking) != 2 {
			t.Fatalf("Expected 2 ranking entries, got %d", len(resp.StudentRanking))
		}
		// Equal counts keep the store's deterministic order.
		if resp.StudentRanking[0].Name != "Ana Gómez" || resp.StudentRanking[1].Name != "Pedro Díaz" {
			t.Errorf("Ranking order not preserved: %+v", resp.StudentRanking)
		}
	})

	t.Run("global scope by default for non-admins", func(t *testing.T) {
		analytics := newAnalyticsMock()
		repo := &mockRepository{analytics: analytics}
		svc := NewAnalyticsService(repo, testLogger(), cache.NewHelper(nil, "stats:"), false)

		if _, err := svc.GetAnalytics(ctx, teacherPrincipal(models.BandMediaBasica)); err != nil {
			t.Fatalf("GetAnalytics failed: %v", err)
		}
		if analytics.lastSection != nil {
			t.Errorf("Expected global figures, got section %v", *analytics.lastSection)
		}
	})

	t.Run("section scope when enabled", func(t *testing.T) {
		analytics := newAnalyticsMock()
		repo := &mockRepository{analytics: analytics}
		svc := NewAnalyticsService(repo, testLogger(), cache.NewHelper(nil, "stats:"), true)

		if _, err := svc.GetAnalytics(ctx, teacherPrincipal(models.BandMediaBasica)); err != nil {
			t.Fatalf("GetAnalytics failed: %v", err)
		}
		if analytics.lastSection == nil || *analytics.lastSection != models.BandMediaBasica {
			t.Errorf("Expected scope %s, got %v", models.BandMediaBasica, analytics.lastSection)
		}

		// Admins stay global even with scoping enabled.
		analytics.lastSection = nil
		if _, err := svc.GetAnalytics(ctx, adminPrincipal()); err != nil {
			t.Fatalf("GetAnalytics failed: %v", err)
		}
		if analytics.lastSection != nil {
			t.Errorf("Expected admin to stay unscoped, got %v", *analytics.lastSection)
		}
	})
}
