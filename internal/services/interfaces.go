package services

import (
	"context"
	"io"
	"time"

	"github.com/calasanz-edu/report-service/internal/models"
	"github.com/calasanz-edu/report-service/internal/repositories"
)

// ===== REQUEST/RESPONSE DTOs =====

type CreateReportRequest struct {
	StudentID      uint              `json:"student_id" validate:"required"`
	Purpose        models.EduPurpose `json:"purpose" validate:"required,edu_purpose"`
	Objective      string            `json:"objective" validate:"required"`
	AcademicPeriod string            `json:"academic_period" validate:"required,max=50"`
	AssignedToID   *uint             `json:"assigned_to_id"`
}

type ReportResponse struct {
	*models.Report
	CanClose bool `json:"can_close"`
}

type ReportListResponse struct {
	Reports []*ReportResponse `json:"reports"`
	Total   int64             `json:"total"`
	Skip    int               `json:"skip"`
	Limit   int               `json:"limit"`
}

type ListReportsRequest struct {
	StudentID *uint                `json:"student_id"`
	Purpose   *models.EduPurpose   `json:"purpose"`
	Status    *models.ReportStatus `json:"status"`
	Skip      int                  `json:"skip"`
	Limit     int                  `json:"limit"`
}

type AppendObservationRequest struct {
	Title   string     `json:"title" validate:"required,max=200"`
	Content string     `json:"content" validate:"required"`
	DateLog *time.Time `json:"date_log"` // defaults to now
}

type AppendRecommendationRequest struct {
	Content string     `json:"content" validate:"required"`
	DateLog *time.Time `json:"date_log"`
}

type StudentWithReports struct {
	*models.Student
	ActiveReports int64 `json:"active_reports"`
}

type StudentListResponse struct {
	Students []*StudentWithReports `json:"students"`
	Total    int64                 `json:"total"`
	Skip     int                   `json:"skip"`
	Limit    int                   `json:"limit"`
}

type ListStudentsRequest struct {
	Section *models.SectionBand `json:"section"`
	Course  *string             `json:"course"`
	Query   string              `json:"query"`
	Skip    int                 `json:"skip"`
	Limit   int                 `json:"limit"`
}

type CreateSectionRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type CreateCourseRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	SectionID uint   `json:"section_id" validate:"required"`
}

type StudentRankingEntry struct {
	Name   string `json:"name"`
	Course string `json:"course"`
	Count  int64  `json:"count"`
}

type AnalyticsResponse struct {
	TotalReports   int64                          `json:"total_reports"`
	TotalStudents  int64                          `json:"total_students"`
	ByStatus       map[models.ReportStatus]int64  `json:"by_status"`
	ByPurpose      map[models.EduPurpose]int64    `json:"by_purpose"`
	ByCourse       map[string]int64               `json:"by_course"`
	StudentRanking []StudentRankingEntry          `json:"student_ranking"`
}

// ImportResult summarizes one roster import. Errors is a bounded sample;
// Processed and Succeeded count every row.
type ImportResult struct {
	Message   string   `json:"message"`
	Processed int      `json:"processed"`
	Succeeded int      `json:"success"`
	Errors    []string `json:"errors"`
}

// ===== SERVICE INTERFACES =====

// ReportService owns the report lifecycle: creation under the one-active-
// case invariant, visibility scoping and explicit closure.
type ReportService interface {
	Create(ctx context.Context, req *CreateReportRequest, principal Principal) (*ReportResponse, error)
	GetByID(ctx context.Context, id uint, principal Principal) (*ReportResponse, error)
	List(ctx context.Context, req *ListReportsRequest, principal Principal) (*ReportListResponse, error)
	Close(ctx context.Context, id uint, principal Principal) (*ReportResponse, error)
}

// CaseLogService appends observations and recommendations. Observations
// trigger the scheduled→follow-up transition atomically with the append;
// recommendations never change status.
type CaseLogService interface {
	AppendObservation(ctx context.Context, reportID uint, req *AppendObservationRequest, principal Principal) (*models.Observation, error)
	AppendRecommendation(ctx context.Context, reportID uint, req *AppendRecommendationRequest, principal Principal) (*models.Recommendation, error)
	ListObservations(ctx context.Context, reportID uint, principal Principal) ([]*models.Observation, error)
	ListRecommendations(ctx context.Context, reportID uint, principal Principal) ([]*models.Recommendation, error)
}

// DirectoryService serves the student directory and the admin-managed
// Section/Course navigation hierarchy.
type DirectoryService interface {
	ListStudents(ctx context.Context, req *ListStudentsRequest, principal Principal) (*StudentListResponse, error)
	ListCourseLabels(ctx context.Context, section *models.SectionBand, principal Principal) ([]string, error)
	ListStaff(ctx context.Context, principal Principal) ([]*models.User, error)

	ListSections(ctx context.Context, principal Principal) ([]*models.Section, error)
	CreateSection(ctx context.Context, req *CreateSectionRequest, principal Principal) (*models.Section, error)
	DeleteSection(ctx context.Context, id uint, principal Principal) error
	CreateCourse(ctx context.Context, req *CreateCourseRequest, principal Principal) (*models.Course, error)
	DeleteCourse(ctx context.Context, id uint, principal Principal) error
}

// RosterService ingests spreadsheet/CSV rosters with partial-failure
// semantics and idempotent upserts by natural key.
type RosterService interface {
	ImportStudents(ctx context.Context, filename string, r io.Reader, principal Principal) (*ImportResult, error)
	ImportUsers(ctx context.Context, filename string, r io.Reader, principal Principal) (*ImportResult, error)
	ListImportJobs(ctx context.Context, filters repositories.ImportJobFilters, principal Principal) ([]*models.ImportJob, int64, error)
}

// AnalyticsService computes read-only rollups over reports and students.
type AnalyticsService interface {
	GetAnalytics(ctx context.Context, principal Principal) (*AnalyticsResponse, error)
}

// ServiceManager wires the services together and manages their lifecycle.
type ServiceManager interface {
	Report() ReportService
	CaseLog() CaseLogService
	Directory() DirectoryService
	Roster() RosterService
	Analytics() AnalyticsService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
