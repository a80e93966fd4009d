package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/calasanz-edu/report-service/internal/models"
	"github.com/calasanz-edu/report-service/internal/repositories"
)

// mockRepository implements repositories.Repository with pluggable stores.
// WithTransaction runs fn with a nil handle; the stores ignore it.
type mockRepository struct {
	student   repositories.StudentRepository
	user      repositories.UserRepository
	report    repositories.ReportRepository
	caseLog   repositories.CaseLogRepository
	directory repositories.DirectoryRepository
	analytics repositories.AnalyticsRepository
	importJob repositories.ImportJobRepository
}

func (m *mockRepository) Student() repositories.StudentRepository     { return m.student }
func (m *mockRepository) User() repositories.UserRepository           { return m.user }
func (m *mockRepository) Report() repositories.ReportRepository       { return m.report }
func (m *mockRepository) CaseLog() repositories.CaseLogRepository     { return m.caseLog }
func (m *mockRepository) Directory() repositories.DirectoryRepository { return m.directory }
func (m *mockRepository) Analytics() repositories.AnalyticsRepository { return m.analytics }
func (m *mockRepository) ImportJob() repositories.ImportJobRepository { return m.importJob }

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

type mockStudentRepo struct {
	getByID            func(id uint) (*models.Student, error)
	upsertByCode       func(student *models.Student) error
	list               func(filters repositories.StudentFilters) ([]*models.Student, int64, error)
	distinctCourses    func(section *models.SectionBand) ([]string, error)
	activeReportCounts func(studentIDs []uint) (map[uint]int64, error)
}

func (m *mockStudentRepo) Create(ctx context.Context, tx *gorm.DB, student *models.Student) error {
	return nil
}
func (m *mockStudentRepo) Update(ctx context.Context, tx *gorm.DB, student *models.Student) error {
	return nil
}
func (m *mockStudentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Student, error) {
	return m.getByID(id)
}
func (m *mockStudentRepo) GetByCode(ctx context.Context, tx *gorm.DB, code string) (*models.Student, error) {
	return nil, gorm.ErrRecordNotFound
}
func (m *mockStudentRepo) UpsertByCode(ctx context.Context, tx *gorm.DB, student *models.Student) error {
	return m.upsertByCode(student)
}
func (m *mockStudentRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.StudentFilters) ([]*models.Student, int64, error) {
	return m.list(filters)
}
func (m *mockStudentRepo) DistinctCourses(ctx context.Context, tx *gorm.DB, section *models.SectionBand) ([]string, error) {
	return m.distinctCourses(section)
}
func (m *mockStudentRepo) ActiveReportCounts(ctx context.Context, tx *gorm.DB, studentIDs []uint) (map[uint]int64, error) {
	return m.activeReportCounts(studentIDs)
}

type mockUserRepo struct {
	getByEmail    func(email string) (*models.User, error)
	upsertByEmail func(user *models.User) error
}

func (m *mockUserRepo) Create(ctx context.Context, tx *gorm.DB, user *models.User) error { return nil }
func (m *mockUserRepo) Update(ctx context.Context, tx *gorm.DB, user *models.User) error { return nil }
func (m *mockUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (m *mockUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	return m.getByEmail(email)
}
func (m *mockUserRepo) UpsertByEmail(ctx context.Context, tx *gorm.DB, user *models.User) error {
	return m.upsertByEmail(user)
}
func (m *mockUserRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	return nil, 0, nil
}

type mockReportRepo struct {
	create       func(report *models.Report) error
	getByID      func(id uint) (*models.Report, error)
	getActive    func(studentID uint, purpose models.EduPurpose) (*models.Report, error)
	list         func(filters repositories.ReportFilters) ([]*models.Report, int64, error)
	updateStatus func(reportID uint, status models.ReportStatus, closedAt *time.Time) error
}

func (m *mockReportRepo) Create(ctx context.Context, tx *gorm.DB, report *models.Report) error {
	return m.create(report)
}
func (m *mockReportRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Report, error) {
	return m.getByID(id)
}
func (m *mockReportRepo) GetActive(ctx context.Context, tx *gorm.DB, studentID uint, purpose models.EduPurpose) (*models.Report, error) {
	return m.getActive(studentID, purpose)
}
func (m *mockReportRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.ReportFilters) ([]*models.Report, int64, error) {
	return m.list(filters)
}
func (m *mockReportRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, reportID uint, status models.ReportStatus, closedAt *time.Time) error {
	return m.updateStatus(reportID, status, closedAt)
}

type mockCaseLogRepo struct {
	createObservation    func(obs *models.Observation) error
	createRecommendation func(rec *models.Recommendation) error
	listObservations     func(reportID uint) ([]*models.Observation, error)
	listRecommendations  func(reportID uint) ([]*models.Recommendation, error)
}

func (m *mockCaseLogRepo) CreateObservation(ctx context.Context, tx *gorm.DB, obs *models.Observation) error {
	return m.createObservation(obs)
}
func (m *mockCaseLogRepo) CreateRecommendation(ctx context.Context, tx *gorm.DB, rec *models.Recommendation) error {
	return m.createRecommendation(rec)
}
func (m *mockCaseLogRepo) ListObservations(ctx context.Context, tx *gorm.DB, reportID uint) ([]*models.Observation, error) {
	return m.listObservations(reportID)
}
func (m *mockCaseLogRepo) ListRecommendations(ctx context.Context, tx *gorm.DB, reportID uint) ([]*models.Recommendation, error) {
	return m.listRecommendations(reportID)
}

type mockDirectoryRepo struct {
	createSection    func(section *models.Section) error
	getSectionByID   func(id uint) (*models.Section, error)
	getSectionByName func(name string) (*models.Section, error)
	listSections     func() ([]*models.Section, error)
	deleteSection    func(id uint) error
	createCourse     func(course *models.Course) error
	deleteCourse     func(id uint) error
}

func (m *mockDirectoryRepo) CreateSection(ctx context.Context, tx *gorm.DB, section *models.Section) error {
	return m.createSection(section)
}
func (m *mockDirectoryRepo) GetSectionByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Section, error) {
	return m.getSectionByID(id)
}
func (m *mockDirectoryRepo) GetSectionByName(ctx context.Context, tx *gorm.DB, name string) (*models.Section, error) {
	return m.getSectionByName(name)
}
func (m *mockDirectoryRepo) ListSections(ctx context.Context, tx *gorm.DB) ([]*models.Section, error) {
	return m.listSections()
}
func (m *mockDirectoryRepo) DeleteSection(ctx context.Context, tx *gorm.DB, id uint) error {
	return m.deleteSection(id)
}
func (m *mockDirectoryRepo) CreateCourse(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	return m.createCourse(course)
}
func (m *mockDirectoryRepo) GetCourseByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	return nil, gorm.ErrRecordNotFound
}
func (m *mockDirectoryRepo) DeleteCourse(ctx context.Context, tx *gorm.DB, id uint) error {
	return m.deleteCourse(id)
}

type mockAnalyticsRepo struct {
	totalReports     int64
	distinctStudents int64
	byStatus         map[models.ReportStatus]int64
	byPurpose        map[models.EduPurpose]int64
	byCourse         map[string]int64
	ranking          []repositories.StudentReportCount

	lastSection *models.SectionBand
}

func (m *mockAnalyticsRepo) TotalReports(ctx context.Context, tx *gorm.DB, section *models.SectionBand) (int64, error) {
	m.lastSection = section
	return m.totalReports, nil
}
func (m *mockAnalyticsRepo) DistinctStudentsWithReports(ctx context.Context, tx *gorm.DB, section *models.SectionBand) (int64, error) {
	return m.distinctStudents, nil
}
func (m *mockAnalyticsRepo) CountByStatus(ctx context.Context, tx *gorm.DB, section *models.SectionBand) (map[models.ReportStatus]int64, error) {
	return m.byStatus, nil
}
func (m *mockAnalyticsRepo) CountByPurpose(ctx context.Context, tx *gorm.DB, section *models.SectionBand) (map[models.EduPurpose]int64, error) {
	return m.byPurpose, nil
}
func (m *mockAnalyticsRepo) CountByCourse(ctx context.Context, tx *gorm.DB, section *models.SectionBand) (map[string]int64, error) {
	return m.byCourse, nil
}
func (m *mockAnalyticsRepo) StudentRanking(ctx context.Context, tx *gorm.DB, section *models.SectionBand, limit int) ([]repositories.StudentReportCount, error) {
	return m.ranking, nil
}

type mockImportJobRepo struct {
	created []*models.ImportJob
}

func (m *mockImportJobRepo) Create(ctx context.Context, tx *gorm.DB, job *models.ImportJob) error {
	m.created = append(m.created, job)
	return nil
}
func (m *mockImportJobRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.ImportJobFilters) ([]*models.ImportJob, int64, error) {
	return m.created, int64(len(m.created)), nil
}
