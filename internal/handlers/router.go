package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/calasanz-edu/report-service/internal/config"
	"github.com/calasanz-edu/report-service/internal/models"
	"github.com/calasanz-edu/report-service/internal/repositories"
	"github.com/calasanz-edu/report-service/internal/services"
	"github.com/calasanz-edu/report-service/internal/utils"
)

type HandlerManager struct {
	reportHandler    *ReportHandler
	caseLogHandler   *CaseLogHandler
	studentHandler   *StudentHandler
	userHandler      *UserHandler
	directoryHandler *DirectoryHandler
	importHandler    *ImportHandler
	analyticsHandler *AnalyticsHandler
	authMiddleware   *CasdoorAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	userRepo repositories.UserRepository,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(casdoorConfig, userRepo)

	return &HandlerManager{
		reportHandler:    NewReportHandler(serviceManager.Report(), logger),
		caseLogHandler:   NewCaseLogHandler(serviceManager.CaseLog(), logger),
		studentHandler:   NewStudentHandler(serviceManager.Directory(), logger),
		userHandler:      NewUserHandler(serviceManager.Directory(), logger),
		directoryHandler: NewDirectoryHandler(serviceManager.Directory(), logger),
		importHandler:    NewImportHandler(serviceManager.Roster(), logger),
		analyticsHandler: NewAnalyticsHandler(serviceManager.Analytics(), logger),
		authMiddleware:   authMiddleware,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// API v1 routes with authentication
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Report lifecycle
		reports := v1.Group("/reports")
		{
			reports.POST("", hm.reportHandler.CreateReport)
			reports.GET("", hm.reportHandler.ListReports)
			reports.GET("/:id", hm.reportHandler.GetReport)
			reports.POST("/:id/close", hm.reportHandler.CloseReport)

			// Case log
			reports.POST("/:id/observations", hm.caseLogHandler.AppendObservation)
			reports.GET("/:id/observations", hm.caseLogHandler.ListObservations)
			reports.POST("/:id/recommendations", hm.caseLogHandler.AppendRecommendation)
			reports.GET("/:id/recommendations", hm.caseLogHandler.ListRecommendations)
		}

		// Student directory
		students := v1.Group("/students")
		{
			students.GET("", hm.studentHandler.ListStudents)
		}
		v1.GET("/courses", hm.studentHandler.ListCourses)

		// Staff
		users := v1.Group("/users")
		{
			users.GET("", hm.userHandler.ListStaff)
			users.GET("/me", hm.userHandler.GetMe)
		}

		// Analytics
		v1.GET("/stats/analytics", hm.analyticsHandler.GetAnalytics)

		// Bulk imports - Coordinators and Admins only
		imports := v1.Group("/import")
		imports.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleCoordinador, models.RoleAdminGlobal))
		{
			imports.POST("/students", hm.importHandler.ImportStudents)
			imports.POST("/users", hm.importHandler.ImportUsers)
			imports.GET("/jobs", hm.importHandler.ListImportJobs)
		}

		// Navigation directory administration
		admin := v1.Group("/admin")
		{
			sections := admin.Group("/sections")
			sections.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleAdminGlobal))
			{
				sections.GET("", hm.directoryHandler.ListSections)
				sections.POST("", hm.directoryHandler.CreateSection)
				sections.DELETE("/:id", hm.directoryHandler.DeleteSection)
			}

			courses := admin.Group("/courses")
			courses.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleCoordinador, models.RoleAdminGlobal))
			{
				courses.POST("", hm.directoryHandler.CreateCourse)
				courses.DELETE("/:id", hm.directoryHandler.DeleteCourse)
			}
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "report-service",
		})
	})
}
