package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calasanz-edu/report-service/internal/models"
	"github.com/calasanz-edu/report-service/internal/repositories"
	"github.com/calasanz-edu/report-service/internal/services"
	"github.com/calasanz-edu/report-service/internal/utils"
)

type ImportHandler struct {
	BaseHandler
	service services.RosterService
}

func NewImportHandler(service services.RosterService, logger utils.Logger) *ImportHandler {
	return &ImportHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ImportStudents ingests a student roster (XLSX or CSV) uploaded as a
// multipart file. Rows fail individually; the response summarizes counts
// and a sample of row errors.
func (h *ImportHandler) ImportStudents(c *gin.Context) {
	h.LogRequest(c, "Importing student roster")

	principal, err := GetPrincipalFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing file",
			Details: "upload the roster as multipart field 'file'",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Could not read uploaded file",
			Details: err.Error(),
		})
		return
	}
	defer file.Close()

	result, err := h.service.ImportStudents(c.Request.Context(), fileHeader.Filename, file, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ImportUsers ingests a staff roster with the same partial-failure semantics.
func (h *ImportHandler) ImportUsers(c *gin.Context) {
	h.LogRequest(c, "Importing staff roster")

	principal, err := GetPrincipalFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing file",
			Details: "upload the roster as multipart field 'file'",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Could not read uploaded file",
			Details: err.Error(),
		})
		return
	}
	defer file.Close()

	result, err := h.service.ImportUsers(c.Request.Context(), fileHeader.Filename, file, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListImportJobs returns past import outcomes for auditing.
func (h *ImportHandler) ListImportJobs(c *gin.Context) {
	h.LogRequest(c, "Listing import jobs")

	principal, err := GetPrincipalFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	filters := repositories.ImportJobFilters{}
	filters.Offset, filters.Limit = h.parsePagination(c)

	if kindStr := c.Query("kind"); kindStr != "" {
		kind := models.ImportKind(kindStr)
		filters.Kind = &kind
	}

	jobs, total, err := h.service.ListImportJobs(c.Request.Context(), filters, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"jobs":  jobs,
		"total": total,
	})
}
