package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/calasanz-edu/report-service/internal/models"
	"github.com/calasanz-edu/report-service/internal/services"
	"github.com/calasanz-edu/report-service/internal/utils"
)

type ReportHandler struct {
	BaseHandler
	service services.ReportService
}

func NewReportHandler(service services.ReportService, logger utils.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// CreateReport opens a new support case for a student. Returns 409 with the
// existing case details when the student already has an active report for
// the same purpose.
func (h *ReportHandler) CreateReport(c *gin.Context) {
	h.LogRequest(c, "Creating report")

	principal, err := GetPrincipalFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var req services.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	report, err := h.service.Create(c.Request.Context(), &req, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, report)
}

func (h *ReportHandler) GetReport(c *gin.Context) {
	h.LogRequest(c, "Getting report")

	principal, err := GetPrincipalFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	report, err := h.service.GetByID(c.Request.Context(), id, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) ListReports(c *gin.Context) {
	h.LogRequest(c, "Listing reports")

	principal, err := GetPrincipalFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	req := services.ListReportsRequest{}
	req.Skip, req.Limit = h.parsePagination(c)

	if studentIDStr := c.Query("student_id"); studentIDStr != "" {
		id, err := strconv.ParseUint(studentIDStr, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid student_id",
				Details: "ID must be a valid number",
			})
			return
		}
		sid := uint(id)
		req.StudentID = &sid
	}

	if purposeStr := c.Query("purpose"); purposeStr != "" {
		purpose := models.EduPurpose(purposeStr)
		req.Purpose = &purpose
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := models.ReportStatus(statusStr)
		req.Status = &status
	}

	reports, err := h.service.List(c.Request.Context(), &req, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, reports)
}

// CloseReport marks a report as attended and frees the (student, purpose)
// slot for future cases.
func (h *ReportHandler) CloseReport(c *gin.Context) {
	h.LogRequest(c, "Closing report")

	principal, err := GetPrincipalFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	report, err := h.service.Close(c.Request.Context(), id, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
