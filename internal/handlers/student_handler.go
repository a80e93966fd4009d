package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calasanz-edu/report-service/internal/models"
	"github.com/calasanz-edu/report-service/internal/services"
	"github.com/calasanz-edu/report-service/internal/utils"
)

type StudentHandler struct {
	BaseHandler
	service services.DirectoryService
}

func NewStudentHandler(service services.DirectoryService, logger utils.Logger) *StudentHandler {
	return &StudentHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ListStudents returns the directory page visible to the caller, each entry
// annotated with its active report count.
func (h *StudentHandler) ListStudents(c *gin.Context) {
	h.LogRequest(c, "Listing students")

	principal, err := GetPrincipalFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	req := services.ListStudentsRequest{
		Query: c.Query("q"),
	}
	req.Skip, req.Limit = h.parsePagination(c)

	if sectionStr := c.Query("section"); sectionStr != "" {
		section := models.SectionBand(sectionStr)
		req.Section = &section
	}

	if courseStr := c.Query("course"); courseStr != "" {
		req.Course = &courseStr
	}

	students, err := h.service.ListStudents(c.Request.Context(), &req, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, students)
}

// ListCourses returns the distinct course labels present in the directory,
// optionally filtered by section band.
func (h *StudentHandler) ListCourses(c *gin.Context) {
	h.LogRequest(c, "Listing course labels")

	principal, err := GetPrincipalFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var section *models.SectionBand
	if sectionStr := c.Query("section"); sectionStr != "" {
		band := models.SectionBand(sectionStr)
		section = &band
	}

	courses, err := h.service.ListCourseLabels(c.Request.Context(), section, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"courses": courses})
}
