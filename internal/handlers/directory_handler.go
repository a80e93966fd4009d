package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calasanz-edu/report-service/internal/services"
	"github.com/calasanz-edu/report-service/internal/utils"
)

// DirectoryHandler manages the admin-maintained Section/Course navigation
// hierarchy. Distinct from the fixed section bands used for access scoping.
type DirectoryHandler struct {
	BaseHandler
	service services.DirectoryService
}

func NewDirectoryHandler(service services.DirectoryService, logger utils.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

func (h *DirectoryHandler) ListSections(c *gin.Context) {
	h.LogRequest(c, "Listing sections")

	principal, err := GetPrincipalFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	sections, err := h.service.ListSections(c.Request.Context(), principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sections": sections})
}

func (h *DirectoryHandler) CreateSection(c *gin.Context) {
	h.LogRequest(c, "Creating section")

	principal, err := GetPrincipalFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var req services.CreateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	section, err := h.service.CreateSection(c.Request.Context(), &req, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, section)
}

// DeleteSection removes a section and its courses.
func (h *DirectoryHandler) DeleteSection(c *gin.Context) {
	h.LogRequest(c, "Deleting section")

	principal, err := GetPrincipalFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.service.DeleteSection(c.Request.Context(), id, principal); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *DirectoryHandler) CreateCourse(c *gin.Context) {
	h.LogRequest(c, "Creating course")

	principal, err := GetPrincipalFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var req services.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	course, err := h.service.CreateCourse(c.Request.Context(), &req, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, course)
}

func (h *DirectoryHandler) DeleteCourse(c *gin.Context) {
	h.LogRequest(c, "Deleting course")

	principal, err := GetPrincipalFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.service.DeleteCourse(c.Request.Context(), id, principal); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
