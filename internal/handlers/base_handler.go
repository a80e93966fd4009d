package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/calasanz-edu/report-service/internal/services"
	"github.com/calasanz-edu/report-service/internal/utils"
	"github.com/calasanz-edu/report-service/internal/validator"
)

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// DuplicateReportResponse is the conflict payload returned when a student
// already holds an active report for the requested purpose. It points the
// caller at the existing case.
type DuplicateReportResponse struct {
	Message   string    `json:"message"`
	ReportID  uint      `json:"report_id"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// BaseHandler holds what every handler needs.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string) {
	utils.FromContext(c, h.logger).Debug(msg, "path", c.Request.URL.Path)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string) {
	utils.FromContext(c, h.logger).Error(msg, "error", err, "path", c.Request.URL.Path)
}

// parseIDParam parses a numeric path parameter; on failure it writes a 400
// and returns 0 so callers can bail out.
func (h *BaseHandler) parseIDParam(c *gin.Context, param string) uint {
	idStr := c.Param(param)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID must be a valid number",
		})
		return 0
	}
	return uint(id)
}

// parsePagination reads skip/limit query parameters, clamping to sane values.
func (h *BaseHandler) parsePagination(c *gin.Context) (skip, limit int) {
	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil || skip < 0 {
		skip = 0
	}
	limit, err = strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		limit = 0
	}
	return skip, limit
}

// handleServiceError maps service errors to HTTP status codes.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var dupErr *services.DuplicateActiveReportError
	var permErr *services.PermissionError
	var validationErrs validator.ValidationErrors

	switch {
	case errors.As(err, &dupErr):
		c.JSON(http.StatusConflict, DuplicateReportResponse{
			Message:   dupErr.Error(),
			ReportID:  dupErr.ReportID,
			CreatedBy: dupErr.CreatedByName,
			CreatedAt: dupErr.CreatedAt,
		})
	case errors.As(err, &permErr):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Forbidden",
			Details: permErr.Reason,
		})
	case errors.As(err, &validationErrs):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrs.Error(),
		})
	case errors.Is(err, services.ErrReportNotFound),
		errors.Is(err, services.ErrStudentNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrSectionNotFound),
		errors.Is(err, services.ErrCourseNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrSectionExists):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrReportAlreadyClosed):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Unauthorized",
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
