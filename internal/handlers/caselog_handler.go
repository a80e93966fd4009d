package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calasanz-edu/report-service/internal/services"
	"github.com/calasanz-edu/report-service/internal/utils"
)

type CaseLogHandler struct {
	BaseHandler
	service services.CaseLogService
}

func NewCaseLogHandler(service services.CaseLogService, logger utils.Logger) *CaseLogHandler {
	return &CaseLogHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// AppendObservation adds a titled log entry to a report. Appending to a
// scheduled report moves it to follow-up in the same transaction.
func (h *CaseLogHandler) AppendObservation(c *gin.Context) {
	h.LogRequest(c, "Appending observation")

	principal, err := GetPrincipalFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	reportID := h.parseIDParam(c, "id")
	if reportID == 0 {
		return
	}

	var req services.AppendObservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	obs, err := h.service.AppendObservation(c.Request.Context(), reportID, &req, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, obs)
}

func (h *CaseLogHandler) ListObservations(c *gin.Context) {
	h.LogRequest(c, "Listing observations")

	principal, err := GetPrincipalFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	reportID := h.parseIDParam(c, "id")
	if reportID == 0 {
		return
	}

	observations, err := h.service.ListObservations(c.Request.Context(), reportID, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"observations": observations})
}

// AppendRecommendation adds an untitled log entry. Recommendations never
// change report status.
func (h *CaseLogHandler) AppendRecommendation(c *gin.Context) {
	h.LogRequest(c, "Appending recommendation")

	principal, err := GetPrincipalFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	reportID := h.parseIDParam(c, "id")
	if reportID == 0 {
		return
	}

	var req services.AppendRecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	rec, err := h.service.AppendRecommendation(c.Request.Context(), reportID, &req, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rec)
}

func (h *CaseLogHandler) ListRecommendations(c *gin.Context) {
	h.LogRequest(c, "Listing recommendations")

	principal, err := GetPrincipalFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	reportID := h.parseIDParam(c, "id")
	if reportID == 0 {
		return
	}

	recommendations, err := h.service.ListRecommendations(c.Request.Context(), reportID, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recommendations": recommendations})
}
