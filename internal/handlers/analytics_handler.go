package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calasanz-edu/report-service/internal/services"
	"github.com/calasanz-edu/report-service/internal/utils"
)

type AnalyticsHandler struct {
	BaseHandler
	service services.AnalyticsService
}

func NewAnalyticsHandler(service services.AnalyticsService, logger utils.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// GetAnalytics returns report rollups: totals, breakdowns by status,
// purpose and course, and the per-student report ranking.
func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	h.LogRequest(c, "Getting analytics")

	principal, err := GetPrincipalFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	analytics, err := h.service.GetAnalytics(c.Request.Context(), principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}
