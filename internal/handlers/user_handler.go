package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calasanz-edu/report-service/internal/models"
	"github.com/calasanz-edu/report-service/internal/services"
	"github.com/calasanz-edu/report-service/internal/utils"
)

type UserHandler struct {
	BaseHandler
	service services.DirectoryService
}

func NewUserHandler(service services.DirectoryService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ListStaff returns the staff roster, used to pick assignees for reports.
func (h *UserHandler) ListStaff(c *gin.Context) {
	h.LogRequest(c, "Listing staff")

	principal, err := GetPrincipalFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	staff, err := h.service.ListStaff(c.Request.Context(), principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": staff})
}

// GetMe returns the signed-in staff member's own record.
func (h *UserHandler) GetMe(c *gin.Context) {
	h.LogRequest(c, "Getting current user")

	value, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	user, ok := value.(*models.User)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	c.JSON(http.StatusOK, user)
}
