package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/calasanz-edu/report-service/internal/config"
	"github.com/calasanz-edu/report-service/internal/models"
	"github.com/calasanz-edu/report-service/internal/repositories"
	"github.com/calasanz-edu/report-service/internal/services"
)

// CasdoorAuthMiddleware verifies bearer tokens against the identity
// provider and resolves the local staff record. Staff signing in for the
// first time are provisioned automatically with the base teacher role; an
// admin promotes them afterwards.
type CasdoorAuthMiddleware struct {
	client   *casdoorsdk.Client
	userRepo repositories.UserRepository
	config   config.CasdoorConfig
}

func NewCasdoorAuthMiddleware(cfg config.CasdoorConfig, userRepo repositories.UserRepository) *CasdoorAuthMiddleware {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Application,
		cfg.Organization,
	)

	return &CasdoorAuthMiddleware{
		client:   client,
		userRepo: userRepo,
		config:   cfg,
	}
}

// AuthMiddleware returns a Gin middleware function for bearer authentication.
func (cam *CasdoorAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "authorization header missing",
			})
			c.Abort()
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "invalid authorization header format",
			})
			c.Abort()
			return
		}

		claims, err := cam.client.ParseJwtToken(tokenParts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": fmt.Sprintf("invalid token: %v", err),
			})
			c.Abort()
			return
		}

		user, err := cam.resolveUser(c.Request.Context(), claims)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": fmt.Sprintf("failed to resolve user: %v", err),
			})
			c.Abort()
			return
		}

		principal := services.Principal{
			ID:              user.ID,
			Email:           user.Email,
			Role:            user.Role,
			AssignedSection: user.AssignedSection,
			AssignedPurpose: user.AssignedPurpose,
		}

		c.Set("user_id", user.ID)
		c.Set("user", user)
		c.Set("user_role", user.Role)
		c.Set("principal", principal)

		c.Next()
	}
}

// RequireRoleMiddleware checks the resolved role against the allowed set.
// Global admins always pass.
func (cam *CasdoorAuthMiddleware) RequireRoleMiddleware(requiredRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get("user_role")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "user role not found in context",
			})
			c.Abort()
			return
		}

		role, ok := userRole.(models.Role)
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "invalid user role format",
			})
			c.Abort()
			return
		}

		hasRequiredRole := false
		for _, requiredRole := range requiredRoles {
			if role == requiredRole || role == models.RoleAdminGlobal {
				hasRequiredRole = true
				break
			}
		}

		if !hasRequiredRole {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": fmt.Sprintf("insufficient permissions, required role: %v", requiredRoles),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// resolveUser looks up the staff record matching the token's email,
// provisioning a new teacher account on first sign-in.
func (cam *CasdoorAuthMiddleware) resolveUser(ctx context.Context, claims *casdoorsdk.Claims) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(claims.User.Email))
	if email == "" {
		return nil, fmt.Errorf("token carries no email")
	}

	user, err := cam.userRepo.GetByEmail(ctx, nil, email)
	if err == nil {
		return user, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, err
	}

	fullName := claims.User.DisplayName
	if fullName == "" {
		fullName = email
	}
	sub := claims.User.Id

	user = &models.User{
		Email:    email,
		FullName: fullName,
		Role:     models.RoleDocente,
	}
	if sub != "" {
		user.OIDSub = &sub
	}

	if err := cam.userRepo.Create(ctx, nil, user); err != nil {
		// A concurrent first sign-in may have created the record already.
		existing, lookupErr := cam.userRepo.GetByEmail(ctx, nil, email)
		if lookupErr == nil {
			return existing, nil
		}
		return nil, err
	}
	return user, nil
}

// GetPrincipalFromContext extracts the resolved principal from the Gin context.
func GetPrincipalFromContext(c *gin.Context) (services.Principal, error) {
	value, exists := c.Get("principal")
	if !exists {
		return services.Principal{}, fmt.Errorf("principal not found in context")
	}

	principal, ok := value.(services.Principal)
	if !ok {
		return services.Principal{}, fmt.Errorf("invalid principal type in context")
	}

	return principal, nil
}
