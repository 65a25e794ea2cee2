package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/advising-service/internal/config"
	"github.com/SAP-F-2025/advising-service/internal/models"
	"github.com/SAP-F-2025/advising-service/internal/repositories"
)

// CasdoorAuthMiddleware authenticates requests against Casdoor. The token is
// used only to establish identity; the role attached to the request is read
// fresh from the identity store, so a role claim baked into an old token never
// grants access the user no longer has.
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

// AuthMiddleware returns a Gin middleware function for Casdoor authentication
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

		token := tokenParts[1]

		claims, err := cam.client.ParseJwtToken(token)
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

		c.Set("user_id", user.ID)
		c.Set("user", user)
		c.Set("user_role", user.Role)
		c.Set("user_email", user.Email)

		c.Next()
	}
}

// RequireRoleMiddleware allows the request through only when the resolved
// role is one of requiredRoles. Membership is strict: routes that should be
// open to admins list RoleAdmin explicitly.
func (cam *CasdoorAuthMiddleware) RequireRoleMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
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

		role, ok := userRole.(models.UserRole)
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
			if role == requiredRole {
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

// resolveUser turns validated claims into the live user. Only the identity is
// taken from the token; an identity the store no longer knows is rejected
// outright instead of being reconstructed from claims.
func (cam *CasdoorAuthMiddleware) resolveUser(ctx context.Context, claims *casdoorsdk.Claims) (*models.User, error) {
	userID := claims.Id
	if userID == "" {
		return nil, fmt.Errorf("invalid user ID in token")
	}

	user, err := cam.userRepo.GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("user %s not found in identity store", userID)
		}
		return nil, err
	}

	return user, nil
}

// GetUserFromContext extracts user from Gin context
func GetUserFromContext(c *gin.Context) (*models.User, error) {
	user, exists := c.Get("user")
	if !exists {
		return nil, fmt.Errorf("user not found in context")
	}

	userModel, ok := user.(*models.User)
	if !ok {
		return nil, fmt.Errorf("invalid user type in context")
	}

	return userModel, nil
}

// GetUserIDFromContext extracts user ID from Gin context
func GetUserIDFromContext(c *gin.Context) (string, error) {
	userID, exists := c.Get("user_id")
	if !exists {
		return "", fmt.Errorf("user ID not found in context")
	}

	id, ok := userID.(string)
	if !ok {
		return "", fmt.Errorf("invalid user ID type in context")
	}

	return id, nil
}

// GetUserRoleFromContext extracts user role from Gin context
func GetUserRoleFromContext(c *gin.Context) (models.UserRole, error) {
	userRole, exists := c.Get("user_role")
	if !exists {
		return "", fmt.Errorf("user role not found in context")
	}

	role, ok := userRole.(models.UserRole)
	if !ok {
		return "", fmt.Errorf("invalid user role type in context")
	}

	return role, nil
}
