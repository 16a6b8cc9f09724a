package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-service/internal/config"
	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/services"
	"github.com/SAP-F-2025/course-service/internal/utils"
)

// TokenParser validates a bearer token and returns its claims.
// *casdoorsdk.Client satisfies it.
type TokenParser interface {
	ParseJwtToken(token string) (*casdoorsdk.Claims, error)
}

// NewCasdoorClient builds the SDK client from configuration
func NewCasdoorClient(cfg config.CasdoorConfig) *casdoorsdk.Client {
	return casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)
}

// CasdoorAuthMiddleware authenticates requests with Casdoor-issued tokens and
// resolves them to platform accounts
type CasdoorAuthMiddleware struct {
	parser   TokenParser
	accounts services.AccountService
	logger   utils.Logger
}

func NewCasdoorAuthMiddleware(parser TokenParser, accounts services.AccountService, logger utils.Logger) *CasdoorAuthMiddleware {
	return &CasdoorAuthMiddleware{
		parser:   parser,
		accounts: accounts,
		logger:   logger,
	}
}

// AuthMiddleware rejects requests without a valid token for an active account
func (cam *CasdoorAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Missing or malformed authorization header",
			})
			return
		}

		user, err := cam.authenticate(c, token)
		if err != nil {
			if errors.Is(err, services.ErrAccountDisabled) {
				c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Message: "Account disabled"})
				return
			}
			utils.GetLogger(c, cam.logger).Warn("Authentication failed", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid token"})
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the caller when a valid token is present and
// lets the request through either way
func (cam *CasdoorAuthMiddleware) OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}

		if user, err := cam.authenticate(c, token); err == nil {
			setUser(c, user)
		}
		c.Next()
	}
}

// RequireRoleMiddleware checks if user has required role
func (cam *CasdoorAuthMiddleware) RequireRoleMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := GetUserRoleFromContext(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Message: "Forbidden"})
			return
		}

		for _, requiredRole := range requiredRoles {
			if role == requiredRole || role == models.RoleAdmin {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
			Message: fmt.Sprintf("Insufficient permissions, required role: %v", requiredRoles),
		})
	}
}

func (cam *CasdoorAuthMiddleware) authenticate(c *gin.Context, token string) (*models.User, error) {
	claims, err := cam.parser.ParseJwtToken(token)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return cam.accounts.ResolveIdentity(c.Request.Context(), identityFromClaims(claims))
}

func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// identityFromClaims maps Casdoor claims to the identity the account service
// resolves. The admin flag only seeds the role of a new account.
func identityFromClaims(claims *casdoorsdk.Claims) services.Identity {
	id := claims.User.Id
	if id == "" {
		id = claims.RegisteredClaims.Subject
	}
	fullName := claims.User.DisplayName
	if fullName == "" {
		fullName = claims.User.Name
	}
	return services.Identity{
		ID:       id,
		Email:    claims.User.Email,
		FullName: fullName,
		IsAdmin:  claims.User.IsAdmin,
	}
}

func setUser(c *gin.Context, user *models.User) {
	c.Set("user_id", user.ID)
	c.Set("user", user)
	c.Set("user_role", user.Role)
	c.Set("user_email", user.Email)
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
