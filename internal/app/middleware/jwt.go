package middleware

import (
	"net/http"
	"strings"

	"bloodbridge-http-service/internal/domain/services"
	"bloodbridge-http-service/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

var jwtService services.InterfaceJWTService

// InitAuthMiddleware initializes the authentication middleware
func InitAuthMiddleware(cfg *config.Config, db *gorm.DB) {
	jwtService = services.NewJWTService(cfg, db)
}

// extractToken strips the "Bearer " prefix from an authorization header
func extractToken(authHeader string) string {
	if len(authHeader) > 7 && strings.HasPrefix(authHeader, "Bearer ") {
		return authHeader[7:]
	}
	return authHeader
}

// authenticate validates the token and enforces one of the allowed roles.
// An empty allow list accepts any authenticated user.
func authenticate(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "Authorization header is required",
				"data":    nil,
			})
			c.Abort()
			return
		}

		tokenString := extractToken(authHeader)
		token, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "Invalid token: " + err.Error(),
				"data":    nil,
			})
			c.Abort()
			return
		}

		if !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "Invalid token",
				"data":    nil,
			})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "Invalid token claims",
				"data":    nil,
			})
			c.Abort()
			return
		}

		role, hasRole := claims["role"].(string)
		if len(allowedRoles) > 0 {
			allowed := false
			for _, candidate := range allowedRoles {
				if hasRole && role == candidate {
					allowed = true
					break
				}
			}
			if !allowed {
				c.JSON(http.StatusForbidden, gin.H{
					"code":    403,
					"message": "Insufficient permissions for this resource",
					"data":    nil,
				})
				c.Abort()
				return
			}
		}

		c.Set("userID", claims["user_id"])
		c.Set("role", role)
		c.Set("claims", claims)
		c.Next()
	}
}

// AuthenticateAdmin requires the admin role
func AuthenticateAdmin() gin.HandlerFunc {
	return authenticate(services.RoleAdmin)
}

// AuthenticateDonor requires the donor role. Admins pass too.
func AuthenticateDonor() gin.HandlerFunc {
	return authenticate(services.RoleDonor, services.RoleAdmin)
}

// AuthenticatePatient requires the patient role. Admins pass too.
func AuthenticatePatient() gin.HandlerFunc {
	return authenticate(services.RolePatient, services.RoleAdmin)
}

// Authentication accepts any valid token
func Authentication() gin.HandlerFunc {
	return authenticate()
}

// CurrentUserID reads the authenticated user ID from the gin context
func CurrentUserID(c *gin.Context) uint {
	value, exists := c.Get("userID")
	if !exists {
		return 0
	}
	switch id := value.(type) {
	case float64:
		return uint(id)
	case uint:
		return id
	case int:
		return uint(id)
	default:
		return 0
	}
}
