package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/trustimonials/trustimonials-backend/config"
	apperrors "github.com/trustimonials/trustimonials-backend/errors"
	"github.com/trustimonials/trustimonials-backend/logger"
	"github.com/trustimonials/trustimonials-backend/types"
)

// Claims is the JWT payload issued for dashboard sessions.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates the Bearer token on /api routes and stores the
// caller's id and role in the context. Tokens are HS256 signed with the
// shared server secret.
func AuthMiddleware(cfg *config.ServerConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.GetLogger()

		header := c.GetHeader("Authorization")
		if header == "" {
			_ = c.Error(apperrors.AuthenticationFailed("Authorization header is required"))
			c.Abort()
			return
		}
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			_ = c.Error(apperrors.AuthenticationFailed("Authorization header must be a Bearer token"))
			c.Abort()
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JwtSecretKey), nil
		})
		if err != nil || !token.Valid {
			log.Debugw("Token validation failed", "error", err, "client_ip", c.ClientIP())
			_ = c.Error(apperrors.AuthenticationFailed("Invalid or expired token"))
			c.Abort()
			return
		}
		if claims.Subject == "" {
			_ = c.Error(apperrors.AuthenticationFailed("Token is missing a subject"))
			c.Abort()
			return
		}

		role := types.RoleUser
		if claims.Role == string(types.RoleAdmin) {
			role = types.RoleAdmin
		}

		c.Set(string(UserIDKey), claims.Subject)
		c.Set(string(UserRoleKey), role)
		c.Next()
	}
}

// GetUserID returns the authenticated user's id from the context, or "".
func GetUserID(c *gin.Context) string {
	return c.GetString(string(UserIDKey))
}

// GetUserRole returns the authenticated user's role, defaulting to RoleUser.
func GetUserRole(c *gin.Context) types.UserRole {
	if v, ok := c.Get(string(UserRoleKey)); ok {
		if role, ok := v.(types.UserRole); ok {
			return role
		}
	}
	return types.RoleUser
}
