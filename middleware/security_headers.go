package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/trustimonials/trustimonials-backend/config"
)

// SecurityHeadersMiddleware adds security-related HTTP headers to all
// responses. The X-Frame-Options default is DENY; the embed handlers
// override it to ALLOWALL on their own routes, where universal framing is
// the whole point.
func SecurityHeadersMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if cfg.IsProduction() {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
