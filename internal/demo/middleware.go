package demo

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Middleware blocks write operations in demo mode so a public demo
// instance cannot be vandalized. Read-only operations (GET) are always
// allowed, and the auth endpoints stay open so visitors can log in.
type Middleware struct {
	enabled bool
}

// NewMiddleware creates a demo mode middleware.
func NewMiddleware(enabled bool) *Middleware {
	return &Middleware{enabled: enabled}
}

// IsEnabled returns whether demo mode is active.
func (m *Middleware) IsEnabled() bool {
	return m.enabled
}

// Handler returns a Gin middleware that blocks write operations.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.enabled {
			c.Next()
			return
		}

		// Read-only requests always pass
		if c.Request.Method == http.MethodGet {
			c.Next()
			return
		}

		// Allow HEAD and OPTIONS for CORS/preflight
		if c.Request.Method == http.MethodHead || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		if m.isAllowedPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		m.respondBlocked(c)
	}
}

// isAllowedPath checks if a path is allowed for write operations in demo mode.
// Intentionally restrictive - only the login flow passes through.
func (m *Middleware) isAllowedPath(path string) bool {
	allowedPaths := []string{
		"/api/auth/login",
		"/api/auth/logout",
	}

	for _, allowed := range allowedPaths {
		if strings.HasPrefix(path, allowed) {
			return true
		}
	}
	return false
}

// respondBlocked sends a 403 response.
func (m *Middleware) respondBlocked(c *gin.Context) {
	c.JSON(http.StatusForbidden, gin.H{
		"error":     "This action is disabled in demo mode",
		"code":      "Demo.WriteBlocked",
		"demo_mode": true,
	})
	c.Abort()
}
