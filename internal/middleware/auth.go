package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"kpiflow/internal/constants"
	apierrors "kpiflow/internal/errors"
)

// RequireAuth checks if the user is authenticated via session
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		email := session.Get(constants.ContextKeyUserEmail)
		if email == nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		// Store identity in context for easy access in handlers
		c.Set(constants.ContextKeyUserEmail, email)
		if role := session.Get(constants.ContextKeyUserRole); role != nil {
			c.Set(constants.ContextKeyUserRole, role)
		}
		if name := session.Get(constants.ContextKeyUserName); name != nil {
			c.Set(constants.ContextKeyUserName, name)
		}
		c.Next()
	}
}

// GetUserEmail retrieves the current user's email from context
func GetUserEmail(c *gin.Context) (string, bool) {
	v, exists := c.Get(constants.ContextKeyUserEmail)
	if !exists {
		return "", false
	}
	email, ok := v.(string)
	return email, ok && email != ""
}

// GetUserName retrieves the current user's display name from context
func GetUserName(c *gin.Context) string {
	v, exists := c.Get(constants.ContextKeyUserName)
	if !exists {
		return ""
	}
	name, _ := v.(string)
	return name
}

// GetUserRole retrieves the current user's role from context
func GetUserRole(c *gin.Context) string {
	v, exists := c.Get(constants.ContextKeyUserRole)
	if !exists {
		return constants.RoleUser
	}
	role, ok := v.(string)
	if !ok || role == "" {
		return constants.RoleUser
	}
	return role
}

// RequireAdmin allows only the admin role past.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserRole(c) != constants.RoleAdmin {
			apierrors.Forbidden(c, "Admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}
