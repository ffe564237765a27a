package middleware

import (
	"github.com/gin-gonic/gin"

	apierrors "kpiflow/internal/errors"
	"kpiflow/internal/repository"
)

// RequireManager allows only employees with at least one direct report
// past. The relation is derived from the directory, not from a role flag.
func RequireManager(directory repository.EmployeeDirectory) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, ok := GetUserEmail(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		adj, err := directory.Adjacency(c.Request.Context())
		if err != nil {
			apierrors.InternalError(c, "Failed to load directory")
			c.Abort()
			return
		}
		if !adj.IsManager(email) {
			apierrors.Forbidden(c, "Manager access required")
			c.Abort()
			return
		}
		c.Next()
	}
}
