package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/instructor-directory-api/internal/models"
	appErrors "github.com/noah-isme/instructor-directory-api/pkg/errors"
	"github.com/noah-isme/instructor-directory-api/pkg/response"
)

// RequireRoles lets through callers holding one of roles.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return authorize(roles, "")
}

// RequireSelfOrRoles lets through callers holding one of roles, and
// instructors whose franchise number equals the route parameter param.
func RequireSelfOrRoles(param string, roles ...models.Role) gin.HandlerFunc {
	return authorize(roles, param)
}

func authorize(roles []models.Role, selfParam string) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims, ok := Claims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowed[claims.Role]; ok {
			c.Next()
			return
		}

		if selfParam != "" && claims.Role == models.RoleInstructor {
			if target := c.Param(selfParam); target != "" && target == claims.Subject {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
