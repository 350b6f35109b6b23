package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/language-school-api/internal/models"
	appErrors "github.com/noah-isme/language-school-api/pkg/errors"
	"github.com/noah-isme/language-school-api/pkg/response"
)

// RoleChecker authorizes an identity against a stored role.
type RoleChecker interface {
	Check(ctx context.Context, email string, role models.UserRole) error
}

// EmailSource extracts the email a route is scoped to.
type EmailSource func(c *gin.Context) string

// FromParam reads the scoped email from a path parameter.
func FromParam(name string) EmailSource {
	return func(c *gin.Context) string { return c.Param(name) }
}

// FromQuery reads the scoped email from a query parameter.
func FromQuery(name string) EmailSource {
	return func(c *gin.Context) string { return c.Query(name) }
}

// RequireRole allows the request only when the caller's stored role equals role. Must follow JWT.
func RequireRole(guard RoleChecker, role models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			response.Abort(c, appErrors.ErrUnauthorized)
			return
		}
		if err := guard.Check(c.Request.Context(), claims.Email, role); err != nil {
			response.Abort(c, err)
			return
		}
		c.Next()
	}
}

// RequireSelf allows the request only when the caller's email equals the scoped email. Must follow JWT.
func RequireSelf(source EmailSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			response.Abort(c, appErrors.ErrUnauthorized)
			return
		}
		if target := source(c); target == "" || target != claims.Email {
			response.Abort(c, appErrors.ErrForbidden)
			return
		}
		c.Next()
	}
}
