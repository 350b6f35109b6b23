package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/language-school-api/internal/middleware"
	"github.com/noah-isme/language-school-api/internal/models"
	appErrors "github.com/noah-isme/language-school-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return nil
	}
	return claims
}

// queryLimit reads the optional limit query value. Missing or malformed values mean no limit.
func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

func invalidPayload(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}
