package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/language-school-api/internal/models"
	"github.com/noah-isme/language-school-api/internal/service"
	appErrors "github.com/noah-isme/language-school-api/pkg/errors"
	"github.com/noah-isme/language-school-api/pkg/response"
)

type enrollmentService interface {
	Pay(ctx context.Context, callerEmail string, sub service.PaymentSubmission) (*models.DeleteResult, error)
	ListEnrollments(ctx context.Context, email string) ([]models.Enrollment, error)
	PaymentHistory(ctx context.Context, email string) ([]models.PaymentHistory, error)
	ExportStatement(ctx context.Context, email, format string) (*service.Statement, error)
}

// EnrollmentHandler exposes payment submission and enrollment history endpoints.
type EnrollmentHandler struct {
	service enrollmentService
}

// NewEnrollmentHandler constructs an EnrollmentHandler.
func NewEnrollmentHandler(svc enrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{service: svc}
}

// Pay godoc
// @Summary Complete enrollment
// @Description Records the payment and turns the selection into an enrollment. Resubmitting a consumed selection is acknowledged with replayed=true.
// @Tags Enrollment
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body service.PaymentSubmission true "Payment submission"
// @Success 200 {object} models.DeleteResult
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Router /payment [post]
func (h *EnrollmentHandler) Pay(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var sub service.PaymentSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		response.Error(c, invalidPayload(err, "invalid payment payload"))
		return
	}
	res, err := h.service.Pay(c.Request.Context(), claims.Email, sub)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// ListEnrollments godoc
// @Summary List enrolled classes
// @Tags Enrollment
// @Security BearerAuth
// @Produce json
// @Param email path string true "Student email"
// @Success 200 {array} models.Enrollment
// @Failure 403 {object} response.ErrorBody
// @Router /enrolledClasses/{email} [get]
func (h *EnrollmentHandler) ListEnrollments(c *gin.Context) {
	items, err := h.service.ListEnrollments(c.Request.Context(), c.Param("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// PaymentHistory godoc
// @Summary List payment history
// @Tags Enrollment
// @Security BearerAuth
// @Produce json
// @Param email path string true "Student email"
// @Success 200 {array} models.PaymentHistory
// @Failure 403 {object} response.ErrorBody
// @Router /payment_history/{email} [get]
func (h *EnrollmentHandler) PaymentHistory(c *gin.Context) {
	items, err := h.service.PaymentHistory(c.Request.Context(), c.Param("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// ExportPaymentHistory godoc
// @Summary Download payment statement
// @Tags Enrollment
// @Security BearerAuth
// @Produce text/csv
// @Produce application/pdf
// @Param email path string true "Student email"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.ErrorBody
// @Router /payment_history/{email}/export [get]
func (h *EnrollmentHandler) ExportPaymentHistory(c *gin.Context) {
	statement, err := h.service.ExportStatement(c.Request.Context(), c.Param("email"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", statement.Filename))
	c.Data(http.StatusOK, statement.ContentType, statement.Data)
}
