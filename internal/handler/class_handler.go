package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/language-school-api/internal/models"
	"github.com/noah-isme/language-school-api/internal/service"
	appErrors "github.com/noah-isme/language-school-api/pkg/errors"
	"github.com/noah-isme/language-school-api/pkg/response"
)

type classService interface {
	List(ctx context.Context, query service.ClassQuery) ([]models.Class, error)
	ListByInstructor(ctx context.Context, email string) ([]models.Class, error)
	Get(ctx context.Context, id string) (*models.Class, error)
	Create(ctx context.Context, req service.CreateClassRequest) (*models.InsertResult, error)
	Update(ctx context.Context, id string, req service.UpdateClassRequest) (*models.UpdateResult, error)
	SetStatus(ctx context.Context, id string, req service.UpdateClassStatusRequest) (*models.UpdateResult, error)
	SetFeedback(ctx context.Context, id string, req service.ClassFeedbackRequest) (*models.UpdateResult, error)
	Delete(ctx context.Context, id string) (*models.DeleteResult, error)
}

// ClassHandler exposes the class catalog endpoints.
type ClassHandler struct {
	service classService
}

// NewClassHandler constructs a ClassHandler.
func NewClassHandler(svc classService) *ClassHandler {
	return &ClassHandler{service: svc}
}

// List godoc
// @Summary List classes
// @Description A positive limit returns the most enrolled classes first
// @Tags Classes
// @Produce json
// @Param limit query int false "Maximum number of classes"
// @Param status query string false "Review status filter"
// @Success 200 {array} models.Class
// @Failure 400 {object} response.ErrorBody
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	query := service.ClassQuery{Status: models.ClassStatus(c.Query("status")), Limit: queryLimit(c)}
	classes, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, classes)
}

// Create godoc
// @Summary Add class
// @Description Instructors publish a class; it starts in pending review
// @Tags Classes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body service.CreateClassRequest true "Class"
// @Success 200 {object} models.InsertResult
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Router /add_class [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var req service.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid class payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if req.InstructorEmail == "" {
		req.InstructorEmail = claims.Email
	}
	if req.InstructorEmail != claims.Email {
		response.Error(c, appErrors.ErrForbidden)
		return
	}
	if req.InstructorName == "" {
		req.InstructorName = claims.Name
	}

	res, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// ListByInstructor godoc
// @Summary List instructor classes
// @Tags Classes
// @Security BearerAuth
// @Produce json
// @Param email path string true "Instructor email"
// @Success 200 {array} models.Class
// @Failure 403 {object} response.ErrorBody
// @Router /classes/{email} [get]
func (h *ClassHandler) ListByInstructor(c *gin.Context) {
	classes, err := h.service.ListByInstructor(c.Request.Context(), c.Param("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, classes)
}

// Get godoc
// @Summary Get class
// @Description Returns the class or null when none exists
// @Tags Classes
// @Security BearerAuth
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} models.Class
// @Failure 400 {object} response.ErrorBody
// @Router /myClasses/{id} [get]
func (h *ClassHandler) Get(c *gin.Context) {
	class, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, class)
}

// SetStatus godoc
// @Summary Review class
// @Tags Classes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body service.UpdateClassStatusRequest true "Status"
// @Success 200 {object} models.UpdateResult
// @Failure 400 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Router /classes/{id} [patch]
func (h *ClassHandler) SetStatus(c *gin.Context) {
	var req service.UpdateClassStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid class status"))
		return
	}
	res, err := h.service.SetStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// SetFeedback godoc
// @Summary Send class feedback
// @Tags Classes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body service.ClassFeedbackRequest true "Feedback"
// @Success 200 {object} models.UpdateResult
// @Failure 400 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Router /feedback/classes/{id} [patch]
func (h *ClassHandler) SetFeedback(c *gin.Context) {
	var req service.ClassFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid feedback"))
		return
	}
	res, err := h.service.SetFeedback(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// Update godoc
// @Summary Update class
// @Tags Classes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body service.UpdateClassRequest true "Class fields"
// @Success 200 {object} models.UpdateResult
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Router /classes/{id} [put]
func (h *ClassHandler) Update(c *gin.Context) {
	var req service.UpdateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid class payload"))
		return
	}
	res, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// Delete godoc
// @Summary Delete class
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} models.DeleteResult
// @Failure 400 {object} response.ErrorBody
// @Router /classes/{id} [delete]
func (h *ClassHandler) Delete(c *gin.Context) {
	res, err := h.service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}
