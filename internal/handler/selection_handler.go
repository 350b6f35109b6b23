package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/language-school-api/internal/models"
	"github.com/noah-isme/language-school-api/internal/service"
	appErrors "github.com/noah-isme/language-school-api/pkg/errors"
	"github.com/noah-isme/language-school-api/pkg/response"
)

type selectionService interface {
	Create(ctx context.Context, callerEmail string, req service.CreateSelectionRequest) (*models.InsertResult, error)
	ListByEmail(ctx context.Context, email string) ([]models.Selection, error)
	Delete(ctx context.Context, id string) (*models.DeleteResult, error)
}

// SelectionHandler exposes pending class selection endpoints.
type SelectionHandler struct {
	service selectionService
}

// NewSelectionHandler constructs a SelectionHandler.
func NewSelectionHandler(svc selectionService) *SelectionHandler {
	return &SelectionHandler{service: svc}
}

// Create godoc
// @Summary Select class
// @Tags Selections
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body service.CreateSelectionRequest true "Selection"
// @Success 200 {object} models.InsertResult
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Router /select_classes [post]
func (h *SelectionHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CreateSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid selection payload"))
		return
	}
	res, err := h.service.Create(c.Request.Context(), claims.Email, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// List godoc
// @Summary List selected classes
// @Tags Selections
// @Security BearerAuth
// @Produce json
// @Param email path string true "Student email"
// @Success 200 {array} models.Selection
// @Failure 403 {object} response.ErrorBody
// @Router /selectedItems/{email} [get]
func (h *SelectionHandler) List(c *gin.Context) {
	items, err := h.service.ListByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// Delete godoc
// @Summary Remove selected class
// @Tags Selections
// @Produce json
// @Param id path string true "Selection ID"
// @Success 200 {object} models.DeleteResult
// @Failure 400 {object} response.ErrorBody
// @Router /selectedItems/{id} [delete]
func (h *SelectionHandler) Delete(c *gin.Context) {
	res, err := h.service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}
