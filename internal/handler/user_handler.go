package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/language-school-api/internal/models"
	"github.com/noah-isme/language-school-api/internal/service"
	"github.com/noah-isme/language-school-api/pkg/response"
)

type userService interface {
	Upsert(ctx context.Context, req service.UpsertUserRequest) (*models.UpdateResult, error)
	CreateIfAbsent(ctx context.Context, req service.UpsertUserRequest) (*models.InsertResult, bool, error)
	Get(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	ListInstructors(ctx context.Context, limit int) ([]models.User, error)
	SetRole(ctx context.Context, email string, req service.UpdateRoleRequest) (*models.UpdateResult, error)
	RoleStatus(ctx context.Context, email string) (*models.RoleStatus, error)
}

// UserHandler exposes student, instructor and user management endpoints.
type UserHandler struct {
	service userService
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(svc userService) *UserHandler {
	return &UserHandler{service: svc}
}

// UpsertStudent godoc
// @Summary Upsert student
// @Description Insert the user or refresh the profile of the existing record with the same email
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.UpsertUserRequest true "User profile"
// @Success 200 {object} models.UpdateResult
// @Failure 400 {object} response.ErrorBody
// @Router /students [put]
func (h *UserHandler) UpsertStudent(c *gin.Context) {
	var req service.UpsertUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid user payload"))
		return
	}
	res, err := h.service.Upsert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// CreateStudent godoc
// @Summary Register student
// @Description Store a new user unless the email is already registered
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.UpsertUserRequest true "User profile"
// @Success 200 {object} models.InsertResult
// @Failure 400 {object} response.ErrorBody
// @Router /students [post]
func (h *UserHandler) CreateStudent(c *gin.Context) {
	var req service.UpsertUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid user payload"))
		return
	}
	res, existed, err := h.service.CreateIfAbsent(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if existed {
		response.Message(c, "user already exists")
		return
	}
	response.OK(c, res)
}

// GetStudent godoc
// @Summary Get student
// @Description Returns the user record or null when none exists
// @Tags Students
// @Produce json
// @Param email path string true "User email"
// @Success 200 {object} models.User
// @Router /students/{email} [get]
func (h *UserHandler) GetStudent(c *gin.Context) {
	user, err := h.service.Get(c.Request.Context(), c.Param("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}

// ListInstructors godoc
// @Summary List instructors
// @Description A positive limit returns the instructors with the most students first
// @Tags Instructors
// @Produce json
// @Param limit query int false "Maximum number of instructors"
// @Success 200 {array} models.User
// @Router /instructors [get]
func (h *UserHandler) ListInstructors(c *gin.Context) {
	users, err := h.service.ListInstructors(c.Request.Context(), queryLimit(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, users)
}

// ListUsers godoc
// @Summary List users
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.User
// @Failure 401 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, users)
}

// SetRole godoc
// @Summary Set user role
// @Tags Users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param email path string true "User email"
// @Param payload body service.UpdateRoleRequest true "Role"
// @Success 200 {object} models.UpdateResult
// @Failure 400 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Router /users/{email} [patch]
func (h *UserHandler) SetRole(c *gin.Context) {
	var req service.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid role"))
		return
	}
	res, err := h.service.SetRole(c.Request.Context(), c.Param("email"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// RoleStatus godoc
// @Summary Check caller roles
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Param email path string true "User email"
// @Success 200 {object} models.RoleStatus
// @Failure 403 {object} response.ErrorBody
// @Router /users/role/{email} [get]
func (h *UserHandler) RoleStatus(c *gin.Context) {
	status, err := h.service.RoleStatus(c.Request.Context(), c.Param("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, status)
}
