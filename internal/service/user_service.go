package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/language-school-api/internal/models"
	appErrors "github.com/noah-isme/language-school-api/pkg/errors"
)

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Upsert(ctx context.Context, user *models.User) (*models.UpdateResult, error)
	Create(ctx context.Context, user *models.User) error
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	UpdateRole(ctx context.Context, email string, role models.UserRole) (*models.UpdateResult, error)
}

// UpsertUserRequest is the profile submitted after sign-in.
type UpsertUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"max=255"`
	PhotoURL string `json:"photo_url" validate:"omitempty,url"`
}

// UpdateRoleRequest sets or clears the elevated role of a user.
type UpdateRoleRequest struct {
	Role models.UserRole `json:"role" validate:"omitempty,oneof=instructor admin"`
}

// UserService handles student, instructor and admin records.
type UserService struct {
	repo      userRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService. cache may be nil.
func NewUserService(repo userRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// Upsert inserts the user or refreshes the profile of the existing record with the same email.
func (s *UserService) Upsert(ctx context.Context, req UpsertUserRequest) (*models.UpdateResult, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}

	user := &models.User{Email: req.Email, Name: req.Name, PhotoURL: req.PhotoURL}
	result, err := s.repo.Upsert(ctx, user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to upsert user")
	}
	s.invalidateInstructors(ctx)
	return result, nil
}

// CreateIfAbsent stores a new user unless the email is already registered. The boolean reports an existing record.
func (s *UserService) CreateIfAbsent(ctx context.Context, req UpsertUserRequest) (*models.InsertResult, bool, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}

	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, true, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing user")
	}

	user := &models.User{Email: req.Email, Name: req.Name, PhotoURL: req.PhotoURL}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}
	return &models.InsertResult{Acknowledged: true, InsertedID: user.ID}, false, nil
}

// Get returns the user with the given email, or nil when none is stored.
func (s *UserService) Get(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

// List returns every stored user.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.List(ctx, models.UserFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	return users, nil
}

// ListInstructors returns instructors; a positive limit returns the top ones by student count.
func (s *UserService) ListInstructors(ctx context.Context, limit int) ([]models.User, error) {
	if limit < 0 {
		limit = 0
	}
	role := models.RoleInstructor
	filter := models.UserFilter{Role: &role, Limit: limit}
	users, err := readThrough(ctx, s.cache, instructorListKey(limit), func(ctx context.Context) ([]models.User, error) {
		return s.repo.List(ctx, filter)
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list instructors")
	}
	return users, nil
}

// SetRole assigns the role of the user identified by email.
func (s *UserService) SetRole(ctx context.Context, email string, req UpdateRoleRequest) (*models.UpdateResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid role")
	}

	result, err := s.repo.UpdateRole(ctx, email, req.Role)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update role")
	}
	s.logger.Info("user role updated", zap.String("email", email), zap.String("role", string(req.Role)))
	s.invalidateInstructors(ctx)
	return result, nil
}

// RoleStatus reports whether the user holds the admin or instructor role. Unknown users hold neither.
func (s *UserService) RoleStatus(ctx context.Context, email string) (*models.RoleStatus, error) {
	user, err := s.Get(ctx, email)
	if err != nil {
		return nil, err
	}
	status := &models.RoleStatus{}
	if user != nil {
		status.Admin = user.Role == models.RoleAdmin
		status.Instructor = user.Role == models.RoleInstructor
	}
	return status, nil
}

func (s *UserService) invalidateInstructors(ctx context.Context) {
	s.cache.Invalidate(ctx, instructorCachePrefix)
}
