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

type classRepository interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.Class, error)
	FindByID(ctx context.Context, id string) (*models.Class, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) (*models.UpdateResult, error)
	UpdateStatus(ctx context.Context, id string, status models.ClassStatus) (*models.UpdateResult, error)
	UpdateFeedback(ctx context.Context, id, feedback string) (*models.UpdateResult, error)
	Delete(ctx context.Context, id string) (*models.DeleteResult, error)
}

// ClassQuery captures the public catalog listing parameters.
type ClassQuery struct {
	Status models.ClassStatus `form:"status" validate:"omitempty,oneof=pending approved denied"`
	Limit  int                `form:"limit"`
}

// CreateClassRequest is submitted by an instructor to publish a class.
type CreateClassRequest struct {
	Name            string  `json:"name" validate:"required,max=255"`
	Image           string  `json:"image" validate:"omitempty,url"`
	InstructorName  string  `json:"instructor_name"`
	InstructorEmail string  `json:"instructor_email" validate:"required,email"`
	Seats           int     `json:"seats" validate:"gte=0"`
	Price           float64 `json:"price" validate:"gte=0"`
}

// UpdateClassRequest overwrites the editable class fields.
type UpdateClassRequest struct {
	Name  string  `json:"name" validate:"required,max=255"`
	Image string  `json:"image" validate:"omitempty,url"`
	Seats int     `json:"seats" validate:"gte=0"`
	Price float64 `json:"price" validate:"gte=0"`
}

// UpdateClassStatusRequest carries the admin review decision.
type UpdateClassStatusRequest struct {
	Status models.ClassStatus `json:"status" validate:"required,oneof=pending approved denied"`
}

// ClassFeedbackRequest carries admin feedback for an instructor.
type ClassFeedbackRequest struct {
	Feedback string `json:"feedback" validate:"required"`
}

// ClassService coordinates class catalog operations.
type ClassService struct {
	repo      classRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs a ClassService. cache may be nil.
func NewClassService(repo classRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ClassService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns the public catalog. A positive limit returns the most enrolled classes first.
func (s *ClassService) List(ctx context.Context, query ClassQuery) ([]models.Class, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class query")
	}
	if query.Limit < 0 {
		query.Limit = 0
	}

	filter := models.ClassFilter{Status: query.Status, Limit: query.Limit}
	classes, err := readThrough(ctx, s.cache, classListKey(string(query.Status), query.Limit), func(ctx context.Context) ([]models.Class, error) {
		return s.repo.List(ctx, filter)
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return classes, nil
}

// ListByInstructor returns every class owned by the instructor.
func (s *ClassService) ListByInstructor(ctx context.Context, email string) ([]models.Class, error) {
	classes, err := s.repo.List(ctx, models.ClassFilter{InstructorEmail: email})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list instructor classes")
	}
	return classes, nil
}

// Get returns a class by id, or nil when none is stored.
func (s *ClassService) Get(ctx context.Context, id string) (*models.Class, error) {
	if err := validateID(s.validator, id, "class"); err != nil {
		return nil, err
	}
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

// Create stores a new class in pending review.
func (s *ClassService) Create(ctx context.Context, req CreateClassRequest) (*models.InsertResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}

	class := &models.Class{
		Name:            req.Name,
		Image:           req.Image,
		InstructorName:  req.InstructorName,
		InstructorEmail: req.InstructorEmail,
		Seats:           req.Seats,
		Price:           req.Price,
		Status:          models.ClassStatusPending,
	}
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}
	s.logger.Info("class created", zap.String("class_id", class.ID), zap.String("instructor", class.InstructorEmail))
	s.invalidate(ctx)
	return &models.InsertResult{Acknowledged: true, InsertedID: class.ID}, nil
}

// Update overwrites the editable fields of a class.
func (s *ClassService) Update(ctx context.Context, id string, req UpdateClassRequest) (*models.UpdateResult, error) {
	if err := validateID(s.validator, id, "class"); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}

	result, err := s.repo.Update(ctx, &models.Class{ID: id, Name: req.Name, Image: req.Image, Seats: req.Seats, Price: req.Price})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class")
	}
	s.invalidate(ctx)
	return result, nil
}

// SetStatus records the admin review decision for a class.
func (s *ClassService) SetStatus(ctx context.Context, id string, req UpdateClassStatusRequest) (*models.UpdateResult, error) {
	if err := validateID(s.validator, id, "class"); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class status")
	}

	result, err := s.repo.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class status")
	}
	s.invalidate(ctx)
	return result, nil
}

// SetFeedback stores admin feedback for a class.
func (s *ClassService) SetFeedback(ctx context.Context, id string, req ClassFeedbackRequest) (*models.UpdateResult, error) {
	if err := validateID(s.validator, id, "class"); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid feedback")
	}

	result, err := s.repo.UpdateFeedback(ctx, id, req.Feedback)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class feedback")
	}
	s.invalidate(ctx)
	return result, nil
}

// Delete removes a class.
func (s *ClassService) Delete(ctx context.Context, id string) (*models.DeleteResult, error) {
	if err := validateID(s.validator, id, "class"); err != nil {
		return nil, err
	}
	result, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete class")
	}
	s.invalidate(ctx)
	return result, nil
}

func (s *ClassService) invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx, classCachePrefix)
}
