package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/language-school-api/internal/models"
	appErrors "github.com/noah-isme/language-school-api/pkg/errors"
)

type selectionRepository interface {
	Create(ctx context.Context, selection *models.Selection) error
	ListByEmail(ctx context.Context, email string) ([]models.Selection, error)
	Delete(ctx context.Context, id string) (*models.DeleteResult, error)
}

// CreateSelectionRequest records a student's intent to enroll in a class.
type CreateSelectionRequest struct {
	Email           string  `json:"email" validate:"omitempty,email"`
	ClassID         string  `json:"class_id" validate:"required,uuid"`
	ClassName       string  `json:"name"`
	Image           string  `json:"image"`
	Price           float64 `json:"price" validate:"gte=0"`
	InstructorName  string  `json:"instructor_name"`
	InstructorEmail string  `json:"instructor_email" validate:"omitempty,email"`
}

// SelectionService manages pending class selections.
type SelectionService struct {
	repo      selectionRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSelectionService constructs a SelectionService.
func NewSelectionService(repo selectionRepository, validate *validator.Validate, logger *zap.Logger) *SelectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SelectionService{repo: repo, validator: validate, logger: logger}
}

// Create stores a selection owned by the caller. The email defaults to the caller's and may not name anyone else.
func (s *SelectionService) Create(ctx context.Context, callerEmail string, req CreateSelectionRequest) (*models.InsertResult, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid selection payload")
	}
	if req.Email == "" {
		req.Email = callerEmail
	}
	if req.Email != callerEmail {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}

	selection := &models.Selection{
		Email:           req.Email,
		ClassID:         req.ClassID,
		ClassName:       req.ClassName,
		Image:           req.Image,
		Price:           req.Price,
		InstructorName:  req.InstructorName,
		InstructorEmail: req.InstructorEmail,
	}
	if err := s.repo.Create(ctx, selection); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save selection")
	}
	return &models.InsertResult{Acknowledged: true, InsertedID: selection.ID}, nil
}

// ListByEmail returns the pending selections of a student.
func (s *SelectionService) ListByEmail(ctx context.Context, email string) ([]models.Selection, error) {
	selections, err := s.repo.ListByEmail(ctx, email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list selections")
	}
	return selections, nil
}

// Delete removes a pending selection.
func (s *SelectionService) Delete(ctx context.Context, id string) (*models.DeleteResult, error) {
	if err := validateID(s.validator, id, "selection"); err != nil {
		return nil, err
	}
	result, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete selection")
	}
	return result, nil
}
