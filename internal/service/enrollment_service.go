package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/language-school-api/internal/models"
	"github.com/noah-isme/language-school-api/internal/repository"
	appErrors "github.com/noah-isme/language-school-api/pkg/errors"
	"github.com/noah-isme/language-school-api/pkg/export"
)

type enrollmentRepository interface {
	Commit(ctx context.Context, commit *models.EnrollmentCommit) (*models.DeleteResult, error)
	ListByEmail(ctx context.Context, email string) ([]models.Enrollment, error)
	ListPayments(ctx context.Context, email string) ([]models.PaymentHistory, error)
}

// PaymentRecord is the payment history entry submitted after the provider confirmed the charge.
type PaymentRecord struct {
	Email         string  `json:"email" validate:"omitempty,email"`
	TransactionID string  `json:"transaction_id" validate:"required"`
	Amount        float64 `json:"amount" validate:"gte=0"`
	Currency      string  `json:"currency" validate:"omitempty,len=3"`
	ClassID       string  `json:"class_id" validate:"omitempty,uuid"`
	ClassName     string  `json:"class_name"`
}

// ClassUpdate carries the new seat and enrollment counters of the purchased class.
type ClassUpdate struct {
	ClassID  string `json:"class_id" validate:"required,uuid"`
	Seats    int    `json:"seats" validate:"gte=0"`
	Enrolled int    `json:"enrolled" validate:"gte=0"`
}

// EnrollmentRecord is the enrollment entry created by the payment.
type EnrollmentRecord struct {
	Email           string `json:"email" validate:"omitempty,email"`
	InstructorEmail string `json:"instructor_email" validate:"required,email"`
	ClassID         string `json:"class_id" validate:"omitempty,uuid"`
	ClassName       string `json:"class_name"`
}

// PaymentSubmission moves a selection into a paid enrollment.
type PaymentSubmission struct {
	Payment     PaymentRecord    `json:"payment"`
	ClassUpdate ClassUpdate      `json:"class_update"`
	Enrollment  EnrollmentRecord `json:"enrollment"`
	SelectionID string           `json:"selection_id" validate:"required,uuid"`
}

// Statement is a rendered payment history document.
type Statement struct {
	Filename    string
	ContentType string
	Data        []byte
}

// EnrollmentService runs the enrollment workflow and serves enrollment and payment history.
type EnrollmentService struct {
	repo      enrollmentRepository
	cache     *CacheService
	metrics   *MetricsService
	currency  string
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService. cache and metrics may be nil.
func NewEnrollmentService(repo enrollmentRepository, cache *CacheService, metrics *MetricsService, currency string, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if currency == "" {
		currency = "usd"
	}
	return &EnrollmentService{repo: repo, cache: cache, metrics: metrics, currency: strings.ToLower(currency), validator: validate, logger: logger}
}

// Pay records the payment, updates the class counters, creates the enrollment, refreshes the
// instructor student count and consumes the selection as one unit. Resubmitting an already
// consumed selection returns a replayed result without writing anything.
func (s *EnrollmentService) Pay(ctx context.Context, callerEmail string, sub PaymentSubmission) (*models.DeleteResult, error) {
	if err := s.validator.Struct(sub); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	for _, email := range []*string{&sub.Payment.Email, &sub.Enrollment.Email} {
		if *email == "" {
			*email = callerEmail
		}
		if *email != callerEmail {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "")
		}
	}

	commit := buildCommit(sub, s.currency)

	start := time.Now()
	result, err := s.repo.Commit(ctx, commit)
	s.metrics.ObserveDBQuery("enrollment_commit", time.Since(start))
	if err != nil {
		s.metrics.RecordEnrollment(OutcomeFailed)
		switch {
		case errors.Is(err, repository.ErrSelectionNotFound):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "selection not found")
		case errors.Is(err, repository.ErrClassNotFound):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		case errors.Is(err, repository.ErrSelectionNotOwned):
			return nil, appErrors.Clone(appErrors.ErrForbidden, "")
		case errors.Is(err, repository.ErrPaymentRecorded):
			return nil, appErrors.Clone(appErrors.ErrConflict, "payment already recorded")
		}
		s.logger.Error("enrollment workflow failed", zap.String("selection_id", sub.SelectionID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to complete enrollment")
	}

	if result.Replayed {
		s.metrics.RecordEnrollment(OutcomeReplayed)
		s.logger.Info("enrollment replay ignored", zap.String("selection_id", sub.SelectionID))
		return result, nil
	}

	s.metrics.RecordEnrollment(OutcomeSuccess)
	s.logger.Info("enrollment completed",
		zap.String("selection_id", sub.SelectionID),
		zap.String("class_id", commit.Class.ClassID),
		zap.String("email", callerEmail),
	)
	s.cache.Invalidate(ctx, classCachePrefix, instructorCachePrefix)
	return result, nil
}

// ListEnrollments returns a student's enrollments, newest first.
func (s *EnrollmentService) ListEnrollments(ctx context.Context, email string) ([]models.Enrollment, error) {
	enrollments, err := s.repo.ListByEmail(ctx, email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return enrollments, nil
}

// PaymentHistory returns a student's payments, newest first.
func (s *EnrollmentService) PaymentHistory(ctx context.Context, email string) ([]models.PaymentHistory, error) {
	payments, err := s.repo.ListPayments(ctx, email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payment history")
	}
	return payments, nil
}

// ExportStatement renders the payment history of a student as CSV or PDF.
func (s *EnrollmentService) ExportStatement(ctx context.Context, email, format string) (*Statement, error) {
	renderer, err := export.NewRenderer(format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unsupported export format")
	}

	payments, err := s.PaymentHistory(ctx, email)
	if err != nil {
		return nil, err
	}

	data, err := renderer.Render(statementDataset(email, payments))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render statement")
	}
	return &Statement{
		Filename:    fmt.Sprintf("payment-history-%s.%s", time.Now().UTC().Format("20060102"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        data,
	}, nil
}

func buildCommit(sub PaymentSubmission, defaultCurrency string) *models.EnrollmentCommit {
	currency := strings.ToLower(sub.Payment.Currency)
	if currency == "" {
		currency = defaultCurrency
	}
	classID := sub.ClassUpdate.ClassID
	paymentClassID := sub.Payment.ClassID
	if paymentClassID == "" {
		paymentClassID = classID
	}
	enrollmentClassID := sub.Enrollment.ClassID
	if enrollmentClassID == "" {
		enrollmentClassID = classID
	}
	enrollmentClassName := sub.Enrollment.ClassName
	if enrollmentClassName == "" {
		enrollmentClassName = sub.Payment.ClassName
	}

	return &models.EnrollmentCommit{
		SelectionID: sub.SelectionID,
		Payment: models.PaymentHistory{
			Email:         sub.Payment.Email,
			TransactionID: sub.Payment.TransactionID,
			Amount:        sub.Payment.Amount,
			Currency:      currency,
			ClassID:       paymentClassID,
			ClassName:     sub.Payment.ClassName,
		},
		Class: models.ClassSeatUpdate{
			ClassID:  classID,
			Seats:    sub.ClassUpdate.Seats,
			Enrolled: sub.ClassUpdate.Enrolled,
		},
		Enrollment: models.Enrollment{
			Email:           sub.Enrollment.Email,
			InstructorEmail: sub.Enrollment.InstructorEmail,
			ClassID:         enrollmentClassID,
			ClassName:       enrollmentClassName,
		},
	}
}

func statementDataset(email string, payments []models.PaymentHistory) export.Dataset {
	headers := []string{"Date", "Class", "Transaction", "Amount", "Currency"}
	rows := make([]map[string]string, 0, len(payments))
	totals := map[string]float64{}
	var currencies []string
	for _, p := range payments {
		rows = append(rows, map[string]string{
			"Date":        p.CreatedAt.UTC().Format("2006-01-02 15:04"),
			"Class":       p.ClassName,
			"Transaction": p.TransactionID,
			"Amount":      fmt.Sprintf("%.2f", p.Amount),
			"Currency":    strings.ToUpper(p.Currency),
		})
		if _, seen := totals[p.Currency]; !seen {
			currencies = append(currencies, p.Currency)
		}
		totals[p.Currency] += p.Amount
	}

	summary := []string{fmt.Sprintf("Payments: %d", len(payments))}
	for _, cur := range currencies {
		summary = append(summary, fmt.Sprintf("Total %s: %.2f", strings.ToUpper(cur), totals[cur]))
	}

	return export.Dataset{
		Title:   "Payment history for " + email,
		Headers: headers,
		Rows:    rows,
		Summary: summary,
	}
}
