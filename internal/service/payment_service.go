package service

import (
	"context"
	"math"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/language-school-api/pkg/errors"
	"github.com/noah-isme/language-school-api/pkg/payment"
)

// PaymentIntentRequest asks for a card payment of the given class price.
type PaymentIntentRequest struct {
	Price float64 `json:"price" validate:"gt=0"`
	Email string  `json:"email" validate:"omitempty,email"`
}

// PaymentIntentResponse returns the secret the client confirms the payment with.
type PaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// PaymentService creates payment intents with the configured provider.
type PaymentService struct {
	gateway   payment.Gateway
	currency  string
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPaymentService constructs a PaymentService. A nil gateway makes every request fail as unavailable.
func NewPaymentService(gateway payment.Gateway, currency string, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if currency == "" {
		currency = "usd"
	}
	return &PaymentService{gateway: gateway, currency: currency, metrics: metrics, validator: validate, logger: logger}
}

// CreateIntent converts the price to cents and creates a card payment intent.
func (s *PaymentService) CreateIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "price must be greater than zero")
	}
	if s.gateway == nil {
		s.metrics.RecordPaymentIntent(OutcomeFailed)
		return nil, appErrors.Clone(appErrors.ErrPaymentUnavailable, "")
	}

	amount := int64(math.Round(req.Price * 100))
	intent, err := s.gateway.CreateIntent(ctx, payment.IntentRequest{AmountCents: amount, Currency: s.currency, Email: req.Email})
	if err != nil {
		s.metrics.RecordPaymentIntent(OutcomeFailed)
		s.logger.Warn("payment intent failed", zap.Int64("amount", amount), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrPaymentUnavailable.Code, appErrors.ErrPaymentUnavailable.Status, "failed to create payment intent")
	}

	s.metrics.RecordPaymentIntent(OutcomeSuccess)
	s.logger.Debug("payment intent created", zap.String("intent_id", intent.ID), zap.Int64("amount", amount))
	return &PaymentIntentResponse{ClientSecret: intent.ClientSecret}, nil
}
