package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
)

// ErrNotConfigured is returned when no provider secret key is set.
var ErrNotConfigured = errors.New("payment provider not configured")

// IntentRequest describes a card payment to be confirmed by the client.
type IntentRequest struct {
	AmountCents int64
	Currency    string
	Email       string
}

// Intent is the provider-side payment intent.
type Intent struct {
	ID           string
	ClientSecret string
}

// Gateway creates payment intents with an external provider.
type Gateway interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
}

type intentCreator func(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)

// StripeGateway implements Gateway on top of the Stripe API.
type StripeGateway struct {
	create intentCreator
}

// NewStripeGateway configures the Stripe API key and returns the gateway.
func NewStripeGateway(secretKey string) (*StripeGateway, error) {
	if strings.TrimSpace(secretKey) == "" {
		return nil, ErrNotConfigured
	}
	stripe.Key = secretKey
	return &StripeGateway{create: paymentintent.New}, nil
}

// CreateIntent creates a card-only payment intent for the amount in the smallest currency unit.
func (g *StripeGateway) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	if req.AmountCents <= 0 {
		return nil, fmt.Errorf("payment amount must be positive")
	}
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.AmountCents),
		Currency:           stripe.String(strings.ToLower(req.Currency)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	if req.Email != "" {
		params.ReceiptEmail = stripe.String(req.Email)
	}

	pi, err := g.create(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}
