package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/language-school-api/pkg/errors"
	"github.com/noah-isme/language-school-api/pkg/payment"
)

type mockGateway struct {
	last payment.IntentRequest
	err  error
}

func (m *mockGateway) CreateIntent(ctx context.Context, req payment.IntentRequest) (*payment.Intent, error) {
	m.last = req
	if m.err != nil {
		return nil, m.err
	}
	return &payment.Intent{ID: "pi_1", ClientSecret: "pi_1_secret"}, nil
}

func TestCreateIntentConvertsToCents(t *testing.T) {
	gw := &mockGateway{}
	metrics := NewMetricsService()
	svc := NewPaymentService(gw, "eur", metrics, nil, nil)

	resp, err := svc.CreateIntent(context.Background(), PaymentIntentRequest{Price: 19.99})
	require.NoError(t, err)
	assert.Equal(t, "pi_1_secret", resp.ClientSecret)
	assert.Equal(t, int64(1999), gw.last.AmountCents)
	assert.Equal(t, "eur", gw.last.Currency)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.paymentIntents.WithLabelValues(OutcomeSuccess)))
}

func TestCreateIntentRejectsNonPositivePrice(t *testing.T) {
	svc := NewPaymentService(&mockGateway{}, "", nil, nil, nil)
	_, err := svc.CreateIntent(context.Background(), PaymentIntentRequest{Price: 0})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestCreateIntentWithoutGateway(t *testing.T) {
	svc := NewPaymentService(nil, "", nil, nil, nil)
	_, err := svc.CreateIntent(context.Background(), PaymentIntentRequest{Price: 5})
	assert.True(t, errors.Is(err, appErrors.ErrPaymentUnavailable))
}

func TestCreateIntentProviderFailure(t *testing.T) {
	svc := NewPaymentService(&mockGateway{err: errors.New("timeout")}, "", nil, nil, nil)
	_, err := svc.CreateIntent(context.Background(), PaymentIntentRequest{Price: 5})
	assert.True(t, errors.Is(err, appErrors.ErrPaymentUnavailable))
}
