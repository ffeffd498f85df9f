// internal/payments/intent_test.go
package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"

	"voluntra-backend/internal/common/config"
	stderrors "voluntra-backend/internal/common/errors"
	"voluntra-backend/internal/common/logger"
)

type fakeIntentAPI struct {
	params *stripe.PaymentIntentParams
	fail   error
}

func (f *fakeIntentAPI) New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	f.params = params
	if f.fail != nil {
		return nil, f.fail
	}
	return &stripe.PaymentIntent{
		ID:           "pi_123",
		ClientSecret: "pi_123_secret_abc",
	}, nil
}

func testPaymentsConfig() config.PaymentsConfig {
	return config.PaymentsConfig{
		StripeSecretKey: "sk_test_123",
		Currency:        "usd",
		SetupFeeCents:   29900,
	}
}

func TestCreateSetupFeeIntent(t *testing.T) {
	api := &fakeIntentAPI{}
	svc := NewService(testPaymentsConfig(), logger.NewTestLogger(t))
	svc.api = api

	intent, err := svc.CreateSetupFeeIntent(context.Background(), "app-123", "uid-42", "ghana-teaching")
	require.NoError(t, err)
	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, "pi_123_secret_abc", intent.ClientSecret)
	assert.Equal(t, int64(29900), intent.AmountCents)
	assert.Equal(t, "usd", intent.Currency)

	require.NotNil(t, api.params)
	assert.Equal(t, int64(29900), *api.params.Amount)
	assert.Equal(t, "usd", *api.params.Currency)
	assert.Equal(t, "app-123", api.params.Metadata["applicationId"])
	assert.Equal(t, "uid-42", api.params.Metadata["userId"])
	assert.Equal(t, "setup_fee", api.params.Metadata["paymentType"])
}

func TestCreateSetupFeeIntentValidation(t *testing.T) {
	tests := []struct {
		name          string
		applicationID string
		userID        string
		fee           int64
	}{
		{name: "missing application id", userID: "uid-42", fee: 29900},
		{name: "missing user id", applicationID: "app-123", fee: 29900},
		{name: "zero fee", applicationID: "app-123", userID: "uid-42", fee: 0},
		{name: "negative fee", applicationID: "app-123", userID: "uid-42", fee: -100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testPaymentsConfig()
			cfg.SetupFeeCents = tt.fee
			api := &fakeIntentAPI{}
			svc := NewService(cfg, logger.NewTestLogger(t))
			svc.api = api

			_, err := svc.CreateSetupFeeIntent(context.Background(), tt.applicationID, tt.userID, "ghana-teaching")
			require.Error(t, err)
			var stdErr *stderrors.StandardError
			require.True(t, errors.As(err, &stdErr))
			assert.Equal(t, stderrors.ErrCodeRecordInvalid, stdErr.Code)
			assert.Nil(t, api.params)
		})
	}
}

func TestCreateSetupFeeIntentProviderFailure(t *testing.T) {
	api := &fakeIntentAPI{fail: errors.New("stripe: rate limited")}
	svc := NewService(testPaymentsConfig(), logger.NewTestLogger(t))
	svc.api = api

	_, err := svc.CreateSetupFeeIntent(context.Background(), "app-123", "uid-42", "ghana-teaching")
	require.Error(t, err)
	var stdErr *stderrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, stderrors.ErrCodeIntentCreateFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}
