// internal/payments/intent.go

// Package payments creates the setup fee payment intent and processes the
// provider's webhook events against application records.
package payments

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"

	"voluntra-backend/internal/common/config"
	stderrors "voluntra-backend/internal/common/errors"
	"voluntra-backend/internal/common/logger"
)

// intentAPI is the provider call behind intent creation, replaceable in
// tests.
type intentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type stripeIntentAPI struct{}

func (stripeIntentAPI) New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	return paymentintent.New(params)
}

// Service creates payment intents for the application setup fee.
type Service struct {
	cfg    config.PaymentsConfig
	api    intentAPI
	logger logger.Logger
}

func NewService(cfg config.PaymentsConfig, log logger.Logger) *Service {
	stripe.Key = cfg.StripeSecretKey
	return &Service{
		cfg:    cfg,
		api:    stripeIntentAPI{},
		logger: log.WithFields(map[string]interface{}{"component": "payments"}),
	}
}

// Intent is the client-facing result of creating a payment intent.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	AmountCents  int64  `json:"amountCents"`
	Currency     string `json:"currency"`
}

// CreateSetupFeeIntent opens a payment intent for the fixed setup fee of one
// application. The metadata ties the provider's events back to the record.
func (s *Service) CreateSetupFeeIntent(ctx context.Context, applicationID, userID, programID string) (Intent, error) {
	if applicationID == "" || userID == "" {
		return Intent{}, stderrors.NewRecordInvalidError("applicationId and userId are required")
	}
	amount := s.cfg.SetupFeeCents
	if amount <= 0 {
		return Intent{}, stderrors.NewRecordInvalidError(fmt.Sprintf("setup fee must be positive, got %d", amount))
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(s.cfg.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("applicationId", applicationID)
	params.AddMetadata("userId", userID)
	params.AddMetadata("programId", programID)
	params.AddMetadata("paymentType", "setup_fee")

	pi, err := s.api.New(params)
	if err != nil {
		s.logger.Error("payment intent creation failed", map[string]interface{}{
			"error":         err,
			"applicationId": applicationID,
		})
		return Intent{}, stderrors.NewIntentCreateFailedError(err)
	}

	s.logger.Info("payment intent created", map[string]interface{}{
		"intentId":      pi.ID,
		"applicationId": applicationID,
		"amountCents":   amount,
	})
	return Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		AmountCents:  amount,
		Currency:     s.cfg.Currency,
	}, nil
}
