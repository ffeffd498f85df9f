// internal/payments/webhook.go
package payments

import (
	"context"
	"encoding/json"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	stderrors "voluntra-backend/internal/common/errors"
	"voluntra-backend/internal/common/logger"
	"voluntra-backend/internal/common/metrics"
	"voluntra-backend/internal/models"
)

const applicationsCollection = "applications"

// ApplicationUpdater is the write surface the webhook needs on the document
// store.
type ApplicationUpdater interface {
	Update(ctx context.Context, collection, id string, fields map[string]interface{}) error
}

// AuditRecorder mirrors the intake gateway's audit hook.
type AuditRecorder interface {
	Record(ctx context.Context, eventType, resourceType, resourceID string, details map[string]interface{}) error
}

// WebhookProcessor verifies provider events and moves application payment
// status forward.
type WebhookProcessor struct {
	secret string
	store  ApplicationUpdater
	audit  AuditRecorder
	logger logger.Logger
}

func NewWebhookProcessor(secret string, store ApplicationUpdater, audit AuditRecorder, log logger.Logger) *WebhookProcessor {
	return &WebhookProcessor{
		secret: secret,
		store:  store,
		audit:  audit,
		logger: log.WithFields(map[string]interface{}{"component": "payments-webhook"}),
	}
}

// Process verifies the signature and applies one event. Unhandled event types
// are acknowledged without action so the provider stops retrying them.
func (p *WebhookProcessor) Process(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, p.secret)
	if err != nil {
		return &stderrors.StandardError{
			Code:      stderrors.ErrCodeWebhookInvalid,
			Message:   "Webhook signature verification failed",
			Details:   err.Error(),
			Retryable: false,
		}
	}
	metrics.WebhookEvents.WithLabelValues(string(event.Type)).Inc()

	switch event.Type {
	case "payment_intent.succeeded":
		return p.applyIntentOutcome(ctx, event, models.PaymentStatusPaid, "payment_succeeded")
	case "payment_intent.payment_failed":
		return p.applyIntentOutcome(ctx, event, models.PaymentStatusFailed, "payment_failed")
	default:
		p.logger.Debug("ignoring webhook event", map[string]interface{}{"eventType": event.Type})
		return nil
	}
}

func (p *WebhookProcessor) applyIntentOutcome(ctx context.Context, event stripe.Event, paymentStatus, auditEvent string) error {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return &stderrors.StandardError{
			Code:      stderrors.ErrCodeWebhookInvalid,
			Message:   "Webhook payload could not be parsed",
			Details:   err.Error(),
			Retryable: false,
		}
	}

	applicationID := intent.Metadata["applicationId"]
	if applicationID == "" {
		// Not one of ours; acknowledge and move on.
		p.logger.Warn("payment intent without applicationId metadata", map[string]interface{}{
			"intentId":  intent.ID,
			"eventType": event.Type,
		})
		return nil
	}

	err := p.store.Update(ctx, applicationsCollection, applicationID, map[string]interface{}{
		"paymentStatus": paymentStatus,
	})
	if err != nil {
		p.logger.Error("failed to update payment status", map[string]interface{}{
			"error":         err,
			"applicationId": applicationID,
			"paymentStatus": paymentStatus,
		})
		return err
	}

	p.logger.Info("payment status updated", map[string]interface{}{
		"applicationId": applicationID,
		"paymentStatus": paymentStatus,
		"intentId":      intent.ID,
	})

	if p.audit != nil {
		err := p.audit.Record(ctx, auditEvent, "application", applicationID, map[string]interface{}{
			"intentId":    intent.ID,
			"amountCents": intent.Amount,
		})
		if err != nil {
			p.logger.Warn("audit log insert failed", map[string]interface{}{
				"error":         err,
				"applicationId": applicationID,
			})
		}
	}
	return nil
}
