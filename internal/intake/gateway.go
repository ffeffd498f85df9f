// internal/intake/gateway.go
package intake

import (
	"context"
	"errors"
	"fmt"
	"time"

	stderrors "voluntra-backend/internal/common/errors"
	"voluntra-backend/internal/common/logger"
	"voluntra-backend/internal/common/metrics"
	"voluntra-backend/internal/common/validation"
	"voluntra-backend/internal/models"
)

// releaseTimeout bounds the token release after a failed store write.
const releaseTimeout = 5 * time.Second

var (
	ErrUnauthenticated     = errors.New("UNAUTHENTICATED")
	ErrDuplicateSubmission = errors.New("DUPLICATE_SUBMISSION")
	ErrSubmissionFailed    = errors.New("SUBMISSION_FAILED")
)

// DocumentStore is the write surface of the external document store. The
// gateway uses it exactly once per successful submission.
type DocumentStore interface {
	Create(ctx context.Context, collection string, data map[string]interface{}) (string, error)
}

// Deduper reserves a submission idempotency token. A token that cannot be
// reserved has already been consumed by a previous write attempt.
type Deduper interface {
	Reserve(ctx context.Context, token string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, token string) error
}

// AuditRecorder appends a non-critical audit row for a created record.
type AuditRecorder interface {
	Record(ctx context.Context, eventType, resourceType, resourceID string, details map[string]interface{}) error
}

// GatewayConfig holds the gateway's operational settings.
type GatewayConfig struct {
	Collection     string
	SubmitTimeout  time.Duration
	IdempotencyTTL time.Duration
}

// Gateway assembles the final application record and performs the single
// create against the document store.
type Gateway struct {
	cfg    GatewayConfig
	store  DocumentStore
	dedupe Deduper
	audit  AuditRecorder
	logger logger.Logger
}

// NewGateway creates a submission gateway. dedupe and audit may be nil; the
// gateway then skips idempotency reservation and audit rows respectively.
func NewGateway(cfg GatewayConfig, store DocumentStore, dedupe Deduper, audit AuditRecorder, log logger.Logger) *Gateway {
	if cfg.Collection == "" {
		cfg.Collection = "applications"
	}
	if cfg.SubmitTimeout == 0 {
		cfg.SubmitTimeout = 10 * time.Second
	}
	if cfg.IdempotencyTTL == 0 {
		cfg.IdempotencyTTL = 24 * time.Hour
	}
	return &Gateway{
		cfg:    cfg,
		store:  store,
		dedupe: dedupe,
		audit:  audit,
		logger: log.WithFields(map[string]interface{}{"component": "submission-gateway"}),
	}
}

// SubmitInput carries everything the gateway needs for one submission. The
// idempotency token is generated once per workflow session.
type SubmitInput struct {
	Identity         models.Identity
	ProgramID        string
	DurationWeeks    int
	TargetStartDate  string
	Draft            models.ApplicationDraft
	IdempotencyToken string
}

// Submit writes one application record and returns its store-assigned ID.
// Store failures come back wrapped in ErrSubmissionFailed with the draft
// untouched; the caller keeps the traveler on the Payment step to retry.
func (g *Gateway) Submit(ctx context.Context, input SubmitInput) (string, error) {
	if input.Identity.UID == "" {
		return "", fmt.Errorf("%w: no authenticated identity", ErrUnauthenticated)
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.SubmitTimeout)
	defer cancel()

	record := g.assembleRecord(input)
	if err := validation.ValidateApplicationRecord(record); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}

	if g.dedupe != nil && input.IdempotencyToken != "" {
		reserved, err := g.dedupe.Reserve(ctx, input.IdempotencyToken, g.cfg.IdempotencyTTL)
		if err != nil {
			return "", fmt.Errorf("%w: idempotency reservation failed: %v", ErrSubmissionFailed, err)
		}
		if !reserved {
			return "", fmt.Errorf("%w: token %s already consumed", ErrDuplicateSubmission, input.IdempotencyToken)
		}
	}

	start := time.Now()
	recordID, err := g.store.Create(ctx, g.cfg.Collection, record)
	metrics.SubmissionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		// Free the token so the traveler can retry the same session. The
		// submit deadline may already be what killed the write, so the
		// release runs on its own detached timeout.
		if g.dedupe != nil && input.IdempotencyToken != "" {
			releaseCtx, releaseCancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
			defer releaseCancel()
			if relErr := g.dedupe.Release(releaseCtx, input.IdempotencyToken); relErr != nil {
				g.logger.WithError(relErr).Warn("failed to release idempotency token", map[string]interface{}{
					"token": input.IdempotencyToken,
				})
			}
		}
		metrics.SubmissionsFailed.WithLabelValues(string(stderrors.ErrCodeStoreWriteFailed)).Inc()
		return "", fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}

	metrics.ApplicationsSubmitted.Inc()
	g.logger.Info("application record created", map[string]interface{}{
		"applicationId": recordID,
		"userId":        input.Identity.UID,
		"programId":     input.ProgramID,
		"durationWeeks": input.DurationWeeks,
	})

	// Audit row is non-critical; log and continue on failure.
	if g.audit != nil {
		err := g.audit.Record(ctx, "application_created", "application", recordID, map[string]interface{}{
			"userId":        input.Identity.UID,
			"programId":     input.ProgramID,
			"durationWeeks": input.DurationWeeks,
		})
		if err != nil {
			g.logger.WithError(err).Warn("audit log insert failed", map[string]interface{}{
				"applicationId": recordID,
			})
		}
	}

	return recordID, nil
}

// assembleRecord snapshots the draft into the persisted document shape. The
// store assigns id, createdAt and updatedAt.
func (g *Gateway) assembleRecord(input SubmitInput) map[string]interface{} {
	return map[string]interface{}{
		"userId":          input.Identity.UID,
		"programId":       input.ProgramID,
		"durationWeeks":   input.DurationWeeks,
		"targetStartDate": input.TargetStartDate,
		"paymentStatus":   models.PaymentStatusPendingSetupFee,
		"status":          models.ApplicationStatusSubmitted,
		"personalInfo": map[string]interface{}{
			"firstName": input.Draft.FirstName,
			"lastName":  input.Draft.LastName,
			"email":     input.Identity.Email,
			"phone":     input.Draft.Phone,
		},
		"experience": map[string]interface{}{
			"motivation": input.Draft.Motivation,
			"skills":     input.Draft.Skills,
		},
		"travel": map[string]interface{}{
			"arrivalDate":     input.Draft.ArrivalDate,
			"insuranceAssent": input.Draft.InsuranceAssent,
		},
	}
}
