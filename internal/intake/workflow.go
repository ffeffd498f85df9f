// internal/intake/workflow.go
package intake

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	stderrors "voluntra-backend/internal/common/errors"
	"voluntra-backend/internal/common/logger"
	"voluntra-backend/internal/common/metrics"
	"voluntra-backend/internal/models"
)

// SignInURL is where an unauthenticated traveler is pointed to finish the
// Account step.
const SignInURL = "/login"

// SubmittedURL is the destination after a successful submission.
const SubmittedURL = "/dashboard?application=success"

// Submitter finalizes one application. *Gateway is the production
// implementation.
type Submitter interface {
	Submit(ctx context.Context, input SubmitInput) (string, error)
}

// Params pin the program context a workflow was opened against. They do not
// change for the lifetime of the session.
type Params struct {
	ProgramID       string
	DurationWeeks   int
	TargetStartDate string
}

// Workflow drives a single traveler through the intake steps. The draft lives
// only in this struct; nothing is persisted until Submit succeeds.
type Workflow struct {
	mu sync.Mutex

	params   Params
	identity IdentitySource
	submit   Submitter
	logger   logger.Logger

	step        Step
	draft       models.ApplicationDraft
	stepErr     *stderrors.StandardError
	submitting  bool
	submittedID string

	// One token per session; the gateway reserves it so retries after a
	// store failure reuse it but a double-fire cannot create two records.
	idempotencyToken string
}

// State is an immutable snapshot of the workflow for rendering.
type State struct {
	Ready          bool                     `json:"ready"`
	Step           string                   `json:"step"`
	StepTitle      string                   `json:"stepTitle"`
	SignInRequired bool                     `json:"signInRequired"`
	SignInURL      string                   `json:"signInUrl,omitempty"`
	Error          *stderrors.StandardError `json:"error,omitempty"`
	Submitting     bool                     `json:"submitting"`
	SubmittedID    string                   `json:"submittedId,omitempty"`
	RedirectTo     string                   `json:"redirectTo,omitempty"`
	Draft          models.ApplicationDraft  `json:"draft"`
}

// NewWorkflow opens an intake session at the Account step.
func NewWorkflow(params Params, identity IdentitySource, submit Submitter, log logger.Logger) *Workflow {
	return &Workflow{
		params:           params,
		identity:         identity,
		submit:           submit,
		logger:           log.WithFields(map[string]interface{}{"component": "intake-workflow", "programId": params.ProgramID}),
		step:             StepAccount,
		idempotencyToken: uuid.NewString(),
	}
}

// syncLocked moves a freshly authenticated session past the Account step.
// Callers hold w.mu.
func (w *Workflow) syncLocked() {
	if w.identity.Resolving() {
		return
	}
	if w.step == StepAccount {
		if _, ok := w.identity.Current(); ok {
			w.step = StepPersonalInfo
		}
	}
}

// Params returns the program context the session was opened against.
func (w *Workflow) Params() Params { return w.params }

// Identity returns the session's resolved identity, if any.
func (w *Workflow) Identity() (models.Identity, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.identity.Current()
}

// Authenticate attaches a resolved identity to a session that started
// without one. The Account step auto-advances immediately.
func (w *Workflow) Authenticate(identity models.Identity) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.identity = StaticIdentity{Identity: identity, Present: identity.UID != ""}
	w.syncLocked()
}

// Advance validates the current step and moves forward on success. The
// returned error, if any, is also kept as workflow state until the next
// successful transition.
func (w *Workflow) Advance() *stderrors.StandardError {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.syncLocked()

	if w.identity.Resolving() {
		return nil
	}
	if w.step == StepAccount {
		// Nothing to validate; signing in is the only way forward.
		return nil
	}
	if w.step == StepPayment {
		return nil
	}
	if err := CanAdvance(w.step, w.draft); err != nil {
		w.stepErr = err
		metrics.StepValidationFailures.WithLabelValues(w.step.String(), string(err.Code)).Inc()
		return err
	}
	w.stepErr = nil
	if next, ok := w.step.Next(); ok {
		w.step = next
	}
	return nil
}

// Back moves to the previous step without validation and clears any step
// error. An authenticated session never returns to the Account step.
func (w *Workflow) Back() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.syncLocked()

	w.stepErr = nil
	prev, ok := w.step.Prev()
	if !ok {
		return
	}
	if prev == StepAccount {
		if _, authed := w.identity.Current(); authed {
			return
		}
	}
	w.step = prev
}

// SetPersonalInfo updates the contact fields of the draft.
func (w *Workflow) SetPersonalInfo(firstName, lastName, phone string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.FirstName = firstName
	w.draft.LastName = lastName
	w.draft.Phone = phone
}

// SetExperience updates the motivation and skills fields of the draft.
func (w *Workflow) SetExperience(motivation, skills string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.Motivation = motivation
	w.draft.Skills = skills
}

// SetTravelDetails updates the arrival date and insurance assent.
func (w *Workflow) SetTravelDetails(arrivalDate string, insuranceAssent bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.ArrivalDate = arrivalDate
	w.draft.InsuranceAssent = insuranceAssent
}

// Submit finalizes the application. Only one submission can be in flight per
// session; a second call while the first is running fails fast, and a call
// after success is a duplicate.
func (w *Workflow) Submit(ctx context.Context) (State, *stderrors.StandardError) {
	w.mu.Lock()
	w.syncLocked()

	ident, ok := w.identity.Current()
	if !ok {
		w.mu.Unlock()
		return w.State(), stderrors.NewUnauthenticatedError("submission requires a signed-in account")
	}
	if w.submittedID != "" {
		w.mu.Unlock()
		return w.State(), stderrors.NewDuplicateSubmissionError(w.submittedID)
	}
	if w.submitting {
		w.mu.Unlock()
		return w.State(), stderrors.NewSubmissionInFlightError()
	}
	if w.step != StepPayment {
		w.mu.Unlock()
		return w.State(), stderrors.NewIncompleteFieldError(w.step.String(), "submission is only available on the final step")
	}
	w.submitting = true
	input := SubmitInput{
		Identity:         ident,
		ProgramID:        w.params.ProgramID,
		DurationWeeks:    w.params.DurationWeeks,
		TargetStartDate:  w.params.TargetStartDate,
		Draft:            w.draft,
		IdempotencyToken: w.idempotencyToken,
	}
	w.mu.Unlock()

	recordID, err := w.submit.Submit(ctx, input)

	w.mu.Lock()
	w.submitting = false
	if err != nil {
		// Draft and step stay put so the traveler can retry.
		if errors.Is(err, ErrDuplicateSubmission) {
			w.stepErr = stderrors.NewDuplicateSubmissionError(w.idempotencyToken)
		} else {
			w.stepErr = stderrors.NewSubmissionFailedError(err)
		}
		w.logger.WithError(err).Error("submission failed", nil)
		w.mu.Unlock()
		return w.State(), w.stateErr()
	}
	w.submittedID = recordID
	w.stepErr = nil
	w.logger.Info("submission complete", map[string]interface{}{"applicationId": recordID})
	w.mu.Unlock()
	return w.State(), nil
}

func (w *Workflow) stateErr() *stderrors.StandardError {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stepErr
}

// State returns a rendering snapshot. While identity resolution is pending,
// Ready is false and no step content should be shown.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.syncLocked()

	st := State{
		Ready:       !w.identity.Resolving(),
		Step:        w.step.String(),
		StepTitle:   w.step.Title(),
		Error:       w.stepErr,
		Submitting:  w.submitting,
		SubmittedID: w.submittedID,
		Draft:       w.draft,
	}
	if !st.Ready {
		return st
	}
	if _, ok := w.identity.Current(); !ok {
		st.SignInRequired = true
		st.SignInURL = SignInURL
	}
	if w.submittedID != "" {
		st.RedirectTo = SubmittedURL
	}
	return st
}
