// internal/intake/validator.go
package intake

import (
	"strings"

	stderrors "voluntra-backend/internal/common/errors"
	"voluntra-backend/internal/models"
)

// CanAdvance reports whether the workflow may move forward from the given
// step. It is a pure predicate over the draft: no side effects, and it is
// never consulted for backward navigation.
//
// Account has no field rule (advancement there is identity-driven) and
// Payment is terminal.
func CanAdvance(step Step, draft models.ApplicationDraft) *stderrors.StandardError {
	switch step {
	case StepPersonalInfo:
		var missing []string
		if strings.TrimSpace(draft.FirstName) == "" {
			missing = append(missing, "firstName")
		}
		if strings.TrimSpace(draft.LastName) == "" {
			missing = append(missing, "lastName")
		}
		if strings.TrimSpace(draft.Phone) == "" {
			missing = append(missing, "phone")
		}
		if len(missing) > 0 {
			return stderrors.NewIncompleteFieldError(step.Title(), strings.Join(missing, ", "))
		}
		return nil

	case StepExperience:
		if strings.TrimSpace(draft.Motivation) == "" {
			return stderrors.NewIncompleteFieldError(step.Title(), "motivation")
		}
		return nil

	case StepTravelDetails:
		if !draft.InsuranceAssent {
			return stderrors.NewMissingConsentError()
		}
		return nil

	default:
		return nil
	}
}
