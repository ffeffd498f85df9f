// internal/intake/step.go

// Package intake implements the application workflow: a five-step form state
// machine, its validation gating, and the single terminal submission write.
package intake

import "fmt"

// Step is one of the five ordered workflow states. Transitions go through
// Next/Prev only; there is no index arithmetic to run out of range.
type Step int

const (
	StepAccount Step = iota
	StepPersonalInfo
	StepExperience
	StepTravelDetails
	StepPayment
)

var stepNames = map[Step]string{
	StepAccount:       "account",
	StepPersonalInfo:  "personal_info",
	StepExperience:    "experience",
	StepTravelDetails: "travel_details",
	StepPayment:       "payment",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

// Title returns the human-readable step heading shown to the traveler.
func (s Step) Title() string {
	switch s {
	case StepAccount:
		return "Account"
	case StepPersonalInfo:
		return "Personal Info"
	case StepExperience:
		return "Experience"
	case StepTravelDetails:
		return "Travel Details"
	case StepPayment:
		return "Payment"
	default:
		return "Unknown"
	}
}

// Next returns the following step, false at the terminal step.
func (s Step) Next() (Step, bool) {
	switch s {
	case StepAccount:
		return StepPersonalInfo, true
	case StepPersonalInfo:
		return StepExperience, true
	case StepExperience:
		return StepTravelDetails, true
	case StepTravelDetails:
		return StepPayment, true
	default:
		return s, false
	}
}

// Prev returns the preceding step, false at the first step. Account is not a
// valid retreat target once passed while authenticated; the workflow enforces
// that floor.
func (s Step) Prev() (Step, bool) {
	switch s {
	case StepPayment:
		return StepTravelDetails, true
	case StepTravelDetails:
		return StepExperience, true
	case StepExperience:
		return StepPersonalInfo, true
	case StepPersonalInfo:
		return StepAccount, true
	default:
		return s, false
	}
}
