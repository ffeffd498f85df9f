// internal/models/application.go
package models

import "time"

// Application status values. Later transitions (approved/rejected/
// pending_review) belong to the admin console, not the intake flow.
const (
	ApplicationStatusSubmitted     = "submitted"
	ApplicationStatusPendingReview = "pending_review"
	ApplicationStatusApproved      = "approved"
	ApplicationStatusRejected      = "rejected"
)

// Payment status values. Only the payment webhook and admin actions move a
// record past the initial value.
const (
	PaymentStatusPendingSetupFee = "pending_setup_fee"
	PaymentStatusPaid            = "paid"
	PaymentStatusFailed          = "failed"
)

// ApplicationDraft is the in-memory form data for one intake session. It is
// never persisted before the terminal submission write.
type ApplicationDraft struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Phone           string `json:"phone"`
	Motivation      string `json:"motivation"`
	Skills          string `json:"skills,omitempty"`
	ArrivalDate     string `json:"arrivalDate,omitempty"`
	InsuranceAssent bool   `json:"insuranceAssent"`
}

// PersonalInfoSnapshot is the persisted copy of the draft's personal section,
// plus the authenticated identity's email.
type PersonalInfoSnapshot struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type ExperienceSnapshot struct {
	Motivation string `json:"motivation"`
	Skills     string `json:"skills,omitempty"`
}

type TravelSnapshot struct {
	ArrivalDate     string `json:"arrivalDate,omitempty"`
	InsuranceAssent bool   `json:"insuranceAssent"`
}

// ApplicationRecord is the document created exactly once per successful
// submission. The store assigns the identity and timestamps.
type ApplicationRecord struct {
	ID              string               `json:"id,omitempty"`
	UserID          string               `json:"userId"`
	ProgramID       string               `json:"programId"`
	DurationWeeks   int                  `json:"durationWeeks"`
	TargetStartDate string               `json:"targetStartDate"`
	PaymentStatus   string               `json:"paymentStatus"`
	Status          string               `json:"status"`
	PersonalInfo    PersonalInfoSnapshot `json:"personalInfo"`
	Experience      ExperienceSnapshot   `json:"experience"`
	Travel          TravelSnapshot       `json:"travel"`
	Documents       map[string]string    `json:"documents,omitempty"`
	CreatedAt       time.Time            `json:"createdAt,omitempty"`
	UpdatedAt       time.Time            `json:"updatedAt,omitempty"`
}
