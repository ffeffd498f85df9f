// internal/models/identity.go
package models

// Identity is the authenticated traveler's session handle.
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}
