// internal/intake/identity.go
package intake

import "voluntra-backend/internal/models"

// IdentitySource exposes the session identity to the workflow. While the
// underlying provider has not reported a definitive state, Resolving is true
// and the workflow exposes no step content.
type IdentitySource interface {
	Current() (models.Identity, bool)
	Resolving() bool
}

// StaticIdentity is an IdentitySource whose state was resolved up front,
// which is the usual case for a server-side session created from a verified
// token.
type StaticIdentity struct {
	Identity models.Identity
	Present  bool
}

func (s StaticIdentity) Current() (models.Identity, bool) {
	return s.Identity, s.Present
}

func (s StaticIdentity) Resolving() bool { return false }
