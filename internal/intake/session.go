// internal/intake/session.go
package intake

import (
	"sync"

	"github.com/google/uuid"

	stderrors "voluntra-backend/internal/common/errors"
	"voluntra-backend/internal/common/logger"
	"voluntra-backend/internal/models"
)

// SessionManager keeps the live intake workflows, one per session ID. Drafts
// exist only here; an abandoned session leaves no trace in the store.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Workflow

	submit Submitter
	logger logger.Logger
}

func NewSessionManager(submit Submitter, log logger.Logger) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Workflow),
		submit:   submit,
		logger:   log,
	}
}

// Start opens a workflow for the given identity and returns the new session
// ID. A zero-valued identity starts the session unauthenticated at the
// Account step.
func (m *SessionManager) Start(params Params, identity models.Identity) (string, *Workflow) {
	source := StaticIdentity{Identity: identity, Present: identity.UID != ""}
	wf := NewWorkflow(params, source, m.submit, m.logger)
	id := uuid.NewString()

	m.mu.Lock()
	m.sessions[id] = wf
	m.mu.Unlock()

	m.logger.Debug("intake session started", map[string]interface{}{
		"sessionId": id,
		"programId": params.ProgramID,
	})
	return id, wf
}

// Get returns the workflow for a session ID.
func (m *SessionManager) Get(id string) (*Workflow, *stderrors.StandardError) {
	m.mu.RLock()
	wf, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, stderrors.NewDocumentNotFoundError("sessions", id)
	}
	return wf, nil
}

// End discards a session. Any unsubmitted draft is dropped.
func (m *SessionManager) End(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}
