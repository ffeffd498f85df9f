// internal/intake/session_test.go
package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "voluntra-backend/internal/common/errors"
	"voluntra-backend/internal/common/logger"
	"voluntra-backend/internal/models"
)

func TestSessionManagerLifecycle(t *testing.T) {
	m := NewSessionManager(&fakeSubmitter{}, logger.NewTestLogger(t))

	id, wf := m.Start(testParams(), testIdentity)
	require.NotEmpty(t, id)
	require.NotNil(t, wf)

	got, err := m.Get(id)
	require.Nil(t, err)
	assert.Same(t, wf, got)

	m.End(id)
	_, err = m.Get(id)
	require.NotNil(t, err)
	assert.Equal(t, stderrors.ErrCodeDocumentNotFound, err.Code)
}

func TestSessionManagerUnauthenticatedStart(t *testing.T) {
	m := NewSessionManager(&fakeSubmitter{}, logger.NewTestLogger(t))

	_, wf := m.Start(testParams(), models.Identity{})
	assert.Equal(t, "account", wf.State().Step)
	assert.True(t, wf.State().SignInRequired)
}

func TestSessionManagerIsolatesSessions(t *testing.T) {
	m := NewSessionManager(&fakeSubmitter{}, logger.NewTestLogger(t))

	idA, wfA := m.Start(testParams(), testIdentity)
	idB, wfB := m.Start(testParams(), testIdentity)
	require.NotEqual(t, idA, idB)

	wfA.SetPersonalInfo("Amara", "Okafor", "+233201234567")
	require.Nil(t, wfA.Advance())

	assert.Equal(t, "experience", wfA.State().Step)
	assert.Equal(t, "personal_info", wfB.State().Step)
	assert.Empty(t, wfB.State().Draft.FirstName)
}
