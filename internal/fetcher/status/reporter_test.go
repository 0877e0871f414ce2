package status

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReporter(t *testing.T) *Reporter {
	t.Helper()
	return NewReporter(filepath.Join(t.TempDir(), "refresh_status.json"))
}

func TestReporter_RunLifecycle(t *testing.T) {
	r := newTestReporter(t)

	require.NoError(t, r.Report(StateRunning, "", 0, 10, nil))
	snap, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, StateRunning, snap.Status)
	assert.Equal(t, 0, snap.Processed)
	assert.Equal(t, 10, snap.Total)
	assert.NotNil(t, snap.StartedAt)
	assert.Nil(t, snap.CompletedAt)
	assert.Equal(t, 10*secondsPerEntity, snap.EstimatedSecondsRemaining)

	require.NoError(t, r.Report(StateRunning, "Fagor Automation", 4, 10, nil))
	snap, err = r.Read()
	require.NoError(t, err)
	assert.Equal(t, "Fagor Automation", snap.CurrentCompetitor)
	assert.Equal(t, 40, snap.PercentComplete)
	assert.Equal(t, 6*secondsPerEntity, snap.EstimatedSecondsRemaining)
	assert.Nil(t, snap.StartedAt)

	require.NoError(t, r.Report(StateCompleted, "", 10, 10, nil))
	snap, err = r.Read()
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, snap.Status)
	assert.Equal(t, 100, snap.PercentComplete)
	assert.NotNil(t, snap.CompletedAt)
}

func TestReporter_ProcessedIsMonotonic(t *testing.T) {
	r := newTestReporter(t)

	require.NoError(t, r.Report(StateRunning, "", 0, 5, nil))
	require.NoError(t, r.Report(StateRunning, "A", 3, 5, nil))
	require.NoError(t, r.Report(StateRunning, "B", 2, 5, nil))

	snap, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Processed)
}

func TestReporter_ErrorState(t *testing.T) {
	r := newTestReporter(t)

	require.NoError(t, r.Report(StateError, "", 2, 5, errors.New("SERPER_API_KEY not found")))
	snap, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, StateError, snap.Status)
	assert.Equal(t, "SERPER_API_KEY not found", snap.Error)
}

func TestReporter_StartupFailureReplacesStaleRunning(t *testing.T) {
	r := newTestReporter(t)

	// A previous run left the file in a running state.
	require.NoError(t, r.Report(StateRunning, "Okuma", 3, 10, nil))

	// A wiring failure on the next process reports an error before any
	// competitor is processed.
	next := NewReporter(r.path)
	require.NoError(t, next.Report(StateError, "", 0, 0, errors.New("Failed to initialize extraction provider: anthropic api key is not configured")))

	snap, err := next.Read()
	require.NoError(t, err)
	assert.Equal(t, StateError, snap.Status)
	assert.Equal(t, 0, snap.Processed)
	assert.Equal(t, 0, snap.Total)
	assert.Contains(t, snap.Error, "extraction provider")
}

func TestReporter_AtomicOverwrite(t *testing.T) {
	r := newTestReporter(t)

	require.NoError(t, r.Report(StateRunning, "", 0, 2, nil))
	require.NoError(t, r.Report(StateCompleted, "", 2, 2, nil))

	// Only the target file remains; no temp files leak.
	entries, err := os.ReadDir(filepath.Dir(r.path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "refresh_status.json", entries[0].Name())
}
