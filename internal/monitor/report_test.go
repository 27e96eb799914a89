package monitor

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_JSONShape(t *testing.T) {
	status := BuildStatus{
		Phase:          PhaseLinking,
		Progress:       85,
		Activity:       "Linking driver",
		BuiltTargets:   []string{"http", "rest"},
		TrackedTargets: []string{"http", "rest", "openapi"},
		Errors:         []Signal{{Message: "error: x", Critical: true}},
		Warnings:       nil,
		Elapsed:        90500 * time.Millisecond,
	}

	data, err := json.Marshal(status.Report())
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, "linking", got["phase"])
	assert.Equal(t, float64(85), got["progress"])
	assert.Equal(t, "Linking driver", got["currentActivity"])
	assert.Equal(t, []interface{}{"http", "rest"}, got["builtTargets"])
	assert.Equal(t, float64(1), got["errorCount"])
	assert.Equal(t, float64(0), got["warningCount"])
	assert.Equal(t, 90.5, got["elapsedSeconds"])
	assert.Equal(t, false, got["success"])
}

func TestReport_NilSlicesBecomeEmptyArrays(t *testing.T) {
	data, err := json.Marshal(BuildStatus{Phase: PhaseStarting}.Report())
	require.NoError(t, err)

	assert.Contains(t, string(data), `"builtTargets":[]`)
	assert.Contains(t, string(data), `"trackedTargets":[]`)
}

func TestReport_Success(t *testing.T) {
	assert.True(t, BuildStatus{Phase: PhaseCompleted}.Report().Success)
	assert.False(t, BuildStatus{Phase: PhaseFailed}.Report().Success)
	assert.False(t, BuildStatus{Phase: PhaseTimedOut}.Report().Success)
}
