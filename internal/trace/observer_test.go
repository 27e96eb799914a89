package trace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buildwatch/internal/monitor"
)

func TestNewExporterDisabledWithoutEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	exp, err := NewExporter(context.Background())
	require.NoError(t, err)
	assert.Nil(t, exp)

	// Nil exporter is usable.
	assert.NotNil(t, exp.Tracer())
	assert.NoError(t, exp.Shutdown(context.Background()))
}

func TestObserverNoopWhenDisabled(t *testing.T) {
	obs := NewObserver(context.Background(), nil, []string{"http", "rest"})

	obs.OnProgress(42, "Compiling json.cc")
	obs.OnTargetBuilt("http")
	obs.OnCriticalError(monitor.Signal{Message: "error: boom", Critical: true})
	obs.OnCycle(monitor.BuildStatus{Phase: monitor.PhaseCompilingCore, Progress: 42})
	obs.OnDone(&monitor.Result{
		Status: monitor.BuildStatus{Phase: monitor.PhaseCompleted, Progress: 100},
		Cycles: 3,
	})
}
