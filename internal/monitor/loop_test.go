package monitor

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSource replays a fixed sequence of fetch results; the last entry
// repeats once the script is exhausted.
type scriptedSource struct {
	chunks    []string
	completed []bool
	errs      []error
	calls     int
}

func (s *scriptedSource) Fetch(ctx context.Context) (string, bool, error) {
	i := s.calls
	if i >= len(s.chunks) {
		i = len(s.chunks) - 1
	}
	s.calls++
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	return s.chunks[i], s.completed[i], err
}

// recordingObserver captures every callback for assertions.
type recordingObserver struct {
	progress []int
	built    []string
	critical []Signal
	cycles   int
	done     *Result
}

func (r *recordingObserver) OnProgress(p int, _ string) { r.progress = append(r.progress, p) }
func (r *recordingObserver) OnTargetBuilt(name string)  { r.built = append(r.built, name) }
func (r *recordingObserver) OnCriticalError(sig Signal) { r.critical = append(r.critical, sig) }
func (r *recordingObserver) OnCycle(BuildStatus)        { r.cycles++ }
func (r *recordingObserver) OnDone(res *Result)         { r.done = res }

// noSleep records requested waits and returns immediately.
func noSleep(waits *[]time.Duration) func(context.Context, time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return ctx.Err()
	}
}

func TestRun_RequiresSource(t *testing.T) {
	_, err := Run(context.Background(), Config{})
	require.Error(t, err)
}

func TestRun_FullBuildSession(t *testing.T) {
	src := &scriptedSource{
		chunks: []string{
			"cmake: Configuring done",
			"[ 42%] Building CXX object src/core.cc.o",
			"[ 60%] Built target package_http",
			"[100%] Built target driver",
		},
		completed: []bool{false, false, false, true},
	}
	obs := &recordingObserver{}
	var out bytes.Buffer
	var waits []time.Duration

	res, err := Run(context.Background(), Config{
		Source:   src,
		Targets:  []string{"http"},
		Observer: obs,
		Output:   &out,
		Sleep:    noSleep(&waits),
	})
	require.NoError(t, err)

	assert.Equal(t, 0, res.ExitCode())
	assert.Equal(t, PhaseCompleted, res.Status.Phase)
	assert.Equal(t, 100, res.Status.Progress)
	assert.Equal(t, 4, res.Cycles)
	assert.False(t, res.Interrupted)

	// Deltas: progress strictly rising, each target reported once.
	assert.Equal(t, []int{10, 42, 60, 100}, obs.progress)
	assert.Equal(t, []string{"http"}, obs.built)
	assert.Empty(t, obs.critical)
	assert.Equal(t, 4, obs.cycles)
	require.NotNil(t, obs.done)
	assert.Same(t, res, obs.done)

	// Every chunk was active, so the loop never slowed down.
	assert.Equal(t, []time.Duration{30 * time.Second, 30 * time.Second, 30 * time.Second}, waits)

	assert.Contains(t, out.String(), "monitoring build (targets: http")
}

func TestRun_SingleCheck(t *testing.T) {
	src := &scriptedSource{
		chunks:    []string{"[ 42%] Building CXX object src/core.cc.o"},
		completed: []bool{false},
	}
	var waits []time.Duration

	res, err := Run(context.Background(), Config{
		Source:      src,
		SingleCheck: true,
		Sleep:       noSleep(&waits),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Cycles)
	assert.Equal(t, PhaseCompilingCore, res.Status.Phase)
	assert.Equal(t, 1, res.ExitCode())
	assert.Empty(t, waits, "single check never sleeps")
}

func TestRun_CriticalErrorStops(t *testing.T) {
	src := &scriptedSource{
		chunks:    []string{"src/main.cc:3: fatal error: boom"},
		completed: []bool{false},
	}
	obs := &recordingObserver{}
	var waits []time.Duration

	res, err := Run(context.Background(), Config{
		Source:   src,
		Observer: obs,
		Sleep:    noSleep(&waits),
	})
	require.NoError(t, err)

	assert.Equal(t, PhaseFailed, res.Status.Phase)
	assert.Equal(t, 1, res.ExitCode())
	require.Len(t, obs.critical, 1)
	assert.Contains(t, obs.critical[0].Message, "fatal error")
}

func TestRun_InterruptionDuringSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &scriptedSource{
		chunks:    []string{"[ 42%] Building CXX object src/core.cc.o"},
		completed: []bool{false},
	}

	res, err := Run(ctx, Config{
		Source: src,
		Sleep: func(ctx context.Context, d time.Duration) error {
			cancel()
			return ctx.Err()
		},
	})
	require.NoError(t, err)

	assert.True(t, res.Interrupted)
	assert.Equal(t, 130, res.ExitCode())
	// Accumulated state survives the interruption.
	assert.Equal(t, 42, res.Status.Progress)
}

func TestRun_FetchErrorRecordedAsTransportError(t *testing.T) {
	src := &scriptedSource{
		chunks:    []string{"", "[100%] Built target driver"},
		completed: []bool{false, true},
		errs:      []error{errors.New("capture failed"), nil},
	}
	var waits []time.Duration

	res, err := Run(context.Background(), Config{
		Source: src,
		Sleep:  noSleep(&waits),
	})
	require.NoError(t, err)

	assert.Equal(t, PhaseCompleted, res.Status.Phase)
	require.Len(t, res.Status.Errors, 1)
	assert.Equal(t, "capture failed", res.Status.Errors[0].Message)
	assert.False(t, res.Status.Errors[0].Critical)
}

func TestRun_QuietChunksSlowThePolling(t *testing.T) {
	src := &scriptedSource{
		chunks:    []string{"nothing happening", "nothing happening", "nothing happening", "nothing happening", "", "", ""},
		completed: []bool{false, false, false, false, false, false, true},
	}
	var waits []time.Duration

	res, err := Run(context.Background(), Config{
		Source: src,
		Sleep:  noSleep(&waits),
	})
	require.NoError(t, err)

	assert.Equal(t, PhaseCompleted, res.Status.Phase)
	require.Len(t, waits, 6)
	assert.Equal(t, 30*time.Second, waits[0])
	assert.Equal(t, 30*time.Second, waits[1])
	assert.Equal(t, 60*time.Second, waits[2])
	assert.Equal(t, 120*time.Second, waits[3])
}
