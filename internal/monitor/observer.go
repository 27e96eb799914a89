package monitor

// Observer receives delta notifications from the monitor loop: new progress
// values, newly built targets, and newly recorded critical errors, plus a
// full snapshot every cycle. Implementations must not block; slow consumers
// should buffer internally.
type Observer interface {
	// OnProgress fires when the progress value rises, with the current
	// activity description.
	OnProgress(progress int, activity string)

	// OnTargetBuilt fires once per tracked target, when it is first
	// reported built.
	OnTargetBuilt(name string)

	// OnCriticalError fires for each newly retained critical signal.
	OnCriticalError(sig Signal)

	// OnCycle fires at the end of every polling cycle with the fresh
	// snapshot, terminal cycles included.
	OnCycle(status BuildStatus)

	// OnDone fires once, when the loop returns.
	OnDone(result *Result)
}

// NoopObserver implements Observer with no-ops. Embed it to implement only
// the callbacks you care about.
type NoopObserver struct{}

func (NoopObserver) OnProgress(int, string) {}
func (NoopObserver) OnTargetBuilt(string)   {}
func (NoopObserver) OnCriticalError(Signal) {}
func (NoopObserver) OnCycle(BuildStatus)    {}
func (NoopObserver) OnDone(*Result)         {}

// MultiObserver fans out notifications to multiple observers. Nil entries
// are filtered at construction and a panicking observer never blocks the
// others.
type MultiObserver struct {
	observers []Observer
}

var _ Observer = (*MultiObserver)(nil)

// NewMultiObserver creates a MultiObserver forwarding to all non-nil
// observers.
func NewMultiObserver(observers ...Observer) *MultiObserver {
	filtered := make([]Observer, 0, len(observers))
	for _, obs := range observers {
		if obs != nil {
			filtered = append(filtered, obs)
		}
	}
	return &MultiObserver{observers: filtered}
}

// safeCall calls fn with panic recovery. One observer failing shouldn't
// block others.
func safeCall(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			// One observer failing shouldn't block others
		}
	}()
	fn()
}

func (m *MultiObserver) OnProgress(progress int, activity string) {
	for _, obs := range m.observers {
		safeCall(func() { obs.OnProgress(progress, activity) })
	}
}

func (m *MultiObserver) OnTargetBuilt(name string) {
	for _, obs := range m.observers {
		safeCall(func() { obs.OnTargetBuilt(name) })
	}
}

func (m *MultiObserver) OnCriticalError(sig Signal) {
	for _, obs := range m.observers {
		safeCall(func() { obs.OnCriticalError(sig) })
	}
}

func (m *MultiObserver) OnCycle(status BuildStatus) {
	for _, obs := range m.observers {
		safeCall(func() { obs.OnCycle(status) })
	}
}

func (m *MultiObserver) OnDone(result *Result) {
	for _, obs := range m.observers {
		safeCall(func() { obs.OnDone(result) })
	}
}
