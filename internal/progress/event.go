package progress

import "time"

// Kind classifies a monitoring event for live display.
type Kind string

const (
	KindProgress Kind = "progress"
	KindTarget   Kind = "target"
	KindError    Kind = "error"
	KindCycle    Kind = "cycle"
	KindDone     Kind = "done"
)

// Event is the contract for live build display. The monitor emits these
// each polling cycle; the watch UI consumes them.
type Event struct {
	Kind      Kind
	Message   string
	Phase     string
	Percent   int
	Built     []string
	Errors    int
	Warnings  int
	Elapsed   time.Duration
	Timestamp time.Time
}

// ChanEmitter emits events to a channel for the UI to consume.
type ChanEmitter struct {
	Ch chan<- Event
}

// Emit sends the event to the channel (non-blocking; drops if full).
func (e *ChanEmitter) Emit(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	select {
	case e.Ch <- ev:
	default:
		// Channel full; drop to avoid blocking the monitor
	}
}
