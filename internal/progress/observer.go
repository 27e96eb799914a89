package progress

import "buildwatch/internal/monitor"

// EventObserver bridges monitor callbacks onto the event channel so the
// watch UI can render them. It never blocks the monitoring loop.
type EventObserver struct {
	emit ChanEmitter
}

var _ monitor.Observer = (*EventObserver)(nil)

// NewEventObserver returns an observer emitting to ch.
func NewEventObserver(ch chan<- Event) *EventObserver {
	return &EventObserver{emit: ChanEmitter{Ch: ch}}
}

func (o *EventObserver) OnProgress(percent int, activity string) {
	o.emit.Emit(Event{Kind: KindProgress, Percent: percent, Message: activity})
}

func (o *EventObserver) OnTargetBuilt(name string) {
	o.emit.Emit(Event{Kind: KindTarget, Message: name})
}

func (o *EventObserver) OnCriticalError(sig monitor.Signal) {
	o.emit.Emit(Event{Kind: KindError, Message: sig.Message})
}

func (o *EventObserver) OnCycle(status monitor.BuildStatus) {
	o.emit.Emit(cycleEvent(KindCycle, status))
}

func (o *EventObserver) OnDone(res *monitor.Result) {
	o.emit.Emit(cycleEvent(KindDone, res.Status))
}

func cycleEvent(kind Kind, status monitor.BuildStatus) Event {
	return Event{
		Kind:     kind,
		Message:  status.Activity,
		Phase:    status.Phase.String(),
		Percent:  status.Progress,
		Built:    status.BuiltTargets,
		Errors:   len(status.Errors),
		Warnings: len(status.Warnings),
		Elapsed:  status.Elapsed,
	}
}
