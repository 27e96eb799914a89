package trace

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"buildwatch/internal/monitor"
)

// Observer records a monitoring session as one root span with a child span
// per polling cycle. With tracing disabled the spans are no-ops, so the
// observer costs nothing either way.
type Observer struct {
	monitor.NoopObserver

	tracer oteltrace.Tracer
	ctx    context.Context
	root   oteltrace.Span
	cycles int
}

var _ monitor.Observer = (*Observer)(nil)

// NewObserver starts the session span. Call monitor.Run with the observer;
// OnDone ends the span.
func NewObserver(ctx context.Context, exp *Exporter, targets []string) *Observer {
	tracer := exp.Tracer()
	ctx, root := tracer.Start(ctx, "build.monitor",
		oteltrace.WithAttributes(attribute.String("buildwatch.targets", strings.Join(targets, ","))),
	)
	return &Observer{tracer: tracer, ctx: ctx, root: root}
}

func (o *Observer) OnCycle(status monitor.BuildStatus) {
	o.cycles++
	_, span := o.tracer.Start(o.ctx, "build.cycle",
		oteltrace.WithAttributes(
			attribute.Int("buildwatch.cycle", o.cycles),
			attribute.String("buildwatch.phase", status.Phase.String()),
			attribute.Int("buildwatch.progress", status.Progress),
			attribute.Int("buildwatch.errors", len(status.Errors)),
			attribute.Int("buildwatch.warnings", len(status.Warnings)),
		),
	)
	span.End()
}

func (o *Observer) OnTargetBuilt(name string) {
	o.root.AddEvent("target built", oteltrace.WithAttributes(
		attribute.String("buildwatch.target", name),
	))
}

func (o *Observer) OnCriticalError(sig monitor.Signal) {
	o.root.AddEvent("critical error", oteltrace.WithAttributes(
		attribute.String("buildwatch.error", sig.Message),
	))
}

func (o *Observer) OnDone(res *monitor.Result) {
	o.root.SetAttributes(
		attribute.String("buildwatch.phase", res.Status.Phase.String()),
		attribute.Int("buildwatch.progress", res.Status.Progress),
		attribute.Int("buildwatch.cycles", res.Cycles),
		attribute.Bool("buildwatch.interrupted", res.Interrupted),
	)
	if !res.Status.Success() && !res.Interrupted {
		o.root.SetStatus(codes.Error, res.Status.Phase.String())
	}
	o.root.End()
}
