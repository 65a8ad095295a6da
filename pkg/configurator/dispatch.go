package configurator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/macropower/folio/pkg/log"
)

// DefaultWorkers is the default number of background configurators that may
// run at the same time.
const DefaultWorkers = 4

var (
	ErrNilRequest        = errors.New("nil request")
	ErrNilRegistry       = errors.New("nil registry")
	ErrAlreadyDispatched = errors.New("request already dispatched")
	ErrDispatchOnLoop    = errors.New("dispatch would block the primary loop")
)

// Dispatcher runs the configurators of a [Registry] against a [Request].
type Dispatcher struct {
	registry    *Registry
	primary     *Loop
	tracer      trace.Tracer
	workers     int
	ownsPrimary bool
}

// DispatcherOpt configures a [Dispatcher].
type DispatcherOpt func(*Dispatcher)

// WithPrimary sets the [Loop] primary configurators run on. The caller keeps
// ownership of the loop.
func WithPrimary(l *Loop) DispatcherOpt {
	return func(d *Dispatcher) {
		d.primary = l
	}
}

// WithWorkers limits how many background configurators run at the same time.
// Values below one are ignored.
func WithWorkers(n int) DispatcherOpt {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithTracer sets the tracer used for dispatch spans.
func WithTracer(t trace.Tracer) DispatcherOpt {
	return func(d *Dispatcher) {
		d.tracer = t
	}
}

// NewDispatcher creates a [Dispatcher]. Without [WithPrimary], the dispatcher
// starts its own [Loop], which is stopped by [Dispatcher.Close].
func NewDispatcher(registry *Registry, opts ...DispatcherOpt) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		workers:  DefaultWorkers,
		tracer:   otel.Tracer("configurator"),
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.primary == nil {
		d.primary = NewLoop()
		d.ownsPrimary = true
	}

	return d
}

// Close stops the primary loop if the dispatcher created it.
func (d *Dispatcher) Close() {
	if d.ownsPrimary {
		d.primary.Close()
	}
}

// Run is a dispatch in progress.
type Run struct {
	report      *Report
	primaryDone chan struct{}
	done        chan struct{}
}

// Primary blocks until every primary configurator has run.
func (r *Run) Primary() {
	<-r.primaryDone
}

// Done is closed once every configurator has run.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until every configurator has run and returns the report.
func (r *Run) Wait() *Report {
	<-r.done

	return r.report
}

// Dispatch runs every registered configurator against req and waits for all
// of them. Configurator failures are recorded in the report and never abort
// the dispatch; the returned error is only set when the dispatch could not
// start.
//
// Dispatch must not be called from a func running on the primary loop, since
// it would wait on primary configurators queued behind that func. Use
// [Dispatcher.Start] there instead.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request) (*Report, error) {
	if d != nil && d.primary != nil && loopOf(ctx) == d.primary {
		return nil, ErrDispatchOnLoop
	}

	run, err := d.Start(ctx, req)
	if err != nil {
		return nil, err
	}

	return run.Wait(), nil
}

// Start begins dispatching req and returns without waiting.
//
// Configurators are dispatched in registration order. A primary configurator
// runs on the primary loop and is awaited before the next configurator is
// dispatched. A background configurator is handed to a worker and not
// awaited, so it runs concurrently with later configurators.
func (d *Dispatcher) Start(ctx context.Context, req *Request) (*Run, error) {
	switch {
	case d == nil || d.registry == nil:
		return nil, ErrNilRegistry
	case req == nil:
		return nil, ErrNilRequest
	case d.primary.Closed():
		return nil, ErrLoopClosed
	}

	if req.Module == nil {
		req.Module = NewModuleSlot(SlotLastRegistered)
	}

	if !req.dispatched.CompareAndSwap(false, true) {
		return nil, ErrAlreadyDispatched
	}

	type job struct {
		handler Handler
		desc    Descriptor
	}

	var jobs []job
	for desc, h := range d.registry.All() {
		jobs = append(jobs, job{desc: desc, handler: h})
	}

	run := &Run{
		report:      &Report{Outcomes: make([]Outcome, len(jobs))},
		primaryDone: make(chan struct{}),
		done:        make(chan struct{}),
	}

	// The dispatch goroutine is not on any loop, even when Start was called
	// from one.
	ctx = context.WithValue(ctx, loopKey{}, (*Loop)(nil))

	ctx, span := d.tracer.Start(ctx, "dispatch", trace.WithAttributes(
		attribute.String("dir", req.BaseDir),
		attribute.Int("configurators", len(jobs)),
		attribute.Bool("wizard", req.CreatedByWizard),
	))

	logger := log.WithContext(ctx).With(slog.String("dir", req.BaseDir))
	logger.Debug("dispatch configurators", slog.Int("count", len(jobs)))

	go func() {
		defer span.End()
		defer close(run.done)

		var (
			group errgroup.Group
			sem   = semaphore.NewWeighted(int64(d.workers))
		)

		for i, j := range jobs {
			switch j.desc.Context {
			case ContextPrimary:
				run.report.Outcomes[i] = d.runPrimary(ctx, j.desc, j.handler, req)

			case ContextBackground:
				group.Go(func() error {
					// Acquire only fails when the context is done; this one never is.
					_ = sem.Acquire(context.WithoutCancel(ctx), 1) //nolint:errcheck // See above.
					defer sem.Release(1)

					run.report.Outcomes[i] = d.invoke(ctx, j.desc, j.handler, req)

					return nil
				})
			}
		}

		close(run.primaryDone)

		_ = group.Wait() //nolint:errcheck // Workers never return errors.

		run.report.Module, run.report.ModuleWriter, _ = req.Module.Get()

		failed := run.report.Failed()
		if len(failed) > 0 {
			span.SetStatus(codes.Error, fmt.Sprintf("%d configurators failed", len(failed)))
		}

		logger.Debug("configurators done",
			slog.Int("failed", len(failed)),
			slog.String("module", run.report.Module),
		)
	}()

	return run, nil
}

func (d *Dispatcher) runPrimary(ctx context.Context, desc Descriptor, h Handler, req *Request) Outcome {
	var o Outcome

	// Queueing ignores cancellation so every primary configurator runs; the
	// handler still sees ctx and may honor it.
	err := d.primary.Do(context.WithoutCancel(ctx), func(context.Context) {
		o = d.invoke(context.WithValue(ctx, loopKey{}, d.primary), desc, h, req)
	})
	if err != nil {
		return Outcome{Descriptor: desc, Err: fmt.Errorf("%w: %w", ErrConfiguratorFailed, err)}
	}

	return o
}

// invoke runs a single configurator, converting errors and panics into its
// [Outcome].
func (d *Dispatcher) invoke(ctx context.Context, desc Descriptor, h Handler, req *Request) (o Outcome) {
	ctx, span := d.tracer.Start(ctx, "configure", trace.WithAttributes(
		attribute.String("name", desc.Name),
		attribute.String("context", desc.Context.String()),
	))
	defer span.End()

	ctx = ContextWithDescriptor(ctx, desc)
	logger := log.WithContext(ctx).With(slog.String("configurator", desc.Name))

	start := time.Now()
	o.Descriptor = desc

	defer func() {
		o.Duration = time.Since(start)

		if r := recover(); r != nil {
			o.Err = fmt.Errorf("%w: %v", ErrConfiguratorPanic, r)
		}

		if o.Err != nil {
			span.RecordError(o.Err)
			span.SetStatus(codes.Error, o.Err.Error())
			logger.Warn("configurator failed", slog.Any("err", o.Err))

			return
		}

		logger.Debug("configurator done", slog.Duration("duration", o.Duration))
	}()

	err := h(ctx, req)
	if err != nil {
		o.Err = fmt.Errorf("%w: %w", ErrConfiguratorFailed, err)
	}

	return o
}
