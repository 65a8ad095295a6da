package configurator

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrConfiguratorFailed = errors.New("configurator failed")
	ErrConfiguratorPanic  = errors.New("configurator panicked")
)

// Outcome is the result of running a single configurator.
type Outcome struct {
	Err        error
	Descriptor Descriptor
	Duration   time.Duration
}

// Failed reports whether the configurator returned an error or panicked.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

func (o Outcome) String() string {
	if o.Err != nil {
		return fmt.Sprintf("%s: %v", o.Descriptor, o.Err)
	}

	return fmt.Sprintf("%s: ok", o.Descriptor)
}

// Report collects the outcomes of a dispatch, in registration order.
type Report struct {
	// Module is the final value of the request's module slot.
	Module string
	// ModuleWriter is the name of the configurator that wrote Module.
	ModuleWriter string
	Outcomes     []Outcome
}

// Failed returns the outcomes of configurators that failed.
func (r *Report) Failed() []Outcome {
	var out []Outcome

	for _, o := range r.Outcomes {
		if o.Failed() {
			out = append(out, o)
		}
	}

	return out
}

// Succeeded returns the outcomes of configurators that completed normally.
func (r *Report) Succeeded() []Outcome {
	var out []Outcome

	for _, o := range r.Outcomes {
		if !o.Failed() {
			out = append(out, o)
		}
	}

	return out
}

// Err joins the errors of all failed configurators, or returns nil.
func (r *Report) Err() error {
	var errs []error

	for _, o := range r.Failed() {
		errs = append(errs, fmt.Errorf("%s: %w", o.Descriptor.Name, o.Err))
	}

	return errors.Join(errs...)
}
