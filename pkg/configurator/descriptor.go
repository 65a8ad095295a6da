package configurator

import (
	"context"
	"fmt"
)

// ExecContext selects where a configurator runs.
type ExecContext int

const (
	// ContextPrimary configurators run serially on the primary [Loop] and are
	// awaited before the next configurator is dispatched.
	ContextPrimary ExecContext = iota
	// ContextBackground configurators run on a worker and are not awaited
	// before the next configurator is dispatched.
	ContextBackground
)

func (c ExecContext) String() string {
	switch c {
	case ContextPrimary:
		return "primary"
	case ContextBackground:
		return "background"
	}

	return fmt.Sprintf("ExecContext(%d)", int(c))
}

// Descriptor identifies a registered configurator.
type Descriptor struct {
	Name    string
	Context ExecContext
	// Index is the registration order, assigned by [Registry.Register].
	Index int
}

// Primary returns a [Descriptor] for a primary configurator.
func Primary(name string) Descriptor {
	return Descriptor{Name: name, Context: ContextPrimary}
}

// Background returns a [Descriptor] for a background configurator.
func Background(name string) Descriptor {
	return Descriptor{Name: name, Context: ContextBackground}
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s (%s)", d.Name, d.Context)
}

type descriptorKey struct{}

// ContextWithDescriptor returns a copy of ctx carrying d.
func ContextWithDescriptor(ctx context.Context, d Descriptor) context.Context {
	return context.WithValue(ctx, descriptorKey{}, d)
}

// DescriptorFromContext returns the descriptor of the configurator running
// with ctx.
func DescriptorFromContext(ctx context.Context) (Descriptor, bool) {
	d, ok := ctx.Value(descriptorKey{}).(Descriptor)

	return d, ok
}
