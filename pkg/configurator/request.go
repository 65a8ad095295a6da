package configurator

import (
	"context"
	"sync/atomic"

	"github.com/macropower/folio/pkg/override"
)

// Project is the project being configured. Implementations must be safe for
// concurrent use, since background configurators run in parallel.
type Project interface {
	// Name returns the project name.
	Name() string
	// EnableFacet enables a named facet with optional settings. Enabling a
	// facet again replaces its settings.
	EnableFacet(name string, settings map[string]string)
	// Overrides returns the project's file type override store.
	Overrides() *override.Store
}

// Request is the input to a dispatch. A request is dispatched at most once.
type Request struct {
	Project Project
	// Module receives the module name derived by configurators.
	Module *ModuleSlot
	// BaseDir is the absolute path of the opened folder.
	BaseDir string
	// CreatedByWizard is set when the folder was just created by a project
	// wizard rather than opened from existing content.
	CreatedByWizard bool

	dispatched atomic.Bool
}

// NewRequest creates a [Request] with an empty [ModuleSlot] using policy.
func NewRequest(project Project, baseDir string, createdByWizard bool, policy SlotPolicy) *Request {
	return &Request{
		Project:         project,
		BaseDir:         baseDir,
		CreatedByWizard: createdByWizard,
		Module:          NewModuleSlot(policy),
	}
}

// SetModule offers module to the request's [ModuleSlot] on behalf of the
// configurator running with ctx. It reports whether the value was accepted.
func (r *Request) SetModule(ctx context.Context, module string) bool {
	d, ok := DescriptorFromContext(ctx)
	if !ok {
		d = Descriptor{Name: "external", Index: -1}
	}

	return r.Module.Set(d, module)
}
