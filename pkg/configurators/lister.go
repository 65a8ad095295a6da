package configurators

import (
	"sync"

	"github.com/macropower/folio/pkg/configurator"
	"github.com/macropower/folio/pkg/rule"
)

// Lister lists the folder of a request once and shares the result between
// the configurators handling that request.
type Lister struct {
	req    *configurator.Request
	folder *rule.Folder
	err    error
	opts   rule.ListOptions
	mu     sync.Mutex
}

// NewLister creates a [Lister].
func NewLister(opts rule.ListOptions) *Lister {
	return &Lister{opts: opts}
}

// Folder returns the listing of req's base directory. The result must not be
// modified.
func (l *Lister) Folder(req *configurator.Request) (*rule.Folder, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.req != req {
		l.req = req
		l.folder, l.err = rule.ListFolder(req.BaseDir, l.opts)

		if l.folder != nil {
			l.folder.Wizard = req.CreatedByWizard
		}
	}

	return l.folder, l.err //nolint:wrapcheck // Already descriptive.
}
