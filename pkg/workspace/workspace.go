package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/macropower/folio/api/v1beta1/configs"
	"github.com/macropower/folio/api/v1beta1/projects"
	"github.com/macropower/folio/pkg/config"
	"github.com/macropower/folio/pkg/configurator"
	"github.com/macropower/folio/pkg/configurators"
	"github.com/macropower/folio/pkg/filetype"
	"github.com/macropower/folio/pkg/log"
	"github.com/macropower/folio/pkg/override"
)

var ErrNotDirectory = errors.New("not a directory")

// Workspace is an opened folder.
type Workspace struct {
	project  *projects.Project
	store    *override.Store
	backend  *override.FileBackend
	resolver *filetype.Resolver
	report   *configurator.Report
	root     string
	mu       sync.RWMutex
}

// Compile-time interface checks.
var _ configurator.Project = (*Workspace)(nil)

// Option configures [Open].
type Option func(*options)

type options struct {
	config      *configs.Config
	dispatcher  *configurator.Dispatcher
	detector    *filetype.Detector
	wizard      bool
	reconfigure bool
}

// WithWizard marks the folder as just created by a project wizard.
func WithWizard(wizard bool) Option {
	return func(o *options) {
		o.wizard = wizard
	}
}

// WithConfig sets the configuration used to build the configurator registry.
// Defaults to [configs.New].
func WithConfig(cfg *configs.Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithDispatcher sets the dispatcher used on first open, replacing the one
// built from the configuration. The caller keeps ownership of it.
func WithDispatcher(d *configurator.Dispatcher) Option {
	return func(o *options) {
		o.dispatcher = d
	}
}

// WithDetector sets the content type detector.
func WithDetector(d *filetype.Detector) Option {
	return func(o *options) {
		o.detector = d
	}
}

// WithReconfigure dispatches the configurators even when the folder has
// already been configured. Existing overrides are kept.
func WithReconfigure(reconfigure bool) Option {
	return func(o *options) {
		o.reconfigure = reconfigure
	}
}

// Open opens the folder at dir.
//
// When the folder has no project document yet (or [WithReconfigure] is set),
// the configurators are dispatched and awaited, and the resulting project is
// written. Configurator failures do not fail Open; they are available from
// [Workspace.Report].
func Open(ctx context.Context, dir string, opts ...Option) (*Workspace, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if o.config == nil {
		o.config = configs.New()
	}
	if o.detector == nil {
		o.detector = filetype.NewDetector()
	}

	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("open workspace: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open workspace: %w: %s", ErrNotDirectory, root)
	}

	backend := override.NewFileBackend(root)

	store, err := override.NewStore(backend)
	if err != nil {
		return nil, fmt.Errorf("open workspace: %w", err)
	}

	project, found, err := config.LoadFile(projects.GetPath(root), projects.NewEmpty, projects.DefaultValidator,
		config.WithKinds(projects.ValidKinds...),
	)
	if err != nil {
		return nil, fmt.Errorf("open workspace: %w", err)
	}

	if project.Name == "" {
		project.Name = filepath.Base(root)
	}

	ws := &Workspace{
		root:    root,
		project: project,
		store:   store,
		backend: backend,
	}

	logger := log.WithContext(ctx).With(slog.String("root", root))

	if !found || o.reconfigure {
		project.CreatedByWizard = o.wizard

		err = ws.configure(ctx, o)
		if err != nil {
			return nil, err
		}

		logger.Info("configured workspace",
			slog.String("module", project.Module),
			slog.Int("facets", len(project.Facets)),
			slog.Int("failed", len(ws.report.Failed())),
		)
	} else {
		logger.Debug("loaded workspace", slog.String("project", project.Name))
	}

	ws.resolver = filetype.NewResolver(store, o.detector)

	return ws, nil
}

func (w *Workspace) configure(ctx context.Context, o *options) error {
	d := o.dispatcher
	if d == nil {
		reg := configurator.NewRegistry()

		err := configurators.Register(reg, o.config.Folders)
		if err != nil {
			return fmt.Errorf("register configurators: %w", err)
		}

		reg.Seal()

		d = configurator.NewDispatcher(reg, configurator.WithWorkers(o.config.Dispatch.Workers))
		defer d.Close()
	}

	req := configurator.NewRequest(w, w.root, o.wizard, o.config.Dispatch.Policy())

	report, err := d.Dispatch(ctx, req)
	if err != nil {
		return fmt.Errorf("dispatch configurators: %w", err)
	}

	for _, out := range report.Failed() {
		log.WithContext(ctx).Warn("configurator failed",
			slog.String("configurator", out.Descriptor.Name),
			slog.Any("err", out.Err),
		)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.report = report
	if report.Module != "" {
		w.project.Module = report.Module
	}

	err = w.project.Write(projects.GetPath(w.root))
	if err != nil {
		return fmt.Errorf("open workspace: %w", err)
	}

	return nil
}

// Name returns the project name.
func (w *Workspace) Name() string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.project.Name
}

// EnableFacet enables a project facet.
func (w *Workspace) EnableFacet(name string, settings map[string]string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.project.EnableFacet(name, settings)
}

// Overrides returns the file type override store.
func (w *Workspace) Overrides() *override.Store {
	return w.store
}

// Types returns the effective file type resolver.
func (w *Workspace) Types() *filetype.Resolver {
	return w.resolver
}

// Backend returns the persistence backend of the override store.
func (w *Workspace) Backend() *override.FileBackend {
	return w.backend
}

// Root returns the absolute path of the workspace.
func (w *Workspace) Root() string {
	return w.root
}

// Project returns a copy of the project document.
func (w *Workspace) Project() projects.Project {
	w.mu.RLock()
	defer w.mu.RUnlock()

	p := *w.project
	p.Facets = make([]*projects.Facet, 0, len(w.project.Facets))

	for _, f := range w.project.Facets {
		p.Facets = append(p.Facets, &projects.Facet{Name: f.Name, Settings: maps.Clone(f.Settings)})
	}

	return p
}

// Report returns the report of the dispatch run by [Open], or nil if the
// folder was already configured.
func (w *Workspace) Report() *configurator.Report {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.report
}

// FileID returns the [override.FileID] of p. Relative paths are resolved
// against the workspace root.
func (w *Workspace) FileID(p string) (override.FileID, error) {
	id, err := override.NewFileID(w.root, p)
	if err != nil {
		return override.FileID{}, fmt.Errorf("file %s: %w", p, err)
	}

	return id, nil
}

// Close releases the resources held by the workspace.
func (w *Workspace) Close() {
	if w.resolver != nil {
		w.resolver.Close()
	}
}
