package filetype

import (
	"sync"

	"github.com/macropower/folio/pkg/override"
)

// Source tells where an effective type came from.
type Source int

const (
	SourceDetected Source = iota
	SourceOverride
)

func (s Source) String() string {
	if s == SourceOverride {
		return "override"
	}

	return "detected"
}

// Resolution is the effective content type of a file.
type Resolution struct {
	Type   string
	Source Source
}

// Resolver returns the effective content type of files: the override if one
// is set, otherwise the detected type. Results are cached and invalidated
// when the override store changes.
type Resolver struct {
	store       *override.Store
	detector    *Detector
	cache       map[string]Resolution
	unsubscribe func()
	mu          sync.Mutex
}

// NewResolver creates a [Resolver]. Call [Resolver.Close] to stop observing
// store.
func NewResolver(store *override.Store, detector *Detector) *Resolver {
	r := &Resolver{
		store:    store,
		detector: detector,
		cache:    map[string]Resolution{},
	}

	r.unsubscribe = store.Subscribe(func(c override.Change) {
		r.Invalidate(c.File)
	})

	return r
}

// Effective returns the effective type of file.
func (r *Resolver) Effective(file override.FileID) Resolution {
	r.mu.Lock()
	defer r.mu.Unlock()

	if res, ok := r.cache[file.Key()]; ok {
		return res
	}

	res := Resolution{Type: r.detector.Detect(file.Path), Source: SourceDetected}
	if typ, ok := r.store.Get(file); ok {
		res = Resolution{Type: typ, Source: SourceOverride}
	}

	r.cache[file.Key()] = res

	return res
}

// Detected returns the type file would have without an override.
func (r *Resolver) Detected(file override.FileID) string {
	return r.detector.Detect(file.Path)
}

// Invalidate drops the cached type of file.
func (r *Resolver) Invalidate(file override.FileID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.cache, file.Key())
}

// Close stops observing the override store.
func (r *Resolver) Close() {
	r.unsubscribe()
}
