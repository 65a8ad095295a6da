package override

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
)

var (
	ErrPersist   = errors.New("persist overrides")
	ErrEmptyType = errors.New("empty type")
	ErrZeroFile  = errors.New("zero file id")
)

// Entry is a single override.
type Entry struct {
	File FileID
	Type string
}

// ChangeKind describes a [Change].
type ChangeKind int

const (
	ChangeSet ChangeKind = iota
	ChangeRemove
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeSet:
		return "set"
	case ChangeRemove:
		return "remove"
	}

	return fmt.Sprintf("ChangeKind(%d)", int(k))
}

// Change is delivered to subscribers after a mutation has been persisted.
type Change struct {
	File     FileID
	Type     string
	Previous string
	Kind     ChangeKind
}

// Backend persists the full set of overrides.
type Backend interface {
	Load() ([]Entry, error)
	Save(entries []Entry) error
}

// Store holds per-file type overrides.
//
// Reads never block on persistence. Mutations are serialized and only become
// visible once the [Backend] has accepted them, so a failed write leaves the
// in-memory state untouched.
type Store struct {
	backend Backend
	entries map[string]Entry
	subs    map[int]func(Change)

	mu      sync.RWMutex // Guards entries.
	writeMu sync.Mutex   // Serializes mutations with their persistence.
	subsMu  sync.Mutex
	nextSub int
}

// NewStore creates a [Store] and loads the existing overrides from backend.
func NewStore(backend Backend) (*Store, error) {
	s := &Store{
		backend: backend,
		entries: map[string]Entry{},
		subs:    map[int]func(Change){},
	}

	entries, err := backend.Load()
	if err != nil {
		return nil, fmt.Errorf("load overrides: %w", err)
	}

	s.entries = index(entries)

	return s, nil
}

// Get returns the override for file.
func (s *Store) Get(file FileID) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[file.Key()]

	return e.Type, ok
}

// Has reports whether file has an override.
func (s *Store) Has(file FileID) bool {
	_, ok := s.Get(file)

	return ok
}

// Len returns the number of overrides.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// List returns all overrides sorted by path.
func (s *Store) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sorted(s.entries)
}

// Set assigns typ to file, replacing any existing override. The type is not
// checked against the set of known types.
func (s *Store) Set(file FileID, typ string) error {
	if file.IsZero() {
		return ErrZeroFile
	}

	typ = strings.TrimSpace(typ)
	if typ == "" {
		return ErrEmptyType
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	prev, _ := s.Get(file)

	next := s.snapshot()
	next[file.Key()] = Entry{File: file, Type: typ}

	err := s.commit(next)
	if err != nil {
		return fmt.Errorf("set %s: %w", file, err)
	}

	s.notify(Change{File: file, Type: typ, Previous: prev, Kind: ChangeSet})

	return nil
}

// Remove deletes the override for file. It reports whether an override
// existed. Removing an absent override is a no-op.
func (s *Store) Remove(file FileID) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.remove(file)
}

func (s *Store) remove(file FileID) (bool, error) {
	prev, ok := s.Get(file)
	if !ok {
		return false, nil
	}

	next := s.snapshot()
	delete(next, file.Key())

	err := s.commit(next)
	if err != nil {
		return false, fmt.Errorf("remove %s: %w", file, err)
	}

	s.notify(Change{File: file, Previous: prev, Kind: ChangeRemove})

	return true, nil
}

// RemoveAll removes the overrides for files. Each file is removed and
// persisted independently; a failure for one file does not prevent the
// others from being removed. See [BulkResult].
func (s *Store) RemoveAll(files []FileID) *BulkResult {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	res := &BulkResult{}

	for _, f := range files {
		removed, err := s.remove(f)

		switch {
		case err != nil:
			res.Failed = append(res.Failed, Failure{File: f, Err: err})
		case removed:
			res.Removed = append(res.Removed, f)
		default:
			res.Missing = append(res.Missing, f)
		}
	}

	return res
}

// Clear removes every override in a single write.
func (s *Store) Clear() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	old := s.List()
	if len(old) == 0 {
		return nil
	}

	err := s.commit(map[string]Entry{})
	if err != nil {
		return fmt.Errorf("clear: %w", err)
	}

	for _, e := range old {
		s.notify(Change{File: e.File, Previous: e.Type, Kind: ChangeRemove})
	}

	return nil
}

// Reload replaces the in-memory overrides with the backend's content and
// notifies subscribers of every difference.
func (s *Store) Reload() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	entries, err := s.backend.Load()
	if err != nil {
		return fmt.Errorf("reload overrides: %w", err)
	}

	next := index(entries)

	s.mu.Lock()
	prev := s.entries
	s.entries = next
	s.mu.Unlock()

	for key, e := range next {
		if old, ok := prev[key]; !ok || old.Type != e.Type {
			s.notify(Change{File: e.File, Type: e.Type, Previous: old.Type, Kind: ChangeSet})
		}
	}

	for key, old := range prev {
		if _, ok := next[key]; !ok {
			s.notify(Change{File: old.File, Previous: old.Type, Kind: ChangeRemove})
		}
	}

	return nil
}

// Subscribe registers fn to be called after every committed change. fn is
// called synchronously while mutations are serialized, so it must not mutate
// the store. The returned func removes the subscription.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()

		delete(s.subs, id)
	}
}

func (s *Store) snapshot() map[string]Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return maps.Clone(s.entries)
}

// commit persists next and, on success, makes it visible.
// Callers hold writeMu.
func (s *Store) commit(next map[string]Entry) error {
	err := s.backend.Save(sorted(next))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}

	s.mu.Lock()
	s.entries = next
	s.mu.Unlock()

	return nil
}

func (s *Store) notify(c Change) {
	s.subsMu.Lock()
	subs := slices.Collect(maps.Values(s.subs))
	s.subsMu.Unlock()

	slog.Debug("file type override changed",
		slog.String("file", c.File.Path),
		slog.String("kind", c.Kind.String()),
		slog.String("type", c.Type),
	)

	for _, fn := range subs {
		fn(c)
	}
}

func index(entries []Entry) map[string]Entry {
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		m[e.File.Key()] = e
	}

	return m
}

func sorted(m map[string]Entry) []Entry {
	entries := slices.Collect(maps.Values(m))
	slices.SortFunc(entries, func(a, b Entry) int {
		return strings.Compare(a.File.Path, b.File.Path)
	})

	return entries
}
