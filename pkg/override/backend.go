package override

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/macropower/folio/api"
	"github.com/macropower/folio/api/v1beta1/overrides"
	"github.com/macropower/folio/pkg/config"
	"github.com/macropower/folio/pkg/yaml"
)

// MemoryBackend keeps overrides in memory. Failures can be injected to
// exercise persistence error handling.
type MemoryBackend struct {
	saveErr func(entries []Entry) error
	loadErr error
	entries []Entry
	mu      sync.Mutex
	saves   int
}

// NewMemoryBackend creates a [MemoryBackend] holding entries.
func NewMemoryBackend(entries ...Entry) *MemoryBackend {
	return &MemoryBackend{entries: slices.Clone(entries)}
}

// Load returns the stored entries.
func (b *MemoryBackend) Load() ([]Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.loadErr != nil {
		return nil, b.loadErr
	}

	return slices.Clone(b.entries), nil
}

// Save replaces the stored entries, unless the injected save hook fails.
func (b *MemoryBackend) Save(entries []Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.saveErr != nil {
		err := b.saveErr(entries)
		if err != nil {
			return err
		}
	}

	b.entries = slices.Clone(entries)
	b.saves++

	return nil
}

// FailSave installs fn, which is called with the entries of every save. A
// non-nil result fails the save. Pass nil to remove the hook.
func (b *MemoryBackend) FailSave(fn func(entries []Entry) error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.saveErr = fn
}

// FailLoad makes subsequent loads fail with err. Pass nil to reset.
func (b *MemoryBackend) FailLoad(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.loadErr = err
}

// Set replaces the stored entries without going through a [Store], as an
// external writer would.
func (b *MemoryBackend) Set(entries ...Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = slices.Clone(entries)
}

// Saves returns the number of successful saves.
func (b *MemoryBackend) Saves() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.saves
}

// FileBackend persists overrides in the FileTypeOverrides document of a
// workspace.
type FileBackend struct {
	path string
	mu   sync.Mutex
}

// NewFileBackend creates a [FileBackend] for the workspace at root.
func NewFileBackend(root string) *FileBackend {
	return &FileBackend{path: overrides.GetPath(root)}
}

// Path returns the path of the backing document.
func (b *FileBackend) Path() string {
	return b.path
}

// Load reads and validates the backing document. A missing document holds
// no overrides.
func (b *FileBackend) Load() ([]Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, _, err := config.LoadFile(b.path, overrides.New, overrides.DefaultValidator,
		config.WithKinds(overrides.ValidKinds...),
	)
	if err != nil {
		return nil, err //nolint:wrapcheck // Already descriptive.
	}

	entries := make([]Entry, 0, len(doc.Files))

	for _, f := range doc.Files {
		id, err := NewFileID("", f.Path)
		if err != nil {
			slog.Warn("skip override", slog.String("path", f.Path), slog.Any("err", err))

			continue
		}

		if f.Token != "" && f.Token != id.Token {
			slog.Debug("override token does not match path, using path",
				slog.String("path", id.Path),
				slog.String("token", f.Token),
			)
		}

		entries = append(entries, Entry{File: id, Type: f.Type})
	}

	return entries, nil
}

// Save writes entries to the backing document. Comments and unrelated
// content of an existing document are preserved.
func (b *FileBackend) Save(entries []Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	files := make([]*overrides.File, 0, len(entries))
	for _, e := range entries {
		files = append(files, &overrides.File{Path: e.File.Path, Token: e.File.Token, Type: e.Type})
	}

	var data []byte

	existing, err := api.ReadFile(b.path)

	switch {
	case errors.Is(err, fs.ErrNotExist):
		doc := overrides.New()
		doc.Files = files

		data, err = doc.MarshalYAML()
		if err != nil {
			return err //nolint:wrapcheck // Already descriptive.
		}

	case err != nil:
		return err //nolint:wrapcheck // Already descriptive.

	default:
		data, err = yaml.SetKey(existing, "files", files)
		if err != nil {
			return fmt.Errorf("merge overrides: %w", err)
		}
	}

	err = api.WriteFileAtomic(b.path, data)
	if err != nil {
		return fmt.Errorf("write overrides: %w", err)
	}

	return nil
}

// Watch calls onChange whenever the backing document is created, written,
// renamed or removed, until ctx is done. Changes made through [FileBackend.Save]
// are reported too.
func (b *FileBackend) Watch(ctx context.Context, onChange func()) error {
	dir := filepath.Dir(b.path)

	err := os.MkdirAll(dir, 0o700)
	if err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck // Best effort.

	// Watch the directory, since atomic writes replace the file.
	err = watcher.Add(dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	const ops = fsnotify.Create | fsnotify.Write | fsnotify.Rename | fsnotify.Remove

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != b.path || !ev.Op.Has(ops) {
				continue
			}

			slog.Debug("overrides file changed",
				slog.String("path", ev.Name),
				slog.String("op", ev.Op.String()),
			)

			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			slog.Warn("watch overrides", slog.Any("err", err))
		}
	}
}
