package override_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/folio/pkg/override"
)

func TestFileBackend_RoundTrip(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	backend := override.NewFileBackend(root)
	assert.Equal(t, filepath.Join(root, ".folio", "overrides.yaml"), backend.Path())

	// A missing file holds no overrides.
	entries, err := backend.Load()
	require.NoError(t, err)
	assert.Empty(t, entries)

	s, err := override.NewStore(backend)
	require.NoError(t, err)

	require.NoError(t, s.Set(file("docs/notes.txt"), "Markdown"))
	require.NoError(t, s.Set(file("build.conf"), "INI"))

	// A new store sees the persisted overrides.
	reopened, err := override.NewStore(override.NewFileBackend(root))
	require.NoError(t, err)

	got, ok := reopened.Get(file("docs/notes.txt"))
	require.True(t, ok)
	assert.Equal(t, "Markdown", got)
	assert.Equal(t, 2, reopened.Len())

	removed, err := reopened.Remove(file("build.conf"))
	require.NoError(t, err)
	assert.True(t, removed)

	entries, err = backend.Load()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, file("docs/notes.txt"), entries[0].File)
}

func TestFileBackend_PreservesComments(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	backend := override.NewFileBackend(root)

	require.NoError(t, os.MkdirAll(filepath.Dir(backend.Path()), 0o700))
	require.NoError(t, os.WriteFile(backend.Path(), []byte(`# Managed by folio.
apiVersion: folio.jacobcolvin.com/v1beta1
kind: FileTypeOverrides
files:
  - path: a.txt
    type: Go
`), 0o600))

	s, err := override.NewStore(backend)
	require.NoError(t, err)
	require.NoError(t, s.Set(file("b.txt"), "YAML"))

	data, err := os.ReadFile(backend.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Managed by folio.")
	assert.Contains(t, string(data), "path: b.txt")

	entries, err := backend.Load()
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestFileBackend_LoadErrors(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		content string
	}{
		"invalid yaml": {
			content: "files: [",
		},
		"schema violation": {
			content: `apiVersion: folio.jacobcolvin.com/v1beta1
kind: FileTypeOverrides
files:
  - path: a.txt
`,
		},
		"missing apiVersion": {
			content: "kind: FileTypeOverrides\nfiles: []\n",
		},
		"wrong kind": {
			content: `apiVersion: folio.jacobcolvin.com/v1beta1
kind: Project
`,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			backend := override.NewFileBackend(t.TempDir())
			require.NoError(t, os.MkdirAll(filepath.Dir(backend.Path()), 0o700))
			require.NoError(t, os.WriteFile(backend.Path(), []byte(tc.content), 0o600))

			_, err := backend.Load()
			require.Error(t, err)
		})
	}
}

func TestFileBackend_SkipsPathsOutsideRoot(t *testing.T) {
	t.Parallel()

	backend := override.NewFileBackend(t.TempDir())
	require.NoError(t, os.MkdirAll(filepath.Dir(backend.Path()), 0o700))
	require.NoError(t, os.WriteFile(backend.Path(), []byte(`apiVersion: folio.jacobcolvin.com/v1beta1
kind: FileTypeOverrides
files:
  - path: ../escape.txt
    type: Go
  - path: ok.txt
    token: stale
    type: Go
`), 0o600))

	entries, err := backend.Load()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, file("ok.txt"), entries[0].File)
}

func TestFileBackend_Watch(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	backend := override.NewFileBackend(root)

	s, err := override.NewStore(backend)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	changed := make(chan struct{}, 16)
	done := make(chan error, 1)

	go func() {
		done <- backend.Watch(ctx, func() { changed <- struct{}{} })
	}()

	// Writes from another store, as another process would make them.
	writer, err := override.NewStore(override.NewFileBackend(root))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		assert.NoError(t, writer.Set(file("a.txt"), "Go"))

		select {
		case <-changed:
			return true
		default:
			return false
		}
	}, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, s.Reload())

	got, ok := s.Get(file("a.txt"))
	require.True(t, ok)
	assert.Equal(t, "Go", got)

	cancel()
	require.NoError(t, <-done)
}
