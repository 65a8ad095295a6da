package api_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/folio/api"
)

//nolint:paralleltest // We need to set environment variables, so run tests sequentially.
func TestGetConfigPath(t *testing.T) {
	tcs := map[string]struct {
		setupEnv func(t *testing.T)
		want     string
	}{
		"XDG_CONFIG_HOME is set": {
			setupEnv: func(t *testing.T) {
				t.Helper()
				t.Setenv("XDG_CONFIG_HOME", "/custom/config")
			},
			want: "/custom/config/folio/config.yaml",
		},
		"XDG_CONFIG_HOME is empty and HOME is set": {
			setupEnv: func(t *testing.T) {
				t.Helper()
				t.Setenv("XDG_CONFIG_HOME", "")
				t.Setenv("HOME", "/test/home")
			},
			want: "/test/home/.config/folio/config.yaml",
		},
		"XDG_CONFIG_HOME is empty and HOME is empty": {
			setupEnv: func(t *testing.T) {
				t.Helper()
				t.Setenv("XDG_CONFIG_HOME", "")
				t.Setenv("HOME", "")
			},
			want: filepath.Join(os.TempDir(), "folio", "config.yaml"), //nolint:usetesting // Needs to equal host.
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			tc.setupEnv(t)

			assert.Equal(t, tc.want, api.GetConfigPath("config.yaml"))
		})
	}
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o600))

	got, err := api.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "content", string(got))

	_, err = api.ReadFile(dir)
	require.ErrorContains(t, err, "path is a directory")

	_, err = api.ReadFile(filepath.Join(dir, "missing"))
	require.ErrorContains(t, err, "stat file")
}

func TestMarshalYAML(t *testing.T) {
	t.Parallel()

	obj := struct {
		Name  string   `json:"name"`
		Items []string `json:"items"`
	}{
		Name:  "demo",
		Items: []string{"a", "b"},
	}

	data, err := api.MarshalYAML(obj)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: demo")
	assert.Contains(t, string(data), "  - a")
}

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "dir", "file.yaml")

	require.NoError(t, api.WriteFileAtomic(path, []byte("one")))
	require.NoError(t, api.WriteFileAtomic(path, []byte("two")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))
}

func TestWriteIfNotExists(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		setup   func(t *testing.T, path string)
		want    string
		wantErr string
	}{
		"creates missing file": {
			setup: func(t *testing.T, _ string) { t.Helper() },
			want:  "new content",
		},
		"keeps existing file": {
			setup: func(t *testing.T, path string) {
				t.Helper()
				require.NoError(t, os.WriteFile(path, []byte("old content"), 0o600))
			},
			want: "old content",
		},
		"rejects directory": {
			setup: func(t *testing.T, path string) {
				t.Helper()
				require.NoError(t, os.Mkdir(path, 0o700))
			},
			wantErr: "path is a directory",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "file.yaml")
			tc.setup(t, path)

			err := api.WriteIfNotExists(path, []byte("new content"))
			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)

				return
			}

			require.NoError(t, err)

			got, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(got))
		})
	}
}

func TestWriteDefaultFile(t *testing.T) {
	t.Parallel()

	t.Run("force backs up existing file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))

		require.NoError(t, api.WriteDefaultFile(path, []byte("default"), true, "test"))

		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "default", string(got))

		backups, err := filepath.Glob(filepath.Join(dir, "config.yaml.*.old"))
		require.NoError(t, err)
		assert.Len(t, backups, 1)
	})

	t.Run("without force keeps existing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))

		require.NoError(t, api.WriteDefaultFile(path, []byte("default"), false, "test"))

		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "old", string(got))
	})
}

func TestFindUp(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o700))
	require.NoError(t, os.MkdirAll(filepath.Join(root, api.MetadataDir), 0o700))

	got, err := api.FindUp(nested, api.MetadataDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, api.MetadataDir), got)

	got, err = api.FindUp(nested, "does-not-exist.yaml")
	require.NoError(t, err)
	assert.Empty(t, got)
}
