package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/folio/api/v1beta1"
	"github.com/macropower/folio/api/v1beta1/configs"
	"github.com/macropower/folio/api/v1beta1/projects"
	"github.com/macropower/folio/pkg/config"
)

func createTempFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestNewLoaderFromFile(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		setupFile func(t *testing.T) string
		wantErr   bool
	}{
		"valid file": {
			setupFile: func(t *testing.T) string {
				t.Helper()

				return createTempFile(t, "apiVersion: folio.jacobcolvin.com/v1beta1\nkind: Configuration\n")
			},
		},
		"non-existent file": {
			setupFile: func(t *testing.T) string {
				t.Helper()

				return filepath.Join(t.TempDir(), "missing.yaml")
			},
			wantErr: true,
		},
		"directory instead of file": {
			setupFile: func(t *testing.T) string {
				t.Helper()

				return t.TempDir()
			},
			wantErr: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := config.NewLoaderFromFile(tc.setupFile(t), configs.New, configs.DefaultValidator)
			if tc.wantErr {
				require.Error(t, err)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.NotNil(t, got)
		})
	}
}

func TestLoader_Validate(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input   string
		wantErr bool
	}{
		"valid": {
			input: "apiVersion: folio.jacobcolvin.com/v1beta1\nkind: Configuration\n",
		},
		"invalid api version": {
			input:   "apiVersion: v0\nkind: Configuration\n",
			wantErr: true,
		},
		"invalid yaml": {
			input:   "apiVersion: [\n",
			wantErr: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := config.NewLoaderFromBytes([]byte(tc.input), configs.New, configs.DefaultValidator).Validate()
			if tc.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestLoader_Load(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input    string
		opts     []config.LoaderOpt
		wantKind error
		wantErr  bool
	}{
		"valid": {
			input: "apiVersion: folio.jacobcolvin.com/v1beta1\nkind: Configuration\n",
			opts:  []config.LoaderOpt{config.WithKinds(configs.ValidKinds...)},
		},
		"kind mismatch": {
			input:    "apiVersion: folio.jacobcolvin.com/v1beta1\nkind: Project\n",
			opts:     []config.LoaderOpt{config.WithKinds(configs.ValidKinds...)},
			wantKind: v1beta1.ErrTypeMeta,
		},
		"missing apiVersion": {
			input:    "kind: Configuration\n",
			opts:     []config.LoaderOpt{config.WithKinds(configs.ValidKinds...)},
			wantKind: v1beta1.ErrTypeMeta,
		},
		"missing kind": {
			input:    "apiVersion: folio.jacobcolvin.com/v1beta1\n",
			opts:     []config.LoaderOpt{config.WithKinds(configs.ValidKinds...)},
			wantKind: v1beta1.ErrTypeMeta,
		},
		"kind not checked": {
			input: "apiVersion: folio.jacobcolvin.com/v1beta1\nkind: Project\n",
		},
		"bad type": {
			input:   "apiVersion: folio.jacobcolvin.com/v1beta1\nkind: Configuration\ndispatch: []\n",
			wantErr: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg, err := config.NewLoaderFromBytes([]byte(tc.input), configs.New, nil, tc.opts...).Load()

			switch {
			case tc.wantKind != nil:
				require.ErrorIs(t, err, tc.wantKind)
			case tc.wantErr:
				require.Error(t, err)
			default:
				require.NoError(t, err)
				assert.NotNil(t, cfg.Dispatch)
			}
		})
	}
}

type recordingValidator struct {
	err    error
	called bool
}

func (v *recordingValidator) Validate(any) error {
	v.called = true

	return v.err
}

func TestLoader_WithValidator(t *testing.T) {
	t.Parallel()

	v := &recordingValidator{err: errors.New("rejected")}
	l := config.NewLoaderFromBytes(
		[]byte("apiVersion: folio.jacobcolvin.com/v1beta1\nkind: Configuration\n"),
		configs.New, configs.DefaultValidator,
		config.WithValidator(v),
	)

	err := l.Validate()
	require.ErrorContains(t, err, "rejected")
	assert.True(t, v.called)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	t.Run("missing file returns default", func(t *testing.T) {
		t.Parallel()

		doc, found, err := config.LoadFile(filepath.Join(t.TempDir(), "project.yaml"),
			projects.NewEmpty, projects.DefaultValidator)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, projects.Kind, doc.GetKind())
	})

	t.Run("invalid file", func(t *testing.T) {
		t.Parallel()

		path := createTempFile(t, "apiVersion: folio.jacobcolvin.com/v1beta1\nkind: Project\nunknown: 1\n")

		_, found, err := config.LoadFile(path, projects.NewEmpty, projects.DefaultValidator)
		require.ErrorContains(t, err, "validate")
		assert.True(t, found)
	})

	t.Run("valid file", func(t *testing.T) {
		t.Parallel()

		path := createTempFile(t, "apiVersion: folio.jacobcolvin.com/v1beta1\nkind: Project\nname: demo\n")

		doc, found, err := config.LoadFile(path, projects.NewEmpty, projects.DefaultValidator,
			config.WithKinds(projects.ValidKinds...),
		)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "demo", doc.Name)
	})
}
