package workspace_test

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/folio/api/v1beta1/configs"
	"github.com/macropower/folio/api/v1beta1/projects"
	"github.com/macropower/folio/pkg/configurator"
	"github.com/macropower/folio/pkg/configurators"
	"github.com/macropower/folio/pkg/filetype"
	"github.com/macropower/folio/pkg/override"
	"github.com/macropower/folio/pkg/workspace"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o700))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
}

func testConfig() *configs.Config {
	cfg := configs.New()
	cfg.Folders.Configurators = []*configurators.RuleConfig{
		{
			Name:    "python",
			Match:   `files.exists(f, pathBase(f) == "pyproject.toml")`,
			Module:  "py-$PROJECT",
			Primary: true,
			Facets:  []*configurators.FacetConfig{{Name: "python"}},
		},
	}
	cfg.Folders.Overrides = []*configurators.OverridePattern{
		{Pattern: "Jenkinsfile", Type: "Groovy"},
	}

	return cfg
}

func TestOpen(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		files      map[string]string
		wantModule string
		wantFacets []string
		wantFailed int
	}{
		"empty folder": {
			files: map[string]string{},
		},
		"go module": {
			files: map[string]string{
				"go.mod": "module example.com/demo\n\ngo 1.25\n",
			},
			wantModule: "example.com/demo",
			wantFacets: []string{"go"},
		},
		"rule module wins over earlier gomod": {
			files: map[string]string{
				"go.mod":         "module example.com/demo\n",
				"pyproject.toml": "",
			},
			wantModule: "py-app",
			wantFacets: []string{"go", "python"},
		},
		"broken go.mod does not fail open": {
			files: map[string]string{
				"go.mod":         "this is not a go.mod {",
				"pyproject.toml": "",
			},
			wantModule: "py-app",
			wantFacets: []string{"python"},
			wantFailed: 1,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			root := filepath.Join(t.TempDir(), "app")
			require.NoError(t, os.Mkdir(root, 0o700))
			writeFiles(t, root, tc.files)

			ws, err := workspace.Open(t.Context(), root, workspace.WithConfig(testConfig()))
			require.NoError(t, err)
			t.Cleanup(ws.Close)

			report := ws.Report()
			require.NotNil(t, report)
			assert.Len(t, report.Failed(), tc.wantFailed)

			p := ws.Project()
			assert.Equal(t, "app", p.Name)
			assert.Equal(t, tc.wantModule, p.Module)

			var facets []string
			for _, f := range p.Facets {
				facets = append(facets, f.Name)
			}

			assert.Equal(t, tc.wantFacets, facets)

			_, err = os.Stat(projects.GetPath(root))
			require.NoError(t, err)
		})
	}
}

func TestOpen_SecondOpenDoesNotDispatch(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root, map[string]string{"go.mod": "module example.com/demo\n"})

	var calls atomic.Int32

	newDispatcher := func(t *testing.T) *configurator.Dispatcher {
		t.Helper()

		reg := configurator.NewRegistry()
		reg.MustRegister(configurator.Background("count"), func(context.Context, *configurator.Request) error {
			calls.Add(1)

			return nil
		})

		d := configurator.NewDispatcher(reg)
		t.Cleanup(d.Close)

		return d
	}

	ws, err := workspace.Open(t.Context(), root, workspace.WithDispatcher(newDispatcher(t)))
	require.NoError(t, err)
	ws.Close()
	assert.Equal(t, int32(1), calls.Load())

	ws, err = workspace.Open(t.Context(), root, workspace.WithDispatcher(newDispatcher(t)))
	require.NoError(t, err)
	ws.Close()
	assert.Equal(t, int32(1), calls.Load())
	assert.Nil(t, ws.Report())

	ws, err = workspace.Open(t.Context(), root,
		workspace.WithDispatcher(newDispatcher(t)),
		workspace.WithReconfigure(true),
	)
	require.NoError(t, err)
	ws.Close()
	assert.Equal(t, int32(2), calls.Load())
}

func TestOpen_Wizard(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	var sawWizard atomic.Bool

	reg := configurator.NewRegistry()
	reg.MustRegister(configurator.Primary("wizard"), func(_ context.Context, req *configurator.Request) error {
		sawWizard.Store(req.CreatedByWizard)

		return nil
	})

	d := configurator.NewDispatcher(reg)
	t.Cleanup(d.Close)

	ws, err := workspace.Open(t.Context(), root, workspace.WithDispatcher(d), workspace.WithWizard(true))
	require.NoError(t, err)
	t.Cleanup(ws.Close)

	assert.True(t, sawWizard.Load())
	assert.True(t, ws.Project().CreatedByWizard)
}

func TestOpen_DefaultOverridesPersist(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"Jenkinsfile":     "pipeline {}",
		"ci/Jenkinsfile":  "pipeline {}",
		"docs/readme.txt": "",
	})

	ws, err := workspace.Open(t.Context(), root, workspace.WithConfig(testConfig()))
	require.NoError(t, err)
	ws.Close()

	ws, err = workspace.Open(t.Context(), root)
	require.NoError(t, err)
	t.Cleanup(ws.Close)

	assert.Equal(t, 2, ws.Overrides().Len())

	id, err := ws.FileID("ci/Jenkinsfile")
	require.NoError(t, err)

	res := ws.Types().Effective(id)
	assert.Equal(t, "Groovy", res.Type)
	assert.Equal(t, filetype.SourceOverride, res.Source)
}

func TestOpen_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing folder", func(t *testing.T) {
		t.Parallel()

		_, err := workspace.Open(t.Context(), filepath.Join(t.TempDir(), "missing"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("file instead of folder", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "file.txt")
		require.NoError(t, os.WriteFile(path, nil, 0o600))

		_, err := workspace.Open(t.Context(), path)
		require.ErrorIs(t, err, workspace.ErrNotDirectory)
	})

	t.Run("invalid project document", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeFiles(t, root, map[string]string{".folio/project.yaml": "kind: Project\n"})

		_, err := workspace.Open(t.Context(), root)
		require.Error(t, err)
	})
}

func TestWorkspace_FileID(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	reg := configurator.NewRegistry()
	d := configurator.NewDispatcher(reg)
	t.Cleanup(d.Close)

	ws, err := workspace.Open(t.Context(), root, workspace.WithDispatcher(d))
	require.NoError(t, err)
	t.Cleanup(ws.Close)

	rel, err := ws.FileID("a/b.txt")
	require.NoError(t, err)

	abs, err := ws.FileID(filepath.Join(root, "a", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, rel, abs)

	_, err = ws.FileID("../outside.txt")
	require.ErrorIs(t, err, override.ErrOutsideRoot)
}
