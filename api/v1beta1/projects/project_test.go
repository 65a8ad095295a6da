package projects_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/folio/api/v1beta1"
	"github.com/macropower/folio/api/v1beta1/projects"
	"github.com/macropower/folio/pkg/config"
)

func TestNew(t *testing.T) {
	t.Parallel()

	p := projects.New("demo")
	assert.Equal(t, v1beta1.APIVersion, p.GetAPIVersion())
	assert.Equal(t, projects.Kind, p.GetKind())
	assert.Equal(t, "demo", p.Name)
	assert.NotNil(t, p.Facets)
}

func TestProject_EnableFacet(t *testing.T) {
	t.Parallel()

	p := projects.New("demo")

	settings := map[string]string{"module": "example.com/demo"}
	p.EnableFacet("python", nil)
	p.EnableFacet("go", settings)

	// Settings are copied.
	settings["module"] = "changed"

	require.Len(t, p.Facets, 2)
	assert.Equal(t, "go", p.Facets[0].Name)
	assert.Equal(t, "python", p.Facets[1].Name)

	f, ok := p.Facet("go")
	require.True(t, ok)
	assert.Equal(t, "example.com/demo", f.Settings["module"])

	p.EnableFacet("go", map[string]string{"go": "1.25"})
	require.Len(t, p.Facets, 2)

	f, _ = p.Facet("go")
	assert.Equal(t, map[string]string{"go": "1.25"}, f.Settings)

	_, ok = p.Facet("rust")
	assert.False(t, ok)
}

func TestProject_WriteAndLoad(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := projects.GetPath(root)

	p := projects.New("demo")
	p.Module = "example.com/demo"
	p.CreatedByWizard = true
	p.EnableFacet("go", map[string]string{"go": "1.25"})

	require.NoError(t, p.Write(path))

	_, err := os.Stat(filepath.Join(root, ".folio"))
	require.NoError(t, err)

	loaded, found, err := config.LoadFile(path, projects.NewEmpty, projects.DefaultValidator,
		config.WithKinds(projects.ValidKinds...),
	)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "demo", loaded.Name)
	assert.Equal(t, "example.com/demo", loaded.Module)
	assert.True(t, loaded.CreatedByWizard)

	f, ok := loaded.Facet("go")
	require.True(t, ok)
	assert.Equal(t, "1.25", f.Settings["go"])
}

func TestDefaultValidator(t *testing.T) {
	t.Parallel()

	err := config.NewLoaderFromBytes([]byte(`apiVersion: folio.jacobcolvin.com/v1beta1
kind: Project
name: demo
facets:
  - settings:
      go: "1.25"
`), projects.NewEmpty, projects.DefaultValidator).Validate()
	require.Error(t, err)
}

func TestDefaultValidator_RequiresTypeMeta(t *testing.T) {
	t.Parallel()

	tcs := map[string]string{
		"missing apiVersion": "kind: Project\nname: demo\n",
		"missing kind":       "apiVersion: folio.jacobcolvin.com/v1beta1\nname: demo\n",
	}

	for name, input := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := config.NewLoaderFromBytes([]byte(input), projects.NewEmpty, projects.DefaultValidator).Validate()
			require.Error(t, err)
		})
	}
}
