package filetype_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/folio/pkg/filetype"
	"github.com/macropower/folio/pkg/override"
)

func TestDetector_Detect(t *testing.T) {
	t.Parallel()

	d := filetype.NewDetector()

	tcs := map[string]struct {
		input string
		want  string
	}{
		"go":          {input: "cmd/main.go", want: "Go"},
		"yaml":        {input: ".github/workflows/ci.yaml", want: "YAML"},
		"yml":         {input: "config.yml", want: "YAML"},
		"json":        {input: "package.json", want: "JSON"},
		"unknown ext": {input: "data.unknownext123", want: filetype.PlainText},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, d.Detect(tc.input))
		})
	}
}

func TestDetector_Canonical(t *testing.T) {
	t.Parallel()

	d := filetype.NewDetector()

	tcs := map[string]struct {
		input  string
		want   string
		wantOK bool
	}{
		"name":      {input: "Go", want: "Go", wantOK: true},
		"alias":     {input: "golang", want: "Go", wantOK: true},
		"lowercase": {input: "yaml", want: "YAML", wantOK: true},
		"extension": {input: "yml", want: "YAML", wantOK: true},
		"unknown":   {input: "definitely-not-a-type", want: "definitely-not-a-type"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, ok := d.Canonical(tc.input)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.wantOK, d.Known(tc.input))
		})
	}

	assert.Contains(t, d.Types(), "Go")
}

func TestResolver_Effective(t *testing.T) {
	t.Parallel()

	store, err := override.NewStore(override.NewMemoryBackend())
	require.NoError(t, err)

	r := filetype.NewResolver(store, filetype.NewDetector())
	defer r.Close()

	f := override.ParseFileID("notes/todo.go")

	assert.Equal(t, filetype.Resolution{Type: "Go", Source: filetype.SourceDetected}, r.Effective(f))

	// Setting an override invalidates the cached type.
	require.NoError(t, store.Set(f, "Markdown"))
	assert.Equal(t, filetype.Resolution{Type: "Markdown", Source: filetype.SourceOverride}, r.Effective(f))
	assert.Equal(t, "Go", r.Detected(f))

	// So does removing it.
	_, err = store.Remove(f)
	require.NoError(t, err)
	assert.Equal(t, filetype.Resolution{Type: "Go", Source: filetype.SourceDetected}, r.Effective(f))

	assert.Equal(t, "override", filetype.SourceOverride.String())
	assert.Equal(t, "detected", filetype.SourceDetected.String())
}

func TestResolver_Close(t *testing.T) {
	t.Parallel()

	store, err := override.NewStore(override.NewMemoryBackend())
	require.NoError(t, err)

	r := filetype.NewResolver(store, filetype.NewDetector())
	f := override.ParseFileID("main.go")

	assert.Equal(t, "Go", r.Effective(f).Type)

	r.Close()

	// Without a subscription the cached value is kept until invalidated.
	require.NoError(t, store.Set(f, "YAML"))
	assert.Equal(t, "Go", r.Effective(f).Type)

	r.Invalidate(f)
	assert.Equal(t, "YAML", r.Effective(f).Type)
}
