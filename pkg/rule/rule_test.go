package rule_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/folio/pkg/rule"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		match   string
		wantErr error
		errText string
	}{
		"valid rule": {
			match: `files.exists(f, pathBase(f) == "go.mod")`,
		},
		"valid rule using wizard": {
			match: `wizard && files.size() == 0`,
		},
		"invalid CEL expression": {
			match:   "path.invalidFunction()",
			errText: "path.invalidFunction()",
		},
		"empty match": {
			match:   "",
			wantErr: rule.ErrEmptyMatch,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r, err := rule.New(tc.match)

			switch {
			case tc.wantErr != nil:
				require.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, r)
			case tc.errText != "":
				require.ErrorContains(t, err, tc.errText)
				assert.Nil(t, r)
			default:
				require.NoError(t, err)
				assert.Equal(t, tc.match, r.Match)
				assert.Equal(t, tc.match, r.String())
			}
		})
	}
}

func TestMustNew(t *testing.T) {
	t.Parallel()

	assert.NotNil(t, rule.MustNew(`true`))
	assert.Panics(t, func() { rule.MustNew(`files.exists(`) })
}

func TestRule_MatchFolder(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		match  string
		folder *rule.Folder
		want   bool
	}{
		"go module": {
			match: `files.exists(f, pathBase(f) == "go.mod")`,
			folder: &rule.Folder{
				Dir:   "/src",
				Files: []string{"/src/go.mod", "/src/main.go"},
			},
			want: true,
		},
		"no python": {
			match: `files.exists(f, pathExt(f) == ".py")`,
			folder: &rule.Folder{
				Dir:   "/src",
				Files: []string{"/src/go.mod"},
			},
			want: false,
		},
		"wizard folder": {
			match:  `wizard`,
			folder: &rule.Folder{Dir: "/src", Wizard: true},
			want:   true,
		},
		"evaluation error is no match": {
			match:  `files[3] == "x"`,
			folder: &rule.Folder{Dir: "/src", Files: []string{"/src/a"}},
			want:   false,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r := rule.MustNew(tc.match)
			assert.Equal(t, tc.want, r.MatchFolder(tc.folder))
		})
	}
}

func TestRule_MatchFiles(t *testing.T) {
	t.Parallel()

	r := rule.MustNew(`dir == "/src" && files.exists(f, pathMatch("*.tf", f))`)
	assert.True(t, r.MatchFiles("/src", []string{"/src/main.tf"}))
	assert.False(t, r.MatchFiles("/other", []string{"/other/main.tf"}))
}

func TestRule_MatchFolderPanicsWithoutCompile(t *testing.T) {
	t.Parallel()

	r := &rule.Rule{Match: "true"}
	assert.Panics(t, func() { r.MatchFolder(&rule.Folder{}) })

	require.NoError(t, r.CompileMatch())
	assert.True(t, r.MatchFolder(&rule.Folder{}))
}

func TestListFolder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, p := range []string{
		"go.mod",
		"cmd/app/main.go",
		"cmd/app/internal/deep.go",
		".git/HEAD",
		"node_modules/pkg/index.js",
		"build-cache/out.o",
	} {
		full := filepath.Join(dir, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o700))
		require.NoError(t, os.WriteFile(full, nil, 0o600))
	}

	tcs := map[string]struct {
		opts rule.ListOptions
		want []string
	}{
		"root only": {
			opts: rule.ListOptions{MaxDepth: 0, Exclude: rule.DefaultExclude},
			want: []string{"go.mod"},
		},
		"two levels": {
			opts: rule.ListOptions{MaxDepth: 2, Exclude: rule.DefaultExclude},
			want: []string{"build-cache/out.o", "cmd/app/main.go", "go.mod"},
		},
		"glob exclude": {
			opts: rule.ListOptions{MaxDepth: 5, Exclude: append([]string{"build-*"}, rule.DefaultExclude...)},
			want: []string{"cmd/app/internal/deep.go", "cmd/app/main.go", "go.mod"},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			folder, err := rule.ListFolder(dir, tc.opts)
			require.NoError(t, err)
			assert.Equal(t, dir, folder.Dir)

			got := make([]string, 0, len(folder.Files))
			for _, f := range folder.Files {
				rel, err := filepath.Rel(dir, f)
				require.NoError(t, err)

				got = append(got, filepath.ToSlash(rel))
			}

			assert.Equal(t, tc.want, got)
		})
	}

	_, err := rule.ListFolder(filepath.Join(dir, "missing"), rule.ListOptions{})
	require.Error(t, err)
}
