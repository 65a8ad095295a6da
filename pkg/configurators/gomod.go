package configurators

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"

	"github.com/macropower/folio/pkg/configurator"
)

// GoModName is the name of the gomod configurator.
const GoModName = "gomod"

// ErrNoModule is returned for a go.mod without a module directive.
var ErrNoModule = errors.New("go.mod has no module directive")

// GoModule returns the gomod configurator. When the folder holds a go.mod, it
// reports the module path and enables the "go" facet with the module path, Go
// version and toolchain.
func GoModule() (configurator.Descriptor, configurator.Handler) {
	return configurator.Background(GoModName), configureGoModule
}

func configureGoModule(ctx context.Context, req *configurator.Request) error {
	path := filepath.Join(req.BaseDir, "go.mod")

	//nolint:gosec // G304: Potential file inclusion via variable.
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read go.mod: %w", err)
	}

	f, err := modfile.Parse(path, data, nil)
	if err != nil {
		// Lax parsing only reads the module, go and require directives, but
		// tolerates broken replace or exclude blocks.
		lax, laxErr := modfile.ParseLax(path, data, nil)
		if laxErr != nil {
			return fmt.Errorf("parse go.mod: %w", err)
		}

		f = lax
	}

	if f.Module == nil || f.Module.Mod.Path == "" {
		return ErrNoModule
	}

	settings := map[string]string{"module": f.Module.Mod.Path}
	if f.Go != nil {
		settings["go"] = f.Go.Version
	}
	if f.Toolchain != nil {
		settings["toolchain"] = f.Toolchain.Name
	}

	req.SetModule(ctx, f.Module.Mod.Path)
	req.Project.EnableFacet("go", settings)

	return nil
}
