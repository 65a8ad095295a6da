package configurators

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/macropower/folio/pkg/configurator"
	"github.com/macropower/folio/pkg/log"
)

// NewRuleConfigurator returns the configurator declared by rc. Folders are
// listed through lister.
func NewRuleConfigurator(rc *RuleConfig, lister *Lister) (configurator.Descriptor, configurator.Handler, error) {
	err := rc.CompileMatch()
	if err != nil {
		return configurator.Descriptor{}, nil, err
	}

	desc := configurator.Background(rc.Name)
	if rc.Primary {
		desc = configurator.Primary(rc.Name)
	}

	h := func(ctx context.Context, req *configurator.Request) error {
		folder, err := lister.Folder(req)
		if err != nil {
			return fmt.Errorf("list folder: %w", err)
		}

		if !rc.rule.MatchFolder(folder) {
			return nil
		}

		log.WithContext(ctx).Debug("rule matched",
			slog.String("configurator", rc.Name),
			slog.String("dir", req.BaseDir),
		)

		for _, f := range rc.Facets {
			req.Project.EnableFacet(f.Name, f.Settings)
		}

		if rc.Module != "" {
			req.SetModule(ctx, expandModule(rc.Module, req))
		}

		return nil
	}

	return desc, h, nil
}

func expandModule(module string, req *configurator.Request) string {
	return os.Expand(module, func(key string) string {
		switch key {
		case "DIR":
			return filepath.Base(req.BaseDir)
		case "PROJECT":
			return req.Project.Name()
		}

		return ""
	})
}
