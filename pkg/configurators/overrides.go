package configurators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/macropower/folio/pkg/configurator"
	"github.com/macropower/folio/pkg/log"
	"github.com/macropower/folio/pkg/override"
)

// DefaultOverridesName is the name of the default-overrides configurator.
const DefaultOverridesName = "default-overrides"

// DefaultOverrides returns the default-overrides configurator. It assigns the
// type of the first matching pattern to every listed file that has no
// override yet.
func DefaultOverrides(patterns []*OverridePattern, lister *Lister) (configurator.Descriptor, configurator.Handler) {
	h := func(ctx context.Context, req *configurator.Request) error {
		store := req.Project.Overrides()
		if store == nil || len(patterns) == 0 {
			return nil
		}

		folder, err := lister.Folder(req)
		if err != nil {
			return fmt.Errorf("list folder: %w", err)
		}

		logger := log.WithContext(ctx)

		var errs []error

		for _, p := range folder.Files {
			id, err := override.NewFileID(req.BaseDir, p)
			if err != nil {
				continue
			}

			op := matchPattern(patterns, id)
			if op == nil || store.Has(id) {
				continue
			}

			err = store.Set(id, op.Type)
			if err != nil {
				errs = append(errs, err)

				continue
			}

			logger.Debug("seeded file type override",
				slog.String("file", id.Path),
				slog.String("type", op.Type),
			)
		}

		return errors.Join(errs...)
	}

	return configurator.Background(DefaultOverridesName), h
}

func matchPattern(patterns []*OverridePattern, id override.FileID) *OverridePattern {
	for _, op := range patterns {
		target := id.Name()
		if strings.Contains(op.Pattern, "/") {
			target = id.Path
		}

		if ok, err := path.Match(op.Pattern, target); err == nil && ok {
			return op
		}
	}

	return nil
}
