package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/macropower/folio/api"
	"github.com/macropower/folio/api/v1beta1/configs"
	"github.com/macropower/folio/pkg/config"
	"github.com/macropower/folio/pkg/override"
	"github.com/macropower/folio/pkg/workspace"
)

// loadConfig loads the global configuration. A missing file yields the
// default configuration.
func loadConfig(ra *RootArgs) (*configs.Config, error) {
	path := ra.ConfigPath
	if path == "" {
		path = configs.GetPath()
	}

	cfg, found, err := config.LoadFile(path, configs.New, configs.DefaultValidator,
		config.WithKinds(configs.ValidKinds...),
	)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if !found {
		slog.Debug("config file not found, using defaults", slog.String("path", path))
	}

	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// findRoot returns the workspace root for dir: the nearest directory at or
// above dir holding workspace metadata, or dir itself.
func findRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}

	meta, err := api.FindUp(abs, api.MetadataDir)
	if err != nil {
		return "", fmt.Errorf("find workspace: %w", err)
	}

	if meta == "" {
		return abs, nil
	}

	return filepath.Dir(meta), nil
}

// openWorkspace opens the workspace containing ra.Dir.
func openWorkspace(ctx context.Context, ra *RootArgs, opts ...workspace.Option) (*workspace.Workspace, error) {
	root, err := findRoot(ra.Dir)
	if err != nil {
		return nil, err
	}

	return openWorkspaceAt(ctx, ra, root, opts...)
}

// openWorkspaceAt opens the workspace at root.
func openWorkspaceAt(
	ctx context.Context,
	ra *RootArgs,
	root string,
	opts ...workspace.Option,
) (*workspace.Workspace, error) {
	cfg, err := loadConfig(ra)
	if err != nil {
		return nil, err
	}

	ws, err := workspace.Open(ctx, root, append([]workspace.Option{workspace.WithConfig(cfg)}, opts...)...)
	if err != nil {
		return nil, err //nolint:wrapcheck // Already descriptive.
	}

	return ws, nil
}

// fileIDs resolves file arguments, which are relative to the working
// directory, to workspace file IDs.
func fileIDs(ws *workspace.Workspace, args []string) ([]override.FileID, error) {
	ids := make([]override.FileID, 0, len(args))

	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", arg, err)
		}

		id, err := ws.FileID(abs)
		if err != nil {
			return nil, err //nolint:wrapcheck // Already descriptive.
		}

		ids = append(ids, id)
	}

	return ids, nil
}
