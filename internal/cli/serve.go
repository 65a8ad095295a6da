package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/macropower/folio/pkg/mcp"
)

type ServeArgs struct {
	*RootArgs

	Address string
	NoWatch bool
}

func (sa *ServeArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sa.Address, "address", "", "Serve streamable HTTP at the address instead of stdio")
	cmd.Flags().BoolVar(&sa.NoWatch, "no-watch", false, "Do not reload overrides when the overrides file changes")
}

func NewServeCmd(ra *RootArgs) *cobra.Command {
	sa := &ServeArgs{RootArgs: ra}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the file type override tools over MCP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := openWorkspace(cmd.Context(), sa.RootArgs)
			if err != nil {
				return err
			}
			defer ws.Close()

			srv := mcp.NewServer(ws, mcp.WithAddress(sa.Address))

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			g, ctx := errgroup.WithContext(ctx)

			if !sa.NoWatch {
				g.Go(func() error {
					return ws.Backend().Watch(ctx, func() { //nolint:wrapcheck // Already descriptive.
						err := ws.Overrides().Reload()
						if err != nil {
							slog.Warn("reload overrides", slog.Any("err", err))
						}
					})
				})
			}

			g.Go(func() error {
				defer cancel()

				return srv.Serve(ctx) //nolint:wrapcheck // Already descriptive.
			})

			return g.Wait() //nolint:wrapcheck // Already descriptive.
		},
	}

	sa.AddFlags(cmd)

	return cmd
}
