package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/macropower/folio/pkg/workspace"
)

type OpenArgs struct {
	*RootArgs

	Wizard      bool
	Reconfigure bool
}

func (oa *OpenArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&oa.Wizard, "wizard", false, "Mark the folder as just created by a project wizard")
	cmd.Flags().BoolVar(&oa.Reconfigure, "reconfigure", false, "Run the configurators even if the folder is already configured")
}

func NewOpenCmd(ra *RootArgs) *cobra.Command {
	oa := &OpenArgs{RootArgs: ra}

	cmd := &cobra.Command{
		Use:   "open [dir]",
		Short: "Open a folder, configuring it on first open",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := oa.Dir
			if len(args) > 0 {
				dir = args[0]
			}

			root, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolve %s: %w", dir, err)
			}

			ws, err := openWorkspaceAt(cmd.Context(), oa.RootArgs, root,
				workspace.WithWizard(oa.Wizard),
				workspace.WithReconfigure(oa.Reconfigure),
			)
			if err != nil {
				return err
			}
			defer ws.Close()

			w := cmd.OutOrStdout()
			s := newStyles(w)
			p := ws.Project()

			mustN(fmt.Fprintf(w, "%s %s\n", s.Title.Render("project:"), s.Path.Render(p.Name)))

			report := ws.Report()
			if report == nil {
				if p.Module != "" {
					mustN(fmt.Fprintf(w, "%s %s\n", s.Title.Render("module:"), s.Type.Render(p.Module)))
				}

				mustN(fmt.Fprintln(w, s.Subtle.Render("already configured")))
			} else {
				err = renderReport(w, s, report)
				if err != nil {
					return err
				}
			}

			for _, f := range p.Facets {
				mustN(fmt.Fprintf(w, "%s %s\n", s.Title.Render("facet:"), f.Name))
			}

			return nil
		},
	}

	oa.AddFlags(cmd)

	return cmd
}
