package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/macropower/folio/pkg/filetype"
	"github.com/macropower/folio/pkg/override"
)

func NewOverrideCmd(ra *RootArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "override",
		Aliases: []string{"ov"},
		Short:   "Manage file type overrides",
	}

	cmd.AddCommand(
		newOverrideSetCmd(ra),
		newOverrideGetCmd(ra),
		newOverrideListCmd(ra),
		newOverrideRevertCmd(ra),
		newOverrideClearCmd(ra),
	)

	return cmd
}

func newOverrideSetCmd(ra *RootArgs) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "set <type> <file>...",
		Short: "Treat files as the given content type",
		Args:  cobra.MinimumNArgs(2),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]cobra.Completion, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return filetype.NewDetector().Types(), cobra.ShellCompDirectiveNoFileComp
			}

			return nil, cobra.ShellCompDirectiveDefault
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, known := filetype.NewDetector().Canonical(args[0])
			if !known && strict {
				return fmt.Errorf("%w: %q", ErrUnknownType, args[0])
			}

			ws, err := openWorkspace(cmd.Context(), ra)
			if err != nil {
				return err
			}
			defer ws.Close()

			ids, err := fileIDs(ws, args[1:])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			s := newStyles(w)

			for _, id := range ids {
				err := ws.Overrides().Set(id, typ)
				if err != nil {
					return fmt.Errorf("override %s: %w", id.Path, err)
				}

				mustN(fmt.Fprintf(w, "%s %s %s\n", s.Path.Render(id.Path), s.Subtle.Render("->"), s.Type.Render(typ)))
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Reject types that are not known content types")

	return cmd
}

func newOverrideGetCmd(ra *RootArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "get <file>",
		Short: "Print the override of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd.Context(), ra)
			if err != nil {
				return err
			}
			defer ws.Close()

			ids, err := fileIDs(ws, args)
			if err != nil {
				return err
			}

			typ, ok := ws.Overrides().Get(ids[0])
			if !ok {
				return fmt.Errorf("%w: %s", ErrNoOverride, ids[0].Path)
			}

			mustN(fmt.Fprintln(cmd.OutOrStdout(), typ))

			return nil
		},
	}
}

func newOverrideListCmd(ra *RootArgs) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all file type overrides",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := openWorkspace(cmd.Context(), ra)
			if err != nil {
				return err
			}
			defer ws.Close()

			w := cmd.OutOrStdout()
			s := newStyles(w)

			for _, e := range ws.Overrides().List() {
				mustN(fmt.Fprintf(w, "%s\t%s\n", s.Path.Render(e.File.Path), s.Type.Render(e.Type)))
			}

			return nil
		},
	}
}

func newOverrideRevertCmd(ra *RootArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "revert <file>...",
		Short: "Remove the overrides of files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd.Context(), ra)
			if err != nil {
				return err
			}
			defer ws.Close()

			ids, err := fileIDs(ws, args)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			s := newStyles(w)
			op := override.NewRevertOperation(ws.Overrides())

			if !op.Applicable(ids) {
				mustN(fmt.Fprintln(w, s.Subtle.Render("no overrides to revert")))

				return nil
			}

			mustN(fmt.Fprintln(w, s.Title.Render(describeRevert(op.Candidates(ids)))))

			result := op.Execute(ids)

			for _, id := range result.Removed {
				mustN(fmt.Fprintf(w, "  %s %s\n", s.Success.Render("reverted"), s.Path.Render(id.Path)))
			}

			for _, f := range result.Failed {
				mustN(fmt.Fprintf(w, "  %s %s: %v\n", s.Error.Render("failed"), s.Path.Render(f.File.Path), f.Err))
			}

			return result.Err() //nolint:wrapcheck // Already descriptive.
		},
	}
}

func newOverrideClearCmd(ra *RootArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every file type override",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := openWorkspace(cmd.Context(), ra)
			if err != nil {
				return err
			}
			defer ws.Close()

			n := ws.Overrides().Len()

			err = ws.Overrides().Clear()
			if err != nil {
				return fmt.Errorf("clear overrides: %w", err)
			}

			mustN(fmt.Fprintf(cmd.OutOrStdout(), "removed %d overrides\n", n))

			return nil
		},
	}
}
