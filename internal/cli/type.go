package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewTypeCmd(ra *RootArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "type <file>...",
		Short: "Print the effective content type of files",
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

			for _, id := range ids {
				res := ws.Types().Effective(id)
				mustN(fmt.Fprintf(w, "%s\t%s\t%s\n",
					s.Path.Render(id.Path),
					s.Type.Render(res.Type),
					s.Subtle.Render(res.Source.String()),
				))
			}

			return nil
		},
	}
}
