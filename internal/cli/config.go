package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/macropower/folio/api/v1beta1/configs"
)

func NewConfigCmd(ra *RootArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the global configuration",
	}

	var force bool

	write := &cobra.Command{
		Use:   "write",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := ra.ConfigPath
			if path == "" {
				path = configs.GetPath()
			}

			err := configs.WriteDefault(path, force)
			if err != nil {
				return err //nolint:wrapcheck // Already descriptive.
			}

			mustN(fmt.Fprintln(cmd.OutOrStdout(), path))

			return nil
		},
	}
	write.Flags().BoolVar(&force, "force", false, "Back up and replace an existing configuration file")

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the active configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(ra)
			if err != nil {
				return err
			}

			b, err := cfg.MarshalYAML()
			if err != nil {
				return err //nolint:wrapcheck // Already descriptive.
			}

			_, err = cmd.OutOrStdout().Write(b)
			if err != nil {
				return fmt.Errorf("write config: %w", err)
			}

			return nil
		},
	}

	cmd.AddCommand(write, show)

	return cmd
}
