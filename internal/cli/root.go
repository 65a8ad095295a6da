package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/macropower/folio/pkg/log"
	"github.com/macropower/folio/pkg/telemetry"
)

const (
	cmdName = "folio"
	cmdDesc = `Per-folder project configuration and file type overrides.`
)

type RootArgs struct {
	telemetry *telemetry.Provider

	LogLevel   string
	LogFormat  string
	ConfigPath string
	Dir        string
}

func NewRootArgs() *RootArgs {
	return &RootArgs{}
}

func (ra *RootArgs) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVar(&ra.LogLevel, "log-level", "info", fmt.Sprintf("Log level, one of: %s", log.AllLevels))
	cmd.PersistentFlags().
		StringVar(&ra.LogFormat, "log-format", "text", fmt.Sprintf("Log format, one of: %s", log.AllFormats))
	cmd.PersistentFlags().
		StringVar(&ra.ConfigPath, "config", "", "Path to the folio configuration file")
	cmd.PersistentFlags().
		StringVarP(&ra.Dir, "dir", "C", ".", "Workspace directory, or any directory inside it")

	must(cmd.RegisterFlagCompletionFunc("log-format",
		cobra.FixedCompletions(log.AllFormats, cobra.ShellCompDirectiveNoFileComp),
	))
	must(cmd.RegisterFlagCompletionFunc("log-level",
		cobra.FixedCompletions(log.AllLevels, cobra.ShellCompDirectiveNoFileComp),
	))
	must(cmd.MarkPersistentFlagFilename("config", "yaml", "yml"))
	must(cmd.MarkPersistentFlagDirname("dir"))
}

func NewRootCmd() *cobra.Command {
	args := NewRootArgs()

	cmd := &cobra.Command{
		Use:                cmdName,
		Short:              cmdDesc,
		Example:            cmdExamples,
		SilenceUsage:       true,
		PersistentPreRunE:  setup(args),
		PersistentPostRunE: teardown(args),
	}

	args.AddFlags(cmd)

	cmd.AddCommand(
		NewOpenCmd(args),
		NewOverrideCmd(args),
		NewTypeCmd(args),
		NewServeCmd(args),
		NewConfigCmd(args),
	)

	bindEnvVars(cmd)

	return cmd
}

const cmdExamples = `  # Configure the current directory as a workspace:
  folio open

  # Treat a file as Groovy:
  folio override set Groovy ./ci/Jenkinsfile

  # Show the effective type of some files:
  folio type ./ci/Jenkinsfile main.go

  # Remove overrides again:
  folio override revert ./ci/Jenkinsfile

  # Serve the override tools over MCP on stdio:
  folio serve`

func setup(ra *RootArgs) func(cmd *cobra.Command, _ []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		logHandler, err := log.CreateHandlerWithStrings(cmd.ErrOrStderr(), ra.LogLevel, ra.LogFormat)
		if err != nil {
			return fmt.Errorf("create log handler: %w", err)
		}

		slog.SetDefault(slog.New(logHandler))

		ra.telemetry, err = telemetry.Setup(cmd.Context())
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}

		return nil
	}
}

func teardown(ra *RootArgs) func(cmd *cobra.Command, _ []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		if ra.telemetry == nil {
			return nil
		}

		return ra.telemetry.Shutdown(cmd.Context()) //nolint:wrapcheck // Already descriptive.
	}
}
