package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// bindEnvVars lets every flag of cmd and its subcommands be set through a
// FOLIO_<FLAG> environment variable, e.g. --log-level through FOLIO_LOG_LEVEL.
// The variable replaces the flag default, so explicit arguments still win.
func bindEnvVars(cmd *cobra.Command) {
	for _, fs := range []*pflag.FlagSet{cmd.PersistentFlags(), cmd.Flags()} {
		fs.VisitAll(bindFlagToEnv)
	}

	for _, sub := range cmd.Commands() {
		bindEnvVars(sub)
	}
}

func bindFlagToEnv(flag *pflag.Flag) {
	name := envName(flag.Name)

	if strings.Contains(flag.Usage, "$"+name) {
		return // Already bound.
	}

	flag.Usage = fmt.Sprintf("%s ($%s)", flag.Usage, name)

	value, ok := os.LookupEnv(name)
	if !ok || flag.Changed {
		return
	}

	if err := flag.Value.Set(value); err != nil {
		slog.Warn("ignore environment variable",
			slog.String("env", name),
			slog.String("flag", flag.Name),
			slog.Any("err", err),
		)
	}
}

func envName(flag string) string {
	return strings.ToUpper(cmdName + "_" + strings.ReplaceAll(flag, "-", "_"))
}
