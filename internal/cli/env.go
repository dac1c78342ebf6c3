package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// describeEnvVars appends the environment variable of every flag of cmd and
// its subcommands to the flag's usage, so it shows in --help.
//
// Environment variable names are generated as FOLDSORT_<FLAG_NAME>, with the
// flag name upper-cased and dashes replaced with underscores:
//   - Flag "offset" becomes "FOLDSORT_OFFSET"
//   - Flag "ignore-case" becomes "FOLDSORT_IGNORE_CASE"
func describeEnvVars(cmd *cobra.Command) {
	describe := func(flag *pflag.Flag) {
		envName := flagToEnvName(flag.Name)
		if !strings.Contains(flag.Usage, envName) {
			flag.Usage = fmt.Sprintf("%s ($%s)", flag.Usage, envName)
		}
	}

	cmd.Flags().VisitAll(describe)
	cmd.PersistentFlags().VisitAll(describe)

	for _, sub := range cmd.Commands() {
		describeEnvVars(sub)
	}
}

// applyEnvVars sets each flag of the executing cmd that was not given on the
// command line from its environment variable. It runs after flag parsing, so
// arguments take precedence over the environment, which takes precedence
// over the configuration file and defaults.
//
// Invalid values are returned as [ErrInvalidArgument] naming the variable.
func applyEnvVars(cmd *cobra.Command) error {
	var errs []error

	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if flag.Changed {
			return
		}

		envName := flagToEnvName(flag.Name)

		envValue, ok := os.LookupEnv(envName)
		if !ok {
			return
		}

		err := cmd.Flags().Set(flag.Name, envValue)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: $%s=%q: %w", ErrInvalidArgument, envName, envValue, err))
		}
	})

	return errors.Join(errs...)
}

// flagToEnvName converts a flag name to its corresponding environment variable name.
// Example: "log-level" -> "FOLDSORT_LOG_LEVEL".
func flagToEnvName(flagName string) string {
	envName := strings.ReplaceAll(flagName, "-", "_")
	return strings.ToUpper(cmdName + "_" + envName)
}
