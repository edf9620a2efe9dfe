package cli

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/stepflow/internal/app"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that mirror CLI flags,
// e.g. STEPFLOW_LOG_LEVEL for --log-level.
const EnvPrefix = "STEPFLOW"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly (help was shown),
// or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var parsed *app.Config
	root := newRootCommand()
	runCmd := &cobra.Command{
		Use:   "run [CONFIG_PATH]",
		Short: "Run every enabled workflow of a pipeline",
		Long: `Run loads the pipeline configuration (a single .hcl file or a directory of
.hcl files), seeds the declared inputs into a fresh runtime cache and runs
every enabled workflow in dependency order, persisting each output in the
configured snapshot formats.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}

			path := v.GetString("config")
			if len(args) > 0 {
				path = args[0]
			}
			if path == "" {
				return errors.New("a pipeline configuration path is required: pass CONFIG_PATH or --config")
			}

			cfg, err := app.NewConfig(app.Config{
				ConfigPath:      path,
				LogFormat:       v.GetString("log-format"),
				LogLevel:        v.GetString("log-level"),
				RunID:           v.GetString("run-id"),
				HealthcheckPort: v.GetInt("healthcheck-port"),
			})
			if err != nil {
				return err
			}
			parsed = cfg
			return nil
		},
	}

	flags := runCmd.Flags()
	flags.StringP("config", "c", "", "Path to the pipeline .hcl file or directory.")
	flags.String("log-format", "text", "Log output format. Options: 'text', 'json' or 'pretty'.")
	flags.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.String("run-id", "", "Identifier for this run. A random UUID is used when empty.")
	flags.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")

	root.AddCommand(runCmd)
	root.SetArgs(append([]string{}, args...))
	root.SetOut(output)
	root.SetErr(output)

	if err := root.Execute(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if parsed == nil {
		slog.Debug("No command executed, exiting.")
		return nil, true, nil
	}

	slog.Debug("CLI parser finished successfully.", "config", parsed)
	return parsed, false, nil
}

func newRootCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stepflow",
		Short: "A step-based tabular data pipeline runner",
		Long: `stepflow - A step-based tabular data pipeline runner.

Workflows declare the artifacts they depend on, transform them and publish
their output to a run-scoped cache for downstream workflows and to durable
storage (parquet, json or csv).

Every flag can also be set through an environment variable with the
STEPFLOW_ prefix, e.g. STEPFLOW_LOG_LEVEL=debug.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}
