package cmd

import (
	"github.com/fulmenhq/gofulmen/telemetry"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/reliefvalve/prv/internal/config"
	errwrap "github.com/reliefvalve/prv/internal/errors"
	"github.com/reliefvalve/prv/internal/observability"
)

var (
	cfgFile  string
	logLevel string

	// configFileUsed is the config file read by initConfig, or "".
	configFileUsed string
	// configErr defers config file failures to the command that needs them.
	configErr error

	// Version info set by main package
	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}
)

// SetVersionInfo is called by main package to set version information
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
	rootCmd.Version = version
}

// rootCmd runs the relay when called without a subcommand
var rootCmd = &cobra.Command{
	Use:   config.AppName,
	Short: "Pressure relief valve for Unix process pipelines",
	Long: `prv copies lines from stdin to stdout, admitting at most --limit lines
per --window seconds and discarding the rest.

  producer | prv --limit 100 --window 1 --verbose | consumer`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cmd.SetContext(errwrap.WithCorrelationID(cmd.Context(), uuid.New().String()))
	},
	RunE: runRelay,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Keep telemetry silent until the relay decides whether metrics are on.
	if sys, err := telemetry.NewSystem(&telemetry.Config{Enabled: false}); err == nil {
		telemetry.SetGlobalSystem(sys)
	}

	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/prv/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: trace, debug, info, warn, error")

	// Relay flags
	rootCmd.Flags().UintP("limit", "l", 0, "message rate limit (0 = unlimited)")
	rootCmd.Flags().UintP("window", "w", 1, "message rate window in seconds")
	rootCmd.Flags().StringP("write-buffer", "W", "block", "behaviour if write buffer is full")
	rootCmd.Flags().BoolP("verbose", "v", false, "report discarded lines on stderr")
}

// bindFlags gives flags the highest precedence over config file and env.
func bindFlags(v *viper.Viper) {
	_ = v.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("relay.limit", rootCmd.Flags().Lookup("limit"))
	_ = v.BindPFlag("relay.window", rootCmd.Flags().Lookup("window"))
	_ = v.BindPFlag("relay.write_buffer", rootCmd.Flags().Lookup("write-buffer"))
	_ = v.BindPFlag("relay.verbose", rootCmd.Flags().Lookup("verbose"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	config.Prepare(viper.GetViper(), cfgFile)
	bindFlags(viper.GetViper())

	configFileUsed, configErr = config.ReadFile(viper.GetViper())

	observability.InitCLILogger(config.AppName, viper.GetString("logging.level"))

	switch {
	case configErr != nil:
		observability.CLILogger.Warn("Error reading config file", zap.Error(configErr))
	case configFileUsed != "":
		observability.CLILogger.Debug("Using config file", zap.String("path", configFileUsed))
	default:
		observability.CLILogger.Debug("No config file found, using defaults and environment variables")
	}
}

// loadConfig returns the effective configuration for the running command.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if configErr != nil {
		return nil, errwrap.WrapConfigInvalid(cmd.Context(), configErr, "failed to read config file")
	}
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, errwrap.WrapConfigInvalid(cmd.Context(), err, "invalid configuration")
	}
	return cfg, nil
}
