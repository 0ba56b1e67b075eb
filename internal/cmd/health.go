package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	errwrap "github.com/reliefvalve/prv/internal/errors"
	"github.com/reliefvalve/prv/internal/observability"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Run self-health check",
	Long:  "Run a self-health check to verify the relay can start with the current configuration.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		// Check 1: Version info available
		if versionInfo.Version == "" {
			return errwrap.NewConfigInvalidError("Version information missing")
		}
		fmt.Fprintln(out, "✅ Version information available")

		// Check 2: Logger initialized
		if observability.CLILogger == nil {
			return errwrap.NewConfigInvalidError("Logger not initialized")
		}
		fmt.Fprintln(out, "✅ Logger initialized")

		// Check 3: Configuration loads and validates
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		observability.CLILogger.Debug("Configuration check passed",
			zap.Int("limit", cfg.Relay.Limit),
			zap.Int("window", cfg.Relay.Window))
		fmt.Fprintln(out, "✅ Configuration valid")

		fmt.Fprintln(out, "✅ All health checks passed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
