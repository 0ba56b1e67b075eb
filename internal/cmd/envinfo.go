package cmd

import (
	"fmt"
	"runtime"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/reliefvalve/prv/internal/config"
)

var envInfoCmd = &cobra.Command{
	Use:   "envinfo",
	Short: "Display environment information",
	Long:  "Display environment, runtime, version and effective configuration information.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), renderEnvInfo(cfg, configFileUsed))
		return nil
	},
}

func renderEnvInfo(cfg *config.Config, fileUsed string) string {
	version := crucible.GetVersion()

	configFile := fileUsed
	if configFile == "" {
		configFile = "(none) default: " + config.DefaultConfigPath()
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetTitle("prv environment")
	t.AppendHeader(table.Row{"Section", "Key", "Value"})

	t.AppendRows([]table.Row{
		{"Application", "Name", config.AppName},
		{"Application", "Version", versionInfo.Version},
		{"Application", "Commit", versionInfo.Commit},
		{"Application", "Built", versionInfo.BuildDate},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"SSOT", "Gofulmen", version.Gofulmen},
		{"SSOT", "Crucible", version.Crucible},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Runtime", "Go Version", runtime.Version()},
		{"Runtime", "GOOS", runtime.GOOS},
		{"Runtime", "GOARCH", runtime.GOARCH},
		{"Runtime", "NumCPU", runtime.NumCPU()},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Configuration", "Config File", configFile},
		{"Configuration", "Env Prefix", config.EnvPrefix + "_"},
		{"Configuration", "Limit", limitLabel(cfg.Relay.Limit)},
		{"Configuration", "Window", fmt.Sprintf("%ds", cfg.Relay.Window)},
		{"Configuration", "Write Buffer", cfg.Relay.WriteBuffer},
		{"Configuration", "Verbose", cfg.Relay.Verbose},
		{"Configuration", "Log Level", cfg.Logging.Level},
		{"Configuration", "Metrics", metricsLabel(cfg.Metrics)},
	})

	return t.Render()
}

func limitLabel(limit int) string {
	if limit == 0 {
		return "unlimited"
	}
	return fmt.Sprintf("%d lines", limit)
}

func metricsLabel(m config.MetricsConfig) string {
	if !m.Enabled {
		return "disabled"
	}
	return fmt.Sprintf("enabled on :%d", m.Port)
}

func init() {
	rootCmd.AddCommand(envInfoCmd)
}
