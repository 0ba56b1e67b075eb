package observability_test

import (
	"testing"

	"github.com/fulmenhq/gofulmen/crucible"
	"go.uber.org/zap"

	"github.com/reliefvalve/prv/internal/observability"
)

func TestInitCLILogger(t *testing.T) {
	for _, level := range []string{"trace", "debug", "info", "warn", "error", ""} {
		t.Run("level "+level, func(t *testing.T) {
			observability.InitCLILogger("prv-test", level)

			if observability.CLILogger == nil {
				t.Fatal("CLI logger should not be nil after initialization")
			}

			observability.CLILogger.Debug("Test CLI log message",
				zap.String("level", level))
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]string{
		"trace":   "TRACE",
		"DEBUG":   "DEBUG",
		" info ":  "INFO",
		"warn":    "WARN",
		"warning": "WARN",
		"error":   "ERROR",
		"":        "WARN",
		"loud":    "WARN",
	}

	for in, want := range cases {
		if got := observability.ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewCLILoggerLogsWithCrucibleVersion(t *testing.T) {
	logger, err := observability.NewCLILogger("version-test", "info")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	logger.Info("Application info",
		zap.String("crucible_version", crucible.GetVersionString()))
}
