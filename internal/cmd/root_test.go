package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errwrap "github.com/reliefvalve/prv/internal/errors"
)

// execute runs rootCmd with fresh flag and viper state.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())
	viper.Reset()
	cfgFile = ""
	extended = false
	resetFlags := func(fs *pflag.FlagSet) {
		fs.VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
	resetFlags(rootCmd.PersistentFlags())
	resetFlags(rootCmd.Flags())
	resetFlags(versionCmd.Flags())

	SetVersionInfo("1.2.3", "abc123", "2025-01-01")

	var out, errOut bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := Execute()
	return out.String(), errOut.String(), err
}

func TestRelayScenarioLimitTwo(t *testing.T) {
	out, diag, err := execute(t, "a\nb\nc\n", "--limit", "2", "--window", "1", "--verbose")
	require.NoError(t, err)

	assert.Equal(t, "a\nb\n", out)
	assert.Equal(t, "DISCARD:2/2:c\n", diag)
}

func TestRelayShortFlags(t *testing.T) {
	out, diag, err := execute(t, "a\nb\nc\n", "-l", "1", "-w", "5", "-v", "-W", "drop")
	require.NoError(t, err)

	assert.Equal(t, "a\n", out)
	assert.Equal(t, "DISCARD:1/1:b\nDISCARD:1/1:c\n", diag)
}

func TestRelayUnlimitedByDefault(t *testing.T) {
	out, diag, err := execute(t, "x\ny\n", "--verbose")
	require.NoError(t, err)

	assert.Equal(t, "x\ny\n", out)
	assert.Empty(t, diag)
}

func TestRelayEmptyInput(t *testing.T) {
	out, diag, err := execute(t, "", "--limit", "1", "--verbose")
	require.NoError(t, err)

	assert.Empty(t, out)
	assert.Empty(t, diag)
}

func TestRelayQuietDiscard(t *testing.T) {
	out, diag, err := execute(t, "a\nb\n", "--limit", "1")
	require.NoError(t, err)

	assert.Equal(t, "a\n", out)
	assert.Empty(t, diag)
}

func TestRelayEnvironmentConfig(t *testing.T) {
	t.Setenv("PRV_RELAY_LIMIT", "1")
	t.Setenv("PRV_RELAY_VERBOSE", "true")

	out, diag, err := execute(t, "a\nb\n")
	require.NoError(t, err)

	assert.Equal(t, "a\n", out)
	assert.Equal(t, "DISCARD:1/1:b\n", diag)
}

func TestRelayFlagOverridesEnvironment(t *testing.T) {
	t.Setenv("PRV_RELAY_LIMIT", "1")

	out, _, err := execute(t, "a\nb\nc\n", "--limit", "3")
	require.NoError(t, err)

	assert.Equal(t, "a\nb\nc\n", out)
}

func TestRelayConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prv.yaml")
	require.NoError(t, os.WriteFile(path, []byte("relay:\n  limit: 2\n  verbose: true\n"), 0o600))

	out, diag, err := execute(t, "a\nb\nc\n", "--config", path)
	require.NoError(t, err)

	assert.Equal(t, "a\nb\n", out)
	assert.Equal(t, "DISCARD:2/2:c\n", diag)
}

func TestRelayInvalidConfig(t *testing.T) {
	t.Setenv("PRV_RELAY_WINDOW", "-2")

	out, _, err := execute(t, "a\n")
	require.Error(t, err)

	assert.Empty(t, out)
	assert.Equal(t, foundry.ExitConfigInvalid, errwrap.ExitCodeFor(err))
}

func TestRelayMissingConfigFile(t *testing.T) {
	_, _, err := execute(t, "a\n", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	assert.Equal(t, foundry.ExitConfigInvalid, errwrap.ExitCodeFor(err))
}

func TestRelayRejectsPositionalArgs(t *testing.T) {
	_, _, err := execute(t, "", "extra")
	require.Error(t, err)
}

func TestRelayRejectsNegativeLimitFlag(t *testing.T) {
	_, _, err := execute(t, "", "--limit", "-1")
	require.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "prv 1.2.3\n", out)

	out, _, err = execute(t, "", "version", "--extended")
	require.NoError(t, err)
	assert.Contains(t, out, "Commit: abc123")
	assert.Contains(t, out, "Built: 2025-01-01")
	assert.Contains(t, out, "Gofulmen:")
}

func TestVersionFlag(t *testing.T) {
	out, _, err := execute(t, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "1.2.3")
}

func TestConfigShow(t *testing.T) {
	t.Setenv("PRV_RELAY_LIMIT", "9")

	out, _, err := execute(t, "", "config", "show")
	require.NoError(t, err)

	assert.Contains(t, out, "relay:\n")
	assert.Contains(t, out, "limit: 9")
	assert.Contains(t, out, "write_buffer: block")
	assert.Contains(t, out, "level: warn")
}

func TestEnvInfo(t *testing.T) {
	out, _, err := execute(t, "", "envinfo")
	require.NoError(t, err)

	assert.Contains(t, out, "1.2.3")
	assert.Contains(t, out, "unlimited")
	assert.Contains(t, out, "PRV_")
}

func TestHealth(t *testing.T) {
	out, _, err := execute(t, "", "health")
	require.NoError(t, err)
	assert.Contains(t, out, "All health checks passed")
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "unlimited", limitLabel(0))
	assert.Equal(t, "5 lines", limitLabel(5))
}
