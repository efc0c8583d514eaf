package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const minimalConfig = `
[[markets]]
market_id = "m1"
question = "Will it rain?"
yes_token_id = "yes1"
no_token_id = "no1"
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	require.Equal(t, "wss://ws-subscriptions-clob.polymarket.com", cfg.Feed.WsHost)
	require.Equal(t, 0.001, cfg.Detector.ProfitThreshold)
	require.Equal(t, 0.01, cfg.Executor.ExecutionSpread)
	require.Equal(t, 1.0, cfg.Scalp.OrderSize)
	require.Equal(t, 90*time.Second, cfg.Scalp.MaxHold.Duration)
	require.Equal(t, 5, cfg.Scalp.MaxTradesPerDay)
	require.Equal(t, "info", cfg.LogLevel)
	require.NoError(t, cfg.Validate())
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	// Top-level keys must come before any table or they bind to it.
	cfg, err := Load(writeConfig(t, `
log_level = "debug"
`+minimalConfig+`
[detector]
profit_threshold = 0.02

[scalp]
enabled = true
threshold_pct = 0.015
max_hold = "2m"
`))
	require.NoError(t, err)

	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, 0.02, cfg.Detector.ProfitThreshold)
	require.True(t, cfg.Scalp.Enabled)
	require.Equal(t, 0.015, cfg.Scalp.ThresholdPct)
	require.Equal(t, 2*time.Minute, cfg.Scalp.MaxHold.Duration)
	require.NoError(t, cfg.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PAIRBOT_DETECTOR_PROFIT_THRESHOLD", "0.005")
	t.Setenv("PAIRBOT_EXECUTOR_KILL_SWITCH", "true")
	t.Setenv("PAIRBOT_SESSION_REFRESH_INTERVAL", "30s")
	t.Setenv("PAIRBOT_NOTIFY_EVENTS", "arb_executed, scalp_opened")

	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	require.Equal(t, 0.005, cfg.Detector.ProfitThreshold)
	require.True(t, cfg.Executor.KillSwitch)
	require.Equal(t, 30*time.Second, cfg.Session.RefreshInterval.Duration)
	require.Equal(t, []string{"arb_executed", "scalp_opened"}, cfg.Notify.Events)
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Defaults()
	cfg.LogLevel = "loud"
	cfg.Feed.WsHost = ""
	cfg.Markets = []MarketConfig{
		{MarketID: "m1", YesTokenID: "tok", NoTokenID: "tok"},
	}

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "log_level")
	require.Contains(t, err.Error(), "ws_host")
	require.Contains(t, err.Error(), "must differ")
}

func TestValidateScalpParamsOnlyWhenEnabled(t *testing.T) {
	cfg := Defaults()
	cfg.Markets = []MarketConfig{{MarketID: "m1", YesTokenID: "y", NoTokenID: "n"}}
	cfg.Scalp.ThresholdPct = 0

	// Disabled scalping ignores scalp parameter checks.
	require.NoError(t, cfg.Validate())

	cfg.Scalp.Enabled = true
	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "threshold_pct")
}

func TestValidateArchiveRequiresS3(t *testing.T) {
	cfg := Defaults()
	cfg.Markets = []MarketConfig{{MarketID: "m1", YesTokenID: "y", NoTokenID: "n"}}
	cfg.Session.ArchiveSessions = true

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "archive_sessions")

	cfg.S3.Enabled = true
	require.NoError(t, cfg.Validate())
}
