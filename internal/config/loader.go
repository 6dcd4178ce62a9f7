package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies BETALERT_* environment variable overrides,
// and returns the final Config. The returned Config has NOT been
// validated; the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known BETALERT_* environment variables
// and overwrites the corresponding Config fields when a variable is set.
// This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Sharpbook ──
	setStr(&cfg.Sharpbook.AlertHost, "BETALERT_SHARPBOOK_ALERT_HOST")
	setStr(&cfg.Sharpbook.OddsHost, "BETALERT_SHARPBOOK_ODDS_HOST")
	setStr(&cfg.Sharpbook.UserID, "BETALERT_SHARPBOOK_USER_ID")

	// ── Targetbook ──
	setStr(&cfg.Targetbook.BaseURL, "BETALERT_TARGETBOOK_BASE_URL")

	// ── Bets ──
	setFloat64(&cfg.Bets.Bankroll, "BETALERT_BETS_BANKROLL")
	setFloat64(&cfg.Bets.MinEV, "BETALERT_BETS_MIN_EV")
	setFloat64(&cfg.Bets.MaxRefOdds, "BETALERT_BETS_MAX_REF_ODDS")
	setFloat64(&cfg.Bets.KellyFraction, "BETALERT_BETS_KELLY_FRACTION")
	setFloat64(&cfg.Bets.MinStake, "BETALERT_BETS_MIN_STAKE")
	setFloat64(&cfg.Bets.MaxStake, "BETALERT_BETS_MAX_STAKE")
	setFloat64(&cfg.Bets.DefaultStake, "BETALERT_BETS_DEFAULT_STAKE")

	// ── Feed ──
	setDuration(&cfg.Feed.PollInterval, "BETALERT_FEED_POLL_INTERVAL")

	// ── Engine ──
	setInt(&cfg.Engine.QueueSize, "BETALERT_ENGINE_QUEUE_SIZE")
	setInt(&cfg.Engine.MaxConcurrent, "BETALERT_ENGINE_MAX_CONCURRENT")
	setInt(&cfg.Engine.LedgerSize, "BETALERT_ENGINE_LEDGER_SIZE")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "BETALERT_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "BETALERT_SERVER_PORT")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "BETALERT_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "BETALERT_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "BETALERT_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "BETALERT_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "BETALERT_MODE")
	setStr(&cfg.LogLevel, "BETALERT_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
