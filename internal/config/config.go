// Package config defines the top-level configuration for the bet alert
// engine and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from
// a TOML file and then optionally overridden by BETALERT_* environment
// variables.
type Config struct {
	Sharpbook  SharpbookConfig  `toml:"sharpbook"`
	Targetbook TargetbookConfig `toml:"targetbook"`
	Bets       BetsConfig       `toml:"bets"`
	Feed       FeedConfig       `toml:"feed"`
	Engine     EngineConfig     `toml:"engine"`
	Accounts   []AccountConfig  `toml:"accounts"`
	Server     ServerConfig     `toml:"server"`
	Notify     NotifyConfig     `toml:"notify"`
	Mode       string           `toml:"mode"`
	LogLevel   string           `toml:"log_level"`
}

// SharpbookConfig holds the reference book's endpoints.
type SharpbookConfig struct {
	AlertHost string `toml:"alert_host"`
	OddsHost  string `toml:"odds_host"`
	UserID    string `toml:"user_id"`
}

// TargetbookConfig holds the target book's catalog endpoint.
type TargetbookConfig struct {
	BaseURL string `toml:"base_url"`
}

// BetsConfig holds the pricing and staking parameters.
type BetsConfig struct {
	Bankroll      float64      `toml:"bankroll"`
	MinEV         float64      `toml:"min_ev"`
	MaxRefOdds    float64      `toml:"max_ref_odds"`
	KellyFraction float64      `toml:"kelly_fraction"`
	MinStake      float64      `toml:"min_stake"`
	MaxStake      float64      `toml:"max_stake"`
	DefaultStake  float64      `toml:"default_stake"`
	StakeRanges   []StakeRange `toml:"odds_based_stakes"`
}

// StakeRange bounds stakes for one odds bucket. A zero MaxOdds leaves
// the bucket open-ended upward.
type StakeRange struct {
	Name     string  `toml:"name"`
	MinOdds  float64 `toml:"min_odds"`
	MaxOdds  float64 `toml:"max_odds"`
	MinStake float64 `toml:"min_stake"`
	MaxStake float64 `toml:"max_stake"`
}

// FeedConfig holds the alert polling parameters.
type FeedConfig struct {
	PollInterval duration `toml:"poll_interval"`
}

// EngineConfig holds the dispatch queue and concurrency limits.
type EngineConfig struct {
	QueueSize     int `toml:"queue_size"`
	MaxConcurrent int `toml:"max_concurrent"`
	LedgerSize    int `toml:"ledger_size"`
}

// AccountConfig describes one target-book account.
type AccountConfig struct {
	Name          string  `toml:"name"`
	Username      string  `toml:"username"`
	Password      string  `toml:"password"`
	Proxy         string  `toml:"proxy"`
	MaxConcurrent int     `toml:"max_concurrent"`
	MinBalance    float64 `toml:"min_balance"`
	Active        bool    `toml:"active"`
}

// ServerConfig holds the operator API settings.
type ServerConfig struct {
	Enabled bool `toml:"enabled"`
	Port    int  `toml:"port"`
}

// NotifyConfig holds the notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// Defaults returns the configuration used when the TOML file leaves a
// field unset. The stake buckets mirror the sizes a manual bettor on
// the target book would use.
func Defaults() Config {
	return Config{
		Bets: BetsConfig{
			Bankroll:      1000,
			MinEV:         5.0,
			MaxRefOdds:    3.0,
			KellyFraction: 0.3,
			MinStake:      10,
			MaxStake:      1000000,
			DefaultStake:  1000,
			StakeRanges: []StakeRange{
				{Name: "low_odds", MaxOdds: 1.99, MinStake: 6000, MaxStake: 12000},
				{Name: "medium_odds", MinOdds: 2.0, MaxOdds: 3.0, MinStake: 3000, MaxStake: 7000},
			},
		},
		Feed: FeedConfig{
			PollInterval: duration{30 * time.Second},
		},
		Engine: EngineConfig{
			QueueSize:     64,
			MaxConcurrent: 5,
			LedgerSize:    1000,
		},
		Server: ServerConfig{
			Enabled: true,
			Port:    8080,
		},
		Mode:     "monitor",
		LogLevel: "info",
	}
}

// Validate checks the configuration for values the engine cannot run
// with. It returns the first problem found.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Mode) {
	case "run", "monitor":
	default:
		return fmt.Errorf("config: mode must be run or monitor, got %q", c.Mode)
	}
	if c.Sharpbook.AlertHost == "" {
		return fmt.Errorf("config: sharpbook.alert_host is required")
	}
	if c.Sharpbook.OddsHost == "" {
		return fmt.Errorf("config: sharpbook.odds_host is required")
	}
	if c.Targetbook.BaseURL == "" {
		return fmt.Errorf("config: targetbook.base_url is required")
	}
	if c.Bets.Bankroll <= 0 {
		return fmt.Errorf("config: bets.bankroll must be positive, got %v", c.Bets.Bankroll)
	}
	if c.Bets.KellyFraction <= 0 || c.Bets.KellyFraction > 1 {
		return fmt.Errorf("config: bets.kelly_fraction must be in (0, 1], got %v", c.Bets.KellyFraction)
	}
	if c.Bets.MinStake < 0 || c.Bets.MaxStake < c.Bets.MinStake {
		return fmt.Errorf("config: bets stake bounds invalid: min %v, max %v", c.Bets.MinStake, c.Bets.MaxStake)
	}
	for _, r := range c.Bets.StakeRanges {
		if r.MaxOdds != 0 && r.MaxOdds < r.MinOdds {
			return fmt.Errorf("config: stake range %q has max_odds below min_odds", r.Name)
		}
		if r.MaxStake < r.MinStake {
			return fmt.Errorf("config: stake range %q has max_stake below min_stake", r.Name)
		}
	}
	if c.Feed.PollInterval.Duration <= 0 {
		return fmt.Errorf("config: feed.poll_interval must be positive")
	}
	for i, a := range c.Accounts {
		if a.Username == "" {
			return fmt.Errorf("config: account %d has no username", i)
		}
		if a.MaxConcurrent <= 0 {
			return fmt.Errorf("config: account %q needs max_concurrent > 0", a.Name)
		}
	}
	if c.Server.Enabled && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		return fmt.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	return nil
}

// PollInterval returns the feed poll interval as a time.Duration.
func (c *Config) PollInterval() time.Duration {
	return c.Feed.PollInterval.Duration
}

// duration wraps time.Duration so TOML files can use strings like
// "30s" or "2m".
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder
// can parse duration strings.
func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}
