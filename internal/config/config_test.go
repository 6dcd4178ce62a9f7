package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := Defaults()
	cfg.Sharpbook.AlertHost = "https://alerts.example.com"
	cfg.Sharpbook.OddsHost = "https://odds.example.com"
	cfg.Targetbook.BaseURL = "https://book.example.com"
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Bets.KellyFraction != 0.3 {
		t.Errorf("kelly_fraction = %v, want 0.3", cfg.Bets.KellyFraction)
	}
	if cfg.Bets.MaxRefOdds != 3.0 {
		t.Errorf("max_ref_odds = %v, want 3.0", cfg.Bets.MaxRefOdds)
	}
	if got := cfg.PollInterval(); got != 30*time.Second {
		t.Errorf("poll interval = %v, want 30s", got)
	}
	if len(cfg.Bets.StakeRanges) != 2 {
		t.Fatalf("expected 2 default stake ranges, got %d", len(cfg.Bets.StakeRanges))
	}
	low := cfg.Bets.StakeRanges[0]
	if low.MaxOdds != 1.99 || low.MinStake != 6000 || low.MaxStake != 12000 {
		t.Errorf("low_odds bucket = %+v", low)
	}
	if cfg.Mode != "monitor" {
		t.Errorf("default mode = %q, want monitor", cfg.Mode)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"run mode", func(c *Config) { c.Mode = "run" }, false},
		{"bad mode", func(c *Config) { c.Mode = "yolo" }, true},
		{"missing alert host", func(c *Config) { c.Sharpbook.AlertHost = "" }, true},
		{"missing odds host", func(c *Config) { c.Sharpbook.OddsHost = "" }, true},
		{"missing base url", func(c *Config) { c.Targetbook.BaseURL = "" }, true},
		{"zero bankroll", func(c *Config) { c.Bets.Bankroll = 0 }, true},
		{"kelly too big", func(c *Config) { c.Bets.KellyFraction = 1.5 }, true},
		{"inverted stakes", func(c *Config) { c.Bets.MaxStake = 5; c.Bets.MinStake = 10 }, true},
		{"inverted bucket", func(c *Config) {
			c.Bets.StakeRanges = []StakeRange{{Name: "bad", MinOdds: 2, MaxOdds: 1, MinStake: 1, MaxStake: 2}}
		}, true},
		{"zero poll interval", func(c *Config) { c.Feed.PollInterval = duration{} }, true},
		{"account without username", func(c *Config) {
			c.Accounts = []AccountConfig{{Name: "a1", MaxConcurrent: 1}}
		}, true},
		{"account without slots", func(c *Config) {
			c.Accounts = []AccountConfig{{Name: "a1", Username: "u", MaxConcurrent: 0}}
		}, true},
		{"bad port", func(c *Config) { c.Server.Port = 99999 }, true},
		{"server disabled ignores port", func(c *Config) { c.Server.Enabled = false; c.Server.Port = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
mode = "run"

[sharpbook]
alert_host = "https://alerts.example.com"
odds_host = "https://odds.example.com"
user_id = "u-7"

[targetbook]
base_url = "https://book.example.com"

[bets]
min_ev = 8.5

[feed]
poll_interval = "45s"

[[accounts]]
name = "main"
username = "bettor"
password = "secret"
max_concurrent = 2
active = true
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Mode != "run" {
		t.Errorf("mode = %q, want run", cfg.Mode)
	}
	if cfg.Bets.MinEV != 8.5 {
		t.Errorf("min_ev = %v, want 8.5", cfg.Bets.MinEV)
	}
	// Unset fields keep their defaults.
	if cfg.Bets.KellyFraction != 0.3 {
		t.Errorf("kelly_fraction = %v, want default 0.3", cfg.Bets.KellyFraction)
	}
	if got := cfg.PollInterval(); got != 45*time.Second {
		t.Errorf("poll interval = %v, want 45s", got)
	}
	if len(cfg.Accounts) != 1 || cfg.Accounts[0].Username != "bettor" {
		t.Errorf("accounts = %+v", cfg.Accounts)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on loaded config: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BETALERT_BETS_MIN_EV", "12.5")
	t.Setenv("BETALERT_MODE", "run")
	t.Setenv("BETALERT_FEED_POLL_INTERVAL", "1m")
	t.Setenv("BETALERT_NOTIFY_EVENTS", "wager_placed, engine_error")
	t.Setenv("BETALERT_SERVER_ENABLED", "false")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	if cfg.Bets.MinEV != 12.5 {
		t.Errorf("min_ev = %v, want 12.5", cfg.Bets.MinEV)
	}
	if cfg.Mode != "run" {
		t.Errorf("mode = %q, want run", cfg.Mode)
	}
	if cfg.Feed.PollInterval.Duration != time.Minute {
		t.Errorf("poll interval = %v, want 1m", cfg.Feed.PollInterval.Duration)
	}
	want := []string{"wager_placed", "engine_error"}
	if len(cfg.Notify.Events) != 2 || cfg.Notify.Events[0] != want[0] || cfg.Notify.Events[1] != want[1] {
		t.Errorf("notify events = %v, want %v", cfg.Notify.Events, want)
	}
	if cfg.Server.Enabled {
		t.Error("server.enabled should be overridden to false")
	}
}

func TestEnvOverrideIgnoresGarbage(t *testing.T) {
	t.Setenv("BETALERT_BETS_MIN_EV", "not-a-number")
	t.Setenv("BETALERT_ENGINE_QUEUE_SIZE", "many")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	if cfg.Bets.MinEV != 5.0 {
		t.Errorf("min_ev = %v, want default 5.0", cfg.Bets.MinEV)
	}
	if cfg.Engine.QueueSize != 64 {
		t.Errorf("queue_size = %v, want default 64", cfg.Engine.QueueSize)
	}
}
