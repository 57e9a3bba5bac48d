package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run_mode = %q, want longpoll", cfg.Telegram.RunMode)
	}
	if cfg.Database.Driver != StoreMemory {
		t.Fatalf("driver = %q, want memory", cfg.Database.Driver)
	}
	if cfg.Market.MinQueryLen != 3 {
		t.Fatalf("min_query_len = %d, want 3", cfg.Market.MinQueryLen)
	}
	if cfg.Market.PageSize != 5 {
		t.Fatalf("page_size = %d, want 5", cfg.Market.PageSize)
	}
	if cfg.Market.SessionTTL.Std() != 30*time.Minute {
		t.Fatalf("session_ttl = %s, want 30m", cfg.Market.SessionTTL)
	}
}

func TestLoadSessionTTLFromYAML(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
market:
  session_ttl: 90m
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Market.SessionTTL.Std() != 90*time.Minute {
		t.Fatalf("session_ttl = %s, want 90m", cfg.Market.SessionTTL)
	}
}

func TestNormalizeSessionTTLDisable(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
market:
  session_ttl: -1
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Market.SessionTTL.Std() != 0 {
		t.Fatalf("session_ttl = %s, want 0 (expiry disabled)", cfg.Market.SessionTTL)
	}
}

func TestDurationDecode(t *testing.T) {
	cases := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"30m", 30 * time.Minute, false},
		{"1h30m", 90 * time.Minute, false},
		{"90", 90 * time.Second, false},
		{"-1", -time.Second, false},
		{"", 0, false},
		{"soon", 0, true},
	}
	for _, c := range cases {
		var d Duration
		err := d.Decode(c.in)
		if c.wantErr {
			if err == nil {
				t.Fatalf("Decode(%q): expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Decode(%q): %v", c.in, err)
		}
		if d.Std() != c.want {
			t.Fatalf("Decode(%q) = %s, want %s", c.in, d, c.want)
		}
	}
}

func TestLoadMissingToken(t *testing.T) {
	path := writeConfig(t, `
telegram:
  run_mode: longpoll
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing token")
	}
}

func TestNormalizeWebhookRequiresURL(t *testing.T) {
	cfg := &Config{}
	cfg.Telegram.Token = "123:abc"
	cfg.Telegram.RunMode = "webhook"
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for webhook without url")
	}
}

func TestNormalizePostgresRequiresHost(t *testing.T) {
	cfg := &Config{}
	cfg.Telegram.Token = "123:abc"
	cfg.Database.Driver = "postgres"
	cfg.Database.Name = "market"
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for postgres without host")
	}
}

func TestNormalizeInvalidDriver(t *testing.T) {
	cfg := &Config{}
	cfg.Telegram.Token = "123:abc"
	cfg.Database.Driver = "sqlite"
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestNormalizeKeepAliveDefaultInterval(t *testing.T) {
	cfg := &Config{}
	cfg.Telegram.Token = "123:abc"
	cfg.Status.KeepAliveURL = "https://example.test/status"
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Status.KeepAliveInterval.Std() != 10*time.Minute {
		t.Fatalf("keepalive_interval = %s, want 10m", cfg.Status.KeepAliveInterval)
	}
}

func TestNormalizeRateLimitExcludes(t *testing.T) {
	cfg := &Config{}
	cfg.Telegram.Token = "123:abc"
	cfg.RateLimit.ExcludeUpdates = []string{" Callback ", "message"}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.RateLimit.ExcludeUpdates[0] != UpdateCallback {
		t.Fatalf("exclude[0] = %q", cfg.RateLimit.ExcludeUpdates[0])
	}
	cfg.RateLimit.ExcludeUpdates = []string{"edited_message"}
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for unknown update type")
	}
}
