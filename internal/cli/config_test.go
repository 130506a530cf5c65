package cli

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	sperrors "github.com/matzehuels/safephase/pkg/errors"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeTemp(t, "config.toml", `
[cache]
backend = "badger"
dir = "/var/cache/safephase"
ttl = "72h"
colour = "blue"

[server]
addr = ":9090"

[catalog]
mongo_uri = "mongodb://localhost:27017"

[enumerate]
max_phases = 5000
`)

	cfg, unknown, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Cache.Backend != backendBadger || cfg.Cache.Dir != "/var/cache/safephase" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("server.addr = %q", cfg.Server.Addr)
	}
	// Keys missing from the file keep their defaults.
	if cfg.Server.Timeout != "30s" || cfg.Catalog.Database != appName {
		t.Errorf("defaults lost: %+v %+v", cfg.Server, cfg.Catalog)
	}
	if cfg.Enumerate.MaxPhases != 5000 {
		t.Errorf("max_phases = %d", cfg.Enumerate.MaxPhases)
	}
	if ttl, _ := cfg.cacheTTL(); ttl != 72*time.Hour {
		t.Errorf("cacheTTL = %v", ttl)
	}
	if !slices.Equal(unknown, []string{"cache.colour"}) {
		t.Errorf("unknown keys = %v", unknown)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown backend", "[cache]\nbackend = \"memcached\"\n"},
		{"redis without addr", "[cache]\nbackend = \"redis\"\n"},
		{"bad ttl", "[cache]\nttl = \"a week\"\n"},
		{"negative timeout", "[server]\ntimeout = \"-1s\"\n"},
		{"bad mongo uri", "[catalog]\nmongo_uri = \"http://localhost\"\n"},
		{"negative max phases", "[enumerate]\nmax_phases = -1\n"},
		{"syntax", "[cache\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := loadConfig(writeTemp(t, "config.toml", tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !sperrors.Is(err, sperrors.ErrCodeInvalidConfig) {
				t.Errorf("error code = %q, want %q", sperrors.GetCode(err), sperrors.ErrCodeInvalidConfig)
			}
		})
	}
}

func TestLoadConfigMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, unknown, err := loadConfig("")
	if err != nil {
		t.Fatalf("missing default config: %v", err)
	}
	if cfg.Cache.Backend != backendFile || len(unknown) != 0 {
		t.Errorf("got %+v, %v; want defaults", cfg.Cache, unknown)
	}

	if _, _, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("missing explicit config should fail")
	}
}

func TestConfigPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	got, err := configPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, appName, "config.toml"); got != want {
		t.Errorf("configPath() = %q, want %q", got, want)
	}
}
