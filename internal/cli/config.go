package cli

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	sperrors "github.com/matzehuels/safephase/pkg/errors"
)

// Cache backends selectable in the config file.
const (
	backendFile   = "file"
	backendBadger = "badger"
	backendRedis  = "redis"
	backendNone   = "none"
)

// Config is the on-disk configuration, read from
// $XDG_CONFIG_HOME/safephase/config.toml. Flags override it.
//
//	[cache]
//	backend = "badger"
//	ttl = "72h"
//
//	[server]
//	addr = ":9090"
//
//	[catalog]
//	mongo_uri = "mongodb://localhost:27017"
//	database = "traffic"
type Config struct {
	Cache     CacheConfig     `toml:"cache"`
	Server    ServerConfig    `toml:"server"`
	Catalog   CatalogConfig   `toml:"catalog"`
	Enumerate EnumerateConfig `toml:"enumerate"`
}

// CacheConfig selects and configures the result cache.
type CacheConfig struct {
	Backend   string `toml:"backend"`
	Dir       string `toml:"dir"`
	RedisAddr string `toml:"redis_addr"`
	Prefix    string `toml:"prefix"`
	TTL       string `toml:"ttl"`
}

// ServerConfig configures "safephase serve".
type ServerConfig struct {
	Addr    string `toml:"addr"`
	Timeout string `toml:"timeout"`
}

// CatalogConfig configures the result catalog of the server. An empty
// MongoURI keeps the catalog in memory.
type CatalogConfig struct {
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// EnumerateConfig holds enumeration defaults.
type EnumerateConfig struct {
	MaxPhases int `toml:"max_phases"`
}

// defaultConfig returns the configuration used when no file exists.
func defaultConfig() *Config {
	return &Config{
		Cache:   CacheConfig{Backend: backendFile},
		Server:  ServerConfig{Addr: ":8080", Timeout: "30s"},
		Catalog: CatalogConfig{Database: appName},
	}
}

// configPath returns the default config file location.
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// loadConfig reads path on top of the defaults. A missing file at the
// default location is not an error; a missing explicit path is.
func loadConfig(path string) (*Config, []string, error) {
	cfg := defaultConfig()
	explicit := path != ""
	if !explicit {
		p, err := configPath()
		if err != nil {
			return cfg, nil, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return cfg, nil, nil
	}
	if err != nil {
		return nil, nil, sperrors.Wrap(sperrors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	var unknown []string
	for _, key := range md.Undecoded() {
		unknown = append(unknown, key.String())
	}
	if err := cfg.validate(); err != nil {
		return nil, nil, err
	}
	return cfg, unknown, nil
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case "", backendFile, backendBadger, backendNone:
	case backendRedis:
		if c.Cache.RedisAddr == "" {
			return sperrors.New(sperrors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
		}
	default:
		return sperrors.New(sperrors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if _, err := c.cacheTTL(); err != nil {
		return err
	}
	if _, err := c.serverTimeout(); err != nil {
		return err
	}
	if c.Catalog.MongoURI != "" {
		if err := sperrors.ValidateURL(c.Catalog.MongoURI, "mongodb", "mongodb+srv"); err != nil {
			return err
		}
	}
	if c.Enumerate.MaxPhases < 0 {
		return sperrors.New(sperrors.ErrCodeInvalidConfig, "enumerate.max_phases must be >= 0")
	}
	return nil
}

// cacheTTL returns the configured TTL, or 0 for the pipeline default.
func (c *Config) cacheTTL() (time.Duration, error) {
	return parseDuration("cache.ttl", c.Cache.TTL)
}

func (c *Config) serverTimeout() (time.Duration, error) {
	return parseDuration("server.timeout", c.Server.Timeout)
}

func parseDuration(key, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, sperrors.New(sperrors.ErrCodeInvalidConfig, "%s: invalid duration %q", key, s)
	}
	return d, nil
}
