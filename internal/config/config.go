// Package config loads settings from ~/.greenlight.yaml, GREENLIGHT_* env vars
// and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"greenlight-cli/internal/store"

	"github.com/spf13/viper"
)

const EnvPrefix = "GREENLIGHT"

// Keys.
const (
	KeyAPIURL         = "api.url"
	KeySessionPath    = "session.path"
	KeyLogLevel       = "log.level"
	KeyLogFile        = "log.file"
	KeyServerAddr     = "server.addr"
	KeyServerDB       = "server.db"
	KeyServerTokens   = "server.tokens"
	KeySharePointBase = "server.sharepoint_base"
	KeyRedisURL       = "redis.url"
	KeyTUITheme       = "tui.theme"
	KeyLoginDelay     = "login.delay"
)

type Config struct {
	API     APIConfig
	Session SessionConfig
	Log     LogConfig
	Server  ServerConfig
	Redis   RedisConfig
	TUI     TUIConfig
	Login   LoginConfig
}

type APIConfig struct {
	URL string
}

type SessionConfig struct {
	Path string
}

type LogConfig struct {
	Level string
	// File receives TUI logs; empty means <config dir>/greenlight.log.
	File string
}

type ServerConfig struct {
	Addr           string
	DB             string
	Tokens         []string
	SharePointBase string
}

type RedisConfig struct {
	// URL is empty when events are disabled.
	URL string
}

type TUIConfig struct {
	Theme string
}

type LoginConfig struct {
	Delay time.Duration
}

// New returns a viper instance with defaults and env binding applied.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyAPIURL, "http://localhost:8001")
	v.SetDefault(KeySessionPath, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyServerAddr, ":8001")
	v.SetDefault(KeyServerDB, "./data/greenlight.db")
	v.SetDefault(KeyServerTokens, []string{"mock-token"})
	v.SetDefault(KeySharePointBase, "https://mock.sharepoint.com")
	v.SetDefault(KeyRedisURL, "")
	v.SetDefault(KeyTUITheme, "auto")
	v.SetDefault(KeyLoginDelay, "1s")
}

// ReadFile loads cfgFile, or ~/.greenlight.yaml when cfgFile is empty. A
// missing default file is not an error; a missing explicit one is.
func ReadFile(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", cfgFile, err)
		}
		return nil
	}
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	v.SetConfigName(".greenlight")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if errors.As(err, &nf) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load resolves the effective configuration. Paths left empty are filled in
// under the config dir.
func Load(v *viper.Viper) (Config, error) {
	delay, err := parseDelay(v.GetString(KeyLoginDelay))
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		API:     APIConfig{URL: strings.TrimRight(strings.TrimSpace(v.GetString(KeyAPIURL)), "/")},
		Session: SessionConfig{Path: strings.TrimSpace(v.GetString(KeySessionPath))},
		Log: LogConfig{
			Level: v.GetString(KeyLogLevel),
			File:  strings.TrimSpace(v.GetString(KeyLogFile)),
		},
		Server: ServerConfig{
			Addr:           v.GetString(KeyServerAddr),
			DB:             v.GetString(KeyServerDB),
			Tokens:         tokens(v.GetStringSlice(KeyServerTokens)),
			SharePointBase: v.GetString(KeySharePointBase),
		},
		Redis: RedisConfig{URL: strings.TrimSpace(v.GetString(KeyRedisURL))},
		TUI:   TUIConfig{Theme: strings.ToLower(strings.TrimSpace(v.GetString(KeyTUITheme)))},
		Login: LoginConfig{Delay: delay},
	}
	if cfg.API.URL == "" {
		return Config{}, errors.New("api.url is empty")
	}
	switch cfg.TUI.Theme {
	case "", "auto", "light", "dark":
	default:
		return Config{}, fmt.Errorf("invalid tui.theme: %q (expected auto|light|dark)", cfg.TUI.Theme)
	}

	if cfg.Session.Path == "" || cfg.Log.File == "" {
		dir, err := store.ConfigDir()
		if err != nil {
			return Config{}, err
		}
		if cfg.Session.Path == "" {
			cfg.Session.Path = filepath.Join(dir, "session.sqlite")
		}
		if cfg.Log.File == "" {
			cfg.Log.File = filepath.Join(dir, "greenlight.log")
		}
	}
	return cfg, nil
}

func parseDelay(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid login.delay: %q", s)
	}
	return d, nil
}

// tokens accepts both a YAML list and a comma-separated env value.
func tokens(in []string) []string {
	var out []string
	for _, t := range in {
		for _, p := range strings.Split(t, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
