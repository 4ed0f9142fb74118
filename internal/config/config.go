package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/viper"
)

// Config is everything the client needs to start.
type Config struct {
	// ServerURL is the platform base URL.
	ServerURL string `mapstructure:"server_url"`
	// CacheAddr selects the valkey cache backend when set; empty means the
	// in-process cache.
	CacheAddr string `mapstructure:"cache_addr"`
	// ProfileDir holds the client database and key material.
	ProfileDir string `mapstructure:"profile_dir"`
	// DevMode enables the dev-tools route and the local dev-tools server.
	DevMode bool `mapstructure:"dev_mode"`
	// DevToolsAddr is the loopback listen address of the dev-tools server.
	DevToolsAddr string `mapstructure:"devtools_addr"`
	// LogLevel is one of trace, debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`
}

// Load reads configuration from (in increasing precedence) defaults, the
// config file, a .env file, and BILINGUA_* environment variables. Flags are
// bound on top by the command.
func Load(v *viper.Viper) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		jww.DEBUG.Printf("config: no .env loaded: %v", err)
	}

	home, _ := os.UserHomeDir()
	defaultProfile := filepath.Join(home, ".config", "bilingua")

	// Every key needs a default so env-only values survive Unmarshal.
	v.SetDefault("server_url", "https://bilingua.example")
	v.SetDefault("cache_addr", "")
	v.SetDefault("profile_dir", defaultProfile)
	v.SetDefault("dev_mode", false)
	v.SetDefault("devtools_addr", "127.0.0.1:7368")
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("BILINGUA")
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(defaultProfile)
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, errors.Wrap(err, "read config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	return &cfg, nil
}

// Threshold maps a log level name to the jww threshold.
func Threshold(level string) jww.Threshold {
	switch level {
	case "trace":
		return jww.LevelTrace
	case "debug":
		return jww.LevelDebug
	case "warn":
		return jww.LevelWarn
	case "error":
		return jww.LevelError
	default:
		return jww.LevelInfo
	}
}
