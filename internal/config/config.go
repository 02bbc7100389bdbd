// Package config handles loading and validating the vinoscans configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration for the vinoscans daemon.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Transports TransportsConfig `mapstructure:"transports"`
	Vision     VisionConfig     `mapstructure:"vision"`
	Narration  NarrationConfig  `mapstructure:"narration"`
	History    HistoryConfig    `mapstructure:"history"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds the health check server settings.
type ServerConfig struct {
	HealthPort int `mapstructure:"health_port"`
}

// TransportsConfig holds the configuration for each transport layer.
type TransportsConfig struct {
	HTTP HTTPConfig `mapstructure:"http"`
	GRPC GRPCConfig `mapstructure:"grpc"`
}

// HTTPConfig configures the HTTP transport.
type HTTPConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// GRPCConfig configures the gRPC transport.
type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// VisionConfig selects and configures the identification backend.
type VisionConfig struct {
	Backend string       `mapstructure:"backend"` // "gemini"
	Gemini  GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Gemini vision API settings.
type GeminiConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	Endpoint string `mapstructure:"endpoint"` // override for tests/proxies
}

// NarrationConfig configures the text-to-speech narration backend.
type NarrationConfig struct {
	Enabled bool            `mapstructure:"enabled"`
	Backend string          `mapstructure:"backend"` // "gemini"
	Gemini  GeminiTTSConfig `mapstructure:"gemini"`
}

// GeminiTTSConfig holds Gemini speech-generation settings.
type GeminiTTSConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	Voice    string `mapstructure:"voice"` // prebuilt voice name
	Endpoint string `mapstructure:"endpoint"`
}

// HistoryConfig holds scan-history persistence settings.
type HistoryConfig struct {
	Path  string `mapstructure:"path"`  // SQLite file; ":memory:" for ephemeral
	Limit int    `mapstructure:"limit"` // max entries kept
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./vinoscans.yaml, ./configs/vinoscans.yaml, /etc/vinoscans/vinoscans.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("transports.http.enabled", true)
	v.SetDefault("transports.http.port", 8080)
	v.SetDefault("transports.grpc.enabled", false)
	v.SetDefault("transports.grpc.port", 50051)
	v.SetDefault("vision.backend", "gemini")
	v.SetDefault("vision.gemini.model", "gemini-3-flash-preview")
	v.SetDefault("narration.enabled", true)
	v.SetDefault("narration.backend", "gemini")
	v.SetDefault("narration.gemini.model", "gemini-2.5-flash-preview-tts")
	v.SetDefault("narration.gemini.voice", "Kore")
	v.SetDefault("history.path", "vinoscans.sqlite")
	v.SetDefault("history.limit", 5)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("vinoscans")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/vinoscans")
	}

	// Environment variables: VINOSCANS_SERVER_HEALTH_PORT, VINOSCANS_VISION_GEMINI_API_KEY, etc.
	v.SetEnvPrefix("VINOSCANS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional — env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${GEMINI_API_KEY}")
	cfg.Vision.Gemini.APIKey = resolveEnvRef(cfg.Vision.Gemini.APIKey)
	cfg.Narration.Gemini.APIKey = resolveEnvRef(cfg.Narration.Gemini.APIKey)

	// Narration shares the vision key unless configured separately.
	if cfg.Narration.Gemini.APIKey == "" {
		cfg.Narration.Gemini.APIKey = cfg.Vision.Gemini.APIKey
	}

	return &cfg, nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		envKey := val[2 : len(val)-1]
		if envVal := os.Getenv(envKey); envVal != "" {
			return envVal
		}
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
