package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/park285/atomic-chess-bot/internal/obslog"
)

type AppConfig struct {
	IrisBaseURL string `yaml:"iris_base_url"`
	IrisWSURL   string `yaml:"iris_ws_url"`

	BotPrefix string `yaml:"bot_prefix"`
	Command   string `yaml:"command"`

	XUserID    string `yaml:"x_user_id"`
	XUserEmail string `yaml:"x_user_email"`
	XSessionID string `yaml:"x_session_id"`

	RedisURL    string `yaml:"redis_url"`
	DatabaseURL string `yaml:"database_url"`

	AllowedRooms       []string `yaml:"allowed_rooms"`
	MaxConcurrentGames int      `yaml:"max_concurrent_games"`
	GameTTLSec         int      `yaml:"game_ttl_sec"`

	MessagesDir  string `yaml:"messages_dir"`
	MessagesLang string `yaml:"messages_lang"`
	PiecesDir    string `yaml:"pieces_dir"`
	MetricsAddr  string `yaml:"metrics_addr"`
	EgressMode   string `yaml:"egress_mode"`
	EgressDryRun bool   `yaml:"egress_dryrun"`

	Log obslog.Options `yaml:"log"`
}

// GameTTL is how long an idle game survives in redis.
func (c *AppConfig) GameTTL() time.Duration {
	return time.Duration(c.GameTTLSec) * time.Second
}

func defaults() *AppConfig {
	return &AppConfig{
		Command:            "atomic",
		MaxConcurrentGames: 200,
		GameTTLSec:         int((24 * time.Hour).Seconds()),
		EgressMode:         "http",
		MessagesLang:       "ko",
		Log:                obslog.OptionsFromEnv(),
	}
}

// Load reads the bot configuration: defaults, then the YAML file named by
// CONFIG_FILE, then environment variables. Iris settings are required.
func Load() (*AppConfig, error) {
	cfg, err := LoadCLI()
	if err != nil {
		return nil, err
	}
	if cfg.IrisBaseURL == "" {
		return nil, errors.New("IRIS_BASE_URL is required")
	}
	if cfg.IrisWSURL == "" {
		return nil, errors.New("IRIS_WS_URL is required")
	}
	if cfg.BotPrefix == "" {
		return nil, errors.New("BOT_PREFIX is required")
	}
	return cfg, nil
}

// LoadCLI is Load without the Iris requirements, for local tools.
func LoadCLI() (*AppConfig, error) {
	cfg := defaults()
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	if cfg.MaxConcurrentGames <= 0 {
		return nil, fmt.Errorf("max_concurrent_games must be positive, got %d", cfg.MaxConcurrentGames)
	}
	if cfg.GameTTLSec <= 0 {
		return nil, fmt.Errorf("game_ttl_sec must be positive, got %d", cfg.GameTTLSec)
	}
	return cfg, nil
}

func (c *AppConfig) overlayFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *AppConfig) applyEnv() {
	envString("IRIS_BASE_URL", &c.IrisBaseURL)
	envString("IRIS_WS_URL", &c.IrisWSURL)
	envString("BOT_PREFIX", &c.BotPrefix)
	envString("BOT_COMMAND", &c.Command)

	envString("X_USER_ID", &c.XUserID)
	envString("X_USER_EMAIL", &c.XUserEmail)
	envString("X_SESSION_ID", &c.XSessionID)

	envString("REDIS_URL", &c.RedisURL)
	envString("DATABASE_URL", &c.DatabaseURL)

	envList("ALLOWED_ROOMS", &c.AllowedRooms)
	envInt("MAX_CONCURRENT_GAMES", &c.MaxConcurrentGames)
	envInt("GAME_TTL_SEC", &c.GameTTLSec)

	envString("MESSAGES_DIR", &c.MessagesDir)
	envString("MESSAGES_LANG", &c.MessagesLang)
	envString("PIECES_DIR", &c.PiecesDir)
	envString("METRICS_ADDR", &c.MetricsAddr)
	envString("EGRESS_MODE", &c.EgressMode)
	envBool("EGRESS_DRYRUN", &c.EgressDryRun)

	envString("LOG_LEVEL", &c.Log.Level)
	envBool("LOG_TO_CONSOLE", &c.Log.Console)
	envBool("LOG_TO_FILE", &c.Log.ToFile)
	envString("LOG_FILE", &c.Log.File)
	envString("LOG_FORMAT", &c.Log.Format)
	envBool("LOG_CALLER", &c.Log.Caller)
}

func envString(key string, dst *string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*dst = n
		}
	}
}

func envBool(key string, dst *bool) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func envList(key string, dst *[]string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	*dst = out
}
