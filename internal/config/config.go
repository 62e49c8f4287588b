package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

type AppConfig struct {
	HTTPAddr   string
	StreamAddr string

	RedisURL    string
	DatabaseURL string

	GameTTLSec   int
	HistoryLimit int
	AutoDraws    bool

	MessagesDir    string
	AllowedOrigins []string
}

// Load reads the configuration from the environment. Redis and Postgres are
// optional: without REDIS_URL games live in memory, without DATABASE_URL
// finished games are not archived.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		HTTPAddr:     ":5000",
		StreamAddr:   ":5001",
		GameTTLSec:   86400,
		HistoryLimit: 20,
		AutoDraws:    true,
	}

	if v := strings.TrimSpace(os.Getenv("HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}
	if v, ok := os.LookupEnv("STREAM_ADDR"); ok {
		// An explicitly empty STREAM_ADDR disables the event stream.
		cfg.StreamAddr = strings.TrimSpace(v)
	}
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.MessagesDir = strings.TrimSpace(os.Getenv("MESSAGES_DIR"))
	cfg.AllowedOrigins = splitList(os.Getenv("ALLOWED_ORIGINS"))

	var err error
	if cfg.GameTTLSec, err = positiveInt("GAME_TTL_SEC", cfg.GameTTLSec); err != nil {
		return nil, err
	}
	if cfg.HistoryLimit, err = positiveInt("HISTORY_LIMIT", cfg.HistoryLimit); err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(os.Getenv("AUTO_DRAWS")); v != "" {
		b, perr := strconv.ParseBool(v)
		if perr != nil {
			return nil, fmt.Errorf("AUTO_DRAWS: %w", perr)
		}
		cfg.AutoDraws = b
	}

	if cfg.RedisURL != "" && !strings.HasPrefix(cfg.RedisURL, "redis://") && !strings.HasPrefix(cfg.RedisURL, "rediss://") {
		return nil, errors.New("REDIS_URL must use the redis:// or rediss:// scheme")
	}
	if cfg.StreamAddr != "" && cfg.StreamAddr == cfg.HTTPAddr {
		return nil, errors.New("STREAM_ADDR must differ from HTTP_ADDR")
	}

	return cfg, nil
}

func positiveInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
