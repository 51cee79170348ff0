package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/doc-translator/backend/internal/dictionary"
)

type Config struct {
	Port      int
	DataPath  string
	DBPath    string
	JWTSecret string
	// JWTSecretGenerated is set when JWT_SECRET was empty and a random
	// secret was generated; tokens will not survive a restart.
	JWTSecretGenerated bool
	TokenTTL           time.Duration
	AdminUsername      string
	AdminPassword      string
	CORSOrigins        []string

	LogLevel  string
	LogFormat string

	// SettingsDefaultsFile is an optional YAML file overriding the built-in
	// local/remote settings defaults handed to every new session.
	SettingsDefaultsFile string
	SessionIdleTTL       time.Duration

	ProgressInterval time.Duration
	ProgressStep     int

	// DictExtraFields selects how a dictionary line with more than one comma
	// is handled: keep, truncate or reject.
	DictExtraFields string

	MaxDocumentBytes   int64
	MaxDictionaryBytes int64
	MaxModelBytes      int64

	LoginRateLimit int
}

// Load reads configuration from the environment, after loading a .env file
// from the working directory when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := getInt("PORT", 8080)
	if err != nil {
		return nil, err
	}
	dataPath := getEnv("DATA_PATH", "./data")

	// JWT secret: require explicit setting or generate random
	jwtSecret := os.Getenv("JWT_SECRET")
	generated := false
	if jwtSecret == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return nil, fmt.Errorf("generate random JWT secret: %w", err)
		}
		jwtSecret = hex.EncodeToString(b)
		generated = true
	}

	cfg := &Config{
		Port:                 port,
		DataPath:             dataPath,
		DBPath:               getEnv("DB_PATH", dataPath+"/doctranslator.db"),
		JWTSecret:            jwtSecret,
		JWTSecretGenerated:   generated,
		AdminUsername:        getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:        getEnv("ADMIN_PASSWORD", "admin"),
		CORSOrigins:          splitList(os.Getenv("CORS_ORIGINS"), []string{"*"}),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "json"),
		SettingsDefaultsFile: os.Getenv("SETTINGS_DEFAULTS_FILE"),
		DictExtraFields:      getEnv("DICT_EXTRA_FIELDS", "keep"),
	}

	durations := []struct {
		key      string
		fallback time.Duration
		dst      *time.Duration
	}{
		{"TOKEN_TTL", 24 * time.Hour, &cfg.TokenTTL},
		{"SESSION_IDLE_TTL", 2 * time.Hour, &cfg.SessionIdleTTL},
		{"PROGRESS_INTERVAL", 500 * time.Millisecond, &cfg.ProgressInterval},
	}
	for _, d := range durations {
		if *d.dst, err = getDuration(d.key, d.fallback); err != nil {
			return nil, err
		}
	}

	ints := []struct {
		key      string
		fallback int
		dst      *int
	}{
		{"PROGRESS_STEP", 10, &cfg.ProgressStep},
		{"LOGIN_RATE_LIMIT", 10, &cfg.LoginRateLimit},
	}
	for _, i := range ints {
		if *i.dst, err = getInt(i.key, i.fallback); err != nil {
			return nil, err
		}
	}

	sizes := []struct {
		key      string
		fallback int64
		dst      *int64
	}{
		{"MAX_DOCUMENT_BYTES", 50 << 20, &cfg.MaxDocumentBytes},
		{"MAX_DICTIONARY_BYTES", 5 << 20, &cfg.MaxDictionaryBytes},
		{"MAX_MODEL_BYTES", 64 << 30, &cfg.MaxModelBytes},
	}
	for _, s := range sizes {
		if *s.dst, err = getInt64(s.key, s.fallback); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges that would otherwise surface as confusing runtime
// behavior (a zero tick interval, a step that never reaches 100).
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be in 1..65535 (got %d)", c.Port)
	}
	if c.ProgressInterval <= 0 {
		return fmt.Errorf("PROGRESS_INTERVAL must be > 0 (got %s)", c.ProgressInterval)
	}
	if c.ProgressStep < 1 || c.ProgressStep > 100 {
		return fmt.Errorf("PROGRESS_STEP must be in 1..100 (got %d)", c.ProgressStep)
	}
	policy, err := dictionary.ParsePolicy(c.DictExtraFields)
	if err != nil {
		return fmt.Errorf("DICT_EXTRA_FIELDS must be one of keep, truncate, reject (got %q)", c.DictExtraFields)
	}
	c.DictExtraFields = string(policy)
	if c.LoginRateLimit <= 0 {
		return fmt.Errorf("LOGIN_RATE_LIMIT must be > 0 (got %d)", c.LoginRateLimit)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, v, err)
	}
	return n, nil
}

func getInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, v, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, v, err)
	}
	return d, nil
}

// splitList parses a comma-separated list, dropping empty entries.
func splitList(raw string, fallback []string) []string {
	if raw == "" {
		return fallback
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
