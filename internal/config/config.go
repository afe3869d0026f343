// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Audit log backends
const (
	AuditBackendBolt   = "bolt"
	AuditBackendSQLite = "sqlite"
)

// Config holds every setting the server reads at startup.
type Config struct {
	Port string

	DBPath          string
	AuditBackend    string
	AuditSQLitePath string

	ModerationEndpoint string
	ModerationAPIKey   string
	PendingThreshold   float64

	PoolTTL             time.Duration
	PoolSweepInterval   time.Duration
	MetricsInterval     time.Duration
	NotifyPreviewLength int
	ProfileCacheSize    int
	ProfileCacheTTL     time.Duration

	OTelEnabled bool

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string
}

// Load reads an optional .env file (files are tried in order, missing ones
// are skipped) and then the process environment.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
		log.Debug().Str("file", f).Msg("Loaded environment file")
	}

	dbPath := os.Getenv("FORUM_DB_PATH")
	if dbPath == "" {
		dbPath = defaultDBPath()
	}

	cfg := &Config{
		Port:               getString("PORT", "18910"),
		DBPath:             dbPath,
		AuditBackend:       getString("FORUM_AUDIT_BACKEND", AuditBackendBolt),
		AuditSQLitePath:    getString("FORUM_AUDIT_SQLITE_PATH", filepath.Join(filepath.Dir(dbPath), "audit.sqlite")),
		ModerationEndpoint: getString("MODERATION_ENDPOINT", "https://api.openai.com/v1/moderations"),
		ModerationAPIKey:   os.Getenv("MODERATION_API_KEY"),
		SMTPHost:           os.Getenv("SMTP_HOST"),
		SMTPUser:           os.Getenv("SMTP_USER"),
		SMTPPass:           os.Getenv("SMTP_PASS"),
		SMTPFrom:           os.Getenv("SMTP_FROM"),
		OTelEnabled:        os.Getenv("OTEL_ENABLED") == "true",
	}

	var err error
	if cfg.PendingThreshold, err = getFloat("HONOUR_PENDING_THRESHOLD", 0.4); err != nil {
		return nil, err
	}
	if cfg.PoolTTL, err = getDuration("POOL_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.PoolSweepInterval, err = getDuration("POOL_SWEEP_INTERVAL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.MetricsInterval, err = getDuration("METRICS_INTERVAL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.ProfileCacheTTL, err = getDuration("PROFILE_CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.NotifyPreviewLength, err = getInt("NOTIFY_PREVIEW_LENGTH", 20); err != nil {
		return nil, err
	}
	if cfg.ProfileCacheSize, err = getInt("PROFILE_CACHE_SIZE", 1024); err != nil {
		return nil, err
	}
	if cfg.SMTPPort, err = getInt("SMTP_PORT", 587); err != nil {
		return nil, err
	}

	switch cfg.AuditBackend {
	case AuditBackendBolt, AuditBackendSQLite:
	default:
		return nil, fmt.Errorf("FORUM_AUDIT_BACKEND: unknown backend %q", cfg.AuditBackend)
	}
	if cfg.PendingThreshold <= 0 || cfg.PendingThreshold > 1 {
		return nil, fmt.Errorf("HONOUR_PENDING_THRESHOLD: must be in (0, 1], got %v", cfg.PendingThreshold)
	}
	return cfg, nil
}

// defaultDBPath uses the XDG data directory, falling back to the home
// directory, so the server can run from read-only locations.
func defaultDBPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "agora.db"
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "agora", "agora.db")
}

func getString(key, fallback string) string {
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
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %s", key, d)
	}
	return d, nil
}
