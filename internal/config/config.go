package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	StorageFirestore = "firestore"
	StorageMemory    = "memory"
)

// Config holds all configuration for the application.
type Config struct {
	Port                             string `mapstructure:"PORT"`
	GinMode                          string `mapstructure:"GIN_MODE"`
	LogLevel                         string `mapstructure:"LOG_LEVEL"`
	StorageDriver                    string `mapstructure:"STORAGE_DRIVER"`
	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	UsersCollection                  string `mapstructure:"USERS_COLLECTION"`
	AuditCollection                  string `mapstructure:"AUDIT_COLLECTION"`
	ClientURL                        string `mapstructure:"CLIENT_URL"`
	AuthRequired                     bool   `mapstructure:"AUTH_REQUIRED"`
	BusinessUTCOffsetHours           int    `mapstructure:"BUSINESS_UTC_OFFSET_HOURS"`
	DisplayTimezone                  string `mapstructure:"DISPLAY_TIMEZONE"`
}

var keys = []string{
	"PORT",
	"GIN_MODE",
	"LOG_LEVEL",
	"STORAGE_DRIVER",
	"FIREBASE_PROJECT_ID",
	"GOOGLE_APPLICATION_CREDENTIALS",
	"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
	"USERS_COLLECTION",
	"AUDIT_COLLECTION",
	"CLIENT_URL",
	"AUTH_REQUIRED",
	"BUSINESS_UTC_OFFSET_HOURS",
	"DISPLAY_TIMEZONE",
}

// LoadConfig loads configuration from environment variables using Viper.
// Outside release mode a local .env file is loaded first, if present.
func LoadConfig() (*Config, error) {
	if os.Getenv("GIN_MODE") != "release" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORAGE_DRIVER", StorageFirestore)
	v.SetDefault("USERS_COLLECTION", "users")
	v.SetDefault("AUDIT_COLLECTION", "auditLogs")
	v.SetDefault("AUTH_REQUIRED", false)
	v.SetDefault("BUSINESS_UTC_OFFSET_HOURS", -5)
	v.SetDefault("DISPLAY_TIMEZONE", "UTC")

	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", k, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageFirestore:
		if c.FirebaseProjectID == "" {
			return errors.New("FIREBASE_PROJECT_ID is required for the firestore storage driver")
		}
	case StorageMemory:
		if c.AuthRequired {
			return errors.New("AUTH_REQUIRED needs the firestore storage driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.BusinessUTCOffsetHours < -12 || c.BusinessUTCOffsetHours > 14 {
		return fmt.Errorf("BUSINESS_UTC_OFFSET_HOURS out of range: %d", c.BusinessUTCOffsetHours)
	}
	if _, err := time.LoadLocation(c.DisplayTimezone); err != nil {
		return fmt.Errorf("invalid DISPLAY_TIMEZONE %q: %w", c.DisplayTimezone, err)
	}
	return nil
}

// BusinessOffset is the fixed shift applied to UTC to obtain business time.
func (c *Config) BusinessOffset() time.Duration {
	return time.Duration(c.BusinessUTCOffsetHours) * time.Hour
}

// DisplayLocation is the timezone used to format timestamps in messages.
func (c *Config) DisplayLocation() *time.Location {
	loc, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
