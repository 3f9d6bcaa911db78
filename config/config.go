// config/config.go

// Package config loads the kiosk settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	BackendPowerShell = "powershell"
	BackendLDAP       = "ldap"
	BackendStatic     = "static"
)

// Config is read from environment variables (and an optional .env file).
type Config struct {
	Port         string `env:"PORT" envDefault:"5000"`
	PlatformPort string `env:"HTTP_PLATFORM_PORT"` // set by IIS HttpPlatformHandler
	GinMode      string `env:"GIN_MODE" envDefault:"release"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	WebOrigins []string `env:"WEB_ORIGINS"`

	DBDriver    string `env:"DB_DRIVER" envDefault:"sqlite"`
	DBPath      string `env:"DB_PATH" envDefault:"checkout.db"`
	DatabaseURL string `env:"DATABASE_URL"`
	DBHost      string `env:"DB_HOST" envDefault:"127.0.0.1"`
	DBUser      string `env:"DB_USER" envDefault:"postgres"`
	DBPassword  string `env:"DB_PASSWORD"`
	DBName      string `env:"DB_NAME" envDefault:"checkout"`
	DBPort      string `env:"DB_PORT" envDefault:"5432"`

	SeedItems []string `env:"SEED_ITEMS"`

	DirectoryBackend string            `env:"DIRECTORY_BACKEND" envDefault:"powershell"`
	DirectoryIDField string            `env:"DIRECTORY_ID_FIELD" envDefault:"EmployeeID"`
	DirectoryTimeout time.Duration     `env:"DIRECTORY_TIMEOUT" envDefault:"5s"`
	PowerShellPath   string            `env:"POWERSHELL_PATH" envDefault:"powershell.exe"`
	LDAPURL          string            `env:"LDAP_URL"`
	LDAPBindDN       string            `env:"LDAP_BIND_DN"`
	LDAPBindPassword string            `env:"LDAP_BIND_PASSWORD"`
	LDAPBaseDN       string            `env:"LDAP_BASE_DN"`
	LDAPNameAttr     string            `env:"LDAP_NAME_ATTR" envDefault:"name"`
	DirectoryStatic  map[string]string `env:"DIRECTORY_STATIC"`

	RedisAddr        string        `env:"REDIS_ADDR"`
	RedisPassword    string        `env:"REDIS_PASSWORD"`
	IdentityCacheTTL time.Duration `env:"IDENTITY_CACHE_TTL" envDefault:"10m"`
	ScanLockTTL      time.Duration `env:"SCAN_LOCK_TTL" envDefault:"10s"`
}

// LoadEnv loads .env into the process environment. A missing file is fine.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Parse reads the environment into a Config and validates it.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	switch c.DirectoryBackend {
	case BackendPowerShell, BackendStatic:
	case BackendLDAP:
		if c.LDAPURL == "" || c.LDAPBaseDN == "" {
			return errors.New("ldap backend needs LDAP_URL and LDAP_BASE_DN")
		}
	default:
		return fmt.Errorf("unknown DIRECTORY_BACKEND %q", c.DirectoryBackend)
	}
	if c.DirectoryTimeout <= 0 {
		return errors.New("DIRECTORY_TIMEOUT must be positive")
	}
	return nil
}

// ListenAddr prefers the port handed over by IIS.
func (c Config) ListenAddr() string {
	if c.PlatformPort != "" {
		return ":" + c.PlatformPort
	}
	return ":" + c.Port
}

// PostgresDSN returns DATABASE_URL, or a DSN built from the DB_* parts.
func (c Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}
