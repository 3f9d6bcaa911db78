package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Parse_Defaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.ListenAddr())
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "checkout.db", cfg.DBPath)
	assert.Equal(t, BackendPowerShell, cfg.DirectoryBackend)
	assert.Equal(t, "EmployeeID", cfg.DirectoryIDField)
	assert.Equal(t, 5*time.Second, cfg.DirectoryTimeout)
	assert.Equal(t, 10*time.Second, cfg.ScanLockTTL)
	assert.Empty(t, cfg.RedisAddr)
}

func Test_Parse_FromEnv(t *testing.T) {
	t.Setenv("HTTP_PLATFORM_PORT", "18080")
	t.Setenv("DIRECTORY_BACKEND", "static")
	t.Setenv("DIRECTORY_STATIC", "U1:Alice,U2:Bob")
	t.Setenv("SEED_ITEMS", "Drill,Saw")
	t.Setenv("WEB_ORIGINS", "http://kiosk.local")
	t.Setenv("DIRECTORY_TIMEOUT", "2s")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, ":18080", cfg.ListenAddr())
	assert.Equal(t, map[string]string{"U1": "Alice", "U2": "Bob"}, cfg.DirectoryStatic)
	assert.Equal(t, []string{"Drill", "Saw"}, cfg.SeedItems)
	assert.Equal(t, []string{"http://kiosk.local"}, cfg.WebOrigins)
	assert.Equal(t, 2*time.Second, cfg.DirectoryTimeout)
}

func Test_Parse_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown driver":      {"DB_DRIVER": "mysql"},
		"unknown backend":     {"DIRECTORY_BACKEND": "kerberos"},
		"ldap without url":    {"DIRECTORY_BACKEND": "ldap", "LDAP_BASE_DN": "dc=corp"},
		"ldap without basedn": {"DIRECTORY_BACKEND": "ldap", "LDAP_URL": "ldap://dc01"},
		"zero timeout":        {"DIRECTORY_TIMEOUT": "0s"},
		"bad duration":        {"SCAN_LOCK_TTL": "soon"},
	}
	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range vars {
				t.Setenv(k, v)
			}
			_, err := Parse()
			assert.Error(t, err)
		})
	}
}

func Test_PostgresDSN(t *testing.T) {
	cfg := Config{DBHost: "db", DBUser: "kiosk", DBPassword: "pw", DBName: "checkout", DBPort: "5433"}
	assert.Equal(t, "host=db user=kiosk password=pw dbname=checkout port=5433 sslmode=disable", cfg.PostgresDSN())

	cfg.DatabaseURL = "postgres://kiosk@db/checkout"
	assert.Equal(t, "postgres://kiosk@db/checkout", cfg.PostgresDSN())
}

func Test_LoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kiosk.env")
	require.NoError(t, os.WriteFile(path, []byte("KIOSK_TEST_PORT=7070\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("KIOSK_TEST_PORT") })

	require.NoError(t, LoadEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "7070", os.Getenv("KIOSK_TEST_PORT"))
}
