package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMemoryDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("WHATSAPP_TOKEN", "")
	t.Setenv("GOOGLE_SHEETS_CREDENTIALS_PATH", "")
	t.Setenv("GOOGLE_SHEET_DATABASE_ID", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, "0 7 * * *", cfg.Digest.CronSchedule)
	assert.False(t, cfg.WhatsApp.Enabled())
	assert.False(t, cfg.Sheets.Enabled())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("RESTOCK_TEST_ONLY=1\n"), 0o600))
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("WHATSAPP_TOKEN", "")
	t.Setenv("GOOGLE_SHEETS_CREDENTIALS_PATH", "")
	t.Setenv("GOOGLE_SHEET_DATABASE_ID", "")
	t.Cleanup(func() { _ = os.Unsetenv("RESTOCK_TEST_ONLY") })

	_, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "1", os.Getenv("RESTOCK_TEST_ONLY"))
}

func validConfig() *Config {
	return &Config{
		Server:  ServerConfig{Port: "8080"},
		MongoDB: MongoDBConfig{URI: "mongodb://localhost", DBName: "restock"},
		Storage: StorageConfig{Driver: StorageMongoDB},
		Auth:    AuthConfig{JWTSecret: "s"},
		Digest:  DigestConfig{CronSchedule: "0 7 * * *", Timezone: "UTC"},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	cases := map[string]func(*Config){
		"MONGODB_URI must be provided":     func(c *Config) { c.MongoDB.URI = "" },
		"AUTH_JWT_SECRET must be provided": func(c *Config) { c.Auth.JWTSecret = "" },
		"WHATSAPP_GROUP_ID must be provided": func(c *Config) {
			c.WhatsApp = WhatsAppConfig{AccessToken: "t", PhoneNumberID: "p", VerifyToken: "v", BaseURL: "b", APIVersion: "v1"}
		},
		"GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be provided together": func(c *Config) {
			c.Sheets.SpreadsheetID = "sheet"
		},
	}
	for want, mutate := range cases {
		cfg := validConfig()
		mutate(cfg)
		assert.EqualError(t, cfg.Validate(), want)
	}

	cfg := validConfig()
	cfg.Storage.Driver = "postgres"
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Storage.Driver = StorageMemory
	cfg.MongoDB.URI = ""
	assert.NoError(t, cfg.Validate())
}

func TestLoadStorageSkipsServerSettings(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("AUTH_JWT_SECRET", "")

	cfg, err := LoadStorage(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)

	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.EqualError(t, err, "AUTH_JWT_SECRET must be provided")
}

func TestDigestLocation(t *testing.T) {
	loc, err := DigestConfig{Timezone: "UTC"}.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	_, err = DigestConfig{Timezone: "Mars/Olympus"}.Location()
	assert.Error(t, err)
}
