package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.App.Addr)
	assert.Equal(t, "http://127.0.0.1:8000", cfg.App.BaseURL)
	assert.Equal(t, "newsletter", cfg.Database.Name)
	assert.Equal(t, 10*time.Second, cfg.Email.Timeout.Std())
}

func TestLoadFromFileWithEnvOverride(t *testing.T) {
	raw := `
app:
  addr: ":9000"
  base_url: "https://news.example.com"
database:
  host: db.internal
  port: 5433
  user: bulletin
  password: secret
  name: newsletter_prod
  sslmode: require
email:
  base_url: "https://api.postmarkapp.com"
  sender: "hello@example.com"
  server_token: "file-token"
  timeout: 2s
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	t.Setenv("BULLETIN_CONFIG", path)
	t.Setenv("EMAIL_SERVER_TOKEN", "env-token")
	t.Setenv("DATABASE_PORT", "6000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.App.Addr)
	assert.Equal(t, "https://news.example.com", cfg.App.BaseURL)
	assert.Equal(t, "env-token", cfg.Email.ServerToken, "env overrides file")
	assert.Equal(t, 6000, cfg.Database.Port, "env overrides file")
	assert.Equal(t, 2*time.Second, cfg.Email.Timeout.Std())
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app: [not a mapping"), 0o600))
	t.Setenv("BULLETIN_CONFIG", path)

	_, err := Load()
	require.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "localhost", Port: 5432, User: "postgres",
		Password: "pw", Name: "newsletter", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=pw dbname=newsletter sslmode=disable",
		d.DSN())
}
