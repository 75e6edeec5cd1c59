package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProductionConfigDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("NODE_ENV", "")
	t.Setenv("PORT", "")
	t.Setenv("FRONTEND_URL", "")
	t.Setenv("DISPATCH_CONCURRENCY", "")
	t.Setenv("DISPATCH_SWEEP_INTERVAL", "")
	t.Setenv("DISPATCH_STALE_AFTER", "")

	cfg, err := LoadProductionConfig("")
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, 1, cfg.Dispatch.Concurrency)
	assert.Equal(t, "onboarding@resend.dev", cfg.Dispatch.FromEmail)
	assert.Equal(t, 5*time.Minute, cfg.Dispatch.SweepInterval)
	assert.Equal(t, 30*time.Minute, cfg.Dispatch.StaleAfter)
	assert.NoError(t, ValidateProductionConfig(cfg))
}

func TestLoadProductionConfigEnvFileAndOverride(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "PORT=7000\nSMTP_HOST=smtp.example.com\nSMTP_USER=bot@example.com\nSMTP_PASSWORD=secret\nNODE_ENV=production\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	t.Setenv("APP_ENV", "")
	t.Setenv("NODE_ENV", "")
	t.Setenv("PORT", "7100")
	t.Setenv("DEFAULT_FROM_EMAIL", "")

	cfg, err := LoadProductionConfig(envFile)
	require.NoError(t, err)

	assert.Equal(t, 7100, cfg.Server.Port, "process env wins over the file")
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Email.Configured())
	assert.Equal(t, "bot@example.com", cfg.Email.FromEmail)
}

func TestEmailConfigConfigured(t *testing.T) {
	assert.False(t, EmailConfig{Provider: "smtp", Host: "smtp.example.com"}.Configured())
	assert.True(t, EmailConfig{Provider: "mock"}.Configured())
	assert.True(t, EmailConfig{Provider: "ses", SESRegion: "us-east-1"}.Configured())
}

func TestValidateProductionConfigRejectsBadValues(t *testing.T) {
	cfg := &ProductionConfig{
		Environment: "nowhere",
		Database:    DatabaseConfig{Host: "localhost", Port: 5432, MaxOpenConns: 1},
		Server:      ServerConfig{Port: 70000},
		Security:    SecurityConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Email:       EmailConfig{Provider: "pigeon", Port: 587},
		Dispatch:    DispatchConfig{Concurrency: 0, FromEmail: "a@b.c", SweepInterval: time.Minute},
		Logging:     LoggingConfig{Output: "stdout"},
	}

	err := ValidateProductionConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_ENV")
	assert.Contains(t, err.Error(), "PORT must be between 1 and 65535")
	assert.Contains(t, err.Error(), "MAIL_PROVIDER")
	assert.Contains(t, err.Error(), "DISPATCH_CONCURRENCY")
	assert.Contains(t, err.Error(), "DISPATCH_STALE_AFTER")
}

func TestValidateProductionConfigStaleAfterFloor(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("NODE_ENV", "")
	t.Setenv("DISPATCH_CONCURRENCY", "")

	cfg, err := LoadProductionConfig("")
	require.NoError(t, err)

	cfg.Dispatch.SweepInterval = time.Minute
	cfg.Dispatch.StaleAfter = 10 * time.Second
	err = ValidateProductionConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DISPATCH_STALE_AFTER must be at least 1m0s")

	cfg.Dispatch.StaleAfter = MinStaleAfter
	assert.NoError(t, ValidateProductionConfig(cfg))

	cfg.Dispatch.SweepInterval = 0
	cfg.Dispatch.StaleAfter = 0
	assert.NoError(t, ValidateProductionConfig(cfg), "sweep disabled")
}

func TestDatabaseDSN(t *testing.T) {
	assert.Equal(t, "postgres://u:p@db:5432/crm", DatabaseConfig{URL: "postgres://u:p@db:5432/crm", Host: "ignored"}.DSN())
	assert.Equal(t,
		"host=db port=5432 user=u password=p dbname=crm sslmode=disable",
		DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "crm", SSLMode: "disable"}.DSN())
}
