package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("TOKEN_SIGNING_SECRET", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Equal(t, "pendiente", cfg.DefaultRole)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://abc.supabase.co/")
	t.Setenv("TOKEN_TTL", "900")
	t.Setenv("TOKEN_MAX_TTL", "2h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.co, ,https://admin.example.co")
	t.Setenv("AUTO_MIGRATE", "true")
	t.Setenv("MAIL_BURST", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://abc.supabase.co", cfg.SupabaseUrl)
	assert.Equal(t, 15*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 2*time.Hour, cfg.TokenMaxTTL)
	assert.Equal(t, []string{"https://app.example.co", "https://admin.example.co"}, cfg.AllowedOrigins)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, 5, cfg.MailBurst)
}

func TestIntegrationChecks(t *testing.T) {
	cfg := &Config{SMTPHost: "smtp", SMTPUsername: "u"}
	assert.False(t, cfg.SMTPConfigured())
	cfg.SMTPPassword = "p"
	assert.True(t, cfg.SMTPConfigured())

	assert.False(t, cfg.StorageConfigured())
	cfg.S3Bucket, cfg.S3AccessKeyID, cfg.S3SecretAccessKey = "b", "k", "s"
	assert.True(t, cfg.StorageConfigured())
}
