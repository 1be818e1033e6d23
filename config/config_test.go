package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "kefystore.db", cfg.DatabaseURL)
	assert.Equal(t, 24*60*60, cfg.JWTExpiration)
	assert.Equal(t, "0", cfg.TaxRate)
	assert.Equal(t, "1500", cfg.FallbackDeliveryFee)
	assert.Equal(t, "XOF", cfg.Currency)
	assert.True(t, cfg.AllowAllOrigins)

	require.Len(t, cfg.Providers, 4)
	for _, name := range ProviderNames {
		provider, ok := cfg.Provider(name)
		assert.True(t, ok, name)
		assert.NotEmpty(t, provider.PayURL, name)
	}
	_, ok := cfg.Provider("paypal")
	assert.False(t, ok)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("PORT", "9000")
	t.Setenv("TAX_RATE", "0.18")
	t.Setenv("MOOV_WEBHOOK_SECRET", "s3cret")
	t.Setenv("ALLOWED_ORIGINS", "https://kefystore.ci,https://admin.kefystore.ci")
	t.Setenv("ALLOW_ALL_ORIGINS", "false")

	cfg := Load()

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "0.18", cfg.TaxRate)
	assert.False(t, cfg.AllowAllOrigins)
	assert.Equal(t, []string{"https://kefystore.ci", "https://admin.kefystore.ci"}, cfg.AllowedOrigins)

	moov, ok := cfg.Provider("moov")
	require.True(t, ok)
	assert.Equal(t, "s3cret", moov.WebhookSecret)
}

func TestValidate(t *testing.T) {
	cfg := Load()
	assert.NoError(t, cfg.Validate())

	cfg.Environment = "staging"
	assert.ErrorContains(t, cfg.Validate(), "invalid environment")

	cfg.Environment = "development"
	cfg.TaxRate = "dix-huit"
	assert.ErrorContains(t, cfg.Validate(), "invalid tax rate")

	cfg.TaxRate = "0.18"
	cfg.JWTSecret = ""
	assert.ErrorContains(t, cfg.Validate(), "JWT secret")
}
