package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/mlmledger/internal/domain"
	"github.com/iho/mlmledger/internal/infrastructure/config"
)

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := config.Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.JWTSecret)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "BDT", cfg.Currency)
	assert.Equal(t, 3, cfg.EagerPayoutMaxGeneration)
	assert.Equal(t, 10, cfg.LeadershipMinDirectReferrals)
	assert.Equal(t, time.Hour, cfg.CommissionSweepInterval)
	assert.Equal(t, 100, cfg.CommissionSweepBatch)
	assert.False(t, cfg.PayoutFromCommissionPool)

	require.Len(t, cfg.GenerationPercentages, 10)
	for i, want := range domain.DefaultGenerationPercentages() {
		assert.True(t, want.Equal(cfg.GenerationPercentages[i]), "generation %d", i+1)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("JWT_SECRET", "top-secret")
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("GENERATION_PERCENTAGES", "12.5, 7.5")
	t.Setenv("COMMISSION_SWEEP_INTERVAL", "0")
	t.Setenv("FULFILLMENT_URL", "http://fulfillment.local")

	cfg, err := config.Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "postgres://example", cfg.DatabaseURL)
	assert.Equal(t, "redis://example", cfg.RedisURL)
	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, 45*time.Second, cfg.DatabaseTimeout)
	assert.Equal(t, "top-secret", cfg.JWTSecret)
	assert.True(t, cfg.AuthEnabled)
	assert.Zero(t, cfg.CommissionSweepInterval)
	assert.Equal(t, "http://fulfillment.local", cfg.FulfillmentURL)

	require.Len(t, cfg.GenerationPercentages, 2)
	assert.True(t, decimal.RequireFromString("12.5").Equal(cfg.GenerationPercentages[0]))
}

func TestLoadDotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("PLATFORM_USER_ID=house\nLEDGER_CURRENCY=USD\n"), 0o600))

	// godotenv never overrides variables that are already set
	t.Setenv("PLATFORM_USER_ID", "")
	require.NoError(t, os.Unsetenv("PLATFORM_USER_ID"))
	t.Setenv("LEDGER_CURRENCY", "EUR")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "house", cfg.PlatformUserID)
	assert.Equal(t, "EUR", cfg.Currency)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad duration", "HTTP_READ_TIMEOUT", "not-a-duration"},
		{"non numeric percentage", "GENERATION_PERCENTAGES", "10,abc"},
		{"percentages over 100", "GENERATION_PERCENTAGES", "60,41"},
		{"negative percentage", "GENERATION_PERCENTAGES", "10,-1"},
		{"auth without secret", "AUTH_ENABLED", "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "")
			t.Setenv(tt.key, tt.value)

			_, err := config.Load(missingEnvFile(t))
			assert.Error(t, err)
		})
	}
}

func TestParsePercentages(t *testing.T) {
	pcts, err := config.ParsePercentages(" 5 ,, 2.5 ")
	require.NoError(t, err)
	require.Len(t, pcts, 2)
	assert.True(t, decimal.RequireFromString("2.5").Equal(pcts[1]))

	_, err = config.ParsePercentages("")
	assert.ErrorIs(t, err, domain.ErrInvalidPercentages)
}
