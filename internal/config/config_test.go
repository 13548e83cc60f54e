package config

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
    t.Helper()
    for k, v := range map[string]string{
        "APP_ENV":     "test",
        "APP_PORT":    "5001",
        "DB_USER":     "app",
        "DB_HOST":     "localhost",
        "DB_PORT":     "3306",
        "DB_NAME":     "bookmyspace",
        "JWT_SECRET":  "secret",
        "BCRYPT_COST": "4",
    } {
        t.Setenv(k, v)
    }
}

func TestLoad_Defaults(t *testing.T) {
    setRequired(t)

    cfg := Load()
    assert.Equal(t, "5001", cfg.Port)
    assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
    assert.Equal(t, 0.7, cfg.PaymentSuccessRate)
    assert.Equal(t, 5*time.Second, cfg.PaymentTimeout)
    assert.Equal(t, 15*time.Second, cfg.TxTimeout)
    assert.Equal(t, time.UTC, cfg.Location)
    assert.False(t, cfg.DBMigrate)
    assert.Empty(t, cfg.RabbitURL)
    assert.False(t, cfg.IsProd())
}

func TestLoad_Overrides(t *testing.T) {
    setRequired(t)
    t.Setenv("PAYMENT_SUCCESS_RATE", "1")
    t.Setenv("TX_TIMEOUT", "3s")
    t.Setenv("APP_TIMEZONE", "Asia/Kolkata")
    t.Setenv("DB_MIGRATE", "yes")
    t.Setenv("TOKEN_TTL_HOURS", "2")

    cfg := Load()
    assert.Equal(t, 1.0, cfg.PaymentSuccessRate)
    assert.Equal(t, 3*time.Second, cfg.TxTimeout)
    assert.Equal(t, "Asia/Kolkata", cfg.Location.String())
    assert.True(t, cfg.DBMigrate)
    assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
}

func TestEnvHelpers_FallBackOnGarbage(t *testing.T) {
    t.Setenv("X_INT", "ten")
    t.Setenv("X_DUR", "soon")
    t.Setenv("X_BOOL", "maybe")
    assert.Equal(t, 7, envInt("X_INT", 7))
    assert.Equal(t, time.Minute, envDur("X_DUR", time.Minute))
    assert.True(t, envBool("X_BOOL", true))
    assert.Equal(t, []string{"GET", "HEAD"}, envList("X_UNSET", "GET, HEAD,"))
}

func TestLoadRateLimitConfig_Normalizes(t *testing.T) {
    t.Setenv("RATE_LIMIT_CAPACITY", "0")
    t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
    t.Setenv("RATE_LIMIT_TTL", "1s")

    cfg := LoadRateLimitConfig()
    assert.Equal(t, 1, cfg.Capacity)
    assert.Equal(t, 10*time.Second, cfg.TTL)
}

func TestLoadCacheConfig(t *testing.T) {
    t.Setenv("CACHE_METHODS", "get,head")
    cfg := LoadCacheConfig()
    assert.True(t, cfg.Methods["GET"])
    assert.True(t, cfg.Methods["HEAD"])
    assert.Equal(t, 15*time.Second, cfg.TTL)
}

func TestNewLogger(t *testing.T) {
    setRequired(t)
    t.Setenv("LOG_LEVEL", "warn")
    log, err := NewLogger(Load())
    require.NoError(t, err)
    assert.False(t, log.Core().Enabled(-1))

    t.Setenv("LOG_LEVEL", "loud")
    _, err = NewLogger(Load())
    assert.Error(t, err)
}
