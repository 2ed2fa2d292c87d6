package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 0, cfg.Server.RateLimitPerMinute)

	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, 100, cfg.DB.MaxOpenConns)
	assert.Equal(t, 10, cfg.DB.MaxIdleConns)

	assert.Equal(t, 168*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "tourhub_session", cfg.Auth.CookieName)
	assert.Equal(t, 15*time.Minute, cfg.Auth.OTPExpiration)

	assert.Equal(t, PaymentProviderSimulated, cfg.Payment.Provider)
	assert.InDelta(t, 0.05, cfg.Payment.FailureRate, 1e-9)
	assert.Equal(t, "usd", cfg.Payment.Currency)

	assert.False(t, cfg.Storage.UseS3())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.Pretty)
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("SHUTDOWN_TIMEOUT", "5s")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("DB_HOST", "db.example.com")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_NAME", "travel")
	t.Setenv("PAYMENT_FAILURE_RATE", "0")
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("AWS_ACCESS_KEY_ID", "key")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	t.Setenv("AWS_S3_BUCKET", "tour-images")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_PRETTY", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "db.example.com", cfg.DB.Host)
	assert.Equal(t, 5433, cfg.DB.Port)
	assert.Zero(t, cfg.Payment.FailureRate)
	assert.True(t, cfg.Storage.UseS3())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestValidate_Payment(t *testing.T) {
	tests := []struct {
		name    string
		payment PaymentConfig
		wantErr bool
	}{
		{"simulated", PaymentConfig{Provider: PaymentProviderSimulated, FailureRate: 0.05}, false},
		{"stripe with key", PaymentConfig{Provider: PaymentProviderStripe, StripeSecretKey: "sk_test"}, false},
		{"stripe without key", PaymentConfig{Provider: PaymentProviderStripe}, true},
		{"unknown provider", PaymentConfig{Provider: "paypal"}, true},
		{"negative rate", PaymentConfig{Provider: PaymentProviderSimulated, FailureRate: -0.1}, true},
		{"rate above one", PaymentConfig{Provider: PaymentProviderSimulated, FailureRate: 1.5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Auth: AuthConfig{JWTSecret: "x"}, Payment: tt.payment}
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDBConfig_ConnectionStrings(t *testing.T) {
	c := DBConfig{Host: "h", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable", PoolMaxConns: 4}

	assert.Equal(t, "host=h user=u password=p dbname=n port=5432 sslmode=disable", c.DSN())
	assert.Equal(t, "postgres://u:p@h:5432/n?sslmode=disable&pool_max_conns=4", c.URL())
}
