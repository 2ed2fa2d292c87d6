package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the API server.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Redis   RedisConfig
	Auth    AuthConfig
	Payment PaymentConfig
	Storage StorageConfig
	Email   EmailConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port               string        `envconfig:"SERVER_PORT" default:"8080"`
	ShutdownTimeout    time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	CORSOrigins        []string      `envconfig:"CORS_ORIGINS" default:"*"`
	RateLimitPerMinute int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"0"`
	BaseURL            string        `envconfig:"BASE_URL" default:"http://localhost:8080"`
}

// DBConfig holds PostgreSQL settings shared by gorm and the pgx pool.
// Set DB_PASSWORD and DB_SSLMODE explicitly outside local development.
type DBConfig struct {
	Host         string `envconfig:"DB_HOST" default:"localhost"`
	Port         int    `envconfig:"DB_PORT" default:"5432"`
	User         string `envconfig:"DB_USER" default:"postgres"`
	Password     string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name         string `envconfig:"DB_NAME" default:"tourhub"`
	SSLMode      string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"100"`
	MaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`
	PoolMaxConns int    `envconfig:"DB_POOL_MAX_CONNS" default:"10"`
}

// DSN returns the keyword/value connection string used by gorm.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}

// URL returns the connection URL used by the pgx pool.
func (c DBConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode, c.PoolMaxConns)
}

// RedisConfig is optional. An empty URL disables server-side sessions and rate limiting.
type RedisConfig struct {
	URL string `envconfig:"REDIS_URL"`
}

type AuthConfig struct {
	JWTSecret     string        `envconfig:"JWT_SECRET"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"168h"`
	CookieName    string        `envconfig:"SESSION_COOKIE" default:"tourhub_session"`
	CookieSecure  bool          `envconfig:"COOKIE_SECURE" default:"false"`
	BcryptCost    int           `envconfig:"BCRYPT_COST" default:"12"`
	OTPExpiration time.Duration `envconfig:"OTP_EXPIRATION" default:"15m"`
}

const (
	PaymentProviderSimulated = "simulated"
	PaymentProviderStripe    = "stripe"
)

type PaymentConfig struct {
	Provider        string  `envconfig:"PAYMENT_PROVIDER" default:"simulated"`
	FailureRate     float64 `envconfig:"PAYMENT_FAILURE_RATE" default:"0.05"`
	Currency        string  `envconfig:"PAYMENT_CURRENCY" default:"usd"`
	StripeSecretKey string  `envconfig:"STRIPE_SECRET_KEY"`
}

// StorageConfig selects S3 when region and credentials are all present.
type StorageConfig struct {
	AWSRegion    string `envconfig:"AWS_REGION"`
	AWSAccessKey string `envconfig:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey string `envconfig:"AWS_SECRET_ACCESS_KEY"`
	Bucket       string `envconfig:"AWS_S3_BUCKET"`
	UploadDir    string `envconfig:"UPLOAD_DIR" default:"./uploads"`
}

// UseS3 reports whether the S3 backend is fully configured.
func (c StorageConfig) UseS3() bool {
	return c.AWSRegion != "" && c.AWSAccessKey != "" && c.AWSSecretKey != "" && c.Bucket != ""
}

type EmailConfig struct {
	From        string `envconfig:"EMAIL_FROM"`
	Password    string `envconfig:"EMAIL_PASSWORD"`
	SMTPHost    string `envconfig:"SMTP_HOST"`
	SMTPPort    string `envconfig:"SMTP_PORT" default:"587"`
	CompanyName string `envconfig:"COMPANY_NAME" default:"TourHub Travel"`
}

// Enabled reports whether outgoing mail can be sent.
func (c EmailConfig) Enabled() bool {
	return c.From != "" && c.Password != "" && c.SMTPHost != ""
}

type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Pretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// Load parses environment variables into a Config and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.Payment.Provider {
	case PaymentProviderSimulated:
	case PaymentProviderStripe:
		if c.Payment.StripeSecretKey == "" {
			return errors.New("STRIPE_SECRET_KEY is required when PAYMENT_PROVIDER=stripe")
		}
	default:
		return fmt.Errorf("unknown PAYMENT_PROVIDER %q", c.Payment.Provider)
	}
	if c.Payment.FailureRate < 0 || c.Payment.FailureRate > 1 {
		return fmt.Errorf("PAYMENT_FAILURE_RATE must be between 0 and 1, got %v", c.Payment.FailureRate)
	}
	return nil
}
