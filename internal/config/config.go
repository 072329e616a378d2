package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

const devSecretKey = "it's a secret"

type Config struct {
	Env string `env:"APP_ENV,default=development"`

	DatabaseURL string `env:"DATABASE_URL,default=postgres://localhost/warbler?sslmode=disable"`

	ServerPort      string        `env:"SERVER_PORT,default=8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=15s"`
	StaticDir       string        `env:"STATIC_DIR,default=static"`

	// SecretKey signs the session cookie.
	SecretKey     string        `env:"SECRET_KEY,default=it's a secret"`
	RedisURL      string        `env:"REDIS_URL,default=redis://localhost:6379/0"`
	SessionMaxAge time.Duration `env:"SESSION_MAX_AGE,default=168h"`
	SessionSecure bool          `env:"SESSION_SECURE,default=false"`

	BcryptCost      int  `env:"BCRYPT_COST,default=12"`
	AllowSelfFollow bool `env:"ALLOW_SELF_FOLLOW,default=false"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=json"`

	DefaultImageURL       string `env:"DEFAULT_IMAGE_URL,default=/static/images/default-pic.png"`
	DefaultHeaderImageURL string `env:"DEFAULT_HEADER_IMAGE_URL,default=/static/images/warbler-hero.jpg"`

	R2AccountID       string `env:"R2_ACCOUNT_ID"`
	R2AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	R2SecretAccessKey string `env:"R2_SECRET_ACCESS_KEY"`
	R2BucketName      string `env:"R2_BUCKET_NAME"`
	R2PublicURL       string `env:"R2_PUBLIC_URL"`
}

// LoadConfig reads an optional .env file and decodes the environment into a Config.
func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.IsProduction() && (c.SecretKey == "" || c.SecretKey == devSecretKey) {
		return errors.New("SECRET_KEY must be set in production")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}
	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("SESSION_MAX_AGE must be positive, got %s", c.SessionMaxAge)
	}
	return nil
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// MediaEnabled reports whether object storage credentials are complete.
func (c *Config) MediaEnabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicURL != ""
}
