// Package config loads service settings from the environment.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"github.com/erazemk/findmate/internal/mail"
	"github.com/erazemk/findmate/internal/photo"
)

// Config holds runtime configuration that does not come from CLI flags.
type Config struct {
	BaseURL string `env:"BASE_URL,default=http://localhost:8080"`

	SMTP SMTP `env:", prefix=SMTP_"`
	S3   S3   `env:", prefix=S3_"`

	NATSURL      string `env:"NATS_URL"`
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	TokenTTL       time.Duration `env:"TOKEN_TTL,default=1h"`
	SessionTTL     time.Duration `env:"SESSION_TTL,default=168h"`
	CookieSecure   bool          `env:"COOKIE_SECURE,default=false"`
	LoginRateLimit int           `env:"LOGIN_RATE_LIMIT,default=10"`
	MailQueueSize  int           `env:"MAIL_QUEUE_SIZE,default=64"`
}

// SMTP configures outgoing mail. An empty Host logs mail instead of sending.
type SMTP struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT,default=587"`
	User     string `env:"USER"`
	Password string `env:"PASS"`
	From     string `env:"FROM,default=no-reply@findmate.local"`
}

// S3 configures the photo bucket. An empty Bucket stores photos in the database.
type S3 struct {
	Endpoint       string `env:"ENDPOINT"`
	Region         string `env:"REGION,default=us-east-1"`
	Bucket         string `env:"BUCKET"`
	AccessKey      string `env:"ACCESS_KEY"`
	SecretKey      string `env:"SECRET_KEY"`
	PublicURL      string `env:"PUBLIC_URL"`
	ForcePathStyle bool   `env:"FORCE_PATH_STYLE,default=false"`
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over .env entries.
func Load(ctx context.Context, dotenv ...string) (Config, error) {
	if err := godotenv.Load(dotenv...); err != nil && len(dotenv) > 0 {
		return Config{}, fmt.Errorf("loading %v: %w", dotenv, err)
	}
	return process(ctx, envconfig.OsLookuper())
}

func process(ctx context.Context, l envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return Config{}, fmt.Errorf("processing environment: %w", err)
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}
	return cfg, nil
}

// SMTPSender returns a sender for the configured server, or nil when no
// host is set.
func (c Config) SMTPSender() *mail.SMTPSender {
	if c.SMTP.Host == "" {
		return nil
	}
	return &mail.SMTPSender{
		Host:     c.SMTP.Host,
		Port:     c.SMTP.Port,
		Username: c.SMTP.User,
		Password: c.SMTP.Password,
		From:     c.SMTP.From,
	}
}

// S3Config returns the bucket settings and whether a bucket is configured.
func (c Config) S3Config() (photo.S3Config, bool) {
	return photo.S3Config{
		Endpoint:       c.S3.Endpoint,
		Region:         c.S3.Region,
		Bucket:         c.S3.Bucket,
		AccessKey:      c.S3.AccessKey,
		SecretKey:      c.S3.SecretKey,
		PublicURL:      c.S3.PublicURL,
		ForcePathStyle: c.S3.ForcePathStyle,
	}, c.S3.Bucket != ""
}
