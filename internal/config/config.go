// Package config loads process configuration from the environment and
// derives which optional capabilities the process was started with.
package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"bulkwala/internal/degrade"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr    string `env:"ADDR" envDefault:":8080"`
	Env     string `env:"ENV" envDefault:"development"`
	Version string `env:"VERSION" envDefault:"1.0.0"`
	APIURL  string `env:"EXTERNAL_URL" envDefault:"localhost:8080"`

	// FrontendURL is either a JSON array of origins or a single origin.
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`

	DB          DBConfig
	Auth        AuthConfig
	Mail        MailConfig
	SMS         SMSConfig
	Cloudinary  CloudinaryConfig
	Razorpay    RazorpayConfig
	RateLimiter RateLimiterConfig
}

type DBConfig struct {
	Addr        string `env:"DB_ADDR"`
	MaxConns    int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	MaxIdleTime string `env:"DB_MAX_IDLE_TIME" envDefault:"15m"`
	AutoMigrate bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`
}

type AuthConfig struct {
	Secret          string        `env:"AUTH_TOKEN_SECRET" envDefault:"dev-access-secret"`
	RefreshSecret   string        `env:"AUTH_TOKEN_REFRESH_SECRET" envDefault:"dev-refresh-secret"`
	AccessTokenExp  time.Duration `env:"AUTH_ACCESS_TOKEN_EXP" envDefault:"24h"`
	RefreshTokenExp time.Duration `env:"AUTH_REFRESH_TOKEN_EXP" envDefault:"216h"`
	Issuer          string        `env:"AUTH_TOKEN_ISSUER" envDefault:"bulkwala"`
	BasicUser       string        `env:"AUTH_BASIC_USER"`
	BasicPass       string        `env:"AUTH_BASIC_PASS"`
}

type MailConfig struct {
	Host      string `env:"SMTP_HOST"`
	Port      int    `env:"SMTP_PORT" envDefault:"587"`
	Username  string `env:"SMTP_USERNAME"`
	Password  string `env:"SMTP_PASSWORD"`
	FromEmail string `env:"MAIL_FROM" envDefault:"no-reply@bulkwala.com"`
}

type SMSConfig struct {
	AccountSID string `env:"TWILIO_ACCOUNT_SID"`
	AuthToken  string `env:"TWILIO_AUTH_TOKEN"`
	ServiceSID string `env:"TWILIO_VERIFY_SERVICE_SID"`
	// CountryCode is prefixed to the ten digit phone numbers users submit.
	CountryCode string `env:"SMS_COUNTRY_CODE" envDefault:"+91"`
}

type CloudinaryConfig struct {
	URL    string `env:"CLOUDINARY_URL"`
	Folder string `env:"CLOUDINARY_FOLDER" envDefault:"bulkwala"`
}

type RazorpayConfig struct {
	KeyID  string `env:"RAZORPAY_KEY_ID"`
	Secret string `env:"RAZORPAY_SECRET"`
}

type RateLimiterConfig struct {
	RequestsPerTimeFrame int           `env:"RATELIMITER_REQUESTS_COUNT" envDefault:"200"`
	TimeFrame            time.Duration `env:"RATELIMITER_TIME_FRAME" envDefault:"5s"`
	Enabled              bool          `env:"RATE_LIMITER_ENABLED" envDefault:"false"`
}

// Load reads an optional .env file and parses the environment into Config.
func Load(files ...string) (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load(files...)

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

func (m MailConfig) Configured() bool { return m.Host != "" && m.FromEmail != "" }

// Configured follows Twilio's credential format: account SIDs start with AC.
func (s SMSConfig) Configured() bool {
	return strings.HasPrefix(s.AccountSID, "AC") && s.AuthToken != ""
}

func (r RazorpayConfig) Configured() bool { return r.KeyID != "" && r.Secret != "" }

// Capabilities reports which optional dependencies are configured. It is
// computed once at start.
func (c *Config) Capabilities() degrade.Capabilities {
	return degrade.Capabilities{
		degrade.Database: c.DB.Addr != "",
		degrade.Email:    c.Mail.Configured(),
		degrade.SMS:      c.SMS.Configured(),
		degrade.Images:   c.Cloudinary.URL != "",
		degrade.Payments: c.Razorpay.Configured(),
	}
}

// FrontendURLs parses FrontendURL. A value that is not a JSON array is
// treated as a single URL.
func (c *Config) FrontendURLs() []string {
	raw := strings.TrimSpace(c.FrontendURL)
	if raw == "" {
		return nil
	}

	var urls []string
	if err := json.Unmarshal([]byte(raw), &urls); err != nil {
		return []string{raw}
	}

	out := urls[:0]
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// PrimaryFrontendURL is the origin used in links sent to users.
func (c *Config) PrimaryFrontendURL() string {
	urls := c.FrontendURLs()
	if len(urls) == 0 {
		return ""
	}
	return strings.TrimRight(urls[0], "/")
}
