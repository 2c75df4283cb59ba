package config

import (
	"testing"
	"time"

	"bulkwala/internal/degrade"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_ADDR", "")

	cfg, err := Load("testdata/does-not-exist.env")
	require.NoError(t, err)

	assert.Equal(t, int32(10), cfg.DB.MaxConns)
	assert.Equal(t, 5*time.Second, cfg.RateLimiter.TimeFrame)
	assert.False(t, cfg.Capabilities().Configured(degrade.Database))
}

func TestCapabilities(t *testing.T) {
	cfg := &Config{
		DB:         DBConfig{Addr: "postgres://localhost/bulkwala"},
		Mail:       MailConfig{Host: "smtp.example.com", FromEmail: "no-reply@example.com"},
		SMS:        SMSConfig{AccountSID: "XX123", AuthToken: "token"},
		Cloudinary: CloudinaryConfig{URL: "cloudinary://k:s@cloud"},
		Razorpay:   RazorpayConfig{KeyID: "rzp_test"},
	}

	caps := cfg.Capabilities()

	assert.True(t, caps.Configured(degrade.Database))
	assert.True(t, caps.Configured(degrade.Email))
	assert.False(t, caps.Configured(degrade.SMS), "account SID must start with AC")
	assert.True(t, caps.Configured(degrade.Images))
	assert.False(t, caps.Configured(degrade.Payments), "secret missing")

	cfg.SMS.AccountSID = "AC123"
	assert.True(t, cfg.Capabilities().Configured(degrade.SMS))
}

func TestFrontendURLs(t *testing.T) {
	tests := []struct {
		raw     string
		want    []string
		primary string
	}{
		{`["https://bulkwala.com/", "http://localhost:5173"]`, []string{"https://bulkwala.com/", "http://localhost:5173"}, "https://bulkwala.com"},
		{"https://shop.example.com", []string{"https://shop.example.com"}, "https://shop.example.com"},
		{"", nil, ""},
		{`[]`, []string{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			cfg := &Config{FrontendURL: tt.raw}
			assert.Equal(t, tt.want, cfg.FrontendURLs())
			assert.Equal(t, tt.primary, cfg.PrimaryFrontendURL())
		})
	}
}
