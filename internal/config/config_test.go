package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv 清空本包读取的环境变量，避免受运行环境影响
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"MUSTIP_SERVER_PORT",
		"MUSTIP_SERVER_TRUSTED_PROXIES",
		"MUSTIP_MAIL_TRANSPORT",
		"MUSTIP_MAIL_FROM",
		"MUSTIP_MAIL_TO",
		"MUSTIP_MAIL_RESEND_API_KEY",
		"MUSTIP_MAIL_SMTP_HOST",
		"MUSTIP_MAIL_SMTP_USER",
		"MUSTIP_MAIL_SMTP_PASS",
		"MUSTIP_RATELIMIT_BACKEND",
		"MUSTIP_RATELIMIT_WINDOW",
		"MUSTIP_RATELIMIT_MAX",
		"MUSTIP_RATELIMIT_UPSTASH_URL",
		"MUSTIP_RATELIMIT_UPSTASH_TOKEN",
		"MUSTIP_REDIS_ADDRESS",
		"MUSTIP_CORS_ALLOWED_ORIGINS",
	}
	for _, legacy := range legacyEnv {
		keys = append(keys, legacy)
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(64*1024), cfg.Server.BodyLimit)
	assert.Empty(t, cfg.Server.TrustedProxies)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "info", cfg.Log.Level)

	assert.Equal(t, TransportResend, cfg.Mail.Transport)
	assert.Equal(t, "https://api.resend.com/emails", cfg.Mail.ResendEndpoint)
	assert.Equal(t, 10*time.Second, cfg.Mail.Timeout)
	assert.False(t, cfg.Mail.Ready())

	assert.Equal(t, BackendAuto, cfg.RateLimit.Backend)
	assert.Equal(t, 10*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 5, cfg.RateLimit.Max)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.TTLBuffer)
	assert.Empty(t, cfg.Redis.Address)

	assert.Equal(t, "02-526-6710", cfg.Firm.Phone)
}

func TestLoad_LegacyEnvNames(t *testing.T) {
	clearEnv(t)
	t.Setenv("RESEND_API_KEY", "re_legacy")
	t.Setenv("MAIL_FROM", "MUST IP <noreply@mustip.co.kr>")
	t.Setenv("MAIL_TO", "office@mustip.co.kr")
	t.Setenv("UPSTASH_REDIS_REST_URL", "https://eu1.upstash.io")
	t.Setenv("UPSTASH_REDIS_REST_TOKEN", "token")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "re_legacy", cfg.Mail.ResendAPIKey)
	assert.Equal(t, "MUST IP <noreply@mustip.co.kr>", cfg.Mail.From)
	assert.True(t, cfg.Mail.Ready())
	assert.Equal(t, "https://eu1.upstash.io", cfg.RateLimit.UpstashURL)
	assert.Equal(t, "token", cfg.RateLimit.UpstashToken)
}

func TestLoad_PrefixedWinsOverLegacy(t *testing.T) {
	clearEnv(t)
	t.Setenv("RESEND_API_KEY", "re_legacy")
	t.Setenv("MUSTIP_MAIL_RESEND_API_KEY", "re_prefixed")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "re_prefixed", cfg.Mail.ResendAPIKey)
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("MUSTIP_SERVER_PORT", "9090")
	t.Setenv("MUSTIP_SERVER_TRUSTED_PROXIES", "10.0.0.0/8, 172.16.0.0/12")
	t.Setenv("MUSTIP_CORS_ALLOWED_ORIGINS", "https://www.mustip.co.kr,https://mustip.co.kr")
	t.Setenv("MUSTIP_RATELIMIT_BACKEND", "Redis")
	t.Setenv("MUSTIP_RATELIMIT_WINDOW", "1m")
	t.Setenv("MUSTIP_RATELIMIT_MAX", "3")
	t.Setenv("MUSTIP_REDIS_ADDRESS", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"10.0.0.0/8", "172.16.0.0/12"}, cfg.Server.TrustedProxies)
	assert.Equal(t, []string{"https://www.mustip.co.kr", "https://mustip.co.kr"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, BackendRedis, cfg.RateLimit.Backend)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 3, cfg.RateLimit.Max)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"窗口格式错误", "MUSTIP_RATELIMIT_WINDOW", "ten minutes"},
		{"窗口过短", "MUSTIP_RATELIMIT_WINDOW", "10ms"},
		{"未知存储", "MUSTIP_RATELIMIT_BACKEND", "memcached"},
		{"未知发信通道", "MUSTIP_MAIL_TRANSPORT", "sendgrid"},
		{"次数非正", "MUSTIP_RATELIMIT_MAX", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestMailConfig_Ready(t *testing.T) {
	tests := []struct {
		name string
		cfg  MailConfig
		want bool
	}{
		{"resend齐全", MailConfig{Transport: TransportResend, ResendAPIKey: "k", From: "a@b.c", To: "d@e.f"}, true},
		{"resend缺少密钥", MailConfig{Transport: TransportResend, From: "a@b.c", To: "d@e.f"}, false},
		{"缺少收件人", MailConfig{Transport: TransportResend, ResendAPIKey: "k", From: "a@b.c"}, false},
		{"smtp齐全", MailConfig{Transport: TransportSMTP, SMTPHost: "smtp", SMTPUser: "u", SMTPPass: "p", From: "a@b.c", To: "d@e.f"}, true},
		{"smtp缺少密码", MailConfig{Transport: TransportSMTP, SMTPHost: "smtp", SMTPUser: "u", From: "a@b.c", To: "d@e.f"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Ready())
		})
	}
}
