package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 发信通道
const (
	TransportResend = "resend"
	TransportSMTP   = "smtp"
)

// 限流计数存储
const (
	BackendAuto    = "auto"
	BackendUpstash = "upstash"
	BackendRedis   = "redis"
	BackendMemory  = "memory"
	BackendNone    = "none"
)

// ServerConfig 定义 HTTP 服务器的监听配置参数
type ServerConfig struct {
	Host            string        // 监听地址，默认 "0.0.0.0"
	Port            int           // 监听端口，默认 8080
	TrustedProxies  []string      // 可信代理网段，用于解析 X-Forwarded-For
	BodyLimit       int64         // 联系表单请求体上限（字节）
	ReadTimeout     time.Duration // 读取请求超时
	WriteTimeout    time.Duration // 写入响应超时，需覆盖两次发信的耗时
	ShutdownTimeout time.Duration // 优雅关闭等待时间
}

// CORSConfig 定义跨域资源共享 (CORS) 配置
type CORSConfig struct {
	AllowedOrigins []string // 允许的来源列表，"*" 表示允许所有来源
}

// LogConfig 定义日志系统配置
type LogConfig struct {
	Level       string // 日志级别: debug, info, warn, error
	Development bool   // 开发模式: 启用彩色输出和详细堆栈信息
	File        string // 日志文件路径，留空只输出到控制台
}

// MailConfig 定义发信配置
type MailConfig struct {
	Transport     string // resend 或 smtp
	From          string // 事务所通知邮件发件人
	To            string // 事务所收件地址
	AutoReplyFrom string // 自动回复发件人，留空时使用 From

	ResendAPIKey   string
	ResendEndpoint string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPass     string
	SMTPSecurity string // auto, tls, starttls, none

	SendRate  float64       // 每秒最多发送封数，0 表示不限
	SendBurst int           // 突发上限
	Timeout   time.Duration // 单封邮件投递超时
}

// Ready 发信所需的配置是否齐全
func (m MailConfig) Ready() bool {
	if m.From == "" || m.To == "" {
		return false
	}
	switch m.Transport {
	case TransportSMTP:
		return m.SMTPHost != "" && m.SMTPUser != "" && m.SMTPPass != ""
	default:
		return m.ResendAPIKey != ""
	}
}

// RateLimitConfig 定义咨询接口限流配置
type RateLimitConfig struct {
	Backend       string        // auto, upstash, redis, memory, none
	Window        time.Duration // 固定窗口长度，默认 10 分钟
	Max           int           // 每个窗口每个 IP 允许的请求数，默认 5
	TTLBuffer     time.Duration // 计数键过期时间比窗口多出的部分，默认 30 秒
	UpstashURL    string        // REST 计数服务地址
	UpstashToken  string        // REST 计数服务令牌
	Timeout       time.Duration // 计数服务请求超时
	MemoryMaxKeys int           // 进程内计数器触发清扫的条目数
}

// RedisConfig 定义 Redis 服务配置
type RedisConfig struct {
	Address  string // Redis 服务地址，格式 "host:port"，留空表示不使用
	Password string // Redis 认证密码，留空表示无密码
	DB       int    // Redis 数据库编号，默认 0
}

// FirmConfig 定义自动回复中展示的事务所信息
type FirmConfig struct {
	NameKO  string
	NameEN  string
	Phone   string
	Email   string
	Website string
}

// SecurityConfig 定义日志脱敏配置
type SecurityConfig struct {
	FingerprintSecret string // 客户端 IP 指纹密钥
}

// Config 是系统核心配置的根结构体，包含所有子系统的配置
type Config struct {
	Server    ServerConfig
	CORS      CORSConfig
	Log       LogConfig
	Mail      MailConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	Firm      FirmConfig
	Security  SecurityConfig
}

// legacyEnv 早期部署使用的环境变量名，作为别名继续支持
var legacyEnv = map[string]string{
	"mail.resend_api_key":     "RESEND_API_KEY",
	"mail.from":               "MAIL_FROM",
	"mail.to":                 "MAIL_TO",
	"mail.auto_reply_from":    "AUTO_REPLY_FROM",
	"mail.smtp_host":          "SMTP_HOST",
	"mail.smtp_port":          "SMTP_PORT",
	"mail.smtp_user":          "SMTP_USER",
	"mail.smtp_pass":          "SMTP_PASS",
	"ratelimit.upstash_url":   "UPSTASH_REDIS_REST_URL",
	"ratelimit.upstash_token": "UPSTASH_REDIS_REST_TOKEN",
}

// Load 从环境变量和 .env 文件加载系统配置
//
// 配置加载优先级（从高到低）：
//  1. 带前缀的系统环境变量，例如 MUSTIP_MAIL_FROM
//  2. 不带前缀的旧变量名，例如 MAIL_FROM、RESEND_API_KEY
//  3. .env 文件（如果存在，不覆盖已存在的环境变量）
//  4. 默认值
//
// 发信凭据缺失不会导致加载失败，请求时返回 500；
// 时长格式错误或取值非法时返回错误。
//
// 返回值:
//   - *Config: 加载成功的配置对象
//   - error: 配置验证失败时返回错误
func Load() (*Config, error) {
	// 尝试加载 .env 文件（静默失败，因为 .env 文件是可选的）
	loadEnvFile()

	v := viper.New()
	v.SetEnvPrefix("mustip")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		prefixed := "MUSTIP_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, prefixed, legacy)
	}

	setDefaults(v)

	durations := map[string]time.Duration{}
	for _, key := range []string{
		"server.read_timeout",
		"server.write_timeout",
		"server.shutdown_timeout",
		"mail.timeout",
		"ratelimit.window",
		"ratelimit.ttl_buffer",
		"ratelimit.timeout",
	} {
		d, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
		durations[key] = d
	}

	transport := strings.ToLower(strings.TrimSpace(v.GetString("mail.transport")))
	if transport != TransportResend && transport != TransportSMTP {
		return nil, fmt.Errorf("invalid mail.transport %q: must be resend or smtp", transport)
	}

	backend := strings.ToLower(strings.TrimSpace(v.GetString("ratelimit.backend")))
	switch backend {
	case BackendAuto, BackendUpstash, BackendRedis, BackendMemory, BackendNone:
	default:
		return nil, fmt.Errorf("invalid ratelimit.backend %q", backend)
	}

	window := durations["ratelimit.window"]
	if window < time.Second {
		return nil, fmt.Errorf("ratelimit.window must be at least 1s, got %s", window)
	}

	corsOrigins := parseList(v.GetString("cors.allowed_origins"))
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Port:            v.GetInt("server.port"),
			TrustedProxies:  parseList(v.GetString("server.trusted_proxies")),
			BodyLimit:       v.GetInt64("server.body_limit"),
			ReadTimeout:     durations["server.read_timeout"],
			WriteTimeout:    durations["server.write_timeout"],
			ShutdownTimeout: durations["server.shutdown_timeout"],
		},
		CORS: CORSConfig{
			AllowedOrigins: corsOrigins,
		},
		Log: LogConfig{
			Level:       v.GetString("log.level"),
			Development: v.GetBool("log.development"),
			File:        v.GetString("log.file"),
		},
		Mail: MailConfig{
			Transport:      transport,
			From:           strings.TrimSpace(v.GetString("mail.from")),
			To:             strings.TrimSpace(v.GetString("mail.to")),
			AutoReplyFrom:  strings.TrimSpace(v.GetString("mail.auto_reply_from")),
			ResendAPIKey:   strings.TrimSpace(v.GetString("mail.resend_api_key")),
			ResendEndpoint: v.GetString("mail.resend_endpoint"),
			SMTPHost:       strings.TrimSpace(v.GetString("mail.smtp_host")),
			SMTPPort:       v.GetInt("mail.smtp_port"),
			SMTPUser:       v.GetString("mail.smtp_user"),
			SMTPPass:       v.GetString("mail.smtp_pass"),
			SMTPSecurity:   strings.ToLower(v.GetString("mail.smtp_security")),
			SendRate:       v.GetFloat64("mail.send_rate"),
			SendBurst:      v.GetInt("mail.send_burst"),
			Timeout:        durations["mail.timeout"],
		},
		RateLimit: RateLimitConfig{
			Backend:       backend,
			Window:        window,
			Max:           v.GetInt("ratelimit.max"),
			TTLBuffer:     durations["ratelimit.ttl_buffer"],
			UpstashURL:    strings.TrimSpace(v.GetString("ratelimit.upstash_url")),
			UpstashToken:  strings.TrimSpace(v.GetString("ratelimit.upstash_token")),
			Timeout:       durations["ratelimit.timeout"],
			MemoryMaxKeys: v.GetInt("ratelimit.memory_max_keys"),
		},
		Redis: RedisConfig{
			Address:  strings.TrimSpace(v.GetString("redis.address")),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Firm: FirmConfig{
			NameKO:  v.GetString("firm.name_ko"),
			NameEN:  v.GetString("firm.name_en"),
			Phone:   v.GetString("firm.phone"),
			Email:   v.GetString("firm.email"),
			Website: v.GetString("firm.website"),
		},
		Security: SecurityConfig{
			FingerprintSecret: v.GetString("security.fingerprint_secret"),
		},
	}

	if cfg.RateLimit.Max <= 0 {
		return nil, fmt.Errorf("ratelimit.max must be positive, got %d", cfg.RateLimit.Max)
	}

	return cfg, nil
}

// setDefaults 设置所有配置项的默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.trusted_proxies", "")
	v.SetDefault("server.body_limit", 64*1024)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("cors.allowed_origins", "*")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("log.file", "")
	v.SetDefault("mail.transport", TransportResend)
	v.SetDefault("mail.from", "")
	v.SetDefault("mail.to", "")
	v.SetDefault("mail.auto_reply_from", "")
	v.SetDefault("mail.resend_api_key", "")
	v.SetDefault("mail.resend_endpoint", "https://api.resend.com/emails")
	v.SetDefault("mail.smtp_host", "")
	v.SetDefault("mail.smtp_port", 465)
	v.SetDefault("mail.smtp_user", "")
	v.SetDefault("mail.smtp_pass", "")
	v.SetDefault("mail.smtp_security", "auto")
	v.SetDefault("mail.send_rate", 2)
	v.SetDefault("mail.send_burst", 2)
	v.SetDefault("mail.timeout", "10s")
	v.SetDefault("ratelimit.backend", BackendAuto)
	v.SetDefault("ratelimit.window", "10m")
	v.SetDefault("ratelimit.max", 5)
	v.SetDefault("ratelimit.ttl_buffer", "30s")
	v.SetDefault("ratelimit.upstash_url", "")
	v.SetDefault("ratelimit.upstash_token", "")
	v.SetDefault("ratelimit.timeout", "3s")
	v.SetDefault("ratelimit.memory_max_keys", 10000)
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("firm.name_ko", "머스트 특허법률사무소")
	v.SetDefault("firm.name_en", "MUST IP Law Firm")
	v.SetDefault("firm.phone", "02-526-6710")
	v.SetDefault("firm.email", "mustip@mustip.co.kr")
	v.SetDefault("firm.website", "https://www.mustip.co.kr")
	v.SetDefault("security.fingerprint_secret", "")
}

// parseList 将逗号分隔的字符串解析为字符串切片
//
// 参数:
//   - value: 逗号分隔的字符串，如 "item1,item2,item3"
//
// 返回值:
//   - []string: 解析后的字符串切片，已去除空白字符
func parseList(value string) []string {
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// loadEnvFile 尝试加载 .env 文件
//
// 加载顺序：
//  1. 当前目录的 .env
//  2. 父目录的 .env（用于从子目录运行的情况）
//
// 注意：
//   - 如果文件不存在，静默失败（.env 是可选的）
//   - 环境变量不会被覆盖（已存在的环境变量优先级更高）
func loadEnvFile() {
	// 尝试当前目录的 .env
	if err := godotenv.Load(".env"); err == nil {
		return
	}

	// 尝试父目录的 .env
	parentEnv := filepath.Join("..", ".env")
	if _, err := os.Stat(parentEnv); err == nil {
		_ = godotenv.Load(parentEnv)
	}
}
