package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	gosmtp "github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"mustip/backend/internal/domain"
)

// SMTP 连接的加密方式
const (
	SecurityAuto     = "auto"     // 465 端口使用隐式 TLS，其余端口使用 STARTTLS
	SecurityTLS      = "tls"      // 隐式 TLS
	SecurityStartTLS = "starttls" // 明文连接后升级
	SecurityNone     = "none"     // 不加密，仅用于本地中继
)

// SMTPConfig SMTP 投递参数
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	Security  string
	LocalName string
	Timeout   time.Duration
}

// SMTPSender 通过 SMTP 中继投递邮件
type SMTPSender struct {
	cfg    SMTPConfig
	log    *zap.Logger
	dialer *net.Dialer
	now    func() time.Time
}

// NewSMTPSender 创建 SMTP 投递器
func NewSMTPSender(cfg SMTPConfig, log *zap.Logger) (*SMTPSender, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, errors.New("smtp: host is required")
	}
	if cfg.Port <= 0 {
		cfg.Port = 587
	}
	if cfg.Security == "" {
		cfg.Security = SecurityAuto
	}
	if cfg.Security == SecurityAuto {
		if cfg.Port == 465 {
			cfg.Security = SecurityTLS
		} else {
			cfg.Security = SecurityStartTLS
		}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &SMTPSender{
		cfg:    cfg,
		log:    log,
		dialer: &net.Dialer{Timeout: cfg.Timeout},
		now:    time.Now,
	}, nil
}

// Send 建立一次 SMTP 会话投递一封邮件
//
// 协议层错误转换为 *DispatchError，Detail 中包含 SMTP 状态码与消息。
func (s *SMTPSender) Send(ctx context.Context, msg domain.EmailMessage) (*SendResult, error) {
	raw, err := BuildMIME(msg, s.now())
	if err != nil {
		return nil, newDispatchError(0, nil, err)
	}

	client, err := s.connect(ctx)
	if err != nil {
		return nil, newDispatchError(0, map[string]any{"message": err.Error()}, err)
	}
	defer client.Close()

	if err := s.deliver(client, msg, raw); err != nil {
		return nil, smtpDispatchError(err)
	}

	if err := client.Quit(); err != nil {
		s.log.Debug("smtp quit failed", zap.Error(err))
	}
	return &SendResult{}, nil
}

func (s *SMTPSender) connect(ctx context.Context) (*gosmtp.Client, error) {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	tlsConfig := &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}

	conn, err := s.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	deadline := time.Now().Add(s.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	var client *gosmtp.Client
	switch s.cfg.Security {
	case SecurityTLS:
		client = gosmtp.NewClient(tls.Client(conn, tlsConfig))
	case SecurityStartTLS:
		client, err = gosmtp.NewClientStartTLS(conn, tlsConfig)
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("starttls %s: %w", addr, err)
		}
	default:
		client = gosmtp.NewClient(conn)
	}

	if s.cfg.LocalName != "" {
		if err := client.Hello(s.cfg.LocalName); err != nil {
			_ = client.Close()
			return nil, err
		}
	}
	return client, nil
}

func (s *SMTPSender) deliver(client *gosmtp.Client, msg domain.EmailMessage, raw []byte) error {
	if s.cfg.Username != "" {
		if err := client.Auth(s.authClient(client)); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}

	if err := client.Mail(ExtractAddress(msg.From), nil); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := client.Rcpt(ExtractAddress(msg.To), nil); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		_ = w.Close()
		return fmt.Errorf("write data: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finish data: %w", err)
	}
	return nil
}

// authClient 服务器支持 PLAIN 时优先使用，否则使用 LOGIN
func (s *SMTPSender) authClient(client *gosmtp.Client) sasl.Client {
	if client.SupportsAuth(sasl.Plain) {
		return sasl.NewPlainClient("", s.cfg.Username, s.cfg.Password)
	}
	return sasl.NewLoginClient(s.cfg.Username, s.cfg.Password)
}

// smtpDispatchError 将 SMTP 协议错误转换为 DispatchError
func smtpDispatchError(err error) *DispatchError {
	var smtpErr *gosmtp.SMTPError
	if errors.As(err, &smtpErr) {
		return newDispatchError(smtpErr.Code, map[string]any{
			"code":    smtpErr.Code,
			"message": smtpErr.Message,
		}, err)
	}
	return newDispatchError(0, map[string]any{"message": err.Error()}, err)
}
