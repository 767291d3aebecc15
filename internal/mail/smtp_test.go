package mail

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-sasl"
	gosmtp "github.com/emersion/go-smtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// relayBackend 记录收到邮件的 SMTP 中继
type relayBackend struct {
	mu         sync.Mutex
	username   string
	password   string
	rejectRcpt bool
	authed     []string
	from       []string
	rcpt       []string
	data       [][]byte
}

func (b *relayBackend) NewSession(*gosmtp.Conn) (gosmtp.Session, error) {
	return &relaySession{backend: b}, nil
}

type relaySession struct {
	backend *relayBackend
	authed  bool
}

func (s *relaySession) AuthMechanisms() []string {
	return []string{sasl.Plain}
}

func (s *relaySession) Auth(string) (sasl.Server, error) {
	return sasl.NewPlainServer(func(identity, username, password string) error {
		if username != s.backend.username || password != s.backend.password {
			return errors.New("invalid credentials")
		}
		s.authed = true
		s.backend.mu.Lock()
		s.backend.authed = append(s.backend.authed, username)
		s.backend.mu.Unlock()
		return nil
	}), nil
}

func (s *relaySession) Mail(from string, _ *gosmtp.MailOptions) error {
	if !s.authed {
		return gosmtp.ErrAuthRequired
	}
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	s.backend.from = append(s.backend.from, from)
	return nil
}

func (s *relaySession) Rcpt(to string, _ *gosmtp.RcptOptions) error {
	if s.backend.rejectRcpt {
		return &gosmtp.SMTPError{
			Code:         550,
			EnhancedCode: gosmtp.EnhancedCode{5, 1, 1},
			Message:      "mailbox unavailable",
		}
	}
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	s.backend.rcpt = append(s.backend.rcpt, to)
	return nil
}

func (s *relaySession) Data(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	s.backend.data = append(s.backend.data, data)
	return nil
}

func (s *relaySession) Reset() {}

func (s *relaySession) Logout() error { return nil }

// startRelay 在随机端口启动测试中继
func startRelay(t *testing.T, backend *relayBackend) (string, int) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := gosmtp.NewServer(backend)
	server.Domain = "localhost"
	server.AllowInsecureAuth = true
	server.ReadTimeout = 5 * time.Second
	server.WriteTimeout = 5 * time.Second

	go func() { _ = server.Serve(ln) }()
	t.Cleanup(func() { _ = server.Close() })

	addr := ln.Addr().(*net.TCPAddr)
	return "127.0.0.1", addr.Port
}

func TestSMTPSender_Send(t *testing.T) {
	backend := &relayBackend{username: "mailer", password: "secret"}
	host, port := startRelay(t, backend)

	sender, err := NewSMTPSender(SMTPConfig{
		Host:     host,
		Port:     port,
		Username: "mailer",
		Password: "secret",
		Security: SecurityNone,
		Timeout:  5 * time.Second,
	}, nil)
	require.NoError(t, err)

	_, err = sender.Send(context.Background(), testMessage())
	require.NoError(t, err)

	backend.mu.Lock()
	defer backend.mu.Unlock()
	assert.Equal(t, []string{"mailer"}, backend.authed)
	assert.Equal(t, []string{"noreply@mustip.co.kr"}, backend.from)
	assert.Equal(t, []string{"office@mustip.co.kr"}, backend.rcpt)
	require.Len(t, backend.data, 1)
	assert.Contains(t, string(backend.data[0]), "multipart/alternative")
}

func TestSMTPSender_Errors(t *testing.T) {
	t.Run("认证失败", func(t *testing.T) {
		backend := &relayBackend{username: "mailer", password: "secret"}
		host, port := startRelay(t, backend)

		sender, err := NewSMTPSender(SMTPConfig{Host: host, Port: port, Username: "mailer", Password: "wrong", Security: SecurityNone}, nil)
		require.NoError(t, err)

		_, err = sender.Send(context.Background(), testMessage())

		var dispatchErr *DispatchError
		require.ErrorAs(t, err, &dispatchErr)
		assert.GreaterOrEqual(t, dispatchErr.StatusCode, 400)
		assert.Empty(t, backend.from)
	})

	t.Run("收件人被拒绝", func(t *testing.T) {
		backend := &relayBackend{username: "mailer", password: "secret", rejectRcpt: true}
		host, port := startRelay(t, backend)

		sender, err := NewSMTPSender(SMTPConfig{Host: host, Port: port, Username: "mailer", Password: "secret", Security: SecurityNone}, nil)
		require.NoError(t, err)

		_, err = sender.Send(context.Background(), testMessage())

		var dispatchErr *DispatchError
		require.ErrorAs(t, err, &dispatchErr)
		assert.Equal(t, 550, dispatchErr.StatusCode)
		assert.Equal(t, "mailbox unavailable", dispatchErr.Detail["message"])
	})

	t.Run("连接失败", func(t *testing.T) {
		sender, err := NewSMTPSender(SMTPConfig{Host: "127.0.0.1", Port: 1, Security: SecurityNone, Timeout: time.Second}, nil)
		require.NoError(t, err)

		_, err = sender.Send(context.Background(), testMessage())

		var dispatchErr *DispatchError
		require.ErrorAs(t, err, &dispatchErr)
		assert.Equal(t, 0, dispatchErr.StatusCode)
	})
}

func TestNewSMTPSender_SecurityByPort(t *testing.T) {
	implicit, err := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 465}, nil)
	require.NoError(t, err)
	assert.Equal(t, SecurityTLS, implicit.cfg.Security)

	submission, err := NewSMTPSender(SMTPConfig{Host: "smtp.example.com"}, nil)
	require.NoError(t, err)
	assert.Equal(t, SecurityStartTLS, submission.cfg.Security)
	assert.Equal(t, 587, submission.cfg.Port)

	_, err = NewSMTPSender(SMTPConfig{}, nil)
	assert.Error(t, err)
}
