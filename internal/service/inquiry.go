package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"mustip/backend/internal/domain"
	"mustip/backend/internal/i18n"
	"mustip/backend/internal/mail"
	"mustip/backend/internal/ratelimit"
)

var (
	ErrRateLimited       = errors.New("rate limited")
	ErrConsentRequired   = errors.New("consent required")
	ErrMissingFields     = errors.New("missing required fields")
	ErrInvalidEmail      = errors.New("invalid email")
	ErrMailNotConfigured = errors.New("mail not configured")
	ErrOfficeMailFailed  = errors.New("office mail failed")
	ErrInternal          = errors.New("internal error")
)

// Outcome 一次提交的最终结果，用作日志字段和监控标签
type Outcome string

const (
	OutcomeRateLimited     Outcome = "rate_limited"
	OutcomeHoneypot        Outcome = "honeypot"
	OutcomeConsentRequired Outcome = "consent_required"
	OutcomeMissingFields   Outcome = "missing_fields"
	OutcomeInvalidEmail    Outcome = "invalid_email"
	OutcomeNotConfigured   Outcome = "mail_not_configured"
	OutcomeOfficeFailed    Outcome = "office_failed"
	OutcomeAutoReplyFailed Outcome = "auto_reply_failed"
	OutcomeDelivered       Outcome = "delivered"
	OutcomeInternalError   Outcome = "internal_error"
)

// InquiryRecorder 接收提交与投递事件，通常由监控模块实现
type InquiryRecorder interface {
	RecordInquiry(outcome string)
	RecordMailSend(kind, result string, duration time.Duration)
}

// SubmitResult 提交处理结果
//
// 无论成功与否都会返回，传输层据此设置限流响应头并选择消息语言。
type SubmitResult struct {
	Outcome         Outcome
	Messages        *i18n.Messages
	Verdict         ratelimit.Verdict
	AutoReplyFailed bool
	// Detail 事务所邮件投递失败时服务商返回的错误内容
	Detail map[string]any
}

// InquiryService 处理联系表单提交
//
// 处理顺序：限流 → 蜜罐 → 清理与校验 → 发信配置检查 → 事务所通知 → 自动回复。
// 服务本身不保存任何状态，可被多个请求并发调用。
type InquiryService struct {
	limiter   ratelimit.Limiter
	sender    mail.Sender
	composer  *mail.Composer
	mailReady bool
	log       *zap.Logger
	recorder  InquiryRecorder
}

// InquiryServiceOptions 创建服务所需的依赖
type InquiryServiceOptions struct {
	Limiter  ratelimit.Limiter
	Sender   mail.Sender
	Composer *mail.Composer
	// MailReady 为 false 时所有有效提交都返回 ErrMailNotConfigured
	MailReady bool
	Logger    *zap.Logger
	Recorder  InquiryRecorder
}

// NewInquiryService 创建联系表单服务
func NewInquiryService(opts InquiryServiceOptions) *InquiryService {
	limiter := opts.Limiter
	if limiter == nil {
		limiter = ratelimit.NewNullLimiter(0)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &InquiryService{
		limiter:   limiter,
		sender:    opts.Sender,
		composer:  opts.Composer,
		mailReady: opts.MailReady && opts.Sender != nil && opts.Composer != nil,
		log:       log,
		recorder:  opts.Recorder,
	}
}

// RetryAfter 被限流时建议客户端等待的时间
func (s *InquiryService) RetryAfter() time.Duration {
	return s.limiter.Window()
}

// RateLimit 每个窗口允许的请求数，0 表示未启用
func (s *InquiryService) RateLimit() int {
	return s.limiter.Limit()
}

// Submit 处理一次提交
//
// 参数:
//   - ctx: 请求上下文，取消时未完成的投递会失败
//   - raw: 宽松解析得到的请求体，无法解析时为空 map
//   - meta: 客户端 IP 等诊断信息
//
// 返回值:
//   - *SubmitResult: 始终非 nil
//   - error: 包装本包定义的哨兵错误之一，nil 表示请求应返回 200
func (s *InquiryService) Submit(ctx context.Context, raw map[string]any, meta domain.RequestMeta) (result *SubmitResult, err error) {
	msgs := i18n.Resolve(domain.LocaleOf(raw))
	result = &SubmitResult{
		Messages: msgs,
		Verdict:  ratelimit.Verdict{Remaining: ratelimit.RemainingUnknown},
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("panic while processing inquiry",
				zap.Any("panic", r),
				zap.String("request_id", meta.RequestID),
			)
			result.Outcome = OutcomeInternalError
			result.AutoReplyFailed = false
			err = fmt.Errorf("%w: %v", ErrInternal, r)
		}
		s.finish(result, meta)
	}()

	result.Verdict = s.limiter.Check(ctx, meta.ClientIP)
	if result.Verdict.Limited {
		result.Outcome = OutcomeRateLimited
		return result, ErrRateLimited
	}

	sub := domain.Sanitize(raw)
	if sub.IsBot() {
		result.Outcome = OutcomeHoneypot
		return result, nil
	}

	if err := validate(sub); err != nil {
		result.Outcome = validationOutcome(err)
		return result, err
	}

	if !s.mailReady {
		result.Outcome = OutcomeNotConfigured
		return result, ErrMailNotConfigured
	}

	office := s.composer.OfficeMessage(sub, meta)
	if _, sendErr := s.send(ctx, domain.KindOffice, office); sendErr != nil {
		result.Outcome = OutcomeOfficeFailed
		result.Detail = dispatchDetail(sendErr)
		return result, fmt.Errorf("%w: %w", ErrOfficeMailFailed, sendErr)
	}

	reply := s.composer.AutoReply(sub, msgs)
	if _, sendErr := s.send(ctx, domain.KindAutoReply, reply); sendErr != nil {
		s.log.Warn("auto-reply failed",
			zap.String("request_id", meta.RequestID),
			zap.Error(sendErr),
		)
		result.Outcome = OutcomeAutoReplyFailed
		result.AutoReplyFailed = true
		return result, nil
	}

	result.Outcome = OutcomeDelivered
	return result, nil
}

// validate 按固定顺序校验：同意 → 必填 → 邮箱格式
func validate(sub domain.InquirySubmission) error {
	if !sub.Consent {
		return ErrConsentRequired
	}
	if sub.MissingRequired() {
		return ErrMissingFields
	}
	if !domain.IsValidEmail(sub.Email) {
		return ErrInvalidEmail
	}
	return nil
}

func validationOutcome(err error) Outcome {
	switch {
	case errors.Is(err, ErrConsentRequired):
		return OutcomeConsentRequired
	case errors.Is(err, ErrMissingFields):
		return OutcomeMissingFields
	default:
		return OutcomeInvalidEmail
	}
}

// send 投递单封邮件并记录耗时
func (s *InquiryService) send(ctx context.Context, kind domain.MessageKind, msg domain.EmailMessage) (*mail.SendResult, error) {
	start := time.Now()
	res, err := s.sender.Send(ctx, msg)
	status := "success"
	if err != nil {
		status = "failure"
	}
	if s.recorder != nil {
		s.recorder.RecordMailSend(string(kind), status, time.Since(start))
	}
	return res, err
}

// finish 记录提交结果
func (s *InquiryService) finish(result *SubmitResult, meta domain.RequestMeta) {
	if s.recorder != nil {
		s.recorder.RecordInquiry(string(result.Outcome))
	}

	fields := []zap.Field{
		zap.String("outcome", string(result.Outcome)),
		zap.String("locale", string(result.Messages.Locale)),
		zap.String("request_id", meta.RequestID),
	}
	switch result.Outcome {
	case OutcomeDelivered, OutcomeHoneypot:
		s.log.Info("inquiry processed", fields...)
	case OutcomeNotConfigured, OutcomeOfficeFailed, OutcomeInternalError:
		s.log.Error("inquiry failed", fields...)
	default:
		s.log.Warn("inquiry rejected", fields...)
	}
}

// dispatchDetail 取出服务商错误内容，没有时返回空 map
func dispatchDetail(err error) map[string]any {
	var dispatchErr *mail.DispatchError
	if errors.As(err, &dispatchErr) && dispatchErr.Detail != nil {
		return dispatchErr.Detail
	}
	return map[string]any{}
}
