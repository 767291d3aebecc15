package httptransport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mustip/backend/internal/domain"
	"mustip/backend/internal/middleware"
	"mustip/backend/internal/ratelimit"
	"mustip/backend/internal/service"
)

// ContactHandler 处理联系表单提交
type ContactHandler struct {
	service   *service.InquiryService
	logger    *zap.Logger
	bodyLimit int64
}

// NewContactHandler 创建联系表单处理器
func NewContactHandler(svc *service.InquiryService, logger *zap.Logger, bodyLimit int64) *ContactHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if bodyLimit <= 0 {
		bodyLimit = middleware.ContactBodyLimit
	}
	return &ContactHandler{service: svc, logger: logger, bodyLimit: bodyLimit}
}

// ContactRequest 联系表单请求体（仅用于文档，实际按宽松方式解析）
type ContactRequest struct {
	Name        string `json:"name" example:"홍길동"`
	Email       string `json:"email" example:"client@example.com"`
	Phone       string `json:"phone,omitempty" example:"010-1234-5678"`
	Category    string `json:"category" example:"특허 출원/등록"`
	ReplyMethod string `json:"replyMethod,omitempty" enums:"email,phone"`
	Message     string `json:"message"`
	Link        string `json:"link,omitempty"`
	Consent     bool   `json:"consent"`
	Honeypot    string `json:"hp,omitempty"`
	Locale      string `json:"locale,omitempty" enums:"ko,en"`
}

// Submit 提交咨询
//
// @Summary      提交联系表单
// @Description  校验表单并向事务所发送通知邮件、向提交者发送自动回复
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        body  body      ContactRequest   true  "联系表单"
// @Success      200   {object}  ContactResponse
// @Failure      400   {object}  ContactResponse
// @Failure      429   {object}  ContactResponse
// @Failure      500   {object}  ContactResponse
// @Router       /api/contact [post]
func (h *ContactHandler) Submit(c *gin.Context) {
	raw := h.decodeBody(c.Request.Body)
	meta := domain.RequestMeta{
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		RequestID: middleware.GetRequestID(c),
	}

	result, err := h.service.Submit(c.Request.Context(), raw, meta)
	h.setRateLimitHeaders(c, result.Verdict)

	if err != nil {
		status, msg := MapError(err, result.Messages)

		switch {
		case errors.Is(err, service.ErrRateLimited):
			seconds := int(h.service.RetryAfter().Seconds())
			c.Header("Retry-After", strconv.Itoa(seconds))
		case errors.Is(err, service.ErrOfficeMailFailed):
			h.logger.Error("office notification failed",
				zap.String("request_id", meta.RequestID),
				zap.Error(err),
			)
			FailWithDetail(c, status, msg, result.Detail)
			return
		case errors.Is(err, service.ErrMailNotConfigured), errors.Is(err, service.ErrInternal):
			h.logger.Error("contact submission failed",
				zap.String("request_id", meta.RequestID),
				zap.Error(err),
			)
		}

		Fail(c, status, msg)
		return
	}

	Success(c, http.StatusOK, result.AutoReplyFailed)
}

// decodeBody 宽松解析请求体，任何解析失败都返回空 map
func (h *ContactHandler) decodeBody(body io.Reader) map[string]any {
	raw := map[string]any{}
	if body == nil {
		return raw
	}

	data, err := io.ReadAll(io.LimitReader(body, h.bodyLimit))
	if err != nil || len(data) == 0 {
		return raw
	}
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return map[string]any{}
	}
	return raw
}

// setRateLimitHeaders 剩余次数已知时设置限流响应头
func (h *ContactHandler) setRateLimitHeaders(c *gin.Context, verdict ratelimit.Verdict) {
	if verdict.Remaining == ratelimit.RemainingUnknown {
		return
	}
	c.Header("X-RateLimit-Limit", strconv.Itoa(h.service.RateLimit()))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(verdict.Remaining))
}
