package httptransport

import (
	"errors"
	"net/http"

	"mustip/backend/internal/i18n"
	"mustip/backend/internal/service"
)

// errorMapping 业务错误对应的 HTTP 状态码与本地化消息
type errorMapping struct {
	status  int
	message func(*i18n.Messages) string
}

// 错误映射表（业务错误 -> 状态码与消息）
var errorMappings = []struct {
	err     error
	mapping errorMapping
}{
	{service.ErrRateLimited, errorMapping{http.StatusTooManyRequests, func(m *i18n.Messages) string { return m.RateLimited }}},
	{service.ErrConsentRequired, errorMapping{http.StatusBadRequest, func(m *i18n.Messages) string { return m.ConsentRequired }}},
	{service.ErrMissingFields, errorMapping{http.StatusBadRequest, func(m *i18n.Messages) string { return m.MissingFields }}},
	{service.ErrInvalidEmail, errorMapping{http.StatusBadRequest, func(m *i18n.Messages) string { return m.InvalidEmail }}},
	{service.ErrMailNotConfigured, errorMapping{http.StatusInternalServerError, func(m *i18n.Messages) string { return m.ServerConfig }}},
	{service.ErrOfficeMailFailed, errorMapping{http.StatusInternalServerError, func(m *i18n.Messages) string { return m.MailFailed }}},
}

// MapError 将业务错误转换为状态码与本地化消息，未知错误返回 500 通用消息
func MapError(err error, msgs *i18n.Messages) (int, string) {
	for _, entry := range errorMappings {
		if errors.Is(err, entry.err) {
			return entry.mapping.status, entry.mapping.message(msgs)
		}
	}
	return http.StatusInternalServerError, msgs.ProcessingError
}
