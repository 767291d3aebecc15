package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mustip/backend/internal/domain"
	"mustip/backend/internal/i18n"
)

// ContactBodyLimit 联系表单请求体上限，足够容纳所有字段的最大长度
const ContactBodyLimit = 64 * 1024

// BodySizeLimit 限制请求体大小的中间件
func BodySizeLimit(maxBytes int64) gin.HandlerFunc {
	message := i18n.Resolve(domain.DefaultLocale).ProcessingError
	return func(c *gin.Context) {
		// 检查 Content-Length 头
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"ok":    false,
				"error": message,
			})
			return
		}

		// 限制请求体读取大小
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)

		// 设置响应头，告知客户端最大允许的请求体大小
		c.Header("X-Max-Body-Size", strconv.FormatInt(maxBytes, 10))

		c.Next()
	}
}
