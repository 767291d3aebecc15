package httptransport

import (
	"github.com/gin-gonic/gin"
)

// ContactResponse 联系表单接口的响应体
//
//   - 成功: {"ok": true}
//   - 自动回复失败: {"ok": true, "auto_reply_failed": true}
//   - 失败: {"ok": false, "error": "<本地化消息>"}，事务所邮件失败时附带 detail
type ContactResponse struct {
	OK              bool   `json:"ok"`
	Error           string `json:"error,omitempty"`
	Detail          any    `json:"detail,omitempty"`
	AutoReplyFailed bool   `json:"auto_reply_failed,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, status int, autoReplyFailed bool) {
	c.JSON(status, ContactResponse{
		OK:              true,
		AutoReplyFailed: autoReplyFailed,
	})
}

// Fail 失败响应
func Fail(c *gin.Context, status int, msg string) {
	c.JSON(status, ContactResponse{
		OK:    false,
		Error: msg,
	})
}

// FailWithDetail 失败响应（附带服务商错误内容）
func FailWithDetail(c *gin.Context, status int, msg string, detail map[string]any) {
	if detail == nil {
		detail = map[string]any{}
	}
	c.JSON(status, ContactResponse{
		OK:     false,
		Error:  msg,
		Detail: detail,
	})
}
