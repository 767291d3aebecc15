package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// emailRegex 宽松的邮箱格式：local@domain.tld，不做完整 RFC 校验
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail 检查邮箱是否符合 local@domain.tld 形态
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// Clip 按字符（rune）截断到 max 个字符，超出部分静默丢弃
func Clip(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		// 字节数不超过上限时字符数必然不超过
		return s
	}
	count := 0
	for i := range s {
		if count == max {
			return s[:i]
		}
		count++
	}
	return s
}

// CleanField 将原始请求字段转换为去空白、已截断的字符串
//
// 缺失或 null 的字段返回空字符串；非字符串标量会被格式化。
// 输入先做 NFC 规范化，避免分解形式的韩文占用双倍长度。
func CleanField(value any, max int) string {
	var s string
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		s = v
	case bool:
		s = strconv.FormatBool(v)
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		s = v.String()
	case map[string]any, []any:
		// 对象和数组不是合法的表单值
		return ""
	default:
		s = fmt.Sprint(v)
	}
	s = norm.NFC.String(s)
	return Clip(strings.TrimSpace(s), max)
}

// ParseConsent 解析同意勾选项，只有明确的真值才算同意
func ParseConsent(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "on", "1", "yes":
			return true
		}
	}
	return false
}

// Sanitize 把原始 JSON 字段转换为 InquirySubmission，从不返回错误
func Sanitize(raw map[string]any) InquirySubmission {
	if raw == nil {
		raw = map[string]any{}
	}
	return InquirySubmission{
		Name:        CleanField(raw["name"], MaxNameLength),
		Email:       CleanField(raw["email"], MaxEmailLength),
		Phone:       CleanField(raw["phone"], MaxPhoneLength),
		Category:    CleanField(raw["category"], MaxCategoryLength),
		ReplyMethod: ParseReplyMethod(CleanField(raw["replyMethod"], 10)),
		Link:        CleanField(raw["link"], MaxLinkLength),
		Message:     CleanField(raw["message"], MaxMessageLength),
		Consent:     ParseConsent(raw["consent"]),
		Honeypot:    honeypotValue(raw["hp"]),
		Locale:      LocaleOf(raw),
	}
}

// honeypotValue 读取蜜罐字段原值，不去空白：填入空格也是机器行为
func honeypotValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return Clip(v, MaxHoneypotLength)
	case bool:
		if !v {
			return ""
		}
	case float64:
		if v == 0 {
			return ""
		}
	}
	return Clip(fmt.Sprint(value), MaxHoneypotLength)
}

// LocaleOf 只从原始字段中读取语言，用于在校验前决定错误消息的语言
func LocaleOf(raw map[string]any) Locale {
	if raw == nil {
		return DefaultLocale
	}
	return ParseLocale(strings.ToLower(CleanField(raw["locale"], 10)))
}
