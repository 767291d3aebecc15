package domain

// ReplyMethod 客户希望的回复方式
type ReplyMethod string

const (
	ReplyByEmail ReplyMethod = "email"
	ReplyByPhone ReplyMethod = "phone"
)

// ParseReplyMethod 解析回复方式，未知值回落为邮件
func ParseReplyMethod(value string) ReplyMethod {
	if ReplyMethod(value) == ReplyByPhone {
		return ReplyByPhone
	}
	return ReplyByEmail
}

// Locale 提交者使用的语言
type Locale string

const (
	LocaleKO Locale = "ko"
	LocaleEN Locale = "en"

	// DefaultLocale 缺省或无法识别时使用的语言
	DefaultLocale = LocaleKO
)

// ParseLocale 解析语言代码，只识别 ko/en
func ParseLocale(value string) Locale {
	switch Locale(value) {
	case LocaleEN:
		return LocaleEN
	case LocaleKO:
		return LocaleKO
	default:
		return DefaultLocale
	}
}

// 各字段清理后的最大字符数
const (
	MaxNameLength     = 60
	MaxEmailLength    = 120
	MaxPhoneLength    = 40
	MaxCategoryLength = 40
	MaxLinkLength     = 300
	MaxMessageLength  = 4000
	MaxHoneypotLength = 200
)

// InquirySubmission 一次联系表单提交（仅在请求内存在，不做持久化）
type InquirySubmission struct {
	Name        string
	Email       string
	Phone       string
	Category    string
	ReplyMethod ReplyMethod
	Link        string
	Message     string
	Consent     bool
	Honeypot    string
	Locale      Locale
}

// IsBot 蜜罐字段被填写即视为自动提交
func (s *InquirySubmission) IsBot() bool {
	return s.Honeypot != ""
}

// MissingRequired 必填字段（姓名、邮箱、分类、内容）是否有空值
func (s *InquirySubmission) MissingRequired() bool {
	return s.Name == "" || s.Email == "" || s.Category == "" || s.Message == ""
}

// RequestMeta 与提交一起记录的诊断信息
type RequestMeta struct {
	ClientIP  string
	UserAgent string
	RequestID string
}
