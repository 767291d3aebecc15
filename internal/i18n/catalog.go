// Package i18n 提供联系表单使用的多语言消息目录。
//
// 每种语言对应一份 Messages，按请求解析一次后向下传递，
// 新增语言只需要在 catalog 中增加一项。
package i18n

import (
	"mustip/backend/internal/domain"
)

// Messages 一种语言下的全部用户可见文本
type Messages struct {
	Locale domain.Locale

	// 服务端错误消息
	ConsentRequired string
	MissingFields   string
	InvalidEmail    string
	RateLimited     string
	ServerConfig    string
	MailFailed      string
	ProcessingError string

	// 回复方式标签
	ReplyEmail string
	ReplyPhone string

	// 自动回复模板
	AutoReplySubject  string // %s = 事务所名
	Greeting          string // %s = 姓名
	Thanks            string // %s = 事务所名
	ReceiptHeading    string
	CategoryLabel     string
	ReplyMethodLabel  string
	ReceivedAtLabel   string
	MessageLabel      string
	ResponseTime      string
	Notice            string
	Urgency           string // %s = 紧急联系电话
	Signoff           string
	TimezoneSuffix    string
	FirmNameFormatted string // 自动回复签名，%s = 事务所名

	// 客户端表单文本
	ValidationError string
	SendError       string
	NetworkError    string
	GenericError    string
	SuccessTitle    string
	SuccessMessage  string
	Categories      []string
}

// ReplyMethodName 返回回复方式的本地化名称
func (m *Messages) ReplyMethodName(method domain.ReplyMethod) string {
	if method == domain.ReplyByPhone {
		return m.ReplyPhone
	}
	return m.ReplyEmail
}

var korean = &Messages{
	Locale: domain.LocaleKO,

	ConsentRequired: "개인정보 수집·이용에 동의해 주세요.",
	MissingFields:   "필수 항목(이름, 이메일, 문의 분야, 문의 내용)을 입력해 주세요.",
	InvalidEmail:    "이메일 형식이 올바르지 않습니다.",
	RateLimited:     "요청이 너무 많습니다. 잠시 후 다시 시도해 주세요.",
	ServerConfig:    "서버 설정 오류로 문의를 접수할 수 없습니다. 전화로 연락해 주세요.",
	MailFailed:      "메일 전송에 실패했습니다. 잠시 후 다시 시도해 주세요.",
	ProcessingError: "문의 처리 중 오류가 발생했습니다.",

	ReplyEmail: "이메일",
	ReplyPhone: "전화",

	AutoReplySubject:  "[%s] 문의가 정상적으로 접수되었습니다",
	Greeting:          "%s 님, 안녕하세요.",
	Thanks:            "%s에 문의해 주셔서 감사합니다. 아래 내용으로 문의가 접수되었습니다.",
	ReceiptHeading:    "접수 내용",
	CategoryLabel:     "문의 분야",
	ReplyMethodLabel:  "희망 회신 방법",
	ReceivedAtLabel:   "접수 일시",
	MessageLabel:      "문의 내용",
	ResponseTime:      "담당 변리사가 내용을 검토한 후 영업일 기준 1~2일 이내에 회신드리겠습니다.",
	Notice:            "본 메일은 발신 전용 자동 안내 메일입니다. 추가 자료가 있으시면 이 메일에 회신해 주세요.",
	Urgency:           "급한 용무는 대표번호 %s 로 연락해 주시기 바랍니다.",
	Signoff:           "감사합니다.",
	TimezoneSuffix:    "KST",
	FirmNameFormatted: "%s 드림",

	ValidationError: "필수 항목을 확인해 주세요. (이메일 형식/동의 포함)",
	SendError:       "전송에 실패했습니다. 잠시 후 다시 시도해 주세요.",
	NetworkError:    "네트워크 오류가 발생했습니다. 연결 상태를 확인해 주세요.",
	GenericError:    "오류가 발생했습니다.",
	SuccessTitle:    "문의가 접수되었습니다",
	SuccessMessage:  "입력하신 이메일로 접수 확인 메일을 보내드렸습니다.",
	Categories: []string{
		"특허 출원/등록",
		"상표 출원/등록",
		"디자인 출원/등록",
		"FTO/침해 검토",
		"계약/라이선스",
		"분쟁/무효/심판",
		"기타",
	},
}

var english = &Messages{
	Locale: domain.LocaleEN,

	ConsentRequired: "Please agree to the collection and use of personal information.",
	MissingFields:   "Please fill in the required fields (name, email, category, message).",
	InvalidEmail:    "Please enter a valid email address.",
	RateLimited:     "Too many requests. Please try again later.",
	ServerConfig:    "We cannot accept inquiries right now due to a server configuration error. Please call us instead.",
	MailFailed:      "Failed to send your inquiry. Please try again later.",
	ProcessingError: "An error occurred while processing your inquiry.",

	ReplyEmail: "Email",
	ReplyPhone: "Phone",

	AutoReplySubject:  "[%s] We have received your inquiry",
	Greeting:          "Dear %s,",
	Thanks:            "Thank you for contacting %s. We have received your inquiry with the details below.",
	ReceiptHeading:    "Inquiry details",
	CategoryLabel:     "Category",
	ReplyMethodLabel:  "Preferred reply method",
	ReceivedAtLabel:   "Received at",
	MessageLabel:      "Message",
	ResponseTime:      "A patent attorney will review your inquiry and reply within 1-2 business days.",
	Notice:            "This is an automated confirmation. If you have additional materials, simply reply to this email.",
	Urgency:           "For urgent matters, please call us at %s.",
	Signoff:           "Best regards,",
	TimezoneSuffix:    "UTC+9",
	FirmNameFormatted: "%s",

	ValidationError: "Please check the required fields (including email format and consent).",
	SendError:       "Failed to send. Please try again later.",
	NetworkError:    "A network error occurred. Please check your connection.",
	GenericError:    "Something went wrong.",
	SuccessTitle:    "Your inquiry has been received",
	SuccessMessage:  "We have sent a confirmation to the email address you entered.",
	Categories: []string{
		"Patent filing/registration",
		"Trademark filing/registration",
		"Design filing/registration",
		"FTO/infringement review",
		"Contracts/licensing",
		"Disputes/invalidation/trials",
		"Other",
	},
}

var catalog = map[domain.Locale]*Messages{
	domain.LocaleKO: korean,
	domain.LocaleEN: english,
}

// Resolve 返回指定语言的消息，未知语言回落到默认语言
func Resolve(locale domain.Locale) *Messages {
	if m, ok := catalog[locale]; ok {
		return m
	}
	return catalog[domain.DefaultLocale]
}

// ResolveCode 按原始语言代码解析
func ResolveCode(code string) *Messages {
	return Resolve(domain.ParseLocale(code))
}

// Office 事务所内部通知使用的语言，与提交者语言无关
func Office() *Messages {
	return korean
}
