package domain

// EmailMessage 一封待发送的邮件，每次请求重新构建，不保留
type EmailMessage struct {
	From     string
	To       string
	Subject  string
	TextBody string
	HTMLBody string
	ReplyTo  string
}

// MessageKind 区分事务所通知与客户自动回复
type MessageKind string

const (
	KindOffice    MessageKind = "office"
	KindAutoReply MessageKind = "auto_reply"
)
