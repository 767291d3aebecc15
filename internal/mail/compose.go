// Package mail 负责联系表单邮件的组装与投递。
//
// 每次成功提交产生两封邮件：发给事务所的通知邮件（始终使用韩语）
// 和发给提交者的自动回复（使用提交者的语言）。
package mail

import (
	"fmt"
	"strings"
	"time"

	"mustip/backend/internal/domain"
	"mustip/backend/internal/i18n"
)

// OfficeSubjectPrefix 事务所通知邮件的主题前缀
const OfficeSubjectPrefix = "[홈페이지 문의]"

// koreaTime 自动回复中的接收时间固定按 UTC+9 展示
var koreaTime = time.FixedZone("KST", 9*60*60)

// Firm 事务所信息
type Firm struct {
	NameKO  string
	NameEN  string
	Phone   string
	Email   string
	Website string
}

// DefaultFirm 默认事务所信息
func DefaultFirm() Firm {
	return Firm{
		NameKO:  "머스트 특허법률사무소",
		NameEN:  "MUST IP Law Firm",
		Phone:   "02-526-6710",
		Email:   "mustip@mustip.co.kr",
		Website: "https://www.mustip.co.kr",
	}
}

// Name 按语言返回事务所名称，未配置时使用默认名称
func (f Firm) Name(locale domain.Locale) string {
	if locale == domain.LocaleEN {
		if f.NameEN != "" {
			return f.NameEN
		}
		return DefaultFirm().NameEN
	}
	if f.NameKO != "" {
		return f.NameKO
	}
	return DefaultFirm().NameKO
}

// Composer 根据提交内容生成邮件
type Composer struct {
	Firm          Firm
	MailFrom      string
	MailTo        string
	AutoReplyFrom string
	Now           func() time.Time
}

func (c *Composer) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// OfficeMessage 生成发给事务所的通知邮件
//
// 参数:
//   - sub: 已清理并通过校验的提交
//   - meta: 请求诊断信息（客户端 IP、User-Agent）
//
// 返回值:
//   - domain.EmailMessage: 回复地址为提交者邮箱
func (c *Composer) OfficeMessage(sub domain.InquirySubmission, meta domain.RequestMeta) domain.EmailMessage {
	msgs := i18n.Office()
	submittedAt := c.now().UTC().Format(time.RFC3339)
	phone := valueOrDash(sub.Phone)
	link := valueOrDash(sub.Link)

	rows := []struct {
		label string
		value string
	}{
		{"이름", sub.Name},
		{"이메일", sub.Email},
		{"연락처", phone},
		{msgs.CategoryLabel, sub.Category},
		{msgs.ReplyMethodLabel, msgs.ReplyMethodName(sub.ReplyMethod)},
		{"참고 링크", link},
		{"언어", string(sub.Locale)},
	}

	var text strings.Builder
	for _, row := range rows {
		fmt.Fprintf(&text, "%s: %s\n", row.label, row.value)
	}
	fmt.Fprintf(&text, "\n%s:\n%s\n\n", msgs.MessageLabel, sub.Message)
	fmt.Fprintf(&text, "---\nUser-Agent: %s\nIP: %s\n접수 시각(UTC): %s\n", valueOrDash(meta.UserAgent), valueOrDash(meta.ClientIP), submittedAt)

	var html strings.Builder
	html.WriteString(`<div style="font-family:sans-serif;font-size:14px;line-height:1.6">`)
	html.WriteString(`<h2 style="margin:0 0 12px">홈페이지 문의가 접수되었습니다</h2>`)
	html.WriteString(`<table style="border-collapse:collapse">`)
	for _, row := range rows {
		value := EscapeHTML(row.value)
		if row.label == "참고 링크" && IsWebLink(sub.Link) {
			value = fmt.Sprintf(`<a href="%s">%s</a>`, EscapeHref(sub.Link), EscapeHTML(sub.Link))
		} else if row.label == "이메일" {
			value = fmt.Sprintf(`<a href="mailto:%s">%s</a>`, EscapeHref(sub.Email), EscapeHTML(sub.Email))
		}
		fmt.Fprintf(&html, `<tr><th style="text-align:left;padding:4px 12px 4px 0;vertical-align:top">%s</th><td style="padding:4px 0">%s</td></tr>`,
			EscapeHTML(row.label), value)
	}
	html.WriteString(`</table>`)
	fmt.Fprintf(&html, `<h3 style="margin:16px 0 8px">%s</h3>`, EscapeHTML(msgs.MessageLabel))
	fmt.Fprintf(&html, `<pre style="white-space:pre-wrap;font-family:inherit;margin:0">%s</pre>`, EscapeHTML(sub.Message))
	fmt.Fprintf(&html, `<hr><p style="color:#888;font-size:12px">User-Agent: %s<br>IP: %s<br>접수 시각(UTC): %s</p>`,
		EscapeHTML(valueOrDash(meta.UserAgent)), EscapeHTML(valueOrDash(meta.ClientIP)), EscapeHTML(submittedAt))
	html.WriteString(`</div>`)

	return domain.EmailMessage{
		From:     c.MailFrom,
		To:       c.MailTo,
		Subject:  fmt.Sprintf("%s %s - %s", OfficeSubjectPrefix, sub.Category, sub.Name),
		TextBody: text.String(),
		HTMLBody: html.String(),
		ReplyTo:  sub.Email,
	}
}

// AutoReply 生成发给提交者的确认邮件
//
// 参数:
//   - sub: 已清理并通过校验的提交
//   - msgs: 提交者语言的消息目录
//
// 返回值:
//   - domain.EmailMessage: 回复地址为事务所收件地址
func (c *Composer) AutoReply(sub domain.InquirySubmission, msgs *i18n.Messages) domain.EmailMessage {
	receivedAt := FormatReceivedAt(c.now(), msgs)
	replyMethod := msgs.ReplyMethodName(sub.ReplyMethod)
	urgency := fmt.Sprintf(msgs.Urgency, c.Firm.Phone)

	greeting := fmt.Sprintf(msgs.Greeting, sub.Name)
	firmName := c.Firm.Name(msgs.Locale)
	thanks := fmt.Sprintf(msgs.Thanks, firmName)
	signature := fmt.Sprintf(msgs.FirmNameFormatted, firmName)

	var text strings.Builder
	fmt.Fprintf(&text, "%s\n\n", greeting)
	fmt.Fprintf(&text, "%s\n\n", thanks)
	fmt.Fprintf(&text, "[%s]\n", msgs.ReceiptHeading)
	fmt.Fprintf(&text, "- %s: %s\n", msgs.CategoryLabel, sub.Category)
	fmt.Fprintf(&text, "- %s: %s\n", msgs.ReplyMethodLabel, replyMethod)
	fmt.Fprintf(&text, "- %s: %s\n", msgs.ReceivedAtLabel, receivedAt)
	fmt.Fprintf(&text, "- %s:\n%s\n\n", msgs.MessageLabel, sub.Message)
	fmt.Fprintf(&text, "%s\n%s\n\n%s\n\n", msgs.ResponseTime, urgency, msgs.Notice)
	fmt.Fprintf(&text, "%s\n%s\n", msgs.Signoff, signature)
	fmt.Fprintf(&text, "%s | %s | %s\n", c.Firm.Phone, c.Firm.Email, c.Firm.Website)

	var html strings.Builder
	html.WriteString(`<div style="font-family:sans-serif;font-size:14px;line-height:1.7;color:#222">`)
	fmt.Fprintf(&html, `<p>%s</p>`, EscapeHTML(greeting))
	fmt.Fprintf(&html, `<p>%s</p>`, EscapeHTML(thanks))
	fmt.Fprintf(&html, `<h3 style="margin:16px 0 8px">%s</h3>`, EscapeHTML(msgs.ReceiptHeading))
	html.WriteString(`<ul style="padding-left:18px">`)
	fmt.Fprintf(&html, `<li>%s: %s</li>`, EscapeHTML(msgs.CategoryLabel), EscapeHTML(sub.Category))
	fmt.Fprintf(&html, `<li>%s: %s</li>`, EscapeHTML(msgs.ReplyMethodLabel), EscapeHTML(replyMethod))
	fmt.Fprintf(&html, `<li>%s: %s</li>`, EscapeHTML(msgs.ReceivedAtLabel), EscapeHTML(receivedAt))
	html.WriteString(`</ul>`)
	fmt.Fprintf(&html, `<p style="margin-bottom:4px"><strong>%s</strong></p>`, EscapeHTML(msgs.MessageLabel))
	fmt.Fprintf(&html, `<pre style="white-space:pre-wrap;font-family:inherit;background:#f6f6f6;padding:12px;margin:0">%s</pre>`, EscapeHTML(sub.Message))
	fmt.Fprintf(&html, `<p>%s<br>%s</p>`, EscapeHTML(msgs.ResponseTime), EscapeHTML(urgency))
	fmt.Fprintf(&html, `<p style="color:#888;font-size:12px">%s</p>`, EscapeHTML(msgs.Notice))
	fmt.Fprintf(&html, `<p>%s<br><strong>%s</strong></p>`, EscapeHTML(msgs.Signoff), EscapeHTML(signature))
	fmt.Fprintf(&html, `<p style="color:#888;font-size:12px">%s | %s | %s</p>`,
		EscapeHTML(c.Firm.Phone), EscapeHTML(c.Firm.Email), EscapeHTML(c.Firm.Website))
	html.WriteString(`</div>`)

	from := c.AutoReplyFrom
	if strings.TrimSpace(from) == "" {
		from = c.MailFrom
	}

	return domain.EmailMessage{
		From:     from,
		To:       sub.Email,
		Subject:  fmt.Sprintf(msgs.AutoReplySubject, firmName),
		TextBody: text.String(),
		HTMLBody: html.String(),
		ReplyTo:  ExtractAddress(c.MailTo),
	}
}

// FormatReceivedAt 以 UTC+9 展示接收时间，例如 "2026-03-01 09:30 (KST)"
func FormatReceivedAt(t time.Time, msgs *i18n.Messages) string {
	return fmt.Sprintf("%s (%s)", t.In(koreaTime).Format("2006-01-02 15:04"), msgs.TimezoneSuffix)
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
