package mail

import (
	"net/url"
	"strings"
)

var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeHTML 转义 & < > " ' 五个字符，用于插入 HTML 文本和属性值
func EscapeHTML(s string) string {
	return htmlReplacer.Replace(s)
}

// EscapeHref 对链接中不安全的字符做百分号编码后再做 HTML 转义
func EscapeHref(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r <= ' ' || r == 0x7f:
			b.WriteString(url.PathEscape(string(r)))
		case r == '"' || r == '\'' || r == '<' || r == '>' || r == '`' || r == '\\':
			b.WriteString(url.PathEscape(string(r)))
		case r > 0x7e:
			b.WriteString(url.PathEscape(string(r)))
		default:
			b.WriteRune(r)
		}
	}
	return EscapeHTML(b.String())
}

// IsWebLink 只有 http/https 链接才会被渲染为超链接
func IsWebLink(s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// ExtractAddress 从 "Name <a@b.c>" 中取出邮箱地址，没有尖括号时返回去空白后的原值
func ExtractAddress(s string) string {
	s = strings.TrimSpace(s)
	start := strings.LastIndex(s, "<")
	end := strings.LastIndex(s, ">")
	if start >= 0 && end > start {
		return strings.TrimSpace(s[start+1 : end])
	}
	return s
}
