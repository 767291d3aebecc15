package mail

import (
	"bytes"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"

	"mustip/backend/internal/domain"
)

// BuildMIME 将邮件组装为 multipart/alternative 格式的原始报文
//
// 参数:
//   - msg: 待发送邮件
//   - now: Date 头使用的时间
//
// 返回值:
//   - []byte: 以 CRLF 换行的完整报文
//   - error: 组装失败时返回
func BuildMIME(msg domain.EmailMessage, now time.Time) ([]byte, error) {
	var buf bytes.Buffer

	writeHeader(&buf, "From", encodeAddress(msg.From))
	writeHeader(&buf, "To", encodeAddress(msg.To))
	if msg.ReplyTo != "" {
		writeHeader(&buf, "Reply-To", encodeAddress(msg.ReplyTo))
	}
	writeHeader(&buf, "Subject", mime.BEncoding.Encode("UTF-8", msg.Subject))
	writeHeader(&buf, "Date", now.Format(time.RFC1123Z))
	writeHeader(&buf, "Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), messageIDHost(msg.From)))
	writeHeader(&buf, "MIME-Version", "1.0")

	mw := multipart.NewWriter(&buf)
	writeHeader(&buf, "Content-Type", fmt.Sprintf("multipart/alternative; boundary=%q", mw.Boundary()))
	buf.WriteString("\r\n")

	if err := writeTextPart(mw, "text/plain", msg.TextBody); err != nil {
		return nil, err
	}
	if msg.HTMLBody != "" {
		if err := writeTextPart(mw, "text/html", msg.HTMLBody); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	return buf.Bytes(), nil
}

func writeHeader(buf *bytes.Buffer, key, value string) {
	buf.WriteString(key)
	buf.WriteString(": ")
	buf.WriteString(value)
	buf.WriteString("\r\n")
}

// writeTextPart 写入一个 quoted-printable 编码的 UTF-8 文本分段
func writeTextPart(mw *multipart.Writer, mediaType, body string) error {
	header := textproto.MIMEHeader{}
	header.Set("Content-Type", mediaType+"; charset=UTF-8")
	header.Set("Content-Transfer-Encoding", "quoted-printable")

	part, err := mw.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create %s part: %w", mediaType, err)
	}
	qp := quotedprintable.NewWriter(part)
	if _, err := qp.Write([]byte(normalizeNewlines(body))); err != nil {
		return fmt.Errorf("write %s part: %w", mediaType, err)
	}
	return qp.Close()
}

// encodeAddress 对带显示名的地址进行 RFC 2047 编码
func encodeAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	start := strings.LastIndex(addr, "<")
	if start <= 0 || !strings.HasSuffix(addr, ">") {
		return addr
	}
	name := strings.Trim(strings.TrimSpace(addr[:start]), `"`)
	if name == "" {
		return addr[start:]
	}
	return mime.QEncoding.Encode("UTF-8", name) + " " + addr[start:]
}

func messageIDHost(from string) string {
	address := ExtractAddress(from)
	if at := strings.LastIndex(address, "@"); at >= 0 && at < len(address)-1 {
		return address[at+1:]
	}
	return "localhost"
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "\r\n")
}
