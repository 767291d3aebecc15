// Package security 提供日志脱敏等安全相关的辅助函数。
package security

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// fingerprintSize 指纹字节数，十六进制后为 16 个字符
const fingerprintSize = 8

// Fingerprinter 生成客户端 IP 的不可逆指纹，日志中使用指纹代替原始 IP
type Fingerprinter struct {
	key []byte
}

// NewFingerprinter 创建指纹生成器
//
// 参数:
//   - secret: 指纹密钥，超过 64 字节时截断，为空时使用无密钥哈希
func NewFingerprinter(secret string) *Fingerprinter {
	key := []byte(secret)
	if len(key) > blake2b.Size {
		key = key[:blake2b.Size]
	}
	return &Fingerprinter{key: key}
}

// Fingerprint 返回 IP 的指纹，空输入返回空字符串
func (f *Fingerprinter) Fingerprint(ip string) string {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return ""
	}

	h, err := blake2b.New(fingerprintSize, f.key)
	if err != nil {
		// 仅在密钥超长时出错，构造函数已保证不会发生
		return ""
	}
	h.Write([]byte(ip))
	return hex.EncodeToString(h.Sum(nil))
}
