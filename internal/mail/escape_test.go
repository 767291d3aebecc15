package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeHTML(t *testing.T) {
	assert.Equal(t, "&lt;script&gt;alert(&quot;x&quot;)&lt;/script&gt;", EscapeHTML(`<script>alert("x")</script>`))
	assert.Equal(t, "Tom &amp; Jerry&#39;s", EscapeHTML("Tom & Jerry's"))
	assert.Equal(t, "특허 문의", EscapeHTML("특허 문의"))
}

func TestEscapeHref(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"普通链接", "https://example.com/a?b=1&c=2", "https://example.com/a?b=1&amp;c=2"},
		{"空格", "https://example.com/a b", "https://example.com/a%20b"},
		{"引号", `https://example.com/"onmouseover="x`, "https://example.com/%22onmouseover=%22x"},
		{"尖括号", "https://example.com/<script>", "https://example.com/%3Cscript%3E"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeHref(tt.in))
		})
	}
}

func TestIsWebLink(t *testing.T) {
	assert.True(t, IsWebLink("https://example.com"))
	assert.True(t, IsWebLink("HTTP://example.com/x"))
	assert.False(t, IsWebLink("javascript:alert(1)"))
	assert.False(t, IsWebLink("ftp://example.com"))
	assert.False(t, IsWebLink("example.com"))
	assert.False(t, IsWebLink(""))
}

func TestExtractAddress(t *testing.T) {
	assert.Equal(t, "a@b.c", ExtractAddress("Name <a@b.c>"))
	assert.Equal(t, "a@b.c", ExtractAddress(`"머스트" <a@b.c>`))
	assert.Equal(t, "a@b.c", ExtractAddress("  a@b.c  "))
	assert.Equal(t, "", ExtractAddress(""))
}
