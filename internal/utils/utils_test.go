package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSite(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"https://www.example.com/article/42", "example.com"},
		{"https://news.ycombinator.com/item?id=1", "news.ycombinator.com"},
		{"http://example.com", "example.com"},
		{"", ""},
		{"not a url", ""},
		{"/relative/path", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractSite(tt.raw), "input %q", tt.raw)
	}
}

func TestStringToInt(t *testing.T) {
	assert.Equal(t, 42, StringToInt("42"))
	assert.Equal(t, 0, StringToInt("abc"))
	assert.Equal(t, 0, StringToInt(""))
	assert.Equal(t, int64(9000000000), StringToInt64("9000000000"))
	assert.Equal(t, int64(0), StringToInt64("nope"))
}

func TestRandString(t *testing.T) {
	s := RandString(16)
	assert.Len(t, s, 16)
	for _, r := range s {
		assert.Contains(t, letterBytes, string(r))
	}
	assert.NotEqual(t, s, RandString(16))
}

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter22")
	assert.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)
	assert.True(t, CheckPasswordHash("hunter22", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestRenderMarkdownSanitizes(t *testing.T) {
	out := RenderMarkdown("**bold** and <script>alert(1)</script>")
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.NotContains(t, out, "<script>")
}

func TestRenderMarkdownHardensImages(t *testing.T) {
	out := RenderMarkdown("![alt](https://example.com/pic.png)")
	assert.Contains(t, out, `loading="lazy"`)
	assert.Contains(t, out, `referrerpolicy="no-referrer"`)
}

func TestRenderMarkdownLinksOpenSafely(t *testing.T) {
	out := RenderMarkdown("[link](https://example.com)")
	assert.Contains(t, out, `target="_blank"`)
	assert.True(t, strings.Contains(out, "noreferrer") || strings.Contains(out, "noopener"))
}
