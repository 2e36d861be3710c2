package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text unchanged", "Hello, World!", "Hello, World!"},
		{"tags stripped", "<b>bold</b> move", "bold move"},
		{"script removed", "hi<script>alert('x')</script>", "hi"},
		{"ampersand kept", "R&D team", "R&D team"},
		{"trimmed", "  padded  ", "padded"},
		{"less-than kept", "a < b", "a < b"},
		{"encoded script removed", "&lt;script&gt;alert(1)&lt;/script&gt;", ""},
		{"encoded img removed", "see &lt;img src=x onerror=alert(1)&gt; here", "see  here"},
		{"double encoded tag removed", "&amp;lt;b&amp;gt;loud&amp;lt;/b&amp;gt;", "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeText(tt.in))
		})
	}
}

func TestRequireText(t *testing.T) {
	t.Parallel()

	_, err := RequireText("content", "   ", 10)
	assert.Error(t, err)

	_, err = RequireText("content", "<i></i>", 10)
	assert.Error(t, err)

	_, err = RequireText("content", strings.Repeat("x", 11), 10)
	assert.Error(t, err)

	got, err := RequireText("content", strings.Repeat("é", 10), 10)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", 10), got)
}

func TestTruncate(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "éé", Truncate("ééé", 2))
}

func TestExtractMentions(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"bob", "carol_2"}, ExtractMentions("hey @bob and @carol_2, ping @bob"))
	assert.Empty(t, ExtractMentions("no mentions here"))
}
