package telegram

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitByBytes(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitByBytes("short", 10))

	text := strings.Repeat("ж", 10) // 2 bytes each
	parts := splitByBytes(text, 5)
	require.Len(t, parts, 5)
	for _, p := range parts {
		assert.LessOrEqual(t, len(p), 5)
		assert.True(t, utf8.ValidString(p))
	}
	assert.Equal(t, text, strings.Join(parts, ""))
}

func TestTruncateByBytes(t *testing.T) {
	assert.Equal(t, "abc", truncateByBytes("abc", 3))
	assert.Equal(t, "жж", truncateByBytes("жжж", 5))
	assert.Equal(t, "abc", truncateByBytes("abc", 0))
}

func TestKeyboard(t *testing.T) {
	kb := Keyboard([]Button{{"a", "1"}, {"b", "2"}, {"c", "3"}}, 2)
	require.Len(t, kb.InlineKeyboard, 2)
	assert.Len(t, kb.InlineKeyboard[0], 2)
	assert.Len(t, kb.InlineKeyboard[1], 1)
	require.NotNil(t, kb.InlineKeyboard[1][0].CallbackData)
	assert.Equal(t, "3", *kb.InlineKeyboard[1][0].CallbackData)
}

func TestDetectMime(t *testing.T) {
	assert.Equal(t, "image/png", detectMime("image/png; charset=binary", nil))
	assert.Equal(t, "image/png", detectMime("", []byte("\x89PNG\r\n\x1a\n")))
	assert.Equal(t, "image/jpeg", detectMime("application/octet-stream", []byte{0, 1, 2}))
}
