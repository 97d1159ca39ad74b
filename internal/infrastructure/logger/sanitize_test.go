package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeForLog(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain filename", "A001_pool_wide.mp4", "A001_pool_wide.mp4"},
		{"folder path", "/footage/2026-08-12 lisbon/b-roll", "/footage/2026-08-12 lisbon/b-roll"},
		{"empty", "", ""},
		{"newline forges entry", "clip.mp4\nERROR fake line", `clip.mp4\nERROR fake line`},
		{"carriage return", "a\rb", `a\rb`},
		{"crlf", "a\r\nb", `a\r\nb`},
		{"tab", "a\tb", `a\tb`},
		{"null byte", "a\x00b", `a\x00b`},
		{"ansi color to hex", "\x1b[31mred\x1b[0m", `\x1b[31mred\x1b[0m`},
		{"terminal clear attempt", "\x1b[2Jgone", `\x1b[2Jgone`},
		{"bell", "a\x07b", `a\x07b`},
		{"del", "a\x7fb", `a\x7fb`},
		{"accented filename kept", "entrevue café.mov", "entrevue café.mov"},
		{"cjk filename kept", "旅行記録.mp4", "旅行記録.mp4"},
		{"emoji kept", "take 3 🎬.mov", "take 3 🎬.mov"},
		{"quotes kept", `take "two".mp4`, `take "two".mp4`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeForLog(tt.input))
		})
	}
}

func TestSanitizeForLog_AllControlRunes(t *testing.T) {
	for i := 0; i < 32; i++ {
		got := SanitizeForLog(string(rune(i)))
		assert.NotEqual(t, string(rune(i)), got, "control rune %#02x leaked through", i)
		assert.Equal(t, byte('\\'), got[0])
	}
	assert.Equal(t, `\x7f`, SanitizeForLog("\x7f"))
}
