package handler

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short", "tab", 10, "tab"},
		{"ascii", "devtools opened", 8, "devtools"},
		{"keeps whole rune", "aé", 3, "aé"},
		{"drops split rune", "aé", 2, "a"},
		{"drops split 4-byte rune", "ok🙂", 5, "ok"},
		{"leading multibyte", "日本", 2, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.n)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
			assert.LessOrEqual(t, len(got), tt.n)
		})
	}
}
