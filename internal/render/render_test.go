package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHighlightKeywords(t *testing.T) {
	out := highlightKeywords("the Needle in the haystack", "needle")
	assert.Contains(t, out, colorBoldRed+"Needle"+colorReset)

	// FTS operators are not highlighted
	out = highlightKeywords("this AND that", "this AND")
	assert.Contains(t, out, colorBoldRed+"this"+colorReset)
	assert.NotContains(t, out, colorBoldRed+"AND"+colorReset)

	assert.Equal(t, "untouched", highlightKeywords("untouched", ""))
}

func TestWrapLinePlain(t *testing.T) {
	lines := wrapLine("abcdefghij", 4)
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, lines)
}

func TestWrapLineSkipsANSI(t *testing.T) {
	in := "\033[1;34mabcd\033[0mefgh"
	lines := wrapLine(in, 4)
	assert.Len(t, lines, 2)
	assert.Equal(t, "\033[1;34mabcd", lines[0])
	assert.Equal(t, "\033[0mefgh", lines[1])
}

func TestWrapLineWideRunes(t *testing.T) {
	// CJK runes are two columns wide
	lines := wrapLine("你好世界", 4)
	assert.Equal(t, []string{"你好", "世界"}, lines)
}

func TestWrapLineZeroWidth(t *testing.T) {
	assert.Equal(t, []string{"anything goes"}, wrapLine("anything goes", 0))
	assert.Equal(t, []string{""}, wrapLine("", 10))
}

func TestIndentLines(t *testing.T) {
	assert.Equal(t, "  a\n  b", indentLines("a\nb", "  "))
}

func TestEventLabel(t *testing.T) {
	cases := []struct {
		kind, role, want string
	}{
		{"message", "user", "USER"},
		{"message", "assistant", "ASST"},
		{"queue", "system", "QUEUE"},
		{"progress", "system", "PROG"},
		{"system", "system", "SYS"},
		{"notice", "system", "NOTE"},
		{"snippet", "assistant", "FRAG"},
		{"event", "developer", "DEVELOPER"},
	}
	for _, tc := range cases {
		label, _ := eventLabel(tc.kind, tc.role)
		assert.Equal(t, tc.want, label, "%s/%s", tc.kind, tc.role)
	}
}

func TestWrapLineLongWordNoLoss(t *testing.T) {
	in := strings.Repeat("x", 23)
	lines := wrapLine(in, 10)
	assert.Equal(t, in, strings.Join(lines, ""))
}
