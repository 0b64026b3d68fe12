package caption

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// DefaultWidth is the caption line width in characters.
const DefaultWidth = 36

// Wrap reflows text into lines of at most width characters. Newlines in the
// input start a new line; blank lines collapse. A word longer than width
// gets a line of its own and is never split. Widths are counted in runes
// after NFC normalization. A non-positive width uses DefaultWidth.
func Wrap(text string, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	text = norm.NFC.String(text)

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		lines = appendWrapped(lines, strings.Fields(paragraph), width)
	}
	return strings.Join(lines, "\n")
}

func appendWrapped(lines []string, words []string, width int) []string {
	var (
		line    strings.Builder
		lineLen int
	)
	for _, word := range words {
		n := utf8.RuneCountInString(word)
		if lineLen > 0 && lineLen+1+n > width {
			lines = append(lines, line.String())
			line.Reset()
			lineLen = 0
		}
		if lineLen > 0 {
			line.WriteByte(' ')
			lineLen++
		}
		line.WriteString(word)
		lineLen += n
	}
	if lineLen > 0 {
		lines = append(lines, line.String())
	}
	return lines
}

// LineCount reports how many lines a wrapped caption occupies.
func LineCount(wrapped string) int {
	if wrapped == "" {
		return 0
	}
	return strings.Count(wrapped, "\n") + 1
}
