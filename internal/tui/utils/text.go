package utils

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// WrapText breaks text at word boundaries so no line exceeds maxWidth
// display cells
func WrapText(text string, maxWidth int) []string {
	words := strings.Fields(strings.TrimSpace(text))

	var lines []string
	var line strings.Builder
	lineWidth := 0

	for _, word := range words {
		w := runewidth.StringWidth(word)
		switch {
		case lineWidth == 0:
			line.WriteString(word)
			lineWidth = w
		case lineWidth+1+w <= maxWidth:
			line.WriteByte(' ')
			line.WriteString(word)
			lineWidth += 1 + w
		default:
			lines = append(lines, line.String())
			line.Reset()
			line.WriteString(word)
			lineWidth = w
		}
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}

// Truncate shortens text to maxWidth display cells, appending "..." when
// anything was cut. Width accounting is rune-aware for CJK and emoji.
func Truncate(text string, maxWidth int) string {
	if runewidth.StringWidth(text) <= maxWidth {
		return text
	}

	width := 0
	for i, r := range text {
		width += runewidth.RuneWidth(r)
		if width > maxWidth-3 {
			return text[:i] + "..."
		}
	}
	return text
}

// ClampLines wraps text and keeps at most maxLines lines, truncating the
// final kept line
func ClampLines(text string, maxLines, maxWidth int) string {
	lines := WrapText(text, maxWidth)
	if len(lines) <= maxLines {
		return strings.Join(lines, "\n")
	}

	kept := lines[:maxLines]
	kept[maxLines-1] = Truncate(kept[maxLines-1]+" "+lines[maxLines], maxWidth)
	return strings.Join(kept, "\n")
}
