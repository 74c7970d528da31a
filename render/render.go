// Package render provides terminal text primitives: display-width
// measurement, word wrapping and ANSI styling.
package render

import "strings"

// Style is the terminal styling applied to a span of text.
type Style struct {
	Bold      bool
	Dim       bool
	Underline bool
	Reverse   bool
}

// Apply wraps s in the ANSI escape sequences for the style. The zero
// style returns s unchanged.
func (st Style) Apply(s string) string {
	var codes []string
	if st.Bold {
		codes = append(codes, "1")
	}
	if st.Dim {
		codes = append(codes, "2")
	}
	if st.Underline {
		codes = append(codes, "4")
	}
	if st.Reverse {
		codes = append(codes, "7")
	}
	if len(codes) == 0 {
		return s
	}
	return "\033[" + strings.Join(codes, ";") + "m" + s + "\033[0m"
}

// UnicodeWidth returns the display width of a rune in terminal cells.
func UnicodeWidth(r rune) int {
	if r < 0x80 {
		if r < 0x20 || r == 0x7F {
			return 0
		}
		return 1
	}
	if isZeroWidth(r) {
		return 0
	}
	if isWideChar(r) {
		return 2
	}
	return 1
}

// StringWidth returns the display width of a string in terminal cells.
func StringWidth(s string) int {
	width := 0
	for _, r := range s {
		width += UnicodeWidth(r)
	}
	return width
}

func isZeroWidth(r rune) bool {
	return (r >= 0x0300 && r <= 0x036F) ||
		(r >= 0x1AB0 && r <= 0x1AFF) ||
		(r >= 0x1DC0 && r <= 0x1DFF) ||
		(r >= 0x20D0 && r <= 0x20FF) ||
		(r >= 0xFE00 && r <= 0xFE0F) ||
		(r >= 0xFE20 && r <= 0xFE2F) ||
		(r >= 0xE0100 && r <= 0xE01EF) ||
		r == 0x200B || r == 0x200C || r == 0x200D || r == 0x2060 || r == 0xFEFF
}

func isWideChar(r rune) bool {
	return (r >= 0x1100 && r <= 0x115F) ||
		(r >= 0x2E80 && r <= 0x2EF3) ||
		(r >= 0x2F00 && r <= 0x2FD5) ||
		(r >= 0x3000 && r <= 0x303E) ||
		(r >= 0x3041 && r <= 0x3096) ||
		(r >= 0x3099 && r <= 0x30FF) ||
		(r >= 0x3105 && r <= 0x312F) ||
		(r >= 0x3131 && r <= 0x318E) ||
		(r >= 0x31F0 && r <= 0x321E) ||
		(r >= 0x3250 && r <= 0x4DBF) ||
		(r >= 0x4E00 && r <= 0xA48C) ||
		(r >= 0xAC00 && r <= 0xD7A3) ||
		(r >= 0xF900 && r <= 0xFAFF) ||
		(r >= 0xFE10 && r <= 0xFE6B) ||
		(r >= 0xFF01 && r <= 0xFF60) ||
		(r >= 0xFFE0 && r <= 0xFFE6) ||
		(r >= 0x20000 && r <= 0x3FFFD)
}

// WrapText wraps text to fit within a given width in terminal cells.
// Words wider than the width are broken across lines.
func WrapText(text string, width int) []string {
	if width <= 0 {
		return nil
	}

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		var current strings.Builder
		currentWidth := 0
		for _, word := range words {
			wordWidth := StringWidth(word)
			switch {
			case currentWidth == 0 && wordWidth > width:
				lines = append(lines, breakWord(word, width)...)
			case currentWidth == 0:
				current.WriteString(word)
				currentWidth = wordWidth
			case currentWidth+1+wordWidth <= width:
				current.WriteByte(' ')
				current.WriteString(word)
				currentWidth += 1 + wordWidth
			default:
				lines = append(lines, current.String())
				current.Reset()
				currentWidth = 0
				if wordWidth > width {
					lines = append(lines, breakWord(word, width)...)
				} else {
					current.WriteString(word)
					currentWidth = wordWidth
				}
			}
		}
		if currentWidth > 0 {
			lines = append(lines, current.String())
		}
	}
	return lines
}

func breakWord(word string, maxWidth int) []string {
	var result []string
	runes := []rune(word)
	for len(runes) > 0 {
		var line strings.Builder
		lineWidth := 0
		for len(runes) > 0 {
			w := UnicodeWidth(runes[0])
			if lineWidth+w > maxWidth {
				break
			}
			line.WriteRune(runes[0])
			lineWidth += w
			runes = runes[1:]
		}
		if line.Len() == 0 {
			// A single rune wider than the line; emit it anyway.
			line.WriteRune(runes[0])
			runes = runes[1:]
		}
		result = append(result, line.String())
	}
	return result
}

// TruncateToWidth cuts a string at the last rune that fits maxWidth.
func TruncateToWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	width := 0
	for i, r := range s {
		charWidth := UnicodeWidth(r)
		if width+charWidth > maxWidth {
			return s[:i]
		}
		width += charWidth
	}
	return s
}

// Truncate cuts a string to width, adding an ellipsis when it had to.
func Truncate(s string, width int) string {
	if StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return TruncateToWidth(s, width)
	}
	return TruncateToWidth(s, width-3) + "..."
}
