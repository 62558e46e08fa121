package output

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const hexDigits = "0123456789abcdef"

// SanitizeTerminal makes a string safe to print to an interactive terminal
// by replacing control characters with visible escape sequences.
//   - "hi\x1b[31mred" -> `hi\x1b[31mred` (ESC becomes visible)
//   - "bad:\xff"      -> `bad:\xff` (invalid UTF-8 byte)
//   - "a\tb\nc"       -> "a\tb\nc" (tabs/newlines are untouched)
func SanitizeTerminal(s string) string {
	idx := 0
	// fast path: scan until we find a control rune / invalid UTF-8 byte
	for idx < len(s) {
		r, size := utf8.DecodeRuneInString(s[idx:])
		if r == utf8.RuneError && size == 1 {
			break
		}
		if r != '\n' && r != '\t' && isUnsafe(r) {
			break
		}
		idx += size
	}
	if idx == len(s) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	b.WriteString(s[:idx])

	for idx < len(s) {
		r, size := utf8.DecodeRuneInString(s[idx:])
		switch {
		case r == utf8.RuneError && size == 1:
			appendEscapedByte(&b, s[idx])
		case r == '\n' || r == '\t':
			b.WriteRune(r)
		case isUnsafe(r):
			appendEscapedRune(&b, r)
		default:
			b.WriteString(s[idx : idx+size])
		}
		idx += size
	}

	return b.String()
}

// isUnsafe covers C0/C1 controls plus the bidi overrides and line
// separators that can reorder what the terminal shows.
func isUnsafe(r rune) bool {
	if unicode.IsControl(r) {
		return true
	}
	switch {
	case r >= 0x202a && r <= 0x202e, r >= 0x2066 && r <= 0x2069:
		return true
	case r == 0x2028 || r == 0x2029:
		return true
	}
	return false
}

func appendEscapedByte(b *strings.Builder, bt byte) {
	b.WriteString(`\x`)
	b.WriteByte(hexDigits[bt>>4])
	b.WriteByte(hexDigits[bt&0x0f])
}

// appendEscapedRune writes r as \xHH, \uHHHH or \UHHHHHHHH.
func appendEscapedRune(b *strings.Builder, r rune) {
	if r <= 0xFF {
		appendEscapedByte(b, byte(r))
		return
	}

	if r <= 0xFFFF {
		b.WriteString(`\u`)
		for shift := 12; shift >= 0; shift -= 4 {
			b.WriteByte(hexDigits[(r>>shift)&0x0f])
		}
		return
	}

	b.WriteString(`\U`)
	for shift := 28; shift >= 0; shift -= 4 {
		b.WriteByte(hexDigits[(r>>shift)&0x0f])
	}
}
