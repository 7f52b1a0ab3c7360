package article

import "strings"

// SmartPunctuation applies typographic replacements to post text: curly quotes,
// apostrophes, en/em dashes, and ellipses. It works on runes, so multi-byte
// input is safe.
func SmartPunctuation(s string) string {
	if s == "" {
		return ""
	}

	// Dashes and ellipsis first; they are context-free.
	s = strings.ReplaceAll(s, "...", "…")
	s = strings.ReplaceAll(s, "---", "—")
	s = strings.ReplaceAll(s, "--", "–")

	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))

	for i, r := range runes {
		switch r {
		case '"':
			if opensQuote(runes, i) {
				b.WriteRune('“')
			} else {
				b.WriteRune('”')
			}
		case '\'':
			if opensQuote(runes, i) {
				b.WriteRune('‘')
			} else {
				// Closing quote and apostrophe share a glyph.
				b.WriteRune('’')
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// opensQuote reports whether the quote at index i starts a quotation: at the
// beginning of the text or after whitespace or an opening bracket.
func opensQuote(runes []rune, i int) bool {
	if i == 0 {
		return true
	}
	switch runes[i-1] {
	case ' ', '\t', '\n', '(', '[', '{':
		return true
	}
	return false
}
