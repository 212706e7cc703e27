package utils

import "unicode"

// sentenceTerminal reports whether a rune ends a sentence in the scripts we
// serve (CJK fullwidth punctuation included).
func sentenceTerminal(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？', '…', ';', '；', '\n':
		return true
	}
	return false
}

// SplitFragments splits text into incremental delivery fragments, breaking
// at sentence-terminal punctuation or at maxRunes, whichever comes first.
// Every consumer of the streaming path sees incremental output even when the
// reply was produced in one piece.
func SplitFragments(text string, maxRunes int) []string {
	if maxRunes <= 0 {
		maxRunes = 48
	}

	var fragments []string
	current := make([]rune, 0, maxRunes)

	flush := func() {
		if len(current) == 0 {
			return
		}
		fragments = append(fragments, string(current))
		current = current[:0]
	}

	for _, r := range text {
		current = append(current, r)
		if sentenceTerminal(r) || len(current) >= maxRunes {
			flush()
		}
	}
	flush()

	if len(fragments) == 0 {
		return nil
	}
	return fragments
}

// TruncateRunes bounds a string to n runes, appending an ellipsis when
// anything was cut.
func TruncateRunes(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	if n <= 1 {
		return string(runes[:n])
	}
	return string(runes[:n-1]) + "…"
}

// IsBlank reports whether a string contains nothing but whitespace.
func IsBlank(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
