package match

import (
	"unicode"
	"unicode/utf8"
)

// FoldASCII lower-cases pure-ASCII strings and leaves anything containing a
// non-ASCII rune untouched. CJK entities are therefore compared
// byte-for-byte while ASCII entities dedup case-insensitively. Known
// limitation: distinct ASCII entities differing only by case collapse to
// one key.
func FoldASCII(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return s
		}
	}
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// hasCJK reports whether the text contains any CJK ideograph, including the
// Extension A and B blocks.
func hasCJK(s string) bool {
	for _, r := range s {
		if (r >= 0x4E00 && r <= 0x9FFF) ||
			(r >= 0x3400 && r <= 0x4DBF) ||
			(r >= 0x20000 && r <= 0x2A6DF) {
			return true
		}
	}
	return false
}

// isWordChar mirrors regex \w: letter, digit or underscore.
func isWordChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// asciiBoundary accepts a hit only when both the character before start and
// the character at end are non-word characters (text edges count as
// non-word).
func asciiBoundary(text string, start, end int) bool {
	if start > 0 {
		prev, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordChar(prev) {
			return false
		}
	}
	if end < len(text) {
		next, _ := utf8.DecodeRuneInString(text[end:])
		if isWordChar(next) {
			return false
		}
	}
	return true
}

// segmentBoundaries turns a word segmentation into the set of byte offsets
// where a segment starts or ends.
func segmentBoundaries(words []string) map[int]bool {
	bounds := make(map[int]bool, 2*len(words))
	pos := 0
	for _, w := range words {
		bounds[pos] = true
		pos += len(w)
		bounds[pos] = true
	}
	return bounds
}
