package journal

import (
	"regexp"
	"strings"
)

var (
	// CJK unified ideographs plus Japanese kana and Korean hangul. Kept in
	// sync with the analysis language router.
	cjkRe = regexp.MustCompile("[぀-ヿ㐀-䶿一-鿿가-힯]")

	// A word is a letter/number run, optionally joined by apostrophes or
	// hyphens ("don't", "well-being").
	wordRe = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’-][\p{L}\p{N}]+)*`)
)

// CountWords counts CJK characters as one word each, since those scripts do
// not separate words with whitespace, and counts the remaining text as
// letter/number runs.
func CountWords(text string) int {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}

	cjk := len(cjkRe.FindAllString(trimmed, -1))
	withoutCJK := cjkRe.ReplaceAllString(trimmed, " ")
	words := len(wordRe.FindAllString(withoutCJK, -1))

	return cjk + words
}
