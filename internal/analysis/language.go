package analysis

import (
	"regexp"
	"strings"
)

var (
	cjkRe        = regexp.MustCompile("[぀-ヿ㐀-䶿一-鿿가-힯]")
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// CountCJK counts characters in the CJK ranges (kana, unified ideographs,
// hangul).
func CountCJK(text string) int {
	if text == "" {
		return 0
	}
	return len(cjkRe.FindAllString(text, -1))
}

// IsMostlyCJK reports whether text is dominated by CJK script: at least 8
// CJK characters making up at least 30% of the non-whitespace characters.
// Such text routes to the deterministic analyzer because the bundled neural
// models are English-optimized.
func IsMostlyCJK(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	nonSpace := whitespaceRe.ReplaceAllString(trimmed, "")
	if nonSpace == "" {
		return false
	}
	cjk := CountCJK(nonSpace)
	if cjk < 8 {
		return false
	}
	return float64(cjk)/float64(len([]rune(nonSpace))) >= 0.3
}
