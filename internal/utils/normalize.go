package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var wsRe = regexp.MustCompile(`\s+`)

// maxKeywords bounds the array stored for array-contains queries.
const maxKeywords = 40

// Fold lowercases s, collapses whitespace and strips combining marks
// ("Café  Médical" -> "cafe medical").
func Fold(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	t := norm.NFKD.String(s)
	b := make([]rune, 0, len(t))
	for _, r := range t {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b = append(b, unicode.ToLower(r))
	}
	return wsRe.ReplaceAllString(string(b), " ")
}

// Keywords builds the search tokens stored on requests and resources.
// Words shorter than 2 runes and punctuation are dropped; order is first-seen.
func Keywords(strs ...string) []string {
	kw := make([]string, 0)
	seen := make(map[string]bool)
	for _, s := range strs {
		for _, word := range strings.FieldsFunc(Fold(s), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		}) {
			if len([]rune(word)) < 2 || seen[word] {
				continue
			}
			seen[word] = true
			kw = append(kw, word)
			if len(kw) == maxKeywords {
				return kw
			}
		}
	}
	return kw
}

// TrimMax trims a string to at most max runes.
func TrimMax(s string, max int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
