package util

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	reQuotes     = regexp.MustCompile(`["'` + "`" + `’‘«»]`)
	reNonAllowed = regexp.MustCompile(`[^a-z0-9\s-]`)
	reSpaces     = regexp.MustCompile(`\s+`)
)

// NormalizeName lowercases a product or ingredient name and reduces it to
// letters, digits, hyphens and single spaces.
func NormalizeName(input string) string {
	s := strings.ToLower(FoldAccents(input))
	s = strings.ReplaceAll(s, "&", " and ")
	s = reQuotes.ReplaceAllString(s, "")
	s = reNonAllowed.ReplaceAllString(s, " ")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// FoldAccents removes combining marks ("jalapeño" -> "jalapeno").
func FoldAccents(s string) string {
	// Chained transformers keep state, so one is built per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Tokenize splits a name into normalized, singularized tokens of at least
// two characters.
func Tokenize(input string) []string {
	parts := strings.Fields(NormalizeName(input))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = Singular(strings.Trim(p, "-"))
		if len([]rune(p)) >= 2 {
			out = append(out, p)
		}
	}
	return out
}

// Singular strips common English plural endings ("tomatoes" -> "tomato",
// "berries" -> "berry", "onions" -> "onion"). Short words are left alone.
func Singular(word string) string {
	if len(word) <= 3 {
		return word
	}
	switch {
	case strings.HasSuffix(word, "ies"):
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(word, "oes"), strings.HasSuffix(word, "ches"), strings.HasSuffix(word, "shes"), strings.HasSuffix(word, "xes"):
		return word[:len(word)-2]
	case strings.HasSuffix(word, "ss"), strings.HasSuffix(word, "us"):
		return word
	case strings.HasSuffix(word, "s"):
		return word[:len(word)-1]
	}
	return word
}

func DiceCoefficient(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	pairs := func(s string) []string {
		r := []rune(s)
		if len(r) < 2 {
			return nil
		}
		out := make([]string, 0, len(r)-1)
		for i := 0; i < len(r)-1; i++ {
			out = append(out, string(r[i:i+2]))
		}
		return out
	}

	aPairs := pairs(a)
	bPairs := pairs(b)
	if len(aPairs) == 0 || len(bPairs) == 0 {
		return 0
	}

	bCount := map[string]int{}
	for _, p := range bPairs {
		bCount[p]++
	}
	inter := 0
	for _, p := range aPairs {
		if bCount[p] > 0 {
			inter++
			bCount[p]--
		}
	}

	return float64(2*inter) / float64(len(aPairs)+len(bPairs))
}

// Similarity is 1 - levenshtein(a, b) / max(len(a), len(b)), in runes.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	maxLen := len([]rune(a))
	if lb := len([]rune(b)); lb > maxLen {
		maxLen = lb
	}
	if maxLen == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(maxLen)
}
