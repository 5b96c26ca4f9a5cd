package ingredient

import (
	"math"
	"strconv"
	"strings"
)

// Quantity is the result of quantity extraction.
type Quantity struct {
	// Value is the quantity text: a range ("2-3"), a fused amount with its
	// canonical unit ("400 g") or the literal leading token ("1 1/2", "a").
	// Empty when the line has no recognizable quantity.
	Value string

	// Rest is the input with the quantity removed.
	Rest string

	// HasUnit is set when Value already carries a unit.
	HasUnit bool
}

// ExtractQuantity detects a quantity among the first three words of text. A
// numeric range is tried first, then a fused number+unit token, then a single
// number, fraction or number word at the head of the text.
func (p *Parser) ExtractQuantity(text string) Quantity {
	words := strings.Fields(text)
	if len(words) == 0 {
		return Quantity{}
	}
	text = strings.Join(words, " ")
	if len(words) > quantityHeadLimit {
		words = words[:quantityHeadLimit]
	}
	head := strings.Join(words, " ")

	if q, ok := p.extractRange(text, head); ok {
		return q
	}
	if q, ok := p.extractFused(text, words); ok {
		return q
	}
	if m := p.singleRegex.FindStringSubmatchIndex(head); m != nil {
		return Quantity{
			Value: head[m[2]:m[3]],
			Rest:  strings.TrimSpace(text[m[3]:]),
		}
	}

	return Quantity{Rest: text}
}

func (p *Parser) extractRange(text, head string) (Quantity, bool) {
	m := p.rangeRegex.FindStringSubmatchIndex(head)
	if m == nil {
		return Quantity{}, false
	}
	left, ok := ParseMixedNumber(head[m[2]:m[3]])
	if !ok {
		return Quantity{}, false
	}
	right, ok := ParseMixedNumber(head[m[4]:m[5]])
	if !ok {
		return Quantity{}, false
	}
	return Quantity{
		Value: formatNumber(left) + "-" + formatNumber(right),
		Rest:  strings.TrimSpace(text[m[5]:]),
	}, true
}

func (p *Parser) extractFused(text string, words []string) (Quantity, bool) {
	for i, word := range words {
		m := p.fusedRegex.FindStringSubmatch(strings.TrimRight(word, ",;"))
		if m == nil {
			continue
		}
		unit, ok := p.ResolveUnit(m[2])
		if !ok {
			unit = strings.ToLower(m[2])
		}

		all := strings.Split(text, " ")
		rest := make([]string, 0, len(all)-1)
		rest = append(rest, all[:i]...)
		rest = append(rest, all[i+1:]...)

		return Quantity{
			Value:   m[1] + " " + unit,
			Rest:    strings.Join(rest, " "),
			HasUnit: true,
		}, true
	}
	return Quantity{}, false
}

// ParseMixedNumber sums the whitespace-separated pieces of s, each a simple
// fraction, a decimal or a number word ("1 1/2" -> 1.5, "half" -> 0.5).
// It reports false when no piece is recognized or the sum is zero.
func ParseMixedNumber(s string) (float64, bool) {
	total := 0.0
	for _, piece := range strings.Fields(strings.ToLower(s)) {
		piece = strings.TrimLeft(piece, "~≈")
		if m := simpleFraction.FindStringSubmatch(piece); m != nil {
			num, _ := strconv.ParseFloat(m[1], 64)
			den, _ := strconv.ParseFloat(m[2], 64)
			if den != 0 {
				total += num / den
			}
			continue
		}
		if v, err := strconv.ParseFloat(piece, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			total += v
			continue
		}
		total += numberWords[piece]
	}
	if total == 0 {
		return 0, false
	}
	return total, true
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ExtractQuantity uses the default parser.
func ExtractQuantity(text string) Quantity {
	return defaultParser.ExtractQuantity(text)
}
