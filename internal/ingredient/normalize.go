package ingredient

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize strips a leading bullet or numbering marker, rewrites vulgar
// fraction glyphs as " <decimal>" and collapses whitespace.
func (p *Parser) Normalize(line string) string {
	s := norm.NFC.String(line)
	s = listMarkerRegex.ReplaceAllString(s, "")

	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		if dec, ok := unicodeFractions[r]; ok {
			b.WriteByte(' ')
			b.WriteString(dec)
			continue
		}
		b.WriteRune(r)
	}

	return strings.TrimSpace(spacesRegex.ReplaceAllString(b.String(), " "))
}

// Normalize uses the default parser.
func Normalize(line string) string {
	return defaultParser.Normalize(line)
}
