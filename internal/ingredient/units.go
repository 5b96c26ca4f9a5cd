package ingredient

import "strings"

// ResolveUnit maps a unit word or abbreviation to its canonical unit name.
// Matching is case-insensitive and ignores one trailing '.', ',' or ')'.
func (p *Parser) ResolveUnit(token string) (string, bool) {
	key := strings.ToLower(trimUnitPunct(strings.TrimSpace(token)))
	if key == "" {
		return "", false
	}
	canonical, ok := p.unitBySynonym[key]
	return canonical, ok
}

func trimUnitPunct(token string) string {
	if n := len(token); n > 0 {
		switch token[n-1] {
		case '.', ',', ')':
			return token[:n-1]
		}
	}
	return token
}

// ResolveUnit uses the default parser.
func ResolveUnit(token string) (string, bool) {
	return defaultParser.ResolveUnit(token)
}
