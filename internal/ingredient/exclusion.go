package ingredient

import "strings"

// FilterExclusions short-circuits lines that never reach the shopping list as
// a quantity: water, and lines opening with a vague amount such as "a pinch".
// The second result is false when no exclusion applies and parsing should
// continue.
func (p *Parser) FilterExclusions(line string) (ParsedIngredient, bool) {
	if waterRegex.MatchString(line) {
		return ParsedIngredient{}, true
	}

	for _, re := range p.vagueRegexes {
		loc := re.FindStringIndex(line)
		if loc == nil {
			continue
		}
		rest := strings.TrimSpace(line[loc[1]:])
		rest = strings.TrimSpace(leadingOfRegex.ReplaceAllString(rest, ""))
		if waterRegex.MatchString(rest) {
			return ParsedIngredient{}, true
		}
		return ParsedIngredient{Item: p.CleanItemName(rest)}, true
	}

	return ParsedIngredient{}, false
}

// FilterExclusions uses the default parser.
func FilterExclusions(line string) (ParsedIngredient, bool) {
	return defaultParser.FilterExclusions(line)
}
