package ingredient

import "strings"

// CleanItemName strips culinary descriptors and prepositions from text. The
// first word is kept even when it is a preposition. If cleaning would leave
// nothing, text is returned unchanged.
func (p *Parser) CleanItemName(text string) string {
	s := leadingOfRegex.ReplaceAllString(strings.TrimSpace(text), "")
	if p.descriptorRegex != nil {
		s = p.descriptorRegex.ReplaceAllString(s, " ")
	}

	words := strings.Fields(s)
	kept := make([]string, 0, len(words))
	for _, word := range words {
		// Bracket and comma debris left behind by "(optional)" and the like.
		if leftoverRegex.MatchString(word) {
			continue
		}
		if len(kept) > 0 {
			if _, isPrep := p.prepositions[strings.ToLower(strings.TrimRight(word, ",;"))]; isPrep {
				continue
			}
		}
		kept = append(kept, word)
	}

	cleaned := edgeJunkRegex.ReplaceAllString(strings.Join(kept, " "), "")
	if cleaned == "" {
		return text
	}
	return cleaned
}

// CleanItemName uses the default parser.
func CleanItemName(text string) string {
	return defaultParser.CleanItemName(text)
}
