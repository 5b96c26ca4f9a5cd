package ingredient

import (
	"regexp"
	"sort"
	"strings"
)

// ParsedIngredient is one shopping-list candidate parsed from a recipe line.
// A record with an empty Item carries no information.
type ParsedIngredient struct {
	Quantity string `json:"quantity"`
	Item     string `json:"item"`
}

// IsEmpty reports whether the record should be dropped from a batch.
func (p ParsedIngredient) IsEmpty() bool {
	return p.Item == ""
}

// Parser turns free-text ingredient lines into ParsedIngredient records.
// All lookup tables and patterns are built in NewParser and never mutated, so
// a Parser is safe for concurrent use.
type Parser struct {
	vocab Vocabulary

	// unitBySynonym is the reverse lookup: lowercase synonym -> canonical unit.
	unitBySynonym map[string]string

	prepositions map[string]struct{}

	descriptorRegex *regexp.Regexp
	vagueRegexes    []*regexp.Regexp
	rangeRegex      *regexp.Regexp
	fusedRegex      *regexp.Regexp
	singleRegex     *regexp.Regexp
}

var (
	listMarkerRegex   = regexp.MustCompile(`^\s*(?:[-*•]\s+|\d+[.)]\s+)`)
	spacesRegex       = regexp.MustCompile(`\s+`)
	waterRegex        = regexp.MustCompile(`(?i)^water\b`)
	leadingOfRegex    = regexp.MustCompile(`(?i)^of\s+`)
	edgeJunkRegex     = regexp.MustCompile(`^[\s,;]+|[\s,;]+$`)
	leftoverRegex     = regexp.MustCompile(`^[(\[,;]*[)\],;]*$`)
	simpleFraction    = regexp.MustCompile(`^(\d+)/(\d+)$`)
)

const (
	// numberWordPattern lists longer words before their prefixes so the
	// leftmost-first alternation picks "an" over "a".
	numberWordPattern = `one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|half|quarter|an|a`
	rangeWordPattern  = `one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|dozen|half|quarter|an|a`
	mixedPattern      = `\d+(?:\.\d+)?(?:\s+(?:\d+/\d+|\d*\.\d+))?`
	quantityHeadLimit = 3
)

// NewParser builds a parser from vocab. A zero Vocabulary selects the
// built-in one.
func NewParser(vocab Vocabulary) *Parser {
	if vocab.isZero() {
		vocab = DefaultVocabulary()
	}

	p := &Parser{
		vocab:         vocab,
		unitBySynonym: make(map[string]string),
		prepositions:  make(map[string]struct{}, len(vocab.Prepositions)),
	}

	for _, canonical := range vocab.CanonicalUnits() {
		p.unitBySynonym[canonical] = canonical
		for _, synonym := range vocab.Units[canonical] {
			key := strings.ToLower(synonym)
			if _, taken := p.unitBySynonym[key]; !taken {
				p.unitBySynonym[key] = canonical
			}
		}
	}

	for _, prep := range vocab.Prepositions {
		p.prepositions[strings.ToLower(prep)] = struct{}{}
	}

	if len(vocab.Descriptors) > 0 {
		p.descriptorRegex = regexp.MustCompile(`(?i)\b(?:` + alternation(vocab.Descriptors) + `)\b`)
	}

	for _, phrase := range vocab.VaguePhrases {
		p.vagueRegexes = append(p.vagueRegexes, regexp.MustCompile(`(?i)^`+regexp.QuoteMeta(phrase)+`\b`))
	}

	side := `(` + mixedPattern + `|\d+/\d+|` + rangeWordPattern + `)`
	p.rangeRegex = regexp.MustCompile(`(?i)^[~≈]?` + side + `\s*(?:-|–|\bto\b)\s*` + side + `(?:\s|,|$)`)
	p.fusedRegex = regexp.MustCompile(`(?i)^[~≈]?(\d+(?:\.\d+)?)(` + strings.Join(fusedUnits, "|") + `)$`)
	p.singleRegex = regexp.MustCompile(`(?i)^([~≈]?(?:\d+/\d+|` + mixedPattern + `|` + numberWordPattern + `))(?:\s|,|$)`)

	return p
}

func (v Vocabulary) isZero() bool {
	return len(v.Units) == 0 && len(v.Descriptors) == 0 && len(v.Prepositions) == 0 && len(v.VaguePhrases) == 0
}

// Vocabulary returns the vocabulary the parser was built from.
func (p *Parser) Vocabulary() Vocabulary {
	return Vocabulary{}.Merge(p.vocab)
}

// ParseIngredient runs the full single-line pipeline.
func (p *Parser) ParseIngredient(line string) ParsedIngredient {
	text := p.Normalize(line)
	if text == "" {
		return ParsedIngredient{}
	}

	if excluded, ok := p.FilterExclusions(text); ok {
		return excluded
	}

	q := p.ExtractQuantity(text)
	quantity, rest := q.Value, q.Rest
	if quantity != "" && !q.HasUnit && !strings.Contains(quantity, " ") {
		if word, after, ok := p.leadingUnit(rest); ok {
			quantity += " " + word
			rest = after
		}
	}

	rest = leadingOfRegex.ReplaceAllString(strings.TrimSpace(rest), "")
	if waterRegex.MatchString(rest) {
		return ParsedIngredient{}
	}

	return ParsedIngredient{Quantity: quantity, Item: p.CleanItemName(rest)}
}

// leadingUnit reports whether the first word of text is a unit. The word is
// returned as written, minus one trailing punctuation mark.
func (p *Parser) leadingUnit(text string) (string, string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", "", false
	}
	word, after, _ := strings.Cut(text, " ")
	if _, ok := p.ResolveUnit(word); !ok {
		return "", "", false
	}
	return trimUnitPunct(word), strings.TrimSpace(after), true
}

func alternation(words []string) string {
	sorted := append([]string(nil), words...)
	// Longest first so "finely" wins over "fine" style prefixes.
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	quoted := make([]string, 0, len(sorted))
	for _, w := range sorted {
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	return strings.Join(quoted, "|")
}

var defaultParser = NewParser(DefaultVocabulary())

// Default returns the package-level parser built from the built-in vocabulary.
func Default() *Parser {
	return defaultParser
}

// ParseIngredient parses one line with the default parser.
func ParseIngredient(line string) ParsedIngredient {
	return defaultParser.ParseIngredient(line)
}
