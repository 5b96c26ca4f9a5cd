package pipeline

import (
	"context"

	"shoplist/internal"
	"shoplist/internal/config"
	"shoplist/internal/ingredient"
)

// Builder turns extracted source lines into shopping-list items.
type Builder struct {
	parser  *ingredient.Parser
	matcher *Matcher
	workers int
}

// NewBuilder returns a Builder. A nil matcher leaves every item NOT_FOUND.
func NewBuilder(parser *ingredient.Parser, matcher *Matcher, workers int) *Builder {
	if parser == nil {
		parser = ingredient.Default()
	}
	return &Builder{parser: parser, matcher: matcher, workers: workers}
}

// NewParserFromConfig builds the ingredient parser, merging the vocabulary
// file named by VOCABULARY_PATH when set.
func NewParserFromConfig(cfg config.Config) (*ingredient.Parser, error) {
	if cfg.VocabularyPath == "" {
		return ingredient.Default(), nil
	}
	vocab, err := ingredient.LoadVocabulary(cfg.VocabularyPath)
	if err != nil {
		return nil, err
	}
	return ingredient.NewParser(vocab), nil
}

// Build parses lines and categorizes the resulting items. Lines that parse to
// nothing are dropped; the rest keep their line number and source.
func (b *Builder) Build(ctx context.Context, lines []internal.SourceLine) ([]internal.ListItem, error) {
	raw := make([]string, len(lines))
	for i, line := range lines {
		raw[i] = line.Raw
	}

	parsed, err := b.parser.ParseEach(ctx, raw, b.workers)
	if err != nil {
		return nil, err
	}

	items := make([]internal.ListItem, 0, len(parsed))
	for i, rec := range parsed {
		if rec.IsEmpty() {
			continue
		}
		item := internal.ListItem{
			LineNo:      lines[i].LineNo,
			Source:      lines[i].Source,
			RawLine:     lines[i].Raw,
			Quantity:    rec.Quantity,
			Item:        rec.Item,
			MatchStatus: internal.MatchNotFound,
			MatchReason: internal.ReasonNone,
		}
		if b.matcher != nil {
			applyMatch(&item, b.matcher.Match(rec.Item))
		}
		items = append(items, item)
	}
	return items, nil
}

func applyMatch(item *internal.ListItem, match internal.MatchResult) {
	item.MatchStatus = match.Status
	item.Confidence = match.Confidence
	item.MatchReason = match.Reason
	item.Candidates = match.Candidates
	if match.Product != nil {
		id := match.Product.ID
		name := match.Product.Name
		item.ProductID = &id
		item.ProductName = &name
		item.Aisle = match.Product.Aisle
		item.Category = match.Product.Category
	}
	if len(match.Candidates) > 1 {
		name := match.Candidates[1].Name
		score := match.Candidates[1].Score
		item.Candidate2Name = &name
		item.Candidate2Score = &score
	}
}

// CountByStatus tallies items per match status.
func CountByStatus(items []internal.ListItem) map[string]int {
	counts := map[string]int{"items": len(items), "ok": 0, "review": 0, "notFound": 0}
	for _, item := range items {
		switch item.MatchStatus {
		case internal.MatchOK:
			counts["ok"]++
		case internal.MatchReview:
			counts["review"]++
		default:
			counts["notFound"]++
		}
	}
	return counts
}
