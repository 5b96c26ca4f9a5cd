package pipeline

import (
	"sort"

	"shoplist/internal"
	"shoplist/internal/catalog"
	"shoplist/internal/config"
	"shoplist/internal/util"
)

const maxCandidates = 5

// Matcher places shopping-list items in the grocery catalog.
type Matcher struct {
	cfg   config.Config
	index *catalog.Index
}

func NewMatcher(cfg config.Config, products []internal.ProductRecord) *Matcher {
	return &Matcher{cfg: cfg, index: catalog.BuildIndex(products)}
}

// Match looks item up by exact name, then alias, then fuzzy score.
func (m *Matcher) Match(item string) internal.MatchResult {
	key := catalog.NameKey(item)
	if key == "" || m.index.Len() == 0 {
		return notFound(nil, 0)
	}

	if res, ok := exactResult(m.index.ByName[key], internal.ReasonName, 0.97, 0.80); ok {
		return res
	}
	if res, ok := exactResult(m.index.ByAlias[key], internal.ReasonAlias, 0.93, 0.78); ok {
		return res
	}

	candidates := m.rankCandidates(key)
	if len(candidates) == 0 {
		return notFound(nil, 0)
	}

	top1 := candidates[0]
	gap := top1.Score
	if len(candidates) > 1 {
		gap = top1.Score - candidates[1].Score
	}

	best := m.index.ProductsByID[top1.ID]
	switch {
	case top1.Score >= m.cfg.MatchOKThreshold && gap >= m.cfg.MatchGapThreshold:
		return internal.MatchResult{Status: internal.MatchOK, Confidence: top1.Score, Reason: internal.ReasonFuzzy, Product: toMatchProduct(best), Candidates: candidates}
	case top1.Score >= m.cfg.MatchReviewThreshold:
		return internal.MatchResult{Status: internal.MatchReview, Confidence: top1.Score, Reason: internal.ReasonFuzzy, Product: toMatchProduct(best), Candidates: candidates}
	default:
		return notFound(candidates, top1.Score)
	}
}

func exactResult(products []internal.ProductRecord, reason internal.MatchReason, okScore, reviewScore float64) (internal.MatchResult, bool) {
	switch {
	case len(products) == 1:
		return internal.MatchResult{
			Status:     internal.MatchOK,
			Confidence: okScore,
			Reason:     reason,
			Product:    toMatchProduct(products[0]),
			Candidates: toCandidates(products, okScore),
		}, true
	case len(products) > 1:
		return internal.MatchResult{
			Status:     internal.MatchReview,
			Confidence: reviewScore,
			Reason:     reason,
			Candidates: toCandidates(products, reviewScore),
		}, true
	}
	return internal.MatchResult{}, false
}

func notFound(candidates []internal.MatchCandidate, confidence float64) internal.MatchResult {
	if candidates == nil {
		candidates = []internal.MatchCandidate{}
	}
	return internal.MatchResult{Status: internal.MatchNotFound, Confidence: confidence, Reason: internal.ReasonNone, Candidates: candidates}
}

func (m *Matcher) rankCandidates(query string) []internal.MatchCandidate {
	queryTokens := util.Tokenize(query)
	ids := map[int]struct{}{}
	for _, token := range queryTokens {
		for id := range m.index.TokenToProductIDs[token] {
			ids[id] = struct{}{}
		}
	}
	if len(ids) == 0 {
		return nil
	}

	out := make([]internal.MatchCandidate, 0, len(ids))
	for id := range ids {
		product := m.index.ProductsByID[id]
		candidateName := m.index.NormalizedNameByID[id]
		score := scoreName(query, candidateName, queryTokens, util.Tokenize(candidateName))
		out = append(out, internal.MatchCandidate{ID: product.ID, Name: product.Name, Score: score})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > maxCandidates {
		out = out[:maxCandidates]
	}
	return out
}

// scoreName blends bigram overlap, edit distance and token coverage of the
// query into a 0..1 score.
func scoreName(query, candidate string, queryTokens, candidateTokens []string) float64 {
	dice := util.DiceCoefficient(query, candidate)
	sim := util.Similarity(query, candidate)
	if len(queryTokens) == 0 || len(candidateTokens) == 0 {
		return 0.6*dice + 0.4*sim
	}

	set := map[string]struct{}{}
	for _, t := range candidateTokens {
		set[t] = struct{}{}
	}
	overlap := 0
	for _, t := range queryTokens {
		if _, ok := set[t]; ok {
			overlap++
		}
	}
	tokenScore := float64(overlap) / float64(len(queryTokens))
	return 0.45*dice + 0.25*sim + 0.30*tokenScore
}

func toMatchProduct(p internal.ProductRecord) *internal.MatchProduct {
	return &internal.MatchProduct{
		ID:       p.ID,
		SyncUID:  p.SyncUID,
		Name:     p.Name,
		Aisle:    p.Aisle,
		Category: p.Category,
	}
}

func toCandidates(products []internal.ProductRecord, score float64) []internal.MatchCandidate {
	limit := len(products)
	if limit > maxCandidates {
		limit = maxCandidates
	}
	out := make([]internal.MatchCandidate, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, internal.MatchCandidate{ID: products[i].ID, Name: products[i].Name, Score: score})
	}
	return out
}
