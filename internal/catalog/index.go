package catalog

import (
	"strings"

	"shoplist/internal"
	"shoplist/internal/util"
)

// Index is an in-memory lookup over the grocery catalog.
type Index struct {
	ProductsByID       map[int]internal.ProductRecord
	ByName             map[string][]internal.ProductRecord
	ByAlias            map[string][]internal.ProductRecord
	TokenToProductIDs  map[string]map[int]struct{}
	NormalizedNameByID map[int]string
}

func BuildIndex(products []internal.ProductRecord) *Index {
	idx := &Index{
		ProductsByID:       map[int]internal.ProductRecord{},
		ByName:             map[string][]internal.ProductRecord{},
		ByAlias:            map[string][]internal.ProductRecord{},
		TokenToProductIDs:  map[string]map[int]struct{}{},
		NormalizedNameByID: map[int]string{},
	}

	for _, p := range products {
		idx.ProductsByID[p.ID] = p
		name := NameKey(p.Name)
		idx.NormalizedNameByID[p.ID] = name
		idx.ByName[name] = append(idx.ByName[name], p)

		idx.addTokens(p.ID, p.Name)
		for _, alias := range p.Aliases {
			key := NameKey(alias)
			if key == "" || key == name {
				continue
			}
			idx.ByAlias[key] = append(idx.ByAlias[key], p)
			idx.addTokens(p.ID, alias)
		}
	}

	return idx
}

func (idx *Index) addTokens(id int, text string) {
	for _, token := range util.Tokenize(text) {
		if _, ok := idx.TokenToProductIDs[token]; !ok {
			idx.TokenToProductIDs[token] = map[int]struct{}{}
		}
		idx.TokenToProductIDs[token][id] = struct{}{}
	}
}

// Len reports the number of indexed products.
func (idx *Index) Len() int {
	return len(idx.ProductsByID)
}

// NameKey is the exact-match key for names and aliases: normalized tokens,
// singularized, joined by single spaces.
func NameKey(name string) string {
	return strings.Join(util.Tokenize(name), " ")
}
