// Package ingredient parses free-text recipe ingredient lines into
// {quantity, item} records for a shopping list.
//
// A line goes through five stages:
//
//   - Normalize: drop list markers, rewrite fraction glyphs, collapse spaces
//   - FilterExclusions: water and vague amounts ("a pinch of salt")
//   - ExtractQuantity: ranges, fused amounts ("400g"), numbers and number words
//   - ResolveUnit: unit synonyms to a canonical unit
//   - CleanItemName: strip descriptors ("chopped") and prepositions
//
// Example:
//
//	rec := ingredient.ParseIngredient("1/2 tsp salt, chopped")
//	// rec.Quantity == "1/2 tsp", rec.Item == "salt"
//
//	recs := ingredient.ParseIngredients([]string{"water", "2 cups flour"})
//	// [{2 cups flour}]
//
// Parsing never fails. Input that cannot be parsed yields an empty record,
// which the batch functions drop.
//
// The package-level functions use a parser built from DefaultVocabulary. Use
// LoadVocabulary and NewParser to extend the word lists.
package ingredient
