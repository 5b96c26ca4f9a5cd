package pipeline

import (
	"regexp"
	"strings"
)

type DetectResult struct {
	IsRecipe bool
	Score    float64
	Reason   string
}

var detectKeywords = []string{"recipe", "ingredient", "serves", "method", "directions", "preheat", "oven", "bake", "simmer"}

var measuredAmount = regexp.MustCompile(`(?i)\b\d+(?:[./]\d+)?\s*(?:cups?|tbsps?|tsps?|tablespoons?|teaspoons?|g|grams?|kg|ml|l|oz|lbs?|pounds?|cloves?|cans?)\b`)

// DetectRecipe scores how much a message looks like a recipe. A score of 0.45
// or more counts as a recipe.
func DetectRecipe(subject, text, html string, attachmentNames []string) DetectResult {
	subject = strings.ToLower(subject)
	text = strings.ToLower(text)
	html = strings.ToLower(html)

	score := 0.0
	for _, kw := range detectKeywords {
		if strings.Contains(subject, kw) {
			score += 0.2
		}
		if strings.Contains(text, kw) || strings.Contains(html, kw) {
			score += 0.1
		}
	}

	hits := len(measuredAmount.FindAllStringIndex(text, -1))
	if hits == 0 {
		hits = len(measuredAmount.FindAllStringIndex(html, -1))
	}
	if hits >= 3 {
		score += 0.4
	} else if hits >= 1 {
		score += 0.2
	}

	for _, name := range attachmentNames {
		ln := strings.ToLower(name)
		if strings.HasSuffix(ln, ".xlsx") || strings.HasSuffix(ln, ".pdf") {
			score += 0.15
			break
		}
	}

	if strings.Contains(html, "recipeingredient") {
		score += 0.4
	}
	if score > 1 {
		score = 1
	}

	isRecipe := score >= 0.45
	reason := "rules_negative"
	if isRecipe {
		reason = "rules_positive"
	}

	return DetectResult{IsRecipe: isRecipe, Score: score, Reason: reason}
}
