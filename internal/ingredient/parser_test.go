package ingredient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIngredient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want ParsedIngredient
	}{
		{name: "quantity and spaced unit", line: "2 cups flour", want: ParsedIngredient{Quantity: "2 cups", Item: "flour"}},
		{name: "fraction with descriptor", line: "1/2 tsp salt, chopped", want: ParsedIngredient{Quantity: "1/2 tsp", Item: "salt"}},
		{name: "fused metric amount", line: "400g chicken breast", want: ParsedIngredient{Quantity: "400 g", Item: "chicken breast"}},
		{name: "vague phrase keeps item", line: "a pinch of salt", want: ParsedIngredient{Item: "salt"}},
		{name: "water alone", line: "water", want: ParsedIngredient{}},
		{name: "range", line: "2-3 onions, sliced", want: ParsedIngredient{Quantity: "2-3", Item: "onions"}},
		{name: "water after quantity", line: "1 cup water", want: ParsedIngredient{}},
		{name: "vague phrase then water", line: "Some water", want: ParsedIngredient{}},
		{name: "bullet marker", line: "- 2 cups flour", want: ParsedIngredient{Quantity: "2 cups", Item: "flour"}},
		{name: "numbered marker", line: "3. 1 cup sugar", want: ParsedIngredient{Quantity: "1 cup", Item: "sugar"}},
		{name: "unicode fraction", line: "¾ cup milk", want: ParsedIngredient{Quantity: "0.75 cup", Item: "milk"}},
		{name: "unicode fraction after integer leaves unit", line: "1½ cups sugar", want: ParsedIngredient{Quantity: "1 0.5", Item: "cups sugar"}},
		{name: "mixed number leaves unit", line: "1 1/2 cups all-purpose flour", want: ParsedIngredient{Quantity: "1 1/2", Item: "cups all-purpose flour"}},
		{name: "mixed number before item", line: "1 1/2 cups flour", want: ParsedIngredient{Quantity: "1 1/2", Item: "cups flour"}},
		{name: "worded range with unit", line: "2 to 3 cloves garlic, minced", want: ParsedIngredient{Quantity: "2-3 cloves", Item: "garlic"}},
		{name: "number words range", line: "two to three apples", want: ParsedIngredient{Quantity: "2-3", Item: "apples"}},
		{name: "fraction range", line: "1/2-1 cup milk", want: ParsedIngredient{Quantity: "0.5-1 cup", Item: "milk"}},
		{name: "article as quantity", line: "an onion", want: ParsedIngredient{Quantity: "an", Item: "onion"}},
		{name: "article with container unit", line: "a can of tomatoes", want: ParsedIngredient{Quantity: "a can", Item: "tomatoes"}},
		{name: "unit with trailing period", line: "2 lbs. ground beef", want: ParsedIngredient{Quantity: "2 lbs", Item: "ground beef"}},
		{name: "descriptors around item", line: "3 large eggs, beaten", want: ParsedIngredient{Quantity: "3", Item: "eggs"}},
		{name: "fused amount at end", line: "Chicken breast 500g", want: ParsedIngredient{Quantity: "500 g", Item: "Chicken breast"}},
		{name: "approximate quantity", line: "~2 cups rice", want: ParsedIngredient{Quantity: "~2 cups", Item: "rice"}},
		{name: "trailing to taste kept", line: "Salt, to taste", want: ParsedIngredient{Item: "Salt, to taste"}},
		{name: "vague phrase alone", line: "to taste", want: ParsedIngredient{}},
		{name: "vague phrase behind article", line: "a handful of fresh basil", want: ParsedIngredient{Quantity: "a", Item: "handful of basil"}},
		{name: "article before few", line: "a few eggs", want: ParsedIngredient{Quantity: "a", Item: "few eggs"}},
		{name: "vague phrase without article", line: "handful of fresh basil", want: ParsedIngredient{Item: "basil"}},
		{name: "ampersand kept", line: "salt & pepper", want: ParsedIngredient{Item: "salt & pepper"}},
		{name: "number word before ampersand", line: "half & half", want: ParsedIngredient{Quantity: "half", Item: "& half"}},
		{name: "ampersand after quantity", line: "1 box mac & cheese", want: ParsedIngredient{Quantity: "1 box", Item: "mac & cheese"}},
		{name: "watermelon is not water", line: "watermelon, cubed", want: ParsedIngredient{Item: "watermelon"}},
		{name: "quantity without item", line: "2 cups", want: ParsedIngredient{Quantity: "2 cups"}},
		{name: "empty line", line: "", want: ParsedIngredient{}},
		{name: "whitespace line", line: " \t ", want: ParsedIngredient{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ParseIngredient(tc.line))
		})
	}
}

func TestParseIngredient_ItemIsFixedPoint(t *testing.T) {
	t.Parallel()

	lines := []string{
		"2 cups flour",
		"1/2 tsp salt, chopped",
		"400g chicken breast",
		"2-3 onions, sliced",
		"3 large eggs, beaten",
		"2 lbs. ground beef",
		"a can of tomatoes",
		"1 1/2 cups all-purpose flour",
		"handful of fresh basil",
		"salt & pepper",
	}

	for _, line := range lines {
		first := ParseIngredient(line)
		again := ParseIngredient(first.Item)
		assert.Equal(t, first.Item, again.Item, "line %q", line)
		assert.Equal(t, first.Item, CleanItemName(first.Item), "line %q", line)
	}
}

func TestParseIngredient_WaterNeverListed(t *testing.T) {
	t.Parallel()

	for _, line := range []string{"water", "Water", "WATER, cold", "a pinch of water", "some water", "few water", "2 cups water", "1 cup of water"} {
		assert.Empty(t, ParseIngredient(line).Item, "line %q", line)
	}
}

func TestNewParser_ZeroVocabularyUsesDefaults(t *testing.T) {
	t.Parallel()

	p := NewParser(Vocabulary{})
	assert.Equal(t, ParseIngredient("2 cups flour"), p.ParseIngredient("2 cups flour"))
	assert.ElementsMatch(t, DefaultVocabulary().CanonicalUnits(), p.Vocabulary().CanonicalUnits())
}
