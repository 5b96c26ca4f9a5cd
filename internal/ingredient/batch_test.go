package ingredient

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIngredients(t *testing.T) {
	t.Parallel()

	got := ParseIngredients([]string{"water", "2 cups flour", "", "1 cup water"})
	assert.Equal(t, []ParsedIngredient{{Quantity: "2 cups", Item: "flour"}}, got)
}

func TestParseIngredients_PreservesOrderAndDropsEmpty(t *testing.T) {
	t.Parallel()

	lines := []string{
		"2 cups flour",
		"to taste",
		"1/2 tsp salt, chopped",
		"   ",
		"400g chicken breast",
		"some water",
		"2-3 onions, sliced",
	}
	got := ParseIngredients(lines)

	require.LessOrEqual(t, len(got), len(lines))
	for _, rec := range got {
		assert.NotEmpty(t, rec.Item)
	}
	items := make([]string, 0, len(got))
	for _, rec := range got {
		items = append(items, rec.Item)
	}
	assert.Equal(t, []string{"flour", "salt", "chicken breast", "onions"}, items)
}

func TestParseIngredients_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, ParseIngredients(nil))
	assert.NotNil(t, ParseIngredients(nil))
}

func TestParseValues(t *testing.T) {
	t.Parallel()

	got := ParseValues([]any{"2 cups flour", 42, nil, "a pinch of salt", true})
	assert.Equal(t, []ParsedIngredient{
		{Quantity: "2 cups", Item: "flour"},
		{Item: "salt"},
	}, got)

	assert.Equal(t, []ParsedIngredient{{Quantity: "3", Item: "eggs"}}, ParseValues([]string{"3 eggs"}))
}

func TestParseValues_NotASequence(t *testing.T) {
	t.Parallel()

	for _, v := range []any{nil, "2 cups flour", 7, map[string]any{"lines": []any{"2 cups flour"}}} {
		got := ParseValues(v)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
}

func TestParseIngredientsConcurrent_MatchesSequential(t *testing.T) {
	t.Parallel()

	lines := make([]string, 0, 200)
	for i := range 50 {
		lines = append(lines,
			fmt.Sprintf("%d cups flour", i+1),
			"water",
			fmt.Sprintf("%dg butter", (i+1)*10),
			"a pinch of salt",
		)
	}

	p := Default()
	got, err := p.ParseIngredientsConcurrent(context.Background(), lines, 8)
	require.NoError(t, err)
	assert.Equal(t, p.ParseIngredients(lines), got)
}

func TestParseIngredientsConcurrent_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Default().ParseIngredientsConcurrent(ctx, []string{"2 cups flour", "3 eggs"}, 4)
	require.ErrorIs(t, err, context.Canceled)
}

func TestParseEach_KeepsAlignment(t *testing.T) {
	t.Parallel()

	lines := []string{"water", "2 cups flour", "", "a pinch of salt"}
	for _, workers := range []int{1, 3} {
		got, err := Default().ParseEach(context.Background(), lines, workers)
		require.NoError(t, err)
		assert.Equal(t, []ParsedIngredient{
			{},
			{Quantity: "2 cups", Item: "flour"},
			{},
			{Item: "salt"},
		}, got, "workers=%d", workers)
	}
}
