package ingredient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractQuantity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want Quantity
	}{
		{name: "integer", text: "2 cups flour", want: Quantity{Value: "2", Rest: "cups flour"}},
		{name: "fraction", text: "3/4 cup", want: Quantity{Value: "3/4", Rest: "cup"}},
		{name: "mixed number", text: "1 1/2 cups", want: Quantity{Value: "1 1/2", Rest: "cups"}},
		{name: "number word", text: "half an onion", want: Quantity{Value: "half", Rest: "an onion"}},
		{name: "hyphen range", text: "2-3 onions", want: Quantity{Value: "2-3", Rest: "onions"}},
		{name: "fraction range", text: "1/2-1 cup milk", want: Quantity{Value: "0.5-1", Rest: "cup milk"}},
		{name: "fused grams", text: "400g chicken", want: Quantity{Value: "400 g", Rest: "chicken", HasUnit: true}},
		{name: "fused decimal kilograms", text: "2.5kg potatoes", want: Quantity{Value: "2.5 kg", Rest: "potatoes", HasUnit: true}},
		{name: "fused upper case", text: "5LBS beef", want: Quantity{Value: "5 lb", Rest: "beef", HasUnit: true}},
		{name: "fused inches", text: "12in tortillas", want: Quantity{Value: "12 inch", Rest: "tortillas", HasUnit: true}},
		{name: "fused in third word", text: "chicken breast 500g", want: Quantity{Value: "500 g", Rest: "chicken breast", HasUnit: true}},
		{name: "hyphenated size is not a quantity", text: "1-inch ginger", want: Quantity{Rest: "1-inch ginger"}},
		{name: "no quantity", text: "tomato paste", want: Quantity{Rest: "tomato paste"}},
		{name: "irregular spacing", text: "  2   cups  flour ", want: Quantity{Value: "2", Rest: "cups flour"}},
		{name: "empty", text: "", want: Quantity{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ExtractQuantity(tc.text))
		})
	}
}

func TestParseMixedNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{in: "2", want: 2, wantOK: true},
		{in: "1 1/2", want: 1.5, wantOK: true},
		{in: "1 0.5", want: 1.5, wantOK: true},
		{in: "half", want: 0.5, wantOK: true},
		{in: "a", want: 1, wantOK: true},
		{in: "Dozen", want: 12, wantOK: true},
		{in: "~3", want: 3, wantOK: true},
		{in: "0", wantOK: false},
		{in: "1/0", wantOK: false},
		{in: "NaN", wantOK: false},
		{in: "flour", wantOK: false},
		{in: "", wantOK: false},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseMixedNumber(tc.in)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.InDelta(t, tc.want, got, 1e-9)
			}
		})
	}
}
