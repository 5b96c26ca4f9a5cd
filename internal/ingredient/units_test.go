package ingredient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveUnit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		token  string
		want   string
		wantOK bool
	}{
		{token: "cups", want: "cup", wantOK: true},
		{token: "Cups", want: "cup", wantOK: true},
		{token: "TBSP", want: "tbsp", wantOK: true},
		{token: "tsp.", want: "tsp", wantOK: true},
		{token: "lbs,", want: "lb", wantOK: true},
		{token: "oz)", want: "oz", wantOK: true},
		{token: "c", want: "cup", wantOK: true},
		{token: "in", want: "inch", wantOK: true},
		{token: "tin", want: "can", wantOK: true},
		{token: "cloves", want: "clove", wantOK: true},
		{token: "flour", wantOK: false},
		{token: "", wantOK: false},
		{token: ".", wantOK: false},
	}

	for _, tc := range tests {
		t.Run(tc.token, func(t *testing.T) {
			t.Parallel()
			got, ok := ResolveUnit(tc.token)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveUnit_CanonicalNamesResolveToThemselves(t *testing.T) {
	t.Parallel()

	for _, canonical := range DefaultVocabulary().CanonicalUnits() {
		got, ok := ResolveUnit(canonical)
		assert.True(t, ok, canonical)
		assert.Equal(t, canonical, got)
	}
}
