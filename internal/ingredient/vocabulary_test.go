package ingredient

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadVocabulary_YAML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "vocab.yaml", `
units:
  bottle: [btl]
  sachet: [sachet, sachets]
descriptors: [Zested]
vague_phrases: [a splash]
`)

	vocab, err := LoadVocabulary(path)
	require.NoError(t, err)
	assert.Contains(t, vocab.Units["bottle"], "btl")
	assert.Contains(t, vocab.Units["bottle"], "bottles")
	assert.Contains(t, vocab.Descriptors, "zested")

	p := NewParser(vocab)
	unit, ok := p.ResolveUnit("BTL")
	require.True(t, ok)
	assert.Equal(t, "bottle", unit)

	assert.Equal(t, ParsedIngredient{Quantity: "2 sachets", Item: "yeast"}, p.ParseIngredient("2 sachets yeast"))
	assert.Equal(t, "lemon", p.CleanItemName("lemon, zested"))
	assert.Equal(t, ParsedIngredient{Item: "milk"}, p.ParseIngredient("a splash of milk"))

	_, ok = ResolveUnit("sachets")
	assert.False(t, ok, "default parser must not see loaded units")
}

func TestLoadVocabulary_TOML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "vocab.toml", `
prepositions = ["over"]

[units]
punnet = ["punnet", "punnets"]
`)

	vocab, err := LoadVocabulary(path)
	require.NoError(t, err)

	p := NewParser(vocab)
	assert.Equal(t, ParsedIngredient{Quantity: "1 punnet", Item: "strawberries"}, p.ParseIngredient("1 punnet strawberries"))
	assert.Equal(t, "ice cream berries", p.CleanItemName("ice cream over berries"))
}

func TestLoadVocabulary_JSON(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "vocab.json", `{"units": {"tray": ["tray", "trays"]}}`)

	vocab, err := LoadVocabulary(path)
	require.NoError(t, err)
	unit, ok := NewParser(vocab).ResolveUnit("trays")
	require.True(t, ok)
	assert.Equal(t, "tray", unit)
}

func TestLoadVocabulary_Errors(t *testing.T) {
	t.Parallel()

	_, err := LoadVocabulary(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = LoadVocabulary(writeFile(t, "vocab.ini", "units=cup"))
	require.ErrorContains(t, err, "unsupported vocabulary format")

	_, err = LoadVocabulary(writeFile(t, "vocab.json", "{not json"))
	require.ErrorContains(t, err, "decode vocabulary")
}

func TestVocabularyMerge_DoesNotAliasReceiver(t *testing.T) {
	t.Parallel()

	base := DefaultVocabulary()
	merged := base.Merge(Vocabulary{Units: map[string][]string{"cup": {"mug"}}})

	assert.Contains(t, merged.Units["cup"], "mug")
	assert.NotContains(t, base.Units["cup"], "mug")
}

func TestVocabularySchema(t *testing.T) {
	t.Parallel()

	blob, err := VocabularySchema()
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(blob, &schema))
	assert.Equal(t, "shoplist ingredient vocabulary", schema["title"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"units", "descriptors", "prepositions", "vague_phrases"} {
		assert.Contains(t, props, key)
	}
}
