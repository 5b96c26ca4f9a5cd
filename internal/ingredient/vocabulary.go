package ingredient

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

// Vocabulary holds the word lists the parser is built from.
//
// Units maps a canonical unit name to the surface forms that denote it. The
// canonical name is always a synonym of itself.
type Vocabulary struct {
	Units        map[string][]string `yaml:"units" toml:"units" json:"units,omitempty" jsonschema:"description=Canonical unit name to synonyms"`
	Descriptors  []string            `yaml:"descriptors" toml:"descriptors" json:"descriptors,omitempty" jsonschema:"description=Words removed from item names"`
	Prepositions []string            `yaml:"prepositions" toml:"prepositions" json:"prepositions,omitempty" jsonschema:"description=Words dropped from item names unless first"`
	VaguePhrases []string            `yaml:"vague_phrases" toml:"vague_phrases" json:"vague_phrases,omitempty" jsonschema:"description=Line openers meaning no discrete quantity"`
}

var numberWords = map[string]float64{
	"a":       1,
	"an":      1,
	"one":     1,
	"two":     2,
	"three":   3,
	"four":    4,
	"five":    5,
	"six":     6,
	"seven":   7,
	"eight":   8,
	"nine":    9,
	"ten":     10,
	"eleven":  11,
	"twelve":  12,
	"dozen":   12,
	"half":    0.5,
	"quarter": 0.25,
}

var unicodeFractions = map[rune]string{
	'¼': "0.25",
	'½': "0.5",
	'¾': "0.75",
	'⅐': "0.142857",
	'⅑': "0.111111",
	'⅒': "0.1",
	'⅓': "0.333333",
	'⅔': "0.666667",
	'⅕': "0.2",
	'⅖': "0.4",
	'⅗': "0.6",
	'⅘': "0.8",
	'⅙': "0.166667",
	'⅚': "0.833333",
	'⅛': "0.125",
	'⅜': "0.375",
	'⅝': "0.625",
	'⅞': "0.875",
}

// fusedUnits are the unit suffixes recognized without a separating space
// ("400g"). Narrower than the synonym table: "2c" and "3t" do not read as
// fused quantities.
var fusedUnits = []string{"inches", "inch", "lbs", "lb", "kg", "ml", "oz", "in", "g", "l"}

// DefaultVocabulary returns a fresh copy of the built-in vocabulary.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Units: map[string][]string{
			"tsp":     {"teaspoon", "teaspoons", "tsp", "tsps", "t"},
			"tbsp":    {"tablespoon", "tablespoons", "tbsp", "tbsps", "tbs", "tbl"},
			"cup":     {"cup", "cups", "c"},
			"oz":      {"ounce", "ounces", "oz"},
			"fl oz":   {"floz", "fl.oz"},
			"lb":      {"pound", "pounds", "lb", "lbs"},
			"g":       {"gram", "grams", "gramme", "grammes", "g", "gr"},
			"kg":      {"kilogram", "kilograms", "kilo", "kilos", "kg", "kgs"},
			"mg":      {"milligram", "milligrams", "mg"},
			"ml":      {"milliliter", "milliliters", "millilitre", "millilitres", "ml"},
			"l":       {"liter", "liters", "litre", "litres", "l"},
			"pint":    {"pint", "pints", "pt"},
			"quart":   {"quart", "quarts", "qt"},
			"gallon":  {"gallon", "gallons", "gal"},
			"inch":    {"inch", "inches", "in"},
			"can":     {"can", "cans", "tin", "tins"},
			"jar":     {"jar", "jars"},
			"bottle":  {"bottle", "bottles"},
			"package": {"package", "packages", "pkg", "pkgs", "packet", "packets", "pack", "packs"},
			"bag":     {"bag", "bags"},
			"box":     {"box", "boxes"},
			"clove":   {"clove", "cloves"},
			"slice":   {"slice", "slices"},
			"piece":   {"piece", "pieces", "pc", "pcs"},
			"stick":   {"stick", "sticks"},
			"bunch":   {"bunch", "bunches"},
			"head":    {"head", "heads"},
			"sprig":   {"sprig", "sprigs"},
			"stalk":   {"stalk", "stalks"},
			"pinch":   {"pinch", "pinches"},
			"dash":    {"dash", "dashes"},
		},
		Descriptors: []string{
			"chopped", "minced", "diced", "sliced", "grated", "shredded", "crushed",
			"peeled", "seeded", "cored", "cubed", "halved", "quartered", "julienned",
			"fresh", "freshly", "finely", "roughly", "coarsely", "thinly", "thickly",
			"large", "medium", "small", "ripe", "softened", "melted", "beaten",
			"sifted", "packed", "divided", "rinsed", "drained", "trimmed", "toasted",
			"optional", "lightly", "whole",
		},
		Prepositions: []string{"in", "into", "with", "for", "from", "on", "at", "by"},
		VaguePhrases: []string{
			"a pinch", "to taste", "as needed", "few", "some", "several",
			"handful", "dash", "sprinkle",
		},
	}
}

// Merge folds extra into v. Synonyms are appended to the canonical unit they
// name; list entries are added once.
func (v Vocabulary) Merge(extra Vocabulary) Vocabulary {
	out := Vocabulary{
		Units:        make(map[string][]string, len(v.Units)+len(extra.Units)),
		Descriptors:  appendUnique(nil, v.Descriptors...),
		Prepositions: appendUnique(nil, v.Prepositions...),
		VaguePhrases: appendUnique(nil, v.VaguePhrases...),
	}
	for canonical, synonyms := range v.Units {
		out.Units[canonical] = appendUnique(nil, synonyms...)
	}
	for canonical, synonyms := range extra.Units {
		key := strings.ToLower(strings.TrimSpace(canonical))
		if key == "" {
			continue
		}
		out.Units[key] = appendUnique(out.Units[key], synonyms...)
	}
	out.Descriptors = appendUnique(out.Descriptors, extra.Descriptors...)
	out.Prepositions = appendUnique(out.Prepositions, extra.Prepositions...)
	out.VaguePhrases = appendUnique(out.VaguePhrases, extra.VaguePhrases...)
	return out
}

// LoadVocabulary reads a vocabulary file (.yaml, .yml, .toml or .json) and
// merges it into the built-in vocabulary.
func LoadVocabulary(path string) (Vocabulary, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("read vocabulary: %w", err)
	}

	var extra Vocabulary
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(blob, &extra)
	case ".toml":
		err = toml.Unmarshal(blob, &extra)
	case ".json":
		err = json.Unmarshal(blob, &extra)
	default:
		return Vocabulary{}, fmt.Errorf("unsupported vocabulary format: %s", filepath.Ext(path))
	}
	if err != nil {
		return Vocabulary{}, fmt.Errorf("decode vocabulary %s: %w", path, err)
	}

	return DefaultVocabulary().Merge(extra), nil
}

// VocabularySchema returns the JSON Schema describing vocabulary files.
func VocabularySchema() ([]byte, error) {
	r := &jsonschema.Reflector{DoNotReference: true}
	schema := r.Reflect(&Vocabulary{})
	schema.Title = "shoplist ingredient vocabulary"
	return json.MarshalIndent(schema, "", "  ")
}

// CanonicalUnits lists the canonical unit names in sorted order.
func (v Vocabulary) CanonicalUnits() []string {
	out := make([]string, 0, len(v.Units))
	for canonical := range v.Units {
		out = append(out, canonical)
	}
	sort.Strings(out)
	return out
}

func appendUnique(dst []string, values ...string) []string {
	seen := make(map[string]struct{}, len(dst)+len(values))
	for _, d := range dst {
		seen[d] = struct{}{}
	}
	for _, value := range values {
		value = strings.ToLower(strings.TrimSpace(value))
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		dst = append(dst, value)
	}
	return dst
}
