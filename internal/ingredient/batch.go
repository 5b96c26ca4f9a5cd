package ingredient

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ParseIngredients parses lines in order and drops records without an item.
func (p *Parser) ParseIngredients(lines []string) []ParsedIngredient {
	out := make([]ParsedIngredient, 0, len(lines))
	for _, line := range lines {
		if parsed := p.ParseIngredient(line); !parsed.IsEmpty() {
			out = append(out, parsed)
		}
	}
	return out
}

// ParseValues is ParseIngredients for loosely typed input such as a decoded
// JSON array. Non-string elements are treated as empty lines; anything that
// is not a slice yields an empty result.
func (p *Parser) ParseValues(v any) []ParsedIngredient {
	return p.ParseIngredients(CoerceLines(v))
}

// CoerceLines converts v to lines. Non-string elements become "".
func CoerceLines(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		lines := make([]string, len(t))
		for i, el := range t {
			if s, ok := el.(string); ok {
				lines[i] = s
			}
		}
		return lines
	default:
		return []string{}
	}
}

// ParseEach parses every line without filtering, so out[i] belongs to
// lines[i]. Lines are fanned out over at most workers goroutines; it only
// fails when ctx is cancelled before every line was parsed.
func (p *Parser) ParseEach(ctx context.Context, lines []string, workers int) ([]ParsedIngredient, error) {
	parsed := make([]ParsedIngredient, len(lines))
	if workers <= 1 || len(lines) < 2 {
		for i, line := range lines {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			parsed[i] = p.ParseIngredient(line)
		}
		return parsed, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, line := range lines {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			parsed[i] = p.ParseIngredient(line)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return parsed, nil
}

// ParseIngredientsConcurrent is ParseIngredients spread over at most workers
// goroutines. The result is identical to ParseIngredients.
func (p *Parser) ParseIngredientsConcurrent(ctx context.Context, lines []string, workers int) ([]ParsedIngredient, error) {
	if workers <= 1 || len(lines) < 2 {
		return p.ParseIngredients(lines), nil
	}

	parsed, err := p.ParseEach(ctx, lines, workers)
	if err != nil {
		return nil, err
	}

	out := make([]ParsedIngredient, 0, len(parsed))
	for _, rec := range parsed {
		if !rec.IsEmpty() {
			out = append(out, rec)
		}
	}
	return out, nil
}

// ParseIngredients uses the default parser.
func ParseIngredients(lines []string) []ParsedIngredient {
	return defaultParser.ParseIngredients(lines)
}

// ParseValues uses the default parser.
func ParseValues(v any) []ParsedIngredient {
	return defaultParser.ParseValues(v)
}
