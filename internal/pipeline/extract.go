package pipeline

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"
	pdf "github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"shoplist/internal"
)

var (
	noisePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^[-_=*~•]{2,}$`),
		regexp.MustCompile(`(?i)^(?:thanks|thank you|cheers|regards|best wishes|kind regards|enjoy)\b`),
		regexp.MustCompile(`(?i)^(?:https?://|www\.)`),
		regexp.MustCompile(`(?i)^sent from\b`),
		regexp.MustCompile(`(?i)^(?:tel|phone|e-?mail)[:\s]`),
		regexp.MustCompile(`(?i)^(?:serves|makes|yield|prep time|cook time|total time|difficulty)\b`),
	}

	ingredientsHeading = regexp.MustCompile(`(?i)^(?:ingredients?|you(?:'|’)?ll need|you will need|shopping list)\s*:?$`)
	methodHeading      = regexp.MustCompile(`(?i)^(?:method|directions|instructions|steps|preparation|to serve|notes?)\s*:?$`)
	subHeading         = regexp.MustCompile(`^[^:]{1,40}:$`)
	letterRegex        = regexp.MustCompile(`\pL`)
	spacesRegex        = regexp.MustCompile(`\s+`)
)

// maxIngredientWords separates ingredient lines from prose such as method
// steps or introductions.
const maxIngredientWords = 16

var (
	nameHeaders = []string{"ingredient", "item", "name", "product"}
	qtyHeaders  = []string{"qty", "quantity", "amount"}
	unitHeaders = []string{"unit", "measure"}
)

// EmailContent is what a stored recipe email yields.
type EmailContent struct {
	Lines       []internal.SourceLine
	Subject     string
	Text        string
	HTML        string
	Attachments []string
}

// ExtractLinesFromEmailRaw reads a MIME message and collects ingredient lines
// from its text part, its HTML part and any xlsx, pdf, text or html
// attachments. Identical lines are kept once and renumbered.
func ExtractLinesFromEmailRaw(raw []byte) (EmailContent, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return EmailContent{}, err
	}

	lines := make([]internal.SourceLine, 0)
	if env.Text != "" {
		lines = append(lines, parseRecipeText(env.Text, internal.SourceEmailText)...)
	}
	if env.HTML != "" {
		lines = append(lines, parseRecipeHTML(env.HTML)...)
	}

	attachmentNames := make([]string, 0, len(env.Attachments))
	for _, att := range env.Attachments {
		filename := strings.TrimSpace(att.FileName)
		if filename == "" {
			filename = "attachment"
		}
		attachmentNames = append(attachmentNames, filename)

		extra, err := parseAttachment(filename, att.Content)
		if err != nil || len(extra) == 0 {
			continue
		}
		for i := range extra {
			if extra[i].Meta == nil {
				extra[i].Meta = map[string]any{}
			}
			extra[i].Meta["attachment"] = filename
		}
		lines = append(lines, extra...)
	}

	lines = dedupeLines(lines)
	for i := range lines {
		lines[i].LineNo = i + 1
	}

	return EmailContent{
		Lines:       lines,
		Subject:     env.GetHeader("Subject"),
		Text:        env.Text,
		HTML:        env.HTML,
		Attachments: attachmentNames,
	}, nil
}

func parseAttachment(filename string, content []byte) ([]internal.SourceLine, error) {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".xlsx"):
		return parseXLSX(content)
	case strings.HasSuffix(lower, ".pdf"):
		return parsePDF(content)
	case strings.HasSuffix(lower, ".html"), strings.HasSuffix(lower, ".htm"):
		return parseRecipeHTML(string(content)), nil
	case strings.HasSuffix(lower, ".txt"):
		return parseRecipeText(string(content), internal.SourceText), nil
	}
	return nil, nil
}

// parseRecipeText keeps the lines between an "Ingredients" heading and the
// next method heading. Without an ingredients heading the whole text up to
// the first method heading is scanned.
func parseRecipeText(text string, source internal.LineSource) []internal.SourceLine {
	lines := splitLines(text)

	start, end := 0, len(lines)
	for i, line := range lines {
		if ingredientsHeading.MatchString(line) {
			start = i + 1
			break
		}
	}
	for i := start; i < len(lines); i++ {
		if methodHeading.MatchString(lines[i]) {
			end = i
			break
		}
	}

	out := make([]internal.SourceLine, 0, end-start)
	for i := start; i < end; i++ {
		compact := normalizeSpaces(lines[i])
		if !isIngredientCandidate(compact) {
			continue
		}
		out = append(out, internal.SourceLine{
			LineNo: i + 1,
			Source: source,
			Raw:    compact,
			Meta:   map[string]any{},
		})
	}
	return out
}

// parseRecipeHTML prefers schema.org recipeIngredient data, then list items
// inside ingredient containers, then every list item. Tables with an
// ingredient column are always read.
func parseRecipeHTML(html string) []internal.SourceLine {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	out := []internal.SourceLine{}
	add := func(source internal.LineSource, raw string, meta map[string]any) {
		compact := normalizeSpaces(raw)
		if !isIngredientCandidate(compact) {
			return
		}
		out = append(out, internal.SourceLine{LineNo: len(out) + 1, Source: source, Raw: compact, Meta: meta})
	}

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		for _, ing := range recipeIngredientsFromJSONLD(s.Text()) {
			add(internal.SourceHTMLList, ing, map[string]any{"from": "json-ld"})
		}
	})
	if len(out) > 0 {
		return out
	}

	items := doc.Find(`[class*="ingredient"] li, [id*="ingredient"] li, li[class*="ingredient"]`)
	if items.Length() == 0 {
		items = doc.Find("li")
	}
	items.Each(func(_ int, li *goquery.Selection) {
		add(internal.SourceHTMLList, li.Text(), map[string]any{})
	})

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		rows := table.Find("tr")
		if rows.Length() < 2 {
			return
		}

		headers := []string{}
		rows.First().Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			headers = append(headers, strings.ToLower(normalizeSpaces(cell.Text())))
		})
		nameIdx := findHeaderIndex(headers, nameHeaders)
		if nameIdx < 0 {
			return
		}
		qtyIdx := findHeaderIndex(headers, qtyHeaders)
		unitIdx := findHeaderIndex(headers, unitHeaders)

		rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
			cells := []string{}
			row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, normalizeSpaces(cell.Text()))
			})
			line := joinColumns(cells, qtyIdx, unitIdx, nameIdx)
			if pickCell(cells, nameIdx) == "" {
				return
			}
			add(internal.SourceHTMLTable, line, map[string]any{"row": cells})
		})
	})

	return out
}

func recipeIngredientsFromJSONLD(blob string) []string {
	var doc any
	if err := json.Unmarshal([]byte(strings.TrimSpace(blob)), &doc); err != nil {
		return nil
	}

	var out []string
	var walk func(v any)
	walk = func(v any) {
		switch t := v.(type) {
		case []any:
			for _, el := range t {
				walk(el)
			}
		case map[string]any:
			if ings, ok := t["recipeIngredient"].([]any); ok {
				for _, ing := range ings {
					if s, ok := ing.(string); ok {
						out = append(out, s)
					}
				}
			}
			if graph, ok := t["@graph"]; ok {
				walk(graph)
			}
		}
	}
	walk(doc)
	return out
}

// parseXLSX reads every sheet. When the first non-empty row names an
// ingredient column the quantity, unit and ingredient cells are joined into a
// line; otherwise each row is taken as written.
func parseXLSX(content []byte) ([]internal.SourceLine, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	lineNo := 0
	out := []internal.SourceLine{}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}

		nameIdx, qtyIdx, unitIdx := -1, -1, -1
		headerSeen := false
		for i, row := range rows {
			cells := normalizeCells(row)
			if len(strings.Join(cells, "")) == 0 {
				continue
			}
			if !headerSeen {
				headerSeen = true
				nameIdx, qtyIdx, unitIdx = inferColumns(cells)
				if nameIdx >= 0 {
					continue
				}
			}

			var line string
			if nameIdx >= 0 {
				if pickCell(cells, nameIdx) == "" {
					continue
				}
				line = joinColumns(cells, qtyIdx, unitIdx, nameIdx)
			} else {
				line = strings.Join(nonEmpty(cells), " ")
			}
			if !isIngredientCandidate(line) {
				continue
			}

			lineNo++
			out = append(out, internal.SourceLine{
				LineNo: lineNo,
				Source: internal.SourceXLSX,
				Raw:    line,
				Meta:   map[string]any{"sheet": sheet, "rowNumber": i + 1},
			})
		}
	}

	return out, nil
}

func parsePDF(content []byte) ([]internal.SourceLine, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		pageText, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		text.WriteString(pageText)
		text.WriteString("\n")
	}
	return parseRecipeText(text.String(), internal.SourcePDF), nil
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isIngredientCandidate(line string) bool {
	if line == "" || !letterRegex.MatchString(line) {
		return false
	}
	if isLikelyNoise(line) {
		return false
	}
	if ingredientsHeading.MatchString(line) || methodHeading.MatchString(line) || subHeading.MatchString(line) {
		return false
	}
	return len(strings.Fields(line)) <= maxIngredientWords
}

func normalizeSpaces(input string) string {
	return strings.TrimSpace(spacesRegex.ReplaceAllString(input, " "))
}

func isLikelyNoise(line string) bool {
	for _, re := range noisePatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// dedupeLines keeps the first occurrence of each line, compared without case,
// so a message whose text and HTML parts carry the same list yields it once.
func dedupeLines(lines []internal.SourceLine) []internal.SourceLine {
	seen := map[string]struct{}{}
	out := make([]internal.SourceLine, 0, len(lines))
	for _, line := range lines {
		key := strings.ToLower(line.Raw)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, line)
	}
	return out
}

func findHeaderIndex(headers []string, probes []string) int {
	for i, h := range headers {
		for _, probe := range probes {
			if strings.Contains(h, probe) {
				return i
			}
		}
	}
	return -1
}

func pickCell(cells []string, idx int) string {
	if idx >= 0 && idx < len(cells) {
		return strings.TrimSpace(cells[idx])
	}
	return ""
}

// joinColumns rebuilds a free-text line ("2 cups flour") from table cells.
func joinColumns(cells []string, qtyIdx, unitIdx, nameIdx int) string {
	parts := make([]string, 0, 3)
	for _, idx := range []int{qtyIdx, unitIdx, nameIdx} {
		if cell := pickCell(cells, idx); cell != "" {
			parts = append(parts, cell)
		}
	}
	return strings.Join(parts, " ")
}

func inferColumns(headers []string) (nameIdx, qtyIdx, unitIdx int) {
	norm := make([]string, 0, len(headers))
	for _, h := range headers {
		norm = append(norm, strings.ToLower(h))
	}
	nameIdx = findHeaderIndex(norm, nameHeaders)
	qtyIdx = findHeaderIndex(norm, qtyHeaders)
	unitIdx = findHeaderIndex(norm, unitHeaders)
	return
}

func normalizeCells(row []string) []string {
	out := make([]string, 0, len(row))
	for _, c := range row {
		out = append(out, normalizeSpaces(c))
	}
	return out
}

func nonEmpty(cells []string) []string {
	out := make([]string, 0, len(cells))
	for _, c := range cells {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}
