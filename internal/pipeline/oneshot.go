package pipeline

import (
	"fmt"
	"os"

	"shoplist/internal"
)

// ExtractLinesFromInput pulls ingredient lines out of a single input. For
// "text" and "html" input is the content itself; for "xlsx", "pdf" and
// "email" it is a file path.
func ExtractLinesFromInput(inputType string, input string) ([]internal.SourceLine, error) {
	switch inputType {
	case "text":
		return parseRecipeText(input, internal.SourceText), nil
	case "html":
		return parseRecipeHTML(input), nil
	case "xlsx":
		blob, err := os.ReadFile(input)
		if err != nil {
			return nil, err
		}
		return parseXLSX(blob)
	case "pdf":
		blob, err := os.ReadFile(input)
		if err != nil {
			return nil, err
		}
		return parsePDF(blob)
	case "email":
		blob, err := os.ReadFile(input)
		if err != nil {
			return nil, err
		}
		content, err := ExtractLinesFromEmailRaw(blob)
		if err != nil {
			return nil, err
		}
		return content.Lines, nil
	default:
		return nil, fmt.Errorf("unsupported input type: %s", inputType)
	}
}
