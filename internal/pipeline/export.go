package pipeline

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/xuri/excelize/v2"

	"shoplist/internal"
)

const unsortedAisle = "Unsorted"

// ExportListToXLSX writes list as a workbook grouped by aisle. Items without
// an aisle come last under "Unsorted".
func ExportListToXLSX(list internal.ShoppingList, items []internal.ListItem, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Shopping list"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}
	_ = f.SetDocProps(&excelize.DocProperties{Title: list.Name, Identifier: list.PublicID})

	headers := []string{
		"aisle", "quantity", "item", "product", "category",
		"match_status", "confidence", "match_reason",
		"line_no", "source", "raw_line",
		"candidate2_name", "candidate2_score",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	sorted := append([]internal.ListItem(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ai, aj := aisleOf(sorted[i]), aisleOf(sorted[j])
		if ai != aj {
			if ai == unsortedAisle || aj == unsortedAisle {
				return aj == unsortedAisle
			}
			return ai < aj
		}
		return sorted[i].LineNo < sorted[j].LineNo
	})

	for i, item := range sorted {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, aisleOf(item))
		set(2, item.Quantity)
		set(3, item.Item)
		set(4, derefString(item.ProductName))
		set(5, derefString(item.Category))
		set(6, string(item.MatchStatus))
		set(7, item.Confidence)
		set(8, string(item.MatchReason))
		set(9, item.LineNo)
		set(10, string(item.Source))
		set(11, item.RawLine)
		set(12, derefString(item.Candidate2Name))
		set(13, derefFloat(item.Candidate2Score))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func aisleOf(item internal.ListItem) string {
	if item.Aisle == nil || *item.Aisle == "" {
		return unsortedAisle
	}
	return *item.Aisle
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
