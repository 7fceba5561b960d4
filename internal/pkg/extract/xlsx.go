package extract

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// xlsxText extracts plain text from a spreadsheet: cells of a row joined by
// spaces, one row per line, blank rows skipped.
func xlsxText(path string) (string, error) {
	workbook, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("open spreadsheet failed: %w", err)
	}
	defer workbook.Close()

	var lines []string
	for _, sheet := range workbook.GetSheetList() {
		rows, err := workbook.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %q failed: %w", sheet, err)
		}
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, " "))
			if line != "" {
				lines = append(lines, line)
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}
