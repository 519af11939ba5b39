package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractXLSX renders every sheet as a block: the sheet name, then one line
// per row with cells tab-separated. Blocks are separated by a blank line.
func extractXLSX(ctx context.Context, path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("opening XLSX: %w", err)
	}
	defer f.Close()

	var blocks []string
	for _, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("reading sheet %q: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}

		var content strings.Builder
		content.WriteString(sheet)
		for _, row := range rows {
			content.WriteByte('\n')
			content.WriteString(strings.Join(row, "\t"))
		}
		blocks = append(blocks, content.String())
	}

	return strings.Join(blocks, "\n\n"), nil
}
