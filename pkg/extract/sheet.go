package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// parseXLSX рендерит все листы книги в порядке следования.
func parseXLSX(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var sheets [][][]string
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return "", fmt.Errorf("read sheet %q: %w", name, err)
		}
		sheets = append(sheets, rows)
	}

	return renderSheets(sheets), nil
}

// parseXLS читает бинарную книгу Excel 97-2003.
func parseXLS(data []byte) (string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}

	var sheets [][][]string
	for i := 0; i < wb.NumSheets(); i++ {
		sheet := wb.GetSheet(i)
		if sheet == nil {
			continue
		}

		var rows [][]string
		for r := 0; r <= int(sheet.MaxRow); r++ {
			row := sheet.Row(r)
			if row == nil {
				continue
			}
			cells := make([]string, 0, row.LastCol())
			for c := row.FirstCol(); c < row.LastCol(); c++ {
				cells = append(cells, row.Col(c))
			}
			rows = append(rows, cells)
		}
		sheets = append(sheets, rows)
	}

	return renderSheets(sheets), nil
}

// renderSheets: ячейки через TAB, строки через LF, листы через пустую строку.
// Пустые хвостовые ячейки и пустые строки отбрасываются.
func renderSheets(sheets [][][]string) string {
	blocks := make([]string, 0, len(sheets))

	for _, rows := range sheets {
		var b strings.Builder
		for _, row := range rows {
			end := len(row)
			for end > 0 && strings.TrimSpace(row[end-1]) == "" {
				end--
			}
			if end == 0 {
				continue
			}
			b.WriteString(strings.Join(row[:end], "\t"))
			b.WriteByte('\n')
		}
		if b.Len() > 0 {
			blocks = append(blocks, strings.TrimRight(b.String(), "\n"))
		}
	}

	return strings.Join(blocks, "\n\n")
}
