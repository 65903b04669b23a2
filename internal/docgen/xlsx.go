package docgen

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

var defaultColumns = []string{"ID", "Description", "Owner", "Status", "Priority", "Notes"}

// renderXLSX produces a styled workbook: a merged title banner, metadata
// rows, a header row with auto-filter and frozen panes, and one row per
// content line.
func (r *OfficeRenderer) renderXLSX(doc Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := doc.Name
	if len(sheet) > 31 {
		sheet = sheet[:31]
	}
	if sheet == "" {
		sheet = "Document"
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 16, Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"0066CC"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("build title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"0066CC"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Style: 1}, {Type: "right", Style: 1},
			{Type: "top", Style: 1}, {Type: "bottom", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("build header style: %w", err)
	}
	italicStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Italic: true}})
	if err != nil {
		return nil, fmt.Errorf("build italic style: %w", err)
	}

	f.SetCellValue(sheet, "A1", doc.Name)
	f.MergeCell(sheet, "A1", "F1")
	f.SetCellStyle(sheet, "A1", "F1", titleStyle)
	f.SetRowHeight(sheet, 1, 30)

	f.SetCellValue(sheet, "A2", fmt.Sprintf("Methodology: %s", orNA(doc.Methodology)))
	f.SetCellStyle(sheet, "A2", "A2", italicStyle)
	f.SetCellValue(sheet, "A3", fmt.Sprintf("Generated: %s", r.now().Format("2006-01-02 15:04")))
	f.SetCellStyle(sheet, "A3", "A3", italicStyle)

	headerRow := 5
	for i, col := range defaultColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		f.SetCellValue(sheet, cell, col)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	row := headerRow + 1
	for i, line := range parseContent(doc.Content) {
		idCell, _ := excelize.CoordinatesToCellName(1, row)
		descCell, _ := excelize.CoordinatesToCellName(2, row)
		statusCell, _ := excelize.CoordinatesToCellName(4, row)
		f.SetCellValue(sheet, idCell, i+1)
		f.SetCellValue(sheet, descCell, line.text)
		f.SetCellValue(sheet, statusCell, "Not Started")
		row++
	}

	for i := range defaultColumns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, 20)
	}

	topLeft, _ := excelize.CoordinatesToCellName(1, headerRow+1)
	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      headerRow,
		TopLeftCell: topLeft,
		ActivePane:  "bottomLeft",
	})

	lastCol, _ := excelize.ColumnNumberToName(len(defaultColumns))
	filterRange := fmt.Sprintf("A%d:%s%d", headerRow, lastCol, row-1)
	if row-1 > headerRow {
		f.AutoFilter(sheet, filterRange, nil)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
