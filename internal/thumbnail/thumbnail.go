// Package thumbnail renders spreadsheet-style preview images for
// catalog templates.
package thumbnail

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/fogleman/gg"
)

// Grid is the cell content a preview renders: the first row is drawn
// as the header.
type Grid struct {
	Title     string
	SheetName string
	Cells     [][]string
}

const (
	cellWidth    = 100.0
	cellHeight   = 30.0
	padding      = 10.0
	tabBarHeight = 40.0
	maxCols      = 8
	maxRows      = 12
)

// cellLabel shortens cell text to fit a cell, truncating on runes so
// multi-byte characters are never split.
func cellLabel(text string) string {
	runes := []rune(text)
	if len(runes) <= 14 {
		return text
	}
	return string(runes[:13]) + "…"
}

// Render draws the grid as an Excel-like PNG preview: bordered cells, a
// bold header row and a sheet tab bar at the bottom.
func Render(grid Grid) ([]byte, error) {
	cols := 0
	for _, row := range grid.Cells {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if cols > maxCols {
		cols = maxCols
	}
	if cols == 0 {
		cols = 6
	}
	rows := len(grid.Cells)
	if rows > maxRows {
		rows = maxRows
	}
	if rows == 0 {
		rows = 8
	}

	width := float64(cols)*cellWidth + 2*padding
	height := float64(rows)*cellHeight + 2*padding + tabBarHeight

	dc := gg.NewContext(int(width), int(height))
	dc.SetHexColor("ffffff")
	dc.Clear()

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			x := padding + float64(c)*cellWidth
			y := padding + float64(r)*cellHeight

			if r == 0 {
				dc.SetHexColor("0066cc")
			} else {
				dc.SetHexColor("ffffff")
			}
			dc.DrawRectangle(x, y, cellWidth, cellHeight)
			dc.FillPreserve()
			dc.SetHexColor("d0d0d0")
			dc.SetLineWidth(1)
			dc.Stroke()

			var text string
			if r < len(grid.Cells) && c < len(grid.Cells[r]) {
				text = grid.Cells[r][c]
			}
			if text == "" {
				continue
			}
			text = cellLabel(text)

			if r == 0 {
				dc.SetHexColor("ffffff")
			} else {
				dc.SetHexColor("000000")
			}
			dc.DrawStringAnchored(text, x+5, y+cellHeight/2, 0, 0.35)
		}
	}

	tabBarY := height - tabBarHeight
	dc.SetHexColor("f0f0f0")
	dc.DrawRectangle(0, tabBarY, width, tabBarHeight)
	dc.Fill()

	sheet := grid.SheetName
	if sheet == "" {
		sheet = "Sheet1"
	}
	tabWidth := float64(len(sheet))*7 + 20
	dc.SetHexColor("ffffff")
	dc.DrawRectangle(padding, tabBarY+6, tabWidth, 28)
	dc.FillPreserve()
	dc.SetHexColor("c0c0c0")
	dc.Stroke()
	dc.SetHexColor("000000")
	dc.DrawStringAnchored(sheet, padding+tabWidth/2, tabBarY+20, 0.5, 0.35)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	return buf.Bytes(), nil
}
