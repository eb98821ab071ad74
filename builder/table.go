package builder

import (
	"fmt"

	"github.com/wudi/pdfexport/raster"
)

// Table defines a matrix of cells to draw.
type Table struct {
	Columns    []float64
	Rows       []TableRow
	HeaderRows int
}

// TableRow wraps a slice of cells.
type TableRow struct {
	Cells  []TableCell
	Height float64
}

// TableCell configures individual table cell rendering.
type TableCell struct {
	Text       string
	Align      raster.Align
	Background *Color
	Hyperlink  string
}

// TableOptions configures table layout.
type TableOptions struct {
	X, Y        float64
	BorderColor Color
	BorderWidth float64
	CellPadding float64
	FontSize    float64
	TextColor   Color
	RowHeight   float64
}

// DrawTable lays rows out top to bottom. Rows that do not fit in the
// content area continue on a new page with the same decoration, header
// rows repeated.
func (p *pageBuilderImpl) DrawTable(table Table, opts TableOptions) PageBuilder {
	if len(table.Columns) == 0 || len(table.Rows) == 0 {
		return p
	}
	for i, row := range table.Rows {
		if len(row.Cells) > len(table.Columns) && p.parent.err == nil {
			p.parent.err = fmt.Errorf("table row %d: %d cells for %d columns", i, len(row.Cells), len(table.Columns))
			return p
		}
	}
	if opts.BorderWidth == 0 {
		opts.BorderWidth = 1
	}
	if opts.CellPadding == 0 {
		opts.CellPadding = 4
	}
	if opts.FontSize == 0 {
		opts.FontSize = 13
	}
	if opts.RowHeight == 0 {
		opts.RowHeight = opts.FontSize*1.2 + 2*opts.CellPadding
	}
	headerCount := min(table.HeaderRows, len(table.Rows))

	cur := p
	y := opts.Y
	contentHeight := func(pb *pageBuilderImpl) float64 {
		m := pb.page.Margin
		return pb.page.Height - m.Top - m.Bottom
	}
	for i, row := range table.Rows {
		h := row.Height
		if h == 0 {
			h = opts.RowHeight
		}
		if y+h > contentHeight(cur) && y > opts.Y {
			cur = cur.continuation()
			y = opts.Y
			if i >= headerCount {
				for _, hr := range table.Rows[:headerCount] {
					y += cur.drawRow(table, hr, y, opts)
				}
			}
		}
		y += cur.drawRow(table, row, y, opts)
	}
	return cur
}

func (p *pageBuilderImpl) drawRow(table Table, row TableRow, y float64, opts TableOptions) float64 {
	h := row.Height
	if h == 0 {
		h = opts.RowHeight
	}
	x := opts.X
	for ci, w := range table.Columns {
		var cell TableCell
		if ci < len(row.Cells) {
			cell = row.Cells[ci]
		}
		if cell.Background != nil {
			p.DrawRectangle(x, y, w, h, RectOptions{Fill: true, FillColor: *cell.Background})
		}
		p.DrawRectangle(x, y, w, h, RectOptions{Stroke: true, StrokeColor: opts.BorderColor, LineWidth: opts.BorderWidth})
		if cell.Text != "" {
			pad := opts.CellPadding
			p.DrawText(cell.Text, x+pad, y+pad, w-2*pad, h-2*pad, TextOptions{
				FontSize:  opts.FontSize,
				Color:     opts.TextColor,
				Align:     cell.Align,
				Hyperlink: cell.Hyperlink,
			})
		}
		x += w
	}
	return h
}
