package draw

import (
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Cell is one terminal character with its style.
type Cell struct {
	Ch    rune
	Style Style
}

var blank = Cell{Ch: ' '}

// Canvas is a character-cell drawing buffer. Render only emits cells that
// changed since the previous frame.
type Canvas struct {
	width  int
	height int
	cells  []Cell
	prev   []Cell

	// Offset for centering the render area inside a larger terminal.
	// These are 0-based terminal offsets (columns/rows to skip).
	offsetCol int
	offsetRow int

	forceRedraw bool
	renderBuf   strings.Builder
	numBuf      [20]byte
}

// NewCanvas creates a canvas of width x height cells.
func NewCanvas(width, height int) *Canvas {
	c := &Canvas{}
	c.Resize(width, height)
	return c
}

// Resize reallocates the canvas if the size changed and forces a redraw.
func (c *Canvas) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	if width == c.width && height == c.height && c.cells != nil {
		return
	}
	c.width, c.height = width, height
	c.cells = make([]Cell, width*height)
	c.prev = make([]Cell, width*height)
	c.Clear()
	c.forceRedraw = true
}

// SetOffset sets the column and row offset for centering the canvas.
func (c *Canvas) SetOffset(col, row int) {
	if col != c.offsetCol || row != c.offsetRow {
		c.forceRedraw = true
	}
	c.offsetCol = col
	c.offsetRow = row
}

// Offset returns the current column and row offset.
func (c *Canvas) Offset() (col, row int) {
	return c.offsetCol, c.offsetRow
}

// ForceRedraw makes the next Render emit every cell.
func (c *Canvas) ForceRedraw() {
	c.forceRedraw = true
}

// Width returns the canvas width in cells.
func (c *Canvas) Width() int { return c.width }

// Height returns the canvas height in cells.
func (c *Canvas) Height() int { return c.height }

// Clear blanks every cell.
func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = blank
	}
}

// Set writes one cell. Out-of-bounds writes are ignored.
func (c *Canvas) Set(x, y int, ch rune, style Style) {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return
	}
	c.cells[y*c.width+x] = Cell{Ch: ch, Style: style}
}

// At returns the cell at x, y.
func (c *Canvas) At(x, y int) Cell {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return blank
	}
	return c.cells[y*c.width+x]
}

// Text writes s starting at x, y, one rune per cell.
func (c *Canvas) Text(x, y int, s string, style Style) {
	for _, r := range s {
		c.Set(x, y, r, style)
		x++
	}
}

// TextCentered writes s centered on column cx.
func (c *Canvas) TextCentered(cx, y int, s string, style Style) {
	c.Text(cx-utf8.RuneCountInString(s)/2, y, s, style)
}

// Box draws a rectangle outline with its top-left corner at x, y.
func (c *Canvas) Box(x, y, w, h int, style Style, heavy bool) {
	if w < 2 || h < 2 {
		return
	}
	hz, vt, tl, tr, bl, br := BoxHorizontal, BoxVertical, BoxTopLeft, BoxTopRight, BoxBottomLeft, BoxBottomRight
	if heavy {
		hz, vt, tl, tr, bl, br = HeavyHorizontal, HeavyVertical, HeavyTopLeft, HeavyTopRight, HeavyBottomLeft, HeavyBottomRight
	}
	for i := 1; i < w-1; i++ {
		c.Set(x+i, y, hz, style)
		c.Set(x+i, y+h-1, hz, style)
	}
	for j := 1; j < h-1; j++ {
		c.Set(x, y+j, vt, style)
		c.Set(x+w-1, y+j, vt, style)
	}
	c.Set(x, y, tl, style)
	c.Set(x+w-1, y, tr, style)
	c.Set(x, y+h-1, bl, style)
	c.Set(x+w-1, y+h-1, br, style)
}

// Render writes the changed cells to w.
func (c *Canvas) Render(w io.Writer) {
	c.renderBuf.Reset()

	var (
		style    Style
		styled   bool
		nextX    = -1
		nextY    = -1
		anyWrite bool
	)
	for y := 0; y < c.height; y++ {
		for x := 0; x < c.width; x++ {
			i := y*c.width + x
			cell := c.cells[i]
			if !c.forceRedraw && cell == c.prev[i] {
				continue
			}
			c.prev[i] = cell

			if x != nextX || y != nextY {
				c.moveCursor(x, y)
			}
			if !styled || cell.Style != style {
				c.renderBuf.WriteString(cell.Style.SGR())
				style, styled = cell.Style, true
			}
			c.renderBuf.WriteRune(cell.Ch)
			nextX, nextY = x+1, y
			anyWrite = true
		}
	}
	c.forceRedraw = false

	if anyWrite {
		c.renderBuf.WriteString("\033[0m")
		_, _ = io.WriteString(w, c.renderBuf.String())
	}
}

func (c *Canvas) moveCursor(x, y int) {
	c.renderBuf.WriteString("\033[")
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(y+1+c.offsetRow), 10))
	c.renderBuf.WriteByte(';')
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(x+1+c.offsetCol), 10))
	c.renderBuf.WriteByte('H')
}
