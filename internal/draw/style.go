package draw

import (
	"strconv"
	"strings"
)

// Color is an ANSI foreground color. Zero means the terminal default.
type Color uint8

const (
	ColorDefault Color = 0
	ColorRed     Color = 31
	ColorGreen   Color = 32
	ColorYellow  Color = 33
	ColorBlue    Color = 34
	ColorMagenta Color = 35
	ColorCyan    Color = 36
	ColorWhite   Color = 37
	ColorGray    Color = 90
)

// Style is the look of a single cell.
type Style struct {
	FG      Color
	Bold    bool
	Dim     bool
	Reverse bool
}

// Plain is the default style.
var Plain = Style{}

// SGR returns the escape sequence that switches the terminal to s.
// It always starts from a reset so styles never leak between cells.
func (s Style) SGR() string {
	var b strings.Builder
	b.WriteString("\033[0")
	if s.Bold {
		b.WriteString(";1")
	}
	if s.Dim {
		b.WriteString(";2")
	}
	if s.Reverse {
		b.WriteString(";7")
	}
	if s.FG != ColorDefault {
		b.WriteByte(';')
		b.WriteString(strconv.Itoa(int(s.FG)))
	}
	b.WriteByte('m')
	return b.String()
}

// Box-drawing runes.
const (
	BoxHorizontal  = '─'
	BoxVertical    = '│'
	BoxTopLeft     = '┌'
	BoxTopRight    = '┐'
	BoxBottomLeft  = '└'
	BoxBottomRight = '┘'

	HeavyHorizontal  = '━'
	HeavyVertical    = '┃'
	HeavyTopLeft     = '┏'
	HeavyTopRight    = '┓'
	HeavyBottomLeft  = '┗'
	HeavyBottomRight = '┛'
)
