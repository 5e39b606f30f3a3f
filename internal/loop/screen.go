package loop

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomz197/whackamole/internal/draw"
	"github.com/tomz197/whackamole/internal/game"
	"github.com/tomz197/whackamole/internal/loop/config"
)

var (
	styleTitle  = draw.Style{FG: draw.ColorYellow, Bold: true}
	styleLabel  = draw.Style{FG: draw.ColorGray}
	styleValue  = draw.Style{Bold: true}
	styleHelp   = draw.Style{FG: draw.ColorGray}
	styleNotice = draw.Style{FG: draw.ColorCyan}
	styleWarn   = draw.Style{FG: draw.ColorRed, Bold: true}
	styleHole   = draw.Style{FG: draw.ColorGray, Dim: true}
	styleFocus  = draw.Style{FG: draw.ColorWhite, Bold: true}
	styleHit    = draw.Style{FG: draw.ColorCyan, Bold: true}
	styleMiss   = draw.Style{FG: draw.ColorRed, Bold: true}
)

var helpLines = []string{
	"1-9 hit  arrows/hjkl move  ENTER hit/start  n start  r reset",
	"m mode  +/- speed  x sound  v vibrate  q quit",
}

// drawFrame draws the current frame.
func (s *Session) drawFrame() error {
	s.updateScreen()
	c := s.canvas
	c.Clear()

	centerX := c.Width() / 2
	c.TextCentered(centerX, 0, "W H A C K - A - M O L E", styleTitle)
	s.drawHUD(1)

	gridTop := 4
	gridBottom := s.drawBoard(gridTop)

	s.drawStatus(centerX, gridBottom+1)
	for i, line := range helpLines {
		c.TextCentered(centerX, gridBottom+3+i, line, styleHelp)
	}

	c.Render(s.chunkWriter)
	return s.chunkWriter.Flush()
}

// updateScreen handles terminal resize, clamping to max render resolution.
// On actual size changes, clears the terminal to remove residual cells
// outside the new canvas area.
func (s *Session) updateScreen() {
	termWidth, termHeight := draw.TerminalSize(s.termSizeFunc)
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	col, row := s.canvas.Offset()
	if renderWidth != s.canvas.Width() || renderHeight != s.canvas.Height() ||
		offsetCol != col || offsetRow != row {
		draw.ClearScreen(s.chunkWriter)
		s.canvas.ForceRedraw()
	}
	s.canvas.Resize(renderWidth, renderHeight)
	s.canvas.SetOffset(offsetCol, offsetRow)
}

// clampTermSize clamps terminal dimensions to the max render resolution and computes
// the centering offset for the render area.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = min(termWidth, config.MaxTermWidth)
	renderHeight = min(termHeight, config.MaxTermHeight)
	offsetCol = (termWidth - renderWidth) / 2
	offsetRow = (termHeight - renderHeight) / 2
	return
}

// drawHUD draws two rows of game counters starting at row y.
func (s *Session) drawHUD(y int) {
	v := s.view
	settings := s.ctrl.Settings()

	timeText := "∞"
	if v.TimeLeft != game.InfiniteTime {
		timeText = fmt.Sprintf("%d", v.TimeLeft)
	}
	lives := strings.Repeat("♥", max(v.Lives, 0)) + strings.Repeat("·", max(game.MaxLives-v.Lives, 0))

	top := []field{
		{"Score", fmt.Sprintf("%d", v.Score)},
		{"Time", timeText},
		{"Combo", fmt.Sprintf("%d x%s", v.Combo, game.Multiplier(v.Combo).String())},
		{"Lives", lives},
		{"Best", fmt.Sprintf("%d", v.Best)},
	}
	bottom := []field{
		{"Mode", v.Mode.String()},
		{"Speed", game.SpeedLabel(v.Speed)},
		{"Sound", onOff(settings.Sound)},
		{"Vibrate", onOff(settings.Vibrate)},
	}
	if s.hub != nil {
		bottom = append(bottom, field{"Players", fmt.Sprintf("%d", s.hub.Players())})
	}
	s.drawFields(y, top)
	s.drawFields(y+1, bottom)
}

type field struct {
	label string
	value string
}

func (s *Session) drawFields(y int, fields []field) {
	width := 0
	for i, f := range fields {
		if i > 0 {
			width += 3
		}
		width += runeLen(f.label) + 1 + runeLen(f.value)
	}
	x := s.canvas.Width()/2 - width/2
	for i, f := range fields {
		if i > 0 {
			x += 3
		}
		s.canvas.Text(x, y, f.label, styleLabel)
		x += runeLen(f.label) + 1
		s.canvas.Text(x, y, f.value, styleValue)
		x += runeLen(f.value)
	}
}

// drawBoard draws the hole grid at row top and returns the first row below it.
func (s *Session) drawBoard(top int) int {
	holes := s.view.Holes
	cols := gridColumns(len(holes))
	rows := (len(holes) + cols - 1) / cols

	gridWidth := cols*config.CellWidth + (cols-1)*config.CellGap
	left := (s.canvas.Width() - gridWidth) / 2
	if s.view.Shaking() && (s.frame/config.ShakeStep)%2 == 0 {
		left++
	}

	cellX := func(i int) int { return left + (i%cols)*(config.CellWidth+config.CellGap) }
	cellY := func(i int) int { return top + (i/cols)*(config.CellHeight+config.CellGap) }

	for i, h := range holes {
		s.drawHole(cellX(i), cellY(i), i, h)
	}
	for _, f := range s.view.Floats() {
		if f.Hole < 0 || f.Hole >= len(holes) {
			continue
		}
		s.canvas.TextCentered(cellX(f.Hole)+config.CellWidth/2, cellY(f.Hole), " "+f.Text+" ", moleStyle(f.Type))
	}
	return top + rows*config.CellHeight + (rows-1)*config.CellGap
}

func (s *Session) drawHole(x, y, index int, h game.Hole) {
	c := s.canvas
	border := styleHole
	heavy := index == s.cursor
	if heavy {
		border = styleFocus
	}
	switch {
	case h.Flags.Has(game.FlagMiss):
		border = styleMiss
	case h.Flags.Has(game.FlagHit):
		border, heavy = styleHit, true
	}
	c.Box(x, y, config.CellWidth, config.CellHeight, border, heavy)
	c.Text(x+1, y+config.CellHeight-2, fmt.Sprintf("%d", index+1), styleLabel)

	midX := x + config.CellWidth/2
	midY := y + config.CellHeight/2
	switch {
	case h.Flags.Has(game.FlagActive):
		style := moleStyle(h.Type)
		if h.Flags.Has(game.FlagPop) {
			style.Reverse = true
		}
		c.TextCentered(midX, midY, moleGlyph(h.Type), style)
	case h.Flags.Has(game.FlagHit):
		c.TextCentered(midX, midY, "*WHACK*", styleHit)
	default:
		c.TextCentered(midX, midY+1, "~~~~~", styleHole)
	}
}

func moleGlyph(t game.MoleType) string {
	switch t {
	case game.MoleGold:
		return "($.$)"
	case game.MoleBomb:
		return "<(@)>"
	default:
		return "(o.o)"
	}
}

func moleStyle(t game.MoleType) draw.Style {
	switch t {
	case game.MoleGold:
		return draw.Style{FG: draw.ColorYellow, Bold: true}
	case game.MoleBomb:
		return draw.Style{FG: draw.ColorRed, Bold: true}
	default:
		return draw.Style{FG: draw.ColorGreen, Bold: true}
	}
}

// drawStatus draws the one-line prompt under the board.
func (s *Session) drawStatus(centerX, y int) {
	c := s.canvas
	switch {
	case s.shuttingDown:
		c.TextCentered(centerX, y, fmt.Sprintf("Server is shutting down. Disconnecting in %d seconds.", int(s.shutdownTimer+0.999)), styleWarn)
	case s.isInactive:
		left := int(config.InactivityDisconnectUser - time.Since(s.lastInput).Seconds())
		c.TextCentered(centerX, y, fmt.Sprintf("Inactive: disconnecting in %d seconds. Press any key.", max(left, 0)), styleWarn)
	case time.Now().Before(s.noticeUntil):
		c.TextCentered(centerX, y, s.notice, styleNotice)
	case s.ctrl.State().IsPlaying:
		c.TextCentered(centerX, y, "Whack the moles! Avoid the bombs.", styleNotice)
	case s.view.ResetEnabled:
		c.TextCentered(centerX, y, fmt.Sprintf("Game over! Score %d. ENTER to play again, r to reset.", s.view.Score), styleTitle)
	default:
		if time.Now().UnixMilli()/600%2 == 0 {
			c.TextCentered(centerX, y, ">>  Press ENTER to Start  <<", styleTitle)
		}
	}
}

func runeLen(s string) int { return len([]rune(s)) }
