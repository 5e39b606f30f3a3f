package loop

import (
	"maps"
	"slices"
	"time"

	"github.com/tomz197/whackamole/internal/game"
)

// BoardView keeps the latest display values pushed by the controller.
// The renderer reads it once per frame.
type BoardView struct {
	Score        int
	TimeLeft     int
	Combo        int
	Lives        int
	Best         int
	Speed        int
	Mode         game.Mode
	Holes        []game.Hole
	StartEnabled bool
	ResetEnabled bool

	floats     map[int]game.Float
	shakeUntil time.Time
	now        func() time.Time
}

// Ensure BoardView satisfies the controller's display and haptics ports.
var (
	_ game.View    = (*BoardView)(nil)
	_ game.Haptics = (*BoardView)(nil)
)

// NewBoardView creates a view for a board of the given size.
func NewBoardView(holes int) *BoardView {
	return &BoardView{
		Holes:  make([]game.Hole, holes),
		floats: make(map[int]game.Float),
		now:    time.Now,
	}
}

func (v *BoardView) SetScore(score int)     { v.Score = score }
func (v *BoardView) SetTime(seconds int)    { v.TimeLeft = seconds }
func (v *BoardView) SetCombo(combo int)     { v.Combo = combo }
func (v *BoardView) SetLives(lives int)     { v.Lives = lives }
func (v *BoardView) SetBest(best int)       { v.Best = best }
func (v *BoardView) SetSpeed(ms int)        { v.Speed = ms }
func (v *BoardView) SetMode(mode game.Mode) { v.Mode = mode }

func (v *BoardView) SetHole(index int, hole game.Hole) {
	if index >= 0 && index < len(v.Holes) {
		v.Holes[index] = hole
	}
}

func (v *BoardView) SetControls(startEnabled, resetEnabled bool) {
	v.StartEnabled, v.ResetEnabled = startEnabled, resetEnabled
}

func (v *BoardView) ShowFloat(f game.Float) { v.floats[f.ID] = f }

func (v *BoardView) HideFloat(id int) { delete(v.floats, id) }

// Floats returns the visible score labels, oldest first.
func (v *BoardView) Floats() []game.Float {
	ids := slices.Sorted(maps.Keys(v.floats))
	out := make([]game.Float, 0, len(ids))
	for _, id := range ids {
		out = append(out, v.floats[id])
	}
	return out
}

// Vibrate shakes the board for the total length of the pattern.
// Terminals cannot vibrate, so the pattern's pauses shake too.
func (v *BoardView) Vibrate(pattern []time.Duration) {
	var total time.Duration
	for _, d := range pattern {
		total += d
	}
	if until := v.now().Add(total); until.After(v.shakeUntil) {
		v.shakeUntil = until
	}
}

// Shaking reports whether a vibration is still playing.
func (v *BoardView) Shaking() bool {
	return v.now().Before(v.shakeUntil)
}
