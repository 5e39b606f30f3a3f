package audio

import (
	"io"
	"time"
)

// Bell rings the terminal bell. Remote terminals have no access to the
// player's speakers, so every tone collapses to BEL.
type Bell struct {
	w io.Writer
}

// NewBell creates a bell that writes to w.
func NewBell(w io.Writer) *Bell {
	return &Bell{w: w}
}

// PlayTone rings the bell once.
func (b *Bell) PlayTone(float64, time.Duration) {
	_, _ = io.WriteString(b.w, "\a")
}

// Silent discards every tone.
type Silent struct{}

// PlayTone does nothing.
func (Silent) PlayTone(float64, time.Duration) {}

// Player is the tone sink shared by all implementations.
type Player interface {
	PlayTone(freq float64, duration time.Duration)
}
