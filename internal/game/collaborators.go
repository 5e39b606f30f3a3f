package game

import "time"

// View receives display updates. The controller never reads it back.
type View interface {
	SetScore(score int)
	SetTime(seconds int) // InfiniteTime renders as ∞
	SetCombo(combo int)
	SetLives(lives int)
	SetBest(best int)
	SetSpeed(ms int)
	SetMode(mode Mode)
	SetHole(index int, hole Hole)
	SetControls(startEnabled, resetEnabled bool)
	ShowFloat(f Float)
	HideFloat(id int)
}

// Float is a short-lived score label over a hole.
type Float struct {
	ID   int
	Hole int
	Text string
	Type MoleType
}

// Store persists string values across restarts.
// Get returns an empty string for an absent key.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// Audio plays feedback tones.
type Audio interface {
	PlayTone(freq float64, duration time.Duration)
}

// Haptics plays a vibration pattern (on, off, on, ...).
// Implementations without the capability do nothing.
type Haptics interface {
	Vibrate(pattern []time.Duration)
}

// Timer is a scheduled task handle. Stop is idempotent.
type Timer interface {
	Stop()
}

// Scheduler runs callbacks on the controller's owning goroutine.
type Scheduler interface {
	Every(d time.Duration, fn func()) Timer
	After(d time.Duration, fn func()) Timer
}

// Rand is the randomness source for spawns.
type Rand interface {
	Float64() float64
}
