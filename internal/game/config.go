package game

import "time"

// Game configuration constants.
// All tunable game parameters are centralized here for easy adjustment.

// Round
const (
	GameDuration = 30 // Seconds in a time-mode round
	MaxLives     = 3
	InfiniteTime = -1 // timeLeft sentinel for survival mode
	DefaultHoles = 9  // 3x3 grid
)

// Spawning
const (
	BombChance = 0.10
	GoldChance = 0.15
)

// Scoring
const (
	ComboStep  = 5 // Hits per multiplier step
	BaseNormal = 1
	BaseGold   = 3
	BaseBomb   = -2
)

// Speed (spawn interval in milliseconds)
const (
	MinSpeed     = 350
	MaxSpeed     = 1500
	DefaultSpeed = 800
	SpeedStep    = 50 // Manual speed adjustment step
	SurvivalStep = 20 // Survival acceleration per hit
)

// Transient visuals
const (
	PopDuration   = 200 * time.Millisecond
	HitDuration   = 120 * time.Millisecond
	MissDuration  = 200 * time.Millisecond
	FloatDuration = 700 * time.Millisecond
)

// BestScoreKey is the store key holding the best score.
const BestScoreKey = "whack-best"

// Tone is a single feedback beep.
type Tone struct {
	Freq     float64 // Hz
	Duration time.Duration
}

// Feedback per outcome.
var (
	ToneNormal = Tone{520, 80 * time.Millisecond}
	ToneGold   = Tone{660, 100 * time.Millisecond}
	ToneBomb   = Tone{160, 140 * time.Millisecond}
	ToneMiss   = Tone{220, 120 * time.Millisecond}

	VibrateNormal = []time.Duration{20 * time.Millisecond}
	VibrateGold   = []time.Duration{40 * time.Millisecond}
	VibrateBomb   = []time.Duration{120 * time.Millisecond, 40 * time.Millisecond, 120 * time.Millisecond}
	VibrateMiss   = []time.Duration{80 * time.Millisecond, 50 * time.Millisecond, 80 * time.Millisecond}
)
