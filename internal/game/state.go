package game

import (
	"fmt"
	"strconv"
	"strings"
)

// Mode selects the round variant.
type Mode int

const (
	ModeTime     Mode = iota // Fixed countdown, misses are free
	ModeSurvival             // Lives and accelerating spawns
)

func (m Mode) String() string {
	switch m {
	case ModeTime:
		return "time"
	case ModeSurvival:
		return "survival"
	default:
		return "unknown"
	}
}

// ParseMode parses "time" or "survival".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "time", "":
		return ModeTime, nil
	case "survival":
		return ModeSurvival, nil
	}
	return ModeTime, fmt.Errorf("game: unknown mode %q", s)
}

// MoleType is the kind of target currently up.
type MoleType int

const (
	MoleNormal MoleType = iota
	MoleGold
	MoleBomb
)

func (t MoleType) String() string {
	switch t {
	case MoleGold:
		return "gold"
	case MoleBomb:
		return "bomb"
	default:
		return "normal"
	}
}

// GameState holds every mutable value of a round.
type GameState struct {
	Score        int
	TimeLeft     int // Seconds, or InfiniteTime
	Combo        int
	Lives        int
	IsPlaying    bool
	AwaitingHit  bool
	ActiveIndex  int // -1 when no target is up
	ActiveType   MoleType
	CurrentSpeed int // Spawn interval in ms
}

// NewGameState returns the idle display state.
func NewGameState(speed int) GameState {
	return GameState{
		TimeLeft:     GameDuration,
		Lives:        MaxLives,
		ActiveIndex:  -1,
		CurrentSpeed: speed,
	}
}

// Settings are the user-controlled options.
type Settings struct {
	Speed   int // Spawn interval in ms, clamped to [MinSpeed, MaxSpeed]
	Mode    Mode
	Sound   bool
	Vibrate bool
}

// DefaultSettings returns the settings a fresh session starts with.
func DefaultSettings() Settings {
	return Settings{
		Speed:   DefaultSpeed,
		Mode:    ModeTime,
		Sound:   true,
		Vibrate: true,
	}
}

// ClampSpeed bounds a spawn interval to the allowed range.
func ClampSpeed(ms int) int {
	if ms < MinSpeed {
		return MinSpeed
	}
	if ms > MaxSpeed {
		return MaxSpeed
	}
	return ms
}

// HoleFlag is a visual flag on a hole.
type HoleFlag uint8

const (
	FlagActive HoleFlag = 1 << iota
	FlagPop
	FlagHit
	FlagMiss
)

// Has reports whether all bits of f are set.
func (h HoleFlag) Has(f HoleFlag) bool { return h&f == f }

// Hole is the derived visual state of one grid position.
type Hole struct {
	Flags HoleFlag
	Type  MoleType
}

// ParseBest reads a persisted best score. Absent or unparsable values are 0.
func ParseBest(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
