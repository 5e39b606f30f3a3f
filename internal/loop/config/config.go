// Package config centralizes the tunable session parameters.
package config

import "time"

// Render area. Larger terminals get the board centered inside a border-free margin.
const (
	MaxTermWidth  = 100
	MaxTermHeight = 32
)

// Board layout, in terminal cells.
const (
	CellWidth  = 13
	CellHeight = 5
	CellGap    = 1
)

// Player
const (
	MaxUsernameLength = 16 // Maximum display length for player usernames
)

// Shutdown
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
	ShutdownWait           = 15 * time.Second
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Client rendering
const (
	ClientTargetFPS       = 30
	ClientTargetFrameTime = time.Second / ClientTargetFPS
	ShakeStep             = 2 // Frames per shake direction change
)
