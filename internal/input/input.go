// Package input turns raw terminal bytes into game key events.
package input

import "io"

// Key identifies a parsed key command.
type Key int

const (
	KeyNone Key = iota
	KeyQuit
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyEnter // Enter or Space
	KeyHole  // Digit 1-9, see Event.Hole
	KeyStart
	KeyReset
	KeyMode
	KeyFaster
	KeySlower
	KeySound
	KeyVibrate
)

// Event is one key press.
type Event struct {
	Key  Key
	Hole int // Zero-based hole for KeyHole
}

// Stream delivers input chunks via a channel.
type Stream struct {
	ch chan []byte
}

// StartStream spawns a goroutine that reads from r and sends chunks to the
// stream. The channel is closed when r returns an error.
func StartStream(r io.Reader) *Stream {
	s := &Stream{ch: make(chan []byte, 32)}
	go func() {
		defer close(s.ch)
		buf := make([]byte, 256)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				s.ch <- chunk
			}
			if err != nil {
				return
			}
		}
	}()
	return s
}

// C returns the chunk channel.
func (s *Stream) C() <-chan []byte { return s.ch }

// Parse converts a chunk of raw bytes into events.
// Handles CSI (ESC [) and SS3 (ESC O) arrow sequences.
func Parse(buf []byte) []Event {
	var events []Event
	for i := 0; i < len(buf); i++ {
		b := buf[i]

		if b == '\x1b' {
			if i+2 < len(buf) && (buf[i+1] == '[' || buf[i+1] == 'O') {
				if k := arrowKey(buf[i+2]); k != KeyNone {
					events = append(events, Event{Key: k})
				}
				i += 2
			}
			// A lone ESC is ignored
			continue
		}

		if k, hole := byteKey(b); k != KeyNone {
			events = append(events, Event{Key: k, Hole: hole})
		}
	}
	return events
}

func arrowKey(b byte) Key {
	switch b {
	case 'A':
		return KeyUp
	case 'B':
		return KeyDown
	case 'C':
		return KeyRight
	case 'D':
		return KeyLeft
	}
	return KeyNone
}

func byteKey(b byte) (Key, int) {
	switch b {
	case 'q', 'Q', 0x03: // Ctrl-C
		return KeyQuit, 0
	case 'k', 'K', 'w', 'W':
		return KeyUp, 0
	case 'j', 'J', 's', 'S':
		return KeyDown, 0
	case 'h', 'H', 'a', 'A':
		return KeyLeft, 0
	case 'l', 'L', 'd', 'D':
		return KeyRight, 0
	case ' ', '\r', '\n':
		return KeyEnter, 0
	case '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return KeyHole, int(b - '1')
	case 'n', 'N':
		return KeyStart, 0
	case 'r', 'R':
		return KeyReset, 0
	case 'm', 'M':
		return KeyMode, 0
	case '+', '=':
		return KeyFaster, 0
	case '-', '_':
		return KeySlower, 0
	case 'x', 'X':
		return KeySound, 0
	case 'v', 'V':
		return KeyVibrate, 0
	}
	return KeyNone, 0
}
