// Package speaker plays feedback tones on the local sound device. It links
// the platform audio backend, so only the local binary imports it.
package speaker

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	beepspeaker "github.com/gopxl/beep/speaker"
	"github.com/tomz197/whackamole/internal/audio"
)

// Speaker plays tones on the local sound device.
type Speaker struct {
	mu     sync.Mutex
	closed bool
}

// New initializes the sound device.
func New() (*Speaker, error) {
	if err := beepspeaker.Init(audio.SampleRate, audio.SampleRate.N(50*time.Millisecond)); err != nil {
		return nil, err
	}
	return &Speaker{}, nil
}

// PlayTone queues a tone without blocking.
func (s *Speaker) PlayTone(freq float64, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	beepspeaker.Play(audio.NewTone(freq, duration, audio.SampleRate))
}

// Close releases the sound device.
func (s *Speaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	beepspeaker.Clear()
	beepspeaker.Close()
}

// OpenLocal returns a speaker, or audio.Silent when no sound device is usable.
func OpenLocal(logger *log.Logger) (audio.Player, func()) {
	s, err := New()
	if err != nil {
		logger.Warn("audio unavailable, running silent", "err", err)
		return audio.Silent{}, func() {}
	}
	return s, s.Close
}
