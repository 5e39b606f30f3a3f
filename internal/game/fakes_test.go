package game

import (
	"errors"
	"time"
)

// manualScheduler fires timers deterministically as Advance moves its clock.
type manualScheduler struct {
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	due     time.Duration
	every   time.Duration
	fn      func()
	stopped bool
	seq     int
}

func (t *manualTimer) Stop() { t.stopped = true }

func (s *manualScheduler) Every(d time.Duration, fn func()) Timer { return s.add(d, d, fn) }

func (s *manualScheduler) After(d time.Duration, fn func()) Timer { return s.add(d, 0, fn) }

func (s *manualScheduler) add(d, every time.Duration, fn func()) *manualTimer {
	s.seq++
	t := &manualTimer{due: s.now + d, every: every, fn: fn, seq: s.seq}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves the clock by d, running every timer that falls due in order.
func (s *manualScheduler) Advance(d time.Duration) {
	end := s.now + d
	for {
		next := s.nextDue(end)
		if next == nil {
			break
		}
		s.now = next.due
		if next.every > 0 {
			next.due += next.every
		} else {
			next.stopped = true
		}
		next.fn()
	}
	s.now = end

	kept := s.timers[:0]
	for _, t := range s.timers {
		if !t.stopped {
			kept = append(kept, t)
		}
	}
	s.timers = kept
}

func (s *manualScheduler) nextDue(end time.Duration) *manualTimer {
	var best *manualTimer
	for _, t := range s.timers {
		if t.stopped || t.due > end {
			continue
		}
		if best == nil || t.due < best.due || (t.due == best.due && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

// repeating returns the intervals of all live repeating timers.
func (s *manualScheduler) repeating() []time.Duration {
	var out []time.Duration
	for _, t := range s.timers {
		if !t.stopped && t.every > 0 {
			out = append(out, t.every)
		}
	}
	return out
}

// scriptedRand replays fixed rolls, then falls back to 0.5.
type scriptedRand struct {
	rolls []float64
}

func (r *scriptedRand) Float64() float64 {
	if len(r.rolls) == 0 {
		return 0.5
	}
	v := r.rolls[0]
	r.rolls = r.rolls[1:]
	return v
}

// spawnAt queues the two rolls that place a target of kind at hole index.
func (r *scriptedRand) spawnAt(holes, index int, kind MoleType) {
	pos := (float64(index) + 0.5) / float64(holes)
	var roll float64
	switch kind {
	case MoleBomb:
		roll = 0.05
	case MoleGold:
		roll = 0.2
	default:
		roll = 0.6
	}
	r.rolls = append(r.rolls, pos, roll)
}

type recordingView struct {
	score, time, combo, lives, best, speed int
	mode                                   Mode
	holes                                  map[int]Hole
	start, reset                           bool
	floats                                 map[int]Float
}

func newRecordingView() *recordingView {
	return &recordingView{holes: map[int]Hole{}, floats: map[int]Float{}}
}

func (v *recordingView) SetScore(n int)   { v.score = n }
func (v *recordingView) SetTime(n int)    { v.time = n }
func (v *recordingView) SetCombo(n int)   { v.combo = n }
func (v *recordingView) SetLives(n int)   { v.lives = n }
func (v *recordingView) SetBest(n int)    { v.best = n }
func (v *recordingView) SetSpeed(ms int)  { v.speed = ms }
func (v *recordingView) SetMode(m Mode)   { v.mode = m }
func (v *recordingView) SetHole(i int, h Hole) {
	v.holes[i] = h
}
func (v *recordingView) SetControls(start, reset bool) {
	v.start, v.reset = start, reset
}
func (v *recordingView) ShowFloat(f Float) { v.floats[f.ID] = f }
func (v *recordingView) HideFloat(id int)  { delete(v.floats, id) }

func (v *recordingView) activeHoles() []int {
	var out []int
	for i, h := range v.holes {
		if h.Flags.Has(FlagActive) {
			out = append(out, i)
		}
	}
	return out
}

type mapStore struct {
	data   map[string]string
	setErr error
}

func newMapStore() *mapStore { return &mapStore{data: map[string]string{}} }

func (s *mapStore) Get(key string) (string, error) { return s.data[key], nil }

func (s *mapStore) Set(key, value string) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.data[key] = value
	return nil
}

var errDiskFull = errors.New("disk full")

type recordingFeedback struct {
	tones    []Tone
	patterns [][]time.Duration
}

func (f *recordingFeedback) PlayTone(freq float64, d time.Duration) {
	f.tones = append(f.tones, Tone{freq, d})
}

func (f *recordingFeedback) Vibrate(p []time.Duration) {
	f.patterns = append(f.patterns, p)
}
