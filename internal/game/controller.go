// Package game implements the whack-a-mole round: spawning, scoring and
// the time and survival variants.
package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
)

// ErrNoScheduler is returned by NewController when Options.Scheduler is nil.
var ErrNoScheduler = errors.New("game: scheduler is required")

// Options configures a Controller.
type Options struct {
	Holes     int // Defaults to DefaultHoles
	Settings  Settings
	View      View
	Store     Store
	Audio     Audio
	Haptics   Haptics
	Scheduler Scheduler
	Rand      Rand
	Logger    *log.Logger
}

// Controller owns one game and all of its timers.
//
// It is not safe for concurrent use: every method, scheduler callbacks
// included, must run on the same goroutine.
type Controller struct {
	state    GameState
	settings Settings
	holes    []Hole
	best     int

	startEnabled bool
	resetEnabled bool

	view    View
	store   Store
	audio   Audio
	haptics Haptics
	sched   Scheduler
	rng     Rand
	logger  *log.Logger

	spawnTimer     Timer
	countdownTimer Timer
	flashes        map[flashKey]Timer
	nextFloat      int
}

type flashKey struct {
	hole int
	flag HoleFlag
}

// NewController creates an idle controller and pushes the initial display
// state to the view.
func NewController(opts Options) (*Controller, error) {
	if opts.Scheduler == nil {
		return nil, ErrNoScheduler
	}
	holes := opts.Holes
	if holes <= 0 {
		holes = DefaultHoles
	}
	settings := opts.Settings
	if settings.Speed == 0 {
		settings.Speed = DefaultSpeed
	}
	settings.Speed = ClampSpeed(settings.Speed)

	c := &Controller{
		state:    NewGameState(settings.Speed),
		settings: settings,
		holes:    make([]Hole, holes),
		view:     opts.View,
		store:    opts.Store,
		audio:    opts.Audio,
		haptics:  opts.Haptics,
		sched:    opts.Scheduler,
		rng:      opts.Rand,
		logger:   opts.Logger,
		flashes:  make(map[flashKey]Timer),
	}
	if c.view == nil {
		c.view = nopView{}
	}
	if c.rng == nil {
		c.rng = globalRand{}
	}
	if c.logger == nil {
		c.logger = log.Default()
	}

	c.best = c.loadBest()
	c.view.SetBest(c.best)
	c.view.SetMode(settings.Mode)
	c.view.SetSpeed(settings.Speed)
	c.setScore(0)
	c.setCombo(0)
	c.setLives(MaxLives)
	c.setTime(GameDuration)
	c.setControls(true, false)
	for i := range c.holes {
		c.paint(i)
	}
	return c, nil
}

// State returns a copy of the current game state.
func (c *Controller) State() GameState { return c.state }

// Settings returns the current user settings.
func (c *Controller) Settings() Settings { return c.settings }

// Best returns the best score known to this controller.
func (c *Controller) Best() int { return c.best }

// HoleCount returns the number of holes in the grid.
func (c *Controller) HoleCount() int { return len(c.holes) }

// Hole returns the visual state of hole i.
func (c *Controller) Hole(i int) Hole { return c.holes[i] }

// Controls reports which of the start and reset controls are enabled.
func (c *Controller) Controls() (start, reset bool) {
	return c.startEnabled, c.resetEnabled
}

// Start begins a round. It is a no-op while a round is running.
func (c *Controller) Start() {
	if c.state.IsPlaying {
		return
	}
	c.state.IsPlaying = true
	c.setControls(false, false)
	c.setScore(0)
	c.setCombo(0)
	c.setLives(MaxLives)
	c.setTime(GameDuration)
	c.state.CurrentSpeed = c.settings.Speed
	c.view.SetSpeed(c.state.CurrentSpeed)
	c.logger.Debug("round started", "mode", c.settings.Mode, "speed", c.state.CurrentSpeed)

	c.spawn()
	if !c.state.IsPlaying {
		return
	}
	c.restartSpawnTimer()

	stopTimer(&c.countdownTimer)
	if c.settings.Mode == ModeTime {
		c.countdownTimer = c.sched.Every(time.Second, c.tick)
	} else {
		c.setTime(InfiniteTime)
	}
}

// Reset stops the round and restores the initial display. The best score is kept.
func (c *Controller) Reset() {
	c.stopTimers()
	c.stopFlashes()
	c.state.IsPlaying = false
	c.setControls(true, false)
	c.setScore(0)
	c.setCombo(0)
	c.setLives(MaxLives)
	c.setTime(GameDuration)
	c.clearMole()
}

// Hit whacks hole index. Hits on anything but the active hole are ignored.
func (c *Controller) Hit(index int) {
	if !c.state.IsPlaying || index < 0 || index != c.state.ActiveIndex {
		return
	}
	c.state.AwaitingHit = false
	c.flash(index, FlagHit, HitDuration)

	kind := c.state.ActiveType
	var (
		base    int
		tone    Tone
		pattern []time.Duration
	)
	switch kind {
	case MoleBomb:
		c.setCombo(0)
		base, tone, pattern = BaseBomb, ToneBomb, VibrateBomb
	case MoleGold:
		c.setCombo(c.state.Combo + 1)
		base, tone, pattern = BaseGold, ToneGold, VibrateGold
	default:
		c.setCombo(c.state.Combo + 1)
		base, tone, pattern = BaseNormal, ToneNormal, VibrateNormal
	}
	c.setScore(c.state.Score + ScoreDelta(base, c.state.Combo))
	c.playTone(tone)
	c.vibrate(pattern)
	c.showFloat(index, fmt.Sprintf("%+d", base), kind)

	if c.settings.Mode == ModeSurvival {
		c.state.CurrentSpeed = max(MinSpeed, c.state.CurrentSpeed-SurvivalStep)
		// The speed control follows the acceleration.
		c.settings.Speed = c.state.CurrentSpeed
		c.view.SetSpeed(c.state.CurrentSpeed)
		c.restartSpawnTimer()
	}

	c.spawn()
}

// SetMode switches the variant and forces a reset.
func (c *Controller) SetMode(mode Mode) {
	c.settings.Mode = mode
	c.view.SetMode(mode)
	c.Reset()
}

// SetSpeed changes the spawn interval. A running round picks it up at once.
func (c *Controller) SetSpeed(ms int) {
	ms = ClampSpeed(ms)
	c.settings.Speed = ms
	c.state.CurrentSpeed = ms
	c.view.SetSpeed(ms)
	if c.state.IsPlaying {
		c.restartSpawnTimer()
	}
}

// SetSound toggles feedback tones.
func (c *Controller) SetSound(on bool) { c.settings.Sound = on }

// SetVibrate toggles vibration feedback.
func (c *Controller) SetVibrate(on bool) { c.settings.Vibrate = on }

// SetBest updates the displayed best when another source raised it.
func (c *Controller) SetBest(best int) {
	if best <= c.best {
		return
	}
	c.best = best
	c.view.SetBest(best)
}

// spawn replaces the current target. An unanswered target counts as a miss.
func (c *Controller) spawn() {
	if c.state.AwaitingHit {
		c.markMiss()
		if !c.state.IsPlaying {
			return
		}
	}
	c.clearMole()

	n := len(c.holes)
	index := int(c.rng.Float64() * float64(n))
	if index >= n {
		index = n - 1
	}
	c.state.ActiveIndex = index
	c.state.ActiveType = c.pickType()
	c.state.AwaitingHit = true
	c.holes[index].Flags |= FlagActive
	c.holes[index].Type = c.state.ActiveType
	c.flash(index, FlagPop, PopDuration)
}

func (c *Controller) pickType() MoleType {
	roll := c.rng.Float64()
	if roll < BombChance {
		return MoleBomb
	}
	if roll < BombChance+GoldChance {
		return MoleGold
	}
	return MoleNormal
}

// markMiss penalizes an unanswered target. Time mode ignores misses.
func (c *Controller) markMiss() {
	if c.settings.Mode != ModeSurvival {
		return
	}
	c.setCombo(0)
	c.setLives(max(0, c.state.Lives-1))
	c.playTone(ToneMiss)
	c.vibrate(VibrateMiss)
	if c.state.ActiveIndex >= 0 {
		c.flash(c.state.ActiveIndex, FlagMiss, MissDuration)
	}
	// Ends with one life still shown.
	if c.state.Lives <= 1 {
		c.endGame()
	}
}

func (c *Controller) endGame() {
	c.stopTimers()
	c.state.IsPlaying = false
	c.setControls(true, true)
	c.clearMole()

	best := max(c.best, c.loadBest())
	if c.state.Score > best {
		best = c.state.Score
		if c.store != nil {
			if err := c.store.Set(BestScoreKey, strconv.Itoa(best)); err != nil {
				c.logger.Warn("failed to save best score", "score", best, "err", err)
			}
		}
	}
	if best != c.best {
		c.best = best
		c.view.SetBest(best)
	}
	c.logger.Debug("round over", "mode", c.settings.Mode, "score", c.state.Score, "best", c.best)
}

func (c *Controller) tick() {
	if !c.state.IsPlaying {
		return
	}
	c.setTime(c.state.TimeLeft - 1)
	if c.state.TimeLeft <= 0 {
		c.endGame()
	}
}

func (c *Controller) spawnTick() {
	if !c.state.IsPlaying {
		return
	}
	c.spawn()
}

func (c *Controller) restartSpawnTimer() {
	stopTimer(&c.spawnTimer)
	c.spawnTimer = c.sched.Every(time.Duration(c.state.CurrentSpeed)*time.Millisecond, c.spawnTick)
}

func (c *Controller) stopTimers() {
	stopTimer(&c.spawnTimer)
	stopTimer(&c.countdownTimer)
}

// stopFlashes cancels every pending visual timer and clears its flag.
func (c *Controller) stopFlashes() {
	for key, t := range c.flashes {
		t.Stop()
		delete(c.flashes, key)
		c.holes[key.hole].Flags &^= key.flag
		c.paint(key.hole)
	}
}

func stopTimer(t *Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}

func (c *Controller) clearMole() {
	if i := c.state.ActiveIndex; i >= 0 {
		c.holes[i].Flags &^= FlagActive | FlagPop
		c.holes[i].Type = MoleNormal
		if t, ok := c.flashes[flashKey{i, FlagPop}]; ok {
			t.Stop()
			delete(c.flashes, flashKey{i, FlagPop})
		}
		c.paint(i)
	}
	c.state.ActiveIndex = -1
	c.state.ActiveType = MoleNormal
	c.state.AwaitingHit = false
}

// flash sets a transient flag on a hole and clears it after d.
func (c *Controller) flash(index int, flag HoleFlag, d time.Duration) {
	key := flashKey{index, flag}
	if t, ok := c.flashes[key]; ok {
		t.Stop()
	}
	c.holes[index].Flags |= flag
	c.paint(index)
	c.flashes[key] = c.sched.After(d, func() {
		delete(c.flashes, key)
		c.holes[index].Flags &^= flag
		c.paint(index)
	})
}

func (c *Controller) showFloat(index int, text string, kind MoleType) {
	c.nextFloat++
	id := c.nextFloat
	c.view.ShowFloat(Float{ID: id, Hole: index, Text: text, Type: kind})
	c.sched.After(FloatDuration, func() { c.view.HideFloat(id) })
}

func (c *Controller) playTone(t Tone) {
	if c.settings.Sound && c.audio != nil {
		c.audio.PlayTone(t.Freq, t.Duration)
	}
}

func (c *Controller) vibrate(pattern []time.Duration) {
	if c.settings.Vibrate && c.haptics != nil {
		c.haptics.Vibrate(pattern)
	}
}

func (c *Controller) loadBest() int {
	if c.store == nil {
		return c.best
	}
	v, err := c.store.Get(BestScoreKey)
	if err != nil {
		c.logger.Warn("failed to load best score", "err", err)
		return 0
	}
	return ParseBest(v)
}

func (c *Controller) paint(i int) { c.view.SetHole(i, c.holes[i]) }

func (c *Controller) setScore(v int) {
	c.state.Score = v
	c.view.SetScore(v)
}

func (c *Controller) setTime(v int) {
	c.state.TimeLeft = v
	c.view.SetTime(v)
}

func (c *Controller) setCombo(v int) {
	c.state.Combo = v
	c.view.SetCombo(v)
}

func (c *Controller) setLives(v int) {
	c.state.Lives = v
	c.view.SetLives(v)
}

func (c *Controller) setControls(start, reset bool) {
	c.startEnabled, c.resetEnabled = start, reset
	c.view.SetControls(start, reset)
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

type nopView struct{}

func (nopView) SetScore(int)           {}
func (nopView) SetTime(int)            {}
func (nopView) SetCombo(int)           {}
func (nopView) SetLives(int)           {}
func (nopView) SetBest(int)            {}
func (nopView) SetSpeed(int)           {}
func (nopView) SetMode(Mode)           {}
func (nopView) SetHole(int, Hole)      {}
func (nopView) SetControls(bool, bool) {}
func (nopView) ShowFloat(Float)        {}
func (nopView) HideFloat(int)          {}
