package game

import (
	"testing"
	"time"
)

type harness struct {
	c     *Controller
	sched *manualScheduler
	rng   *scriptedRand
	view  *recordingView
	store *mapStore
	fb    *recordingFeedback
}

func newHarness(t *testing.T, settings Settings) *harness {
	t.Helper()
	h := &harness{
		sched: &manualScheduler{},
		rng:   &scriptedRand{},
		view:  newRecordingView(),
		store: newMapStore(),
		fb:    &recordingFeedback{},
	}
	c, err := NewController(Options{
		Settings:  settings,
		View:      h.view,
		Store:     h.store,
		Audio:     h.fb,
		Haptics:   h.fb,
		Scheduler: h.sched,
		Rand:      h.rng,
	})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	h.c = c
	return h
}

func (h *harness) hitActive(t *testing.T) {
	t.Helper()
	idx := h.c.State().ActiveIndex
	if idx < 0 {
		t.Fatalf("no active target to hit")
	}
	h.c.Hit(idx)
}

func TestNewControllerRequiresScheduler(t *testing.T) {
	if _, err := NewController(Options{}); err != ErrNoScheduler {
		t.Fatalf("expected ErrNoScheduler, got %v", err)
	}
}

func TestNewControllerInitialDisplay(t *testing.T) {
	h := newHarness(t, Settings{})
	st := h.c.State()
	if st.IsPlaying || st.AwaitingHit || st.ActiveIndex != -1 {
		t.Fatalf("expected idle state, got %+v", st)
	}
	if h.view.lives != MaxLives || h.view.time != GameDuration || h.view.speed != DefaultSpeed {
		t.Errorf("unexpected initial display: %+v", h.view)
	}
	if !h.view.start || h.view.reset {
		t.Errorf("expected start enabled and reset disabled, got start=%v reset=%v", h.view.start, h.view.reset)
	}
	if len(h.view.holes) != DefaultHoles {
		t.Errorf("expected %d holes painted, got %d", DefaultHoles, len(h.view.holes))
	}
}

func TestStartSpawnsImmediatelyAndIsNoOpWhilePlaying(t *testing.T) {
	h := newHarness(t, DefaultSettings())
	h.rng.spawnAt(DefaultHoles, 4, MoleNormal)
	h.c.Start()

	st := h.c.State()
	if !st.IsPlaying || !st.AwaitingHit || st.ActiveIndex != 4 {
		t.Fatalf("expected target at hole 4, got %+v", st)
	}
	if h.view.start || h.view.reset {
		t.Errorf("controls should be disabled while playing")
	}

	h.hitActive(t)
	h.c.Start()
	if got := h.c.State().Score; got != 1 {
		t.Fatalf("second Start must not reset the round, score=%d", got)
	}
	if got := len(h.sched.repeating()); got != 2 {
		t.Fatalf("expected spawn and countdown timers, got %d", got)
	}
}

func TestComboMultiplier(t *testing.T) {
	h := newHarness(t, DefaultSettings())
	h.c.Start()

	want := []int{1, 2, 3, 4, 6, 8, 10, 12, 14, 16}
	for i, w := range want {
		h.hitActive(t)
		if got := h.c.State().Score; got != w {
			t.Fatalf("hit %d: score = %d, want %d", i+1, got, w)
		}
	}
	if h.c.State().Combo != 10 {
		t.Errorf("combo = %d, want 10", h.c.State().Combo)
	}
}

func TestBombResetsComboAndScoreHasNoFloor(t *testing.T) {
	h := newHarness(t, DefaultSettings())
	h.rng.spawnAt(DefaultHoles, 0, MoleBomb)
	h.rng.spawnAt(DefaultHoles, 1, MoleBomb)
	h.c.Start()

	h.hitActive(t)
	if st := h.c.State(); st.Score != -2 || st.Combo != 0 {
		t.Fatalf("after bomb: %+v", st)
	}
	h.hitActive(t)
	if st := h.c.State(); st.Score != -4 {
		t.Fatalf("score should keep falling, got %d", st.Score)
	}
	if len(h.fb.tones) != 2 || h.fb.tones[0] != ToneBomb {
		t.Errorf("expected two bomb tones, got %v", h.fb.tones)
	}
}

func TestGoldHit(t *testing.T) {
	h := newHarness(t, DefaultSettings())
	h.rng.spawnAt(DefaultHoles, 8, MoleGold)
	h.c.Start()

	if st := h.c.State(); st.ActiveType != MoleGold || st.ActiveIndex != 8 {
		t.Fatalf("expected gold at 8, got %+v", st)
	}
	h.c.Hit(8)
	if st := h.c.State(); st.Score != 3 || st.Combo != 1 {
		t.Fatalf("after gold: %+v", st)
	}
	var texts []string
	for _, f := range h.view.floats {
		texts = append(texts, f.Text)
	}
	if len(texts) != 1 || texts[0] != "+3" {
		t.Errorf("expected +3 float, got %v", texts)
	}
	h.sched.Advance(FloatDuration)
	if len(h.view.floats) != 0 {
		t.Errorf("float should disappear after %v", FloatDuration)
	}
}

func TestHitIgnoredWhenIdleOrWrongHole(t *testing.T) {
	h := newHarness(t, DefaultSettings())
	h.c.Hit(0)
	if h.c.State().Score != 0 {
		t.Fatalf("hit while idle must be ignored")
	}

	h.rng.spawnAt(DefaultHoles, 2, MoleNormal)
	h.c.Start()
	h.c.Hit(3)
	h.c.Hit(-1)
	st := h.c.State()
	if st.Score != 0 || !st.AwaitingHit || st.ActiveIndex != 2 {
		t.Fatalf("stray hits changed state: %+v", st)
	}
}

func TestSurvivalSpeedFloor(t *testing.T) {
	h := newHarness(t, Settings{Speed: 1000, Mode: ModeSurvival})
	h.c.Start()
	if h.c.State().TimeLeft != InfiniteTime {
		t.Fatalf("survival should have infinite time")
	}

	for i := 1; i <= 33; i++ {
		h.hitActive(t)
		want := max(MinSpeed, 1000-20*i)
		if got := h.c.State().CurrentSpeed; got != want {
			t.Fatalf("hit %d: speed = %d, want %d", i, got, want)
		}
	}
	if h.view.speed != MinSpeed {
		t.Errorf("speed display = %d, want %d", h.view.speed, MinSpeed)
	}
	rep := h.sched.repeating()
	if len(rep) != 1 || rep[0] != MinSpeed*time.Millisecond {
		t.Errorf("expected one spawn timer at %v, got %v", MinSpeed*time.Millisecond, rep)
	}
}

func TestTimeModeMissesAreFree(t *testing.T) {
	h := newHarness(t, DefaultSettings())
	h.c.Start()
	h.hitActive(t)
	h.hitActive(t)

	h.sched.Advance(5 * DefaultSpeed * time.Millisecond)
	st := h.c.State()
	if st.Lives != MaxLives || st.Combo != 2 {
		t.Fatalf("time mode misses changed lives/combo: %+v", st)
	}
	if !st.IsPlaying || !st.AwaitingHit {
		t.Fatalf("round should continue with a fresh target: %+v", st)
	}
	if len(h.fb.tones) != 2 {
		t.Errorf("misses must be silent in time mode, got %v", h.fb.tones)
	}
}

func TestSurvivalMissEndsAtOneLife(t *testing.T) {
	h := newHarness(t, Settings{Speed: DefaultSpeed, Mode: ModeSurvival, Sound: true})
	h.c.Start()
	h.hitActive(t)

	speed := time.Duration(h.c.State().CurrentSpeed) * time.Millisecond
	h.sched.Advance(speed)
	st := h.c.State()
	if st.Lives != 2 || st.Combo != 0 || !st.IsPlaying {
		t.Fatalf("after first miss: %+v", st)
	}
	if h.fb.tones[len(h.fb.tones)-1] != ToneMiss {
		t.Errorf("expected miss tone, got %v", h.fb.tones)
	}

	h.sched.Advance(speed)
	st = h.c.State()
	if st.IsPlaying {
		t.Fatalf("second miss should end the round: %+v", st)
	}
	if st.Lives != 1 {
		t.Errorf("round ends with lives = 1, got %d", st.Lives)
	}
	if st.ActiveIndex != -1 || st.AwaitingHit {
		t.Errorf("target should be cleared: %+v", st)
	}
	if len(h.view.activeHoles()) != 0 {
		t.Errorf("no hole may stay active after the round")
	}
	if len(h.sched.repeating()) != 0 {
		t.Errorf("timers still running after end: %v", h.sched.repeating())
	}
	if !h.view.start || !h.view.reset {
		t.Errorf("start and reset should be enabled after the round")
	}
}

func TestMissFlashesStaleHole(t *testing.T) {
	h := newHarness(t, Settings{Speed: DefaultSpeed, Mode: ModeSurvival})
	h.rng.spawnAt(DefaultHoles, 1, MoleNormal)
	h.rng.spawnAt(DefaultHoles, 5, MoleNormal)
	h.c.Start()

	h.sched.Advance(DefaultSpeed * time.Millisecond)
	if !h.view.holes[1].Flags.Has(FlagMiss) {
		t.Fatalf("stale hole should show a miss, got %+v", h.view.holes[1])
	}
	if h.view.holes[1].Flags.Has(FlagActive) {
		t.Fatalf("stale hole must not stay active")
	}
	h.sched.Advance(MissDuration)
	if h.view.holes[1].Flags.Has(FlagMiss) {
		t.Errorf("miss flag should clear after %v", MissDuration)
	}
}

func TestCountdownEndsRoundAndBestSurvivesReset(t *testing.T) {
	h := newHarness(t, DefaultSettings())
	h.c.Start()
	for range 5 {
		h.hitActive(t)
	}
	if h.c.State().Score != 6 {
		// Fifth hit scores 2 under the combo multiplier.
		t.Fatalf("score = %d, want 6", h.c.State().Score)
	}

	h.sched.Advance(GameDuration * time.Second)
	st := h.c.State()
	if st.IsPlaying || st.TimeLeft != 0 {
		t.Fatalf("countdown should end the round: %+v", st)
	}
	if h.store.data[BestScoreKey] != "6" || h.view.best != 6 || h.c.Best() != 6 {
		t.Fatalf("best not persisted: store=%q view=%d", h.store.data[BestScoreKey], h.view.best)
	}

	h.c.Reset()
	st = h.c.State()
	if st.Score != 0 || st.Lives != MaxLives || st.TimeLeft != GameDuration || st.Combo != 0 {
		t.Fatalf("reset display: %+v", st)
	}
	if h.store.data[BestScoreKey] != "6" || h.view.best != 6 {
		t.Fatalf("reset must keep best")
	}
	if !h.view.start || h.view.reset {
		t.Errorf("reset should enable start and disable reset")
	}
}

func TestLowerScoreKeepsBest(t *testing.T) {
	h := newHarness(t, DefaultSettings())
	h.store.data[BestScoreKey] = "40"
	h.c.Reset()
	h.c.Start()
	h.hitActive(t)
	h.sched.Advance(GameDuration * time.Second)

	if h.store.data[BestScoreKey] != "40" {
		t.Fatalf("best overwritten with a lower score: %q", h.store.data[BestScoreKey])
	}
}

func TestStoreFailureDoesNotBreakRound(t *testing.T) {
	h := newHarness(t, DefaultSettings())
	h.store.setErr = errDiskFull
	h.c.Start()
	h.hitActive(t)
	h.sched.Advance(GameDuration * time.Second)

	if h.c.State().IsPlaying {
		t.Fatalf("round should still end")
	}
	if h.c.Best() != 1 {
		t.Errorf("best display should still follow, got %d", h.c.Best())
	}
}

func TestUnparsableBestIsZero(t *testing.T) {
	store := newMapStore()
	store.data[BestScoreKey] = "not-a-number"
	c, err := NewController(Options{Scheduler: &manualScheduler{}, Store: store})
	if err != nil {
		t.Fatal(err)
	}
	if c.Best() != 0 {
		t.Fatalf("best = %d, want 0", c.Best())
	}
}

func TestResetCancelsTimers(t *testing.T) {
	h := newHarness(t, DefaultSettings())
	h.c.Start()
	h.hitActive(t)
	h.c.Reset()

	if len(h.sched.repeating()) != 0 {
		t.Fatalf("repeating timers left after reset: %v", h.sched.repeating())
	}
	h.sched.Advance(10 * time.Second)
	st := h.c.State()
	if st.IsPlaying || st.ActiveIndex != -1 || st.Score != 0 || st.TimeLeft != GameDuration {
		t.Fatalf("state changed after reset: %+v", st)
	}
}

func TestSetModeForcesReset(t *testing.T) {
	h := newHarness(t, DefaultSettings())
	h.c.Start()
	h.hitActive(t)

	h.c.SetMode(ModeSurvival)
	st := h.c.State()
	if st.IsPlaying || st.Score != 0 {
		t.Fatalf("mode change should reset: %+v", st)
	}
	if h.c.Settings().Mode != ModeSurvival || h.view.mode != ModeSurvival {
		t.Errorf("mode not applied")
	}
}

func TestSetSpeedClampsAndRestartsSpawnTimer(t *testing.T) {
	h := newHarness(t, DefaultSettings())
	h.c.SetSpeed(10)
	if h.c.Settings().Speed != MinSpeed {
		t.Fatalf("speed not clamped: %d", h.c.Settings().Speed)
	}
	h.c.SetSpeed(MaxSpeed + 500)
	if h.c.Settings().Speed != MaxSpeed {
		t.Fatalf("speed not clamped: %d", h.c.Settings().Speed)
	}

	h.c.Start()
	h.c.SetSpeed(600)
	var spawnTimers int
	for _, d := range h.sched.repeating() {
		if d == 600*time.Millisecond {
			spawnTimers++
		}
		if d == MaxSpeed*time.Millisecond {
			t.Errorf("old spawn timer still running")
		}
	}
	if spawnTimers != 1 {
		t.Fatalf("expected one spawn timer at 600ms, got %v", h.sched.repeating())
	}
}

func TestFeedbackGating(t *testing.T) {
	h := newHarness(t, Settings{Speed: DefaultSpeed})
	h.c.Start()
	h.hitActive(t)
	if len(h.fb.tones) != 0 || len(h.fb.patterns) != 0 {
		t.Fatalf("feedback played while disabled")
	}

	h.c.SetSound(true)
	h.c.SetVibrate(true)
	h.hitActive(t)
	if len(h.fb.tones) != 1 || h.fb.tones[0] != ToneNormal {
		t.Errorf("expected normal tone, got %v", h.fb.tones)
	}
	if len(h.fb.patterns) != 1 || len(h.fb.patterns[0]) != len(VibrateNormal) {
		t.Errorf("expected normal vibration, got %v", h.fb.patterns)
	}
}

func TestSpawnKeepsSingleActiveHoleInRange(t *testing.T) {
	h := newHarness(t, DefaultSettings())
	rolls := []float64{0, 0.999999, 0.3, 0.11, 0.5, 0.01, 0.77, 0.24, 0.1, 0.9}
	for range 5 {
		h.rng.rolls = append(h.rng.rolls, rolls...)
	}
	h.c.Start()

	for i := 0; i < 20; i++ {
		if i%2 == 0 {
			h.hitActive(t)
		} else {
			h.sched.Advance(DefaultSpeed * time.Millisecond)
		}
		st := h.c.State()
		if st.ActiveIndex < 0 || st.ActiveIndex >= DefaultHoles {
			t.Fatalf("step %d: active index out of range: %d", i, st.ActiveIndex)
		}
		if active := h.view.activeHoles(); len(active) != 1 || active[0] != st.ActiveIndex {
			t.Fatalf("step %d: active holes %v, want [%d]", i, active, st.ActiveIndex)
		}
	}
}

func TestPopClearsAfterDuration(t *testing.T) {
	h := newHarness(t, DefaultSettings())
	h.rng.spawnAt(DefaultHoles, 3, MoleNormal)
	h.c.Start()

	if !h.view.holes[3].Flags.Has(FlagActive | FlagPop) {
		t.Fatalf("new target should pop, got %+v", h.view.holes[3])
	}
	h.sched.Advance(PopDuration)
	if h.view.holes[3].Flags.Has(FlagPop) || !h.view.holes[3].Flags.Has(FlagActive) {
		t.Errorf("after %v: %+v", PopDuration, h.view.holes[3])
	}
}

func TestSetBestOnlyRaises(t *testing.T) {
	h := newHarness(t, DefaultSettings())
	h.c.SetBest(12)
	h.c.SetBest(3)
	if h.c.Best() != 12 || h.view.best != 12 {
		t.Fatalf("best = %d, view = %d", h.c.Best(), h.view.best)
	}
}

func TestResetCancelsFlashes(t *testing.T) {
	h := newHarness(t, DefaultSettings())
	h.rng.spawnAt(DefaultHoles, 2, MoleNormal)
	h.c.Start()
	h.hitActive(t)
	if !h.view.holes[2].Flags.Has(FlagHit) {
		t.Fatalf("expected hit flash on hole 2")
	}

	h.c.Reset()
	for i, hole := range h.view.holes {
		if hole.Flags != 0 {
			t.Fatalf("hole %d still flagged after reset: %v", i, hole.Flags)
		}
	}

	h.view.holes = map[int]Hole{}
	h.sched.Advance(time.Second)
	if len(h.view.holes) != 0 {
		t.Errorf("holes repainted after reset: %v", h.view.holes)
	}
	if len(h.sched.timers) != 0 {
		t.Errorf("%d timers still pending", len(h.sched.timers))
	}
}
