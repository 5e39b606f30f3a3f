// Package loop runs one interactive game session on a terminal: it turns
// key presses into controller commands, delivers timer firings and renders
// the board.
package loop

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/tomz197/whackamole/internal/draw"
	"github.com/tomz197/whackamole/internal/game"
	"github.com/tomz197/whackamole/internal/input"
	"github.com/tomz197/whackamole/internal/loop/config"
	"github.com/tomz197/whackamole/internal/loop/server"
)

// Options configures a session.
type Options struct {
	Username     string
	Settings     game.Settings
	Store        game.Store
	Audio        game.Audio
	Hub          *server.Hub // Nil for a standalone session
	Logger       *log.Logger
	TermSizeFunc draw.TermSizeFunc
	Rand         game.Rand

	// Inactivity enables the idle warning and disconnect.
	Inactivity bool
}

// Session handles input, timers and rendering for a single connection.
// Everything except the input reader runs on the goroutine that calls Run.
type Session struct {
	id     string
	ctrl   *game.Controller
	view   *BoardView
	disp   *Dispatcher
	hub    *server.Hub
	handle *server.ClientHandle
	logger *log.Logger

	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter
	writer       io.Writer
	inputStream  *input.Stream
	termSizeFunc draw.TermSizeFunc

	cursor        int
	username      string
	inactivity    bool
	lastInput     time.Time
	isInactive    bool
	shuttingDown  bool
	shutdownTimer float64
	notice        string
	noticeUntil   time.Time
	frame         int
	running       bool
}

// NewSession creates a session reading keys from r and drawing to w.
func NewSession(r io.Reader, w io.Writer, opts Options) (*Session, error) {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	id := uuid.NewString()
	s := &Session{
		id:           id,
		view:         NewBoardView(game.DefaultHoles),
		disp:         NewDispatcher(),
		hub:          opts.Hub,
		logger:       logger.With("session", id),
		writer:       w,
		termSizeFunc: termSizeFunc,
		username:     truncateName(opts.Username),
		inactivity:   opts.Inactivity,
		lastInput:    time.Now(),
		running:      true,
	}

	st := opts.Store
	if s.hub != nil {
		s.handle = s.hub.RegisterClient(s.username, id)
		if st != nil {
			st = &server.BroadcastStore{Store: st, Hub: s.hub, ClientID: s.handle.ID}
		}
	}

	ctrl, err := game.NewController(game.Options{
		Holes:     game.DefaultHoles,
		Settings:  opts.Settings,
		View:      s.view,
		Store:     st,
		Audio:     opts.Audio,
		Haptics:   s.view,
		Scheduler: s.disp,
		Rand:      opts.Rand,
		Logger:    s.logger,
	})
	if err != nil {
		s.close()
		return nil, fmt.Errorf("loop: new controller: %w", err)
	}
	s.ctrl = ctrl

	termWidth, termHeight := draw.TerminalSize(termSizeFunc)
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	s.canvas = draw.NewCanvas(renderWidth, renderHeight)
	s.canvas.SetOffset(offsetCol, offsetRow)
	s.chunkWriter = draw.NewChunkWriter(w)
	s.inputStream = input.StartStream(r)
	return s, nil
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string { return s.id }

// Controller exposes the session's game.
func (s *Session) Controller() *game.Controller { return s.ctrl }

// Run starts the session loop. Blocks until the player quits, the input
// closes, the server shuts down or ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	defer s.close()

	draw.HideCursor(s.writer)
	defer draw.ShowCursor(s.writer)
	draw.ClearScreen(s.writer)
	s.logger.Info("session started", "user", s.username)

	frame := time.NewTicker(config.ClientTargetFrameTime)
	defer frame.Stop()

	var events <-chan server.ClientEvent
	if s.handle != nil {
		events = s.handle.EventsCh
	}

	if err := s.drawFrame(); err != nil {
		return err
	}
	for s.running {
		select {
		case <-ctx.Done():
			s.running = false
		case chunk, ok := <-s.inputStream.C():
			if !ok {
				s.running = false
				break
			}
			s.processInput(input.Parse(chunk))
		case fn := <-s.disp.C():
			fn()
		case event, ok := <-events:
			if !ok {
				// Hub closed the channel
				s.running = false
				break
			}
			s.processServerEvent(event)
		case <-frame.C:
			s.frame++
			s.updateInactivity()
			s.updateShutdown()
			if err := s.drawFrame(); err != nil {
				return err
			}
		}
	}

	s.ctrl.Reset()
	draw.ClearScreen(s.writer)
	s.logger.Info("session ended", "user", s.username, "best", s.ctrl.Best())
	return nil
}

func (s *Session) close() {
	s.disp.Close()
	if s.hub != nil && s.handle != nil {
		s.hub.UnregisterClient(s.handle.ID)
		s.handle = nil
	}
}

// processInput applies key events to the controller.
func (s *Session) processInput(events []input.Event) {
	if len(events) == 0 {
		return
	}
	s.lastInput = time.Now()
	s.isInactive = false
	for _, ev := range events {
		s.handleKey(ev)
		if !s.running {
			return
		}
	}
}

func (s *Session) handleKey(ev input.Event) {
	state := s.ctrl.State()
	settings := s.ctrl.Settings()
	startEnabled, resetEnabled := s.ctrl.Controls()

	switch ev.Key {
	case input.KeyQuit:
		s.running = false
	case input.KeyHole:
		if ev.Hole < s.ctrl.HoleCount() {
			s.cursor = ev.Hole
			s.ctrl.Hit(ev.Hole)
		}
	case input.KeyUp, input.KeyDown, input.KeyLeft, input.KeyRight:
		s.cursor = moveCursor(s.cursor, ev.Key, s.ctrl.HoleCount())
	case input.KeyEnter:
		if state.IsPlaying {
			s.ctrl.Hit(s.cursor)
		} else if startEnabled {
			s.ctrl.Start()
		}
	case input.KeyStart:
		if startEnabled {
			s.ctrl.Start()
		}
	case input.KeyReset:
		if resetEnabled {
			s.ctrl.Reset()
		}
	case input.KeyMode:
		next := game.ModeSurvival
		if settings.Mode == game.ModeSurvival {
			next = game.ModeTime
		}
		s.ctrl.SetMode(next)
		s.setNotice("Mode: " + next.String())
	case input.KeyFaster:
		s.ctrl.SetSpeed(settings.Speed - game.SpeedStep)
	case input.KeySlower:
		s.ctrl.SetSpeed(settings.Speed + game.SpeedStep)
	case input.KeySound:
		s.ctrl.SetSound(!settings.Sound)
		s.setNotice("Sound " + onOff(!settings.Sound))
	case input.KeyVibrate:
		s.ctrl.SetVibrate(!settings.Vibrate)
		s.setNotice("Vibrate " + onOff(!settings.Vibrate))
	}
}

// processServerEvent handles an event from the hub.
func (s *Session) processServerEvent(event server.ClientEvent) {
	switch event.Type {
	case server.EventBestScore:
		if event.Best > s.ctrl.Best() {
			s.ctrl.SetBest(event.Best)
			s.setNotice(fmt.Sprintf("New best %d by %s", event.Best, event.From))
		}
	case server.EventServerShutdown:
		if !s.shuttingDown {
			s.shuttingDown = true
			s.shutdownTimer = config.ShutdownDisplaySeconds
		}
	}
}

func (s *Session) updateInactivity() {
	if !s.inactivity {
		return
	}
	idle := time.Since(s.lastInput).Seconds()
	switch {
	case idle > config.InactivityDisconnectUser:
		s.logger.Info("disconnecting inactive session", "idle", time.Since(s.lastInput).Round(time.Second))
		s.running = false
	case idle > config.InactivityWarnUser:
		s.isInactive = true
	}
}

func (s *Session) updateShutdown() {
	if !s.shuttingDown {
		return
	}
	s.shutdownTimer -= config.ClientTargetFrameTime.Seconds()
	if s.shutdownTimer <= 0 {
		s.running = false
	}
}

func (s *Session) setNotice(msg string) {
	s.notice = msg
	s.noticeUntil = time.Now().Add(2 * time.Second)
}

// moveCursor moves the focus on a square-ish grid, clamping at the edges.
func moveCursor(cursor int, key input.Key, holes int) int {
	cols := gridColumns(holes)
	row, col := cursor/cols, cursor%cols
	switch key {
	case input.KeyUp:
		row--
	case input.KeyDown:
		row++
	case input.KeyLeft:
		col--
	case input.KeyRight:
		col++
	}
	if row < 0 || col < 0 || col >= cols {
		return cursor
	}
	if next := row*cols + col; next < holes {
		return next
	}
	return cursor
}

// gridColumns returns the column count for a board of n holes.
func gridColumns(n int) int {
	cols := 1
	for cols*cols < n {
		cols++
	}
	return cols
}

func truncateName(name string) string {
	if name == "" {
		return "player"
	}
	r := []rune(name)
	if len(r) > config.MaxUsernameLength {
		return string(r[:config.MaxUsernameLength])
	}
	return name
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
