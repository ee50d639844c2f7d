// internal/tui/app.go
//
// This is the terminal player for sceplay. It uses bubbletea, which follows
// The Elm Architecture:
//
// 1. Model: the playback session plus what the player latched
// 2. Update: a frame message ticks the director; key messages latch input
// 3. View: header, scene panel, overlay, trace and help footer
//
// One frameMsg is one rendered frame and therefore one director tick.

package tui

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/kingrea/sce/internal/logbook"
	"github.com/kingrea/sce/internal/logging"
	"github.com/kingrea/sce/internal/playback"
	"github.com/kingrea/sce/internal/scene"
	"github.com/kingrea/sce/internal/ui"
)

const (
	defaultFrameRate = 30
	// maxDelta caps a frame's delta so a stalled terminal does not skip
	// whole animations.
	maxDelta   = 0.25
	traceLines = 6
)

// frameMsg carries the time a frame was scheduled for. gen is the frame loop
// it belongs to; pausing starts a new loop so frames already in flight are
// dropped.
type frameMsg struct {
	at  time.Time
	gen int
}

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithFrameRate sets the number of director ticks per second.
func WithFrameRate(rate int) AppOption {
	return func(a *App) {
		if rate > 0 {
			a.frameRate = rate
		}
	}
}

// WithLogbook shows the tail of the scheduling trace.
func WithLogbook(book *logbook.Logbook) AppOption {
	return func(a *App) {
		a.logbook = book
	}
}

// WithLogger routes player logs.
func WithLogger(log logrus.FieldLogger) AppOption {
	return func(a *App) {
		if log != nil {
			a.log = log
		}
	}
}

// App is the bubbletea model driving one playback session.
type App struct {
	session   *playback.Session
	frameRate int
	logbook   *logbook.Logbook
	log       logrus.FieldLogger

	keys keyMap
	help help.Model

	width     int
	height    int
	lastFrame time.Time
	frameGen  int
	confirm   bool
	paused    bool
	showTrace bool
	finished  bool
	statusMsg string
}

// NewApp wraps a session in a player.
func NewApp(session *playback.Session, opts ...AppOption) (*App, error) {
	if session == nil {
		return nil, fmt.Errorf("tui: session is required")
	}
	a := &App{
		session:   session,
		frameRate: defaultFrameRate,
		log:       logging.Discard(),
		keys:      defaultKeyMap(),
		help:      help.New(),
		showTrace: true,
		statusMsg: "Playing",
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Init schedules the first frame.
func (a *App) Init() tea.Cmd {
	return a.scheduleFrame()
}

func (a *App) scheduleFrame() tea.Cmd {
	gen := a.frameGen
	return tea.Tick(time.Second/time.Duration(a.frameRate), func(t time.Time) tea.Msg {
		return frameMsg{at: t, gen: gen}
	})
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		return a, nil

	case frameMsg:
		return a, a.handleFrame(msg)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, a.keys.Quit):
			a.log.WithField("tick", a.session.Snapshot().Tick).Info("tui: quit")
			return a, tea.Quit
		case key.Matches(msg, a.keys.Confirm):
			if !a.paused && !a.finished {
				a.confirm = true
			}
		case key.Matches(msg, a.keys.Pause):
			if a.finished {
				return a, nil
			}
			a.paused = !a.paused
			if a.paused {
				a.frameGen++
				a.statusMsg = "Paused"
				return a, nil
			}
			a.statusMsg = "Playing"
			// Resume without counting the pause as elapsed scene time.
			a.lastFrame = time.Time{}
			return a, a.scheduleFrame()
		case key.Matches(msg, a.keys.Trace):
			a.showTrace = !a.showTrace
		}
	}
	return a, nil
}

// handleFrame runs one tick and schedules the next frame while the script
// still has work.
func (a *App) handleFrame(msg frameMsg) tea.Cmd {
	if a.paused || a.finished || msg.gen != a.frameGen {
		return nil
	}
	now := msg.at
	delta := 1 / float64(a.frameRate)
	if !a.lastFrame.IsZero() {
		delta = min(now.Sub(a.lastFrame).Seconds(), maxDelta)
	}
	a.lastFrame = now

	a.session.Step(ui.Input{Confirm: a.confirm}, delta)
	a.confirm = false

	if a.session.Done() {
		a.finished = true
		snap := a.session.Snapshot()
		a.statusMsg = fmt.Sprintf("Finished after %d ticks", snap.Tick)
		a.log.WithField("tick", snap.Tick).Info("tui: script finished")
		return nil
	}
	if a.session.Overlay.WaitingForConfirm() {
		a.statusMsg = "Waiting for next"
	} else {
		a.statusMsg = "Playing"
	}
	return a.scheduleFrame()
}

// Finished reports whether the script has run to completion.
func (a *App) Finished() bool {
	return a.finished
}

// View renders the player.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		MarginBottom(1).
		Render("◆ SCEPLAY · " + a.session.Script.Title())

	sections := []string{header, a.renderStatus(), a.renderScenePanel(width - 4)}
	if overlay := a.session.Overlay.Render(width - 4); overlay != "" {
		sections = append(sections, overlay)
	}
	if a.showTrace {
		if trace := a.renderTracePanel(); trace != "" {
			sections = append(sections, trace)
		}
	}
	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1).
		Render(a.statusMsg + "  " + a.help.View(a.keys))
	sections = append(sections, footer)
	return strings.Join(sections, "\n")
}

func (a *App) renderStatus() string {
	snap := a.session.Snapshot()
	mode := "batch"
	if snap.RunMode.Paced() {
		mode = "paced"
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("tick %d · %s · step %d/%d · active %d · %s",
			snap.Tick, snap.Status, snap.Cursor, snap.Len, snap.Active, mode))
}

func (a *App) renderScenePanel(width int) string {
	cam := a.session.Scene.Camera()
	lines := []string{
		fmt.Sprintf("camera %s yaw %.1f° pitch %.1f°", formatVec(cam.Position), degrees(cam.Yaw), degrees(cam.Pitch)),
	}
	entities := a.session.Scene.Entities()
	if len(entities) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render("no roles on stage"))
	}
	for _, entity := range entities {
		lines = append(lines, renderEntity(entity))
	}
	for _, name := range a.session.Director.Env().Names() {
		value, _ := a.session.Director.Env().Get(name)
		lines = append(lines, fmt.Sprintf("%s = %v", name, value))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(max(20, width)).
		Render(strings.Join(lines, "\n"))
}

func renderEntity(entity *scene.Entity) string {
	state := "hidden"
	if entity.Visible {
		state = "visible"
	}
	line := fmt.Sprintf("%s [%s] %s %s", entity.Name, entity.Model, formatVec(entity.Position), state)
	if anim := entity.Animation; anim != nil {
		line += fmt.Sprintf(" · %s frame %d/%d", anim.Clip.Name, anim.Frame()+1, anim.Clip.Frames)
		if anim.Finished() {
			line += " (held)"
		}
	}
	return line
}

func (a *App) renderTracePanel() string {
	if a.logbook == nil {
		return ""
	}
	lines, total := a.logbook.Tail(traceLines)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "trace"
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("TRACE · %s · %d events", fileName, total))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(fmt.Sprintf("%s\n%s", head, body))
}

func formatVec(v scene.Vec3) string {
	return fmt.Sprintf("(%.1f, %.1f, %.1f)", v.X, v.Y, v.Z)
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
