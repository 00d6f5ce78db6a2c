package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-koopa/internal/config"
	"github.com/vovakirdan/tui-koopa/internal/core"
	"github.com/vovakirdan/tui-koopa/internal/games/koopa/levels"
	"github.com/vovakirdan/tui-koopa/internal/registry"
)

// ScoreSaver records final scores. *storage.Store implements it.
type ScoreSaver interface {
	SaveScore(gameID string, score int) (int64, error)
}

// Options are the optional collaborators of a game session.
type Options struct {
	Scores  ScoreSaver
	Watcher *levels.Watcher // level hot reload, nil disables it
	Logger  *log.Logger

	// Renderer styles the output; nil uses the local terminal.
	Renderer *lipgloss.Renderer

	// Embedded models belong to a larger session: when the game ends
	// they stop ticking instead of quitting the program.
	Embedded bool
}

// ReloadMsg reports that a watched level file changed.
type ReloadMsg struct{ Path string }

type watchErrMsg struct{ err error }

// Model is the Bubble Tea model for running a game.
type Model struct {
	game       registry.Game
	screen     *core.Screen
	palette    *Palette
	opts       Options
	log        *log.Logger
	config     core.RuntimeConfig
	keys       *KeyMapper
	hold       *HoldTracker
	gameState  core.GameState
	quitting   bool
	finished   bool // game left its last scene
	scoreSaved bool // Whether score has been saved for current game over
}

// NewModel creates a new Bubble Tea model for the given game.
func NewModel(game registry.Game, cfg core.RuntimeConfig, opts Options) Model {
	// Use time-based seed if not specified
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return Model{
		game:    game,
		screen:  core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		palette: NewPalette(opts.Renderer),
		opts:    opts,
		log:     logger,
		config:  cfg,
		keys:    NewKeyMapper(),
		hold:    NewHoldTracker(),
	}
}

// Init initializes the model and starts the game.
func (m Model) Init() tea.Cmd {
	m.game.Reset(m.config)
	// Note: gameState will be set on first tick (value receiver limitation)

	cmds := []tea.Cmd{tickCmd(m.config.TickRate)}
	if m.opts.Watcher != nil {
		cmds = append(cmds, waitForReload(m.opts.Watcher))
	}
	return tea.Batch(cmds...)
}

// waitForReload blocks on the watcher until a level file changes.
func waitForReload(w *levels.Watcher) tea.Cmd {
	return func() tea.Msg {
		select {
		case path, ok := <-w.Events:
			if !ok {
				return nil
			}
			return ReloadMsg{Path: path}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return watchErrMsg{err: err}
		}
	}
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick(time.Time(msg))

	case ReloadMsg:
		if r, ok := m.game.(registry.Reloadable); ok {
			if err := r.Reload(); err != nil {
				m.log.Warn("level reload failed", "path", msg.Path, "error", err)
			} else {
				m.log.Info("level reloaded", "path", msg.Path)
			}
		}
		return m, waitForReload(m.opts.Watcher)

	case watchErrMsg:
		m.log.Warn("level watcher", "error", msg.err)
		return m, waitForReload(m.opts.Watcher)
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Keys().Screenshot) {
		m.saveScreenshot()
		return m, nil
	}

	actions, isQuit := m.keys.MapKey(msg)
	if isQuit {
		m.quitting = true
		return m, tea.Quit
	}
	now := time.Now()
	for _, a := range actions {
		if a == core.ActionRestart && !m.gameState.GameOver {
			continue
		}
		m.hold.Press(a, now)
	}
	return m, nil
}

// handleResize processes window resize events.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, msg.Height)

	if r, ok := m.game.(registry.Resizable); ok {
		r.Resize(msg.Width, msg.Height)
		return m, nil
	}
	// Games without Resize restart at the new size.
	if !m.gameState.GameOver {
		m.game.Reset(m.config)
	}
	return m, nil
}

// handleTick processes simulation ticks.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	frame := core.NewInputFrame()
	m.hold.Frame(now, &frame)

	// Check for restart
	if frame.Has(core.ActionRestart) && m.gameState.GameOver {
		m.config.Seed = time.Now().UnixNano()
		m.game.Reset(m.config)
		m.gameState = m.game.State()
		m.scoreSaved = false
		m.hold.Release()
		return m, tickCmd(m.config.TickRate)
	}

	result := m.game.Step(frame)
	m.gameState = result.State
	if m.gameState.Quit {
		if m.opts.Embedded {
			m.finished = true
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit
	}

	// Save score on game over (once)
	if m.gameState.GameOver && !m.scoreSaved && m.gameState.Score > 0 {
		if m.opts.Scores != nil {
			if _, err := m.opts.Scores.SaveScore(m.game.ID(), m.gameState.Score); err != nil {
				m.log.Warn("save score failed", "game", m.game.ID(), "error", err)
			}
		}
		m.scoreSaved = true
	}
	if !m.gameState.GameOver {
		m.scoreSaved = false
	}

	return m, tickCmd(m.config.TickRate)
}

// Finished reports whether the game ended on its own.
func (m Model) Finished() bool { return m.finished }

// IsQuitting reports whether the user asked to quit the program.
func (m Model) IsQuitting() bool { return m.quitting }

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	m.game.Render(m.screen)

	dir := filepath.Join(config.HomeDir(), "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.log.Warn("screenshot dir", "error", err)
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp)
	path := filepath.Join(dir, filename)

	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.log.Warn("screenshot", "path", path, "error", err)
	}
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting || m.finished {
		return ""
	}
	m.game.Render(m.screen)
	return m.palette.Render(m.screen)
}

// Run starts the Bubble Tea program with the given model.
func Run(game registry.Game, cfg core.RuntimeConfig, opts Options) error {
	model := NewModel(game, cfg, opts)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	_, err := p.Run()
	return err
}
