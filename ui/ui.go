// Package ui provides the terminal letter board.
package ui

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/letterboard/internal/board"
	"github.com/dgnsrekt/letterboard/internal/export"
	"github.com/dgnsrekt/letterboard/internal/glyph"
	"github.com/dgnsrekt/letterboard/internal/speech"
	te "github.com/muesli/termenv"
)

const (
	statusMessageTimeout = time.Second * 3 // how long to show status messages like "copied!"
	exportTimeout        = time.Second * 30
	ellipsis             = "…"
)

var _ board.Synthesizer = (*speech.Speaker)(nil)

// Speaker is the speech side of the board as seen by the interface. It is
// satisfied by *speech.Speaker.
type Speaker interface {
	Status() speech.Status
	VoicesReady() <-chan struct{}
}

// NewProgram returns a new Tea program driving b. sp may be nil for a board
// without speech.
func NewProgram(cfg Config, b *board.Board, sp Speaker) *tea.Program {
	log.Debug(
		"Starting letterboard",
		"mode", b.Mode(),
		"gender", b.Gender(),
		"speech", sp != nil,
		"glamour", cfg.GlamourEnabled,
	)

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		// Hovering needs motion events without a button held down.
		opts = append(opts, tea.WithMouseAllMotion())
	}
	return tea.NewProgram(newModel(cfg, b, sp), opts...)
}

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

type (
	settleMsg               board.Settle
	voicesReadyMsg          string
	exportedMsg             string
	statusMessageTimeoutMsg struct{}
)

// state is the top-level application state.
type state int

const (
	stateShowBoard state = iota
	stateShowError
)

func (s state) String() string {
	return map[state]string{
		stateShowBoard: "showing board",
		stateShowError: "showing error",
	}[s]
}

// Common stuff we'll need to access in all views.
type commonModel struct {
	cfg    Config
	cwd    string
	width  int
	height int
}

type model struct {
	common *commonModel
	state  state
	err    error

	board   *board.Board
	speaker Speaker
	keys    keyMap
	spinner spinner.Model

	// cursor is the keyboard position on the grid; hovered is the cell
	// under the mouse, or -1.
	cursor  int
	hovered int

	showHelp  bool
	showPanel bool
	panel     panelRenderedMsg

	statusMessage      string
	statusMessageTimer *time.Timer
}

func newModel(cfg Config, b *board.Board, sp Speaker) model {
	if cfg.GlamourStyle == "" {
		cfg.GlamourStyle = styles.AutoStyle
	}
	if cfg.GlamourStyle == styles.AutoStyle {
		if te.HasDarkBackground() {
			cfg.GlamourStyle = styles.DarkStyle
		} else {
			cfg.GlamourStyle = styles.LightStyle
		}
	}

	common := commonModel{cfg: cfg}
	if cfg.ExportDir != "" {
		common.cwd = cfg.ExportDir
	} else {
		common.cwd = "."
	}

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return model{
		common:    &common,
		state:     stateShowBoard,
		board:     b,
		speaker:   sp,
		keys:      newKeyMap(),
		spinner:   spin,
		hovered:   -1,
		showPanel: cfg.ShowHowToPlay,
	}
}

func (m model) Init() tea.Cmd {
	log.Debug("Init() called", "state", m.state)
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state == stateShowError {
			m.state = stateShowBoard
			m.err = nil
			return m, nil
		}
		cmd := m.handleKey(msg)
		return m, cmd

	case tea.MouseMsg:
		if m.state != stateShowBoard {
			return m, nil
		}
		cmd := m.handleMouse(msg)
		return m, cmd

	// Window size is received when starting up and on every resize
	case tea.WindowSizeMsg:
		m.common.width = msg.Width
		m.common.height = msg.Height
		m.cursor = min(m.cursor, max(0, len(m.board.Glyphs())-1))
		if m.showPanel {
			cmds = append(cmds, renderPanel(m.common.cfg, m.board.Mode(), msg.Width))
		}

	case settleMsg:
		m.board.Settle(board.Settle(msg))

	case voicesReadyMsg:
		if m.board.VoicesReady(string(msg)) {
			log.Debug("Deferred request submitted", "id", string(msg))
		}

	case panelRenderedMsg:
		// Drop renders for a board or size we've since moved away from.
		if msg.mode == m.board.Mode() && msg.width == m.common.width {
			m.panel = msg
		}

	case exportedMsg:
		cmds = append(cmds, m.showStatusMessage("Saved "+filepath.Base(string(msg))))

	case errMsg:
		log.Error("error", "error", msg.err)
		m.err = msg.err
		m.state = stateShowError

	case statusMessageTimeoutMsg:
		m.statusMessage = ""

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+z" {
		return tea.Suspend
	}

	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return tea.Quit

	case key.Matches(msg, k.Up):
		return m.moveCursor(0, -1)
	case key.Matches(msg, k.Down):
		return m.moveCursor(0, 1)
	case key.Matches(msg, k.Left):
		return m.moveCursor(-1, 0)
	case key.Matches(msg, k.Right):
		return m.moveCursor(1, 0)
	case key.Matches(msg, k.Speak):
		return m.hover(m.cursor)

	case key.Matches(msg, k.NextMode):
		return m.setMode(m.board.Mode().Next())
	case key.Matches(msg, k.PrevMode):
		return m.setMode(m.board.Mode().Prev())
	case key.Matches(msg, k.Mode):
		modes := glyph.Modes()
		i := int(msg.String()[0] - '1')
		if i >= 0 && i < len(modes) {
			return m.setMode(modes[i])
		}

	case key.Matches(msg, k.Female):
		m.board.SetVoiceGender(speech.Female)
	case key.Matches(msg, k.Male):
		m.board.SetVoiceGender(speech.Male)
	case key.Matches(msg, k.Gender):
		m.board.SetVoiceGender(m.board.Gender().Opposite())

	case key.Matches(msg, k.Copy):
		return m.copyGlyph()
	case key.Matches(msg, k.Export):
		return exportBundle(m.common.cwd, m.common.cfg.BundleConfig)

	case key.Matches(msg, k.HowTo):
		m.showPanel = !m.showPanel
		if m.showPanel {
			return renderPanel(m.common.cfg, m.board.Mode(), m.common.width)
		}
	case key.Matches(msg, k.Help):
		m.showHelp = !m.showHelp
	}
	return nil
}

func (m *model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	switch msg.Action { //nolint:exhaustive
	case tea.MouseActionMotion:
		return m.hoverAt(msg.X, msg.Y, false)

	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return nil
		}
		_, zones := m.header()
		if g, ok := zones.genderAt(msg.X, msg.Y); ok {
			m.board.SetVoiceGender(g)
			return nil
		}
		if md, ok := zones.modeAt(msg.X, msg.Y); ok {
			return m.setMode(md)
		}
		return m.hoverAt(msg.X, msg.Y, true)
	}
	return nil
}

// hoverAt hovers the cell under x, y. Motion within a cell only counts the
// first time the pointer enters it; force speaks it again regardless.
func (m *model) hoverAt(x, y int, force bool) tea.Cmd {
	i := m.layout().index(x, y)
	if i < 0 {
		m.hovered = -1
		return nil
	}
	if i == m.hovered && !force {
		return nil
	}
	m.hovered = i
	m.cursor = i
	return m.hover(i)
}

func (m *model) hover(i int) tea.Cmd {
	glyphs := m.board.Glyphs()
	if i < 0 || i >= len(glyphs) {
		return nil
	}
	eff := m.board.Hover(glyphs[i])
	cmds := []tea.Cmd{settle(eff.Settle)}
	if eff.Await != "" && m.speaker != nil {
		cmds = append(cmds, waitForVoices(m.speaker.VoicesReady(), eff.Await))
	}
	return tea.Batch(cmds...)
}

func (m *model) moveCursor(dx, dy int) tea.Cmd {
	next := m.layout().move(m.cursor, dx, dy)
	if next == m.cursor {
		return nil
	}
	m.cursor = next
	return m.hover(next)
}

func (m *model) setMode(md glyph.Mode) tea.Cmd {
	if !m.board.SetMode(md) {
		return nil
	}
	m.cursor = 0
	m.hovered = -1
	m.panel = panelRenderedMsg{}
	if m.showPanel {
		return renderPanel(m.common.cfg, md, m.common.width)
	}
	return nil
}

func (m *model) copyGlyph() tea.Cmd {
	glyphs := m.board.Glyphs()
	if m.cursor >= len(glyphs) {
		return nil
	}
	symbol := glyphs[m.cursor].Symbol
	te.Copy(symbol)
	if err := clipboard.WriteAll(symbol); err != nil {
		log.Debug("System clipboard unavailable", "error", err)
	}
	return m.showStatusMessage("Copied " + symbol)
}

// Show a short message in the status bar. The returned command clears it.
func (m *model) showStatusMessage(msg string) tea.Cmd {
	m.statusMessage = msg
	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
	}
	m.statusMessageTimer = time.NewTimer(statusMessageTimeout)
	return waitForStatusMessageTimeout(m.statusMessageTimer)
}

// header switches to the compact header when the full one would push the
// grid past the bottom of the screen.
func (m model) header() (string, headerZones) {
	h, z := headerView(m.common.width, false, m.board.Mode(), m.board.Gender())
	if m.common.height > 0 {
		l := m.layoutBelow(lipgloss.Height(h))
		if l.top+l.height()+m.reservedHeight() > m.common.height {
			return headerView(m.common.width, true, m.board.Mode(), m.board.Gender())
		}
	}
	return h, z
}

// footerHeight is the number of lines below the board body.
func (m model) footerHeight() int {
	h := 1 // status bar
	if m.showHelp {
		h += lipgloss.Height(helpView(m.keys, m.common.width))
	}
	return h
}

func (m model) panelView() string {
	if !m.showPanel || m.panel.content == "" {
		return ""
	}
	return indent(m.panel.content, headerIndent)
}

// reservedHeight is the space kept below the grid: a blank line, the
// celebration line and the footer.
func (m model) reservedHeight() int {
	return 2 + m.footerHeight()
}

func (m model) layout() gridLayout {
	header, _ := m.header()
	return m.layoutBelow(lipgloss.Height(header))
}

func (m model) layoutBelow(top int) gridLayout {
	return newGridLayout(
		m.board.Mode(),
		m.board.Glyphs(),
		m.common.width,
		m.common.height,
		top,
		m.reservedHeight(),
		m.common.cfg.CompactGrid,
	)
}

func (m model) View() string {
	if m.state == stateShowError {
		return errorView(m.err, false)
	}

	header, _ := m.header()
	l := m.layout()
	celebrating, _ := m.board.Celebrating()
	grid := l.render(m.board.Glyphs(), func(i int, g glyph.Glyph) cellState {
		return cellState{
			active:      m.board.IsActive(g.Symbol),
			celebrating: celebrating == g.Symbol,
			cursor:      i == m.cursor,
		}
	})

	body := []string{header, grid, "", m.celebrationView()}
	if p := m.panelView(); p != "" {
		body = append(body, "", p)
	}
	lines := strings.Split(strings.Join(body, "\n"), "\n")

	// Keep the board pinned to the top so mouse positions line up, and the
	// status bar pinned to the bottom.
	if m.common.height > 0 {
		avail := m.common.height - m.footerHeight()
		if len(lines) > avail {
			lines = lines[:max(0, avail)]
		}
		for len(lines) < avail {
			lines = append(lines, "")
		}
	}

	var b strings.Builder
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n")
	m.statusBarView(&b)
	if m.showHelp {
		b.WriteString("\n" + helpView(m.keys, m.common.width))
	}
	return b.String()
}

func (m model) celebrationView() string {
	symbol, ok := m.board.Celebrating()
	if !ok {
		return ""
	}
	return strings.Repeat(" ", headerIndent) + celebrateStyle.Render(symbol+"  "+glyph.Encouragement)
}

func errorView(err error, fatal bool) string {
	exitMsg := "press any key to "
	if fatal {
		exitMsg += "exit"
	} else {
		exitMsg += "return"
	}
	s := errorTitleStyle.Render("ERROR") + "\n\n" + err.Error() + "\n\n" + subtleStyle.Render(exitMsg)
	return "\n" + indent(s, 3)
}

// COMMANDS

func settle(s board.Settle) tea.Cmd {
	return tea.Tick(board.HoverDuration, func(time.Time) tea.Msg {
		return settleMsg(s)
	})
}

func waitForVoices(ready <-chan struct{}, id string) tea.Cmd {
	return func() tea.Msg {
		<-ready
		return voicesReadyMsg(id)
	}
}

func waitForStatusMessageTimeout(t *time.Timer) tea.Cmd {
	return func() tea.Msg {
		<-t.C
		return statusMessageTimeoutMsg{}
	}
}

func exportBundle(dir string, config []byte) tea.Cmd {
	return func() tea.Msg {
		b, err := export.DefaultBundle(config)
		if err != nil {
			return errMsg{err}
		}
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		path := filepath.Join(dir, export.FileName)
		if err := export.Write(ctx, path, b); err != nil {
			return errMsg{err}
		}
		log.Info("Exported source bundle", "path", path)
		return exportedMsg(path)
	}
}
