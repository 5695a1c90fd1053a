package ui

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ctkit/ctview/internal/api"
	"github.com/ctkit/ctview/internal/config"
	"github.com/ctkit/ctview/internal/prefs"
	"github.com/ctkit/ctview/internal/render"
	"github.com/ctkit/ctview/internal/viewer"
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Session   *viewer.Session
	Config    config.Config
	Prefs     prefs.Prefs
	PrefsPath string
	PollTick  time.Duration
	ExportDir string
}

// pane is one of the three stream panels: a viewport plus the rows
// currently rendered into it.
type pane struct {
	stream api.Stream
	vp     viewport.Model
	rows   []render.Row
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	session   *viewer.Session
	config    config.Config
	prefsPath string
	pollTick  time.Duration
	exportDir string

	// UI state
	theme  Theme
	keys   keyMap
	width  int
	height int
	ready  bool
	focus  int

	// Data state
	snap     viewer.Snapshot
	initDone bool
	initErr  error

	// Panels
	panes [3]pane

	// View toggles
	grouped        bool
	showTimestamps bool

	// Search state
	searchActive bool
	searchInput  textinput.Model
	searchSeq    int
	matchIdx     int

	// Selection animation
	anim     *selectionAnim
	flashOn  bool
	flashSeq int

	// Transient footer message
	banner    string
	bannerSeq int

	// Help overlay
	showHelp bool

	spin  spinner.Model
	debug bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = DefaultPollInterval
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	exportDir := opts.ExportDir
	if exportDir == "" {
		exportDir = "."
	}

	ti := textinput.New()
	ti.Placeholder = "Search all panels..."
	ti.CharLimit = 100
	ti.Prompt = "/"

	m := Model{
		ctx:            ctx,
		session:        opts.Session,
		config:         opts.Config,
		prefsPath:      prefsPath,
		pollTick:       pollTick,
		exportDir:      exportDir,
		theme:          GetTheme(opts.Prefs.Theme),
		keys:           DefaultKeyMap(),
		grouped:        opts.Prefs.GroupBySecond,
		showTimestamps: opts.Prefs.ShowTimestamps,
		searchInput:    ti,
		spin:           spinner.New(spinner.WithSpinner(spinner.MiniDot)),
		debug:          os.Getenv("CTVIEW_DEBUG") != "",
	}
	for i, stream := range api.Streams() {
		m.panes[i].stream = stream
	}
	m.session.SetSyncEnabled(opts.Prefs.SyncScroll)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tickCmd(m.pollTick),
		m.spin.Tick,
		m.initCmd(),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizePanes()
		m.rebuildPanes()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case initDoneMsg:
		if msg.err != nil {
			m.initErr = msg.err
			return m, nil
		}
		m.initDone = true
		m.initErr = nil
		m.syncFromSession()
		m.bottomAfterReplace()
		return m, nil

	case pageLoadedMsg:
		m.syncFromSession()
		if msg.err != nil {
			cmd := m.setBanner(string(msg.panel) + " load failed: " + msg.err.Error())
			return m, cmd
		}
		return m, nil

	case secondSelectedMsg:
		return m.handleSecondSelected(msg)

	case selectionSettledMsg:
		cmd := m.handleSettled(uint64(msg))
		return m, cmd

	case animFrameMsg:
		cmd := m.handleAnimFrame(uint64(msg))
		return m, cmd

	case flashClearMsg:
		if int(msg) == m.flashSeq {
			m.flashOn = false
			m.rebuildPanes()
		}
		return m, nil

	case noAdjacentMsg:
		if msg.err != nil {
			cmd := m.setBanner("seconds unavailable: " + msg.err.Error())
			return m, cmd
		}
		cmd := m.setBanner("no " + msg.label + " second")
		return m, cmd

	case searchTickMsg:
		return m.handleSearchTick(msg)

	case searchAppliedMsg:
		return m.handleSearchApplied(msg)

	case reloadedMsg:
		m.syncFromSession()
		if msg.err != nil {
			cmd := m.setBanner("reload failed: " + msg.err.Error())
			return m, cmd
		}
		m.bottomAfterReplace()
		cmd := m.setBanner("reloaded")
		return m, cmd

	case exportDoneMsg:
		if msg.err != nil {
			cmd := m.setBanner("export failed: " + msg.err.Error())
			return m, cmd
		}
		cmd := m.setBanner("exported " + msg.path)
		return m, cmd

	case bannerClearMsg:
		if int(msg) == m.bannerSeq {
			m.banner = ""
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if !m.initDone {
		return m.renderStartup()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderPanels())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Any key closes the help overlay
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	// Search input swallows everything except its own control keys
	if m.searchActive {
		return m.handleSearchKey(msg)
	}

	// Startup screen: only retry, theme, help and quit work
	if !m.initDone {
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.initErr = nil
			return m, m.initCmd()
		case "T":
			m.cycleTheme()
			return m, nil
		case "?":
			m.showHelp = true
			return m, nil
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.cycleTheme()
		m.rebuildPanes()
		return m, nil

	case key.Matches(msg, m.keys.NextPanel):
		m.focus = (m.focus + 1) % len(m.panes)
		m.rebuildPanes()
		return m, nil

	case key.Matches(msg, m.keys.PrevPanel):
		m.focus = (m.focus + len(m.panes) - 1) % len(m.panes)
		m.rebuildPanes()
		return m, nil

	case key.Matches(msg, m.keys.FocusPanel):
		m.focus = int(msg.String()[0] - '1')
		m.rebuildPanes()
		return m, nil

	case key.Matches(msg, m.keys.Down):
		cmd := m.scrollFocused(func(vp *viewport.Model) { vp.LineDown(1) })
		return m, cmd

	case key.Matches(msg, m.keys.Up):
		cmd := m.scrollFocused(func(vp *viewport.Model) { vp.LineUp(1) })
		return m, cmd

	case key.Matches(msg, m.keys.HalfPageDown):
		cmd := m.scrollFocused(func(vp *viewport.Model) { vp.HalfViewDown() })
		return m, cmd

	case key.Matches(msg, m.keys.HalfPageUp):
		cmd := m.scrollFocused(func(vp *viewport.Model) { vp.HalfViewUp() })
		return m, cmd

	case key.Matches(msg, m.keys.Top):
		cmd := m.scrollFocused(func(vp *viewport.Model) { vp.GotoTop() })
		return m, cmd

	case key.Matches(msg, m.keys.Bottom):
		cmd := m.scrollFocused(func(vp *viewport.Model) { vp.GotoBottom() })
		return m, cmd

	case key.Matches(msg, m.keys.SelectSecond):
		sec := m.secondAtTop(m.focus)
		if sec == "" {
			cmd := m.setBanner("no second under cursor")
			return m, cmd
		}
		return m, m.selectSecondCmd(sec)

	case key.Matches(msg, m.keys.Escape):
		return m.handleEscape()

	case key.Matches(msg, m.keys.PrevSecond):
		return m, m.adjacentSecondCmd(-1)

	case key.Matches(msg, m.keys.NextSecond):
		return m, m.adjacentSecondCmd(1)

	case key.Matches(msg, m.keys.Search):
		m.searchActive = true
		m.searchInput.SetValue(m.snap.SearchTerm)
		m.searchInput.CursorEnd()
		cmd := m.searchInput.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.NextMatch):
		cmd := m.gotoMatch(1)
		return m, cmd

	case key.Matches(msg, m.keys.PrevMatch):
		cmd := m.gotoMatch(-1)
		return m, cmd

	case key.Matches(msg, m.keys.ToggleSync):
		on := m.session.SetSyncEnabled(!m.snap.SyncEnabled)
		m.syncFromSession()
		m.savePrefs()
		text := "sync scroll off"
		if on {
			text = "sync scroll on"
		}
		cmd := m.setBanner(text)
		return m, cmd

	case key.Matches(msg, m.keys.ToggleGroup):
		m.grouped = !m.grouped
		m.savePrefs()
		m.rebuildPanes()
		return m, nil

	case key.Matches(msg, m.keys.ToggleTimestamps):
		m.showTimestamps = !m.showTimestamps
		m.savePrefs()
		m.rebuildPanes()
		return m, nil

	case key.Matches(msg, m.keys.Export):
		return m, m.exportCmd()

	case key.Matches(msg, m.keys.Reload):
		return m, m.reloadCmd()
	}

	return m, nil
}

// handleEscape clears state in priority order: search first, then the
// second selection.
func (m Model) handleEscape() (tea.Model, tea.Cmd) {
	if m.snap.SearchTerm != "" {
		return m, m.applySearchCmd("")
	}
	if m.snap.Selection.SelectedSecond != "" {
		m.anim = nil
		m.session.ClearSelection()
		m.syncFromSession()
	}
	return m, nil
}

// handleMouse routes wheel and click events to the panel under the cursor.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !m.ready || !m.initDone {
		return m, nil
	}

	i := m.paneAt(msg.X)
	if i < 0 {
		return m, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		cmd := m.scrollPane(i, func(vp *viewport.Model) { vp.LineUp(WheelScrollLines) })
		return m, cmd
	case tea.MouseButtonWheelDown:
		cmd := m.scrollPane(i, func(vp *viewport.Model) { vp.LineDown(WheelScrollLines) })
		return m, cmd
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress && i != m.focus {
			m.focus = i
			m.rebuildPanes()
		}
	}
	return m, nil
}

// handleTick picks up whatever the background stats poller wrote and
// schedules the next refresh. Network access stays off the UI loop.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.initDone {
		m.syncFromSession()
	}
	return m, tickCmd(m.pollTick)
}

// handleSecondSelected picks up a finished selection fetch: the splice
// results are in the session, so re-render with the highlight and let
// the settle timer start the centering animation.
func (m Model) handleSecondSelected(msg secondSelectedMsg) (tea.Model, tea.Cmd) {
	if msg.res.Superseded {
		return m, nil
	}
	m.syncFromSession()

	cmds := []tea.Cmd{settleCmd(msg.res.Generation)}
	var failed []string
	for _, stream := range api.Streams() {
		if out, ok := msg.res.Panels[stream]; ok && out.Err != nil {
			failed = append(failed, string(stream))
		}
	}
	if len(failed) > 0 {
		cmds = append(cmds, m.setBanner("fetch failed for "+strings.Join(failed, ", ")))
	}
	return m, tea.Batch(cmds...)
}

// cycleTheme switches to the next theme and persists the choice.
func (m *Model) cycleTheme() {
	m.theme = GetTheme(NextTheme(m.theme.Name))
	m.savePrefs()
}

// savePrefs writes the current toggles to the prefs file. Failures are
// ignored; preferences are a convenience, not state.
func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	_ = prefs.Save(m.prefsPath, prefs.Prefs{
		Theme:          m.theme.Name,
		SyncScroll:     m.session.SyncEnabled(),
		GroupBySecond:  m.grouped,
		ShowTimestamps: m.showTimestamps,
	})
}

// setBanner shows a transient footer message and schedules its dismissal.
func (m *Model) setBanner(text string) tea.Cmd {
	m.banner = text
	m.bannerSeq++
	seq := m.bannerSeq
	return tea.Tick(BannerTTL, func(time.Time) tea.Msg {
		return bannerClearMsg(seq)
	})
}

// syncFromSession pulls a fresh snapshot and re-renders every panel.
func (m *Model) syncFromSession() {
	m.snap = m.session.Snapshot()
	m.rebuildPanes()
}

// Messages

type tickMsg time.Time

type initDoneMsg struct{ err error }

type pageLoadedMsg struct {
	panel api.Stream
	err   error
}

type secondSelectedMsg struct{ res viewer.SelectionResult }

type selectionSettledMsg uint64

type noAdjacentMsg struct {
	label string
	err   error
}

type searchTickMsg int

type searchAppliedMsg struct {
	term string
	err  error
}

type reloadedMsg struct{ err error }

type exportDoneMsg struct {
	path string
	err  error
}

type bannerClearMsg int

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func settleCmd(gen uint64) tea.Cmd {
	return tea.Tick(SettleDelay, func(time.Time) tea.Msg {
		return selectionSettledMsg(gen)
	})
}

func (m Model) initCmd() tea.Cmd {
	session, parent := m.session, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, FetchTimeout)
		defer cancel()
		return initDoneMsg{err: session.Init(ctx)}
	}
}

func (m Model) loadNextPageCmd(stream api.Stream) tea.Cmd {
	session, parent := m.session, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, FetchTimeout)
		defer cancel()
		_, err := session.LoadNextPage(ctx, stream)
		return pageLoadedMsg{panel: stream, err: err}
	}
}

func (m Model) selectSecondCmd(key string) tea.Cmd {
	session, parent := m.session, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, FetchTimeout)
		defer cancel()
		return secondSelectedMsg{res: session.SelectSecond(ctx, key)}
	}
}

func (m Model) adjacentSecondCmd(dir int) tea.Cmd {
	session, parent := m.session, m.ctx
	current := m.snap.Selection.SelectedSecond
	label := "previous"
	if dir > 0 {
		label = "next"
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, FetchTimeout)
		defer cancel()
		key, err := session.AdjacentSecond(ctx, current, dir)
		if err != nil || key == "" {
			return noAdjacentMsg{label: label, err: err}
		}
		return secondSelectedMsg{res: session.SelectSecond(ctx, key)}
	}
}

func (m Model) applySearchCmd(term string) tea.Cmd {
	session, parent := m.session, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, FetchTimeout)
		defer cancel()
		return searchAppliedMsg{term: term, err: session.ApplySearch(ctx, term)}
	}
}

func (m Model) reloadCmd() tea.Cmd {
	session, parent := m.session, m.ctx
	term := m.snap.SearchTerm
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, FetchTimeout)
		defer cancel()
		if err := session.RefreshStats(ctx); err != nil {
			return reloadedMsg{err: err}
		}
		return reloadedMsg{err: session.ApplySearch(ctx, term)}
	}
}

func (m Model) exportCmd() tea.Cmd {
	session, dir := m.session, m.exportDir
	return func() tea.Msg {
		path, err := session.ExportLoaded(dir, time.Now())
		return exportDoneMsg{path: path, err: err}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
