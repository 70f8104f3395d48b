// Package tui is the terminal frontend: a bubbletea program composing
// the diagram canvas, the project browser, and the property inspector
// over the scene and viewport layers.
package tui

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/travisdwitt/erdling/internal/canvas"
	"github.com/travisdwitt/erdling/internal/config"
	"github.com/travisdwitt/erdling/internal/export"
	"github.com/travisdwitt/erdling/internal/geometry"
	"github.com/travisdwitt/erdling/internal/model"
	"github.com/travisdwitt/erdling/internal/project"
)

// Screen selects the top-level UI state.
type Screen int

const (
	// ScreenStartup shows the project picker.
	ScreenStartup Screen = iota
	// ScreenEditor shows the diagram editor.
	ScreenEditor
)

// Focus selects which pane receives unprefixed keys.
type Focus int

const (
	FocusCanvas Focus = iota
	FocusBrowser
)

// promptKind identifies what an open prompt will do on confirm.
type promptKind int

const (
	promptSaveAs promptKind = iota
	promptExport
	promptNewDiagram
	promptNewProject
	promptReload
	promptQuit
)

// prompt is a one-line input or y/n question rendered in the footer
// row, the way the status-line file prompts of classic editors work.
type prompt struct {
	kind    promptKind
	title   string
	confirm bool
	input   textinput.Model
}

func newTextPrompt(kind promptKind, title, value string) *prompt {
	ti := textinput.New()
	ti.CharLimit = 128
	ti.SetValue(value)
	ti.Focus()
	return &prompt{kind: kind, title: title, input: ti}
}

func newConfirmPrompt(kind promptKind, title string) *prompt {
	return &prompt{kind: kind, title: title, confirm: true}
}

// AppModel is the root bubbletea model.
type AppModel struct {
	cfg  config.Config
	keys KeyMap
	log  *slog.Logger

	width  int
	height int
	screen Screen

	// Startup picker state.
	files      []string
	fileCursor int

	// Editor state.
	manager   *project.Manager
	watcher   *project.Watcher
	tabs      []*DiagramTab
	active    int
	canvas    CanvasView
	browser   Browser
	inspector *Inspector
	focus     Focus
	dark      bool
	help      bool

	canvasOriginX int
	canvasOriginY int

	prompt         *prompt
	errorMessage   string
	successMessage string
}

// NewAppModel creates the root model. A nil manager starts on the
// project picker; otherwise the editor opens immediately.
func NewAppModel(cfg config.Config, logger *slog.Logger, mgr *project.Manager) AppModel {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	m := AppModel{
		cfg:       cfg,
		keys:      DefaultKeyMap(),
		log:       logger,
		browser:   NewBrowser(),
		inspector: &Inspector{},
		dark:      cfg.Dark(),
	}
	m.canvas.PanSpeed = cfg.PanSpeed
	if mgr != nil {
		m.adoptManager(mgr)
	} else {
		m.screen = ScreenStartup
		m.files = discoverProjects(".")
	}
	return m
}

// NewProgram wraps the model in a bubbletea program with the alternate
// screen and cell-motion mouse tracking enabled.
func NewProgram(cfg config.Config, logger *slog.Logger, mgr *project.Manager) *tea.Program {
	return tea.NewProgram(
		NewAppModel(cfg, logger, mgr),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
}

// discoverProjects lists project files under dir, sorted by name.
func discoverProjects(dir string) []string {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+project.FileExtension))
	if err != nil {
		return nil
	}
	sort.Strings(matches)
	return matches
}

// Init arms the file watcher when a project was opened at launch.
func (m AppModel) Init() tea.Cmd {
	if m.watcher != nil {
		return watchCmd(m.watcher)
	}
	return nil
}

// adoptManager switches to the editor over the given project.
func (m *AppModel) adoptManager(mgr *project.Manager) {
	m.manager = mgr
	m.screen = ScreenEditor
	m.focus = FocusCanvas

	p := mgr.Project()
	if len(p.Diagrams) == 0 {
		p.Diagrams = append(p.Diagrams, model.NewDiagram("Main"))
	}

	d := m.startDiagram(p)
	m.tabs = nil
	m.active = 0
	m.openTab(d)
	m.startWatcher()
}

// startDiagram picks which diagram to open first.
func (m *AppModel) startDiagram(p *model.Project) *model.Diagram {
	if d, ok := p.DiagramByName(p.LastActiveDiagram); ok {
		return d
	}
	for _, d := range p.Diagrams {
		if d.IsActive {
			return d
		}
	}
	return p.Diagrams[0]
}

// startWatcher begins watching the project file, if there is one.
// Watch failures degrade to an unwatched session.
func (m *AppModel) startWatcher() {
	path := m.manager.Path()
	if path == "" {
		return
	}
	w, err := project.NewWatcher(path)
	if err != nil {
		m.log.Warn("file watch unavailable", "path", path, "err", err)
		return
	}
	if err := w.Start(); err != nil {
		m.log.Warn("file watch unavailable", "path", path, "err", err)
		return
	}
	m.watcher = w
	m.log.Info("watching project file", "path", path)
}

// activeTab returns the selected tab, nil when none is open.
func (m *AppModel) activeTab() *DiagramTab {
	if m.active < 0 || m.active >= len(m.tabs) {
		return nil
	}
	return m.tabs[m.active]
}

// openTab opens a diagram in a new tab, or switches to it when it is
// already open.
func (m *AppModel) openTab(d *model.Diagram) {
	for i, tab := range m.tabs {
		if tab.Scene.Diagram() == d {
			m.active = i
			m.activateTab()
			return
		}
	}
	tab := NewDiagramTab(m.manager.Project(), d, canvas.Theme{Dark: m.dark})
	insp := m.inspector
	tab.Scene.Selection().AddListener(func(objects []model.Object) {
		insp.SetSelection(objects)
	})
	m.tabs = append(m.tabs, tab)
	m.active = len(m.tabs) - 1
	m.activateTab()
}

// activateTab applies the pane size to the newly active view and moves
// the project's active-diagram bookkeeping.
func (m *AppModel) activateTab() {
	m.layout()
	tab := m.activeTab()
	if tab == nil {
		return
	}
	p := m.manager.Project()
	for _, d := range p.Diagrams {
		d.IsActive = d == tab.Scene.Diagram()
	}
	p.LastActiveDiagram = tab.Scene.Diagram().Name
	m.browser.SetContext(p, tab.Scene.Diagram())
	m.inspector.SetSelection(tab.Scene.SelectedObjects())
}

// layout recomputes pane geometry from the terminal size.
func (m *AppModel) layout() {
	if m.width == 0 || m.screen != ScreenEditor {
		return
	}

	chrome := 2 // status bar + footer
	if len(m.tabs) > 1 {
		chrome++
	}
	contentH := m.height - chrome
	if contentH < 5 {
		contentH = 5
	}

	side := 0
	if m.width >= SideCollapseWidth {
		side = sidePaneWidth
	}
	cw := m.width - side - 2
	ch := contentH - 2
	if cw < 1 {
		cw = 1
	}
	if ch < 1 {
		ch = 1
	}

	m.canvas.SetSize(cw, ch)
	// The canvas interior sits below the status bar, the optional tab
	// bar, and the pane's top border, one column in from its left edge.
	m.canvasOriginX = 1
	m.canvasOriginY = 2
	if len(m.tabs) > 1 {
		m.canvasOriginY++
	}

	if side > 0 {
		browserH := contentH / 2
		m.browser.Width = sidePaneWidth - 2
		m.browser.Height = browserH - 2
		m.inspector.Width = sidePaneWidth - 2
		m.inspector.Height = contentH - browserH - 2
	}

	if tab := m.activeTab(); tab != nil {
		vw, vh := m.canvas.ViewportSize()
		tab.View.SetViewportSize(vw, vh)
	}
}

// Update handles all messages.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case projectChangedMsg:
		return m.handleProjectChanged(msg)

	case watcherDoneMsg:
		return m, nil
	}
	return m, nil
}

// handleProjectChanged reacts to an external rewrite of the project
// file: clean sessions reload silently, dirty ones get a choice.
func (m AppModel) handleProjectChanged(msg projectChangedMsg) (tea.Model, tea.Cmd) {
	if m.watcher == nil || m.manager == nil {
		return m, nil
	}
	m.log.Info("project file changed on disk", "path", msg.Path)
	if m.manager.Dirty() {
		m.prompt = newConfirmPrompt(promptReload, "Project changed on disk. Reload and discard local changes?")
	} else {
		m.reloadProject()
	}
	return m, watchCmd(m.watcher)
}

// reloadProject re-reads the file and rebuilds every open tab against
// the fresh object graph. Tabs whose diagram vanished are dropped.
func (m *AppModel) reloadProject() {
	p, err := m.manager.Reload()
	if err != nil {
		m.errorMessage = fmt.Sprintf("reload failed: %v", err)
		m.log.Error("reload failed", "err", err)
		return
	}

	activeName := ""
	if tab := m.activeTab(); tab != nil {
		activeName = tab.Scene.Diagram().Name
	}

	var tabs []*DiagramTab
	for _, old := range m.tabs {
		old.View.Close()
		d, ok := p.DiagramByName(old.Scene.Diagram().Name)
		if !ok {
			continue
		}
		tab := NewDiagramTab(p, d, canvas.Theme{Dark: m.dark})
		insp := m.inspector
		tab.Scene.Selection().AddListener(func(objects []model.Object) {
			insp.SetSelection(objects)
		})
		tabs = append(tabs, tab)
	}
	if len(tabs) == 0 {
		if len(p.Diagrams) == 0 {
			p.Diagrams = append(p.Diagrams, model.NewDiagram("Main"))
		}
		d := m.startDiagram(p)
		m.tabs = nil
		m.active = 0
		m.openTab(d)
		m.successMessage = "reloaded from disk"
		return
	}

	m.tabs = tabs
	m.active = 0
	for i, tab := range tabs {
		if tab.Scene.Diagram().Name == activeName {
			m.active = i
		}
	}
	m.inspector.SetSelection(nil)
	m.activateTab()
	m.successMessage = "reloaded from disk"
	m.log.Info("project reloaded", "path", m.manager.Path())
}

// handleKey routes keyboard input by prompt, screen, and focus.
func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.errorMessage = ""
	m.successMessage = ""

	if m.prompt != nil {
		return m.handlePromptKey(msg)
	}
	if m.screen == ScreenStartup {
		return m.handleStartupKey(msg)
	}

	// The filter input swallows everything except its exit keys.
	if m.focus == FocusBrowser && m.browser.Filtering {
		switch msg.String() {
		case "ctrl+c":
			return m.requestQuit()
		case "esc":
			m.browser.StopFilter(true)
			return m, nil
		case "enter":
			m.browser.StopFilter(false)
			return m, nil
		}
		var cmd tea.Cmd
		m.browser, cmd = m.browser.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.requestQuit()

	case key.Matches(msg, m.keys.Help):
		m.help = !m.help
		return m, nil

	case key.Matches(msg, m.keys.FocusNext):
		if m.focus == FocusCanvas {
			m.focus = FocusBrowser
		} else {
			m.focus = FocusCanvas
		}
		return m, nil

	case key.Matches(msg, m.keys.Save):
		return m.requestSave()

	case key.Matches(msg, m.keys.Export):
		tab := m.activeTab()
		if tab == nil {
			return m, nil
		}
		name := strings.ReplaceAll(strings.ToLower(tab.Scene.Diagram().Name), " ", "_") + ".png"
		m.prompt = newTextPrompt(promptExport, "Export to (.png or .txt)", name)
		return m, textinput.Blink

	case key.Matches(msg, m.keys.NewDgm):
		m.prompt = newTextPrompt(promptNewDiagram, "New diagram name", "")
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Theme):
		m.dark = !m.dark
		for _, tab := range m.tabs {
			tab.Scene.SetTheme(m.dark)
		}
		if m.dark {
			m.successMessage = "dark theme"
		} else {
			m.successMessage = "light theme"
		}
		return m, nil

	case key.Matches(msg, m.keys.CloseTab):
		m.closeActiveTab()
		return m, nil

	case key.Matches(msg, m.keys.PrevTab):
		m.cycleTab(-1)
		return m, nil

	case key.Matches(msg, m.keys.NextTab):
		m.cycleTab(1)
		return m, nil
	}

	if m.focus == FocusBrowser {
		return m.handleBrowserKey(msg)
	}
	return m.handleCanvasKey(msg)
}

// handleCanvasKey feeds the key to the canvas pane, then the app-level
// canvas commands that need the manager or the clipboard.
func (m AppModel) handleCanvasKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tab := m.activeTab()
	if tab == nil {
		return m, nil
	}

	if handled, dirty, status := m.canvas.HandleKey(msg, m.keys, tab); handled {
		if dirty {
			m.manager.MarkDirty()
			m.browser.Rebuild()
		}
		m.successMessage = status
		return m, nil
	}

	if key.Matches(msg, m.keys.Yank) {
		objects := tab.Scene.SelectedObjects()
		if len(objects) == 0 {
			m.errorMessage = "nothing selected"
			return m, nil
		}
		if err := export.Yank(objects); err != nil {
			m.errorMessage = fmt.Sprintf("yank failed: %v", err)
			return m, nil
		}
		m.successMessage = fmt.Sprintf("yanked %d objects", len(objects))
		return m, nil
	}
	return m, nil
}

// handleBrowserKey drives the roster: navigation, filter, place/open.
func (m AppModel) handleBrowserKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.browser.MoveUp()
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.browser.MoveDown()
		return m, nil
	case key.Matches(msg, m.keys.Filter):
		return m, m.browser.StartFilter()
	case key.Matches(msg, m.keys.Cancel):
		m.browser.StopFilter(true)
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		m.placeSelected()
		return m, nil
	}
	return m, nil
}

// placeSelected places the browser's object on the active diagram at
// the viewport center, or opens the selected diagram in a tab.
func (m *AppModel) placeSelected() {
	kind, ref, ok := m.browser.Selected()
	if !ok {
		return
	}

	if kind == diagramKind {
		if d, found := m.manager.Project().DiagramByName(ref); found {
			m.openTab(d)
		}
		return
	}

	tab := m.activeTab()
	if tab == nil {
		return
	}
	if _, placed := tab.Scene.Diagram().Item(ref); placed {
		m.errorMessage = fmt.Sprintf("%s is already on this diagram", ref)
		return
	}

	vw, vh := m.canvas.ViewportSize()
	center := tab.View.ViewportToScene(geometry.Point{X: vw / 2, Y: vh / 2})
	sh := tab.Scene.AddShape(kind, ref, center)
	if sh == nil {
		m.errorMessage = fmt.Sprintf("cannot place %s", ref)
		return
	}
	tab.Scene.Selection().SelectOnly(sh)
	m.manager.MarkDirty()
	m.browser.Rebuild()
	m.focus = FocusCanvas
	m.successMessage = fmt.Sprintf("placed %s", ref)
}

// handleMouse forwards canvas-pane mouse events, translating terminal
// cells into pane cells.
func (m AppModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.screen != ScreenEditor || m.prompt != nil || m.help {
		return m, nil
	}
	tab := m.activeTab()
	if tab == nil {
		return m, nil
	}

	local := msg
	local.X = msg.X - m.canvasOriginX
	local.Y = msg.Y - m.canvasOriginY
	inside := local.X >= 0 && local.X < m.canvas.Width && local.Y >= 0 && local.Y < m.canvas.Height

	press := msg.Type == tea.MouseLeft || msg.Type == tea.MouseRight
	wheel := msg.Type == tea.MouseWheelUp || msg.Type == tea.MouseWheelDown
	if !inside && wheel {
		return m, nil
	}
	if !inside && press && !m.canvas.mouseHeld {
		// Clicks land focus where they point.
		if local.X >= m.canvas.Width {
			m.focus = FocusBrowser
		}
		return m, nil
	}
	if inside && press && !m.canvas.mouseHeld {
		m.focus = FocusCanvas
	}

	if dirty := m.canvas.HandleMouse(local, tab); dirty {
		m.manager.MarkDirty()
	}
	return m, nil
}

// handleStartupKey drives the project picker.
func (m AppModel) handleStartupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.fileCursor > 0 {
			m.fileCursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.fileCursor < len(m.files)-1 {
			m.fileCursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.NewDgm):
		m.prompt = newTextPrompt(promptNewProject, "New project name", "")
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Confirm):
		if m.fileCursor >= len(m.files) {
			return m, nil
		}
		path := m.files[m.fileCursor]
		mgr, err := project.Open(path)
		if err != nil {
			m.errorMessage = err.Error()
			m.log.Error("open failed", "path", path, "err", err)
			return m, nil
		}
		m.adoptManager(mgr)
		m.layout()
		m.log.Info("project opened", "path", path)
		if m.watcher != nil {
			return m, watchCmd(m.watcher)
		}
		return m, nil
	}
	return m, nil
}

// handlePromptKey drives the footer prompt.
func (m AppModel) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.prompt

	if p.confirm {
		switch msg.String() {
		case "y", "Y", "enter":
			m.prompt = nil
			return m.confirmPrompt(p, "")
		case "n", "N", "esc":
			m.prompt = nil
		}
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.prompt = nil
		return m, nil
	case "enter":
		value := strings.TrimSpace(p.input.Value())
		m.prompt = nil
		if value == "" {
			return m, nil
		}
		return m.confirmPrompt(p, value)
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return m, cmd
}

// confirmPrompt executes the action a prompt was asking about.
func (m AppModel) confirmPrompt(p *prompt, value string) (tea.Model, tea.Cmd) {
	switch p.kind {
	case promptQuit:
		return m.quit()

	case promptReload:
		m.reloadProject()
		return m, nil

	case promptNewProject:
		mgr := project.NewManager(value)
		m.adoptManager(mgr)
		m.layout()
		m.successMessage = "new project; ctrl+s to choose a file"
		return m, nil

	case promptNewDiagram:
		proj := m.manager.Project()
		if _, exists := proj.DiagramByName(value); exists {
			m.errorMessage = fmt.Sprintf("diagram %q already exists", value)
			return m, nil
		}
		d := model.NewDiagram(value)
		proj.Diagrams = append(proj.Diagrams, d)
		m.manager.MarkDirty()
		m.openTab(d)
		m.browser.Rebuild()
		m.successMessage = fmt.Sprintf("created diagram %q", value)
		return m, nil

	case promptSaveAs:
		m.saveViewStates()
		path := project.EnsureExtension(value)
		if err := m.manager.SaveAs(path); err != nil {
			m.errorMessage = err.Error()
			m.log.Error("save failed", "path", path, "err", err)
			return m, nil
		}
		m.successMessage = fmt.Sprintf("saved %s", m.manager.Path())
		m.log.Info("project saved", "path", m.manager.Path())
		if m.watcher == nil {
			m.startWatcher()
			if m.watcher != nil {
				return m, watchCmd(m.watcher)
			}
		}
		return m, nil

	case promptExport:
		m.exportDiagram(value)
		return m, nil
	}
	return m, nil
}

// exportDiagram writes the active diagram to a PNG or text file,
// chosen by extension.
func (m *AppModel) exportDiagram(path string) {
	tab := m.activeTab()
	if tab == nil {
		return
	}
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		err = export.PNG(tab.Scene, path)
	case ".txt":
		err = export.TextFile(tab.Scene, path)
	default:
		m.errorMessage = "export needs a .png or .txt filename"
		return
	}
	if err != nil {
		m.errorMessage = fmt.Sprintf("export failed: %v", err)
		m.log.Error("export failed", "path", path, "err", err)
		return
	}
	m.successMessage = fmt.Sprintf("exported %s", path)
	m.log.Info("diagram exported", "path", path)
}

// requestSave saves now, or prompts for a filename the first time.
func (m AppModel) requestSave() (tea.Model, tea.Cmd) {
	if m.manager == nil {
		return m, nil
	}
	if m.manager.Path() == "" {
		name := strings.ReplaceAll(strings.ToLower(m.manager.Project().Name), " ", "_")
		m.prompt = newTextPrompt(promptSaveAs, "Save as", project.EnsureExtension(name))
		return m, textinput.Blink
	}
	m.saveViewStates()
	if err := m.manager.Save(); err != nil {
		m.errorMessage = err.Error()
		m.log.Error("save failed", "path", m.manager.Path(), "err", err)
		return m, nil
	}
	m.successMessage = fmt.Sprintf("saved %s", m.manager.Path())
	m.log.Info("project saved", "path", m.manager.Path())
	return m, nil
}

// saveViewStates persists every open viewport into its diagram and
// refreshes the derived connection records.
func (m *AppModel) saveViewStates() {
	for _, tab := range m.tabs {
		tab.Scene.SyncConnections()
		tab.View.SaveViewState()
	}
}

// requestQuit quits, autosaves, or asks, depending on dirtiness.
func (m AppModel) requestQuit() (tea.Model, tea.Cmd) {
	if m.manager == nil || !m.manager.Dirty() {
		return m.quit()
	}
	if m.cfg.AutosaveOnClose && m.manager.Path() != "" {
		m.saveViewStates()
		if err := m.manager.Save(); err != nil {
			m.errorMessage = fmt.Sprintf("autosave failed: %v", err)
			m.log.Error("autosave failed", "err", err)
			return m, nil
		}
		m.log.Info("project autosaved on close", "path", m.manager.Path())
		return m.quit()
	}
	m.prompt = newConfirmPrompt(promptQuit, "Unsaved changes. Quit anyway?")
	return m, nil
}

// quit saves view state bookkeeping and stops the watcher.
func (m AppModel) quit() (tea.Model, tea.Cmd) {
	m.saveViewStates()
	if m.watcher != nil {
		m.watcher.Stop()
		m.watcher = nil
	}
	return m, tea.Quit
}

// closeActiveTab closes the current tab; the last one stays open.
func (m *AppModel) closeActiveTab() {
	if len(m.tabs) <= 1 {
		m.errorMessage = "cannot close the last diagram"
		return
	}
	tab := m.activeTab()
	tab.Close()
	m.tabs = append(m.tabs[:m.active], m.tabs[m.active+1:]...)
	if m.active >= len(m.tabs) {
		m.active = len(m.tabs) - 1
	}
	m.activateTab()
}

// cycleTab moves to the neighboring tab, wrapping around.
func (m *AppModel) cycleTab(delta int) {
	if len(m.tabs) <= 1 {
		return
	}
	m.active = (m.active + delta + len(m.tabs)) % len(m.tabs)
	m.activateTab()
}

// View renders the full TUI.
func (m AppModel) View() string {
	if m.width == 0 {
		return "initializing..."
	}
	if m.width < MinWidth || m.height < MinHeight {
		return fmt.Sprintf("terminal too small (%dx%d, need %dx%d)", m.width, m.height, MinWidth, MinHeight)
	}
	if m.screen == ScreenStartup {
		return m.viewStartup()
	}
	return m.viewEditor()
}

// viewStartup renders the project picker.
func (m AppModel) viewStartup() string {
	var b strings.Builder
	b.WriteString(styleGroupHeader.Render("erdling: relational diagrams in the terminal"))
	b.WriteString("\n\n")

	if len(m.files) == 0 {
		b.WriteString(styleDetailDim.Render("  No " + project.FileExtension + " projects here yet. Press n to start one."))
		b.WriteString("\n")
	}
	for i, f := range m.files {
		indicator := "  "
		label := filepath.Base(f)
		if i == m.fileCursor {
			indicator = styleSelectionIndicator.Render(selectionIndicator) + " "
			label = styleRowSelected.Render(label)
		} else {
			label = styleRowNormal.Render(label)
		}
		b.WriteString(indicator + label + "\n")
	}

	b.WriteString("\n")
	if m.errorMessage != "" {
		b.WriteString(styleStatusError.Render(m.errorMessage) + "\n")
	}
	if m.prompt != nil {
		b.WriteString(m.viewPrompt())
	} else {
		b.WriteString(m.renderFooter(StartupFooterBindings(m.keys)))
	}
	return b.String()
}

// viewEditor renders the status bar, panes, and footer.
func (m AppModel) viewEditor() string {
	var sections []string
	sections = append(sections, m.renderStatusBar())

	if len(m.tabs) > 1 {
		bar := TabBar{Tabs: m.tabs, Active: m.active, Width: m.width, Dirty: m.manager.Dirty()}
		sections = append(sections, bar.View())
	}

	sections = append(sections, m.renderMain())

	if m.prompt != nil {
		sections = append(sections, m.viewPrompt())
	} else {
		sections = append(sections, m.renderMessageOrFooter())
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderMain renders the canvas pane and, when there is room, the
// browser/inspector column.
func (m AppModel) renderMain() string {
	var content string
	if m.help {
		content = m.renderHelp()
	} else {
		content = m.canvas.View(m.activeTab())
	}

	canvasStyle := stylePaneBlurred
	if m.focus == FocusCanvas {
		canvasStyle = stylePaneFocused
	}
	canvasBox := canvasStyle.Width(m.canvas.Width).Height(m.canvas.Height).Render(content)

	if m.width < SideCollapseWidth {
		return canvasBox
	}

	browserStyle := stylePaneBlurred
	if m.focus == FocusBrowser {
		browserStyle = stylePaneFocused
	}
	browserBox := browserStyle.Width(m.browser.Width).Height(m.browser.Height).Render(m.browser.View())
	inspectorBox := stylePaneBlurred.Width(m.inspector.Width).Height(m.inspector.Height).Render(m.inspector.View())

	side := lipgloss.JoinVertical(lipgloss.Left, browserBox, inspectorBox)
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasBox, side)
}

// renderHelp lists every binding inside the canvas pane.
func (m AppModel) renderHelp() string {
	bindings := []key.Binding{
		m.keys.SelectAll, m.keys.Cancel, m.keys.Remove, m.keys.Yank,
		m.keys.ZoomIn, m.keys.ZoomOut, m.keys.ZoomReset, m.keys.Fit,
		m.keys.PanMode, m.keys.Arrange, m.keys.Theme, m.keys.Filter,
		m.keys.Confirm, m.keys.NewDgm, m.keys.Save, m.keys.Export,
		m.keys.CloseTab, m.keys.PrevTab, m.keys.NextTab, m.keys.FocusNext,
		m.keys.Help, m.keys.Quit,
	}

	lines := []string{styleGroupHeader.Render("keys"), ""}
	for _, b := range bindings {
		h := b.Help()
		lines = append(lines, fmt.Sprintf("  %s  %s",
			styleFooterKey.Render(padLine(h.Key, 8)),
			styleFooterDesc.Render(h.Desc)))
	}
	lines = append(lines, "", styleDetailDim.Render("  mouse: left select/drag, ctrl+left toggle, drag on empty = rubber band,"),
		styleDetailDim.Render("         right drag = pan, wheel = scroll, alt+wheel = zoom at cursor"))
	return strings.Join(lines, "\n")
}

// renderStatusBar shows project, diagram, zoom, and input modes.
func (m AppModel) renderStatusBar() string {
	name := m.manager.Project().Name
	file := "(unsaved)"
	if m.manager.Path() != "" {
		file = filepath.Base(m.manager.Path())
	}
	if m.manager.Dirty() {
		file += "*"
	}

	parts := []string{name, file}
	if tab := m.activeTab(); tab != nil {
		parts = append(parts, tab.Scene.Diagram().Name)
		parts = append(parts, fmt.Sprintf("%d%%", int(tab.View.Zoom()*100+0.5)))
	}
	line := strings.Join(parts, " • ")

	var modes []string
	if m.canvas.PanMode {
		modes = append(modes, "PAN")
	}
	if m.canvas.Arranging {
		modes = append(modes, "ARRANGE")
	}
	if len(modes) > 0 {
		line += "  " + styleStatusMode.Render(strings.Join(modes, " "))
	}
	return styleStatusBar.Width(m.width).Render(line)
}

// renderMessageOrFooter shows a transient message when there is one,
// falling back to key hints.
func (m AppModel) renderMessageOrFooter() string {
	if m.errorMessage != "" {
		return styleStatusError.Width(m.width).Render(m.errorMessage)
	}
	if m.successMessage != "" {
		return styleFooter.Width(m.width).Render(styleFooterDesc.Render(m.successMessage))
	}
	if m.focus == FocusBrowser {
		return m.renderFooter(BrowserFooterBindings(m.keys))
	}
	return m.renderFooter(CanvasFooterBindings(m.keys))
}

// renderFooter renders keybinding hints, compacting on narrow widths.
func (m AppModel) renderFooter(bindings []key.Binding) string {
	compact := m.width < CompactWidth

	var parts []string
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		if compact {
			parts = append(parts, styleFooterKey.Render(h.Key))
		} else {
			parts = append(parts, styleFooterKey.Render(h.Key)+styleFooterSep.Render(":")+styleFooterDesc.Render(h.Desc))
		}
	}
	sep := styleFooterSep.Render("  ")
	if compact {
		sep = styleFooterSep.Render(" ")
	}
	return styleFooter.Width(m.width).Render(strings.Join(parts, sep))
}

// viewPrompt renders the footer prompt line.
func (m AppModel) viewPrompt() string {
	p := m.prompt
	if p.confirm {
		line := stylePromptTitle.Render(p.title) + styleFooterDesc.Render("  (y/n)")
		return styleFooter.Width(m.width).Render(line)
	}
	line := stylePromptTitle.Render(p.title+": ") + p.input.View()
	return styleFooter.Width(m.width).Render(line)
}
