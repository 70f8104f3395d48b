package tui

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"

	"github.com/travisdwitt/erdling/internal/config"
	"github.com/travisdwitt/erdling/internal/model"
	"github.com/travisdwitt/erdling/internal/project"
)

// writeProjectFile persists a project as JSON, the shape a save writes.
func writeProjectFile(t *testing.T, path string, p *model.Project) {
	t.Helper()
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		t.Fatalf("marshal project: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write project: %v", err)
	}
}

// newTestAppCfg opens the fixture project in a 120x40 editor.
func newTestAppCfg(t *testing.T, cfg config.Config) AppModel {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shop.erd")
	writeProjectFile(t, path, shopProject())

	mgr, err := project.Open(path)
	if err != nil {
		t.Fatalf("open project: %v", err)
	}
	m := NewAppModel(cfg, nil, mgr)
	if m.watcher != nil {
		t.Cleanup(m.watcher.Stop)
	}
	return press(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
}

func newTestApp(t *testing.T) AppModel {
	t.Helper()
	return newTestAppCfg(t, config.Default())
}

// press runs one message through Update and returns the new model.
func press(t *testing.T, m AppModel, msg tea.Msg) AppModel {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(AppModel)
}

func TestAppOpensEditorOverProject(t *testing.T) {
	t.Parallel()

	m := newTestApp(t)

	if m.screen != ScreenEditor {
		t.Fatalf("screen = %v, want editor", m.screen)
	}
	if len(m.tabs) != 1 || m.activeTab().Name() != "Main" {
		t.Fatalf("tabs = %d active %q, want 1 tab Main", len(m.tabs), m.activeTab().Name())
	}
	if m.focus != FocusCanvas {
		t.Errorf("focus = %v, want canvas", m.focus)
	}
	if m.canvas.Width != 86 || m.canvas.Height != 36 {
		t.Errorf("canvas pane = %dx%d, want 86x36", m.canvas.Width, m.canvas.Height)
	}
	if m.canvasOriginX != 1 || m.canvasOriginY != 2 {
		t.Errorf("canvas origin = (%d,%d), want (1,2)", m.canvasOriginX, m.canvasOriginY)
	}
	if m.manager.Dirty() {
		t.Error("freshly opened project is dirty")
	}

	out := m.View()
	for _, want := range []string{"Shop", "Main", "100%", "shop.erd"} {
		if !strings.Contains(out, want) {
			t.Errorf("editor view missing %q", want)
		}
	}
}

func TestAppPlacesObjectFromBrowser(t *testing.T) {
	t.Parallel()

	m := newTestApp(t)

	// tab moves focus to the browser; three downs land on the sequence.
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != FocusBrowser {
		t.Fatalf("focus after tab = %v, want browser", m.focus)
	}
	for i := 0; i < 3; i++ {
		m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	if _, ref, _ := m.browser.Selected(); ref != "APP.ORDERS_SEQ" {
		t.Fatalf("browser cursor on %q, want APP.ORDERS_SEQ", ref)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	tab := m.activeTab()
	item, ok := tab.Scene.Diagram().Item("APP.ORDERS_SEQ")
	if !ok {
		t.Fatal("placed sequence missing from diagram")
	}
	// The shape lands at the viewport center, scene (344, 288).
	if item.X != 344 || item.Y != 288 {
		t.Errorf("placed at (%v, %v), want (344, 288)", item.X, item.Y)
	}
	if !m.manager.Dirty() {
		t.Error("placing did not dirty the project")
	}
	if m.focus != FocusCanvas {
		t.Error("focus did not return to the canvas")
	}
	if m.successMessage != "placed APP.ORDERS_SEQ" {
		t.Errorf("success = %q", m.successMessage)
	}

	// The selection listener feeds the inspector across model copies.
	if n := len(m.inspector.Objects); n != 1 {
		t.Fatalf("inspector holds %d objects, want 1", n)
	}
	if got := m.inspector.Objects[0].DisplayName(); got != "APP.ORDERS_SEQ" {
		t.Errorf("inspector shows %q, want APP.ORDERS_SEQ", got)
	}

	// Placing the same ref again is refused.
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.errorMessage != "APP.ORDERS_SEQ is already on this diagram" {
		t.Errorf("duplicate place error = %q", m.errorMessage)
	}
}

func TestAppNewDiagramAndTabCycling(t *testing.T) {
	t.Parallel()

	m := newTestApp(t)

	m = press(t, m, keyRunes("n"))
	if m.prompt == nil || m.prompt.kind != promptNewDiagram {
		t.Fatal("n did not open the new-diagram prompt")
	}
	m = press(t, m, keyRunes("Aux"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if len(m.tabs) != 2 || m.active != 1 || m.activeTab().Name() != "Aux" {
		t.Fatalf("tabs = %d active %d, want 2 tabs on Aux", len(m.tabs), m.active)
	}
	if !m.manager.Dirty() {
		t.Error("new diagram did not dirty the project")
	}
	if m.manager.Project().LastActiveDiagram != "Aux" {
		t.Errorf("last active = %q, want Aux", m.manager.Project().LastActiveDiagram)
	}
	// A second tab adds the tab bar row, shrinking the canvas.
	if m.canvas.Height != 35 || m.canvasOriginY != 3 {
		t.Errorf("canvas height %d origin y %d, want 35 and 3", m.canvas.Height, m.canvasOriginY)
	}

	// Duplicate names are refused.
	m = press(t, m, keyRunes("n"))
	m = press(t, m, keyRunes("Aux"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if len(m.tabs) != 2 || m.errorMessage == "" {
		t.Errorf("duplicate diagram: tabs = %d error %q, want refusal", len(m.tabs), m.errorMessage)
	}

	m = press(t, m, keyRunes("{"))
	if m.active != 0 {
		t.Errorf("active after { = %d, want 0", m.active)
	}
	m = press(t, m, keyRunes("}"))
	m = press(t, m, keyRunes("}"))
	if m.active != 0 {
		t.Errorf("active after }} = %d, want 0 (wrapped)", m.active)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlW})
	if len(m.tabs) != 1 || m.activeTab().Name() != "Aux" {
		t.Errorf("after close: %d tabs active %q, want 1 tab Aux", len(m.tabs), m.activeTab().Name())
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlW})
	if m.errorMessage != "cannot close the last diagram" {
		t.Errorf("closing last tab error = %q", m.errorMessage)
	}
}

func TestAppThemeToggle(t *testing.T) {
	t.Parallel()

	m := newTestApp(t)
	if bg := m.activeTab().Scene.Theme().Background(); bg != "#2b2b2b" {
		t.Fatalf("default background = %q, want dark", bg)
	}

	m = press(t, m, keyRunes("t"))
	if bg := m.activeTab().Scene.Theme().Background(); bg != "#ffffff" {
		t.Errorf("background after toggle = %q, want light", bg)
	}
	if m.successMessage != "light theme" {
		t.Errorf("success = %q", m.successMessage)
	}

	m = press(t, m, keyRunes("t"))
	if bg := m.activeTab().Scene.Theme().Background(); bg != "#2b2b2b" {
		t.Errorf("background after second toggle = %q, want dark", bg)
	}
}

func TestAppSavePersistsViewState(t *testing.T) {
	t.Parallel()

	m := newTestApp(t)
	m.manager.MarkDirty()
	m.activeTab().View.ZoomTo(2.0)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})

	if m.manager.Dirty() {
		t.Error("save left the project dirty")
	}
	if !strings.HasPrefix(m.successMessage, "saved ") {
		t.Errorf("success = %q", m.successMessage)
	}

	data, err := os.ReadFile(m.manager.Path())
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	var p model.Project
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("parse saved file: %v", err)
	}
	d, _ := p.DiagramByName("Main")
	if d == nil || d.ZoomLevel != 2.0 {
		t.Fatalf("saved zoom = %+v, want 2.0", d)
	}
	if len(d.Connections) != 1 || d.Connections[0].SourceTable != "APP.ORDERS" {
		t.Errorf("saved connections = %+v, want the ORDERS->USERS record", d.Connections)
	}
}

func TestAppQuitFlows(t *testing.T) {
	t.Parallel()

	t.Run("clean quits immediately", func(t *testing.T) {
		m := newTestApp(t)
		_, cmd := m.Update(keyRunes("q"))
		if cmd == nil {
			t.Fatal("quit returned no command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("quit command returned %T, want tea.QuitMsg", cmd())
		}
	})

	t.Run("dirty asks first", func(t *testing.T) {
		m := newTestApp(t)
		m.manager.MarkDirty()

		m = press(t, m, keyRunes("q"))
		if m.prompt == nil || m.prompt.kind != promptQuit {
			t.Fatal("dirty quit did not prompt")
		}
		m = press(t, m, keyRunes("n"))
		if m.prompt != nil || m.screen != ScreenEditor {
			t.Fatal("n did not dismiss the quit prompt")
		}

		m = press(t, m, keyRunes("q"))
		_, cmd := m.Update(keyRunes("y"))
		if cmd == nil {
			t.Fatal("confirmed quit returned no command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("confirmed quit returned %T, want tea.QuitMsg", cmd())
		}
	})

	t.Run("autosave saves and quits", func(t *testing.T) {
		cfg := config.Default()
		cfg.AutosaveOnClose = true
		m := newTestAppCfg(t, cfg)
		m.manager.MarkDirty()
		m.activeTab().View.ZoomTo(3.0)

		next, cmd := m.Update(keyRunes("q"))
		if cmd == nil {
			t.Fatal("autosave quit returned no command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("autosave quit returned %T, want tea.QuitMsg", cmd())
		}
		m = next.(AppModel)
		if m.manager.Dirty() {
			t.Error("autosave left the project dirty")
		}

		data, err := os.ReadFile(m.manager.Path())
		if err != nil {
			t.Fatalf("read autosaved file: %v", err)
		}
		if !strings.Contains(string(data), "\"zoom_level\": 3") {
			t.Error("autosave did not persist the viewport")
		}
	})
}

func TestAppReloadsOnExternalChange(t *testing.T) {
	t.Parallel()

	changed := shopProject()
	changed.Tables = append(changed.Tables, &model.Table{
		Owner: "APP", Name: "PRODUCTS",
		Columns: []model.Column{{Name: "ID", DataType: "NUMBER"}},
	})

	t.Run("clean session reloads silently", func(t *testing.T) {
		m := newTestApp(t)
		writeProjectFile(t, m.manager.Path(), changed)

		next, cmd := m.Update(projectChangedMsg{Path: m.manager.Path()})
		m = next.(AppModel)

		if cmd == nil {
			t.Error("reload did not re-arm the watcher")
		}
		if got := len(m.manager.Project().Tables); got != 3 {
			t.Fatalf("tables after reload = %d, want 3", got)
		}
		if m.successMessage != "reloaded from disk" {
			t.Errorf("success = %q", m.successMessage)
		}
		if m.activeTab().Scene.Project() != m.manager.Project() {
			t.Error("tab still bound to the stale project graph")
		}

		labels := lo.Map(m.browser.rows, func(r browserRow, _ int) string { return r.label })
		if !lo.Contains(labels, "APP.PRODUCTS") {
			t.Errorf("browser rows %v missing APP.PRODUCTS", labels)
		}
	})

	t.Run("dirty session asks first", func(t *testing.T) {
		m := newTestApp(t)
		m.manager.MarkDirty()
		writeProjectFile(t, m.manager.Path(), changed)

		m = press(t, m, projectChangedMsg{Path: m.manager.Path()})
		if m.prompt == nil || m.prompt.kind != promptReload {
			t.Fatal("dirty session reloaded without asking")
		}
		if got := len(m.manager.Project().Tables); got != 2 {
			t.Fatalf("tables before confirm = %d, want 2", got)
		}

		m = press(t, m, keyRunes("y"))
		if got := len(m.manager.Project().Tables); got != 3 {
			t.Errorf("tables after confirm = %d, want 3", got)
		}
		if m.manager.Dirty() {
			t.Error("reload left the project dirty")
		}
	})
}

func TestAppStartupNewProjectFlow(t *testing.T) {
	t.Parallel()

	m := NewAppModel(config.Default(), nil, nil)
	if m.screen != ScreenStartup {
		t.Fatalf("screen = %v, want startup", m.screen)
	}
	m = press(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	out := m.View()
	if !strings.Contains(out, "erdling") {
		t.Errorf("startup view missing the title:\n%s", out)
	}

	m = press(t, m, keyRunes("n"))
	if m.prompt == nil || m.prompt.kind != promptNewProject {
		t.Fatal("n did not open the new-project prompt")
	}
	m = press(t, m, keyRunes("demo"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.screen != ScreenEditor || m.manager == nil {
		t.Fatal("confirming the name did not open the editor")
	}
	if m.manager.Path() != "" || !m.manager.Dirty() {
		t.Error("fresh project should be pathless and dirty")
	}
	if len(m.tabs) != 1 || m.activeTab().Name() != "Main" {
		t.Errorf("fresh project tabs = %d %q, want the seeded Main", len(m.tabs), m.activeTab().Name())
	}

	// First save prompts for a filename, prefilled from the name.
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if m.prompt == nil || m.prompt.kind != promptSaveAs {
		t.Fatal("ctrl+s on a pathless project did not prompt")
	}
	if got := m.prompt.input.Value(); got != "demo.erd" {
		t.Errorf("save-as prefill = %q, want demo.erd", got)
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.prompt != nil {
		t.Fatal("esc did not dismiss the prompt")
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	path := filepath.Join(t.TempDir(), "demo")
	m.prompt.input.SetValue(path)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(AppModel)
	if m.watcher != nil {
		t.Cleanup(m.watcher.Stop)
	}

	if m.manager.Path() != path+".erd" {
		t.Errorf("saved path = %q, want %q", m.manager.Path(), path+".erd")
	}
	if m.manager.Dirty() {
		t.Error("save left the project dirty")
	}
	if _, err := os.Stat(path + ".erd"); err != nil {
		t.Errorf("saved file missing: %v", err)
	}
	if m.watcher == nil || cmd == nil {
		t.Error("first save did not start watching the file")
	}
}

func TestAppStartupOpensSelectedFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeProjectFile(t, filepath.Join(dir, "alpha.erd"), shopProject())
	writeProjectFile(t, filepath.Join(dir, "shop.erd"), shopProject())

	m := NewAppModel(config.Default(), nil, nil)
	m.files = discoverProjects(dir)
	if len(m.files) != 2 || filepath.Base(m.files[0]) != "alpha.erd" {
		t.Fatalf("discovered %v, want sorted [alpha.erd shop.erd]", m.files)
	}
	m = press(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(AppModel)
	if m.watcher != nil {
		t.Cleanup(m.watcher.Stop)
	}

	if m.screen != ScreenEditor {
		t.Fatal("enter did not open the selected project")
	}
	if got := filepath.Base(m.manager.Path()); got != "shop.erd" {
		t.Errorf("opened %q, want shop.erd", got)
	}
	if m.watcher == nil || cmd == nil {
		t.Error("opening a file did not start the watcher")
	}
}

func TestAppExportWritesTextFile(t *testing.T) {
	t.Parallel()

	m := newTestApp(t)

	m = press(t, m, keyRunes("e"))
	if m.prompt == nil || m.prompt.kind != promptExport {
		t.Fatal("e did not open the export prompt")
	}
	if got := m.prompt.input.Value(); got != "main.png" {
		t.Errorf("export prefill = %q, want main.png", got)
	}

	out := filepath.Join(t.TempDir(), "diagram.txt")
	m.prompt.input.SetValue(out)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if !strings.HasPrefix(m.successMessage, "exported ") {
		t.Fatalf("export message = %q", m.successMessage)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(data), "USERS") {
		t.Error("text export missing table title")
	}

	// Unknown extensions are refused before touching the disk.
	m = press(t, m, keyRunes("e"))
	m.prompt.input.SetValue("diagram.bmp")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.errorMessage != "export needs a .png or .txt filename" {
		t.Errorf("bad extension error = %q", m.errorMessage)
	}
}

func TestAppFilterPlacesFromNarrowedList(t *testing.T) {
	t.Parallel()

	m := newTestApp(t)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = press(t, m, keyRunes("/"))
	if !m.browser.Filtering {
		t.Fatal("/ did not start filtering")
	}

	m = press(t, m, keyRunes("seq"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter}) // leave the input, keep the query
	if m.browser.Filtering {
		t.Fatal("enter did not leave the filter input")
	}
	if _, ref, _ := m.browser.Selected(); ref != "APP.ORDERS_SEQ" {
		t.Fatalf("cursor after filter on %q, want APP.ORDERS_SEQ", ref)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.successMessage != "placed APP.ORDERS_SEQ" {
		t.Errorf("place from filtered list = %q", m.successMessage)
	}

	// esc clears the query and restores the full roster.
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if got := len(m.browser.rows); got != 11 {
		t.Errorf("rows after clearing filter = %d, want 11", got)
	}
}

func TestAppMouseRoutesFocusAndRespectsHelp(t *testing.T) {
	t.Parallel()

	m := newTestApp(t)

	// A click in the side column moves focus to the browser.
	m = press(t, m, tea.MouseMsg{Type: tea.MouseLeft, X: 100, Y: 10})
	m = press(t, m, tea.MouseMsg{Type: tea.MouseRelease, X: 100, Y: 10})
	if m.focus != FocusBrowser {
		t.Fatalf("focus after side click = %v, want browser", m.focus)
	}

	// A wheel event outside the canvas is ignored.
	before := m.activeTab().View.Scroll()
	m = press(t, m, tea.MouseMsg{Type: tea.MouseWheelDown, X: 100, Y: 10})
	if got := m.activeTab().View.Scroll(); got != before {
		t.Errorf("outside wheel scrolled the canvas to %v", got)
	}

	// A click inside the canvas takes focus back and selects.
	m = press(t, m, tea.MouseMsg{Type: tea.MouseLeft, X: 6, Y: 3})
	m = press(t, m, tea.MouseMsg{Type: tea.MouseRelease, X: 6, Y: 3})
	if m.focus != FocusCanvas {
		t.Fatalf("focus after canvas click = %v, want canvas", m.focus)
	}
	if got := m.activeTab().Scene.Selection().Len(); got != 1 {
		t.Fatalf("selection after canvas click = %d, want 1", got)
	}

	// With help open, mouse input is swallowed.
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc}) // clear selection first
	m = press(t, m, keyRunes("?"))
	if !m.help {
		t.Fatal("? did not open help")
	}
	if out := m.View(); !strings.Contains(out, "keys") {
		t.Error("help view missing the key list")
	}
	m = press(t, m, tea.MouseMsg{Type: tea.MouseLeft, X: 6, Y: 3})
	if got := m.activeTab().Scene.Selection().Len(); got != 0 {
		t.Errorf("selection changed under help = %d, want 0", got)
	}
	m = press(t, m, keyRunes("?"))
	if m.help {
		t.Error("? did not close help")
	}
}

func TestAppNarrowLayoutDropsSideColumn(t *testing.T) {
	t.Parallel()

	m := newTestApp(t)
	m = press(t, m, tea.WindowSizeMsg{Width: 70, Height: 20})

	if m.canvas.Width != 68 || m.canvas.Height != 16 {
		t.Errorf("narrow canvas = %dx%d, want 68x16", m.canvas.Width, m.canvas.Height)
	}
	if out := m.View(); strings.Contains(out, "(nothing selected)") {
		t.Error("narrow layout still renders the inspector")
	}

	m = press(t, m, tea.WindowSizeMsg{Width: 30, Height: 8})
	if out := m.View(); !strings.Contains(out, "terminal too small") {
		t.Errorf("undersized view = %q, want the size warning", out)
	}
}
