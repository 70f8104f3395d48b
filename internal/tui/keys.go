package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Confirm   key.Binding
	Cancel    key.Binding
	Quit      key.Binding
	Help      key.Binding
	SelectAll key.Binding
	Remove    key.Binding
	Yank      key.Binding
	ZoomIn    key.Binding
	ZoomOut   key.Binding
	ZoomReset key.Binding
	Fit       key.Binding
	PanMode   key.Binding
	Arrange   key.Binding
	Theme     key.Binding
	Filter    key.Binding
	NewDgm    key.Binding
	Save      key.Binding
	Export    key.Binding
	CloseTab  key.Binding
	PrevTab   key.Binding
	NextTab   key.Binding
	FocusNext key.Binding
}

// DefaultKeyMap returns the default keybinding configuration.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "place"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		SelectAll: key.NewBinding(
			key.WithKeys("ctrl+a"),
			key.WithHelp("ctrl+a", "select all"),
		),
		Remove: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "remove"),
		),
		Yank: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "yank"),
		),
		ZoomIn: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "zoom in"),
		),
		ZoomOut: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "zoom out"),
		),
		ZoomReset: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "zoom 1:1"),
		),
		Fit: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "fit"),
		),
		PanMode: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "pan"),
		),
		Arrange: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "arrange"),
		),
		Theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "theme"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		NewDgm: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new diagram"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export"),
		),
		CloseTab: key.NewBinding(
			key.WithKeys("ctrl+w"),
			key.WithHelp("ctrl+w", "close tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("{"),
			key.WithHelp("{", "prev tab"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("}"),
			key.WithHelp("}", "next tab"),
		),
		FocusNext: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "focus"),
		),
	}
}

// CanvasFooterBindings returns footer hints while the canvas pane has focus.
func CanvasFooterBindings(km KeyMap) []key.Binding {
	return []key.Binding{km.SelectAll, km.Arrange, km.PanMode, km.Fit, km.Yank, km.Remove, km.Save, km.FocusNext, km.Help, km.Quit}
}

// BrowserFooterBindings returns footer hints while the browser pane has focus.
func BrowserFooterBindings(km KeyMap) []key.Binding {
	return []key.Binding{km.Up, km.Down, km.Confirm, km.Filter, km.FocusNext, km.Quit}
}

// StartupFooterBindings returns footer hints on the project picker.
func StartupFooterBindings(km KeyMap) []key.Binding {
	open := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open"))
	newProj := key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new project"))
	return []key.Binding{km.Up, km.Down, open, newProj, km.Quit}
}

// PromptFooterBindings returns footer hints while a text prompt is open.
func PromptFooterBindings(km KeyMap) []key.Binding {
	return []key.Binding{km.Confirm, km.Cancel}
}
