package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"

	"github.com/travisdwitt/erdling/internal/model"
)

// browserRow is one line of the project browser: either a group header
// or a selectable object.
type browserRow struct {
	header bool
	label  string
	kind   model.ObjectType
	ref    string
	placed bool
}

// diagramKind marks browser rows that open a diagram tab instead of
// placing an object. It never reaches the scene.
const diagramKind = model.ObjectType("diagram")

// Browser lists every object in the project grouped by kind, with an
// incremental filter. Enter places the selected object on the active
// diagram, or opens the selected diagram in a tab.
type Browser struct {
	Input     textinput.Model
	Filtering bool
	Cursor    int
	Width     int
	Height    int

	project *model.Project
	diagram *model.Diagram
	rows    []browserRow
	top     int
}

// NewBrowser creates an empty browser with an unfocused filter input.
func NewBrowser() Browser {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "filter"
	ti.CharLimit = 64
	return Browser{Input: ti}
}

// SetContext points the browser at a project and the active diagram,
// then rebuilds the row list.
func (b *Browser) SetContext(p *model.Project, d *model.Diagram) {
	b.project = p
	b.diagram = d
	b.Rebuild()
}

// Rebuild regenerates the rows from the project, applying the filter.
// The cursor is clamped onto the nearest selectable row.
func (b *Browser) Rebuild() {
	b.rows = b.rows[:0]
	if b.project == nil {
		b.Cursor = 0
		b.top = 0
		return
	}

	b.addGroup("Diagrams", lo.Map(b.project.Diagrams, func(d *model.Diagram, _ int) browserRow {
		return browserRow{label: d.Name, kind: diagramKind, ref: d.Name}
	}))
	b.addGroup("Tables", lo.Map(b.project.Tables, func(t *model.Table, _ int) browserRow {
		return browserRow{label: t.FullName(), kind: model.TypeTable, ref: t.Ref(), placed: b.isPlaced(t.Ref())}
	}))
	b.addGroup("Sequences", lo.Map(b.project.Sequences, func(s *model.Sequence, _ int) browserRow {
		return browserRow{label: s.FullName(), kind: model.TypeSequence, ref: s.Ref(), placed: b.isPlaced(s.Ref())}
	}))
	b.addGroup("Domains", lo.Map(b.project.Domains, func(d *model.Domain, _ int) browserRow {
		return browserRow{label: d.Name, kind: model.TypeDomain, ref: d.Ref(), placed: b.isPlaced(d.Ref())}
	}))
	b.addGroup("Owners", lo.Map(b.project.Owners, func(o *model.Owner, _ int) browserRow {
		return browserRow{label: o.Name, kind: model.TypeOwner, ref: o.Ref(), placed: b.isPlaced(o.Ref())}
	}))

	b.clampCursor()
}

// addGroup appends a header plus the rows that pass the filter. Empty
// groups are dropped entirely.
func (b *Browser) addGroup(header string, rows []browserRow) {
	filter := strings.ToLower(strings.TrimSpace(b.Input.Value()))
	if filter != "" {
		rows = lo.Filter(rows, func(r browserRow, _ int) bool {
			return strings.Contains(strings.ToLower(r.label), filter)
		})
	}
	if len(rows) == 0 {
		return
	}
	b.rows = append(b.rows, browserRow{header: true, label: header})
	b.rows = append(b.rows, rows...)
}

func (b *Browser) isPlaced(ref string) bool {
	if b.diagram == nil {
		return false
	}
	_, ok := b.diagram.Item(ref)
	return ok
}

// clampCursor moves the cursor onto a selectable row, preferring the
// next one below.
func (b *Browser) clampCursor() {
	if len(b.rows) == 0 {
		b.Cursor = 0
		b.top = 0
		return
	}
	if b.Cursor >= len(b.rows) {
		b.Cursor = len(b.rows) - 1
	}
	if b.Cursor < 0 {
		b.Cursor = 0
	}
	for b.Cursor < len(b.rows)-1 && b.rows[b.Cursor].header {
		b.Cursor++
	}
	for b.Cursor > 0 && b.rows[b.Cursor].header {
		b.Cursor--
	}
}

// MoveUp moves the cursor to the previous selectable row.
func (b *Browser) MoveUp() {
	for i := b.Cursor - 1; i >= 0; i-- {
		if !b.rows[i].header {
			b.Cursor = i
			return
		}
	}
}

// MoveDown moves the cursor to the next selectable row.
func (b *Browser) MoveDown() {
	for i := b.Cursor + 1; i < len(b.rows); i++ {
		if !b.rows[i].header {
			b.Cursor = i
			return
		}
	}
}

// Selected returns the object under the cursor.
func (b *Browser) Selected() (model.ObjectType, string, bool) {
	if b.Cursor < 0 || b.Cursor >= len(b.rows) || b.rows[b.Cursor].header {
		return "", "", false
	}
	r := b.rows[b.Cursor]
	return r.kind, r.ref, true
}

// StartFilter focuses the filter input.
func (b *Browser) StartFilter() tea.Cmd {
	b.Filtering = true
	return b.Input.Focus()
}

// StopFilter blurs the filter input; clear also resets the query.
func (b *Browser) StopFilter(clear bool) {
	b.Filtering = false
	b.Input.Blur()
	if clear {
		b.Input.SetValue("")
		b.Rebuild()
	}
}

// Update forwards key input to the filter while it is focused.
func (b Browser) Update(msg tea.Msg) (Browser, tea.Cmd) {
	if !b.Filtering {
		return b, nil
	}
	var cmd tea.Cmd
	before := b.Input.Value()
	b.Input, cmd = b.Input.Update(msg)
	if b.Input.Value() != before {
		b.Rebuild()
	}
	return b, cmd
}

// View renders the browser rows with a scroll window that keeps the
// cursor visible.
func (b *Browser) View() string {
	visible := b.Height
	if b.Filtering || b.Input.Value() != "" {
		visible-- // filter line
	}
	if visible < 1 {
		visible = 1
	}

	if b.Cursor < b.top {
		b.top = b.Cursor
	}
	if b.Cursor >= b.top+visible {
		b.top = b.Cursor - visible + 1
	}
	if b.top < 0 {
		b.top = 0
	}

	var lines []string
	if b.Filtering || b.Input.Value() != "" {
		lines = append(lines, b.Input.View())
	}

	end := b.top + visible
	if end > len(b.rows) {
		end = len(b.rows)
	}
	for i := b.top; i < end; i++ {
		lines = append(lines, b.renderRow(i))
	}
	if len(b.rows) == 0 {
		lines = append(lines, styleDetailDim.Render("  (empty project)"))
	}
	return strings.Join(lines, "\n")
}

func (b *Browser) renderRow(i int) string {
	r := b.rows[i]
	if r.header {
		return styleGroupHeader.Render(r.label)
	}

	indicator := "  "
	if i == b.Cursor {
		indicator = styleSelectionIndicator.Render(selectionIndicator) + " "
	}

	label := TruncateWithEllipsis(r.label, b.Width-4)
	switch {
	case i == b.Cursor:
		label = styleRowSelected.Render(label)
	case r.placed:
		label = styleRowPlaced.Render(label + " •")
	default:
		label = styleRowNormal.Render(label)
	}
	return indicator + label
}
