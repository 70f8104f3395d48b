package tui

import (
	"fmt"
	"strings"

	"github.com/travisdwitt/erdling/internal/model"
)

// Inspector shows the properties of the current selection. It is fed
// by selection notifications, so it never queries the scene itself.
type Inspector struct {
	Objects []model.Object
	Width   int
	Height  int
}

// SetSelection replaces the inspected objects.
func (in *Inspector) SetSelection(objects []model.Object) {
	in.Objects = objects
}

// View renders the inspector pane.
func (in *Inspector) View() string {
	switch len(in.Objects) {
	case 0:
		return styleDetailDim.Render("  (nothing selected)")
	case 1:
		return in.renderObject(in.Objects[0])
	default:
		lines := []string{styleDetailLabel.Render(fmt.Sprintf("%d objects selected", len(in.Objects)))}
		for _, obj := range in.Objects {
			if len(lines) >= in.Height {
				lines = append(lines, styleDetailDim.Render(fmt.Sprintf("  …and %d more", len(in.Objects)-len(lines)+1)))
				break
			}
			lines = append(lines, styleRowNormal.Render("  "+TruncateWithEllipsis(obj.DisplayName(), in.Width-4)))
		}
		return strings.Join(lines, "\n")
	}
}

func (in *Inspector) renderObject(obj model.Object) string {
	var lines []string
	add := func(label, value string) {
		if value == "" {
			return
		}
		value = TruncateWithEllipsis(value, in.Width-len(label)-2)
		lines = append(lines, styleDetailLabel.Render(label+": ")+styleDetailValue.Render(value))
	}

	lines = append(lines, styleGroupHeader.Render(string(obj.Kind())))
	add("name", obj.DisplayName())

	switch o := obj.(type) {
	case *model.Table:
		add("owner", o.Owner)
		add("stereotype", o.Stereotype)
		add("tablespace", o.Tablespace)
		add("columns", fmt.Sprintf("%d", len(o.Columns)))
		for _, col := range o.Columns {
			if len(lines) >= in.Height {
				break
			}
			lines = append(lines, styleRowNormal.Render("  "+TruncateWithEllipsis(col.RowText(), in.Width-4)))
		}
	case *model.Sequence:
		add("owner", o.Owner)
		add("start with", formatInt(o.StartWith))
		add("increment by", formatInt(o.IncrementBy))
		add("cache", formatInt(o.CacheSize))
		if o.Cycle {
			add("cycle", "yes")
		}
	case *model.Domain:
		add("data type", o.DataType)
	case *model.Owner:
		if len(o.Tablespaces) > 0 {
			add("tablespaces", strings.Join(o.Tablespaces, ", "))
		}
	}

	if len(lines) > in.Height && in.Height > 0 {
		lines = lines[:in.Height]
	}
	return strings.Join(lines, "\n")
}

// formatInt renders a sequence attribute, hiding unset zeros.
func formatInt(v int64) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("%d", v)
}
