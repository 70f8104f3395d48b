package canvas

// Selection accent is the same in both themes.
const selectedBorderColor = "#2196F3"

// Theme resolves the canvas palette for light and dark mode. Only
// colors depend on the theme; geometry never does.
type Theme struct {
	Dark bool
}

// Background returns the canvas background color.
func (t Theme) Background() string {
	if t.Dark {
		return "#2b2b2b"
	}
	return "#ffffff"
}

// ShapeBorder returns the border color for unselected shapes.
func (t Theme) ShapeBorder() string {
	if t.Dark {
		return "#cccccc"
	}
	return "#333333"
}

// SelectedBorder returns the border color for selected shapes,
// identical in both themes.
func (t Theme) SelectedBorder() string {
	return selectedBorderColor
}

// Text returns the title and row text color.
func (t Theme) Text() string {
	if t.Dark {
		return "#ffffff"
	}
	return "#000000"
}

// Separator returns the title separator line color.
func (t Theme) Separator() string {
	if t.Dark {
		return "#666666"
	}
	return "#333333"
}

// Connection returns the foreign-key line color.
func (t Theme) Connection() string {
	return "#0000ff"
}
