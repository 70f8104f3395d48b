package tui

import "github.com/charmbracelet/lipgloss"

// Semantic color palette for the chrome around the canvas. Shape and
// connection colors come from the diagram theme, not from here.
var (
	colorPrimary     = lipgloss.Color("#00BFFF") // focused pane, active tab
	colorAccent      = lipgloss.Color("#FFD700") // dirty markers, pending prompts
	colorDanger      = lipgloss.Color("#FF5252") // error status line
	colorMuted       = lipgloss.Color("#636363") // de-emphasized text
	colorMutedLight  = lipgloss.Color("#8C8C8C") // normal text
	colorWhite       = lipgloss.Color("#EEEEEE") // primary text
	colorBrightWhite = lipgloss.Color("#FFFFFF") // emphatic text
	colorSurface     = lipgloss.Color("#1E1E2E") // status bar background
	colorSurfaceDim  = lipgloss.Color("#181825") // footer background
)

// Selection indicator prepended to the active browser row.
const selectionIndicator = "▎"

// Status bar styles.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(colorSurface).
			Foreground(colorWhite).
			Padding(0, 1)

	styleStatusError = lipgloss.NewStyle().
				Background(colorSurface).
				Foreground(colorDanger).
				Bold(true).
				Padding(0, 1)

	styleStatusMode = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)
)

// Tab bar styles.
var (
	styleTabActive = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	styleTabInactive = lipgloss.NewStyle().
				Foreground(colorMuted)

	styleTabDirty = lipgloss.NewStyle().
			Foreground(colorAccent)
)

// Browser and inspector row styles.
var (
	styleRowSelected = lipgloss.NewStyle().
				Foreground(colorBrightWhite).
				Bold(true)

	styleRowNormal = lipgloss.NewStyle().
			Foreground(colorMutedLight)

	styleRowPlaced = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleGroupHeader = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	styleSelectionIndicator = lipgloss.NewStyle().
				Foreground(colorPrimary)

	styleDetailDim = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleDetailLabel = lipgloss.NewStyle().
				Foreground(colorMutedLight)

	styleDetailValue = lipgloss.NewStyle().
				Foreground(colorWhite)
)

// Pane borders. The focused pane gets the primary color so it is
// obvious where key input goes.
var (
	stylePaneFocused = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				BorderForeground(colorPrimary)

	stylePaneBlurred = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				BorderForeground(colorMuted)
)

// Footer styles.
var (
	styleFooter = lipgloss.NewStyle().
			Background(colorSurfaceDim).
			Padding(0, 1)

	styleFooterKey = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleFooterSep = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleFooterDesc = lipgloss.NewStyle().
			Foreground(colorMutedLight)
)

// Footer prompt style.
var stylePromptTitle = lipgloss.NewStyle().
	Foreground(colorAccent).
	Bold(true)

// cellStyles caches one lipgloss style per foreground/background hex
// pair so grid rendering does not allocate a style for every cell run.
var cellStyles = map[string]lipgloss.Style{}

func cellStyle(fg, bg string) lipgloss.Style {
	key := fg + "|" + bg
	if s, ok := cellStyles[key]; ok {
		return s
	}
	s := lipgloss.NewStyle().Background(lipgloss.Color(bg))
	if fg != "" {
		s = s.Foreground(lipgloss.Color(fg))
	}
	cellStyles[key] = s
	return s
}
