package theme

import "github.com/charmbracelet/lipgloss"

const (
	KeyDark  = "dark"
	KeyLight = "light"
)

// Palette is the small set of colours every style is derived from. User
// themes override palette entries first and individual styles second.
type Palette struct {
	Foreground lipgloss.Color
	Background lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Accent     lipgloss.Color
	AccentText lipgloss.Color
	Symbol     lipgloss.Color
	Highlight  lipgloss.Color
	Error      lipgloss.Color
	Success    lipgloss.Color
	Conflict   lipgloss.Color
	DiffAdd    lipgloss.Color
	DiffRemove lipgloss.Color
}

type Theme struct {
	Palette Palette
	// Chroma style used for the EBNF panel.
	SyntaxStyle string

	AppFrame            lipgloss.Style
	Header              lipgloss.Style
	HeaderBrand         lipgloss.Style
	HeaderValue         lipgloss.Style
	TabActive           lipgloss.Style
	TabInactive         lipgloss.Style
	TabDisabled         lipgloss.Style
	EditorBorder        lipgloss.Style
	EditorBorderFocused lipgloss.Style
	ResultBorder        lipgloss.Style
	ResultBorderFocused lipgloss.Style
	PaneTitle           lipgloss.Style
	PaneDivider         lipgloss.Style
	StatusBar           lipgloss.Style
	StatusBarKey        lipgloss.Style
	StatusBarValue      lipgloss.Style
	ControlEnabled      lipgloss.Style
	ControlDisabled     lipgloss.Style
	Notification        lipgloss.Style
	Error               lipgloss.Style
	Success             lipgloss.Style
	Narrative           lipgloss.Style
	GroupLabel          lipgloss.Style
	HelperLabel         lipgloss.Style
	SymbolSet           lipgloss.Style
	TableHeader         lipgloss.Style
	TableCell           lipgloss.Style
	TableConflict       lipgloss.Style
	RuleNumber          lipgloss.Style
	PseudoCode          lipgloss.Style
	PseudoCodeActive    lipgloss.Style
	DiffAdd             lipgloss.Style
	DiffRemove          lipgloss.Style
	DiffContext         lipgloss.Style
	HelpKey             lipgloss.Style
	HelpText            lipgloss.Style
}

func DarkPalette() Palette {
	return Palette{
		Foreground: lipgloss.Color("#dcd7ff"),
		Background: lipgloss.Color("#0F111A"),
		Muted:      lipgloss.Color("#6E6A86"),
		Border:     lipgloss.Color("#403B59"),
		Accent:     lipgloss.Color("#7D56F4"),
		AccentText: lipgloss.Color("#FDFBFF"),
		Symbol:     lipgloss.Color("#5FB3B3"),
		Highlight:  lipgloss.Color("#FFD46A"),
		Error:      lipgloss.Color("#FF6E6E"),
		Success:    lipgloss.Color("#6EF17E"),
		Conflict:   lipgloss.Color("#FF8B39"),
		DiffAdd:    lipgloss.Color("#6EF17E"),
		DiffRemove: lipgloss.Color("#FF6E6E"),
	}
}

func LightPalette() Palette {
	return Palette{
		Foreground: lipgloss.Color("#1F1D2E"),
		Background: lipgloss.Color("#FAF9FF"),
		Muted:      lipgloss.Color("#8A86A0"),
		Border:     lipgloss.Color("#C9C4E0"),
		Accent:     lipgloss.Color("#5B3CC4"),
		AccentText: lipgloss.Color("#FFFFFF"),
		Symbol:     lipgloss.Color("#1F7A7A"),
		Highlight:  lipgloss.Color("#F5C542"),
		Error:      lipgloss.Color("#C62828"),
		Success:    lipgloss.Color("#2E7D32"),
		Conflict:   lipgloss.Color("#D9480F"),
		DiffAdd:    lipgloss.Color("#2E7D32"),
		DiffRemove: lipgloss.Color("#C62828"),
	}
}

func Dark() Theme {
	return build(DarkPalette(), "monokai")
}

func Light() Theme {
	return build(LightPalette(), "github")
}

// Builtin returns the named builtin theme, falling back to Dark.
func Builtin(key string) Theme {
	if key == KeyLight {
		return Light()
	}
	return Dark()
}

func build(p Palette, syntax string) Theme {
	base := lipgloss.NewStyle().Foreground(p.Foreground)
	pane := base.BorderStyle(lipgloss.RoundedBorder())

	return Theme{
		Palette:     p,
		SyntaxStyle: syntax,
		AppFrame: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(p.Border),
		Header: base.Padding(0, 1),
		HeaderBrand: lipgloss.NewStyle().
			Foreground(p.Background).
			Background(p.Highlight).
			Bold(true).
			Padding(0, 1),
		HeaderValue: lipgloss.NewStyle().Foreground(p.Muted),
		TabActive: lipgloss.NewStyle().
			Foreground(p.AccentText).
			Background(p.Accent).
			Bold(true).
			Padding(0, 2),
		TabInactive: lipgloss.NewStyle().Foreground(p.Foreground).Padding(0, 1),
		TabDisabled: lipgloss.NewStyle().
			Foreground(p.Muted).
			Faint(true).
			Padding(0, 1),
		EditorBorder:        pane.BorderForeground(p.Border),
		EditorBorderFocused: pane.BorderForeground(p.Accent),
		ResultBorder:        pane.BorderForeground(p.Border),
		ResultBorderFocused: pane.BorderForeground(p.Symbol),
		PaneTitle:           lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		PaneDivider:         lipgloss.NewStyle().Foreground(p.Border),
		StatusBar:           lipgloss.NewStyle().Foreground(p.Muted).Padding(0, 1),
		StatusBarKey:        lipgloss.NewStyle().Foreground(p.Conflict).Bold(true),
		StatusBarValue:      lipgloss.NewStyle().Foreground(p.Foreground),
		ControlEnabled:      lipgloss.NewStyle().Foreground(p.Foreground).Bold(true),
		ControlDisabled:     lipgloss.NewStyle().Foreground(p.Muted).Faint(true),
		Notification: lipgloss.NewStyle().
			Foreground(p.AccentText).
			Background(p.Border).
			Padding(0, 1),
		Error:            lipgloss.NewStyle().Foreground(p.Error),
		Success:          lipgloss.NewStyle().Foreground(p.Success),
		Narrative:        base.Italic(true),
		GroupLabel:       lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		HelperLabel:      lipgloss.NewStyle().Foreground(p.Muted),
		SymbolSet:        lipgloss.NewStyle().Foreground(p.Symbol),
		TableHeader:      lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		TableCell:        base,
		TableConflict:    lipgloss.NewStyle().Foreground(p.Conflict).Bold(true),
		RuleNumber:       lipgloss.NewStyle().Foreground(p.Symbol).Bold(true),
		PseudoCode:       lipgloss.NewStyle().Foreground(p.Muted),
		PseudoCodeActive: lipgloss.NewStyle().Foreground(p.Background).Background(p.Highlight),
		DiffAdd:          lipgloss.NewStyle().Foreground(p.DiffAdd),
		DiffRemove:       lipgloss.NewStyle().Foreground(p.DiffRemove),
		DiffContext:      lipgloss.NewStyle().Foreground(p.Muted),
		HelpKey:          lipgloss.NewStyle().Foreground(p.Highlight).Bold(true),
		HelpText:         base,
	}
}
