package theme

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type Metadata struct {
	Name        string `json:"name"        toml:"name"        yaml:"name"`
	Description string `json:"description" toml:"description" yaml:"description"`
	Author      string `json:"author"      toml:"author"      yaml:"author"`
}

// ThemeSpec is the on-disk shape of a user theme. Base picks the builtin the
// overrides start from.
type ThemeSpec struct {
	Metadata *Metadata            `json:"metadata" toml:"metadata" yaml:"metadata"`
	Base     string               `json:"base"     toml:"base"     yaml:"base"`
	Syntax   *string              `json:"syntax"   toml:"syntax"   yaml:"syntax"`
	Palette  PaletteSpec          `json:"palette"  toml:"palette"  yaml:"palette"`
	Styles   map[string]StyleSpec `json:"styles"   toml:"styles"   yaml:"styles"`
}

type PaletteSpec struct {
	Foreground *string `json:"foreground"  toml:"foreground"  yaml:"foreground"`
	Background *string `json:"background"  toml:"background"  yaml:"background"`
	Muted      *string `json:"muted"       toml:"muted"       yaml:"muted"`
	Border     *string `json:"border"      toml:"border"      yaml:"border"`
	Accent     *string `json:"accent"      toml:"accent"      yaml:"accent"`
	AccentText *string `json:"accent_text" toml:"accent_text" yaml:"accent_text"`
	Symbol     *string `json:"symbol"      toml:"symbol"      yaml:"symbol"`
	Highlight  *string `json:"highlight"   toml:"highlight"   yaml:"highlight"`
	Error      *string `json:"error"       toml:"error"       yaml:"error"`
	Success    *string `json:"success"     toml:"success"     yaml:"success"`
	Conflict   *string `json:"conflict"    toml:"conflict"    yaml:"conflict"`
	DiffAdd    *string `json:"diff_add"    toml:"diff_add"    yaml:"diff_add"`
	DiffRemove *string `json:"diff_remove" toml:"diff_remove" yaml:"diff_remove"`
}

type StyleSpec struct {
	Foreground  *string `json:"foreground"   toml:"foreground"   yaml:"foreground"`
	Background  *string `json:"background"   toml:"background"   yaml:"background"`
	BorderColor *string `json:"border_color" toml:"border_color" yaml:"border_color"`
	BorderStyle *string `json:"border_style" toml:"border_style" yaml:"border_style"`
	Bold        *bool   `json:"bold"         toml:"bold"         yaml:"bold"`
	Italic      *bool   `json:"italic"       toml:"italic"       yaml:"italic"`
	Underline   *bool   `json:"underline"    toml:"underline"    yaml:"underline"`
	Faint       *bool   `json:"faint"        toml:"faint"        yaml:"faint"`
}

// ApplySpec rebuilds the theme from the overridden palette and then applies
// per-style overrides on top.
func ApplySpec(base Theme, spec ThemeSpec) (Theme, error) {
	palette, err := spec.Palette.apply(base.Palette)
	if err != nil {
		return Theme{}, err
	}
	syntax := base.SyntaxStyle
	if spec.Syntax != nil && strings.TrimSpace(*spec.Syntax) != "" {
		syntax = strings.TrimSpace(*spec.Syntax)
	}
	out := build(palette, syntax)

	targets := out.styleTargets()
	for name, override := range spec.Styles {
		key := strings.ToLower(strings.TrimSpace(name))
		target, ok := targets[key]
		if !ok {
			return Theme{}, fmt.Errorf("styles: unknown style %q", name)
		}
		next, err := override.apply(*target)
		if err != nil {
			return Theme{}, fmt.Errorf("styles.%s: %w", key, err)
		}
		*target = next
	}
	return out, nil
}

func (t *Theme) styleTargets() map[string]*lipgloss.Style {
	return map[string]*lipgloss.Style{
		"app_frame":             &t.AppFrame,
		"header":                &t.Header,
		"header_brand":          &t.HeaderBrand,
		"header_value":          &t.HeaderValue,
		"tab_active":            &t.TabActive,
		"tab_inactive":          &t.TabInactive,
		"tab_disabled":          &t.TabDisabled,
		"editor_border":         &t.EditorBorder,
		"editor_border_focused": &t.EditorBorderFocused,
		"result_border":         &t.ResultBorder,
		"result_border_focused": &t.ResultBorderFocused,
		"pane_title":            &t.PaneTitle,
		"pane_divider":          &t.PaneDivider,
		"status_bar":            &t.StatusBar,
		"status_bar_key":        &t.StatusBarKey,
		"status_bar_value":      &t.StatusBarValue,
		"control_enabled":       &t.ControlEnabled,
		"control_disabled":      &t.ControlDisabled,
		"notification":          &t.Notification,
		"error":                 &t.Error,
		"success":               &t.Success,
		"narrative":             &t.Narrative,
		"group_label":           &t.GroupLabel,
		"helper_label":          &t.HelperLabel,
		"symbol_set":            &t.SymbolSet,
		"table_header":          &t.TableHeader,
		"table_cell":            &t.TableCell,
		"table_conflict":        &t.TableConflict,
		"rule_number":           &t.RuleNumber,
		"pseudo_code":           &t.PseudoCode,
		"pseudo_code_active":    &t.PseudoCodeActive,
		"diff_add":              &t.DiffAdd,
		"diff_remove":           &t.DiffRemove,
		"diff_context":          &t.DiffContext,
		"help_key":              &t.HelpKey,
		"help_text":             &t.HelpText,
	}
}

func (s PaletteSpec) apply(p Palette) (Palette, error) {
	fields := []struct {
		name  string
		value *string
		dst   *lipgloss.Color
	}{
		{"foreground", s.Foreground, &p.Foreground},
		{"background", s.Background, &p.Background},
		{"muted", s.Muted, &p.Muted},
		{"border", s.Border, &p.Border},
		{"accent", s.Accent, &p.Accent},
		{"accent_text", s.AccentText, &p.AccentText},
		{"symbol", s.Symbol, &p.Symbol},
		{"highlight", s.Highlight, &p.Highlight},
		{"error", s.Error, &p.Error},
		{"success", s.Success, &p.Success},
		{"conflict", s.Conflict, &p.Conflict},
		{"diff_add", s.DiffAdd, &p.DiffAdd},
		{"diff_remove", s.DiffRemove, &p.DiffRemove},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		color, err := toColor("palette."+f.name, *f.value)
		if err != nil {
			return Palette{}, err
		}
		*f.dst = color
	}
	return p, nil
}

func (s StyleSpec) apply(base lipgloss.Style) (lipgloss.Style, error) {
	style := base
	if s.Foreground != nil {
		color, err := toColor("foreground", *s.Foreground)
		if err != nil {
			return style, err
		}
		style = style.Foreground(color)
	}
	if s.Background != nil {
		color, err := toColor("background", *s.Background)
		if err != nil {
			return style, err
		}
		style = style.Background(color)
	}
	if s.BorderStyle != nil {
		border, err := parseBorderStyle(strings.ToLower(strings.TrimSpace(*s.BorderStyle)))
		if err != nil {
			return style, err
		}
		style = style.BorderStyle(border)
	}
	if s.BorderColor != nil {
		color, err := toColor("border_color", *s.BorderColor)
		if err != nil {
			return style, err
		}
		style = style.BorderForeground(color)
	}
	if s.Bold != nil {
		style = style.Bold(*s.Bold)
	}
	if s.Italic != nil {
		style = style.Italic(*s.Italic)
	}
	if s.Underline != nil {
		style = style.Underline(*s.Underline)
	}
	if s.Faint != nil {
		style = style.Faint(*s.Faint)
	}
	return style, nil
}

func toColor(field string, value string) (lipgloss.Color, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("%s: colour value may not be empty", field)
	}
	return lipgloss.Color(trimmed), nil
}

func parseBorderStyle(value string) (lipgloss.Border, error) {
	switch value {
	case "":
		return lipgloss.Border{}, fmt.Errorf("border_style: value may not be empty")
	case "none", "hidden", "off":
		return lipgloss.Border{}, nil
	case "normal", "single":
		return lipgloss.NormalBorder(), nil
	case "rounded":
		return lipgloss.RoundedBorder(), nil
	case "thick", "heavy":
		return lipgloss.ThickBorder(), nil
	case "double":
		return lipgloss.DoubleBorder(), nil
	default:
		return lipgloss.Border{}, fmt.Errorf("border_style: unknown border style %q", value)
	}
}
