package config

import (
	"strings"
	"time"

	"github.com/unkn0wn-root/grammarviz/internal/analysis"
)

const (
	DefaultHost         = "localhost"
	DefaultTimeout      = 30 * time.Second
	DefaultStepInterval = 300 * time.Millisecond
	DefaultDebounce     = 500 * time.Millisecond
	DefaultLogLevel     = "info"

	ThemeDark  = "dark"
	ThemeLight = "light"
)

type Settings struct {
	BaseURL      string         `json:"base_url,omitempty"      toml:"base_url,omitempty"      yaml:"base_url,omitempty"`
	Host         string         `json:"host,omitempty"          toml:"host,omitempty"          yaml:"host,omitempty"`
	DefaultType  string         `json:"default_type,omitempty"  toml:"default_type,omitempty"  yaml:"default_type,omitempty"`
	Theme        string         `json:"theme,omitempty"         toml:"theme,omitempty"         yaml:"theme,omitempty"`
	Timeout      Duration       `json:"timeout,omitempty"       toml:"timeout,omitempty"       yaml:"timeout,omitempty"`
	StepInterval Duration       `json:"step_interval,omitempty" toml:"step_interval,omitempty" yaml:"step_interval,omitempty"`
	Debounce     Duration       `json:"debounce,omitempty"      toml:"debounce,omitempty"      yaml:"debounce,omitempty"`
	CacheLimit   int            `json:"cache_limit,omitempty"   toml:"cache_limit,omitempty"   yaml:"cache_limit,omitempty"`
	HTTP2        bool           `json:"http2,omitempty"         toml:"http2,omitempty"         yaml:"http2,omitempty"`
	Insecure     bool           `json:"insecure,omitempty"      toml:"insecure,omitempty"      yaml:"insecure,omitempty"`
	Proxy        string         `json:"proxy,omitempty"         toml:"proxy,omitempty"         yaml:"proxy,omitempty"`
	LogFile      string         `json:"log_file,omitempty"      toml:"log_file,omitempty"      yaml:"log_file,omitempty"`
	LogLevel     string         `json:"log_level,omitempty"     toml:"log_level,omitempty"     yaml:"log_level,omitempty"`
	Layout       LayoutSettings `json:"layout"                  toml:"layout"                  yaml:"layout"`
}

func DefaultSettings() Settings {
	return Settings{
		Host:         DefaultHost,
		DefaultType:  string(analysis.TypeFirst),
		Theme:        ThemeDark,
		Timeout:      Duration(DefaultTimeout),
		StepInterval: Duration(DefaultStepInterval),
		Debounce:     Duration(DefaultDebounce),
		LogLevel:     DefaultLogLevel,
		Layout:       DefaultLayoutSettings(),
	}
}

// Normalise fills zero values with defaults and folds enumerations to
// their canonical spelling. Unknown types fall back silently; theme keys
// are resolved against the catalog by the UI.
func Normalise(in Settings) Settings {
	def := DefaultSettings()
	out := in
	out.BaseURL = strings.TrimSpace(in.BaseURL)
	out.Host = strings.TrimSpace(in.Host)
	out.Proxy = strings.TrimSpace(in.Proxy)
	if out.Host == "" {
		out.Host = def.Host
	}
	if t, err := analysis.ParseType(in.DefaultType); err == nil {
		out.DefaultType = string(t)
	} else {
		out.DefaultType = def.DefaultType
	}
	out.Theme = strings.ToLower(strings.TrimSpace(in.Theme))
	if out.Theme == "" {
		out.Theme = def.Theme
	}
	if out.Timeout <= 0 {
		out.Timeout = def.Timeout
	}
	if out.StepInterval <= 0 {
		out.StepInterval = def.StepInterval
	}
	if out.Debounce <= 0 {
		out.Debounce = def.Debounce
	}
	if out.CacheLimit < 0 {
		out.CacheLimit = 0
	}
	if strings.TrimSpace(out.LogLevel) == "" {
		out.LogLevel = def.LogLevel
	}
	out.Layout = NormaliseLayoutSettings(in.Layout)
	return out
}

func (s Settings) AnalysisType() analysis.Type {
	if t, err := analysis.ParseType(s.DefaultType); err == nil {
		return t
	}
	return analysis.TypeFirst
}
