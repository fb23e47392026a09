package bindings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Source is the file a Map was read from. When no file exists Path names the
// TOML location a user would create.
type Source struct {
	Path   string
	Format Format
}

type fileLayout struct {
	Bindings map[string][]string `json:"bindings" toml:"bindings" yaml:"bindings"`
}

var searchOrder = []struct {
	name   string
	format Format
}{
	{"bindings.toml", FormatTOML},
	{"bindings.json", FormatJSON},
	{"bindings.yaml", FormatYAML},
}

// Load reads the first bindings file found in dir. A missing file yields the
// defaults; unreadable or invalid files are errors.
func Load(dir string) (*Map, Source, error) {
	for _, c := range searchOrder {
		src := Source{Path: filepath.Join(dir, c.name), Format: c.format}
		data, err := os.ReadFile(src.Path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, src, fmt.Errorf("read bindings: %w", err)
		}
		overrides, err := decode(data, c.format)
		if err != nil {
			return nil, src, fmt.Errorf("parse %s: %w", c.name, err)
		}
		m, err := compile(overrides)
		if err != nil {
			return nil, src, fmt.Errorf("%s: %w", c.name, err)
		}
		return m, src, nil
	}
	m, err := compile(nil)
	return m, Source{Path: filepath.Join(dir, searchOrder[0].name), Format: FormatTOML}, err
}

func decode(data []byte, format Format) (map[ActionID][]string, error) {
	var f fileLayout
	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &f)
	case FormatJSON:
		err = json.Unmarshal(data, &f)
	case FormatYAML:
		err = yaml.Unmarshal(data, &f)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, err
	}
	out := make(map[ActionID][]string, len(f.Bindings))
	for name, specs := range f.Bindings {
		id := ActionID(name)
		if _, ok := definitionLookup[id]; !ok {
			return nil, fmt.Errorf("unknown action %q", name)
		}
		out[id] = specs
	}
	return out, nil
}
