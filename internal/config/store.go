package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type SettingsFormat string

const (
	SettingsFormatTOML SettingsFormat = "toml"
	SettingsFormatJSON SettingsFormat = "json"
	SettingsFormatYAML SettingsFormat = "yaml"
)

// SettingsHandle remembers where settings came from so UI changes are
// written back in the same file and format.
type SettingsHandle struct {
	Path   string
	Format SettingsFormat
}

type codec struct {
	decode func([]byte, *Settings) error
	encode func(Settings) ([]byte, error)
}

// JSON and YAML reject unknown keys; go-toml ignores them.
var codecs = map[SettingsFormat]codec{
	SettingsFormatTOML: {
		decode: func(b []byte, s *Settings) error { return toml.Unmarshal(b, s) },
		encode: func(s Settings) ([]byte, error) { return toml.Marshal(s) },
	},
	SettingsFormatJSON: {
		decode: func(b []byte, s *Settings) error {
			dec := json.NewDecoder(bytes.NewReader(b))
			dec.DisallowUnknownFields()
			return dec.Decode(s)
		},
		encode: func(s Settings) ([]byte, error) {
			out, err := json.MarshalIndent(s, "", "  ")
			return append(out, '\n'), err
		},
	},
	SettingsFormatYAML: {
		decode: func(b []byte, s *Settings) error {
			dec := yaml.NewDecoder(bytes.NewReader(b))
			dec.KnownFields(true)
			if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			return nil
		},
		encode: func(s Settings) ([]byte, error) { return yaml.Marshal(s) },
	},
}

var settingsFiles = []SettingsHandle{
	{Path: "settings.toml", Format: SettingsFormatTOML},
	{Path: "settings.json", Format: SettingsFormatJSON},
	{Path: "settings.yaml", Format: SettingsFormatYAML},
	{Path: "settings.yml", Format: SettingsFormatYAML},
}

// LoadSettings reads the first settings file present in Dir. Without one it
// returns the defaults and a handle pointing at settings.toml. A file that
// exists but cannot be read or parsed is an error.
func LoadSettings() (Settings, SettingsHandle, error) {
	dir := Dir()
	for _, f := range settingsFiles {
		h := SettingsHandle{Path: filepath.Join(dir, f.Path), Format: f.Format}
		data, err := os.ReadFile(h.Path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Settings{}, SettingsHandle{}, fmt.Errorf("read settings: %w", err)
		}
		var s Settings
		if err := codecs[h.Format].decode(data, &s); err != nil {
			return Settings{}, SettingsHandle{}, fmt.Errorf("parse settings %q: %w", h.Path, err)
		}
		return Normalise(s), h, nil
	}
	return DefaultSettings(), SettingsHandle{
		Path:   filepath.Join(dir, settingsFiles[0].Path),
		Format: SettingsFormatTOML,
	}, nil
}

// SaveSettings writes s through h, creating the config directory on first
// use. An empty handle means settings.toml in Dir.
func SaveSettings(s Settings, h SettingsHandle) error {
	if h.Path == "" {
		h.Path = filepath.Join(Dir(), settingsFiles[0].Path)
	}
	if h.Format == "" {
		h.Format = SettingsFormatTOML
	}
	c, ok := codecs[h.Format]
	if !ok {
		return fmt.Errorf("unsupported settings format %q", h.Format)
	}
	s.Layout = NormaliseLayoutSettings(s.Layout)
	data, err := c.encode(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(h.Path), 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}
	if err := replaceFile(h.Path, data); err != nil {
		return fmt.Errorf("write settings %q: %w", h.Path, err)
	}
	return nil
}

// replaceFile writes data next to path and renames it into place.
func replaceFile(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".settings-*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(data); err == nil {
		err = tmp.Chmod(0o644)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
