package theme

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var extFormats = map[string]Format{
	".toml": FormatTOML,
	".json": FormatJSON,
	".yaml": FormatYAML,
	".yml":  FormatYAML,
}

// LoadCatalog returns the dark and light builtins followed by the user
// themes found in dirs. A file that fails to load is left out and its error
// joined into the result; the catalog is usable either way.
func LoadCatalog(dirs []string) (Catalog, error) {
	taken := map[string]bool{KeyDark: true, KeyLight: true}
	var user []Definition
	var errs []error

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("themes: %w", err))
			continue
		}
		for _, e := range entries {
			format, ok := extFormats[strings.ToLower(filepath.Ext(e.Name()))]
			if !ok || e.IsDir() {
				continue
			}
			path := filepath.Join(dir, e.Name())
			def, err := readUserTheme(path, format)
			if err != nil {
				errs = append(errs, fmt.Errorf("themes: %s: %w", path, err))
				continue
			}
			def.Key = claimKey(def.Key, taken)
			if def.DisplayName == "" {
				def.DisplayName = titleFromSlug(def.Key)
			}
			user = append(user, def)
		}
	}

	sort.SliceStable(user, func(i, j int) bool {
		a, b := strings.ToLower(user[i].DisplayName), strings.ToLower(user[j].DisplayName)
		if a != b {
			return a < b
		}
		return user[i].Key < user[j].Key
	})
	defs := append([]Definition{
		builtin(KeyDark, "Dark", Dark()),
		builtin(KeyLight, "Light", Light()),
	}, user...)
	return newCatalog(defs), errors.Join(errs...)
}

func builtin(key, name string, t Theme) Definition {
	return Definition{
		Key:         key,
		DisplayName: name,
		Metadata:    Metadata{Name: name},
		Theme:       t,
		Source:      SourceBuiltin,
		Format:      FormatBuiltin,
	}
}

func readUserTheme(path string, format Format) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, err
	}
	spec, err := decodeSpec(data, format)
	if err != nil {
		return Definition{}, err
	}
	base := strings.ToLower(strings.TrimSpace(spec.Base))
	switch base {
	case "", KeyDark, KeyLight:
	default:
		return Definition{}, fmt.Errorf("base %q is not a builtin theme", spec.Base)
	}
	t, err := ApplySpec(Builtin(base), spec)
	if err != nil {
		return Definition{}, err
	}

	var meta Metadata
	if spec.Metadata != nil {
		meta = *spec.Metadata
	}
	key := slugify(meta.Name)
	if key == "" {
		key = slugify(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	}
	return Definition{
		Key:         key,
		DisplayName: strings.TrimSpace(meta.Name),
		Metadata:    meta,
		Theme:       t,
		Source:      SourceUser,
		Format:      format,
		Path:        path,
	}, nil
}

// decodeSpec rejects unknown JSON and YAML keys so typos in style names
// surface instead of being ignored.
func decodeSpec(data []byte, format Format) (ThemeSpec, error) {
	var spec ThemeSpec
	var err error
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&spec)
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&spec)
	case FormatTOML:
		err = toml.Unmarshal(data, &spec)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	return spec, err
}

// claimKey returns key, or key-N for the first free N, and marks it taken.
func claimKey(key string, taken map[string]bool) string {
	if key == "" {
		key = "theme"
	}
	out := key
	for n := 1; taken[out]; n++ {
		out = key + "-" + strconv.Itoa(n)
	}
	taken[out] = true
	return out
}

func slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case (r == '-' || r == '_' || unicode.IsSpace(r)) && !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func titleFromSlug(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' })
	if len(words) == 0 {
		return "Theme"
	}
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
