package theme

type Source string

const (
	SourceBuiltin Source = "builtin"
	SourceUser    Source = "user"
)

type Format string

const (
	FormatBuiltin Format = "builtin"
	FormatJSON    Format = "json"
	FormatTOML    Format = "toml"
	FormatYAML    Format = "yaml"
)

// Definition is one selectable theme. Path is empty for builtins.
type Definition struct {
	Key         string
	DisplayName string
	Metadata    Metadata
	Theme       Theme
	Source      Source
	Format      Format
	Path        string
}

// Catalog is the ordered set of themes the theme key cycles through:
// builtins first, then user themes by display name.
type Catalog struct {
	defs []Definition
	pos  map[string]int
}

func newCatalog(defs []Definition) Catalog {
	c := Catalog{defs: defs, pos: make(map[string]int, len(defs))}
	for i, d := range defs {
		c.pos[d.Key] = i
	}
	return c
}

func (c Catalog) All() []Definition {
	return append([]Definition(nil), c.defs...)
}

func (c Catalog) Keys() []string {
	keys := make([]string, len(c.defs))
	for i, d := range c.defs {
		keys[i] = d.Key
	}
	return keys
}

func (c Catalog) Get(key string) (Definition, bool) {
	i, ok := c.pos[key]
	if !ok {
		return Definition{}, false
	}
	return c.defs[i], true
}

// Next returns the key after current, wrapping at the end. Unknown keys
// restart at the first theme.
func (c Catalog) Next(current string) string {
	if len(c.defs) == 0 {
		return KeyDark
	}
	i, ok := c.pos[current]
	if !ok {
		return c.defs[0].Key
	}
	return c.defs[(i+1)%len(c.defs)].Key
}
