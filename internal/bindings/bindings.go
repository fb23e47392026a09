package bindings

import (
	"fmt"
	"sort"
	"strings"
)

// ActionID names something the visualizer can do from the keyboard.
type ActionID string

// Binding is one key sequence bound to an action. Steps holds one key, or
// two for a chord such as "g g".
type Binding struct {
	Action ActionID
	Steps  []string
}

func (b Binding) String() string { return strings.Join(b.Steps, " ") }

// Map resolves pressed keys to actions. A nil *Map resolves nothing.
type Map struct {
	keys    map[string]ActionID
	chords  map[[2]string]ActionID
	leaders map[string]bool
	byID    map[ActionID][]Binding
}

// DefaultMap returns the built-in key map.
func DefaultMap() *Map {
	m, err := compile(nil)
	if err != nil {
		panic(fmt.Sprintf("bindings: built-in map: %v", err))
	}
	return m
}

func (m *Map) MatchSingle(key string) (Binding, bool) {
	if m == nil {
		return Binding{}, false
	}
	id, ok := m.keys[key]
	if !ok {
		return Binding{}, false
	}
	return Binding{Action: id, Steps: []string{key}}, true
}

// HasChordPrefix reports whether key starts at least one chord.
func (m *Map) HasChordPrefix(key string) bool {
	return m != nil && m.leaders[key]
}

func (m *Map) ResolveChord(prefix, next string) (Binding, bool) {
	if m == nil {
		return Binding{}, false
	}
	id, ok := m.chords[[2]string{prefix, next}]
	if !ok {
		return Binding{}, false
	}
	return Binding{Action: id, Steps: []string{prefix, next}}, true
}

// Bindings lists the sequences bound to action in configuration order.
func (m *Map) Bindings(action ActionID) []Binding {
	if m == nil {
		return nil
	}
	src := m.byID[action]
	if len(src) == 0 {
		return nil
	}
	out := make([]Binding, len(src))
	for i, b := range src {
		out[i] = Binding{Action: b.Action, Steps: append([]string(nil), b.Steps...)}
	}
	return out
}

// Label renders the bindings of action for display, e.g. "r / g g".
func (m *Map) Label(action ActionID) string {
	bs := m.Bindings(action)
	parts := make([]string, len(bs))
	for i, b := range bs {
		parts[i] = b.String()
	}
	return strings.Join(parts, " / ")
}

// KnownActions returns every action identifier, sorted.
func KnownActions() []ActionID {
	ids := HelpOrder()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// compile builds a Map from the built-in defaults with overrides replacing
// the whole binding list of the actions they name.
func compile(overrides map[ActionID][]string) (*Map, error) {
	m := &Map{
		keys:    make(map[string]ActionID),
		chords:  make(map[[2]string]ActionID),
		leaders: make(map[string]bool),
		byID:    make(map[ActionID][]Binding, len(definitions)),
	}
	for _, def := range definitions {
		specs := def.defaults
		if custom, ok := overrides[def.id]; ok {
			specs = custom
		}
		for _, spec := range specs {
			steps, err := parseSequence(spec)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", def.id, err)
			}
			if err := m.bind(def.id, steps); err != nil {
				return nil, err
			}
		}
	}
	for leader := range m.leaders {
		if id, ok := m.keys[leader]; ok {
			return nil, fmt.Errorf("%q starts a chord and is also bound to %s", leader, id)
		}
	}
	return m, nil
}

func (m *Map) bind(id ActionID, steps []string) error {
	switch len(steps) {
	case 1:
		if id2, ok := m.keys[steps[0]]; ok {
			return conflict(steps, id2, id)
		}
		m.keys[steps[0]] = id
	case 2:
		if id == ActionSubmit {
			return fmt.Errorf("%s accepts single keys only, got %q", id, strings.Join(steps, " "))
		}
		pair := [2]string{steps[0], steps[1]}
		if id2, ok := m.chords[pair]; ok {
			return conflict(steps, id2, id)
		}
		m.chords[pair] = id
		m.leaders[steps[0]] = true
	default:
		return fmt.Errorf("%s: %q has %d keys, chords take at most two", id, strings.Join(steps, " "), len(steps))
	}
	m.byID[id] = append(m.byID[id], Binding{Action: id, Steps: steps})
	return nil
}

func conflict(steps []string, first, second ActionID) error {
	seq := strings.Join(steps, " ")
	if first == second {
		return fmt.Errorf("%s: %q listed twice", first, seq)
	}
	return fmt.Errorf("%q bound to both %s and %s", seq, first, second)
}
