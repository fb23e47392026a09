package bindings

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type modifier uint8

const (
	modCtrl modifier = 1 << iota
	modAlt
	modShift
	modCmd
)

var modifierNames = []struct {
	bit  modifier
	name string
}{
	{modCtrl, "ctrl"},
	{modAlt, "alt"},
	{modShift, "shift"},
	{modCmd, "cmd"},
}

var modifierAliases = map[string]modifier{
	"ctrl":    modCtrl,
	"control": modCtrl,
	"alt":     modAlt,
	"option":  modAlt,
	"shift":   modShift,
	"cmd":     modCmd,
	"command": modCmd,
	"meta":    modCmd,
}

// NormalizeKeyString maps a bubbletea key string to the form used in the
// map: "G" becomes "shift+g", "?" becomes "shift+/". Invalid input yields "".
func NormalizeKeyString(raw string) string {
	key, err := canonicalKey(raw)
	if err != nil {
		return ""
	}
	return key
}

func parseSequence(spec string) ([]string, error) {
	fields := strings.Fields(spec)
	if len(fields) == 0 {
		return nil, errors.New("empty binding")
	}
	steps := make([]string, len(fields))
	for i, f := range fields {
		key, err := canonicalKey(f)
		if err != nil {
			return nil, err
		}
		steps[i] = key
	}
	return steps, nil
}

func canonicalKey(raw string) (string, error) {
	switch raw {
	case "":
		return "", errors.New("empty key")
	case " ":
		return "space", nil
	case "?":
		return "shift+/", nil
	}
	if utf8.RuneCountInString(raw) == 1 {
		r, _ := utf8.DecodeRuneInString(raw)
		if unicode.IsUpper(r) {
			return "shift+" + string(unicode.ToLower(r)), nil
		}
		return raw, nil
	}

	var mods modifier
	var rest []string
	for _, part := range strings.Split(strings.ToLower(raw), "+") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if bit, ok := modifierAliases[part]; ok {
			mods |= bit
			continue
		}
		rest = append(rest, part)
	}
	if len(rest) == 0 {
		return "", fmt.Errorf("%q has no key after its modifiers", raw)
	}
	var b strings.Builder
	for _, m := range modifierNames {
		if mods&m.bit != 0 {
			b.WriteString(m.name)
			b.WriteByte('+')
		}
	}
	b.WriteString(strings.Join(rest, "+"))
	return b.String(), nil
}
