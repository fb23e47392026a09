package bindings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultMapContainsExpectedBindings(t *testing.T) {
	m := DefaultMap()

	if binding, ok := m.MatchSingle("right"); !ok || binding.Action != ActionStepNext {
		t.Fatalf("expected right -> ActionStepNext, got %+v (ok=%v)", binding, ok)
	}

	if binding, ok := m.MatchSingle("ctrl+s"); !ok || binding.Action != ActionSubmit {
		t.Fatalf("expected ctrl+s -> ActionSubmit, got %+v (ok=%v)", binding, ok)
	}

	if binding, ok := m.MatchSingle(NormalizeKeyString("G")); !ok || binding.Action != ActionStepResult {
		t.Fatalf("expected G -> ActionStepResult, got %+v (ok=%v)", binding, ok)
	}

	if binding, ok := m.MatchSingle(NormalizeKeyString("?")); !ok || binding.Action != ActionToggleHelp {
		t.Fatalf("expected ? -> ActionToggleHelp, got %+v (ok=%v)", binding, ok)
	}

	if binding, ok := m.ResolveChord("g", "g"); !ok || binding.Action != ActionStepReset {
		t.Fatalf("expected g g -> ActionStepReset, got %+v (ok=%v)", binding, ok)
	}

	if !m.HasChordPrefix("g") {
		t.Fatalf("expected HasChordPrefix('g') to be true")
	}
	if got := m.Label(ActionStepReset); got != "r / g g" {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestLoadOverridesBindings(t *testing.T) {
	dir := t.TempDir()
	payload := `
[bindings]
step_next = ["ctrl+n", "j"]
toggle_theme = ["ctrl+t"]
`
	path := filepath.Join(dir, "bindings.toml")
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write bindings: %v", err)
	}

	m, src, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if src.Path != path || src.Format != FormatTOML {
		t.Fatalf("unexpected source %+v", src)
	}

	if binding, ok := m.MatchSingle("right"); ok {
		t.Fatalf("expected right to be unbound, got %v", binding.Action)
	}
	if binding, ok := m.MatchSingle("j"); !ok || binding.Action != ActionStepNext {
		t.Fatalf("expected j -> step_next, got %+v (ok=%v)", binding, ok)
	}
	if binding, ok := m.MatchSingle("ctrl+t"); !ok || binding.Action != ActionToggleTheme {
		t.Fatalf("expected ctrl+t -> toggle_theme, got %+v (ok=%v)", binding, ok)
	}
}

func TestLoadRejectsConflictingBindings(t *testing.T) {
	dir := t.TempDir()
	payload := `
[bindings]
step_next = ["x"]
step_prev = ["x"]
`
	path := filepath.Join(dir, "bindings.toml")
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write bindings: %v", err)
	}

	if _, _, err := Load(dir); err == nil {
		t.Fatal("expected conflict error, got nil")
	}
}

func TestLoadRejectsChordSubmit(t *testing.T) {
	dir := t.TempDir()
	payload := `{"bindings": {"submit": ["ctrl+x ctrl+s"]}}`
	if err := os.WriteFile(filepath.Join(dir, "bindings.json"), []byte(payload), 0o644); err != nil {
		t.Fatalf("write bindings: %v", err)
	}
	if _, _, err := Load(dir); err == nil {
		t.Fatal("expected single-step error for submit")
	}
}

func TestLoadReadsYAML(t *testing.T) {
	dir := t.TempDir()
	payload := "bindings:\n  quit: [\"ctrl+q\"]\n  step_reset: [\"z z\"]\n"
	if err := os.WriteFile(filepath.Join(dir, "bindings.yaml"), []byte(payload), 0o644); err != nil {
		t.Fatalf("write bindings: %v", err)
	}
	m, src, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if src.Format != FormatYAML {
		t.Fatalf("expected yaml source, got %+v", src)
	}
	if b, ok := m.MatchSingle("ctrl+q"); !ok || b.Action != ActionQuit {
		t.Fatalf("expected ctrl+q -> quit, got %+v (ok=%v)", b, ok)
	}
	if _, ok := m.MatchSingle("q"); ok {
		t.Fatal("expected q to be unbound after override")
	}
	if m.HasChordPrefix("g") {
		t.Fatal("expected g g chord to be replaced")
	}
	if b, ok := m.ResolveChord("z", "z"); !ok || b.Action != ActionStepReset {
		t.Fatalf("expected z z -> step_reset, got %+v (ok=%v)", b, ok)
	}
}

func TestLoadRejectsUnknownAction(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bindings.toml"), []byte("[bindings]\nlaunch = [\"x\"]\n"), 0o644); err != nil {
		t.Fatalf("write bindings: %v", err)
	}
	if _, _, err := Load(dir); err == nil {
		t.Fatal("expected unknown action error")
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	m, src, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if src.Path != filepath.Join(dir, "bindings.toml") {
		t.Fatalf("unexpected default source %q", src.Path)
	}
	if b, ok := m.MatchSingle("l"); !ok || b.Action != ActionStepNext {
		t.Fatalf("expected default l binding, got %+v (ok=%v)", b, ok)
	}
}

func TestNormalizeKeyString(t *testing.T) {
	cases := map[string]string{
		"G":              "shift+g",
		"?":              "shift+/",
		"Ctrl+S":         "ctrl+s",
		"shift+alt+Left": "alt+shift+left",
		"option+x":       "alt+x",
		"]":              "]",
		"ctrl+":          "",
	}
	for in, want := range cases {
		if got := NormalizeKeyString(in); got != want {
			t.Fatalf("NormalizeKeyString(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadRejectsChordLeaderBoundAlone(t *testing.T) {
	dir := t.TempDir()
	payload := "[bindings]\ntoggle_theme = [\"g\"]\n"
	if err := os.WriteFile(filepath.Join(dir, "bindings.toml"), []byte(payload), 0o644); err != nil {
		t.Fatalf("write bindings: %v", err)
	}
	if _, _, err := Load(dir); err == nil {
		t.Fatal("expected g to conflict with the g g chord")
	}
}

func TestHelpOrderCoversEveryAction(t *testing.T) {
	if len(HelpOrder()) != len(KnownActions()) {
		t.Fatalf("help order lists %d actions, want %d", len(HelpOrder()), len(KnownActions()))
	}
	for _, id := range HelpOrder() {
		if Describe(id) == "" {
			t.Fatalf("action %s has no description", id)
		}
	}
}
