package ui

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/grammarviz/internal/bindings"
	"github.com/unkn0wn-root/grammarviz/internal/config"
	"github.com/unkn0wn-root/grammarviz/internal/input"
	"github.com/unkn0wn-root/grammarviz/internal/session"
	"github.com/unkn0wn-root/grammarviz/internal/theme"
	"github.com/unkn0wn-root/grammarviz/internal/watcher"
)

var _ tea.Model = Model{}

type focusArea int

const (
	focusEditor focusArea = iota
	focusResults
)

const (
	brandLabel        = "grammarviz"
	editorPlaceholder = "Example:\nS \\to a [b] [c \\mid d] {e f}"
	inboxSize         = 64
	minPaneWidth      = 24
	chromeHeight      = 3
)

// Config wires the model to the session and its supporting services.
type Config struct {
	Controller *session.Controller
	Settings   config.Settings
	// SaveSettings persists theme and layout changes. Nil disables saving.
	SaveSettings func(config.Settings) error
	Bindings     *bindings.Map
	Themes       theme.Catalog
	Watcher      *watcher.Watcher
	GrammarPath  string
	Grammar      string
	Logger       *zap.Logger
	Clipboard    func(string) error
	Debounce     time.Duration
}

type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	ctrl    *session.Controller
	input   *input.Input
	inbox   chan tea.Msg
	watcher *watcher.Watcher
	log     *zap.Logger
	copy    func(string) error
	save    func(config.Settings) error

	settings config.Settings
	keys     *bindings.Map
	keyHelp  keyMap
	themes   theme.Catalog
	themeKey string
	th       theme.Theme

	editor  textarea.Model
	results viewport.Model
	spin    spinner.Model
	help    help.Model

	state           session.State
	focus           focusArea
	pendingChord    string
	showHelp        bool
	showTransformed bool
	showDiff        bool
	status          statusMsg
	grammarPath     string
	initialGrammar  string

	width  int
	height int
	ready  bool
}

func New(cfg Config) Model {
	ctx, cancel := context.WithCancel(context.Background())
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	keys := cfg.Bindings
	if keys == nil {
		keys = bindings.DefaultMap()
	}
	themes := cfg.Themes
	if len(themes.Keys()) == 0 {
		themes, _ = theme.LoadCatalog(nil)
	}
	themeKey := cfg.Settings.Theme
	def, ok := themes.Get(themeKey)
	if !ok {
		themeKey = theme.KeyDark
		def, _ = themes.Get(themeKey)
	}
	copyFn := cfg.Clipboard
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = cfg.Settings.Debounce.Std()
	}

	inbox := make(chan tea.Msg, inboxSize)
	// post never blocks the caller: Update itself commits file loads and
	// must not wait on its own inbox.
	post := func(msg tea.Msg) {
		select {
		case inbox <- msg:
		case <-ctx.Done():
		default:
			go func() {
				select {
				case inbox <- msg:
				case <-ctx.Done():
				}
			}()
		}
	}

	editor := textarea.New()
	editor.Placeholder = editorPlaceholder
	editor.ShowLineNumbers = true
	editor.CharLimit = 0
	editor.Focus()

	spin := spinner.New(spinner.WithSpinner(spinner.Dot))

	m := Model{
		ctx:            ctx,
		cancel:         cancel,
		ctrl:           cfg.Controller,
		inbox:          inbox,
		watcher:        cfg.Watcher,
		log:            log,
		copy:           copyFn,
		save:           cfg.SaveSettings,
		settings:       cfg.Settings,
		keys:           keys,
		keyHelp:        newKeyMap(keys),
		themes:         themes,
		themeKey:       themeKey,
		th:             def.Theme,
		editor:         editor,
		results:        viewport.New(0, 0),
		spin:           spin,
		help:           help.New(),
		focus:          focusEditor,
		grammarPath:    cfg.GrammarPath,
		initialGrammar: cfg.Grammar,
	}
	m.input = input.New(func(text string) {
		post(grammarCommittedMsg{text: text})
	}, input.WithDelay(debounce))
	if m.ctrl != nil {
		m.state = m.ctrl.Snapshot()
		m.ctrl.Subscribe(func(s session.State) {
			post(stateMsg{state: s})
		})
	}
	if m.watcher != nil {
		go func() {
			for evt := range m.watcher.Events() {
				post(fileChangedMsg{event: evt})
			}
		}()
	}
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, m.spin.Tick, m.nextInboxCmd()}
	switch {
	case m.grammarPath != "":
		cmds = append(cmds, loadFileCmd(m.grammarPath))
	case m.initialGrammar != "":
		grammar := m.initialGrammar
		cmds = append(cmds, func() tea.Msg { return fileLoadedMsg{data: []byte(grammar)} })
	}
	return tea.Batch(cmds...)
}

func (m *Model) nextInboxCmd() tea.Cmd {
	inbox, ctx := m.inbox, m.ctx
	return func() tea.Msg {
		select {
		case msg := <-inbox:
			return msg
		case <-ctx.Done():
			return nil
		}
	}
}

// Close stops pending work. The program calls it through the quit action;
// callers embedding the model must call it themselves.
func (m *Model) Close() {
	m.input.Close()
	m.cancel()
}
