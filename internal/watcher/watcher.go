package watcher

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

type EventKind int

const (
	EventChanged EventKind = iota
	EventMissing
)

func (k EventKind) String() string {
	if k == EventMissing {
		return "missing"
	}
	return "changed"
}

// Event reports a tracked grammar file that changed on disk. Data holds the
// new contents for EventChanged.
type Event struct {
	Path string
	Kind EventKind
	Prev Fingerprint
	Curr Fingerprint
	Data []byte
}

type Options struct {
	// Interval is the fallback poll period for filesystems that never
	// deliver notifications.
	Interval time.Duration
	// Settle delays the check after a notification so an editor's
	// write-then-rename burst is read once.
	Settle time.Duration
	Buffer int
	Logger *zap.Logger
}

const (
	defaultInterval = 2 * time.Second
	defaultSettle   = 100 * time.Millisecond
	defaultBuffer   = 16
)

type tracked struct {
	fp      Fingerprint
	missing bool
}

// Watcher follows grammar files through fsnotify on their parent
// directories plus a slow poll. Events are dropped, not queued, when the
// consumer falls behind.
type Watcher struct {
	opts   Options
	log    *zap.Logger
	notify *fsnotify.Watcher
	out    chan Event

	mu      sync.Mutex
	files   map[string]*tracked
	dirRefs map[string]int
	running bool
	closed  bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// New creates a watcher. Without fsnotify support it only polls.
func New(opts Options) *Watcher {
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	if opts.Settle <= 0 {
		opts.Settle = defaultSettle
	}
	if opts.Buffer <= 0 {
		opts.Buffer = defaultBuffer
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	w := &Watcher{
		opts:    opts,
		log:     log,
		out:     make(chan Event, opts.Buffer),
		files:   make(map[string]*tracked),
		dirRefs: make(map[string]int),
		done:    make(chan struct{}),
	}
	if n, err := fsnotify.NewWatcher(); err != nil {
		log.Warn("file notifications unavailable, polling only", zap.Error(err))
	} else {
		w.notify = n
	}
	return w
}

func (w *Watcher) Events() <-chan Event { return w.out }

// Start launches the notification and poll loop. Calling it twice, or
// after Stop, does nothing.
func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running || w.closed {
		return
	}
	w.running = true
	w.wg.Add(1)
	go w.loop()
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	var (
		events <-chan fsnotify.Event
		errs   <-chan error
	)
	if w.notify != nil {
		events, errs = w.notify.Events, w.notify.Errors
	}
	poll := time.NewTicker(w.opts.Interval)
	defer poll.Stop()
	settle := time.NewTimer(w.opts.Settle)
	settle.Stop()
	pending := make(map[string]struct{})

	for {
		select {
		case <-w.done:
			settle.Stop()
			return
		case <-poll.C:
			w.Scan()
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if path, ok := w.relevant(ev); ok {
				pending[path] = struct{}{}
				settle.Reset(w.opts.Settle)
			}
		case <-settle.C:
			for path := range pending {
				w.probe(path)
				delete(pending, path)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			w.log.Debug("file notification error", zap.Error(err))
		}
	}
}

// Stop ends the loop and closes Events. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.done)
	w.mu.Unlock()

	w.wg.Wait()
	if w.notify != nil {
		_ = w.notify.Close()
	}
	close(w.out)
}

// Track starts watching path. data is the content the caller already shows,
// so only later edits are reported.
func (w *Watcher) Track(path string, data []byte) {
	path, ok := clean(path)
	if !ok {
		return
	}
	info, _ := os.Stat(path)
	fp := fingerprint(info, data)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if _, known := w.files[path]; !known {
		w.watchDir(filepath.Dir(path), 1)
	}
	w.files[path] = &tracked{fp: fp}
}

func (w *Watcher) Forget(path string) {
	path, ok := clean(path)
	if !ok {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, known := w.files[path]; known {
		delete(w.files, path)
		w.watchDir(filepath.Dir(path), -1)
	}
}

// watchDir adjusts the reference count of dir. The directory is watched
// rather than the file because editors often save by rename. Callers hold mu.
func (w *Watcher) watchDir(dir string, delta int) {
	before := w.dirRefs[dir]
	after := before + delta
	if after <= 0 {
		delete(w.dirRefs, dir)
	} else {
		w.dirRefs[dir] = after
	}
	if w.notify == nil {
		return
	}
	switch {
	case before == 0 && after > 0:
		if err := w.notify.Add(dir); err != nil {
			w.log.Debug("watch directory", zap.String("dir", dir), zap.Error(err))
		}
	case before > 0 && after <= 0:
		_ = w.notify.Remove(dir)
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) (string, bool) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return "", false
	}
	path, ok := clean(ev.Name)
	if !ok {
		return "", false
	}
	w.mu.Lock()
	_, known := w.files[path]
	w.mu.Unlock()
	return path, known
}

// Scan checks every tracked file once.
func (w *Watcher) Scan() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.files))
	for p := range w.files {
		paths = append(paths, p)
	}
	w.mu.Unlock()
	for _, p := range paths {
		w.probe(p)
	}
}

// probe compares path against its recorded fingerprint and emits at most
// one event. A file stays reported as missing until it reappears.
func (w *Watcher) probe(path string) {
	w.mu.Lock()
	t, ok := w.files[path]
	var prev tracked
	if ok {
		prev = *t
	}
	w.mu.Unlock()
	if !ok {
		return
	}

	info, err := os.Stat(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return
	}
	var data []byte
	if err == nil {
		if !prev.missing && prev.fp.unchanged(info) {
			return
		}
		data, err = os.ReadFile(path)
	}
	if err != nil {
		if prev.missing {
			return
		}
		w.commit(path, prev.fp, true)
		w.emit(Event{Path: path, Kind: EventMissing, Prev: prev.fp})
		return
	}

	next := fingerprint(info, data)
	w.commit(path, next, false)
	if !prev.missing && next.Hash == prev.fp.Hash {
		return
	}
	w.emit(Event{Path: path, Kind: EventChanged, Prev: prev.fp, Curr: next, Data: data})
}

func (w *Watcher) commit(path string, fp Fingerprint, missing bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.files[path]; ok {
		t.fp = fp
		t.missing = missing
	}
}

func (w *Watcher) emit(evt Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	select {
	case w.out <- evt:
	default:
		w.log.Debug("dropping file event", zap.String("path", evt.Path), zap.Stringer("kind", evt.Kind))
	}
}

func clean(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	c := filepath.Clean(path)
	return c, c != "."
}
