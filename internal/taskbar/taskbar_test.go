package taskbar

import (
	"image"
	"sync"
)

// fakeSource is a scriptable PropertySource with fetch counters.
type fakeSource struct {
	mu sync.Mutex

	currentDesktop   uint32
	currentDesktopOK bool
	desktopCount     uint32
	desktopCountOK   bool
	desktopNames     []string
	desktopNamesOK   bool
	activeWindow     Window
	activeWindowOK   bool
	clientList       []Window
	clientListOK     bool
	stackingList     []Window
	stackingListOK   bool
	fetches          map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{fetches: make(map[string]int)}
}

func (s *fakeSource) count(name string) {
	s.mu.Lock()
	s.fetches[name]++
	s.mu.Unlock()
}

func (s *fakeSource) CurrentDesktop() (uint32, bool) {
	s.count("current-desktop")
	return s.currentDesktop, s.currentDesktopOK
}

func (s *fakeSource) DesktopCount() (uint32, bool) {
	s.count("desktop-count")
	return s.desktopCount, s.desktopCountOK
}

func (s *fakeSource) DesktopNames() ([]string, bool) {
	s.count("desktop-names")
	return s.desktopNames, s.desktopNamesOK
}

func (s *fakeSource) ActiveWindow() (Window, bool) {
	s.count("active-window")
	return s.activeWindow, s.activeWindowOK
}

func (s *fakeSource) ClientList() ([]Window, bool) {
	s.count("client-list")
	return s.clientList, s.clientListOK
}

func (s *fakeSource) StackingList() ([]Window, bool) {
	s.count("stacking-list")
	return s.stackingList, s.stackingListOK
}

// fakeWindow is the scripted per-window state behind fakeInspector.
type fakeWindow struct {
	states     StateFlags
	types      TypeFlags
	desktop    uint32
	hasDesktop bool
	title      string
	iconData   []uint32
	hints      LegacyHints
}

type fakeInspector struct {
	windows     map[Window]*fakeWindow
	pixmaps     map[Pixmap]*image.RGBA
	masks       map[Pixmap]*image.Alpha
	pixmapReads int
}

func newFakeInspector() *fakeInspector {
	return &fakeInspector{
		windows: make(map[Window]*fakeWindow),
		pixmaps: make(map[Pixmap]*image.RGBA),
		masks:   make(map[Pixmap]*image.Alpha),
	}
}

func (i *fakeInspector) window(w Window) *fakeWindow {
	fw, ok := i.windows[w]
	if !ok {
		fw = &fakeWindow{}
		i.windows[w] = fw
	}
	return fw
}

func (i *fakeInspector) States(w Window) StateFlags {
	if fw, ok := i.windows[w]; ok {
		return fw.states
	}
	return 0
}

func (i *fakeInspector) Types(w Window) TypeFlags {
	if fw, ok := i.windows[w]; ok {
		return fw.types
	}
	return 0
}

func (i *fakeInspector) Desktop(w Window) (uint32, bool) {
	if fw, ok := i.windows[w]; ok && fw.hasDesktop {
		return fw.desktop, true
	}
	return 0, false
}

func (i *fakeInspector) Title(w Window) (string, bool) {
	if fw, ok := i.windows[w]; ok && fw.title != "" {
		return fw.title, true
	}
	return "", false
}

func (i *fakeInspector) IconData(w Window) []uint32 {
	if fw, ok := i.windows[w]; ok {
		return fw.iconData
	}
	return nil
}

func (i *fakeInspector) Hints(w Window) LegacyHints {
	if fw, ok := i.windows[w]; ok {
		return fw.hints
	}
	return LegacyHints{}
}

func (i *fakeInspector) PixmapImage(p Pixmap) (*image.RGBA, bool) {
	i.pixmapReads++
	img, ok := i.pixmaps[p]
	return img, ok
}

func (i *fakeInspector) PixmapMask(p Pixmap) (*image.Alpha, bool) {
	m, ok := i.masks[p]
	return m, ok
}

type watchCall struct {
	window Window
	watch  bool
}

type fakeWatcher struct {
	calls []watchCall
}

func (f *fakeWatcher) Watch(w Window)   { f.calls = append(f.calls, watchCall{w, true}) }
func (f *fakeWatcher) Unwatch(w Window) { f.calls = append(f.calls, watchCall{w, false}) }

func (f *fakeWatcher) watched() map[Window]bool {
	open := make(map[Window]bool)
	for _, c := range f.calls {
		if c.watch {
			open[c.window] = true
		} else {
			delete(open, c.window)
		}
	}
	return open
}

type observerEvent struct {
	kind   string
	window Window
	flag   bool
}

// recordingObserver appends every callback; guarded because flash ticks come
// from the timer goroutine.
type recordingObserver struct {
	mu     sync.Mutex
	events []observerEvent
	tasks  map[Window]*Task
}

func (o *recordingObserver) record(kind string, w Window, flag bool) {
	o.mu.Lock()
	o.events = append(o.events, observerEvent{kind, w, flag})
	o.mu.Unlock()
}

func (o *recordingObserver) TaskAdded(t *Task) {
	o.mu.Lock()
	if o.tasks == nil {
		o.tasks = make(map[Window]*Task)
	}
	o.tasks[t.Window()] = t
	o.mu.Unlock()
	o.record("added", t.Window(), false)
}
func (o *recordingObserver) TaskRemoved(t *Task) { o.record("removed", t.Window(), false) }
func (o *recordingObserver) TaskVisibilityChanged(t *Task, visible bool) {
	o.record("visibility", t.Window(), visible)
}
func (o *recordingObserver) TaskFocusChanged(t *Task, focused bool) {
	o.record("focus", t.Window(), focused)
}
func (o *recordingObserver) TaskIconChanged(t *Task)  { o.record("icon", t.Window(), false) }
func (o *recordingObserver) TaskTitleChanged(t *Task) { o.record("title", t.Window(), false) }
func (o *recordingObserver) TaskUrgencyChanged(t *Task, urgent bool) {
	o.record("urgency", t.Window(), urgent)
}
func (o *recordingObserver) TaskFlash(t *Task, on bool) { o.record("flash", t.Window(), on) }

func (o *recordingObserver) byKind(kind string) []observerEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []observerEvent
	for _, ev := range o.events {
		if ev.kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

type harness struct {
	source    *fakeSource
	inspector *fakeInspector
	watcher   *fakeWatcher
	observer  *recordingObserver
	cache     *Cache
	registry  *Registry
}

func newHarness(settings Settings, panel Window) *harness {
	source := newFakeSource()
	inspector := newFakeInspector()
	watcher := &fakeWatcher{}
	observer := &recordingObserver{}
	cache := NewCache(source)
	registry := NewRegistry(RegistryOptions{
		Cache:       cache,
		Inspector:   inspector,
		Watcher:     watcher,
		Observer:    observer,
		Settings:    settings,
		PanelWindow: panel,
	})
	cache.Subscribe(registry.RootProperty)
	return &harness{
		source:    source,
		inspector: inspector,
		watcher:   watcher,
		observer:  observer,
		cache:     cache,
		registry:  registry,
	}
}

func defaultSettings() Settings {
	return Settings{
		ShowIconified: true,
		ShowMapped:    true,
		UrgencyFlash:  true,
		IconSize:      16,
	}
}

// addWindow scripts a plain accepted window.
func (h *harness) addWindow(w Window, title string, desktop uint32) *fakeWindow {
	fw := h.inspector.window(w)
	fw.title = title
	fw.desktop = desktop
	fw.hasDesktop = true
	return fw
}
