package taskbar

import (
	"image"
	"log/slog"
	"sync"
)

// RegistryOptions wires a registry to its collaborators. Cache, Inspector and
// Settings are required; Watcher and Observer may be nil.
type RegistryOptions struct {
	Cache     *Cache
	Inspector WindowInspector
	Watcher   WindowWatcher
	Observer  Observer
	Settings  Settings

	// PanelWindow is the panel's own window handle. Focus moving to it is
	// bridged rather than treated as a regular focus change.
	PanelWindow Window
}

// Registry keeps the live window-to-task mapping consistent with the window
// manager's client list. All mutation is serialized behind one mutex because
// flash ticks and snapshot reads arrive from other goroutines.
type Registry struct {
	cache     *Cache
	inspector WindowInspector
	watcher   WindowWatcher
	observer  Observer
	settings  Settings
	panel     Window

	mu      sync.Mutex
	tasks   map[Window]*Task
	order   []Window
	focused *Task

	// focusReturn remembers the task that held focus before the user clicked
	// the panel itself, so a second click can re-iconify it.
	focusReturn *Task

	gen      uint64
	fallback *image.RGBA
	closed   bool
}

func NewRegistry(opts RegistryOptions) *Registry {
	settings := opts.Settings.withDefaults()
	return &Registry{
		cache:     opts.Cache,
		inspector: opts.Inspector,
		watcher:   opts.Watcher,
		observer:  opts.Observer,
		settings:  settings,
		panel:     opts.PanelWindow,
		tasks:     make(map[Window]*Task),
		fallback:  renderFallbackIcon(settings.IconSize),
	}
}

// Settings returns the immutable registry-wide settings.
func (r *Registry) Settings() Settings { return r.settings }

// RootProperty is the cache subscriber entry point: it reacts to one
// invalidated root property. Registered via Cache.Subscribe, so the cache
// slot is already fresh-or-invalid when it runs.
func (r *Registry) RootProperty(kind RootKind) {
	switch kind {
	case KindClientList:
		r.Reconcile(r.cache.ClientList())
	case KindActiveWindow:
		active := r.cache.ActiveWindow()
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.closed {
			return
		}
		r.setActiveLocked(active)
	case KindCurrentDesktop:
		current := r.cache.CurrentDesktop()
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.closed {
			return
		}
		r.refreshVisibilityLocked(current)
	}
}

// Prime performs the initial reconciliation and focus sync against the
// current cache state.
func (r *Registry) Prime() {
	r.RootProperty(KindClientList)
	r.RootProperty(KindActiveWindow)
}

// Reconcile brings the registry in line with a fresh client-list snapshot:
// windows already tracked are marked with the new generation, new accepted
// windows gain a fully-populated task, and tasks whose window dropped out of
// the snapshot are swept exactly once.
func (r *Registry) Reconcile(list []Window) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	r.gen++
	gen := r.gen
	added, kept := 0, 0

	order := make([]Window, 0, len(list))
	for _, w := range list {
		if t, ok := r.tasks[w]; ok {
			t.gen = gen
			order = append(order, w)
			kept++
			continue
		}
		t := r.insertLocked(w, gen)
		if t == nil {
			continue
		}
		order = append(order, w)
		added++
	}
	r.order = order

	// Sweep unmarked entries. Collect first: removal mutates the table.
	var dead []*Task
	for _, t := range r.tasks {
		if t.gen != gen {
			dead = append(dead, t)
		}
	}
	for _, t := range dead {
		r.removeLocked(t)
	}

	r.refreshVisibilityLocked(r.cache.CurrentDesktop())

	slog.Debug("Reconciled client list",
		"windows", len(list), "tracked", len(r.tasks),
		"added", added, "kept", kept, "removed", len(dead))
}

// insertLocked creates and registers a task for a new window, or returns nil
// if the acceptance filters reject it.
func (r *Registry) insertLocked(w Window, gen uint64) *Task {
	states := r.inspector.States(w)
	if !AcceptsState(states, r.settings.AcceptSkipPager) {
		return nil
	}
	types := r.inspector.Types(w)
	if !AcceptsType(types) {
		return nil
	}

	t := &Task{
		window: w,
		gen:    gen,
		states: states,
		types:  types,
	}
	t.iconified = states&StateHidden != 0

	desktop, ok := r.inspector.Desktop(w)
	if !ok {
		desktop = r.cache.CurrentDesktop()
	}
	t.desktop = desktop

	name, _ := r.inspector.Title(w)
	t.setTitle(name)

	hints := r.inspector.Hints(w)
	t.icon = r.resolveIconLocked(w, hints)

	r.tasks[w] = t
	if r.watcher != nil {
		r.watcher.Watch(w)
	}
	if r.observer != nil {
		r.observer.TaskAdded(t)
	}

	if hints.Urgent {
		r.setUrgentLocked(t, true)
	}
	return t
}

// removeLocked tears a task down: flash timer first, then the property
// observer, then state. The ordering is load-bearing: a flash tick must never
// find a task that is already gone from the table while its timer lives.
func (r *Registry) removeLocked(t *Task) {
	r.stopFlashLocked(t)
	if r.watcher != nil {
		r.watcher.Unwatch(t.window)
	}
	delete(r.tasks, t.window)
	if r.focused == t {
		r.focused = nil
	}
	if r.focusReturn == t {
		r.focusReturn = nil
	}
	t.clearTitle()
	if t.icon != r.fallback {
		t.icon = nil
	}
	if r.observer != nil {
		r.observer.TaskRemoved(t)
	}
}

// WindowProperty handles a live property change on one window. Unknown
// windows are a no-op: they were reaped or never accepted.
func (r *Registry) WindowProperty(w Window, kind WindowKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	t, ok := r.tasks[w]
	if !ok {
		return
	}

	switch kind {
	case WindowDesktop:
		if desktop, ok := r.inspector.Desktop(w); ok {
			t.desktop = desktop
		}
		r.refreshVisibilityLocked(r.cache.CurrentDesktop())

	case WindowTitle:
		name, _ := r.inspector.Title(w)
		t.setTitle(name)
		if r.observer != nil {
			r.observer.TaskTitleChanged(t)
		}

	case WindowLegacyHints:
		hints := r.inspector.Hints(w)
		if icon, ok := r.legacyIconLocked(hints); ok {
			t.icon = icon
			if r.observer != nil {
				r.observer.TaskIconChanged(t)
			}
		}
		r.setUrgentLocked(t, hints.Urgent)

	case WindowState:
		states := r.inspector.States(w)
		if !AcceptsState(states, r.settings.AcceptSkipPager) {
			r.removeLocked(t)
			return
		}
		t.states = states
		iconified := states&StateHidden != 0
		if iconified != t.iconified {
			t.iconified = iconified
			if r.observer != nil {
				r.observer.TaskTitleChanged(t)
			}
			r.refreshVisibilityLocked(r.cache.CurrentDesktop())
		}

	case WindowIcon:
		if icon := r.protocolIconLocked(w); icon != nil {
			t.icon = icon
			if r.observer != nil {
				r.observer.TaskIconChanged(t)
			}
		}

	case WindowType:
		types := r.inspector.Types(w)
		if !AcceptsType(types) {
			r.removeLocked(t)
			return
		}
		t.types = types
	}
}

// setActiveLocked applies an active-window change. At most one task holds the
// focused flag; focus moving to the panel's own window parks the previously
// focused task in focusReturn instead of transferring focus.
func (r *Registry) setActiveLocked(active Window) {
	if r.panel != None && active == r.panel {
		if r.focused != nil {
			r.focusReturn = r.focused
			r.focused.focused = false
			if r.observer != nil {
				r.observer.TaskFocusChanged(r.focused, false)
			}
			r.focused = nil
		}
		return
	}

	next := r.tasks[active]
	if next == r.focused {
		return
	}
	if r.focused != nil {
		r.focused.focused = false
		if r.observer != nil {
			r.observer.TaskFocusChanged(r.focused, false)
		}
	}
	r.focused = next
	if next != nil {
		next.focused = true
		r.focusReturn = nil
		if r.observer != nil {
			r.observer.TaskFocusChanged(next, true)
		}
	}
}

func (r *Registry) refreshVisibilityLocked(currentDesktop uint32) {
	for _, t := range r.tasks {
		visible := IsVisible(t.desktop, t.iconified, r.settings, currentDesktop)
		if visible != t.visible {
			t.visible = visible
			if r.observer != nil {
				r.observer.TaskVisibilityChanged(t, visible)
			}
		}
	}
}

func (r *Registry) setUrgentLocked(t *Task, urgent bool) {
	if urgent == t.urgent {
		return
	}
	t.urgent = urgent
	if r.observer != nil {
		r.observer.TaskUrgencyChanged(t, urgent)
	}
	if !r.settings.UrgencyFlash {
		return
	}
	if urgent {
		r.startFlashLocked(t)
	} else {
		r.stopFlashLocked(t)
	}
}

// Focused returns the handle of the focused task, None when no task has
// focus.
func (r *Registry) Focused() Window {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.focused == nil {
		return None
	}
	return r.focused.window
}

// FocusReturn returns the task remembered from before focus moved to the
// panel itself, None when there is none.
func (r *Registry) FocusReturn() Window {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.focusReturn == nil {
		return None
	}
	return r.focusReturn.window
}

// Len returns the number of tracked tasks.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}

// Snapshot copies the tracked tasks in client-list order.
func (r *Registry) Snapshot() []TaskInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	infos := make([]TaskInfo, 0, len(r.tasks))
	for _, w := range r.order {
		if t, ok := r.tasks[w]; ok {
			infos = append(infos, t.Info())
		}
	}
	return infos
}

// Close cancels every flash timer and detaches every window observer. The
// registry ignores further events afterwards.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	for _, t := range r.tasks {
		r.stopFlashLocked(t)
		if r.watcher != nil {
			r.watcher.Unwatch(t.window)
		}
	}
	r.tasks = make(map[Window]*Task)
	r.order = nil
	r.focused = nil
	r.focusReturn = nil
	r.closed = true
}
