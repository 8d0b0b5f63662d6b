package taskbar

import "image"

// Task is one tracked top-level application window. All fields are owned by
// the registry; accessors are safe to call from observer callbacks and from
// registry methods only.
type Task struct {
	window Window

	name          string
	iconifiedName string

	desktop   uint32
	iconified bool
	focused   bool
	urgent    bool
	states    StateFlags
	types     TypeFlags
	visible   bool

	icon *image.RGBA

	// gen is the mark of the last reconciliation pass that saw this window.
	gen uint64

	flashStop chan struct{}
	flashOn   bool
}

func (t *Task) Window() Window { return t.window }

// Name is the plain window title.
func (t *Task) Name() string { return t.name }

// IconifiedName is the bracket-decorated title shown while the window is
// iconified. It is set and cleared together with Name.
func (t *Task) IconifiedName() string { return t.iconifiedName }

// DisplayName is the title variant matching the current iconified state.
func (t *Task) DisplayName() string {
	if t.iconified {
		return t.iconifiedName
	}
	return t.name
}

func (t *Task) Desktop() uint32    { return t.desktop }
func (t *Task) Iconified() bool    { return t.iconified }
func (t *Task) Focused() bool      { return t.focused }
func (t *Task) Urgent() bool       { return t.urgent }
func (t *Task) States() StateFlags { return t.states }
func (t *Task) Types() TypeFlags   { return t.types }
func (t *Task) Visible() bool      { return t.visible }

// Icon is the resolved icon bitmap. Never nil after insertion: the resolver
// falls back to a shared generic icon.
func (t *Task) Icon() *image.RGBA { return t.icon }

// Flashing reports whether the urgency flash timer is running.
func (t *Task) Flashing() bool { return t.flashStop != nil }

// FlashOn reports the current phase of the urgency flash toggle.
func (t *Task) FlashOn() bool { return t.flashOn }

func (t *Task) setTitle(name string) {
	t.name = name
	t.iconifiedName = "[" + name + "]"
}

func (t *Task) clearTitle() {
	t.name = ""
	t.iconifiedName = ""
}

// TaskInfo is a point-in-time copy of a task, safe to hold outside the
// registry lock.
type TaskInfo struct {
	Window      uint32 `json:"window"`
	Title       string `json:"title"`
	Desktop     uint32 `json:"desktop"`
	AllDesktops bool   `json:"all_desktops"`
	Iconified   bool   `json:"iconified"`
	Focused     bool   `json:"focused"`
	Urgent      bool   `json:"urgent"`
	Visible     bool   `json:"visible"`
}

// Info snapshots the task. Valid from observer callbacks and registry
// methods, like the other accessors.
func (t *Task) Info() TaskInfo {
	return TaskInfo{
		Window:      uint32(t.window),
		Title:       t.DisplayName(),
		Desktop:     t.desktop,
		AllDesktops: t.desktop == AllDesktops,
		Iconified:   t.iconified,
		Focused:     t.focused,
		Urgent:      t.urgent,
		Visible:     t.visible,
	}
}
