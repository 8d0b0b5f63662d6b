// Package taskbar maintains a live, deduplicated registry of top-level
// application windows reconciled against EWMH client-list snapshots.
//
// The package is window-system agnostic: all property reads go through the
// PropertySource and WindowInspector collaborators, and all state pushed to
// the surrounding application goes through the Observer. Query failures are
// expected (window managers implement EWMH partially, windows vanish between
// event delivery and handling) and always degrade to zero values.
package taskbar

import (
	"image"
	"time"
)

// Window is an opaque top-level window handle.
type Window uint32

// None is the null window sentinel.
const None Window = 0

// Pixmap is an opaque drawable handle used by legacy icon hints.
type Pixmap uint32

// AllDesktops is the desktop index meaning "visible on every desktop".
const AllDesktops uint32 = 0xFFFFFFFF

// StateFlags are the protocol window states tracked per task.
type StateFlags uint32

const (
	StateSkipTaskbar StateFlags = 1 << iota
	StateSkipPager
	StateSticky
	StateHidden
	StateShaded
)

// TypeFlags are the protocol window types tracked per task.
type TypeFlags uint32

const (
	TypeDesktop TypeFlags = 1 << iota
	TypeDock
	TypeToolbar
	TypeMenu
	TypeUtility
	TypeSplash
	TypeDialog
	TypeNormal
)

// RootKind identifies one of the root-window properties held by the Cache.
type RootKind int

const (
	KindCurrentDesktop RootKind = iota
	KindDesktopCount
	KindDesktopNames
	KindActiveWindow
	KindClientList
	KindStackingList

	kindCount
)

func (k RootKind) String() string {
	switch k {
	case KindCurrentDesktop:
		return "current-desktop"
	case KindDesktopCount:
		return "desktop-count"
	case KindDesktopNames:
		return "desktop-names"
	case KindActiveWindow:
		return "active-window"
	case KindClientList:
		return "client-list"
	case KindStackingList:
		return "stacking-list"
	}
	return "unknown"
}

// WindowKind identifies a per-window property change delivered to the
// registry.
type WindowKind int

const (
	WindowDesktop WindowKind = iota
	WindowTitle
	WindowLegacyHints
	WindowState
	WindowIcon
	WindowType
)

func (k WindowKind) String() string {
	switch k {
	case WindowDesktop:
		return "desktop"
	case WindowTitle:
		return "title"
	case WindowLegacyHints:
		return "legacy-hints"
	case WindowState:
		return "state"
	case WindowIcon:
		return "icon"
	case WindowType:
		return "type"
	}
	return "unknown"
}

// LegacyHints carries the pre-EWMH window manager hints still needed as an
// icon and urgency fallback.
type LegacyHints struct {
	Urgent     bool
	IconPixmap Pixmap
	IconMask   Pixmap
}

// PropertySource reads root-window scoped values. A false second return means
// the property is absent or malformed; callers fall back to zero values.
type PropertySource interface {
	CurrentDesktop() (uint32, bool)
	DesktopCount() (uint32, bool)
	DesktopNames() ([]string, bool)
	ActiveWindow() (Window, bool)
	ClientList() ([]Window, bool)
	StackingList() ([]Window, bool)
}

// WindowInspector reads per-window properties. Failures return zero values,
// never errors.
type WindowInspector interface {
	States(w Window) StateFlags
	Types(w Window) TypeFlags
	Desktop(w Window) (uint32, bool)
	Title(w Window) (string, bool)
	IconData(w Window) []uint32
	Hints(w Window) LegacyHints

	// PixmapImage converts a legacy icon pixmap to RGBA, PixmapMask a 1-bit
	// mask pixmap to an alpha bitmap.
	PixmapImage(p Pixmap) (*image.RGBA, bool)
	PixmapMask(p Pixmap) (*image.Alpha, bool)
}

// WindowWatcher subscribes and unsubscribes per-window property-change
// delivery. Every Watch issued by the registry is paired with an Unwatch on
// every removal path.
type WindowWatcher interface {
	Watch(w Window)
	Unwatch(w Window)
}

// Observer receives registry state changes. Callbacks run synchronously while
// the registry holds its lock: implementations must not call back into the
// registry and should treat the pushed task as read-only.
type Observer interface {
	TaskAdded(t *Task)
	TaskRemoved(t *Task)
	TaskVisibilityChanged(t *Task, visible bool)
	TaskFocusChanged(t *Task, focused bool)
	TaskIconChanged(t *Task)
	TaskTitleChanged(t *Task)
	TaskUrgencyChanged(t *Task, urgent bool)
	TaskFlash(t *Task, on bool)
}

// Settings are the registry-wide display options, fixed at construction.
type Settings struct {
	ShowAllDesktops bool
	ShowIconified   bool
	ShowMapped      bool
	AcceptSkipPager bool
	Tooltips        bool
	IconsOnly       bool
	MouseWheel      bool
	UrgencyFlash    bool
	FlashInterval   time.Duration
	IconSize        int
	MaxCellWidth    int
	MaxCellHeight   int
}

const (
	defaultFlashInterval = 500 * time.Millisecond
	defaultIconSize      = 24
)

func (s Settings) withDefaults() Settings {
	if s.FlashInterval <= 0 {
		s.FlashInterval = defaultFlashInterval
	}
	if s.IconSize <= 0 {
		s.IconSize = defaultIconSize
	}
	return s
}
