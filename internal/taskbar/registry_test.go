package taskbar

import (
	"testing"
	"time"
)

func TestReconcileAddsAcceptedWindows(t *testing.T) {
	h := newHarness(defaultSettings(), None)
	h.addWindow(1, "terminal", 0)
	h.addWindow(2, "browser", 0)

	h.registry.Reconcile([]Window{1, 2})

	if got := h.registry.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}
	if got := len(h.observer.byKind("added")); got != 2 {
		t.Errorf("added events = %d, want 2", got)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	h := newHarness(defaultSettings(), None)
	h.addWindow(1, "terminal", 0)
	h.addWindow(2, "browser", 0)
	list := []Window{1, 2}

	h.registry.Reconcile(list)
	before := len(h.observer.byKind("added"))

	h.registry.Reconcile(list)

	if got := len(h.observer.byKind("added")); got != before {
		t.Errorf("second reconcile added tasks: %d events, want %d", got, before)
	}
	if got := len(h.observer.byKind("removed")); got != 0 {
		t.Errorf("second reconcile removed tasks: %d events, want 0", got)
	}
}

// reconcile(A); reconcile(B) leaves exactly the accepted windows of B, and
// windows in both snapshots keep their task object.
func TestReconcileMarkAndSweep(t *testing.T) {
	h := newHarness(defaultSettings(), None)
	h.addWindow(1, "w1", 0)
	h.addWindow(2, "w2", 0)
	h.addWindow(3, "w3", 0)

	h.registry.Reconcile([]Window{1, 2})
	kept := h.observer.tasks[2]

	h.registry.Reconcile([]Window{2, 3})

	snap := h.registry.Snapshot()
	if len(snap) != 2 || snap[0].Window != 2 || snap[1].Window != 3 {
		t.Fatalf("registry = %+v, want windows [2 3]", snap)
	}
	removed := h.observer.byKind("removed")
	if len(removed) != 1 || removed[0].window != 1 {
		t.Errorf("removed = %+v, want window 1 only", removed)
	}
	if h.observer.tasks[2] != kept {
		t.Error("task for window 2 was recreated, want identical object across passes")
	}
	if kept.Name() != "w2" {
		t.Errorf("surviving task title = %q, want unchanged %q", kept.Name(), "w2")
	}
}

func TestSkipTaskbarWindowNeverTracked(t *testing.T) {
	h := newHarness(defaultSettings(), None)
	fw := h.addWindow(1, "hidden", 0)
	fw.states = StateSkipTaskbar
	fw.types = TypeNormal

	h.registry.Reconcile([]Window{1})

	if got := h.registry.Len(); got != 0 {
		t.Errorf("Len() = %d, want 0: skip-taskbar windows are never tracked", got)
	}
}

func TestRejectedTypesNotTracked(t *testing.T) {
	h := newHarness(defaultSettings(), None)
	h.addWindow(1, "desktop", 0).types = TypeDesktop
	h.addWindow(2, "dock", 0).types = TypeDock
	h.addWindow(3, "splash", 0).types = TypeSplash
	h.addWindow(4, "app", 0).types = TypeNormal

	h.registry.Reconcile([]Window{1, 2, 3, 4})

	snap := h.registry.Snapshot()
	if len(snap) != 1 || snap[0].Window != 4 {
		t.Errorf("registry = %+v, want only window 4", snap)
	}
}

func TestWatcherPairing(t *testing.T) {
	h := newHarness(defaultSettings(), None)
	h.addWindow(1, "a", 0)
	h.addWindow(2, "b", 0)

	h.registry.Reconcile([]Window{1, 2})
	h.registry.Reconcile([]Window{2})
	h.registry.Close()

	if open := h.watcher.watched(); len(open) != 0 {
		t.Errorf("dangling watches after close: %v", open)
	}
}

func TestWindowPropertyUnknownWindowIsNoop(t *testing.T) {
	h := newHarness(defaultSettings(), None)
	h.registry.WindowProperty(99, WindowTitle)
	if got := len(h.observer.events); got != 0 {
		t.Errorf("events = %d, want 0 for untracked window", got)
	}
}

func TestTitleChangeUpdatesBothVariants(t *testing.T) {
	h := newHarness(defaultSettings(), None)
	fw := h.addWindow(1, "old", 0)
	h.registry.Reconcile([]Window{1})

	fw.title = "new"
	h.registry.WindowProperty(1, WindowTitle)

	task := h.observer.tasks[1]
	if task.Name() != "new" || task.IconifiedName() != "[new]" {
		t.Errorf("titles = %q/%q, want new/[new]", task.Name(), task.IconifiedName())
	}
	if got := len(h.observer.byKind("title")); got != 1 {
		t.Errorf("title events = %d, want 1", got)
	}
}

func TestStateChangeToSkipTaskbarRemovesTask(t *testing.T) {
	h := newHarness(defaultSettings(), None)
	fw := h.addWindow(1, "app", 0)
	h.registry.Reconcile([]Window{1})

	fw.states = StateSkipTaskbar
	h.registry.WindowProperty(1, WindowState)

	if got := h.registry.Len(); got != 0 {
		t.Fatalf("Len() = %d, want 0 after state rejection", got)
	}
	if got := len(h.observer.byKind("removed")); got != 1 {
		t.Errorf("removed events = %d, want 1", got)
	}
	if open := h.watcher.watched(); len(open) != 0 {
		t.Errorf("dangling watches after live removal: %v", open)
	}
}

func TestTypeChangeToDockRemovesTask(t *testing.T) {
	h := newHarness(defaultSettings(), None)
	fw := h.addWindow(1, "app", 0)
	h.registry.Reconcile([]Window{1})

	fw.types = TypeDock
	h.registry.WindowProperty(1, WindowType)

	if got := h.registry.Len(); got != 0 {
		t.Errorf("Len() = %d, want 0 after type rejection", got)
	}
}

func TestIconifyTogglesDisplayName(t *testing.T) {
	h := newHarness(defaultSettings(), None)
	fw := h.addWindow(1, "editor", 0)
	h.registry.Reconcile([]Window{1})
	task := h.observer.tasks[1]

	fw.states = StateHidden
	h.registry.WindowProperty(1, WindowState)
	if !task.Iconified() || task.DisplayName() != "[editor]" {
		t.Errorf("iconified=%v display=%q, want true/[editor]", task.Iconified(), task.DisplayName())
	}

	fw.states = 0
	h.registry.WindowProperty(1, WindowState)
	if task.Iconified() || task.DisplayName() != "editor" {
		t.Errorf("iconified=%v display=%q, want false/editor", task.Iconified(), task.DisplayName())
	}
}

func TestFocusExclusivity(t *testing.T) {
	h := newHarness(defaultSettings(), None)
	h.addWindow(1, "a", 0)
	h.addWindow(2, "b", 0)
	h.addWindow(3, "c", 0)
	h.source.clientList, h.source.clientListOK = []Window{1, 2, 3}, true
	h.cache.Trigger(KindClientList)

	for _, active := range []Window{1, 2, 3, 2, 1, 3} {
		h.source.activeWindow, h.source.activeWindowOK = active, true
		h.cache.Trigger(KindActiveWindow)

		focused := 0
		for _, info := range h.registry.Snapshot() {
			if info.Focused {
				focused++
			}
		}
		if focused > 1 {
			t.Fatalf("%d tasks focused after activating %d, want at most 1", focused, active)
		}
		if got := h.registry.Focused(); got != active {
			t.Errorf("Focused() = %d, want %d", got, active)
		}
	}
}

func TestFocusMovesToPanelWindow(t *testing.T) {
	const panel Window = 100
	h := newHarness(defaultSettings(), panel)
	h.addWindow(1, "a", 0)
	h.source.clientList, h.source.clientListOK = []Window{1}, true
	h.cache.Trigger(KindClientList)

	h.source.activeWindow, h.source.activeWindowOK = 1, true
	h.cache.Trigger(KindActiveWindow)

	h.source.activeWindow = panel
	h.cache.Trigger(KindActiveWindow)

	if got := h.registry.Focused(); got != None {
		t.Errorf("Focused() = %d, want None while panel is active", got)
	}
	if got := h.registry.FocusReturn(); got != 1 {
		t.Errorf("FocusReturn() = %d, want 1", got)
	}

	// Focusing a real task again clears the remembered return target.
	h.source.activeWindow = 1
	h.cache.Trigger(KindActiveWindow)
	if got := h.registry.FocusReturn(); got != None {
		t.Errorf("FocusReturn() = %d, want None after refocus", got)
	}
}

func TestUrgencyStartsAndStopsFlash(t *testing.T) {
	settings := defaultSettings()
	settings.FlashInterval = 5 * time.Millisecond
	h := newHarness(settings, None)
	fw := h.addWindow(1, "chat", 0)
	h.registry.Reconcile([]Window{1})
	task := h.observer.tasks[1]

	fw.hints.Urgent = true
	h.registry.WindowProperty(1, WindowLegacyHints)
	if !task.Flashing() {
		t.Fatal("flash did not start on urgency")
	}

	// Idempotent start: a second urgency report keeps the same timer.
	h.registry.WindowProperty(1, WindowLegacyHints)

	deadline := time.Now().Add(time.Second)
	for len(h.observer.byKind("flash")) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no flash toggles observed")
		}
		time.Sleep(time.Millisecond)
	}

	fw.hints.Urgent = false
	h.registry.WindowProperty(1, WindowLegacyHints)
	if task.Flashing() {
		t.Fatal("flash still running after urgency cleared")
	}

	// No further toggles once cancelled.
	time.Sleep(20 * time.Millisecond)
	count := len(h.observer.byKind("flash"))
	time.Sleep(30 * time.Millisecond)
	if got := len(h.observer.byKind("flash")); got != count {
		t.Errorf("flash toggles continued after cancel: %d -> %d", count, got)
	}
}

func TestRemovalCancelsFlash(t *testing.T) {
	settings := defaultSettings()
	settings.FlashInterval = 5 * time.Millisecond
	h := newHarness(settings, None)
	fw := h.addWindow(1, "chat", 0)
	fw.hints.Urgent = true
	h.registry.Reconcile([]Window{1})
	task := h.observer.tasks[1]
	if !task.Flashing() {
		t.Fatal("flash did not start for urgent window at insertion")
	}

	h.registry.Reconcile(nil)

	if task.Flashing() {
		t.Error("flash timer survived task removal")
	}
	time.Sleep(20 * time.Millisecond)
	count := len(h.observer.byKind("flash"))
	time.Sleep(30 * time.Millisecond)
	if got := len(h.observer.byKind("flash")); got != count {
		t.Errorf("flash toggles continued after removal: %d -> %d", count, got)
	}
}

func TestDesktopFallsBackToCurrentDesktop(t *testing.T) {
	h := newHarness(defaultSettings(), None)
	fw := h.inspector.window(1)
	fw.title = "app"
	// No _NET_WM_DESKTOP on the window.
	h.source.currentDesktop, h.source.currentDesktopOK = 5, true

	h.registry.Reconcile([]Window{1})

	snap := h.registry.Snapshot()
	if len(snap) != 1 || snap[0].Desktop != 5 {
		t.Errorf("snapshot = %+v, want desktop 5", snap)
	}
}

func TestSnapshotKeepsClientListOrder(t *testing.T) {
	h := newHarness(defaultSettings(), None)
	h.addWindow(3, "c", 0)
	h.addWindow(1, "a", 0)
	h.addWindow(2, "b", 0)

	h.registry.Reconcile([]Window{3, 1, 2})

	snap := h.registry.Snapshot()
	want := []uint32{3, 1, 2}
	for i, info := range snap {
		if info.Window != want[i] {
			t.Fatalf("snapshot order = %+v, want %v", snap, want)
		}
	}
}
