package taskbar

import "testing"

func TestCacheLazyFetch(t *testing.T) {
	source := newFakeSource()
	source.currentDesktop, source.currentDesktopOK = 3, true
	cache := NewCache(source)

	if got := cache.CurrentDesktop(); got != 3 {
		t.Fatalf("CurrentDesktop() = %d, want 3", got)
	}
	cache.CurrentDesktop()
	cache.CurrentDesktop()
	if source.fetches["current-desktop"] != 1 {
		t.Errorf("expected a single fetch, got %d", source.fetches["current-desktop"])
	}
}

func TestCacheInvalidationIsPerKind(t *testing.T) {
	source := newFakeSource()
	source.currentDesktop, source.currentDesktopOK = 1, true
	source.desktopCount, source.desktopCountOK = 4, true
	cache := NewCache(source)

	cache.CurrentDesktop()
	cache.DesktopCount()

	cache.Trigger(KindCurrentDesktop)
	source.currentDesktop = 2
	source.desktopCount = 9

	if got := cache.CurrentDesktop(); got != 2 {
		t.Errorf("CurrentDesktop() after invalidation = %d, want 2", got)
	}
	// Desktop count slot was untouched, so the stale value survives.
	if got := cache.DesktopCount(); got != 4 {
		t.Errorf("DesktopCount() = %d, want cached 4", got)
	}
	if source.fetches["desktop-count"] != 1 {
		t.Errorf("desktop-count refetched %d times, want 1", source.fetches["desktop-count"])
	}
}

func TestCacheQueryFailureDegradesToDefaults(t *testing.T) {
	cache := NewCache(newFakeSource())

	if got := cache.CurrentDesktop(); got != 0 {
		t.Errorf("CurrentDesktop() = %d, want 0 on failure", got)
	}
	if got := cache.DesktopCount(); got != 0 {
		t.Errorf("DesktopCount() = %d, want 0 on failure", got)
	}
	if got := cache.ActiveWindow(); got != None {
		t.Errorf("ActiveWindow() = %d, want None on failure", got)
	}
	if got := cache.ClientList(); got != nil {
		t.Errorf("ClientList() = %v, want nil on failure", got)
	}
	if got := cache.DesktopNames(); got != nil {
		t.Errorf("DesktopNames() = %v, want nil on failure", got)
	}
}

// Trigger must invalidate before subscribers run, and subscribers run in
// registration order.
func TestCacheTriggerOrdering(t *testing.T) {
	source := newFakeSource()
	source.currentDesktop, source.currentDesktopOK = 1, true
	cache := NewCache(source)

	cache.CurrentDesktop()
	source.currentDesktop = 7

	var order []string
	cache.Subscribe(func(kind RootKind) {
		// The slot was reset before we ran: this accessor refetches.
		if got := cache.CurrentDesktop(); got != 7 {
			t.Errorf("subscriber saw stale desktop %d, want 7", got)
		}
		order = append(order, "first")
	})
	cache.Subscribe(func(kind RootKind) {
		order = append(order, "second")
	})

	cache.Trigger(KindCurrentDesktop)

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("subscriber order = %v, want [first second]", order)
	}
}

func TestCacheTriggerAllCoversEveryKind(t *testing.T) {
	cache := NewCache(newFakeSource())
	seen := make(map[RootKind]int)
	cache.Subscribe(func(kind RootKind) { seen[kind]++ })

	cache.TriggerAll()

	for kind := RootKind(0); kind < kindCount; kind++ {
		if seen[kind] != 1 {
			t.Errorf("kind %s notified %d times, want 1", kind, seen[kind])
		}
	}
}
