package taskbar

import (
	"log/slog"
	"sync"
)

type cacheSlot[T any] struct {
	value T
	valid bool
}

func (s *cacheSlot[T]) reset() {
	var zero T
	s.value = zero
	s.valid = false
}

// Cache is the lazily-fetched, invalidate-on-notify view of the six
// root-window properties. Trigger invalidates exactly the named slot and then
// notifies subscribers in registration order, so by the time a subscriber
// reacts the cache never pairs stale data with a change notification.
type Cache struct {
	source PropertySource

	mu             sync.Mutex
	currentDesktop cacheSlot[uint32]
	desktopCount   cacheSlot[uint32]
	desktopNames   cacheSlot[[]string]
	activeWindow   cacheSlot[Window]
	clientList     cacheSlot[[]Window]
	stackingList   cacheSlot[[]Window]

	subs []func(RootKind)
}

// NewCache returns a cache with every slot invalid; values are fetched on
// first access.
func NewCache(source PropertySource) *Cache {
	return &Cache{source: source}
}

// Subscribe appends a change listener. Listeners run synchronously inside
// Trigger, after the slot has been invalidated, in registration order.
func (c *Cache) Subscribe(fn func(RootKind)) {
	c.mu.Lock()
	c.subs = append(c.subs, fn)
	c.mu.Unlock()
}

// Trigger handles an external change notification for one property kind.
func (c *Cache) Trigger(kind RootKind) {
	c.mu.Lock()
	c.invalidate(kind)
	subs := c.subs
	c.mu.Unlock()

	slog.Debug("Root property changed", "kind", kind.String())
	for _, fn := range subs {
		fn(kind)
	}
}

// TriggerAll invalidates and announces every kind, used to prime subscribers
// at startup and as a periodic safety net against missed notifications.
func (c *Cache) TriggerAll() {
	for kind := RootKind(0); kind < kindCount; kind++ {
		c.Trigger(kind)
	}
}

func (c *Cache) invalidate(kind RootKind) {
	switch kind {
	case KindCurrentDesktop:
		c.currentDesktop.reset()
	case KindDesktopCount:
		c.desktopCount.reset()
	case KindDesktopNames:
		c.desktopNames.reset()
	case KindActiveWindow:
		c.activeWindow.reset()
	case KindClientList:
		c.clientList.reset()
	case KindStackingList:
		c.stackingList.reset()
	}
}

// CurrentDesktop returns the current desktop index, 0 when the window manager
// does not expose one.
func (c *Cache) CurrentDesktop() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentDesktop.valid {
		v, ok := c.source.CurrentDesktop()
		if !ok {
			v = 0
		}
		c.currentDesktop = cacheSlot[uint32]{value: v, valid: true}
	}
	return c.currentDesktop.value
}

// DesktopCount returns the number of desktops, 0 when unknown.
func (c *Cache) DesktopCount() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.desktopCount.valid {
		v, ok := c.source.DesktopCount()
		if !ok {
			v = 0
		}
		c.desktopCount = cacheSlot[uint32]{value: v, valid: true}
	}
	return c.desktopCount.value
}

// DesktopNames returns the desktop name list, nil when unknown.
func (c *Cache) DesktopNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.desktopNames.valid {
		v, _ := c.source.DesktopNames()
		c.desktopNames = cacheSlot[[]string]{value: v, valid: true}
	}
	return c.desktopNames.value
}

// ActiveWindow returns the focused window handle, None when no window has
// focus or the property is absent.
func (c *Cache) ActiveWindow() Window {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.activeWindow.valid {
		v, ok := c.source.ActiveWindow()
		if !ok {
			v = None
		}
		c.activeWindow = cacheSlot[Window]{value: v, valid: true}
	}
	return c.activeWindow.value
}

// ClientList returns the window manager's client list in list order, nil when
// the property is absent.
func (c *Cache) ClientList() []Window {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.clientList.valid {
		v, _ := c.source.ClientList()
		c.clientList = cacheSlot[[]Window]{value: v, valid: true}
	}
	return c.clientList.value
}

// StackingList returns the client list in bottom-to-top stacking order, nil
// when the property is absent.
func (c *Cache) StackingList() []Window {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.stackingList.valid {
		v, _ := c.source.StackingList()
		c.stackingList = cacheSlot[[]Window]{value: v, valid: true}
	}
	return c.stackingList.value
}
