// Package panel turns registry callbacks into bus events and owns the dock
// strip the taskbar draws into.
package panel

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ItsNotGoodName/x-taskbar/internal/bus"
	"github.com/ItsNotGoodName/x-taskbar/internal/taskbar"
)

// TaskEvent is the bus payload for one registry state change on one panel.
type TaskEvent struct {
	Panel string           `json:"panel"`
	Kind  EventKind        `json:"kind"`
	Task  taskbar.TaskInfo `json:"task"`
	// On carries the boolean payload of visibility, focus, urgency and flash
	// events.
	On bool `json:"on,omitempty"`
}

type EventKind string

const (
	EventAdded      EventKind = "added"
	EventRemoved    EventKind = "removed"
	EventVisibility EventKind = "visibility"
	EventFocus      EventKind = "focus"
	EventIcon       EventKind = "icon"
	EventTitle      EventKind = "title"
	EventUrgency    EventKind = "urgency"
	EventFlash      EventKind = "flash"
)

// eventQueueSize bounds the callback-to-service buffer. Registry callbacks
// must never block, so overflow drops the event instead.
const eventQueueSize = 256

// Panel implements taskbar.Observer. Callbacks run under the registry lock:
// they only snapshot the task and hand off to the service loop, which
// republishes on the bus and maintains the visible cell order.
type Panel struct {
	uuid   string
	strip  Strip
	eventC chan TaskEvent

	mu    sync.Mutex
	order []taskbar.Window
}

func New(uuid string, strip Strip) *Panel {
	return &Panel{
		uuid:   uuid,
		strip:  strip,
		eventC: make(chan TaskEvent, eventQueueSize),
	}
}

func (p *Panel) String() string { return "panel.Panel(" + p.uuid + ")" }

// Serve drains the callback queue, keeps the cell order current and
// republishes each event on the bus.
func (p *Panel) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-p.eventC:
			p.apply(ev)
			bus.Publish(ev)
		}
	}
}

// Cells returns the current button layout, one cell per visible task.
func (p *Panel) Cells() []Cell {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.strip.Layout(len(p.order))
}

// Order returns the windows behind the current cells, matching Cells index
// for index.
func (p *Panel) Order() []taskbar.Window {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]taskbar.Window(nil), p.order...)
}

func (p *Panel) apply(ev TaskEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	w := taskbar.Window(ev.Task.Window)
	switch ev.Kind {
	case EventAdded:
		if ev.Task.Visible {
			p.insert(w)
		}
	case EventRemoved:
		p.delete(w)
	case EventVisibility:
		if ev.On {
			p.insert(w)
		} else {
			p.delete(w)
		}
	}
}

func (p *Panel) insert(w taskbar.Window) {
	for _, o := range p.order {
		if o == w {
			return
		}
	}
	p.order = append(p.order, w)
}

func (p *Panel) delete(w taskbar.Window) {
	for i, o := range p.order {
		if o == w {
			p.order = append(p.order[:i], p.order[i+1:]...)
			return
		}
	}
}

func (p *Panel) push(kind EventKind, t *taskbar.Task, on bool) {
	ev := TaskEvent{
		Panel: p.uuid,
		Kind:  kind,
		Task:  t.Info(),
		On:    on,
	}
	select {
	case p.eventC <- ev:
	default:
		slog.Warn("Dropped task event", "panel", p.uuid, "kind", kind, "window", ev.Task.Window)
	}
}

// TaskAdded implements taskbar.Observer.
func (p *Panel) TaskAdded(t *taskbar.Task) { p.push(EventAdded, t, t.Visible()) }

// TaskRemoved implements taskbar.Observer.
func (p *Panel) TaskRemoved(t *taskbar.Task) { p.push(EventRemoved, t, false) }

// TaskVisibilityChanged implements taskbar.Observer.
func (p *Panel) TaskVisibilityChanged(t *taskbar.Task, visible bool) {
	p.push(EventVisibility, t, visible)
}

// TaskFocusChanged implements taskbar.Observer.
func (p *Panel) TaskFocusChanged(t *taskbar.Task, focused bool) {
	p.push(EventFocus, t, focused)
}

// TaskIconChanged implements taskbar.Observer.
func (p *Panel) TaskIconChanged(t *taskbar.Task) { p.push(EventIcon, t, false) }

// TaskTitleChanged implements taskbar.Observer.
func (p *Panel) TaskTitleChanged(t *taskbar.Task) { p.push(EventTitle, t, false) }

// TaskUrgencyChanged implements taskbar.Observer.
func (p *Panel) TaskUrgencyChanged(t *taskbar.Task, urgent bool) {
	p.push(EventUrgency, t, urgent)
}

// TaskFlash implements taskbar.Observer.
func (p *Panel) TaskFlash(t *taskbar.Task, on bool) { p.push(EventFlash, t, on) }
