package xsource

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/ItsNotGoodName/x-taskbar/internal/taskbar"
)

// Sink is one panel instance fed by the listener: its property cache and its
// window registry.
type Sink struct {
	Cache    *taskbar.Cache
	Registry *taskbar.Registry
}

// Listener turns PropertyNotify traffic into cache triggers and registry
// window-property dispatches. One listener serves every panel on the
// connection.
type Listener struct {
	conn  *xgb.Conn
	root  xproto.Window
	atoms *Atoms
	sinks []Sink
}

func NewListener(conn *xgb.Conn, atoms *Atoms, sinks []Sink) *Listener {
	return &Listener{
		conn:  conn,
		root:  xproto.Setup(conn).DefaultScreen(conn).Root,
		atoms: atoms,
		sinks: sinks,
	}
}

func (l *Listener) String() string { return "xsource.Listener" }

// Serve subscribes to root property changes and pumps events until the
// context ends or the connection drops.
func (l *Listener) Serve(ctx context.Context) error {
	if err := xproto.ChangeWindowAttributesChecked(l.conn, l.root,
		xproto.CwEventMask, []uint32{xproto.EventMaskPropertyChange}).Check(); err != nil {
		return fmt.Errorf("select root events: %w", err)
	}

	eventC := make(chan xgb.Event)
	go l.receive(ctx, eventC)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-eventC:
			if !ok {
				return fmt.Errorf("x connection closed")
			}
			if prop, ok := ev.(xproto.PropertyNotifyEvent); ok {
				l.dispatch(prop)
			}
		}
	}
}

func (l *Listener) receive(ctx context.Context, eventC chan<- xgb.Event) {
	defer close(eventC)
	for {
		ev, err := l.conn.WaitForEvent()
		if ev == nil && err == nil {
			return
		}
		if err != nil {
			// Errors here are responses to unchecked requests against
			// windows that vanished mid-query. Expected traffic.
			slog.Debug("X error", "error", err)
			continue
		}
		if !forwardEvent(ctx, eventC, ev) {
			return
		}
	}
}

// forwardEvent hands one event to the serve loop, false when the context ends
// before the loop takes it.
func forwardEvent(ctx context.Context, eventC chan<- xgb.Event, ev xgb.Event) bool {
	select {
	case <-ctx.Done():
		return false
	case eventC <- ev:
		return true
	}
}

func (l *Listener) dispatch(ev xproto.PropertyNotifyEvent) {
	if ev.Window == l.root {
		kind, ok := l.rootKind(ev.Atom)
		if !ok {
			return
		}
		for _, sink := range l.sinks {
			sink.Cache.Trigger(kind)
		}
		return
	}

	kind, ok := l.windowKind(ev.Atom)
	if !ok {
		return
	}
	for _, sink := range l.sinks {
		sink.Registry.WindowProperty(taskbar.Window(ev.Window), kind)
	}
}

func (l *Listener) rootKind(atom xproto.Atom) (taskbar.RootKind, bool) {
	switch atom {
	case l.atoms.NetCurrentDesktop:
		return taskbar.KindCurrentDesktop, true
	case l.atoms.NetNumberOfDesktops:
		return taskbar.KindDesktopCount, true
	case l.atoms.NetDesktopNames:
		return taskbar.KindDesktopNames, true
	case l.atoms.NetActiveWindow:
		return taskbar.KindActiveWindow, true
	case l.atoms.NetClientList:
		return taskbar.KindClientList, true
	case l.atoms.NetClientListStacking:
		return taskbar.KindStackingList, true
	}
	return 0, false
}

func (l *Listener) windowKind(atom xproto.Atom) (taskbar.WindowKind, bool) {
	switch atom {
	case l.atoms.NetWMDesktop:
		return taskbar.WindowDesktop, true
	case l.atoms.NetWMName, l.atoms.WMName:
		return taskbar.WindowTitle, true
	case l.atoms.WMHints:
		return taskbar.WindowLegacyHints, true
	case l.atoms.NetWMState:
		return taskbar.WindowState, true
	case l.atoms.NetWMIcon:
		return taskbar.WindowIcon, true
	case l.atoms.NetWMWindowType:
		return taskbar.WindowType, true
	}
	return 0, false
}
