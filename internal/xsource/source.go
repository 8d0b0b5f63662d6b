// Package xsource implements the taskbar's property source, window inspector
// and event source collaborators over the X wire protocol.
package xsource

import (
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/ItsNotGoodName/x-taskbar/internal/taskbar"
)

const maxPropLength = 1 << 20

// Source reads root-window EWMH properties. Every getter degrades to
// (zero, false) when the property is absent or malformed: window managers
// implement EWMH partially and that is not an error.
type Source struct {
	conn  *xgb.Conn
	root  xproto.Window
	atoms *Atoms
}

func NewSource(conn *xgb.Conn, atoms *Atoms) *Source {
	return &Source{
		conn:  conn,
		root:  xproto.Setup(conn).DefaultScreen(conn).Root,
		atoms: atoms,
	}
}

func (s *Source) Root() xproto.Window { return s.root }

func (s *Source) CurrentDesktop() (uint32, bool) {
	return getCardinal(s.conn, s.root, s.atoms.NetCurrentDesktop)
}

func (s *Source) DesktopCount() (uint32, bool) {
	return getCardinal(s.conn, s.root, s.atoms.NetNumberOfDesktops)
}

func (s *Source) DesktopNames() ([]string, bool) {
	return getUTF8List(s.conn, s.root, s.atoms.NetDesktopNames, s.atoms.UTF8String)
}

func (s *Source) ActiveWindow() (taskbar.Window, bool) {
	v, ok := getWindow(s.conn, s.root, s.atoms.NetActiveWindow)
	if !ok {
		return taskbar.None, false
	}
	return v, true
}

func (s *Source) ClientList() ([]taskbar.Window, bool) {
	return getWindowList(s.conn, s.root, s.atoms.NetClientList)
}

func (s *Source) StackingList() ([]taskbar.Window, bool) {
	return getWindowList(s.conn, s.root, s.atoms.NetClientListStacking)
}

func getProperty(conn *xgb.Conn, w xproto.Window, atom xproto.Atom, typ xproto.Atom) *xproto.GetPropertyReply {
	reply, err := xproto.GetProperty(conn, false, w, atom, typ, 0, maxPropLength).Reply()
	if err != nil || reply == nil || reply.Format == 0 {
		return nil
	}
	return reply
}

func getCardinal(conn *xgb.Conn, w xproto.Window, atom xproto.Atom) (uint32, bool) {
	reply := getProperty(conn, w, atom, xproto.AtomCardinal)
	if reply == nil || reply.Format != 32 || len(reply.Value) < 4 {
		return 0, false
	}
	return xgb.Get32(reply.Value), true
}

func getWindow(conn *xgb.Conn, w xproto.Window, atom xproto.Atom) (taskbar.Window, bool) {
	reply := getProperty(conn, w, atom, xproto.AtomWindow)
	if reply == nil || reply.Format != 32 || len(reply.Value) < 4 {
		return taskbar.None, false
	}
	return taskbar.Window(xgb.Get32(reply.Value)), true
}

func getWindowList(conn *xgb.Conn, w xproto.Window, atom xproto.Atom) ([]taskbar.Window, bool) {
	reply := getProperty(conn, w, atom, xproto.AtomWindow)
	if reply == nil || reply.Format != 32 {
		return nil, false
	}
	windows := make([]taskbar.Window, 0, len(reply.Value)/4)
	for i := 0; i+4 <= len(reply.Value); i += 4 {
		windows = append(windows, taskbar.Window(xgb.Get32(reply.Value[i:])))
	}
	return windows, true
}

func getAtomList(conn *xgb.Conn, w xproto.Window, atom xproto.Atom) ([]xproto.Atom, bool) {
	reply := getProperty(conn, w, atom, xproto.AtomAtom)
	if reply == nil || reply.Format != 32 {
		return nil, false
	}
	atoms := make([]xproto.Atom, 0, len(reply.Value)/4)
	for i := 0; i+4 <= len(reply.Value); i += 4 {
		atoms = append(atoms, xproto.Atom(xgb.Get32(reply.Value[i:])))
	}
	return atoms, true
}

// getUTF8List parses a NUL-separated UTF-8 string list property.
func getUTF8List(conn *xgb.Conn, w xproto.Window, atom xproto.Atom, utf8 xproto.Atom) ([]string, bool) {
	reply := getProperty(conn, w, atom, utf8)
	if reply == nil || reply.Format != 8 {
		return nil, false
	}
	var names []string
	start := 0
	for i, b := range reply.Value {
		if b == 0 {
			names = append(names, string(reply.Value[start:i]))
			start = i + 1
		}
	}
	if start < len(reply.Value) {
		names = append(names, string(reply.Value[start:]))
	}
	return names, true
}

func getUTF8String(conn *xgb.Conn, w xproto.Window, atom xproto.Atom, typ xproto.Atom) (string, bool) {
	reply := getProperty(conn, w, atom, typ)
	if reply == nil || reply.Format != 8 || len(reply.Value) == 0 {
		return "", false
	}
	return string(reply.Value), true
}
