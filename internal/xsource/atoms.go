package xsource

import (
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// Atoms is the interned atom table shared by the source, inspector and event
// listener.
type Atoms struct {
	NetCurrentDesktop     xproto.Atom
	NetNumberOfDesktops   xproto.Atom
	NetDesktopNames       xproto.Atom
	NetActiveWindow       xproto.Atom
	NetClientList         xproto.Atom
	NetClientListStacking xproto.Atom

	NetWMDesktop      xproto.Atom
	NetWMName         xproto.Atom
	WMName            xproto.Atom
	WMHints           xproto.Atom
	NetWMState        xproto.Atom
	NetWMWindowType   xproto.Atom
	NetWMIcon         xproto.Atom
	NetWMStrutPartial xproto.Atom

	StateSkipTaskbar xproto.Atom
	StateSkipPager   xproto.Atom
	StateSticky      xproto.Atom
	StateHidden      xproto.Atom
	StateShaded      xproto.Atom

	TypeDesktop xproto.Atom
	TypeDock    xproto.Atom
	TypeToolbar xproto.Atom
	TypeMenu    xproto.Atom
	TypeUtility xproto.Atom
	TypeSplash  xproto.Atom
	TypeDialog  xproto.Atom
	TypeNormal  xproto.Atom

	UTF8String xproto.Atom
}

// InternAtoms resolves every atom the taskbar touches in one pass.
func InternAtoms(conn *xgb.Conn) (*Atoms, error) {
	a := &Atoms{}
	table := []struct {
		name string
		dst  *xproto.Atom
	}{
		{"_NET_CURRENT_DESKTOP", &a.NetCurrentDesktop},
		{"_NET_NUMBER_OF_DESKTOPS", &a.NetNumberOfDesktops},
		{"_NET_DESKTOP_NAMES", &a.NetDesktopNames},
		{"_NET_ACTIVE_WINDOW", &a.NetActiveWindow},
		{"_NET_CLIENT_LIST", &a.NetClientList},
		{"_NET_CLIENT_LIST_STACKING", &a.NetClientListStacking},
		{"_NET_WM_DESKTOP", &a.NetWMDesktop},
		{"_NET_WM_NAME", &a.NetWMName},
		{"WM_NAME", &a.WMName},
		{"WM_HINTS", &a.WMHints},
		{"_NET_WM_STATE", &a.NetWMState},
		{"_NET_WM_WINDOW_TYPE", &a.NetWMWindowType},
		{"_NET_WM_ICON", &a.NetWMIcon},
		{"_NET_WM_STRUT_PARTIAL", &a.NetWMStrutPartial},
		{"_NET_WM_STATE_SKIP_TASKBAR", &a.StateSkipTaskbar},
		{"_NET_WM_STATE_SKIP_PAGER", &a.StateSkipPager},
		{"_NET_WM_STATE_STICKY", &a.StateSticky},
		{"_NET_WM_STATE_HIDDEN", &a.StateHidden},
		{"_NET_WM_STATE_SHADED", &a.StateShaded},
		{"_NET_WM_WINDOW_TYPE_DESKTOP", &a.TypeDesktop},
		{"_NET_WM_WINDOW_TYPE_DOCK", &a.TypeDock},
		{"_NET_WM_WINDOW_TYPE_TOOLBAR", &a.TypeToolbar},
		{"_NET_WM_WINDOW_TYPE_MENU", &a.TypeMenu},
		{"_NET_WM_WINDOW_TYPE_UTILITY", &a.TypeUtility},
		{"_NET_WM_WINDOW_TYPE_SPLASH", &a.TypeSplash},
		{"_NET_WM_WINDOW_TYPE_DIALOG", &a.TypeDialog},
		{"_NET_WM_WINDOW_TYPE_NORMAL", &a.TypeNormal},
		{"UTF8_STRING", &a.UTF8String},
	}

	// Pipeline the requests, then collect replies.
	cookies := make([]xproto.InternAtomCookie, len(table))
	for i, entry := range table {
		cookies[i] = xproto.InternAtom(conn, false, uint16(len(entry.name)), entry.name)
	}
	for i, entry := range table {
		reply, err := cookies[i].Reply()
		if err != nil {
			return nil, fmt.Errorf("intern atom %s: %w", entry.name, err)
		}
		*entry.dst = reply.Atom
	}
	return a, nil
}
