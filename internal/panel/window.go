package panel

import (
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/ItsNotGoodName/x-taskbar/internal/xcursor"
	"github.com/ItsNotGoodName/x-taskbar/internal/xsource"
)

// Window is the panel strip: a dock-typed X window pinned to a screen edge
// with a strut so the window manager reserves its space.
type Window struct {
	WID    xproto.Window
	Width  uint16
	Height uint16
}

// CreateWindow creates and maps the panel strip at the top or bottom edge.
func CreateWindow(conn *xgb.Conn, atoms *xsource.Atoms, height uint16, position string) (Window, error) {
	screen := xproto.Setup(conn).DefaultScreen(conn)

	cursor, err := xcursor.CreateCursor(conn, xcursor.LeftPtr)
	if err != nil {
		return Window{}, err
	}

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return Window{}, err
	}

	if height > screen.HeightInPixels {
		height = screen.HeightInPixels
	}
	y := int16(0)
	if position == "bottom" {
		y = int16(screen.HeightInPixels - height)
	}

	if err := xproto.CreateWindowChecked(conn, screen.RootDepth,
		wid, screen.Root,
		0, y, screen.WidthInPixels, height, 0,
		xproto.WindowClassInputOutput, screen.RootVisual,
		xproto.CwBackPixel|xproto.CwEventMask|xproto.CwCursor,
		[]uint32{
			screen.BlackPixel,
			xproto.EventMaskExposure | xproto.EventMaskStructureNotify | xproto.EventMaskButtonPress,
			uint32(cursor),
		}).Check(); err != nil {
		return Window{}, fmt.Errorf("create panel window: %w", err)
	}

	w := Window{
		WID:    wid,
		Width:  screen.WidthInPixels,
		Height: height,
	}

	if err := w.setHints(conn, atoms, screen, position); err != nil {
		xproto.DestroyWindow(conn, wid)
		return Window{}, err
	}

	if err := xproto.MapWindowChecked(conn, wid).Check(); err != nil {
		xproto.DestroyWindow(conn, wid)
		return Window{}, fmt.Errorf("map panel window: %w", err)
	}

	return w, nil
}

// setHints marks the strip as a sticky dock and publishes its strut. Must
// happen before mapping so the window manager never manages it as a normal
// client.
func (w Window) setHints(conn *xgb.Conn, atoms *xsource.Atoms, screen *xproto.ScreenInfo, position string) error {
	if err := changeProp32(conn, w.WID, atoms.NetWMWindowType, xproto.AtomAtom,
		uint32(atoms.TypeDock)); err != nil {
		return fmt.Errorf("set window type: %w", err)
	}

	// Visible on every desktop.
	if err := changeProp32(conn, w.WID, atoms.NetWMDesktop, xproto.AtomCardinal,
		0xFFFFFFFF); err != nil {
		return fmt.Errorf("set desktop: %w", err)
	}

	if err := changeProp32(conn, w.WID, atoms.NetWMState, xproto.AtomAtom,
		uint32(atoms.StateSkipTaskbar), uint32(atoms.StateSkipPager), uint32(atoms.StateSticky)); err != nil {
		return fmt.Errorf("set state: %w", err)
	}

	// _NET_WM_STRUT_PARTIAL: left, right, top, bottom, then per-edge spans.
	strut := make([]uint32, 12)
	endX := uint32(screen.WidthInPixels) - 1
	if position == "top" {
		strut[2] = uint32(w.Height)
		strut[8], strut[9] = 0, endX
	} else {
		strut[3] = uint32(w.Height)
		strut[10], strut[11] = 0, endX
	}
	if err := changeProp32(conn, w.WID, atoms.NetWMStrutPartial, xproto.AtomCardinal,
		strut...); err != nil {
		return fmt.Errorf("set strut: %w", err)
	}

	return nil
}

func (w Window) Destroy(conn *xgb.Conn) {
	xproto.DestroyWindow(conn, w.WID)
}

func changeProp32(conn *xgb.Conn, wid xproto.Window, prop, typ xproto.Atom, values ...uint32) error {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		xgb.Put32(buf[i*4:], v)
	}
	return xproto.ChangePropertyChecked(conn, xproto.PropModeReplace, wid,
		prop, typ, 32, uint32(len(values)), buf).Check()
}
