package xsource

import (
	"image"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/ItsNotGoodName/x-taskbar/internal/taskbar"
)

// WM_HINTS layout: flag word followed by fixed fields (ICCCM 4.1.2.4).
const (
	wmHintIconPixmap = 1 << 2
	wmHintIconMask   = 1 << 5
	wmHintUrgency    = 1 << 8

	wmHintsIconPixmapField = 3
	wmHintsIconMaskField   = 7
)

// Inspector reads per-window properties and converts legacy icon drawables.
// It also implements taskbar.WindowWatcher by toggling the property-change
// event mask on client windows.
type Inspector struct {
	conn  *xgb.Conn
	atoms *Atoms
}

func NewInspector(conn *xgb.Conn, atoms *Atoms) *Inspector {
	return &Inspector{conn: conn, atoms: atoms}
}

func (i *Inspector) States(w taskbar.Window) taskbar.StateFlags {
	atoms, ok := getAtomList(i.conn, xproto.Window(w), i.atoms.NetWMState)
	if !ok {
		return 0
	}
	var states taskbar.StateFlags
	for _, a := range atoms {
		switch a {
		case i.atoms.StateSkipTaskbar:
			states |= taskbar.StateSkipTaskbar
		case i.atoms.StateSkipPager:
			states |= taskbar.StateSkipPager
		case i.atoms.StateSticky:
			states |= taskbar.StateSticky
		case i.atoms.StateHidden:
			states |= taskbar.StateHidden
		case i.atoms.StateShaded:
			states |= taskbar.StateShaded
		}
	}
	return states
}

func (i *Inspector) Types(w taskbar.Window) taskbar.TypeFlags {
	atoms, ok := getAtomList(i.conn, xproto.Window(w), i.atoms.NetWMWindowType)
	if !ok {
		return 0
	}
	var types taskbar.TypeFlags
	for _, a := range atoms {
		switch a {
		case i.atoms.TypeDesktop:
			types |= taskbar.TypeDesktop
		case i.atoms.TypeDock:
			types |= taskbar.TypeDock
		case i.atoms.TypeToolbar:
			types |= taskbar.TypeToolbar
		case i.atoms.TypeMenu:
			types |= taskbar.TypeMenu
		case i.atoms.TypeUtility:
			types |= taskbar.TypeUtility
		case i.atoms.TypeSplash:
			types |= taskbar.TypeSplash
		case i.atoms.TypeDialog:
			types |= taskbar.TypeDialog
		case i.atoms.TypeNormal:
			types |= taskbar.TypeNormal
		}
	}
	return types
}

func (i *Inspector) Desktop(w taskbar.Window) (uint32, bool) {
	return getCardinal(i.conn, xproto.Window(w), i.atoms.NetWMDesktop)
}

// Title prefers the UTF-8 _NET_WM_NAME and falls back to the legacy WM_NAME.
func (i *Inspector) Title(w taskbar.Window) (string, bool) {
	if name, ok := getUTF8String(i.conn, xproto.Window(w), i.atoms.NetWMName, i.atoms.UTF8String); ok {
		return name, true
	}
	return getUTF8String(i.conn, xproto.Window(w), i.atoms.WMName, xproto.AtomString)
}

func (i *Inspector) IconData(w taskbar.Window) []uint32 {
	reply := getProperty(i.conn, xproto.Window(w), i.atoms.NetWMIcon, xproto.AtomCardinal)
	if reply == nil || reply.Format != 32 {
		return nil
	}
	data := make([]uint32, 0, len(reply.Value)/4)
	for o := 0; o+4 <= len(reply.Value); o += 4 {
		data = append(data, xgb.Get32(reply.Value[o:]))
	}
	return data
}

func (i *Inspector) Hints(w taskbar.Window) taskbar.LegacyHints {
	reply := getProperty(i.conn, xproto.Window(w), i.atoms.WMHints, i.atoms.WMHints)
	if reply == nil || reply.Format != 32 || len(reply.Value) < 4 {
		return taskbar.LegacyHints{}
	}
	words := make([]uint32, 0, len(reply.Value)/4)
	for o := 0; o+4 <= len(reply.Value); o += 4 {
		words = append(words, xgb.Get32(reply.Value[o:]))
	}

	flags := words[0]
	hints := taskbar.LegacyHints{Urgent: flags&wmHintUrgency != 0}
	if flags&wmHintIconPixmap != 0 && len(words) > wmHintsIconPixmapField {
		hints.IconPixmap = taskbar.Pixmap(words[wmHintsIconPixmapField])
	}
	if flags&wmHintIconMask != 0 && len(words) > wmHintsIconMaskField {
		hints.IconMask = taskbar.Pixmap(words[wmHintsIconMaskField])
	}
	return hints
}

// PixmapImage reads a color legacy icon pixmap into RGBA. The server returns
// ZPixmap data in BGRX order for the common 24/32-bit visuals.
func (i *Inspector) PixmapImage(p taskbar.Pixmap) (*image.RGBA, bool) {
	drawable := xproto.Drawable(p)
	geom, err := xproto.GetGeometry(i.conn, drawable).Reply()
	if err != nil || geom == nil || geom.Depth < 24 {
		return nil, false
	}
	reply, err := xproto.GetImage(i.conn, xproto.ImageFormatZPixmap, drawable,
		0, 0, geom.Width, geom.Height, 0xFFFFFFFF).Reply()
	if err != nil || reply == nil {
		return nil, false
	}

	width, height := int(geom.Width), int(geom.Height)
	if len(reply.Data) < width*height*4 {
		return nil, false
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			s := (y*width + x) * 4
			d := img.PixOffset(x, y)
			img.Pix[d+0] = reply.Data[s+2]
			img.Pix[d+1] = reply.Data[s+1]
			img.Pix[d+2] = reply.Data[s+0]
			img.Pix[d+3] = 0xFF
		}
	}
	return img, true
}

// PixmapMask reads a 1-bit mask pixmap. Rows arrive LSB-first padded to
// 32-bit boundaries.
func (i *Inspector) PixmapMask(p taskbar.Pixmap) (*image.Alpha, bool) {
	drawable := xproto.Drawable(p)
	geom, err := xproto.GetGeometry(i.conn, drawable).Reply()
	if err != nil || geom == nil || geom.Depth != 1 {
		return nil, false
	}
	reply, err := xproto.GetImage(i.conn, xproto.ImageFormatXYPixmap, drawable,
		0, 0, geom.Width, geom.Height, 1).Reply()
	if err != nil || reply == nil {
		return nil, false
	}

	width, height := int(geom.Width), int(geom.Height)
	stride := ((width + 31) / 32) * 4
	if len(reply.Data) < stride*height {
		return nil, false
	}
	mask := image.NewAlpha(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		row := reply.Data[y*stride:]
		for x := 0; x < width; x++ {
			if row[x/8]>>(uint(x)%8)&1 != 0 {
				mask.Pix[mask.PixOffset(x, y)] = 0xFF
			}
		}
	}
	return mask, true
}

// Watch subscribes to property-change events on a client window.
func (i *Inspector) Watch(w taskbar.Window) {
	xproto.ChangeWindowAttributes(i.conn, xproto.Window(w),
		xproto.CwEventMask, []uint32{xproto.EventMaskPropertyChange})
}

// Unwatch clears the event mask again. The window may already be destroyed;
// the resulting error is irrelevant and unchecked.
func (i *Inspector) Unwatch(w taskbar.Window) {
	xproto.ChangeWindowAttributes(i.conn, xproto.Window(w),
		xproto.CwEventMask, []uint32{0})
}
