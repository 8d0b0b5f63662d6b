package taskbar

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Protocol icon dimensions outside this range are treated as corrupt data and
// reject the whole source, they are never clamped.
const (
	MinIconDim = 16
	MaxIconDim = 256
)

// resolveIconLocked produces the icon for a window with the three-tier
// fallback: protocol icon, then legacy hint pixmap, then the shared generic
// icon. Never returns nil.
func (r *Registry) resolveIconLocked(w Window, hints LegacyHints) *image.RGBA {
	if icon := r.protocolIconLocked(w); icon != nil {
		return icon
	}
	if icon, ok := r.legacyIconLocked(hints); ok {
		return icon
	}
	return r.fallback
}

func (r *Registry) protocolIconLocked(w Window) *image.RGBA {
	size := r.settings.IconSize
	return DecodeWMIcon(r.inspector.IconData(w), size, size)
}

func (r *Registry) legacyIconLocked(hints LegacyHints) (*image.RGBA, bool) {
	if hints.IconPixmap == 0 {
		return nil, false
	}
	img, ok := r.inspector.PixmapImage(hints.IconPixmap)
	if !ok || img == nil {
		return nil, false
	}
	if hints.IconMask != 0 {
		if mask, ok := r.inspector.PixmapMask(hints.IconMask); ok && mask != nil {
			img = ApplyMask(img, mask)
		}
	}
	size := r.settings.IconSize
	return scaleIcon(img, size, size), true
}

// FallbackIcon is the generic icon shared by every task without usable icon
// data. It is reference-shared, not copied.
func (r *Registry) FallbackIcon() *image.RGBA { return r.fallback }

// DecodeWMIcon decodes packed protocol icon data: a sequence of
// {width, height, width*height ARGB32 words} entries. The entry whose size is
// closest to the target is decoded to RGBA and scaled. Returns nil when the
// data is empty or malformed: a truncated entry or an out-of-range dimension
// rejects the entire source.
func DecodeWMIcon(data []uint32, targetWidth, targetHeight int) *image.RGBA {
	type entry struct{ width, height, offset int }
	var entries []entry

	for i := 0; i < len(data); {
		if len(data)-i < 2 {
			return nil
		}
		width, height := int(data[i]), int(data[i+1])
		if width < MinIconDim || width > MaxIconDim || height < MinIconDim || height > MaxIconDim {
			return nil
		}
		if len(data)-i < width*height+2 {
			return nil
		}
		entries = append(entries, entry{width: width, height: height, offset: i + 2})
		i += 2 + width*height
	}
	if len(entries) == 0 {
		return nil
	}

	// Prefer the smallest entry that still covers the target, otherwise the
	// largest available.
	best := entries[0]
	for _, e := range entries[1:] {
		bestCovers := best.width >= targetWidth && best.height >= targetHeight
		covers := e.width >= targetWidth && e.height >= targetHeight
		switch {
		case covers && !bestCovers:
			best = e
		case covers == bestCovers && covers && e.width*e.height < best.width*best.height:
			best = e
		case covers == bestCovers && !covers && e.width*e.height > best.width*best.height:
			best = e
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, best.width, best.height))
	for y := 0; y < best.height; y++ {
		for x := 0; x < best.width; x++ {
			argb := data[best.offset+y*best.width+x]
			p := img.PixOffset(x, y)
			img.Pix[p+0] = uint8(argb >> 16)
			img.Pix[p+1] = uint8(argb >> 8)
			img.Pix[p+2] = uint8(argb)
			img.Pix[p+3] = uint8(argb >> 24)
		}
	}
	return scaleIcon(img, targetWidth, targetHeight)
}

// ApplyMask composites a 1-bit mask as the alpha channel: zero mask pixels
// become fully transparent, everything else fully opaque.
func ApplyMask(img *image.RGBA, mask *image.Alpha) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			p := out.PixOffset(x, y)
			if x < mask.Bounds().Max.X && y < mask.Bounds().Max.Y && mask.AlphaAt(x, y).A == 0 {
				continue
			}
			s := img.PixOffset(x, y)
			out.Pix[p+0] = img.Pix[s+0]
			out.Pix[p+1] = img.Pix[s+1]
			out.Pix[p+2] = img.Pix[s+2]
			out.Pix[p+3] = 0xFF
		}
	}
	return out
}

func scaleIcon(img *image.RGBA, width, height int) *image.RGBA {
	if img.Bounds().Dx() == width && img.Bounds().Dy() == height {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

// renderFallbackIcon draws the generic window glyph used when a window
// carries no usable icon data: a framed pane with a title strip.
func renderFallbackIcon(size int) *image.RGBA {
	frame := color.RGBA{R: 0x4A, G: 0x4A, B: 0x4A, A: 0xFF}
	pane := color.RGBA{R: 0xC8, G: 0xD4, B: 0xE0, A: 0xFF}
	strip := color.RGBA{R: 0x5A, G: 0x7A, B: 0x9A, A: 0xFF}

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	stripH := size / 4
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			var c color.RGBA
			switch {
			case x == 0 || y == 0 || x == size-1 || y == size-1:
				c = frame
			case y <= stripH:
				c = strip
			default:
				c = pane
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}
