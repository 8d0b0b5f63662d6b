package panel

// Cell is one task button's rectangle inside the strip.
type Cell struct {
	X, Y int
	W, H int
}

// Strip lays task cells out left to right across the panel width. Cells
// shrink evenly when the strip fills up and never grow past the maxima.
type Strip struct {
	Width         int
	Height        int
	MaxCellWidth  int
	MaxCellHeight int
}

// Layout returns one cell per task in display order.
func (s Strip) Layout(count int) []Cell {
	if count <= 0 || s.Width <= 0 || s.Height <= 0 {
		return nil
	}

	w := s.Width / count
	if s.MaxCellWidth > 0 && w > s.MaxCellWidth {
		w = s.MaxCellWidth
	}
	if w < 1 {
		w = 1
	}

	h := s.Height
	if s.MaxCellHeight > 0 && h > s.MaxCellHeight {
		h = s.MaxCellHeight
	}
	y := (s.Height - h) / 2

	cells := make([]Cell, count)
	for i := range cells {
		cells[i] = Cell{X: i * w, Y: y, W: w, H: h}
	}
	return cells
}

// CellAt maps a click position back to a cell index, -1 when the click lands
// past the last cell.
func (s Strip) CellAt(cells []Cell, x int) int {
	for i, c := range cells {
		if x >= c.X && x < c.X+c.W {
			return i
		}
	}
	return -1
}
