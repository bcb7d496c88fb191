package main

// SpatialCellSize is sized to roughly 2x the radius of a mid-game cell so
// most broad-phase queries touch only a handful of grid cells.
const SpatialCellSize = 100.0

// EntityRef identifies an entity in the grid.
// Kind: 'f'=food, 'e'=ejected mass, 'v'=virus, 'c'=player cell.
// For player cells Idx is the player index and Sub the cell index.
type EntityRef struct {
	Kind byte
	Idx  int
	Sub  int
}

// SpatialGrid is a uniform grid for broad-phase collision queries
type SpatialGrid struct {
	cols  int
	rows  int
	cells [][]EntityRef
}

// NewSpatialGrid creates a grid covering a world of the given size
func NewSpatialGrid(worldW, worldH float64) *SpatialGrid {
	cols := int(worldW/SpatialCellSize) + 1
	rows := int(worldH/SpatialCellSize) + 1
	return &SpatialGrid{
		cols:  cols,
		rows:  rows,
		cells: make([][]EntityRef, cols*rows),
	}
}

// Clear resets all cells (keeps allocated capacity)
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

func (g *SpatialGrid) cellIdx(x, y float64) int {
	cx := int(x / SpatialCellSize)
	cy := int(y / SpatialCellSize)
	if cx < 0 {
		cx = 0
	} else if cx >= g.cols {
		cx = g.cols - 1
	}
	if cy < 0 {
		cy = 0
	} else if cy >= g.rows {
		cy = g.rows - 1
	}
	return cy*g.cols + cx
}

// Insert adds an entity reference at the given position
func (g *SpatialGrid) Insert(x, y float64, ref EntityRef) {
	idx := g.cellIdx(x, y)
	g.cells[idx] = append(g.cells[idx], ref)
}

func (g *SpatialGrid) clampRange(x, y, radius float64) (int, int, int, int) {
	minCX := int((x - radius) / SpatialCellSize)
	maxCX := int((x + radius) / SpatialCellSize)
	minCY := int((y - radius) / SpatialCellSize)
	maxCY := int((y + radius) / SpatialCellSize)
	if minCX < 0 {
		minCX = 0
	}
	if maxCX >= g.cols {
		maxCX = g.cols - 1
	}
	if minCY < 0 {
		minCY = 0
	}
	if maxCY >= g.rows {
		maxCY = g.rows - 1
	}
	return minCX, maxCX, minCY, maxCY
}

// InsertCircle adds an entity reference to all cells overlapping its bounding box
func (g *SpatialGrid) InsertCircle(x, y, radius float64, ref EntityRef) {
	minCX, maxCX, minCY, maxCY := g.clampRange(x, y, radius)
	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			idx := cy*g.cols + cx
			g.cells[idx] = append(g.cells[idx], ref)
		}
	}
}

// Query returns all entity refs in cells that overlap the given bounding box
func (g *SpatialGrid) Query(x, y, radius float64) []EntityRef {
	return g.QueryBuf(x, y, radius, nil)
}

// QueryBuf appends results to buf and returns the extended slice, avoiding per-call allocation
func (g *SpatialGrid) QueryBuf(x, y, radius float64, buf []EntityRef) []EntityRef {
	minCX, maxCX, minCY, maxCY := g.clampRange(x, y, radius)
	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			idx := cy*g.cols + cx
			buf = append(buf, g.cells[idx]...)
		}
	}
	return buf
}
