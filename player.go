package main

import (
	"math"
	"time"
)

const (
	BaseCellSpeed = 6.25 // cruising speed before the mass slowdown divides it
	SplitSpeed    = 25.0 // burst speed of a freshly split cell
	SpeedDecay    = 0.5  // burst speed lost per physics tick
	SlowZone      = 50.0 // distance inside which cells ease toward the target
)

// Target is the point a player's cells steer toward
type Target struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Cell is one mass-bearing circular body of a player
type Cell struct {
	X      float64
	Y      float64
	Mass   float64
	Radius float64
	Speed  float64 // > BaseCellSpeed only during a post-split burst
}

// NewCell creates a cell at the given position
func NewCell(x, y, mass float64) Cell {
	return Cell{X: x, Y: y, Mass: mass, Radius: MassToRadius(mass)}
}

// Player is a connected participant (human or AI) with one or more cells
type Player struct {
	ID            string
	Name          string
	Admin         bool
	IsBot         bool
	Hue           int
	X, Y          float64 // position of Cells[0]
	Cells         []Cell
	MassTotal     float64
	ScreenWidth   float64
	ScreenHeight  float64
	LastHeartbeat time.Time
	Target        Target
	AI            *BotState // nil for humans
}

// NewPlayer creates a player shell for a connection; Init places it in the world
func NewPlayer(id string) *Player {
	return &Player{
		ID:            id,
		Hue:           int(randFloat() * 360),
		LastHeartbeat: time.Now(),
	}
}

// Init spawns the player at the given point with a single cell
func (p *Player) Init(x, y, mass float64) {
	p.X = x
	p.Y = y
	p.Cells = []Cell{NewCell(x, y, mass)}
	p.MassTotal = mass
}

// SetClientData applies the join payload (name already validated/sanitized)
func (p *Player) SetClientData(name string, screenW, screenH float64) {
	p.Name = name
	p.ScreenWidth = screenW
	p.ScreenHeight = screenH
}

// ChangeCellMass adds delta to the mass of cell i and keeps derived state consistent
func (p *Player) ChangeCellMass(i int, delta float64) {
	if i < 0 || i >= len(p.Cells) {
		return
	}
	p.Cells[i].Mass += delta
	p.Cells[i].Radius = MassToRadius(p.Cells[i].Mass)
	p.MassTotal += delta
}

// RecalcMass recomputes the aggregate mass from the cells
func (p *Player) RecalcMass() {
	total := 0.0
	for i := range p.Cells {
		total += p.Cells[i].Mass
	}
	p.MassTotal = total
}

// RemoveCell deletes cell i and returns true if the player is now dead (no cells)
func (p *Player) RemoveCell(i int) bool {
	if i < 0 || i >= len(p.Cells) {
		return len(p.Cells) == 0
	}
	p.Cells = append(p.Cells[:i], p.Cells[i+1:]...)
	p.RecalcMass()
	return len(p.Cells) == 0
}

// Move advances every cell toward the player's target for one physics tick.
// Larger cells move slower along a logarithmic curve anchored at the
// default mass (initMassLog = MathLog(defaultMass, slowBase)).
func (p *Player) Move(slowBase, gameWidth, gameHeight, initMassLog float64) {
	if len(p.Cells) == 0 {
		return
	}

	// Push apart overlapping sibling cells. Split cells never re-merge.
	if len(p.Cells) > 1 {
		p.separateCells()
	}

	for i := range p.Cells {
		c := &p.Cells[i]

		// Each cell steers toward the shared world-coordinate target
		tx := p.Target.X - c.X
		ty := p.Target.Y - c.Y
		dist := math.Sqrt(tx*tx + ty*ty)
		deg := math.Atan2(ty, tx)

		slowDown := 1.0
		if c.Speed <= BaseCellSpeed {
			c.Speed = BaseCellSpeed
			slowDown = MathLog(c.Mass, slowBase) - initMassLog + 1
		}

		deltaX := c.Speed * math.Cos(deg) / slowDown
		deltaY := c.Speed * math.Sin(deg) / slowDown
		if c.Speed > BaseCellSpeed {
			c.Speed -= SpeedDecay
		}
		if dist < SlowZone+c.Radius {
			deltaX *= dist / (SlowZone + c.Radius)
			deltaY *= dist / (SlowZone + c.Radius)
		}

		if !math.IsNaN(deltaX) {
			c.X += deltaX
		}
		if !math.IsNaN(deltaY) {
			c.Y += deltaY
		}

		// Keep at least a third of the cell inside the world
		border := c.Radius / 3
		c.X = Clamp(c.X, border, gameWidth-border)
		c.Y = Clamp(c.Y, border, gameHeight-border)
	}

	p.X = p.Cells[0].X
	p.Y = p.Cells[0].Y
}

// separateCells nudges overlapping cells of the same player apart
func (p *Player) separateCells() {
	for i := 0; i < len(p.Cells); i++ {
		for j := i + 1; j < len(p.Cells); j++ {
			a, b := &p.Cells[i], &p.Cells[j]
			dx := b.X - a.X
			dy := b.Y - a.Y
			dist := math.Sqrt(dx*dx + dy*dy)
			overlap := a.Radius + b.Radius - dist
			if overlap <= 0 {
				continue
			}
			if dist == 0 {
				// Coincident centers: pick an arbitrary axis
				dx, dy, dist = 1, 0, 1
			}
			push := overlap / 2
			a.X -= dx / dist * push
			a.Y -= dy / dist * push
			b.X += dx / dist * push
			b.Y += dy / dist * push
		}
	}
}

// splitCell halves cell i and appends the burst half. Mass is preserved exactly.
func (p *Player) splitCell(i int) {
	c := &p.Cells[i]
	half := c.Mass / 2
	c.Mass = half
	c.Radius = MassToRadius(half)
	newCell := NewCell(c.X, c.Y, half)
	newCell.Speed = SplitSpeed
	p.Cells = append(p.Cells, newCell)
}

// UserSplit splits every qualifying cell in response to a split command
func (p *Player) UserSplit(limitSplit int, defaultMass float64) {
	n := len(p.Cells)
	for i := 0; i < n; i++ {
		if len(p.Cells) >= limitSplit {
			return
		}
		if p.Cells[i].Mass >= defaultMass*2 {
			p.splitCell(i)
		}
	}
}

// VirusSplit applies the forced split to the cells that consumed a virus
// this tick. Cells past the split cap are left unchanged.
func (p *Player) VirusSplit(cellIndexes []int, limitSplit int, defaultMass float64) {
	for _, i := range cellIndexes {
		if len(p.Cells) >= limitSplit {
			return
		}
		if i < len(p.Cells) && p.Cells[i].Mass >= defaultMass*2 {
			p.splitCell(i)
		}
	}
}

// Shrink applies the passive mass decay for one slow tick. The player's
// total mass never drops below floor; loss is proportional across cells.
func (p *Player) Shrink(rate, floor float64) {
	if p.MassTotal <= floor {
		return
	}
	factor := 1 - rate/1000
	shrunk := p.MassTotal * factor
	if shrunk < floor {
		factor = floor / p.MassTotal
	}
	for i := range p.Cells {
		p.Cells[i].Mass *= factor
		p.Cells[i].Radius = MassToRadius(p.Cells[i].Mass)
	}
	p.RecalcMass()
}

// HeartbeatExpired reports whether the player missed its liveness window
func (p *Player) HeartbeatExpired(maxInterval time.Duration, now time.Time) bool {
	return now.Sub(p.LastHeartbeat) > maxInterval
}
