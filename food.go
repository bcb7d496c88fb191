package main

// Food is a static pellet consumed atomically by the first cell to claim it
type Food struct {
	ID     string
	X, Y   float64
	Mass   float64
	Radius float64
	Hue    int
}

// NewFood spawns a pellet at a uniformly random in-bounds position
func NewFood(gameWidth, gameHeight, mass float64) *Food {
	return &Food{
		ID:     GenerateID(4),
		X:      randFloat() * gameWidth,
		Y:      randFloat() * gameHeight,
		Mass:   mass,
		Radius: MassToRadius(mass),
		Hue:    int(randFloat() * 360),
	}
}

// EjectedMass is a pellet fired from a cell by a feed action. While Speed is
// above zero the pellet is still in its launch grace window and cannot be
// re-eaten by the cell that fired it.
type EjectedMass struct {
	ID         string
	OwnerID    string // player that ejected it
	CellIndex  int    // index of the ejecting cell at fire time
	X, Y       float64
	Mass       float64
	Radius     float64
	Hue        int
	DirX, DirY float64 // unit launch direction
	Speed      float64
}

// NewEjectedMass creates a pellet launched from cell i of the firing player,
// aimed along the player's current target direction.
func NewEjectedMass(owner *Player, cellIndex int, mass float64) *EjectedMass {
	c := owner.Cells[cellIndex]
	dx := owner.Target.X - c.X
	dy := owner.Target.Y - c.Y
	dist := Distance(0, 0, dx, dy)
	if dist > 0 {
		dx /= dist
		dy /= dist
	}
	return &EjectedMass{
		ID:        GenerateID(4),
		OwnerID:   owner.ID,
		CellIndex: cellIndex,
		X:         c.X,
		Y:         c.Y,
		Mass:      mass,
		Radius:    MassToRadius(mass),
		Hue:       owner.Hue,
		DirX:      dx,
		DirY:      dy,
		Speed:     SplitSpeed,
	}
}

// Move advances the pellet one physics tick while its launch speed lasts
func (m *EjectedMass) Move(gameWidth, gameHeight float64) {
	if m.Speed <= 0 {
		return
	}
	m.X += m.DirX * m.Speed
	m.Y += m.DirY * m.Speed
	m.Speed -= SpeedDecay
	if m.Speed < 0 {
		m.Speed = 0
	}
	m.X = Clamp(m.X, m.Radius, gameWidth-m.Radius)
	m.Y = Clamp(m.Y, m.Radius, gameHeight-m.Radius)
}

// InGrace reports whether the pellet is still protected from its own cell
func (m *EjectedMass) InGrace() bool {
	return m.Speed > 0
}
