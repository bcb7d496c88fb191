package main

// Virus is a static hazard. A cell heavy enough to absorb it gains no mass
// and is forced to split.
type Virus struct {
	ID     string
	X, Y   float64
	Mass   float64
	Radius float64
}

// NewVirus spawns a virus at a random position away from the world edges
func NewVirus(gameWidth, gameHeight, mass float64) *Virus {
	radius := MassToRadius(mass)
	return &Virus{
		ID:     GenerateID(4),
		X:      radius + randFloat()*(gameWidth-2*radius),
		Y:      radius + randFloat()*(gameHeight-2*radius),
		Mass:   mass,
		Radius: radius,
	}
}
