package main

import (
	"math"
	"testing"
)

func testWorld() *World {
	cfg := DefaultConfig()
	return NewWorld(cfg)
}

func addWorldPlayer(w *World, id string, x, y, mass float64) *Player {
	p := NewPlayer(id)
	p.Init(x, y, mass)
	p.Name = id
	w.AddPlayer(p)
	return p
}

func TestCheckCollision(t *testing.T) {
	if !CheckCollision(0, 0, 10, 15, 0, 10) {
		t.Error("overlapping circles should collide")
	}
	if CheckCollision(0, 0, 10, 25, 0, 10) {
		t.Error("separated circles should not collide")
	}
	if !CheckCollision(0, 0, 10, 20, 0, 10) {
		t.Error("touching circles should collide")
	}
}

func TestConsumeFood(t *testing.T) {
	w := testWorld()
	p := addWorldPlayer(w, "p1", 1000, 1000, 10)
	w.food = append(w.food, &Food{ID: "f1", X: 1000, Y: 1000, Mass: 1, Radius: MassToRadius(1)})

	grid := NewSpatialGrid(w.cfg.GameWidth, w.cfg.GameHeight)
	changed := w.ResolveConsumption(grid)

	if !changed {
		t.Error("eating food should report a change")
	}
	if len(w.food) != 0 {
		t.Errorf("expected food removed, %d left", len(w.food))
	}
	if p.MassTotal != 11 {
		t.Errorf("expected mass 11 after one pellet, got %f", p.MassTotal)
	}
}

func TestFoodEatenOnce(t *testing.T) {
	w := testWorld()
	a := addWorldPlayer(w, "a", 1000, 1000, 10)
	b := addWorldPlayer(w, "b", 1010, 1000, 10)
	w.food = append(w.food, &Food{ID: "f1", X: 1005, Y: 1000, Mass: 1, Radius: MassToRadius(1)})

	grid := NewSpatialGrid(w.cfg.GameWidth, w.cfg.GameHeight)
	w.ResolveConsumption(grid)

	total := a.MassTotal + b.MassTotal
	if total != 21 {
		t.Errorf("a contested pellet must pay out exactly once: total=%f", total)
	}
}

func TestEjectedGraceWindow(t *testing.T) {
	w := testWorld()
	p := addWorldPlayer(w, "p1", 1000, 1000, 100)
	w.ejected = append(w.ejected, &EjectedMass{
		ID: "m1", OwnerID: "p1", CellIndex: 0,
		X: 1000, Y: 1000, Mass: 20, Radius: MassToRadius(20),
		Speed: 10, // still in flight
	})

	grid := NewSpatialGrid(w.cfg.GameWidth, w.cfg.GameHeight)
	w.ResolveConsumption(grid)

	if len(w.ejected) != 1 {
		t.Fatal("pellet in its launch grace must not be eaten by the firing cell")
	}

	// Once the pellet comes to rest the grace ends
	w.ejected[0].Speed = 0
	w.ResolveConsumption(grid)

	if len(w.ejected) != 0 {
		t.Error("settled pellet should be re-eaten by its owner")
	}
	if p.MassTotal != 120 {
		t.Errorf("expected mass 120 after reclaiming pellet, got %f", p.MassTotal)
	}
}

func TestEjectedEatenByOtherPlayerDuringGrace(t *testing.T) {
	w := testWorld()
	other := addWorldPlayer(w, "other", 1000, 1000, 100)
	w.ejected = append(w.ejected, &EjectedMass{
		ID: "m1", OwnerID: "someone-else", CellIndex: 0,
		X: 1000, Y: 1000, Mass: 20, Radius: MassToRadius(20),
		Speed: 10,
	})

	grid := NewSpatialGrid(w.cfg.GameWidth, w.cfg.GameHeight)
	w.ResolveConsumption(grid)

	if len(w.ejected) != 0 {
		t.Error("grace only protects against the firing cell, not other players")
	}
	if other.MassTotal != 120 {
		t.Errorf("expected mass 120, got %f", other.MassTotal)
	}
}

func TestEjectedRequiresMargin(t *testing.T) {
	w := testWorld()
	p := addWorldPlayer(w, "p1", 1000, 1000, 21) // 21 < 20*1.1
	w.ejected = append(w.ejected, &EjectedMass{
		ID: "m1", OwnerID: "someone-else", CellIndex: 0,
		X: 1000, Y: 1000, Mass: 20, Radius: MassToRadius(20),
	})

	grid := NewSpatialGrid(w.cfg.GameWidth, w.cfg.GameHeight)
	w.ResolveConsumption(grid)

	if len(w.ejected) != 1 {
		t.Error("a cell below the eat margin must not swallow the pellet")
	}
	if p.MassTotal != 21 {
		t.Errorf("mass should be unchanged, got %f", p.MassTotal)
	}
}

func TestVirusForcesSplit(t *testing.T) {
	w := testWorld()
	p := addWorldPlayer(w, "p1", 1000, 1000, 150)
	w.viruses = append(w.viruses, &Virus{ID: "v1", X: 1000, Y: 1000, Mass: 100, Radius: MassToRadius(100)})

	grid := NewSpatialGrid(w.cfg.GameWidth, w.cfg.GameHeight)
	w.ResolveConsumption(grid)

	if len(w.viruses) != 0 {
		t.Error("absorbed virus should be removed")
	}
	if len(p.Cells) != 2 {
		t.Fatalf("virus must force a split, got %d cells", len(p.Cells))
	}
	if math.Abs(p.MassTotal-150) > 0.0001 {
		t.Errorf("virus transfers no mass: total=%f", p.MassTotal)
	}
	if p.Cells[0].Mass != 75 || p.Cells[1].Mass != 75 {
		t.Errorf("expected two 75-mass halves, got %f and %f", p.Cells[0].Mass, p.Cells[1].Mass)
	}
}

func TestVirusIgnoresLighterCell(t *testing.T) {
	w := testWorld()
	p := addWorldPlayer(w, "p1", 1000, 1000, 50)
	w.viruses = append(w.viruses, &Virus{ID: "v1", X: 1000, Y: 1000, Mass: 100, Radius: MassToRadius(100)})

	grid := NewSpatialGrid(w.cfg.GameWidth, w.cfg.GameHeight)
	w.ResolveConsumption(grid)

	if len(w.viruses) != 1 {
		t.Error("a lighter cell must pass over the virus")
	}
	if len(p.Cells) != 1 {
		t.Error("lighter cell must not split")
	}
}

func TestVirusSplitRespectsCellCap(t *testing.T) {
	w := testWorld()
	w.cfg.LimitSplit = 1
	p := addWorldPlayer(w, "p1", 1000, 1000, 150)
	w.viruses = append(w.viruses, &Virus{ID: "v1", X: 1000, Y: 1000, Mass: 100, Radius: MassToRadius(100)})

	grid := NewSpatialGrid(w.cfg.GameWidth, w.cfg.GameHeight)
	w.ResolveConsumption(grid)

	if len(p.Cells) != 1 {
		t.Errorf("cell at the split cap must stay whole, got %d cells", len(p.Cells))
	}
}

func TestPlayerEatsPlayer(t *testing.T) {
	w := testWorld()
	big := addWorldPlayer(w, "big", 1000, 1000, 100)
	addWorldPlayer(w, "small", 1000, 1000, 10)

	deaths, eaten := w.ResolvePlayerCollisions()

	if !eaten {
		t.Fatal("expected a consumption")
	}
	if len(deaths) != 1 || deaths[0].ID != "small" {
		t.Fatalf("expected small to die, got %v", deaths)
	}
	if big.MassTotal != 110 {
		t.Errorf("eater should absorb the full cell mass: %f", big.MassTotal)
	}
}

func TestEqualMassNoEat(t *testing.T) {
	w := testWorld()
	addWorldPlayer(w, "a", 1000, 1000, 50)
	addWorldPlayer(w, "b", 1000, 1000, 50)

	deaths, eaten := w.ResolvePlayerCollisions()

	if eaten || len(deaths) != 0 {
		t.Error("equal-mass contact must not resolve")
	}
}

func TestMarginJustBelowNoEat(t *testing.T) {
	w := testWorld()
	// 109 < 100 * 1.1: under the margin, no eat either way
	addWorldPlayer(w, "a", 1000, 1000, 109)
	addWorldPlayer(w, "b", 1000, 1000, 100)

	_, eaten := w.ResolvePlayerCollisions()
	if eaten {
		t.Error("eater below the mass margin must not consume")
	}
}

func TestPartialEatLeavesPlayerAlive(t *testing.T) {
	w := testWorld()
	big := addWorldPlayer(w, "big", 1000, 1000, 400)
	small := addWorldPlayer(w, "small", 1000, 1000, 100)
	small.UserSplit(16, 10)
	// Move one half out of reach
	small.Cells[1].X = 4000
	small.Cells[1].Y = 4000

	deaths, eaten := w.ResolvePlayerCollisions()

	if !eaten {
		t.Fatal("expected the overlapped half to be eaten")
	}
	if len(deaths) != 0 {
		t.Error("player with a surviving cell is not dead")
	}
	if len(small.Cells) != 1 {
		t.Errorf("expected 1 surviving cell, got %d", len(small.Cells))
	}
	if big.MassTotal != 450 {
		t.Errorf("eater should gain exactly the eaten half: %f", big.MassTotal)
	}
}

func TestRequireContainmentNotTouch(t *testing.T) {
	w := testWorld()
	big := addWorldPlayer(w, "big", 1000, 1000, 100)
	// Touching but center outside the big cell's radius
	addWorldPlayer(w, "small", 1000+big.Cells[0].Radius+5, 1000, 10)

	_, eaten := w.ResolvePlayerCollisions()
	if eaten {
		t.Error("consumption requires center containment, not mere contact")
	}
}
