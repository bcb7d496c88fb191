package main

import "testing"

func TestWorldAddRemoveFind(t *testing.T) {
	w := testWorld()
	p := addWorldPlayer(w, "p1", 100, 100, 10)

	if w.PlayerCount() != 1 {
		t.Errorf("expected 1 player, got %d", w.PlayerCount())
	}
	if w.FindPlayer("p1") != p {
		t.Error("FindPlayer should return the added player")
	}
	if w.AddPlayer(NewPlayer("p1")) {
		t.Error("duplicate id must be rejected")
	}

	w.RemovePlayer("p1")
	if w.PlayerCount() != 0 {
		t.Errorf("expected 0 players, got %d", w.PlayerCount())
	}
	if w.FindPlayer("p1") != nil {
		t.Error("removed player should not be found")
	}
	w.RemovePlayer("p1") // no-op
}

func TestBalanceMassRespectsFoodCap(t *testing.T) {
	w := testWorld()
	w.BalanceMass(w.cfg.FoodMass, w.cfg.GameMass, w.cfg.MaxFood, w.cfg.MaxVirus)

	if len(w.food) != w.cfg.MaxFood {
		t.Errorf("expected food topped to cap %d, got %d", w.cfg.MaxFood, len(w.food))
	}
	if len(w.viruses) != w.cfg.MaxVirus {
		t.Errorf("expected viruses topped to cap %d, got %d", w.cfg.MaxVirus, len(w.viruses))
	}

	// Re-balancing a full world adds nothing
	w.BalanceMass(w.cfg.FoodMass, w.cfg.GameMass, w.cfg.MaxFood, w.cfg.MaxVirus)
	if len(w.food) != w.cfg.MaxFood {
		t.Errorf("food count drifted past the cap: %d", len(w.food))
	}
}

func TestBalanceMassRespectsMassBudget(t *testing.T) {
	w := testWorld()
	// A very heavy player eats most of the budget
	addWorldPlayer(w, "whale", 1000, 1000, w.cfg.GameMass-100)

	w.BalanceMass(w.cfg.FoodMass, w.cfg.GameMass, w.cfg.MaxFood, w.cfg.MaxVirus)

	if float64(len(w.food)) > 100/w.cfg.FoodMass {
		t.Errorf("food spawn exceeded the mass budget: %d pellets", len(w.food))
	}
}

func TestPlaceNewPlayerInBounds(t *testing.T) {
	w := testWorld()
	for i := 0; i < 50; i++ {
		x, y := w.PlaceNewPlayer(false)
		if x < 0 || x > w.cfg.GameWidth || y < 0 || y > w.cfg.GameHeight {
			t.Fatalf("spawn out of bounds: (%f,%f)", x, y)
		}
	}
}

func TestPlaceNewPlayerFarthest(t *testing.T) {
	w := testWorld()
	// Crowd one corner
	addWorldPlayer(w, "a", 100, 100, 10)
	addWorldPlayer(w, "b", 200, 100, 10)
	addWorldPlayer(w, "c", 100, 200, 10)

	// With candidates sampled over the whole map, the picked spawn should
	// reliably land outside the crowded corner.
	farCount := 0
	for i := 0; i < 20; i++ {
		x, y := w.PlaceNewPlayer(true)
		if Distance(x, y, 100, 100) > 500 {
			farCount++
		}
	}
	if farCount < 15 {
		t.Errorf("farthest placement rarely escaped the crowd: %d/20", farCount)
	}
}

func TestAddAndMoveEjected(t *testing.T) {
	w := testWorld()
	p := addWorldPlayer(w, "p1", 1000, 1000, 100)
	p.Target = Target{X: 2000, Y: 1000}

	w.AddEjected(p, 0, 20)
	if len(w.ejected) != 1 {
		t.Fatalf("expected 1 ejected pellet, got %d", len(w.ejected))
	}

	m := w.ejected[0]
	if m.DirX <= 0 {
		t.Errorf("pellet should launch toward the target, dirX=%f", m.DirX)
	}
	startX := m.X
	w.MoveEjected()
	if m.X <= startX {
		t.Error("pellet should advance while in flight")
	}

	// Burst speed fully decays and the pellet comes to rest
	for i := 0; i < 100; i++ {
		w.MoveEjected()
	}
	if m.InGrace() {
		t.Error("pellet should be at rest after the burst decays")
	}
	restX := m.X
	w.MoveEjected()
	if m.X != restX {
		t.Error("resting pellet must not move")
	}
}

func TestTotalPlayerMass(t *testing.T) {
	w := testWorld()
	addWorldPlayer(w, "a", 100, 100, 30)
	addWorldPlayer(w, "b", 200, 200, 70)

	if w.TotalPlayerMass() != 100 {
		t.Errorf("expected total 100, got %f", w.TotalPlayerMass())
	}
}
