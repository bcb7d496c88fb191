package main

import (
	"math"
	"testing"
	"time"
)

func TestPlayerInit(t *testing.T) {
	p := NewPlayer("p1")
	p.Init(100, 200, 10)

	if p.X != 100 || p.Y != 200 {
		t.Errorf("expected position (100,200), got (%f,%f)", p.X, p.Y)
	}
	if len(p.Cells) != 1 {
		t.Fatalf("expected 1 cell, got %d", len(p.Cells))
	}
	if p.MassTotal != 10 {
		t.Errorf("expected mass 10, got %f", p.MassTotal)
	}
	if p.Cells[0].Radius != MassToRadius(10) {
		t.Errorf("cell radius not derived from mass")
	}
}

func TestPlayerMoveTowardTarget(t *testing.T) {
	p := NewPlayer("p1")
	p.Init(1000, 1000, 10)
	p.Target = Target{X: 2000, Y: 1000}

	p.Move(4.5, 5000, 5000, MathLog(10, 4.5))

	if p.X <= 1000 {
		t.Errorf("expected movement toward +x, got x=%f", p.X)
	}
	if math.Abs(p.Y-1000) > 0.001 {
		t.Errorf("expected no y movement, got y=%f", p.Y)
	}
}

func TestPlayerMoveSlowsWithMass(t *testing.T) {
	light := NewPlayer("light")
	light.Init(1000, 1000, 10)
	light.Target = Target{X: 3000, Y: 1000}

	heavy := NewPlayer("heavy")
	heavy.Init(1000, 1000, 400)
	heavy.Target = Target{X: 3000, Y: 1000}

	initMassLog := MathLog(10, 4.5)
	light.Move(4.5, 5000, 5000, initMassLog)
	heavy.Move(4.5, 5000, 5000, initMassLog)

	if heavy.X-1000 >= light.X-1000 {
		t.Errorf("heavy cell should move slower: light dx=%f heavy dx=%f",
			light.X-1000, heavy.X-1000)
	}
}

func TestPlayerMoveEasesNearTarget(t *testing.T) {
	p := NewPlayer("p1")
	p.Init(1000, 1000, 10)
	p.Target = Target{X: 1003, Y: 1000}

	p.Move(4.5, 5000, 5000, MathLog(10, 4.5))

	// Inside the slow zone the step scales with remaining distance,
	// so a 3-unit gap must not be overshot by the full cruise speed.
	if p.X > 1003 {
		t.Errorf("overshot target: x=%f", p.X)
	}
}

func TestPlayerMoveClampsToBorder(t *testing.T) {
	p := NewPlayer("p1")
	p.Init(5, 5, 10)
	p.Target = Target{X: -500, Y: -500}

	for i := 0; i < 20; i++ {
		p.Move(4.5, 5000, 5000, MathLog(10, 4.5))
	}

	border := p.Cells[0].Radius / 3
	if p.X < border || p.Y < border {
		t.Errorf("cell escaped the border clamp: (%f,%f) border=%f", p.X, p.Y, border)
	}
}

func TestUserSplitPreservesMass(t *testing.T) {
	p := NewPlayer("p1")
	p.Init(500, 500, 100)

	p.UserSplit(16, 10)

	if len(p.Cells) != 2 {
		t.Fatalf("expected 2 cells after split, got %d", len(p.Cells))
	}
	if p.Cells[0].Mass != 50 || p.Cells[1].Mass != 50 {
		t.Errorf("expected two 50-mass halves, got %f and %f", p.Cells[0].Mass, p.Cells[1].Mass)
	}
	if p.MassTotal != 100 {
		t.Errorf("split changed total mass: %f", p.MassTotal)
	}
	if p.Cells[1].Speed != SplitSpeed {
		t.Errorf("new half should launch at split speed, got %f", p.Cells[1].Speed)
	}
}

func TestUserSplitRespectsCap(t *testing.T) {
	p := NewPlayer("p1")
	p.Init(500, 500, 1000)

	for i := 0; i < 10; i++ {
		p.UserSplit(4, 10)
	}

	if len(p.Cells) > 4 {
		t.Errorf("split cap exceeded: %d cells", len(p.Cells))
	}
}

func TestUserSplitMinimumMass(t *testing.T) {
	p := NewPlayer("p1")
	p.Init(500, 500, 19) // below 2x default mass

	p.UserSplit(16, 10)

	if len(p.Cells) != 1 {
		t.Errorf("cell below 2x default mass must not split, got %d cells", len(p.Cells))
	}
}

func TestSplitBurstDecays(t *testing.T) {
	p := NewPlayer("p1")
	p.Init(2500, 2500, 100)
	p.Target = Target{X: 3000, Y: 2500}
	p.UserSplit(16, 10)

	// Burst speed decays by a fixed step per tick back to cruise speed
	for i := 0; i < 100; i++ {
		p.Move(4.5, 5000, 5000, MathLog(10, 4.5))
	}
	for i := range p.Cells {
		if p.Cells[i].Speed > BaseCellSpeed {
			t.Errorf("cell %d still in burst after 100 ticks: speed=%f", i, p.Cells[i].Speed)
		}
	}
}

func TestSeparateCellsPushApart(t *testing.T) {
	p := NewPlayer("p1")
	p.Init(2500, 2500, 100)
	p.UserSplit(16, 10)
	p.Target = Target{X: 2500, Y: 2500}

	for i := 0; i < 60; i++ {
		p.Move(4.5, 5000, 5000, MathLog(10, 4.5))
	}

	a, b := p.Cells[0], p.Cells[1]
	dist := Distance(a.X, a.Y, b.X, b.Y)
	if dist < (a.Radius+b.Radius)*0.9 {
		t.Errorf("sibling cells still overlapping after settling: dist=%f radii=%f",
			dist, a.Radius+b.Radius)
	}
}

func TestShrink(t *testing.T) {
	p := NewPlayer("p1")
	p.Init(500, 500, 100)

	p.Shrink(1, 50)

	if math.Abs(p.MassTotal-99.9) > 0.0001 {
		t.Errorf("expected 99.9 after 0.1%% shrink, got %f", p.MassTotal)
	}
}

func TestShrinkStopsAtFloor(t *testing.T) {
	p := NewPlayer("p1")
	p.Init(500, 500, 50)

	p.Shrink(1, 50)

	if p.MassTotal != 50 {
		t.Errorf("mass at the floor must not shrink, got %f", p.MassTotal)
	}
}

func TestShrinkNeverCrossesFloor(t *testing.T) {
	p := NewPlayer("p1")
	p.Init(500, 500, 50.01)

	p.Shrink(1, 50)

	if p.MassTotal < 50-0.0001 {
		t.Errorf("shrink crossed the floor: %f", p.MassTotal)
	}
}

func TestShrinkProportionalAcrossCells(t *testing.T) {
	p := NewPlayer("p1")
	p.Init(500, 500, 400)
	p.UserSplit(16, 10)

	p.Shrink(1, 50)

	if math.Abs(p.Cells[0].Mass-p.Cells[1].Mass) > 0.0001 {
		t.Errorf("shrink must stay proportional: %f vs %f", p.Cells[0].Mass, p.Cells[1].Mass)
	}
}

func TestChangeCellMassUpdatesRadius(t *testing.T) {
	p := NewPlayer("p1")
	p.Init(500, 500, 10)

	p.ChangeCellMass(0, 90)

	if p.Cells[0].Mass != 100 {
		t.Errorf("expected mass 100, got %f", p.Cells[0].Mass)
	}
	if p.Cells[0].Radius != MassToRadius(100) {
		t.Errorf("radius not updated with mass")
	}
	if p.MassTotal != 100 {
		t.Errorf("total mass not updated: %f", p.MassTotal)
	}
}

func TestRemoveCellReportsDeath(t *testing.T) {
	p := NewPlayer("p1")
	p.Init(500, 500, 100)
	p.UserSplit(16, 10)

	if p.RemoveCell(1) {
		t.Error("player with a remaining cell is not dead")
	}
	if p.MassTotal != 50 {
		t.Errorf("expected 50 after removing one half, got %f", p.MassTotal)
	}
	if !p.RemoveCell(0) {
		t.Error("removing the last cell must report death")
	}
}

func TestHeartbeatExpired(t *testing.T) {
	p := NewPlayer("p1")
	now := time.Now()
	p.LastHeartbeat = now.Add(-6 * time.Second)

	if !p.HeartbeatExpired(5*time.Second, now) {
		t.Error("6s-old heartbeat should be expired with a 5s window")
	}
	p.LastHeartbeat = now.Add(-time.Second)
	if p.HeartbeatExpired(5*time.Second, now) {
		t.Error("1s-old heartbeat should not be expired")
	}
}
