package main

import "testing"

func lbPlayer(id string, mass float64) *Player {
	p := NewPlayer(id)
	p.Name = id
	p.Init(100, 100, mass)
	return p
}

func TestLeaderboardOrdering(t *testing.T) {
	lb := NewLeaderboard(10)
	players := []*Player{lbPlayer("low", 10), lbPlayer("high", 30), lbPlayer("mid", 20)}

	if !lb.Recompute(players) {
		t.Fatal("first computation should report a change")
	}
	entries := lb.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].ID != "high" || entries[1].ID != "mid" || entries[2].ID != "low" {
		t.Errorf("wrong ordering: %v", entries)
	}
}

func TestLeaderboardTruncates(t *testing.T) {
	lb := NewLeaderboard(2)
	players := []*Player{lbPlayer("a", 10), lbPlayer("b", 30), lbPlayer("c", 20)}

	lb.Recompute(players)
	if len(lb.Entries()) != 2 {
		t.Errorf("expected top 2 only, got %d", len(lb.Entries()))
	}
	if lb.Entries()[0].ID != "b" {
		t.Errorf("expected b on top, got %s", lb.Entries()[0].ID)
	}
}

func TestLeaderboardChangeDetection(t *testing.T) {
	lb := NewLeaderboard(10)
	players := []*Player{lbPlayer("a", 30), lbPlayer("b", 20)}

	lb.Recompute(players)
	if lb.Recompute(players) {
		t.Error("unchanged standings should not report a change")
	}

	players[1].ChangeCellMass(0, 5)
	if !lb.Recompute(players) {
		t.Error("a mass change should be detected")
	}

	players = players[:1]
	if !lb.Recompute(players) {
		t.Error("a removed player should be detected")
	}
}

func TestLeaderboardStableTies(t *testing.T) {
	lb := NewLeaderboard(10)
	players := []*Player{lbPlayer("first", 20), lbPlayer("second", 20)}

	lb.Recompute(players)
	if lb.Entries()[0].ID != "first" {
		t.Error("ties should keep world order")
	}
}
