package main

import "sort"

// Leaderboard is a derived top-N-by-mass snapshot with change detection, so
// unchanged standings are not rebroadcast.
type Leaderboard struct {
	size    int
	entries []LeaderboardEntry
}

// NewLeaderboard creates a leaderboard keeping the top `size` players
func NewLeaderboard(size int) *Leaderboard {
	return &Leaderboard{size: size}
}

// Entries returns the current standings
func (lb *Leaderboard) Entries() []LeaderboardEntry {
	return lb.entries
}

// Recompute rebuilds the standings from the player list and reports whether
// they changed (by id or mass) since the last computation. Ordering is
// descending by total mass; ties keep the players' stable world order.
func (lb *Leaderboard) Recompute(players []*Player) bool {
	ranked := make([]*Player, len(players))
	copy(ranked, players)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MassTotal > ranked[j].MassTotal
	})
	if len(ranked) > lb.size {
		ranked = ranked[:lb.size]
	}

	top := make([]LeaderboardEntry, len(ranked))
	for i, p := range ranked {
		top[i] = LeaderboardEntry{ID: p.ID, Name: p.Name, Mass: p.MassTotal}
	}

	changed := len(top) != len(lb.entries)
	if !changed {
		for i := range top {
			if top[i].ID != lb.entries[i].ID || top[i].Mass != lb.entries[i].Mass {
				changed = true
				break
			}
		}
	}
	if changed {
		lb.entries = top
	}
	return changed
}
