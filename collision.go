package main

import (
	"log"
	"math"
)

// EatMargin is the mass ratio an eater must exceed over its prey. Equal-mass
// contacts never resolve, which stops oscillating micro-eats. Tunable.
const EatMargin = 1.1

// CheckCollision checks if two circles overlap
func CheckCollision(x1, y1, r1, x2, y2, r2 float64) bool {
	dx := x2 - x1
	dy := y2 - y1
	dist2 := dx*dx + dy*dy
	radSum := r1 + r2
	return dist2 <= radSum*radSum
}

// canEatEjected applies the ejected-pellet rules: the pellet must sit inside
// the cell, must not be a just-fired pellet of this very cell, and the cell
// must out-mass it by the eat margin.
func canEatEjected(p *Player, cellIndex int, cell *Cell, m *EjectedMass) bool {
	if !PointInCircle(m.X, m.Y, cell.X, cell.Y, cell.Radius) {
		return false
	}
	if m.OwnerID == p.ID && m.InGrace() && m.CellIndex == cellIndex {
		return false
	}
	return cell.Mass > m.Mass*EatMargin
}

// ResolveConsumption runs the per-cell sweep over food, ejected mass and
// viruses for every player. Gains are summed against the pre-removal
// collections; the first cell to claim a pellet in iteration order wins.
// Returns true if any mass was gained (the leaderboard needs a refresh).
func (w *World) ResolveConsumption(grid *SpatialGrid) bool {
	grid.Clear()
	for i, f := range w.food {
		grid.Insert(f.X, f.Y, EntityRef{Kind: 'f', Idx: i})
	}
	for i, m := range w.ejected {
		grid.Insert(m.X, m.Y, EntityRef{Kind: 'e', Idx: i})
	}
	for i, v := range w.viruses {
		grid.Insert(v.X, v.Y, EntityRef{Kind: 'v', Idx: i})
	}

	foodEaten := make([]bool, len(w.food))
	ejectedEaten := make([]bool, len(w.ejected))
	virusEaten := make([]bool, len(w.viruses))

	changed := false
	var buf []EntityRef
	for _, p := range w.players {
		var cellsToSplit []int
		for ci := 0; ci < len(p.Cells); ci++ {
			cell := &p.Cells[ci]
			buf = grid.QueryBuf(cell.X, cell.Y, cell.Radius, buf[:0])

			gain := 0.0
			for _, ref := range buf {
				switch ref.Kind {
				case 'f':
					if foodEaten[ref.Idx] {
						continue
					}
					f := w.food[ref.Idx]
					if PointInCircle(f.X, f.Y, cell.X, cell.Y, cell.Radius) {
						foodEaten[ref.Idx] = true
						gain += math.Max(1, w.cfg.FoodMass)
					}
				case 'e':
					if ejectedEaten[ref.Idx] {
						continue
					}
					m := w.ejected[ref.Idx]
					if canEatEjected(p, ci, cell, m) {
						ejectedEaten[ref.Idx] = true
						gain += m.Mass
					}
				case 'v':
					if virusEaten[ref.Idx] {
						continue
					}
					v := w.viruses[ref.Idx]
					if v.Mass < cell.Mass && PointInCircle(v.X, v.Y, cell.X, cell.Y, cell.Radius) {
						// The virus transfers no mass; it forces a split.
						virusEaten[ref.Idx] = true
						cellsToSplit = append(cellsToSplit, ci)
					}
				}
			}

			if gain > 0 {
				p.ChangeCellMass(ci, gain)
				changed = true
			}
		}
		if len(cellsToSplit) > 0 {
			p.VirusSplit(cellsToSplit, w.cfg.LimitSplit, w.cfg.DefaultPlayerMass)
		}
	}

	w.compactFood(foodEaten)
	w.compactEjected(ejectedEaten)
	w.compactViruses(virusEaten)
	return changed
}

// cellEat records one resolved cell-vs-cell consumption
type cellEat struct {
	eaterID  string
	eaterIdx int
	eatenID  string
	eatenIdx int
}

// ResolvePlayerCollisions finds, across all players' cells, pairs where one
// cell contains another's center with the eat margin, transfers the full
// mass to the eater and removes the eaten cell. Cells are flagged during the
// sweep and removed afterwards, so every cell is consumed at most once and
// mass transfer always reads pre-removal state. The first eater processed
// wins a contested cell. Players left with no cells are returned as deaths;
// the caller finishes their bookkeeping within the same tick.
func (w *World) ResolvePlayerCollisions() (deaths []*Player, anyEaten bool) {
	var eats []cellEat
	for ai := 0; ai < len(w.players); ai++ {
		a := w.players[ai]
		for bi := ai + 1; bi < len(w.players); bi++ {
			b := w.players[bi]
			for aci := range a.Cells {
				for bci := range b.Cells {
					ac := &a.Cells[aci]
					bc := &b.Cells[bci]
					if ac.Mass > bc.Mass*EatMargin && PointInCircle(bc.X, bc.Y, ac.X, ac.Y, ac.Radius) {
						eats = append(eats, cellEat{a.ID, aci, b.ID, bci})
					} else if bc.Mass > ac.Mass*EatMargin && PointInCircle(ac.X, ac.Y, bc.X, bc.Y, bc.Radius) {
						eats = append(eats, cellEat{b.ID, bci, a.ID, aci})
					}
				}
			}
		}
	}
	if len(eats) == 0 {
		return nil, false
	}

	consumed := make(map[string]map[int]bool)
	isConsumed := func(id string, idx int) bool { return consumed[id][idx] }
	markConsumed := func(id string, idx int) {
		if consumed[id] == nil {
			consumed[id] = make(map[int]bool)
		}
		consumed[id][idx] = true
	}

	for _, e := range eats {
		if isConsumed(e.eatenID, e.eatenIdx) || isConsumed(e.eaterID, e.eaterIdx) {
			continue // claimed earlier this tick, or the eater itself is gone
		}
		eater := w.FindPlayer(e.eaterID)
		eaten := w.FindPlayer(e.eatenID)
		if eater == nil || eaten == nil ||
			e.eaterIdx >= len(eater.Cells) || e.eatenIdx >= len(eaten.Cells) {
			// A concurrent removal invalidated this step; skip it.
			log.Printf("[WARN] skipping stale cell collision %s[%d] -> %s[%d]",
				e.eaterID, e.eaterIdx, e.eatenID, e.eatenIdx)
			continue
		}

		eater.ChangeCellMass(e.eaterIdx, eaten.Cells[e.eatenIdx].Mass)
		markConsumed(e.eatenID, e.eatenIdx)
		anyEaten = true
	}

	// Remove consumed cells in descending index order so earlier indexes stay valid
	for id, idxSet := range consumed {
		p := w.FindPlayer(id)
		if p == nil {
			continue
		}
		for idx := len(p.Cells) - 1; idx >= 0; idx-- {
			if idxSet[idx] {
				if p.RemoveCell(idx) {
					deaths = append(deaths, p)
				}
			}
		}
	}
	return deaths, anyEaten
}

// compactFood drops all pellets flagged eaten this tick
func (w *World) compactFood(eaten []bool) {
	out := w.food[:0]
	for i, f := range w.food {
		if !eaten[i] {
			out = append(out, f)
		}
	}
	w.food = out
}

// compactEjected drops all ejected pellets flagged eaten this tick
func (w *World) compactEjected(eaten []bool) {
	out := w.ejected[:0]
	for i, m := range w.ejected {
		if !eaten[i] {
			out = append(out, m)
		}
	}
	w.ejected = out
}

// compactViruses drops all viruses flagged eaten this tick
func (w *World) compactViruses(eaten []bool) {
	out := w.viruses[:0]
	for i, v := range w.viruses {
		if !eaten[i] {
			out = append(out, v)
		}
	}
	w.viruses = out
}
