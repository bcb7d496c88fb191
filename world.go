package main

// spawnCandidates is how many random points PlaceNewPlayer samples in
// farthest mode before keeping the best one.
const spawnCandidates = 10

// World owns the authoritative entity collections. It has no locking and no
// network side effects of its own; the Game serializes all access.
type World struct {
	cfg Config

	players     []*Player // stable iteration order
	playersByID map[string]*Player

	food    []*Food
	ejected []*EjectedMass
	viruses []*Virus
}

// NewWorld creates an empty world for the given configuration
func NewWorld(cfg Config) *World {
	return &World{
		cfg:         cfg,
		playersByID: make(map[string]*Player),
	}
}

// AddPlayer registers a player. Returns false if the id is already present.
func (w *World) AddPlayer(p *Player) bool {
	if _, ok := w.playersByID[p.ID]; ok {
		return false
	}
	w.players = append(w.players, p)
	w.playersByID[p.ID] = p
	return true
}

// RemovePlayer deletes a player by id; a no-op for unknown ids
func (w *World) RemovePlayer(id string) {
	if _, ok := w.playersByID[id]; !ok {
		return
	}
	delete(w.playersByID, id)
	for i, p := range w.players {
		if p.ID == id {
			w.players = append(w.players[:i], w.players[i+1:]...)
			return
		}
	}
}

// FindPlayer returns the player with the given id, or nil
func (w *World) FindPlayer(id string) *Player {
	return w.playersByID[id]
}

// Players returns the live player slice in stable order
func (w *World) Players() []*Player {
	return w.players
}

// PlayerCount returns the number of live players (human + AI)
func (w *World) PlayerCount() int {
	return len(w.players)
}

// TotalPlayerMass sums the aggregate mass of every player
func (w *World) TotalPlayerMass() float64 {
	total := 0.0
	for _, p := range w.players {
		total += p.MassTotal
	}
	return total
}

// PlaceNewPlayer returns a spawn point. In farthest mode it samples random
// candidates and keeps the one maximizing the minimum distance to existing
// players; otherwise it returns a uniformly random in-bounds point.
func (w *World) PlaceNewPlayer(farthest bool) (float64, float64) {
	radius := MassToRadius(w.cfg.DefaultPlayerMass)
	randomPoint := func() (float64, float64) {
		return radius + randFloat()*(w.cfg.GameWidth-2*radius),
			radius + randFloat()*(w.cfg.GameHeight-2*radius)
	}

	if !farthest || len(w.players) == 0 {
		return randomPoint()
	}

	bestX, bestY := randomPoint()
	bestDist := -1.0
	for i := 0; i < spawnCandidates; i++ {
		x, y := randomPoint()
		minDist := -1.0
		for _, p := range w.players {
			for j := range p.Cells {
				d := DistanceSq(x, y, p.Cells[j].X, p.Cells[j].Y)
				if minDist < 0 || d < minDist {
					minDist = d
				}
			}
		}
		if minDist > bestDist {
			bestDist = minDist
			bestX, bestY = x, y
		}
	}
	return bestX, bestY
}

// SpawnFood adds up to n food pellets
func (w *World) SpawnFood(n int) {
	for i := 0; i < n; i++ {
		w.food = append(w.food, NewFood(w.cfg.GameWidth, w.cfg.GameHeight, w.cfg.FoodMass))
	}
}

// SpawnVirus adds up to n viruses
func (w *World) SpawnVirus(n int) {
	for i := 0; i < n; i++ {
		w.viruses = append(w.viruses, NewVirus(w.cfg.GameWidth, w.cfg.GameHeight, w.cfg.VirusMass))
	}
}

// BalanceMass tops up food while under both the pellet cap and the total
// mass budget, and viruses while under their cap. Called by the slow loop.
func (w *World) BalanceMass(foodMass, gameMass float64, maxFood, maxVirus int) {
	totalMass := float64(len(w.food))*foodMass + w.TotalPlayerMass()

	massDiff := gameMass - totalMass
	foodDiff := maxFood - len(w.food)
	foodToAdd := int(massDiff / foodMass)
	if foodToAdd > foodDiff {
		foodToAdd = foodDiff
	}
	if foodToAdd > 0 {
		w.SpawnFood(foodToAdd)
	}

	if virusToAdd := maxVirus - len(w.viruses); virusToAdd > 0 {
		w.SpawnVirus(virusToAdd)
	}
}

// AddEjected launches a feed pellet from cell i of the given player
func (w *World) AddEjected(owner *Player, cellIndex int, mass float64) {
	w.ejected = append(w.ejected, NewEjectedMass(owner, cellIndex, mass))
}

// MoveEjected advances all ejected pellets one physics tick
func (w *World) MoveEjected() {
	for _, m := range w.ejected {
		m.Move(w.cfg.GameWidth, w.cfg.GameHeight)
	}
}
