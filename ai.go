package main

import (
	"math"
	"time"
)

const (
	BotThreatDist   = 800.0 // flee when a predator is this close
	BotPreyDist     = 500.0 // hunt when prey is this close
	BotForageDist   = 400.0 // head for food this close
	BotFleeScale    = 2.0   // how far past itself a bot mirrors a threat
	BotWanderChance = 0.02  // per-tick chance to re-roll a wander target
	BotWanderMin    = 200.0
	BotWanderMax    = 900.0
	botSpawnOffset  = 400.0 // distance from the anchor entity at backfill spawn
)

// BotMode is the current branch of the bot decision loop
type BotMode int

const (
	BotIdle BotMode = iota
	BotFlee
	BotHunt
	BotForage
	BotWander
)

// BotState is the per-bot decision state embedded in its Player record
type BotState struct {
	Mode      BotMode
	HasTarget bool
}

var botNames = []string{
	"Blob", "Wobble", "Munch", "Gulp", "Squish",
	"Nibbles", "Chomp", "Glob", "Pudge", "Slurp",
}

// NewBotPlayer creates an AI player spawned near existing humans when
// possible, else near food, else at a random point.
func NewBotPlayer(w *World) *Player {
	bot := NewPlayer(GenerateID(4))
	bot.IsBot = true
	bot.AI = &BotState{}
	bot.Name = botNames[int(randFloat()*float64(len(botNames)))] + "-" + GenerateID(1)

	x, y := botSpawnPoint(w)
	bot.Init(x, y, w.cfg.DefaultPlayerMass)
	bot.LastHeartbeat = time.Now()
	return bot
}

func botSpawnPoint(w *World) (float64, float64) {
	for _, p := range w.players {
		if !p.IsBot && len(p.Cells) > 0 {
			angle := randFloat() * 2 * math.Pi
			x := Clamp(p.X+math.Cos(angle)*botSpawnOffset, 0, w.cfg.GameWidth)
			y := Clamp(p.Y+math.Sin(angle)*botSpawnOffset, 0, w.cfg.GameHeight)
			return x, y
		}
	}
	if len(w.food) > 0 {
		f := w.food[int(randFloat()*float64(len(w.food)))]
		return f.X, f.Y
	}
	return w.PlaceNewPlayer(false)
}

// BotDecide runs one decision step for an AI player, setting its movement
// target. Priority: flee a heavier threat, hunt lighter prey, forage the
// nearest food, otherwise wander. A bot with no cells takes no action.
func BotDecide(bot *Player, w *World) {
	if !bot.IsBot || bot.AI == nil || len(bot.Cells) == 0 {
		return
	}
	ai := bot.AI

	// Flee: nearest player out-massing us by the eat margin
	if threat, dist := nearestPlayer(bot, w, func(other *Player) bool {
		return other.MassTotal > bot.MassTotal*EatMargin
	}); threat != nil && dist < BotThreatDist {
		bot.Target = Target{
			X: bot.X + (bot.X-threat.X)*BotFleeScale,
			Y: bot.Y + (bot.Y-threat.Y)*BotFleeScale,
		}
		ai.Mode = BotFlee
		ai.HasTarget = true
		return
	}

	// Hunt: nearest player we out-mass by the eat margin
	if prey, dist := nearestPlayer(bot, w, func(other *Player) bool {
		return other.MassTotal < bot.MassTotal/EatMargin
	}); prey != nil && dist < BotPreyDist {
		bot.Target = Target{X: prey.X, Y: prey.Y}
		ai.Mode = BotHunt
		ai.HasTarget = true
		return
	}

	// Forage: nearest food pellet
	if f, dist := nearestFood(bot, w); f != nil && dist < BotForageDist {
		bot.Target = Target{X: f.X, Y: f.Y}
		ai.Mode = BotForage
		ai.HasTarget = true
		return
	}

	// Wander: keep the current target unless unset or the randomizer fires
	if !ai.HasTarget || randFloat() < BotWanderChance {
		angle := randFloat() * 2 * math.Pi
		dist := BotWanderMin + randFloat()*(BotWanderMax-BotWanderMin)
		bot.Target = Target{
			X: Clamp(bot.X+math.Cos(angle)*dist, 0, w.cfg.GameWidth),
			Y: Clamp(bot.Y+math.Sin(angle)*dist, 0, w.cfg.GameHeight),
		}
		ai.HasTarget = true
	}
	ai.Mode = BotWander
}

// nearestPlayer returns the closest other player passing the filter
func nearestPlayer(bot *Player, w *World, match func(*Player) bool) (*Player, float64) {
	var best *Player
	bestDist := math.MaxFloat64
	for _, other := range w.players {
		if other.ID == bot.ID || len(other.Cells) == 0 || !match(other) {
			continue
		}
		d := Distance(bot.X, bot.Y, other.X, other.Y)
		if d < bestDist {
			bestDist = d
			best = other
		}
	}
	return best, bestDist
}

// nearestFood returns the closest food pellet
func nearestFood(bot *Player, w *World) (*Food, float64) {
	var best *Food
	bestDist := math.MaxFloat64
	for _, f := range w.food {
		d := Distance(bot.X, bot.Y, f.X, f.Y)
		if d < bestDist {
			bestDist = d
			best = f
		}
	}
	return best, bestDist
}
