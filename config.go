package main

import "time"

// Config holds all tunables for the simulation, fixed at process start.
type Config struct {
	GameWidth  float64
	GameHeight float64

	DefaultPlayerMass float64
	FoodMass          float64
	FireFood          float64 // mass ejected per cell on a feed action
	LimitSplit        int     // max cells per player
	VirusMass         float64

	GameMass float64 // total mass budget for food spawning
	MaxFood  int
	MaxVirus int

	MassLossRate float64 // percent of cell mass lost per slow tick
	MinMassLoss  float64 // total-mass floor below which shrink stops

	SlowBase float64 // base of the logarithmic speed curve

	NewPlayerFarthest    bool // spawn new players far from everyone else
	MaxHeartbeatInterval time.Duration

	NetworkUpdateFactor int // state broadcasts per second

	RoomCapacity    int
	BackfillDelay   time.Duration
	RoomMaxLifetime time.Duration

	LeaderboardSize int

	AdminPass string
	LogChat   bool
}

// DefaultConfig returns the standard arena configuration.
func DefaultConfig() Config {
	return Config{
		GameWidth:  5000,
		GameHeight: 5000,

		DefaultPlayerMass: 10,
		FoodMass:          1,
		FireFood:          20,
		LimitSplit:        16,
		VirusMass:         100,

		GameMass: 20000,
		MaxFood:  1000,
		MaxVirus: 50,

		MassLossRate: 1,
		MinMassLoss:  50,

		SlowBase: 4.5,

		NewPlayerFarthest:    true,
		MaxHeartbeatInterval: 5 * time.Second,

		NetworkUpdateFactor: 40,

		RoomCapacity:    3,
		BackfillDelay:   10 * time.Second,
		RoomMaxLifetime: 5 * time.Minute,

		LeaderboardSize: 10,

		AdminPass: "",
		LogChat:   true,
	}
}
