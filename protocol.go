package main

import "encoding/json"

// Client -> Server message types. The one-character names are the hot-path
// messages sent every client frame.
const (
	MsgGotit         = "gotit"     // join payload: name + screen size
	MsgHeartbeat     = "0"         // movement target, doubles as liveness
	MsgFeed          = "1"         // eject mass from qualifying cells
	MsgSplit         = "2"         // split qualifying cells
	MsgRespawn       = "respawn"
	MsgPingcheck     = "pingcheck"
	MsgWindowResized = "windowResized"
	MsgPlayerChat    = "playerChat"
	MsgPass          = "pass"       // admin password auth
	MsgAdminAuth     = "admin_auth" // admin token re-auth
	MsgKickCmd       = "kick"       // admin kick-by-name
	MsgJoinQueue     = "join_matchmaking"
	MsgGetRooms      = "get_rooms"
	MsgSpectateRoom  = "spectate_room"
)

// Server -> Client message types
const (
	MsgWelcome        = "welcome"
	MsgPlayerJoin     = "playerJoin"
	MsgPlayerLeave    = "playerDisconnect"
	MsgPlayerDied     = "playerDied"
	MsgRIP            = "RIP"
	MsgLeaderboard    = "leaderboard"
	MsgChatRelay      = "serverSendPlayerChat"
	MsgServerMSG      = "serverMSG"
	MsgKick           = "kick"
	MsgPongcheck      = "pongcheck"
	MsgAdminToken     = "admin_token"
	MsgMatching       = "matching"
	MsgMatchFound     = "match_found"
	MsgRoomList       = "room_list"
	MsgSpectateJoined = "spectate_joined"
	MsgSpectateFailed = "spectate_failed"
	MsgRoomEnded      = "room_ended"
	MsgWin            = "win"
	MsgAIContinue     = "ai_continue"
)

// Envelope wraps all outgoing JSON messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages; json.RawMessage defers payload decode
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// GotitMsg is the join payload sent after the welcome handshake
type GotitMsg struct {
	Name         string  `json:"name"`
	ScreenWidth  float64 `json:"screenWidth"`
	ScreenHeight float64 `json:"screenHeight"`
}

// WindowResizedMsg updates the viewport dimensions used for filtering
type WindowResizedMsg struct {
	ScreenWidth  float64 `json:"screenWidth"`
	ScreenHeight float64 `json:"screenHeight"`
}

// ChatMsg is a relayed chat line
type ChatMsg struct {
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

// PassMsg carries the shared admin password
type PassMsg struct {
	Password string `json:"password"`
}

// AdminAuthMsg carries a previously issued admin token
type AdminAuthMsg struct {
	Token string `json:"token"`
}

// AdminTokenMsg returns the signed admin token after a successful pass
type AdminTokenMsg struct {
	Token string `json:"token"`
}

// KickCmdMsg is the admin kick-by-name command
type KickCmdMsg struct {
	Name   string `json:"name"`
	Reason string `json:"reason,omitempty"`
}

// SpectateRoomMsg requests to watch a specific room
type SpectateRoomMsg struct {
	RoomID string `json:"roomId"`
}

// NameMsg announces a join/leave/death by display name
type NameMsg struct {
	Name string `json:"name"`
}

// WelcomeMsg is sent on connect with the player's state and world bounds
type WelcomeMsg struct {
	Player     PlayerState `json:"player"`
	GameWidth  float64     `json:"gameWidth"`
	GameHeight float64     `json:"gameHeight"`
}

// CellState is one cell in a broadcast snapshot
type CellState struct {
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Mass   float64 `json:"m" msgpack:"m"`
	Radius float64 `json:"r" msgpack:"r"`
}

// PlayerState is a player's visible state in a broadcast snapshot
type PlayerState struct {
	ID        string      `json:"id" msgpack:"id"`
	Name      string      `json:"n" msgpack:"n"`
	X         float64     `json:"x" msgpack:"x"`
	Y         float64     `json:"y" msgpack:"y"`
	Hue       int         `json:"h" msgpack:"h"`
	MassTotal float64     `json:"mt" msgpack:"mt"`
	Cells     []CellState `json:"c" msgpack:"c"`
}

// FoodState is one food pellet in a snapshot
type FoodState struct {
	X      float64 `msgpack:"x"`
	Y      float64 `msgpack:"y"`
	Radius float64 `msgpack:"r"`
	Hue    int     `msgpack:"h"`
}

// MassState is one ejected pellet in a snapshot
type MassState struct {
	X      float64 `msgpack:"x"`
	Y      float64 `msgpack:"y"`
	Radius float64 `msgpack:"r"`
	Hue    int     `msgpack:"h"`
}

// VirusState is one virus in a snapshot
type VirusState struct {
	X      float64 `msgpack:"x"`
	Y      float64 `msgpack:"y"`
	Radius float64 `msgpack:"r"`
}

// VisibleState is the per-player filtered world snapshot, sent as a binary
// msgpack frame every network tick.
type VisibleState struct {
	Me      PlayerState   `msgpack:"me"`
	Players []PlayerState `msgpack:"p"`
	Food    []FoodState   `msgpack:"f"`
	Mass    []MassState   `msgpack:"e"`
	Viruses []VirusState  `msgpack:"v"`
}

// LeaderboardEntry is one row of the top-N standings
type LeaderboardEntry struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Mass float64 `json:"mass"`
}

// LeaderboardMsg carries the standings and the live player count
type LeaderboardMsg struct {
	Players     int                `json:"players"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

// MatchingMsg tells a queued player how many more are needed
type MatchingMsg struct {
	Waiting int `json:"waiting"`
}

// MatchFoundMsg notifies a queued player of its room
type MatchFoundMsg struct {
	RoomID string `json:"roomId"`
}

// RoomInfo summarizes one playing room for the room list
type RoomInfo struct {
	RoomID         string `json:"roomId"`
	PlayerCount    int    `json:"playerCount"`
	SpectatorCount int    `json:"spectatorCount"`
	CreatedAt      int64  `json:"createdAt"` // unix millis
}

// SpectateJoinedMsg confirms a spectate request
type SpectateJoinedMsg struct {
	RoomID string `json:"roomId"`
}

// SpectateFailedMsg rejects a spectate request
type SpectateFailedMsg struct {
	Reason string `json:"reason"`
}

// RoomEndedMsg announces a room's end to losers and spectators
type RoomEndedMsg struct {
	RoomID string `json:"roomId"`
	Winner string `json:"winner,omitempty"`
}

// WinMsg is sent to the winning player only
type WinMsg struct {
	RoomID string `json:"roomId"`
}

// AIContinueMsg tells spectators the match continues with bots only
type AIContinueMsg struct {
	RoomID string `json:"roomId"`
}
