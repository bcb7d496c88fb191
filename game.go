package main

import (
	"log"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	TickRate     = 60 // physics ticks per second
	TickDuration = time.Second / TickRate
	SlowTick     = time.Second // economy/leaderboard/balance cadence

	maxChatLen     = 35 // chat line cap, in runes
	chatHistoryLen = 10 // persisted lines replayed to a fresh joiner
)

// viewSlack widens the viewport test so entities partially on screen are
// still included.
const viewSlack = 20.0

// Broadcaster abstracts a connected client for sending
type Broadcaster interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
	Close()
}

// Game owns the single world and serializes everything that touches it:
// the three periodic loops run in one goroutine, and inbound intents take
// the same mutex, so a tick is never observable half-applied.
type Game struct {
	mu       sync.Mutex
	cfg      Config
	world    *World
	mm       *Matchmaker
	lb       *Leaderboard
	grid     *SpatialGrid
	recorder *Recorder
	admin    *AdminAuth

	clients    map[string]Broadcaster // connection id -> sender
	spectators map[string]bool        // global (whole-world) spectators

	tick        uint64
	lbChanged   bool // standings changed since last network tick
	initMassLog float64
	running     bool
	stop        chan struct{}
}

// NewGame creates a game around a fresh world. recorder may be nil (no
// persistence, used in tests).
func NewGame(cfg Config, recorder *Recorder) *Game {
	g := &Game{
		cfg:         cfg,
		world:       NewWorld(cfg),
		lb:          NewLeaderboard(cfg.LeaderboardSize),
		grid:        NewSpatialGrid(cfg.GameWidth, cfg.GameHeight),
		recorder:    recorder,
		admin:       NewAdminAuth(cfg.AdminPass),
		clients:     make(map[string]Broadcaster),
		spectators:  make(map[string]bool),
		initMassLog: MathLog(cfg.DefaultPlayerMass, cfg.SlowBase),
		stop:        make(chan struct{}),
	}
	g.mm = NewMatchmaker(g)
	g.world.BalanceMass(cfg.FoodMass, cfg.GameMass, cfg.MaxFood, cfg.MaxVirus)
	return g
}

// Run drives all three periodic loops from a single goroutine
func (g *Game) Run() {
	g.mu.Lock()
	g.running = true
	g.mu.Unlock()

	physics := time.NewTicker(TickDuration)
	slow := time.NewTicker(SlowTick)
	network := time.NewTicker(time.Second / time.Duration(g.cfg.NetworkUpdateFactor))
	defer physics.Stop()
	defer slow.Stop()
	defer network.Stop()

	for {
		select {
		case <-physics.C:
			g.mu.Lock()
			g.physicsTick()
			g.mu.Unlock()
		case <-slow.C:
			g.mu.Lock()
			g.slowTick()
			g.mu.Unlock()
		case <-network.C:
			g.mu.Lock()
			g.networkTick()
			g.mu.Unlock()
		case <-g.stop:
			return
		}
	}
}

// Stop terminates the loop goroutine
func (g *Game) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running {
		g.running = false
		close(g.stop)
	}
}

// ---- connection lifecycle ----

// Connect registers a sender for a connection and greets it with the world
// bounds. Spectators start receiving the unfiltered world immediately after
// their join payload.
func (g *Game) Connect(id string, client Broadcaster, spectator bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clients[id] = client
	client.SendJSON(Envelope{T: MsgWelcome, Data: WelcomeMsg{
		Player:     PlayerState{ID: id},
		GameWidth:  g.cfg.GameWidth,
		GameHeight: g.cfg.GameHeight,
	}})
}

// Disconnect runs the full cleanup cascade for a dropped connection
func (g *Game) Disconnect(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.disconnectLocked(id)
}

func (g *Game) disconnectLocked(id string) {
	if p := g.world.FindPlayer(id); p != nil {
		g.world.RemovePlayer(id)
		g.broadcastAll(Envelope{T: MsgPlayerLeave, Data: NameMsg{Name: p.Name}})
		log.Printf("[INFO] User %s has disconnected", p.Name)
	}
	g.mm.HandleDisconnect(id)
	delete(g.spectators, id)
	delete(g.clients, id)
}

// ---- inbound intents ----

// HandleGotit processes the join payload. It returns a kick reason, or ""
// when the player spawned.
func (g *Game) HandleGotit(id, name string, screenW, screenH float64) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.world.FindPlayer(id) != nil {
		log.Printf("[INFO] Player ID is already connected, kicking.")
		return "Already connected."
	}
	if !ValidNick(name) {
		return "Invalid username."
	}

	p := NewPlayer(id)
	x, y := g.world.PlaceNewPlayer(g.cfg.NewPlayerFarthest)
	p.Init(x, y, g.cfg.DefaultPlayerMass)
	p.SetClientData(SanitizeName(name), screenW, screenH)
	p.Target = Target{X: x, Y: y}
	g.world.AddPlayer(p)

	g.broadcastAll(Envelope{T: MsgPlayerJoin, Data: NameMsg{Name: p.Name}})
	g.replayChatLocked(id)
	log.Printf("[INFO] Player %s connected! Total players: %d", p.Name, g.world.PlayerCount())
	return ""
}

// replayChatLocked catches a fresh joiner up on recent chat, oldest first
func (g *Game) replayChatLocked(id string) {
	if g.recorder == nil {
		return
	}
	lines, err := g.recorder.ChatHistory(chatHistoryLen)
	if err != nil {
		log.Printf("[WARN] chat history unavailable: %v", err)
		return
	}
	for i := len(lines) - 1; i >= 0; i-- {
		g.sendToPlayer(id, Envelope{T: MsgChatRelay, Data: ChatMsg{Sender: lines[i].Sender, Message: lines[i].Message}})
	}
}

// HandleSpectatorGotit registers a whole-world spectator
func (g *Game) HandleSpectatorGotit(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.spectators[id] = true
	g.broadcastAll(Envelope{T: MsgPlayerJoin, Data: NameMsg{Name: ""}})
	g.sendLeaderboardTo(id)
}

// HandleHeartbeat applies the periodic movement target and refreshes liveness
func (g *Game) HandleHeartbeat(id string, target Target) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p := g.world.FindPlayer(id)
	if p == nil {
		return
	}
	p.LastHeartbeat = time.Now()
	if target.X != p.X || target.Y != p.Y {
		p.Target = target
	}
}

// HandleFeed ejects one pellet from every cell heavy enough to fire
func (g *Game) HandleFeed(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p := g.world.FindPlayer(id)
	if p == nil {
		return
	}
	minCellMass := g.cfg.DefaultPlayerMass + g.cfg.FireFood
	for i := 0; i < len(p.Cells); i++ {
		if p.Cells[i].Mass >= minCellMass {
			p.ChangeCellMass(i, -g.cfg.FireFood)
			g.world.AddEjected(p, i, g.cfg.FireFood)
		}
	}
}

// HandleSplit halves every qualifying cell up to the split cap
func (g *Game) HandleSplit(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p := g.world.FindPlayer(id); p != nil {
		p.UserSplit(g.cfg.LimitSplit, g.cfg.DefaultPlayerMass)
	}
}

// HandleRespawn removes the player so the next gotit spawns it fresh
func (g *Game) HandleRespawn(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p := g.world.FindPlayer(id); p != nil {
		g.world.RemovePlayer(id)
		log.Printf("[INFO] User %s has respawned", p.Name)
	}
	if c, ok := g.clients[id]; ok {
		c.SendJSON(Envelope{T: MsgWelcome, Data: WelcomeMsg{
			Player:     PlayerState{ID: id},
			GameWidth:  g.cfg.GameWidth,
			GameHeight: g.cfg.GameHeight,
		}})
	}
}

// HandleWindowResized updates the viewport used for visibility filtering
func (g *Game) HandleWindowResized(id string, w, h float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p := g.world.FindPlayer(id); p != nil {
		p.ScreenWidth = w
		p.ScreenHeight = h
	}
}

// HandleChat relays a chat line to everyone else and persists it
func (g *Game) HandleChat(id string, msg ChatMsg) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p := g.world.FindPlayer(id)
	if p == nil {
		return
	}
	text := SanitizeName(msg.Message)
	// Cap on runes so a multi-byte character is never split mid-sequence
	if runes := []rune(text); len(runes) > maxChatLen {
		text = string(runes[:maxChatLen])
	}
	if g.cfg.LogChat {
		log.Printf("[CHAT] %s: %s", p.Name, text)
	}
	relay := Envelope{T: MsgChatRelay, Data: ChatMsg{Sender: p.Name, Message: text}}
	for cid, c := range g.clients {
		if cid != id {
			c.SendJSON(relay)
		}
	}
	if g.recorder != nil {
		g.recorder.RecordChat(p.Name, text)
	}
}

// HandlePass checks the shared admin password. On success the player gains
// the admin flag and receives a signed token for later re-auth.
func (g *Game) HandlePass(id, password string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p := g.world.FindPlayer(id)
	if p == nil {
		return
	}
	token, err := g.admin.Authenticate(password)
	if err != nil {
		log.Printf("[ADMIN] %s attempted to log in with the incorrect password.", p.Name)
		g.sendToPlayer(id, Envelope{T: MsgServerMSG, Data: "Password incorrect, attempt logged."})
		if g.recorder != nil {
			g.recorder.RecordFailedLogin(p.Name)
		}
		return
	}
	p.Admin = true
	log.Printf("[ADMIN] %s just logged in as an admin.", p.Name)
	g.sendToPlayer(id, Envelope{T: MsgServerMSG, Data: "Welcome back " + p.Name})
	g.sendToPlayer(id, Envelope{T: MsgAdminToken, Data: AdminTokenMsg{Token: token}})
	g.broadcastAllExcept(id, Envelope{T: MsgServerMSG, Data: p.Name + " just logged in as an admin."})
}

// HandleAdminAuth restores the admin flag from a previously issued token
func (g *Game) HandleAdminAuth(id, token string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p := g.world.FindPlayer(id)
	if p == nil {
		return
	}
	if err := g.admin.ValidateToken(token); err != nil {
		g.sendToPlayer(id, Envelope{T: MsgServerMSG, Data: "Invalid admin token."})
		return
	}
	p.Admin = true
	g.sendToPlayer(id, Envelope{T: MsgServerMSG, Data: "Welcome back " + p.Name})
}

// HandleKickCmd kicks a named non-admin player. Only admins may use it.
func (g *Game) HandleKickCmd(id string, cmd KickCmdMsg) {
	g.mu.Lock()
	defer g.mu.Unlock()
	requester := g.world.FindPlayer(id)
	if requester == nil || !requester.Admin {
		g.sendToPlayer(id, Envelope{T: MsgServerMSG, Data: "You are not permitted to use this command."})
		return
	}
	for _, p := range g.world.Players() {
		if p.Name == cmd.Name && !p.Admin && !p.IsBot {
			log.Printf("[ADMIN] User %s kicked by %s (%s)", p.Name, requester.Name, cmd.Reason)
			g.sendToPlayer(id, Envelope{T: MsgServerMSG, Data: "User " + p.Name + " was kicked by " + requester.Name})
			g.kickLocked(p.ID, cmd.Reason)
			return
		}
	}
	g.sendToPlayer(id, Envelope{T: MsgServerMSG, Data: "Could not locate user or user is an admin."})
}

// HandleJoinQueue enqueues the player for matchmaking
func (g *Game) HandleJoinQueue(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mm.JoinQueue(id)
}

// HandleGetRooms replies with the list of playing rooms
func (g *Game) HandleGetRooms(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sendToPlayer(id, Envelope{T: MsgRoomList, Data: g.mm.ListRooms()})
}

// HandleSpectateRoom attaches the requester to a room's spectator set
func (g *Game) HandleSpectateRoom(id, roomID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mm.Spectate(roomID, id) {
		g.spectators[id] = true
		g.sendToPlayer(id, Envelope{T: MsgSpectateJoined, Data: SpectateJoinedMsg{RoomID: roomID}})
	} else {
		g.sendToPlayer(id, Envelope{T: MsgSpectateFailed, Data: SpectateFailedMsg{Reason: "Room does not exist or already ended"}})
	}
}

// backfillExpired is the matchmaking timer re-entry point
func (g *Game) backfillExpired(gen int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mm.backfillExpired(gen)
}

// ---- ticks ----

// physicsTick advances the world one simulation step. All death and room
// bookkeeping triggered here resolves before the method returns.
func (g *Game) physicsTick() {
	g.tick++
	now := time.Now()

	// Liveness: a silent human is force-kicked
	var expired []string
	for _, p := range g.world.Players() {
		if !p.IsBot && p.HeartbeatExpired(g.cfg.MaxHeartbeatInterval, now) {
			expired = append(expired, p.ID)
		}
	}
	for _, id := range expired {
		g.kickLocked(id, "Last heartbeat received too long ago.")
	}

	for _, p := range g.world.Players() {
		if p.IsBot {
			BotDecide(p, g.world)
		}
	}
	for _, p := range g.world.Players() {
		p.Move(g.cfg.SlowBase, g.cfg.GameWidth, g.cfg.GameHeight, g.initMassLog)
	}
	g.world.MoveEjected()

	consumed := g.world.ResolveConsumption(g.grid)
	deaths, eaten := g.world.ResolvePlayerCollisions()
	for _, p := range deaths {
		g.handleDeathLocked(p)
	}

	if consumed || eaten {
		g.lb.Recompute(g.world.Players())
		g.sendLeaderboardAll()
		g.lbChanged = false
	}
}

// handleDeathLocked removes an eaten player and settles its room this tick
func (g *Game) handleDeathLocked(p *Player) {
	g.broadcastAll(Envelope{T: MsgPlayerDied, Data: NameMsg{Name: p.Name}})
	g.sendToPlayer(p.ID, Envelope{T: MsgRIP, Data: nil})
	g.world.RemovePlayer(p.ID)
	g.mm.HandleDeath(p.ID)
}

// slowTick runs the 1 Hz economy work
func (g *Game) slowTick() {
	if g.world.PlayerCount() > 0 {
		if g.lb.Recompute(g.world.Players()) {
			g.lbChanged = true
		}
		for _, p := range g.world.Players() {
			p.Shrink(g.cfg.MassLossRate, g.cfg.MinMassLoss)
		}
	}
	g.world.BalanceMass(g.cfg.FoodMass, g.cfg.GameMass, g.cfg.MaxFood, g.cfg.MaxVirus)
	g.mm.CheckTimeouts(time.Now())
}

// networkTick emits the per-player filtered snapshots and pending
// leaderboard deltas
func (g *Game) networkTick() {
	for _, p := range g.world.Players() {
		if p.IsBot {
			continue
		}
		c, ok := g.clients[p.ID]
		if !ok {
			continue
		}
		state := g.visibleState(p)
		data, err := msgpack.Marshal(state)
		if err != nil {
			log.Printf("msgpack marshal: %v", err)
			continue
		}
		c.SendBinary(data)
	}

	if len(g.spectators) > 0 {
		full := g.fullState()
		data, err := msgpack.Marshal(full)
		if err == nil {
			for sid := range g.spectators {
				if c, ok := g.clients[sid]; ok {
					c.SendBinary(data)
				}
			}
		}
	}

	if g.lbChanged {
		g.sendLeaderboardAll()
		g.lbChanged = false
	}
}

// visibleState builds the viewport-filtered snapshot for one player
func (g *Game) visibleState(p *Player) VisibleState {
	halfW := p.ScreenWidth / 2
	halfH := p.ScreenHeight / 2
	if halfW == 0 {
		halfW = g.cfg.GameWidth / 2
	}
	if halfH == 0 {
		halfH = g.cfg.GameHeight / 2
	}
	inView := func(x, y, r float64) bool {
		return x+r > p.X-halfW-viewSlack && x-r < p.X+halfW+viewSlack &&
			y+r > p.Y-halfH-viewSlack && y-r < p.Y+halfH+viewSlack
	}

	state := VisibleState{Me: playerToState(p)}
	for _, other := range g.world.Players() {
		if other.ID == p.ID {
			continue
		}
		for i := range other.Cells {
			c := &other.Cells[i]
			if inView(c.X, c.Y, c.Radius) {
				state.Players = append(state.Players, playerToState(other))
				break
			}
		}
	}
	for _, f := range g.world.food {
		if inView(f.X, f.Y, f.Radius) {
			state.Food = append(state.Food, FoodState{X: f.X, Y: f.Y, Radius: f.Radius, Hue: f.Hue})
		}
	}
	for _, m := range g.world.ejected {
		if inView(m.X, m.Y, m.Radius) {
			state.Mass = append(state.Mass, MassState{X: m.X, Y: m.Y, Radius: m.Radius, Hue: m.Hue})
		}
	}
	for _, v := range g.world.viruses {
		if inView(v.X, v.Y, v.Radius) {
			state.Viruses = append(state.Viruses, VirusState{X: v.X, Y: v.Y, Radius: v.Radius})
		}
	}
	return state
}

// fullState builds the unfiltered snapshot sent to spectators
func (g *Game) fullState() VisibleState {
	state := VisibleState{
		Me: PlayerState{X: g.cfg.GameWidth / 2, Y: g.cfg.GameHeight / 2, Hue: 100},
	}
	for _, p := range g.world.Players() {
		state.Players = append(state.Players, playerToState(p))
	}
	for _, f := range g.world.food {
		state.Food = append(state.Food, FoodState{X: f.X, Y: f.Y, Radius: f.Radius, Hue: f.Hue})
	}
	for _, m := range g.world.ejected {
		state.Mass = append(state.Mass, MassState{X: m.X, Y: m.Y, Radius: m.Radius, Hue: m.Hue})
	}
	for _, v := range g.world.viruses {
		state.Viruses = append(state.Viruses, VirusState{X: v.X, Y: v.Y, Radius: v.Radius})
	}
	return state
}

func playerToState(p *Player) PlayerState {
	cells := make([]CellState, len(p.Cells))
	for i := range p.Cells {
		cells[i] = CellState{
			X:      p.Cells[i].X,
			Y:      p.Cells[i].Y,
			Mass:   p.Cells[i].Mass,
			Radius: p.Cells[i].Radius,
		}
	}
	return PlayerState{
		ID:        p.ID,
		Name:      p.Name,
		X:         p.X,
		Y:         p.Y,
		Hue:       p.Hue,
		MassTotal: p.MassTotal,
		Cells:     cells,
	}
}

// ---- sending helpers ----

func (g *Game) sendToPlayer(id string, env Envelope) {
	if c, ok := g.clients[id]; ok {
		c.SendJSON(env)
	}
}

func (g *Game) broadcastAll(env Envelope) {
	for _, c := range g.clients {
		c.SendJSON(env)
	}
}

func (g *Game) broadcastAllExcept(id string, env Envelope) {
	for cid, c := range g.clients {
		if cid != id {
			c.SendJSON(env)
		}
	}
}

func (g *Game) sendLeaderboardAll() {
	env := Envelope{T: MsgLeaderboard, Data: LeaderboardMsg{
		Players:     g.world.PlayerCount(),
		Leaderboard: g.lb.Entries(),
	}}
	g.broadcastAll(env)
}

func (g *Game) sendLeaderboardTo(id string) {
	g.sendToPlayer(id, Envelope{T: MsgLeaderboard, Data: LeaderboardMsg{
		Players:     g.world.PlayerCount(),
		Leaderboard: g.lb.Entries(),
	}})
}

// kickLocked ejects a connection with a reason and cleans up its state
func (g *Game) kickLocked(id, reason string) {
	if c, ok := g.clients[id]; ok {
		c.SendJSON(Envelope{T: MsgKick, Data: reason})
		c.Close()
	}
	g.disconnectLocked(id)
}

// PlayerCount returns the number of live players, for tests and routes
func (g *Game) PlayerCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.world.PlayerCount()
}

// RoomPlaying reports whether a room id exists and is still playing
func (g *Game) RoomPlaying(roomID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	room, ok := g.mm.rooms[roomID]
	return ok && room.Status == RoomPlaying
}
