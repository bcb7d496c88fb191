package main

import (
	"log"
	"time"
)

// RoomStatus is the lifecycle state of a room
type RoomStatus int

const (
	RoomPlaying RoomStatus = iota
	RoomEnded
)

// Room is one matchmaking-formed play session. It references players by id
// only; the World owns the player records.
type Room struct {
	ID         string
	Players    []string // participant ids in join order, human + AI
	IsBot      map[string]bool
	Spectators map[string]bool
	Status     RoomStatus
	CreatedAt  time.Time
}

// HumanCount returns the number of human participants
func (r *Room) HumanCount() int {
	n := 0
	for _, id := range r.Players {
		if !r.IsBot[id] {
			n++
		}
	}
	return n
}

// BotCount returns the number of AI participants
func (r *Room) BotCount() int {
	return len(r.Players) - r.HumanCount()
}

func (r *Room) removePlayer(id string) bool {
	for i, pid := range r.Players {
		if pid == id {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			delete(r.IsBot, id)
			return true
		}
	}
	return false
}

// Matchmaker owns the FIFO queue and the active-room registry. Every method
// must be called with the game mutex held; the backfill timer re-enters
// through Game so it takes the same lock.
type Matchmaker struct {
	g     *Game
	queue []string
	rooms map[string]*Room

	backfill    *time.Timer
	backfillGen int // invalidates stale timer fires
}

// NewMatchmaker creates an empty matchmaker bound to the game
func NewMatchmaker(g *Game) *Matchmaker {
	return &Matchmaker{
		g:     g,
		rooms: make(map[string]*Room),
	}
}

// JoinQueue enqueues a player intent-to-play. Re-joining is a no-op. The
// instant the queue reaches capacity the first entrants form a room.
func (mm *Matchmaker) JoinQueue(id string) {
	for _, qid := range mm.queue {
		if qid == id {
			return
		}
	}
	mm.queue = append(mm.queue, id)
	mm.broadcastWaiting()

	if len(mm.queue) >= mm.g.cfg.RoomCapacity {
		matched := mm.queue[:mm.g.cfg.RoomCapacity]
		mm.queue = append([]string{}, mm.queue[mm.g.cfg.RoomCapacity:]...)
		mm.cancelBackfill()
		mm.formRoom(matched)
		return
	}
	mm.ensureBackfill()
}

// LeaveQueue drops a player from the queue if present
func (mm *Matchmaker) LeaveQueue(id string) {
	for i, qid := range mm.queue {
		if qid == id {
			mm.queue = append(mm.queue[:i], mm.queue[i+1:]...)
			mm.broadcastWaiting()
			break
		}
	}
	if len(mm.queue) == 0 {
		mm.cancelBackfill()
	}
}

func (mm *Matchmaker) broadcastWaiting() {
	waiting := mm.g.cfg.RoomCapacity - len(mm.queue)
	for _, qid := range mm.queue {
		mm.g.sendToPlayer(qid, Envelope{T: MsgMatching, Data: MatchingMsg{Waiting: waiting}})
	}
}

func (mm *Matchmaker) ensureBackfill() {
	if mm.backfill != nil || len(mm.queue) == 0 {
		return
	}
	gen := mm.backfillGen
	mm.backfill = time.AfterFunc(mm.g.cfg.BackfillDelay, func() {
		mm.g.backfillExpired(gen)
	})
}

func (mm *Matchmaker) cancelBackfill() {
	if mm.backfill != nil {
		mm.backfill.Stop()
		mm.backfill = nil
	}
	mm.backfillGen++
}

// backfillExpired moves everyone still queued into one room and fills the
// shortfall with freshly spawned AI players. Called with the game mutex held
// and only for the generation the timer was armed with.
func (mm *Matchmaker) backfillExpired(gen int) {
	if gen != mm.backfillGen {
		return
	}
	mm.backfill = nil
	mm.backfillGen++
	if len(mm.queue) == 0 {
		return
	}
	humans := mm.queue
	mm.queue = nil
	mm.formRoom(humans)
}

// formRoom creates a playing room from the given human ids, backfilling with
// AI up to capacity, and notifies every human of the match.
func (mm *Matchmaker) formRoom(humanIDs []string) {
	room := &Room{
		ID:         "room_" + GenerateID(4),
		IsBot:      make(map[string]bool),
		Spectators: make(map[string]bool),
		Status:     RoomPlaying,
		CreatedAt:  time.Now(),
	}

	for _, id := range humanIDs {
		room.Players = append(room.Players, id)
	}
	for len(room.Players) < mm.g.cfg.RoomCapacity {
		bot := NewBotPlayer(mm.g.world)
		mm.g.world.AddPlayer(bot)
		room.Players = append(room.Players, bot.ID)
		room.IsBot[bot.ID] = true
	}

	mm.rooms[room.ID] = room
	log.Printf("[INFO] Room %s formed: %d humans, %d bots",
		room.ID, room.HumanCount(), room.BotCount())

	for _, id := range humanIDs {
		mm.g.sendToPlayer(id, Envelope{T: MsgMatchFound, Data: MatchFoundMsg{RoomID: room.ID}})
	}
}

// ListRooms returns all playing rooms for the room browser
func (mm *Matchmaker) ListRooms() []RoomInfo {
	list := make([]RoomInfo, 0, len(mm.rooms))
	for _, room := range mm.rooms {
		if room.Status != RoomPlaying {
			continue
		}
		list = append(list, RoomInfo{
			RoomID:         room.ID,
			PlayerCount:    len(room.Players),
			SpectatorCount: len(room.Spectators),
			CreatedAt:      room.CreatedAt.UnixMilli(),
		})
	}
	return list
}

// Spectate attaches a requester to a playing room. Returns false if the room
// is unknown or already over (the list-then-join race).
func (mm *Matchmaker) Spectate(roomID, requesterID string) bool {
	room, ok := mm.rooms[roomID]
	if !ok || room.Status != RoomPlaying {
		return false
	}
	room.Spectators[requesterID] = true
	return true
}

// roomOf finds the playing room containing the given participant
func (mm *Matchmaker) roomOf(id string) *Room {
	for _, room := range mm.rooms {
		for _, pid := range room.Players {
			if pid == id {
				return room
			}
		}
	}
	return nil
}

// HandleDeath runs the room bookkeeping for a player eliminated in the
// arena. Ends the room when one participant or fewer remains.
func (mm *Matchmaker) HandleDeath(id string) {
	room := mm.roomOf(id)
	if room == nil {
		return
	}
	room.removePlayer(id)
	if mm.settleHumanless(room) {
		return
	}
	if len(room.Players) <= 1 {
		var winner string
		if len(room.Players) == 1 {
			winner = room.Players[0]
		}
		mm.endRoom(room, winner, "elimination")
	}
}

// settleHumanless applies the AI-continuation rules once a room has no
// humans left, whatever removed the last one: a watched match with enough
// bots plays on and its spectators are told, an unwatched one is torn
// down. Reports whether the room was humanless (and so settled here).
func (mm *Matchmaker) settleHumanless(room *Room) bool {
	if room.HumanCount() > 0 {
		return false
	}
	if len(room.Spectators) >= 1 && room.BotCount() >= 2 {
		// The AI match plays on for its audience
		for sid := range room.Spectators {
			mm.g.sendToPlayer(sid, Envelope{T: MsgAIContinue, Data: AIContinueMsg{RoomID: room.ID}})
		}
		return true
	}
	// Nobody is watching (or too few bots to matter): tear it down
	mm.deleteRoom(room)
	return true
}

// HandleDisconnect runs the cleanup cascade for a dropped connection:
// out of the queue, out of every spectator set, and out of its room with
// the AI-continuation rules applied.
func (mm *Matchmaker) HandleDisconnect(id string) {
	mm.LeaveQueue(id)

	for _, room := range mm.rooms {
		delete(room.Spectators, id)
	}

	room := mm.roomOf(id)
	if room == nil {
		return
	}
	room.removePlayer(id)

	if mm.settleHumanless(room) {
		return
	}
	if len(room.Players) <= 1 {
		var winner string
		if len(room.Players) == 1 {
			winner = room.Players[0]
		}
		mm.endRoom(room, winner, "disconnect")
	}
}

// CheckTimeouts ends any room older than the configured maximum lifetime,
// crowning the highest-mass remaining participant. Called at 1 Hz.
func (mm *Matchmaker) CheckTimeouts(now time.Time) {
	for _, room := range mm.rooms {
		if room.Status != RoomPlaying {
			continue
		}
		if now.Sub(room.CreatedAt) <= mm.g.cfg.RoomMaxLifetime {
			continue
		}
		var winner string
		bestMass := -1.0
		for _, pid := range room.Players {
			if p := mm.g.world.FindPlayer(pid); p != nil && p.MassTotal > bestMass {
				bestMass = p.MassTotal
				winner = pid
			}
		}
		mm.endRoom(room, winner, "timeout")
	}
}

// endRoom transitions a room to ended exactly once: notifies the winner and
// everyone else, removes all participants from the world and drops the room
// from the registry.
func (mm *Matchmaker) endRoom(room *Room, winnerID, reason string) {
	if room.Status == RoomEnded {
		return
	}
	room.Status = RoomEnded

	var winnerName string
	if winnerID != "" {
		if p := mm.g.world.FindPlayer(winnerID); p != nil {
			winnerName = p.Name
		}
	}

	for _, pid := range room.Players {
		if pid == winnerID {
			mm.g.sendToPlayer(pid, Envelope{T: MsgWin, Data: WinMsg{RoomID: room.ID}})
		} else {
			mm.g.sendToPlayer(pid, Envelope{T: MsgRoomEnded, Data: RoomEndedMsg{RoomID: room.ID, Winner: winnerName}})
		}
	}
	for sid := range room.Spectators {
		mm.g.sendToPlayer(sid, Envelope{T: MsgRoomEnded, Data: RoomEndedMsg{RoomID: room.ID, Winner: winnerName}})
	}

	for _, pid := range room.Players {
		mm.g.world.RemovePlayer(pid)
	}
	delete(mm.rooms, room.ID)

	if mm.g.recorder != nil {
		mm.g.recorder.RecordMatch(room.ID, winnerName, time.Since(room.CreatedAt), reason)
	}
	log.Printf("[INFO] Room %s ended (%s), winner=%q", room.ID, reason, winnerName)
}

// deleteRoom silently removes an abandoned room and its AI players
func (mm *Matchmaker) deleteRoom(room *Room) {
	room.Status = RoomEnded
	for _, pid := range room.Players {
		if room.IsBot[pid] {
			mm.g.world.RemovePlayer(pid)
		}
	}
	for sid := range room.Spectators {
		mm.g.sendToPlayer(sid, Envelope{T: MsgRoomEnded, Data: RoomEndedMsg{RoomID: room.ID}})
	}
	delete(mm.rooms, room.ID)
	log.Printf("[INFO] Room %s deleted (abandoned)", room.ID)
}
