package main

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 120
)

// Client represents a WebSocket connection
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	id         string
	remoteAddr string
	spectator  bool
	joined     bool
	msgCount   int
	msgResetAt time.Time
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string, spectator bool) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		id:         GenerateID(16),
		remoteAddr: remoteAddr,
		spectator:  spectator,
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws error: %v", err)
			}
			break
		}

		// Rate limiting. Heartbeats arrive at client frame rate, so the
		// budget is generous.
		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			log.Printf("rate limit exceeded for %s, disconnecting", c.remoteAddr)
			break
		}

		c.handleMessage(message)
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// Check for binary marker (0xFF prefix from SendBinary)
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("marshal error: %v", err)
		return
	}
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
		// Client too slow, drop message
	}
}

// SendBinary sends pre-marshaled bytes as a binary WebSocket message.
// Prefixes with 0xFF marker byte so WritePump can distinguish from text.
func (c *Client) SendBinary(data []byte) {
	defer func() { recover() }()
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF
	copy(msg[1:], data)
	select {
	case c.send <- msg:
	default:
	}
}

// Close shuts down the outbound channel, which ends WritePump
func (c *Client) Close() {
	defer func() { recover() }()
	close(c.send)
}

// handleMessage routes incoming messages (single-pass decode via InEnvelope)
func (c *Client) handleMessage(raw []byte) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("unmarshal error: %v", err)
		return
	}

	g := c.hub.game

	switch env.T {
	case MsgGotit:
		c.handleGotit(env.D)
	case MsgHeartbeat:
		var target Target
		if err := json.Unmarshal(env.D, &target); err != nil {
			return
		}
		g.HandleHeartbeat(c.id, target)
	case MsgFeed:
		g.HandleFeed(c.id)
	case MsgSplit:
		g.HandleSplit(c.id)
	case MsgRespawn:
		g.HandleRespawn(c.id)
		c.joined = false
	case MsgPingcheck:
		c.SendJSON(Envelope{T: MsgPongcheck})
	case MsgWindowResized:
		var msg WindowResizedMsg
		if err := json.Unmarshal(env.D, &msg); err != nil {
			return
		}
		g.HandleWindowResized(c.id, msg.ScreenWidth, msg.ScreenHeight)
	case MsgPlayerChat:
		var msg ChatMsg
		if err := json.Unmarshal(env.D, &msg); err != nil {
			return
		}
		g.HandleChat(c.id, msg)
	case MsgPass:
		var msg PassMsg
		if err := json.Unmarshal(env.D, &msg); err != nil {
			return
		}
		g.HandlePass(c.id, msg.Password)
	case MsgAdminAuth:
		var msg AdminAuthMsg
		if err := json.Unmarshal(env.D, &msg); err != nil {
			return
		}
		g.HandleAdminAuth(c.id, msg.Token)
	case MsgKickCmd:
		var msg KickCmdMsg
		if err := json.Unmarshal(env.D, &msg); err != nil {
			return
		}
		g.HandleKickCmd(c.id, msg)
	case MsgJoinQueue:
		g.HandleJoinQueue(c.id)
	case MsgGetRooms:
		g.HandleGetRooms(c.id)
	case MsgSpectateRoom:
		var msg SpectateRoomMsg
		if err := json.Unmarshal(env.D, &msg); err != nil {
			return
		}
		g.HandleSpectateRoom(c.id, msg.RoomID)
	}
}

// handleGotit finishes the join handshake for either role
func (c *Client) handleGotit(data json.RawMessage) {
	if c.joined {
		return
	}
	g := c.hub.game

	if c.spectator {
		g.HandleSpectatorGotit(c.id)
		c.joined = true
		return
	}

	var msg GotitMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if reason := g.HandleGotit(c.id, msg.Name, msg.ScreenWidth, msg.ScreenHeight); reason != "" {
		c.SendJSON(Envelope{T: MsgKick, Data: reason})
		c.Close()
		return
	}
	c.joined = true
}
