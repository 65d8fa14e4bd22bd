package gameserver

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Envelope is the outbound wire frame.
type Envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// inboundFrame is the inbound wire frame: who is acting, what they do,
// and the action's data.
type inboundFrame struct {
	Role   string         `json:"role"` // "host" or "player"
	Action string         `json:"action"`
	Data   map[string]any `json:"data"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Party games are joined from phones on arbitrary networks.
		return true
	},
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan Envelope
}

// Hub owns the live websocket connections. Each connection gets a
// generated identifier that doubles as the player/host ID everywhere in
// the core.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	service *Service
	log     *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*client),
		log:     log,
	}
}

// Bind attaches the service the hub routes inbound frames to. Must be
// called before ServeWS; the hub and service reference each other, so
// construction happens in two steps.
func (h *Hub) Bind(service *Service) {
	h.service = service
}

// Send queues an envelope for one connection. A connection that cannot
// keep up is dropped rather than allowed to stall the room.
//
// The channel send happens under the read lock and drop closes the
// channel only under the write lock, so a send never races a close.
func (h *Hub) Send(connID, event string, payload any) {
	h.mu.RLock()
	c, ok := h.clients[connID]
	delivered := false
	if ok {
		select {
		case c.send <- Envelope{Event: event, Payload: payload}:
			delivered = true
		default:
		}
	}
	h.mu.RUnlock()

	if ok && !delivered {
		h.log.Warn("slow connection dropped", zap.String("conn", connID))
		h.drop(c)
	}
}

// CloseConn disconnects one connection.
func (h *Hub) CloseConn(connID string) {
	h.mu.RLock()
	c, ok := h.clients[connID]
	h.mu.RUnlock()
	if ok {
		h.drop(c)
	}
}

// Count returns the number of live connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CloseAll disconnects every connection, for shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		close(c.send)
		_ = c.conn.Close()
	}
	h.clients = make(map[string]*client)
}

// ServeWS upgrades the request and pumps frames until the connection
// dies. Runs on the HTTP handler goroutine.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan Envelope, 64),
	}

	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	h.log.Debug("connection opened", zap.String("conn", c.id))
	h.Send(c.id, "connected", map[string]any{"connectionId": c.id})

	go c.writePump()
	h.readPump(c)
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.service.Disconnect(c.id)
		h.drop(c)
		h.log.Debug("connection closed", zap.String("conn", c.id))
	}()

	for {
		var frame inboundFrame
		if err := c.conn.ReadJSON(&frame); err != nil {
			return
		}
		h.route(c.id, frame)
	}
}

// route maps one inbound frame onto the service. Room setup actions are
// handled here; everything else goes down the generic action paths. A
// panic while processing one frame is contained to that frame so a
// single bad message cannot take the process down.
func (h *Hub) route(connID string, frame inboundFrame) {
	defer func() {
		if rec := recover(); rec != nil {
			h.log.Error("action processing panicked",
				zap.String("conn", connID),
				zap.String("action", frame.Action),
				zap.Any("panic", rec))
		}
	}()

	switch frame.Action {
	case "create-room":
		game, _ := frame.Data["game"].(string)
		if _, err := h.service.CreateRoom(connID, game); err != nil {
			h.Send(connID, "error", map[string]any{"reason": err.Error()})
		}
		return
	case "join-room":
		code, _ := frame.Data["code"].(string)
		name, _ := frame.Data["name"].(string)
		h.service.Join(connID, code, name)
		return
	}

	if frame.Role == "host" {
		h.service.HostAction(connID, frame.Action, frame.Data)
		return
	}
	h.service.PlayerAction(connID, frame.Action, frame.Data)
}

// drop removes the client and closes its channel. Holding the write
// lock across the close is what keeps Send's lock-covered channel send
// safe; drop must therefore never be called with the read lock held.
func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; !ok {
		return
	}
	delete(h.clients, c.id)
	close(c.send)
	_ = c.conn.Close()
}

func (c *client) writePump() {
	for env := range c.send {
		if err := c.conn.WriteJSON(env); err != nil {
			return
		}
	}
}
