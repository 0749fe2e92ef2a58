package server

import (
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// envelope is one client frame.
type envelope struct {
	Event string          `json:"event"`
	Ack   *int64          `json:"ack,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outFrame struct {
	Event string `json:"event"`
	Ack   *int64 `json:"ack,omitempty"`
	Data  any    `json:"data,omitempty"`
}

type wsClient struct {
	id    string
	conn  *websocket.Conn
	send  chan []byte
	games map[string]struct{}
}

// wsHub tracks live connections by id and groups them per game. Every
// delivery is a non-blocking channel send; a client whose buffer is full is
// dropped.
type wsHub struct {
	mu      sync.Mutex
	clients map[string]*wsClient
	groups  map[string]map[string]struct{}
}

func newWSHub() *wsHub {
	return &wsHub{
		clients: make(map[string]*wsClient),
		groups:  make(map[string]map[string]struct{}),
	}
}

func (h *wsHub) Add(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.id] = client
}

func (h *wsHub) Remove(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(connID)
}

func (h *wsHub) removeLocked(connID string) {
	client, ok := h.clients[connID]
	if !ok {
		return
	}
	delete(h.clients, connID)
	for code := range client.games {
		group := h.groups[code]
		delete(group, connID)
		if len(group) == 0 {
			delete(h.groups, code)
		}
	}
	close(client.send)
}

func (h *wsHub) Join(connID, gameCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	client, ok := h.clients[connID]
	if !ok {
		return
	}
	group := h.groups[gameCode]
	if group == nil {
		group = make(map[string]struct{})
		h.groups[gameCode] = group
	}
	group[connID] = struct{}{}
	client.games[gameCode] = struct{}{}
}

// Forget drops the group for a game that no longer exists.
func (h *wsHub) Forget(gameCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for connID := range h.groups[gameCode] {
		if client, ok := h.clients[connID]; ok {
			delete(client.games, gameCode)
		}
	}
	delete(h.groups, gameCode)
}

func (h *wsHub) Send(connID, event string, payload any) {
	h.sendFrame(connID, outFrame{Event: event, Data: payload})
}

func (h *wsHub) sendFrame(connID string, frame outFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		log.Error().Err(err).Str("event", frame.Event).Msg("ws marshal failed")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[connID]; ok {
		h.deliverLocked(client, data)
	}
}

func (h *wsHub) Broadcast(gameCode, event string, payload any) {
	data, err := json.Marshal(outFrame{Event: event, Data: payload})
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("ws marshal failed")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for connID := range h.groups[gameCode] {
		if client, ok := h.clients[connID]; ok {
			h.deliverLocked(client, data)
		}
	}
}

func (h *wsHub) BroadcastAll(event string, payload any) {
	data, err := json.Marshal(outFrame{Event: event, Data: payload})
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("ws marshal failed")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, client := range h.clients {
		h.deliverLocked(client, data)
	}
}

func (h *wsHub) deliverLocked(client *wsClient, data []byte) {
	select {
	case client.send <- data:
	default:
		log.Warn().Str("conn_id", client.id).Msg("ws send buffer full, dropping client")
		h.removeLocked(client.id)
	}
}

func (h *wsHub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return slices.Contains(s.cfg.AllowedOrigins, "*") || slices.Contains(s.cfg.AllowedOrigins, origin)
}

func (s *Server) handleWebsocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Str("remote", c.Request.RemoteAddr).Msg("ws upgrade failed")
		return
	}
	client := &wsClient{
		id:    uuid.NewString(),
		conn:  conn,
		send:  make(chan []byte, sendBuffer),
		games: make(map[string]struct{}),
	}
	s.ws.Add(client)
	log.Info().Str("conn_id", client.id).Str("remote", c.Request.RemoteAddr).Msg("ws connected")
	s.ws.Send(client.id, eventWelcome, welcomePayload{ID: client.id})
	s.mu.Lock()
	s.ws.Send(client.id, eventGameAvailable, s.availableSnapshot())
	s.mu.Unlock()
	go s.writeWS(client)
	go s.readWS(client)
}

func (s *Server) readWS(client *wsClient) {
	defer func() {
		s.ws.Remove(client.id)
		s.disconnect(client.id)
		_ = client.conn.Close()
	}()
	conn := client.conn
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("conn_id", client.id).Msg("ws read failed")
			}
			log.Info().Str("conn_id", client.id).Msg("ws disconnected")
			return
		}
		var msg envelope
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Debug().Err(err).Str("conn_id", client.id).Msg("ws frame ignored")
			continue
		}
		reply := s.dispatch(client.id, msg.Event, msg.Data)
		if msg.Ack != nil {
			s.ws.sendFrame(client.id, outFrame{Event: eventAck, Ack: msg.Ack, Data: reply})
		}
	}
}

func (s *Server) writeWS(client *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = client.conn.Close()
	}()
	conn := client.conn
	for {
		select {
		case data, ok := <-client.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
