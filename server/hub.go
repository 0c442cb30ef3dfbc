// Package server runs a simulation headless and streams it to spectators
// over websocket. Every message is a JSON object with a "type" field:
// "created" and "removed" mirror the agent lifecycle, "frame" carries the
// full state after each step.
package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/milk9111/crosswalk/ecs"
	"github.com/milk9111/crosswalk/sim"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 2 * time.Second
	sendBuffer = 64
)

type spectator struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan []byte
}

// Hub fans simulation output out to every connected spectator. It is the
// Presenter of a headless simulation. A spectator that cannot keep up is
// disconnected rather than slowing the simulation down.
type Hub struct {
	log      logrus.FieldLogger
	upgrader websocket.Upgrader

	mu         sync.Mutex
	spectators map[uuid.UUID]*spectator
	status     []byte
}

func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		log:        log.WithField("component", "hub"),
		upgrader:   websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		spectators: make(map[uuid.UUID]*spectator),
	}
}

func (h *Hub) AgentCreated(a sim.Agent) {
	h.publish(createdMessage(a))
}

func (h *Hub) AgentRemoved(id ecs.Entity) {
	h.publish(removedMessage(id))
}

func (h *Hub) Frame(f sim.Frame) {
	if b, err := json.Marshal(toStatusMessage(f)); err == nil {
		h.mu.Lock()
		h.status = b
		h.mu.Unlock()
	}
	h.publish(toFrameMessage(f))
}

func (h *Hub) publish(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		h.log.WithError(err).Error("failed to marshal message")
		return
	}
	h.Broadcast(b)
}

// Broadcast queues msg for every spectator.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.spectators {
		select {
		case s.send <- msg:
		default:
			h.log.WithField("spectator", s.id).Warn("spectator too slow, dropping")
			h.dropLocked(s)
		}
	}
}

func (h *Hub) dropLocked(s *spectator) {
	if _, ok := h.spectators[s.id]; !ok {
		return
	}
	delete(h.spectators, s.id)
	close(s.send)
}

func (h *Hub) remove(s *spectator) {
	h.mu.Lock()
	h.dropLocked(s)
	h.mu.Unlock()
}

// Count returns the number of connected spectators.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.spectators)
}

// Close disconnects every spectator.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.spectators {
		h.dropLocked(s)
	}
}

func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.ServeWS)
	mux.HandleFunc("/status", h.ServeStatus)
	return mux
}

// ServeWS upgrades the request and streams messages until the spectator
// goes away. Anything the spectator sends is ignored.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Debug("websocket upgrade failed")
		return
	}

	s := &spectator{id: uuid.New(), conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.spectators[s.id] = s
	h.mu.Unlock()
	h.log.WithField("spectator", s.id).Info("spectator joined")

	go h.writer(s)
	h.reader(s)
}

func (h *Hub) reader(s *spectator) {
	defer func() {
		h.remove(s)
		h.log.WithField("spectator", s.id).Info("spectator left")
	}()
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writer(s *spectator) {
	defer s.conn.Close()
	for msg := range s.send {
		_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.WithError(err).WithField("spectator", s.id).Debug("write failed")
			return
		}
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// ServeStatus reports the latest signal status as JSON.
func (h *Hub) ServeStatus(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	status := h.status
	h.mu.Unlock()

	if status == nil {
		http.Error(w, "simulation not started", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(status)
}
