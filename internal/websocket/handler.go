package websocket

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Narvasiddhartha/AnonChat/internal/engine"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Room keys are the only barrier to entry, so any origin may connect.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades connections and guards against connection floods. Each
// accepted connection gets a fresh uuid as its identity for the lifetime
// of the session.
type Handler struct {
	MaxConnections   int
	ConnectionsPerIP int

	eng *engine.Engine

	mu    sync.Mutex
	total int
	perIP map[string]int
}

func NewHandler(eng *engine.Engine) *Handler {
	return &Handler{
		MaxConnections:   10000,
		ConnectionsPerIP: 20,
		eng:              eng,
		perIP:            make(map[string]int),
	}
}

func (h *Handler) HandleWS(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	if !h.acquire(ip) {
		log.Warn().Str("ip", ip).Msg("ws: connection limit reached")
		http.Error(w, "too many connections", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.release(ip)
		log.Error().Err(err).Msg("ws: upgrade failed")
		return
	}

	client := newClient(uuid.NewString(), conn, h.eng)
	log.Info().Str("connID", client.ID).Str("ip", ip).Msg("ws: connection established")

	go client.writePump()
	go func() {
		client.readPump()
		h.release(ip)
	}()
}

func (h *Handler) acquire(ip string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.total >= h.MaxConnections || h.perIP[ip] >= h.ConnectionsPerIP {
		return false
	}
	h.total++
	h.perIP[ip]++
	return true
}

func (h *Handler) release(ip string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.total--
	h.perIP[ip]--
	if h.perIP[ip] <= 0 {
		delete(h.perIP, ip)
	}
}
