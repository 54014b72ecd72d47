package httpapi

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/aurora-bmi/aurorabmi/internal/bmi"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dashboard is local-only by default; origin checking is left to a
	// reverse proxy in front of this service.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const writeTimeout = 5 * time.Second

// Hub fans out BMIResult broadcasts to every connected websocket client.
type Hub struct {
	metrics *Metrics

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewHub builds an empty client registry.
func NewHub(metrics *Metrics) *Hub {
	return &Hub{metrics: metrics, clients: make(map[*websocket.Conn]struct{})}
}

// ServeWS upgrades the request and registers the connection until it
// disconnects. It never reads application messages from the client —
// this feed is one-directional.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()
	h.metrics.ActiveWSConns.Inc()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		h.metrics.ActiveWSConns.Dec()
		conn.Close()
	}()

	// Block on reads purely to detect client disconnects; any payload
	// received is discarded.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast sends result to every connected client. A write failure on
// one client drops that client without affecting the others.
func (h *Hub) Broadcast(result bmi.BMIResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		log.Error().Err(err).Msg("marshal bmi result for broadcast")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Warn().Err(err).Msg("dropping websocket client after failed write")
			conn.Close()
			delete(h.clients, conn)
			h.metrics.ActiveWSConns.Dec()
		}
	}
}

// Run subscribes to the pubsub feed and broadcasts every message until
// Next returns an error (subscription closed or context cancelled).
func (h *Hub) Run(next func() (bmi.BMIResult, error)) {
	for {
		result, err := next()
		if err != nil {
			log.Info().Err(err).Msg("live feed subscription ended")
			return
		}
		h.Broadcast(result)
	}
}
