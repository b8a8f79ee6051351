package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// hub maintains the set of connected clients and fans frames out to them.
// Registration, removal, and broadcast all pass through run's select loop,
// so the clients map is touched from one goroutine only.
type hub struct {
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	register  chan *websocket.Conn
	remove    chan *websocket.Conn
	broadcast chan []byte
	metrics   *Metrics
}

func newHub(m *Metrics) *hub {
	return &hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:   make(map[*websocket.Conn]bool),
		register:  make(chan *websocket.Conn),
		remove:    make(chan *websocket.Conn),
		broadcast: make(chan []byte, 16),
		metrics:   m,
	}
}

func (h *hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.clients[conn] = true
			h.metrics.Clients.Set(float64(len(h.clients)))
		case conn := <-h.remove:
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.metrics.Clients.Set(float64(len(h.clients)))
		case msg := <-h.broadcast:
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					log.WithField("err", err).Warn("dropping websocket client")
					delete(h.clients, conn)
					conn.Close()
				}
			}
			h.metrics.Clients.Set(float64(len(h.clients)))
		}
	}
}

// handle upgrades the connection, replays the latest frame so a new client
// does not start blank, and pumps inbound control messages into the
// simulation goroutine's queue.
func (h *hub) handle(srv *Server, w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithField("err", err).Error("websocket upgrade failed")
		return
	}

	h.register <- conn

	if data := srv.latestFrameJSON(); data != nil {
		conn.WriteMessage(websocket.TextMessage, data)
	}

	go func() {
		defer func() { h.remove <- conn }()
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.WithField("err", err).Warn("websocket read failed")
				}
				return
			}
			var req Request
			if err := json.Unmarshal(message, &req); err != nil {
				log.WithField("err", err).Warn("bad control message")
				continue
			}
			srv.queue(req)
		}
	}()
}

func (h *hub) broadcastJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.WithField("err", err).Error("marshal broadcast")
		return
	}
	h.broadcastBytes(data)
}

func (h *hub) broadcastBytes(data []byte) {
	select {
	case h.broadcast <- data:
	default:
		log.Warn("broadcast queue full, dropping message")
	}
}
