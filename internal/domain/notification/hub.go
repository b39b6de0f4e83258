package notification

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/giftbay/giftbay-api/internal/middleware"
	"github.com/giftbay/giftbay-api/internal/pkg/response"
)

// Hub fans freshly created notifications out to connected websocket
// clients. Delivery is best-effort; a user with no open socket simply
// reads the notification later.
type Hub struct {
	mu       sync.RWMutex
	clients  map[uuid.UUID][]*websocket.Conn
	upgrader websocket.Upgrader
}

func NewHub(allowedOrigins []string) *Hub {
	originSet := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originSet[o] = struct{}{}
	}

	return &Hub{
		clients: make(map[uuid.UUID][]*websocket.Conn),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := originSet[origin]
				return ok
			},
		},
	}
}

var _ Publisher = (*Hub)(nil)

// ServeWS upgrades the connection and registers it for the
// authenticated user.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[userID] = append(h.clients[userID], conn)
	h.mu.Unlock()

	// Drain the connection until the client goes away.
	go func() {
		defer h.remove(userID, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Publish sends the notification to every open socket for the user.
func (h *Hub) Publish(userID uuid.UUID, n *Notification) {
	h.mu.RLock()
	conns := append([]*websocket.Conn(nil), h.clients[userID]...)
	h.mu.RUnlock()

	payload := map[string]interface{}{
		"type": "notification:new",
		"data": n,
	}
	for _, conn := range conns {
		if err := conn.WriteJSON(payload); err != nil {
			h.remove(userID, conn)
		}
	}
}

func (h *Hub) remove(userID uuid.UUID, conn *websocket.Conn) {
	conn.Close()

	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.clients[userID]
	for i, c := range conns {
		if c == conn {
			h.clients[userID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
}
