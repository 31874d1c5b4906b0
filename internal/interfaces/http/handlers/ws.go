// internal/interfaces/http/handlers/ws.go
package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/your-org/wishlist-backend/internal/config"
	"github.com/your-org/wishlist-backend/internal/realtime"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
	wsPingEvery = 45 * time.Second
)

// WSHandler upgrades /ws/:slug connections and plugs them into the hub.
// Subscribing does not validate that the slug exists: an unknown slug simply
// never receives a message, which keeps the endpoint from confirming which
// slugs are live.
type WSHandler struct {
	hub    *realtime.Hub
	config *config.Config

	upgrader websocket.Upgrader
}

// NewWSHandler creates a new websocket handler
func NewWSHandler(hub *realtime.Hub, cfg *config.Config) *WSHandler {
	return &WSHandler{
		hub:    hub,
		config: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return isOriginAllowed(r.Header.Get("Origin"), cfg.Security.CORSAllowedOrigins)
			},
		},
	}
}

// isOriginAllowed mirrors the CORS middleware check for the upgrade handshake.
func isOriginAllowed(origin string, allowedOrigins []string) bool {
	if origin == "" {
		return true
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// Subscribe handles GET /ws/:slug
func (h *WSHandler) Subscribe(c *gin.Context) {
	slug := c.Param("slug")

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the error response
		logrus.WithField("slug", slug).WithError(err).Debug("websocket upgrade failed")
		return
	}

	sub := newWSSubscriber(conn)
	h.hub.Subscribe(slug, sub)

	logrus.WithFields(logrus.Fields{
		"slug":       slug,
		"request_id": requestID(c),
	}).Debug("websocket subscriber connected")

	go sub.pingLoop()
	sub.readLoop()

	h.hub.Unsubscribe(slug, sub)
	sub.close()

	logrus.WithField("slug", slug).Debug("websocket subscriber disconnected")
}

func requestID(c *gin.Context) string {
	id, _ := c.Get("request_id")
	s, _ := id.(string)
	return s
}

// wsSubscriber adapts one websocket connection to the hub's Subscriber
// interface. Gorilla allows a single concurrent writer, so every write
// (snapshots and pings alike) goes through one mutex.
type wsSubscriber struct {
	conn *websocket.Conn

	writeMu sync.Mutex
	done    chan struct{}
	once    sync.Once
}

func newWSSubscriber(conn *websocket.Conn) *wsSubscriber {
	return &wsSubscriber{
		conn: conn,
		done: make(chan struct{}),
	}
}

// Send pushes one serialized snapshot. An error tells the hub to drop this
// subscriber.
func (s *wsSubscriber) Send(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// readLoop drains inbound frames until the peer goes away. Clients are not
// expected to send anything; reading is what surfaces close frames and feeds
// the pong handler.
func (s *wsSubscriber) readLoop() {
	defer s.close()

	s.conn.SetReadLimit(512)
	s.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// pingLoop keeps idle connections alive through proxies.
func (s *wsSubscriber) pingLoop() {
	ticker := time.NewTicker(wsPingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.writeMu.Lock()
			s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			err := s.conn.WriteMessage(websocket.PingMessage, nil)
			s.writeMu.Unlock()
			if err != nil {
				s.close()
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *wsSubscriber) close() {
	s.once.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}
