package services

import (
	"context"
	"net/http"
	"sync"
	"time"

	"tenantconsole-backend/shared/database/models"
	"tenantconsole-backend/shared/metrics"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// AuditPublisher receives audit entries after they are persisted.
type AuditPublisher interface {
	Publish(entry models.AuditLogEntry)
}

const (
	auditMessageConnection = "connection"
	auditMessageEntry      = "audit"
	auditMessagePong       = "pong"

	auditWriteWait  = 10 * time.Second
	auditClientBuf  = 32
	auditHubBacklog = 1000
)

// AuditMessage is what live audit stream clients receive.
type AuditMessage struct {
	Type      string                `json:"type"`
	Message   string                `json:"message,omitempty"`
	Entry     *models.AuditLogEntry `json:"entry,omitempty"`
	Timestamp time.Time             `json:"timestamp"`
}

type auditClient struct {
	id   string
	conn *websocket.Conn
	send chan *AuditMessage
}

// AuditStream fans audit entries out to websocket clients. All client
// bookkeeping happens on the Run goroutine; each client has its own writer.
type AuditStream struct {
	clients    map[*auditClient]struct{}
	mutex      sync.RWMutex
	upgrader   websocket.Upgrader
	register   chan *auditClient
	unregister chan *auditClient
	pings      chan *auditClient
	broadcast  chan *AuditMessage
	done       chan struct{}
	log        *zap.Logger
	metrics    *metrics.Metrics
}

// NewAuditStream creates a stream accepting browser connections from
// allowedOrigin. Requests without an Origin header are accepted.
func NewAuditStream(allowedOrigin string, log *zap.Logger, m *metrics.Metrics) *AuditStream {
	s := &AuditStream{
		clients:    make(map[*auditClient]struct{}),
		register:   make(chan *auditClient, 100),
		unregister: make(chan *auditClient, 100),
		pings:      make(chan *auditClient, 100),
		broadcast:  make(chan *AuditMessage, auditHubBacklog),
		done:       make(chan struct{}),
		log:        log.Named("audit_stream"),
		metrics:    m,
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || origin == allowedOrigin {
				return true
			}
			s.log.Warn("websocket connection rejected", zap.String("origin", origin))
			return false
		},
	}
	return s
}

// Run handles the stream event loop until ctx is done.
func (s *AuditStream) Run(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return
		case client := <-s.register:
			s.registerClient(client)
		case client := <-s.unregister:
			s.unregisterClient(client)
		case client := <-s.pings:
			s.sendToClient(client, &AuditMessage{Type: auditMessagePong, Message: "pong", Timestamp: now()})
		case message := <-s.broadcast:
			s.broadcastMessage(message)
		}
	}
}

func (s *AuditStream) registerClient(client *auditClient) {
	s.mutex.Lock()
	s.clients[client] = struct{}{}
	count := len(s.clients)
	s.mutex.Unlock()

	s.recordClients(count)
	s.log.Info("audit stream client connected", zap.String("client_id", client.id), zap.Int("total", count))
	s.sendToClient(client, &AuditMessage{
		Type:      auditMessageConnection,
		Message:   "Audit stream connected",
		Timestamp: now(),
	})
}

func (s *AuditStream) unregisterClient(client *auditClient) {
	s.mutex.Lock()
	_, exists := s.clients[client]
	if exists {
		delete(s.clients, client)
		close(client.send)
	}
	count := len(s.clients)
	s.mutex.Unlock()

	if exists {
		s.recordClients(count)
		s.log.Info("audit stream client disconnected", zap.String("client_id", client.id), zap.Int("total", count))
	}
}

func (s *AuditStream) closeAll() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for client := range s.clients {
		delete(s.clients, client)
		close(client.send)
	}
	s.recordClients(0)
}

// sendToClient queues message for client; a client that cannot keep up is dropped.
func (s *AuditStream) sendToClient(client *auditClient, message *AuditMessage) {
	s.mutex.RLock()
	_, exists := s.clients[client]
	s.mutex.RUnlock()
	if !exists {
		return
	}

	select {
	case client.send <- message:
	default:
		s.log.Warn("audit stream client too slow, disconnecting", zap.String("client_id", client.id))
		s.unregisterClient(client)
	}
}

func (s *AuditStream) broadcastMessage(message *AuditMessage) {
	s.mutex.RLock()
	targets := make([]*auditClient, 0, len(s.clients))
	for client := range s.clients {
		targets = append(targets, client)
	}
	s.mutex.RUnlock()

	for _, client := range targets {
		s.sendToClient(client, message)
	}
}

func (s *AuditStream) recordClients(n int) {
	if s.metrics != nil {
		s.metrics.SetAuditStreamClients(n)
	}
}

// Publish queues entry for every connected client without blocking.
func (s *AuditStream) Publish(entry models.AuditLogEntry) {
	message := &AuditMessage{Type: auditMessageEntry, Entry: &entry, Timestamp: now()}
	select {
	case s.broadcast <- message:
	default:
		s.log.Warn("audit broadcast queue full, dropping entry", zap.String("action", entry.Action))
	}
}

// ClientCount returns number of active connections
func (s *AuditStream) ClientCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.clients)
}

// HandleConnection upgrades the request and serves the client until it disconnects.
func (s *AuditStream) HandleConnection(c *gin.Context, clientID string) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("failed to upgrade websocket", zap.Error(err))
		return
	}

	client := &auditClient{id: clientID, conn: conn, send: make(chan *AuditMessage, auditClientBuf)}
	go s.writePump(client)

	select {
	case s.register <- client:
	case <-s.done:
		close(client.send)
		return
	}

	defer func() {
		select {
		case s.unregister <- client:
		case <-s.done:
		}
	}()

	for {
		var message map[string]interface{}
		if err := conn.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.log.Debug("audit stream read error", zap.String("client_id", clientID), zap.Error(err))
			}
			return
		}
		if msgType, ok := message["type"].(string); ok && msgType == "ping" {
			select {
			case s.pings <- client:
			case <-s.done:
				return
			}
		}
	}
}

func (s *AuditStream) writePump(client *auditClient) {
	defer client.conn.Close()
	for message := range client.send {
		client.conn.SetWriteDeadline(time.Now().Add(auditWriteWait))
		if err := client.conn.WriteJSON(message); err != nil {
			s.log.Debug("audit stream write failed", zap.String("client_id", client.id), zap.Error(err))
			return
		}
	}
	client.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
