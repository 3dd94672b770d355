package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"riskstream/internal/config"
	"riskstream/internal/logging"
	"riskstream/internal/types"
)

// wsMessage is the envelope pushed to dashboard clients
type wsMessage struct {
	Type    string      `json:"type"` // "metrics" or "event"
	Payload interface{} `json:"payload"`
}

// WebSocketPublisher broadcasts engine output to connected dashboard
// clients. A slow client is disconnected rather than allowed to stall
// the broadcast.
type WebSocketPublisher struct {
	server   *http.Server
	upgrader websocket.Upgrader
	logger   *logging.Logger

	clients map[*wsClient]bool
	mu      sync.Mutex
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewWebSocketPublisher creates the hub and starts its HTTP listener
func NewWebSocketPublisher(cfg config.PublishConfig) (*WebSocketPublisher, error) {
	if cfg.ListenAddr == "" {
		return nil, fmt.Errorf("websocket publisher requires a listen address")
	}

	wp := &WebSocketPublisher{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger:  logging.NewComponentLogger("websocket"),
		clients: make(map[*wsClient]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wp.handleConnection)

	wp.server = &http.Server{Addr: cfg.ListenAddr, Handler: mux}

	go func() {
		if err := wp.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			wp.logger.WithError(err).Error("WebSocket listener failed")
		}
	}()

	wp.logger.WithField("addr", cfg.ListenAddr).Info("WebSocket publisher listening")

	return wp, nil
}

// PublishMetrics broadcasts the snapshot to all clients
func (wp *WebSocketPublisher) PublishMetrics(_ context.Context, snapshot types.MetricsSnapshot) error {
	return wp.broadcast(wsMessage{Type: "metrics", Payload: snapshot})
}

// PublishEvent broadcasts the event to all clients
func (wp *WebSocketPublisher) PublishEvent(_ context.Context, event types.RiskEvent) error {
	return wp.broadcast(wsMessage{Type: "event", Payload: event})
}

// Close disconnects all clients and stops the listener
func (wp *WebSocketPublisher) Close() error {
	wp.mu.Lock()
	for client := range wp.clients {
		close(client.send)
		delete(wp.clients, client)
	}
	wp.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return wp.server.Shutdown(ctx)
}

// handleConnection upgrades a dashboard client and starts its writer
func (wp *WebSocketPublisher) handleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := wp.upgrader.Upgrade(w, r, nil)
	if err != nil {
		wp.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	client := &wsClient{
		conn: conn,
		send: make(chan []byte, 64),
	}

	wp.mu.Lock()
	wp.clients[client] = true
	wp.mu.Unlock()

	go wp.writePump(client)
	go wp.readPump(client)
}

// broadcast fans a message out to every connected client
func (wp *WebSocketPublisher) broadcast(msg wsMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode broadcast message: %w", err)
	}

	wp.mu.Lock()
	defer wp.mu.Unlock()

	for client := range wp.clients {
		select {
		case client.send <- payload:
		default:
			// Slow consumer: drop the connection, not the pipeline
			close(client.send)
			delete(wp.clients, client)
		}
	}

	return nil
}

// writePump drains a client's send queue onto its connection
func (wp *WebSocketPublisher) writePump(client *wsClient) {
	defer client.conn.Close()

	for payload := range client.send {
		client.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := client.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			wp.removeClient(client)
			return
		}
	}

	client.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readPump discards client input and detects disconnects
func (wp *WebSocketPublisher) readPump(client *wsClient) {
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			wp.removeClient(client)
			return
		}
	}
}

func (wp *WebSocketPublisher) removeClient(client *wsClient) {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	if wp.clients[client] {
		close(client.send)
		delete(wp.clients, client)
	}
}
