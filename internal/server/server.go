// Package server is the boundary between the store and rendering clients.
//
// It serves the current graph state over a small JSON API and pushes state
// updates to WebSocket clients as they happen, so a rendering layer can
// animate the dependency graph live while the external planning store edits
// requirement files.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gsdkit/reqgraph/internal/store"
)

// MessageType defines the type of a WebSocket message.
type MessageType string

const (
	// MessageTypeGraph carries a full store.State: layout, validation,
	// stats, generation.
	MessageTypeGraph MessageType = "graph"

	// MessageTypeStats carries just the aggregate counts.
	MessageTypeStats MessageType = "stats"
)

// Message is the WebSocket envelope.
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Server manages the HTTP API and WebSocket connections.
type Server struct {
	addr     string
	listener net.Listener
	server   *http.Server
	store    *store.Store

	// WebSocket client management; the value is the client's connection ID
	// used in logs.
	clients   map[*websocket.Conn]string
	clientsMu sync.RWMutex

	broadcast chan Message

	// Lifecycle management
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	unsubscribe func()

	logger *log.Logger
}

// Config holds server configuration.
type Config struct {
	// Port to listen on (default: 8080)
	Port int

	// Logger for server activity (default: stderr logger)
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:   8080,
		Logger: log.Default(),
	}
}

// NewServer creates a server over a store. The store must outlive the
// server.
func NewServer(st *store.Store, config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		addr:      fmt.Sprintf(":%d", config.Port),
		store:     st,
		clients:   make(map[*websocket.Conn]string),
		broadcast: make(chan Message, 100),
		ctx:       ctx,
		cancel:    cancel,
		logger:    config.Logger,
	}
}

// Start begins serving. It subscribes to the store and returns once the
// listener is up; serving continues in the background until Stop.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = ln

	mux := http.NewServeMux()
	mux.HandleFunc("/api/graph", s.handleGraph)
	mux.HandleFunc("/api/requirements", s.handleRequirements)
	mux.HandleFunc("/api/requirements/", s.handleRequirementDetail)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/", s.handleRoot)

	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	updates, unsubscribe := s.store.Subscribe()
	s.unsubscribe = unsubscribe

	s.wg.Add(1)
	go s.stateLoop(updates)

	s.wg.Add(1)
	go s.broadcastLoop()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logger.Printf("Graph server listening on %s", ln.Addr())
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Printf("Server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	s.logger.Println("Stopping graph server")

	s.cancel()
	if s.unsubscribe != nil {
		s.unsubscribe()
	}

	s.clientsMu.Lock()
	for conn := range s.clients {
		_ = conn.Close(websocket.StatusGoingAway, "Server shutting down")
		delete(s.clients, conn)
	}
	s.clientsMu.Unlock()
	connectedClients.Set(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.wg.Wait()

	s.logger.Println("Graph server stopped")
	return nil
}

// stateLoop turns store updates into broadcast messages.
func (s *Server) stateLoop(updates <-chan store.State) {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return

		case state, ok := <-updates:
			if !ok {
				return
			}
			observeState(state)
			s.broadcastState(state)
		}
	}
}

// broadcastState queues a graph message and a stats message for the current
// state.
func (s *Server) broadcastState(state store.State) {
	if data, err := json.Marshal(state); err == nil {
		s.Broadcast(Message{Type: MessageTypeGraph, Timestamp: time.Now(), Data: data})
	} else {
		s.logger.Printf("Failed to marshal state: %v", err)
	}

	if data, err := json.Marshal(state.Stats); err == nil {
		s.Broadcast(Message{Type: MessageTypeStats, Timestamp: time.Now(), Data: data})
	} else {
		s.logger.Printf("Failed to marshal stats: %v", err)
	}
}

// Broadcast sends a message to all connected clients.
func (s *Server) Broadcast(msg Message) {
	select {
	case s.broadcast <- msg:
	case <-s.ctx.Done():
		return
	default:
		s.logger.Println("Warning: broadcast channel full, dropping message")
	}
}

// broadcastLoop handles message delivery to all clients.
func (s *Server) broadcastLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return

		case msg := <-s.broadcast:
			if msg.Timestamp.IsZero() {
				msg.Timestamp = time.Now()
			}

			data, err := json.Marshal(msg)
			if err != nil {
				s.logger.Printf("Failed to marshal message: %v", err)
				continue
			}

			s.clientsMu.RLock()
			conns := make([]*websocket.Conn, 0, len(s.clients))
			for conn := range s.clients {
				conns = append(conns, conn)
			}
			s.clientsMu.RUnlock()

			// Send outside the lock so one slow client cannot stall
			// bookkeeping.
			for _, conn := range conns {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				err := conn.Write(ctx, websocket.MessageText, data)
				cancel()

				if err != nil {
					s.logger.Printf("Failed to send to client: %v", err)
					s.removeClient(conn)
					continue
				}
				wsMessagesSent.WithLabelValues(string(msg.Type)).Inc()
			}
		}
	}
}

// handleWebSocket upgrades HTTP connections to WebSocket.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"}, // Rendering layer runs on its own port
	})
	if err != nil {
		s.logger.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	clientID := uuid.NewString()

	s.clientsMu.Lock()
	s.clients[conn] = clientID
	clientCount := len(s.clients)
	s.clientsMu.Unlock()
	connectedClients.Set(float64(clientCount))

	s.logger.Printf("Client %s connected (total: %d)", clientID, clientCount)

	// Every client starts from the full current state and diffs from there.
	state := s.store.State()
	if data, err := json.Marshal(state); err == nil {
		welcome := Message{Type: MessageTypeGraph, Timestamp: time.Now(), Data: data}
		if raw, err := json.Marshal(welcome); err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := conn.Write(ctx, websocket.MessageText, raw); err == nil {
				wsMessagesSent.WithLabelValues(string(MessageTypeGraph)).Inc()
			}
			cancel()
		}
	}

	go s.readLoop(conn)
}

// readLoop keeps the connection alive and notices client disconnects. Client
// messages are not part of the protocol and are discarded.
func (s *Server) readLoop(conn *websocket.Conn) {
	defer s.removeClient(conn)

	for {
		_, _, err := conn.Read(s.ctx)
		if err != nil {
			return
		}
	}
}

// removeClient safely removes a client connection.
func (s *Server) removeClient(conn *websocket.Conn) {
	s.clientsMu.Lock()
	if clientID, exists := s.clients[conn]; exists {
		delete(s.clients, conn)
		clientCount := len(s.clients)
		s.clientsMu.Unlock()

		_ = conn.Close(websocket.StatusNormalClosure, "")
		connectedClients.Set(float64(clientCount))
		s.logger.Printf("Client %s disconnected (total: %d)", clientID, clientCount)
	} else {
		s.clientsMu.Unlock()
	}
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.clientsMu.RLock()
	clientCount := len(s.clients)
	s.clientsMu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":     "ok",
		"clients":    clientCount,
		"generation": s.store.State().Generation,
	})
}

// handleRoot returns basic server information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	_, _ = fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
    <title>reqgraph</title>
</head>
<body>
    <h1>Requirement Graph Server</h1>
    <p>Graph state: <a href="/api/graph">/api/graph</a></p>
    <p>Requirements: <a href="/api/requirements">/api/requirements</a></p>
    <p>WebSocket endpoint: <code>ws://%s/ws</code></p>
    <p>Health check: <a href="/health">/health</a></p>
    <p>Metrics: <a href="/metrics">/metrics</a></p>
</body>
</html>`, r.Host)
}

// GetAddr returns the server's listening address.
func (s *Server) GetAddr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// ClientCount returns the current number of connected clients.
func (s *Server) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}
