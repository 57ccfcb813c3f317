// Package transport carries DAP messages over connections other than a raw
// TCP stream.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/go-dap"
	"github.com/gorilla/websocket"

	"dapwire/pkg/extractors"
	"dapwire/pkg/handlers"
	"dapwire/pkg/logger"
)

// WebSocketServer serves DAP over websocket: every text or binary message is
// one JSON DAP message, without Content-Length framing.
type WebSocketServer struct {
	path       string
	dispatcher *handlers.Dispatcher
	log        *logger.StandardLogger
	upgrader   websocket.Upgrader

	// mu guards server, conns and stopped. Sessions join wg under mu, so none
	// start once Stop has run and Serve's Wait cannot race with Add.
	mu      sync.Mutex
	server  *http.Server
	conns   map[*websocket.Conn]struct{}
	stopped bool
	wg      sync.WaitGroup
}

func NewWebSocketServer(path string, dispatcher *handlers.Dispatcher, log *logger.StandardLogger) *WebSocketServer {
	return &WebSocketServer{
		path:       path,
		dispatcher: dispatcher,
		log:        log,
		conns:      make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Debug clients are local tools, not browsers on other origins.
				return true
			},
		},
	}
}

// Handler returns the HTTP handler that upgrades requests on the configured path.
func (s *WebSocketServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.path, s.handleWebSocket)
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *WebSocketServer) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("could not listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *WebSocketServer) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.server = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	srv := s.server
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { _ = s.Stop() })
	defer stop()

	s.log.Info("WebSocket server listening on %s%s", ln.Addr(), s.path)
	err := srv.Serve(ln)
	_ = s.Stop()
	s.wg.Wait()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop closes the listener and every open session, and refuses new ones.
// Hijacked websocket connections are not closed by http.Server, so they are
// tracked here.
func (s *WebSocketServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for conn := range s.conns {
		_ = conn.Close()
	}
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}

// join registers a session about to start. It fails once Stop has run.
func (s *WebSocketServer) join() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	s.wg.Add(1)
	return true
}

// track records conn so Stop can close it. It fails once Stop has run.
func (s *WebSocketServer) track(conn *websocket.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *WebSocketServer) untrack(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}

func (s *WebSocketServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.join() {
		http.Error(w, "server is shutting down", http.StatusServiceUnavailable)
		return
	}
	defer s.wg.Done()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warning("Failed to upgrade connection: %v", err)
		return
	}
	if !s.track(conn) {
		_ = conn.Close()
		return
	}
	defer s.untrack(conn)

	sessionLog := s.log.Session(r.RemoteAddr)
	sessionLog.Info("New websocket client connected")
	serveWebSocket(conn, s.dispatcher, sessionLog)
}

// serveWebSocket mirrors the framed session: one reader, one writer, one
// goroutine per request.
func serveWebSocket(conn *websocket.Conn, dispatcher *handlers.Dispatcher, log logger.Logger) {
	conn.SetReadLimit(extractors.MaxBodySize)

	sendQueue := make(chan dap.Message)
	var sendWg sync.WaitGroup
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		broken := false
		for message := range sendQueue {
			if broken {
				continue
			}
			data, err := json.Marshal(message)
			if err == nil {
				err = conn.WriteMessage(websocket.TextMessage, data)
			}
			if err != nil {
				log.Error("Error writing message: %v", err)
				broken = true
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Info("Client disconnected")
			} else {
				log.Warning("Read failed: %v", err)
			}
			break
		}
		sendWg.Add(1)
		go func() {
			defer sendWg.Done()
			for _, message := range dispatcher.Dispatch(data) {
				sendQueue <- message
			}
		}()
	}

	sendWg.Wait()
	close(sendQueue)
	<-writerDone
	_ = conn.Close()
}
