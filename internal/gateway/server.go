// Package gateway exposes the assistant over a websocket endpoint: clients
// send user turns as JSON envelopes and receive assistant replies plus live
// status updates on the same connection.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iris-assistant/iris/internal/config"
	"github.com/iris-assistant/iris/internal/schema"
	"github.com/iris-assistant/iris/internal/status"
)

// Envelope is the wire format in both directions.
// Inbound frames carry the user's text; outbound frames set Sender to "iris"
// for replies and "status" for activity updates.
type Envelope struct {
	Text   string `json:"text"`
	Sender string `json:"sender,omitempty"`
}

// Responder produces the assistant's reply for one inbound message.
type Responder func(ctx context.Context, text string) string

// Server is the websocket gateway.
type Server struct {
	cfg      config.GatewayConfig
	respond  Responder
	statuses *status.Broadcaster
	upgrader websocket.Upgrader

	httpServer *http.Server
}

// New creates a Server. broadcaster may be nil; status frames are then
// simply not sent.
func New(cfg config.GatewayConfig, respond Responder, broadcaster *status.Broadcaster) *Server {
	s := &Server{
		cfg:      cfg,
		respond:  respond,
		statuses: broadcaster,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Local, single-user assistant; any origin may connect.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("gateway listening", "addr", s.httpServer.Addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		slog.Info("gateway stopped")
		return ctx.Err()
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()
	slog.Info("websocket client connected", "remote", r.RemoteAddr)

	// Writes happen from the read loop and the status observer.
	var writeMu sync.Mutex
	write := func(env Envelope) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		data, err := json.Marshal(env)
		if err != nil {
			return err
		}
		return conn.WriteMessage(websocket.TextMessage, data)
	}

	if s.statuses != nil {
		cancel := s.statuses.Subscribe(func(st schema.Status) {
			if st == schema.StatusIdle {
				return
			}
			_ = write(Envelope{Text: string(st), Sender: "status"})
		})
		defer cancel()
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			slog.Info("websocket client disconnected", "remote", r.RemoteAddr)
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil || env.Text == "" {
			_ = write(Envelope{Text: "Error: expected {\"text\": ...}", Sender: "iris"})
			continue
		}

		reply := s.respond(r.Context(), env.Text)
		if err := write(Envelope{Text: reply, Sender: "iris"}); err != nil {
			return
		}
	}
}
