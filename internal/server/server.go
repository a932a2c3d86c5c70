// Package server exposes the bot's published state over a read-only HTTP
// API. Handlers only ever see snapshot copies, never loop-owned state.
package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/tradebotlab/krakenbot/internal/logger"
	"github.com/tradebotlab/krakenbot/internal/types"
)

// SnapshotSource provides the latest published bot snapshot.
type SnapshotSource interface {
	Snapshot() types.Snapshot
}

// Server is the read-only snapshot API.
type Server struct {
	source     SnapshotSource
	log        *logger.Logger
	listener   net.Listener
	httpServer *http.Server
}

// New creates a server over the given snapshot source.
func New(source SnapshotSource, log *logger.Logger) *Server {
	return &Server{
		source:     source,
		log:        log,
		listener:   nil,
		httpServer: nil,
	}
}

// Start begins serving on the given address. If address is empty or ":0",
// a random available port is used.
func (s *Server) Start(address string) error {
	if address == "" {
		address = ":0"
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return err
	}

	s.listener = listener

	s.httpServer = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != http.ErrServerClosed {
			s.log.Error("http server error", zap.Error(err))
		}
	}()

	s.log.Info("snapshot api listening", zap.String("address", s.Address()))

	return nil
}

// Router builds the route table. Exposed for handler tests.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/api/v1/snapshot", s.handleSnapshot).Methods("GET")
	router.HandleFunc("/api/v1/history/{pair}", s.handleHistory).Methods("GET")
	router.HandleFunc("/api/v1/trades", s.handleTrades).Methods("GET")
	router.HandleFunc("/api/v1/ledger", s.handleLedger).Methods("GET")

	return router
}

// Stop shuts the server down, waiting briefly for in-flight requests.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// Address returns the address the server is listening on.
func (s *Server) Address() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, s.source.Snapshot())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	pair := mux.Vars(r)["pair"]

	snap := s.source.Snapshot()

	pairSnap, ok := snap.Pairs[pair]
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown pair: "+pair)

		return
	}

	s.writeJSON(w, pairSnap)
}

func (s *Server) handleTrades(w http.ResponseWriter, _ *http.Request) {
	trades := s.source.Snapshot().Trades
	if trades == nil {
		trades = []types.TradeRecord{}
	}

	s.writeJSON(w, trades)
}

func (s *Server) handleLedger(w http.ResponseWriter, _ *http.Request) {
	snap := s.source.Snapshot()

	s.writeJSON(w, map[string]any{
		"mode":   snap.Mode,
		"ledger": snap.Ledger,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
