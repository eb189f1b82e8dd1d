// Command sse serves a microrpc engine over HTTP with Server-Sent Events.
// Clients open a stream with GET /events and receive an "endpoint" event
// naming the URL to POST requests to; every response is then pushed to that
// client's stream as a "response" event. Notifications produce no event.
//
// Configuration comes from the environment, optionally via a .env file:
// MICRORPC_ADDR (listen address, default :8080), MICRORPC_ARENA_CAPACITY,
// and MICRORPC_RESPONSE_CAPACITY.
package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/tmaxmax/go-sse"

	"github.com/MegaGrindStone/go-microrpc"
	"github.com/MegaGrindStone/go-microrpc/services/demo"
	"github.com/MegaGrindStone/go-microrpc/services/textutil"
)

type server struct {
	engine *microrpc.Engine
	logger *slog.Logger

	arenaCapacity    int
	responseCapacity int

	mu       sync.Mutex
	sessions map[string]*sse.Session
}

// handleEvents upgrades the connection to SSE, announces the session's
// message endpoint, and keeps the stream open until the client leaves.
func (s *server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess, err := sse.Upgrade(w, r)
	if err != nil {
		s.logger.Error("failed to upgrade session", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	sessID := uuid.New().String()

	msg := sse.Message{
		Type: sse.Type("endpoint"),
	}
	msg.AppendData(fmt.Sprintf("/rpc?sessionID=%s", sessID))
	if err := sess.Send(&msg); err != nil {
		s.logger.Error("failed to write endpoint event", "err", err)
		return
	}
	if err := sess.Flush(); err != nil {
		s.logger.Error("failed to flush endpoint event", "err", err)
		return
	}

	s.mu.Lock()
	s.sessions[sessID] = sess
	s.mu.Unlock()

	<-r.Context().Done()

	s.mu.Lock()
	delete(s.sessions, sessID)
	s.mu.Unlock()
}

// handleRPC feeds one POST body through the engine and pushes the response to
// the caller's SSE session. The mutex also serializes writes to a session, as
// concurrent POSTs for one stream are allowed.
func (s *server) handleRPC(w http.ResponseWriter, r *http.Request) {
	sessID := r.URL.Query().Get("sessionID")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	x := &microrpc.Exchange{
		Request:  body,
		Response: microrpc.NewBuffer(make([]byte, s.responseCapacity)),
		Arena:    make([]microrpc.Token, s.arenaCapacity),
	}
	resp := s.engine.Handle(x)
	if len(resp) == 0 {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	msg := sse.Message{
		Type: sse.Type("response"),
	}
	msg.AppendData(string(resp))

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessID]
	if !ok {
		http.Error(w, "unknown sessionID", http.StatusBadRequest)
		return
	}
	if err := sess.Send(&msg); err != nil {
		s.logger.Error("failed to push response event", "err", err)
		http.Error(w, "failed to push response", http.StatusInternalServerError)
		return
	}
	if err := sess.Flush(); err != nil {
		s.logger.Error("failed to flush response event", "err", err)
		http.Error(w, "failed to push response", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("%s must be an integer: %v", key, err)
	}
	return n
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	addr := os.Getenv("MICRORPC_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	engine := microrpc.NewEngine(microrpc.WithLogger(logger))
	if err := demo.NewService().Register(engine); err != nil {
		log.Fatal(err)
	}
	if err := (textutil.Service{}).Register(engine); err != nil {
		log.Fatal(err)
	}

	s := &server{
		engine:           engine,
		logger:           logger,
		arenaCapacity:    envInt("MICRORPC_ARENA_CAPACITY", 256),
		responseCapacity: envInt("MICRORPC_RESPONSE_CAPACITY", 1024),
		sessions:         make(map[string]*sse.Session),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /events", s.handleEvents)
	mux.HandleFunc("POST /rpc", s.handleRPC)

	log.Printf("listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}
