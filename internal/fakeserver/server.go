// ABOUTME: chi-based fake Toolhouse server that streams echo replies
// ABOUTME: Tracks runs in memory so follow-ups can be validated

package fakeserver

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/2389/toolhouse-hub/internal/toolhouse"
)

// Config tunes the fake replies.
type Config struct {
	// ChunkSize is the number of runes written per flush. Zero means 8.
	ChunkSize int
	// ChunkDelay is the pause between flushes.
	ChunkDelay time.Duration
	// OmitRunID leaves out the run header, like a misbehaving endpoint.
	OmitRunID bool
}

type run struct {
	agentID string
	turns   int
}

// Server is the fake service.
type Server struct {
	cfg    Config
	logger *slog.Logger

	mu   sync.Mutex
	runs map[string]*run
}

// New creates a Server. Pass nil logger for default.
func New(cfg Config, logger *slog.Logger) *Server {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 8
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:    cfg,
		logger: logger.With("component", "fakeserver"),
		runs:   make(map[string]*run),
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/agents/{agentID}", s.handleStart)
	r.Put("/agents/{agentID}/{runID}", s.handleContinue)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// Runs returns the number of runs started.
func (s *Server) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.runs)
}

type messageBody struct {
	Message string `json:"message"`
}

func decodeMessage(r *http.Request) (string, error) {
	var body messageBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("invalid JSON body: %w", err)
	}
	if strings.TrimSpace(body.Message) == "" {
		return "", fmt.Errorf("message is required")
	}
	return body.Message, nil
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentID")

	msg, err := decodeMessage(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	runID := uuid.NewString()
	s.mu.Lock()
	s.runs[runID] = &run{agentID: agentID, turns: 1}
	s.mu.Unlock()

	s.logger.Info("run started", "agent_id", agentID, "run_id", runID)

	if !s.cfg.OmitRunID {
		w.Header().Set(toolhouse.RunIDHeader, runID)
	}
	s.stream(w, r, reply(agentID, msg, 1))
}

func (s *Server) handleContinue(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentID")
	runID := chi.URLParam(r, "runID")

	msg, err := decodeMessage(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	rn, ok := s.runs[runID]
	if ok && rn.agentID == agentID {
		rn.turns++
	}
	s.mu.Unlock()

	if !ok || rn.agentID != agentID {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	s.logger.Info("run continued", "agent_id", agentID, "run_id", runID)
	s.stream(w, r, reply(agentID, msg, rn.turns))
}

// reply builds the echo text for a turn.
func reply(agentID, msg string, turn int) string {
	return fmt.Sprintf("**%s** (turn %d) heard:\n\n> %s\n", agentID, turn, msg)
}

// stream writes text in flushed chunks of runes.
func (s *Server) stream(w http.ResponseWriter, r *http.Request, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	runes := []rune(text)
	for start := 0; start < len(runes); start += s.cfg.ChunkSize {
		end := min(start+s.cfg.ChunkSize, len(runes))
		if _, err := w.Write([]byte(string(runes[start:end]))); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
		if s.cfg.ChunkDelay > 0 {
			select {
			case <-r.Context().Done():
				return
			case <-time.After(s.cfg.ChunkDelay):
			}
		}
	}
}
