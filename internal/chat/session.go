// ABOUTME: Chat session state machine: transcript, run id and loading flag
// ABOUTME: Streams replies through the Toolhouse client and saves completed exchanges

package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/2389/toolhouse-hub/internal/catalog"
	"github.com/2389/toolhouse-hub/internal/history"
	"github.com/2389/toolhouse-hub/internal/toolhouse"
)

// Reasons a Send is dropped without touching the session.
var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrNoAgent      = errors.New("no agent bound to session")
	ErrBusy         = errors.New("a message is already being sent")
)

// Conversations starts and continues remote conversations.
type Conversations interface {
	StartConversation(ctx context.Context, endpoint, message string, onChunk toolhouse.ChunkFunc) (*toolhouse.StartResult, error)
	ContinueConversation(ctx context.Context, endpoint, runID, message string, onChunk toolhouse.ChunkFunc) (*toolhouse.ContinueResult, error)
}

// HistorySaver persists completed conversations.
type HistorySaver interface {
	Save(ctx context.Context, req history.SaveRequest) (history.Entry, error)
}

// Snapshot is a copy of the session state at one point in time.
type Snapshot struct {
	AgentID   string
	Messages  []history.Message
	RunID     string
	EntryID   string
	IsLoading bool
}

// Session is one conversation with one agent.
type Session struct {
	agent       *catalog.Agent
	conv        Conversations
	saver       HistorySaver
	broadcaster *Broadcaster
	logger      *slog.Logger

	mu       sync.Mutex
	messages []history.Message
	runID    string
	entryID  string
	loading  bool
	gen      uint64
	cancel   context.CancelFunc
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSession creates a session for agent. agent may be nil, in which case
// every Send is dropped with ErrNoAgent. saver may be nil to disable history.
func NewSession(agent *catalog.Agent, conv Conversations, saver HistorySaver, opts ...Option) *Session {
	s := &Session{
		agent:  agent,
		conv:   conv,
		saver:  saver,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.logger = s.logger.With("component", "chat")
	if agent != nil {
		s.logger = s.logger.With("agent_id", agent.ID)
	}
	s.broadcaster = NewBroadcaster(s.logger)
	return s
}

// FormatError renders a failed send as the assistant's reply.
func FormatError(err error) string {
	return fmt.Sprintf("⚠️ Error: %s. Please try again.", err.Error())
}

// Send sends content to the agent and streams the reply into the transcript.
//
// Empty input, a missing agent, or a send already in flight drop the call
// with ErrEmptyMessage, ErrNoAgent or ErrBusy and leave the session as is.
// A request failure is rendered as the assistant turn and also returned.
func (s *Session) Send(ctx context.Context, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyMessage
	}
	if s.agent == nil {
		return ErrNoAgent
	}

	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return ErrBusy
	}
	s.messages = append(s.messages,
		history.Message{Role: history.RoleUser, Content: content},
		history.Message{Role: history.RoleAssistant, Content: ""},
	)
	s.loading = true
	s.gen++
	gen := s.gen
	runID := s.runID
	sendCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	snap := s.snapshotLocked()
	s.mu.Unlock()

	defer cancel()
	s.broadcaster.Publish(snap)

	onChunk := func(text string) {
		s.update(gen, func() { s.setLastLocked(text) })
	}

	var (
		fullText string
		err      error
	)
	if runID == "" {
		var res *toolhouse.StartResult
		res, err = s.conv.StartConversation(sendCtx, s.agent.Endpoint, content, onChunk)
		if err == nil {
			fullText = res.FullText
			runID = res.RunID
			if runID == "" {
				s.logger.Warn("agent returned no run id; next message starts a new conversation")
			}
		}
	} else {
		var res *toolhouse.ContinueResult
		res, err = s.conv.ContinueConversation(sendCtx, s.agent.Endpoint, runID, content, onChunk)
		if err == nil {
			fullText = res.FullText
		}
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.logger.Debug("send cancelled", "run_id", runID)
		} else {
			s.logger.Error("send failed", "run_id", runID, "error", err)
		}
		s.finish(gen, func() { s.setLastLocked(FormatError(err)) })
		return err
	}

	var toSave *history.SaveRequest
	s.update(gen, func() {
		s.runID = runID
		s.setLastLocked(fullText)
		toSave = s.saveRequestLocked()
	})
	if toSave != nil {
		s.persist(ctx, gen, *toSave)
	}
	s.finish(gen, func() {})
	return nil
}

// update applies fn under the lock if gen is still current, then publishes.
func (s *Session) update(gen uint64, fn func()) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	fn()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.broadcaster.Publish(snap)
}

// finish is update plus leaving the loading state.
func (s *Session) finish(gen uint64, fn func()) {
	s.update(gen, func() {
		fn()
		s.loading = false
		s.cancel = nil
	})
}

func (s *Session) setLastLocked(text string) {
	if n := len(s.messages); n > 0 {
		s.messages[n-1] = history.Message{Role: history.RoleAssistant, Content: text}
	}
}

func (s *Session) saveRequestLocked() *history.SaveRequest {
	if s.saver == nil {
		return nil
	}
	return &history.SaveRequest{
		AgentID:    s.agent.ID,
		AgentName:  s.agent.Name,
		AgentColor: s.agent.Color,
		AgentIcon:  s.agent.Icon,
		RunID:      s.runID,
		EntryID:    s.entryID,
		Messages:   append([]history.Message(nil), s.messages...),
	}
}

// persist saves req and remembers the entry id. Failures are logged only.
func (s *Session) persist(ctx context.Context, gen uint64, req history.SaveRequest) {
	entry, err := s.saver.Save(context.WithoutCancel(ctx), req)
	if err != nil {
		s.logger.Warn("failed to save history", "run_id", req.RunID, "error", err)
		return
	}
	s.update(gen, func() { s.entryID = entry.ID })
}

// Clear discards the transcript and run id; the next Send starts a new
// conversation. An in-flight send is cancelled.
func (s *Session) Clear() {
	s.reset(nil, "", "")
}

// LoadFromHistory replaces the session state with a saved transcript so the
// next Send continues runID. Storage is not touched.
func (s *Session) LoadFromHistory(messages []history.Message, runID string) {
	s.reset(messages, runID, "")
}

// Resume loads entry and binds the session to it, so later saves update the
// same entry even when the agent gave no run id.
func (s *Session) Resume(entry history.Entry) {
	s.reset(entry.Messages, entry.RunID, entry.ID)
}

func (s *Session) reset(messages []history.Message, runID, entryID string) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	s.messages = append([]history.Message(nil), messages...)
	s.runID = runID
	s.entryID = entryID
	s.loading = false
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.broadcaster.Publish(snap)
}

// Subscribe returns a channel of snapshots, closed when ctx is done or the
// session is closed.
func (s *Session) Subscribe(ctx context.Context) <-chan Snapshot {
	ch, _ := s.broadcaster.Subscribe(ctx)
	return ch
}

// Close cancels any in-flight send and closes subscriber channels.
func (s *Session) Close() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	s.loading = false
	s.mu.Unlock()

	s.broadcaster.Close()
}

// Agent returns the bound agent, or nil.
func (s *Session) Agent() *catalog.Agent {
	return s.agent
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []history.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]history.Message(nil), s.messages...)
}

// RunID returns the remote conversation id, empty before the first reply.
func (s *Session) RunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runID
}

// IsLoading reports whether a send is in flight.
func (s *Session) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Messages:  append([]history.Message(nil), s.messages...),
		RunID:     s.runID,
		EntryID:   s.entryID,
		IsLoading: s.loading,
	}
	if s.agent != nil {
		snap.AgentID = s.agent.ID
	}
	return snap
}
