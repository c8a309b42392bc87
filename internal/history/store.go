// ABOUTME: History store: list, upsert, remove and clear over one storage key
// ABOUTME: Keeps at most N entries, most recently touched first

package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultKey is the storage key holding the history document.
	DefaultKey = "toolhouse-chat-history"
	// DefaultLimit is the maximum number of stored conversations.
	DefaultLimit = 50
)

// isoMillis matches the ISO-8601 form browsers emit for timestamps.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// ErrNothingToSave is returned by Save for a conversation without messages.
var ErrNothingToSave = errors.New("conversation has no messages")

// SaveRequest describes a completed exchange to persist.
type SaveRequest struct {
	AgentID    string
	AgentName  string
	AgentColor string
	AgentIcon  string
	RunID      string
	// EntryID is the entry this conversation was last saved as, if any. It is
	// only used to find the entry when RunID is empty.
	EntryID  string
	Messages []Message
}

// Store reads and writes conversation history.
type Store struct {
	storage Storage
	key     string
	limit   int
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithLimit overrides the maximum number of entries kept.
func WithLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides entry id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// NewStore creates a Store over storage.
func NewStore(storage Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		key:     DefaultKey,
		limit:   DefaultLimit,
		logger:  slog.Default(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "history")
	return s
}

// List returns all stored entries, most recent first. It never fails: a
// missing or unreadable document is an empty history.
func (s *Store) List(ctx context.Context) []Entry {
	entries, err := s.load(ctx)
	if err != nil {
		s.logger.Warn("failed to read history", "error", err)
		return []Entry{}
	}
	return entries
}

// Get returns the entry with id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	for _, e := range s.List(ctx) {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: history entry %s", ErrNotFound, id)
}

// ForAgent returns the entries belonging to agentID, most recent first.
func (s *Store) ForAgent(ctx context.Context, agentID string) []Entry {
	var out []Entry
	for _, e := range s.List(ctx) {
		if e.AgentID == agentID {
			out = append(out, e)
		}
	}
	return out
}

// Save upserts the conversation described by req and returns the stored
// entry. An existing entry for the same agent and run keeps its id, is
// overwritten and moves to the front.
func (s *Store) Save(ctx context.Context, req SaveRequest) (Entry, error) {
	if len(req.Messages) == 0 {
		return Entry{}, ErrNothingToSave
	}

	// A read fault leaves storage untouched; only an absent or unparseable
	// document starts a fresh list.
	entries, err := s.load(ctx)
	if err != nil {
		return Entry{}, fmt.Errorf("reading history: %w", err)
	}

	existing := -1
	for i, e := range entries {
		if e.AgentID != req.AgentID {
			continue
		}
		if req.RunID != "" && e.RunID == req.RunID {
			existing = i
			break
		}
		if req.RunID == "" && req.EntryID != "" && e.ID == req.EntryID {
			existing = i
			break
		}
	}

	entry := Entry{
		AgentID:    req.AgentID,
		AgentName:  req.AgentName,
		AgentColor: req.AgentColor,
		AgentIcon:  req.AgentIcon,
		RunID:      req.RunID,
		Messages:   append([]Message(nil), req.Messages...),
		Preview:    makePreview(req.Messages),
		Timestamp:  s.now().UTC(),
	}
	if existing >= 0 {
		entry.ID = entries[existing].ID
		entries = append(entries[:existing], entries[existing+1:]...)
	} else {
		entry.ID = s.newID()
	}

	entries = append([]Entry{entry}, entries...)
	if len(entries) > s.limit {
		entries = entries[:s.limit]
	}

	if err := s.write(ctx, entries); err != nil {
		return Entry{}, err
	}

	s.logger.Debug("history saved",
		"entry_id", entry.ID,
		"agent_id", entry.AgentID,
		"run_id", entry.RunID,
		"messages", len(entry.Messages),
	)
	return entry, nil
}

// Remove deletes the entry with id and returns the remaining entries.
// Removing an unknown id leaves the history unchanged.
func (s *Store) Remove(ctx context.Context, id string) []Entry {
	entries, err := s.load(ctx)
	if err != nil {
		s.logger.Warn("failed to read history", "error", err)
		return []Entry{}
	}

	filtered := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.ID != id {
			filtered = append(filtered, e)
		}
	}

	if len(filtered) == len(entries) {
		return filtered
	}

	if err := s.write(ctx, filtered); err != nil {
		s.logger.Warn("failed to remove history entry", "entry_id", id, "error", err)
		return []Entry{}
	}
	return filtered
}

// Clear deletes the whole history.
func (s *Store) Clear(ctx context.Context) {
	if err := s.storage.Remove(ctx, s.key); err != nil {
		s.logger.Warn("failed to clear history", "error", err)
	}
}

func (s *Store) load(ctx context.Context) ([]Entry, error) {
	data, err := s.storage.Get(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeEntries(data, s.logger), nil
}

func (s *Store) write(ctx context.Context, entries []Entry) error {
	stored := make([]storedEntry, len(entries))
	for i, e := range entries {
		stored[i] = storedEntry{
			ID:         e.ID,
			AgentID:    e.AgentID,
			AgentName:  e.AgentName,
			AgentColor: e.AgentColor,
			AgentIcon:  e.AgentIcon,
			Messages:   e.Messages,
			Preview:    e.Preview,
			Timestamp:  e.Timestamp.UTC().Format(isoMillis),
		}
		if e.RunID != "" {
			runID := e.RunID
			stored[i].RunID = &runID
		}
		if stored[i].Messages == nil {
			stored[i].Messages = []Message{}
		}
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	if err := s.storage.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	return nil
}
