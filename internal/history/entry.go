// ABOUTME: Persisted conversation records and their schema validation
// ABOUTME: Defines Message, Entry and the lenient decoder for stored history

package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Role is the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Entry is a persisted snapshot of one conversation with one agent.
type Entry struct {
	ID         string    `json:"id"`
	AgentID    string    `json:"agentId"`
	AgentName  string    `json:"agentName"`
	AgentColor string    `json:"agentColor"`
	AgentIcon  string    `json:"agentIcon"`
	RunID      string    `json:"runId"`
	Messages   []Message `json:"messages"`
	Preview    string    `json:"preview"`
	Timestamp  time.Time `json:"timestamp"`
}

// previewLength is the number of runes kept from the first message.
const previewLength = 80

func makePreview(msgs []Message) string {
	if len(msgs) == 0 {
		return ""
	}
	r := []rune(msgs[0].Content)
	if len(r) > previewLength {
		r = r[:previewLength]
	}
	return string(r)
}

// storedEntry is the wire form; runId is nullable in older documents.
type storedEntry struct {
	ID         string    `json:"id"`
	AgentID    string    `json:"agentId"`
	AgentName  string    `json:"agentName"`
	AgentColor string    `json:"agentColor"`
	AgentIcon  string    `json:"agentIcon"`
	RunID      *string   `json:"runId"`
	Messages   []Message `json:"messages"`
	Preview    string    `json:"preview"`
	Timestamp  string    `json:"timestamp"`
}

func (e *Entry) validate() error {
	if e.ID == "" {
		return errors.New("missing id")
	}
	if e.AgentID == "" {
		return errors.New("missing agentId")
	}
	for i, m := range e.Messages {
		if m.Role != RoleUser && m.Role != RoleAssistant {
			return fmt.Errorf("message %d: invalid role %q", i, m.Role)
		}
	}
	return nil
}

func decodeEntry(raw json.RawMessage) (Entry, error) {
	var s storedEntry
	if err := json.Unmarshal(raw, &s); err != nil {
		return Entry{}, err
	}

	e := Entry{
		ID:         s.ID,
		AgentID:    s.AgentID,
		AgentName:  s.AgentName,
		AgentColor: s.AgentColor,
		AgentIcon:  s.AgentIcon,
		Messages:   s.Messages,
		Preview:    s.Preview,
	}
	if s.RunID != nil {
		e.RunID = *s.RunID
	}
	if s.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339Nano, s.Timestamp)
		if err != nil {
			return Entry{}, fmt.Errorf("timestamp: %w", err)
		}
		e.Timestamp = ts
	}
	if err := e.validate(); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// decodeEntries parses a stored document. A document that is not a JSON
// array yields nil; invalid records inside it are skipped.
func decodeEntries(data []byte, logger *slog.Logger) []Entry {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		logger.Warn("discarding unreadable history", "error", err)
		return nil
	}

	entries := make([]Entry, 0, len(raws))
	for i, raw := range raws {
		e, err := decodeEntry(raw)
		if err != nil {
			logger.Warn("skipping malformed history record", "index", i, "error", err)
			continue
		}
		entries = append(entries, e)
	}
	return entries
}
