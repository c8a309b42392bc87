// ABOUTME: Contract tests for the persisted history document format.
// ABOUTME: Guards JSON field names and value shapes that existing history files rely on.

package contract

import (
	"context"
	"encoding/json"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/toolhouse-hub/internal/history"
)

// expectedEntryKeys is the contract for each object in the history array.
var expectedEntryKeys = []string{
	"id", "agentId", "agentName", "agentColor", "agentIcon",
	"runId", "messages", "preview", "timestamp",
}

func savedDocument(t *testing.T, runID string) []map[string]any {
	t.Helper()
	ctx := context.Background()
	storage := history.NewMemoryStorage()
	store := history.NewStore(storage,
		history.WithClock(func() time.Time { return time.Date(2025, 3, 4, 5, 6, 7, 890e6, time.UTC) }),
	)

	_, err := store.Save(ctx, history.SaveRequest{
		AgentID:    "inbox-triage",
		AgentName:  "Inbox Triage",
		AgentColor: "#00f0ff",
		AgentIcon:  "Mail",
		RunID:      runID,
		Messages: []history.Message{
			{Role: history.RoleUser, Content: "hello"},
			{Role: history.RoleAssistant, Content: "hi"},
		},
	})
	require.NoError(t, err)

	raw, err := storage.Get(ctx, history.DefaultKey)
	require.NoError(t, err)

	var doc []map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc), "history must be a JSON array")
	require.Len(t, doc, 1)
	return doc
}

func TestEntryKeys(t *testing.T) {
	entry := savedDocument(t, "run-1")[0]

	for _, key := range expectedEntryKeys {
		_, ok := entry[key]
		assert.True(t, ok, "key %s should be present", key)
	}
	for key := range entry {
		if !slices.Contains(expectedEntryKeys, key) {
			t.Logf("INFO: extra key %s not in contract (consider adding)", key)
		}
	}
}

func TestEntryValueShapes(t *testing.T) {
	entry := savedDocument(t, "")[0]

	assert.Nil(t, entry["runId"], "missing run id is stored as null")
	assert.Equal(t, "2025-03-04T05:06:07.890Z", entry["timestamp"])
	assert.Equal(t, "hello", entry["preview"])

	msgs, ok := entry["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, map[string]any{"role": "user", "content": "hello"}, msgs[0])
	assert.Equal(t, map[string]any{"role": "assistant", "content": "hi"}, msgs[1])
}
