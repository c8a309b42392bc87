// ABOUTME: Tests for the fake Toolhouse server using the real client
// ABOUTME: Covers start, continue, unknown runs and bad requests

package fakeserver

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/toolhouse-hub/internal/toolhouse"
)

func newTestServer(t *testing.T, cfg Config) (*Server, *httptest.Server) {
	t.Helper()
	s := New(cfg, nil)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, srv
}

func TestStartAndContinue(t *testing.T) {
	s, srv := newTestServer(t, Config{ChunkSize: 3})
	c := toolhouse.NewClient()
	ctx := context.Background()
	endpoint := srv.URL + "/agents/echo"

	var chunks []string
	start, err := c.StartConversation(ctx, endpoint, "hello", func(text string) {
		chunks = append(chunks, text)
	})
	require.NoError(t, err)
	require.NotEmpty(t, start.RunID)
	assert.Equal(t, reply("echo", "hello", 1), start.FullText)
	assert.Equal(t, start.FullText, chunks[len(chunks)-1])
	assert.Equal(t, 1, s.Runs())

	cont, err := c.ContinueConversation(ctx, endpoint, start.RunID, "again", nil)
	require.NoError(t, err)
	assert.Equal(t, reply("echo", "again", 2), cont.FullText)
}

func TestContinue_UnknownRun(t *testing.T) {
	_, srv := newTestServer(t, Config{})

	_, err := toolhouse.NewClient().ContinueConversation(context.Background(), srv.URL+"/agents/echo", "nope", "hi", nil)

	var reqErr *toolhouse.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusNotFound, reqErr.StatusCode)
}

func TestContinue_WrongAgent(t *testing.T) {
	_, srv := newTestServer(t, Config{})
	c := toolhouse.NewClient()
	ctx := context.Background()

	start, err := c.StartConversation(ctx, srv.URL+"/agents/a", "hi", nil)
	require.NoError(t, err)

	_, err = c.ContinueConversation(ctx, srv.URL+"/agents/b", start.RunID, "hi", nil)
	assert.Error(t, err)
}

func TestStart_BadBody(t *testing.T) {
	_, srv := newTestServer(t, Config{})

	for _, body := range []string{"not json", `{"message":"  "}`} {
		resp, err := http.Post(srv.URL+"/agents/a", "application/json", bytes.NewBufferString(body))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}
}

func TestStart_OmitRunID(t *testing.T) {
	_, srv := newTestServer(t, Config{OmitRunID: true})

	res, err := toolhouse.NewClient().StartConversation(context.Background(), srv.URL+"/agents/a", "hi", nil)
	require.NoError(t, err)
	assert.Empty(t, res.RunID)
}
