// ABOUTME: Local fake Toolhouse server for development, echoes messages with markdown.
// ABOUTME: Usage: fake-toolhouse [-addr localhost:8787] [-chunk 8] [-delay 30ms]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/2389/toolhouse-hub/internal/config"
	"github.com/2389/toolhouse-hub/internal/fakeserver"
	"github.com/2389/toolhouse-hub/internal/logging"
)

func main() {
	addr := flag.String("addr", "localhost:8787", "listen address")
	chunk := flag.Int("chunk", 8, "runes per streamed chunk")
	delay := flag.Duration("delay", 30*time.Millisecond, "pause between chunks")
	noRunID := flag.Bool("no-run-id", false, "omit the run id header")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	logger, closer := logging.New(config.LoggingConfig{Level: *level, Format: "text"}, os.Stderr, true)
	defer closer.Close()

	if err := run(*addr, fakeserver.Config{
		ChunkSize:  *chunk,
		ChunkDelay: *delay,
		OmitRunID:  *noRunID,
	}, logger); err != nil {
		log.Fatal(err)
	}
}

func run(addr string, cfg fakeserver.Config, logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := &http.Server{
		Addr:              addr,
		Handler:           fakeserver.New(cfg, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	fmt.Fprintf(os.Stderr, "fake toolhouse listening on http://%s/agents/<agent-id>\n", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	return srv.Shutdown(shutdownCtx)
}
