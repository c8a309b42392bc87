// ABOUTME: Shared runtime for CLI commands: config, logger, catalog, history and client
// ABOUTME: Chooses the history backend and the color/streaming mode for output

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/2389/toolhouse-hub/internal/catalog"
	"github.com/2389/toolhouse-hub/internal/config"
	"github.com/2389/toolhouse-hub/internal/history"
	"github.com/2389/toolhouse-hub/internal/logging"
	"github.com/2389/toolhouse-hub/internal/render"
	"github.com/2389/toolhouse-hub/internal/toolhouse"
)

// app holds everything a command needs. It is built once per invocation.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	catalog  *catalog.Catalog
	store    *history.Store
	client   *toolhouse.Client
	renderer *render.Renderer
	ui       *palette

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	// streaming is set when out is a terminal; replies are then printed as
	// they arrive instead of once complete.
	streaming bool
	closers   []io.Closer
}

func newApp(opts globalOptions, in io.Reader, out, errOut io.Writer) (*app, error) {
	path := opts.configPath
	if path == "" {
		path = config.Path()
	}
	cfg, found, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.ephemeral {
		cfg.Storage.Backend = config.BackendMemory
	}
	if opts.noColor {
		cfg.UI.Color = config.ColorNever
	}

	a := &app{
		cfg:       cfg,
		in:        in,
		out:       out,
		errOut:    errOut,
		streaming: isTerminal(out),
	}
	useColor := a.colorEnabled()

	logger, logCloser := logging.New(cfg.Logging, errOut, useColor && isTerminal(errOut))
	a.logger = logger
	a.closers = append(a.closers, logCloser)
	slog.SetDefault(logger)

	if found {
		logger.Debug("loaded config", "path", path)
	} else {
		logger.Debug("no config file, using defaults", "path", path)
	}

	if cfg.Catalog.Path != "" {
		a.catalog, err = catalog.LoadFile(cfg.Catalog.Path)
	} else {
		a.catalog, err = catalog.Default()
	}
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	storage, storageCloser, err := openStorage(cfg.Storage)
	if err != nil {
		a.Close()
		return nil, err
	}
	if storageCloser != nil {
		a.closers = append(a.closers, storageCloser)
	}
	a.store = history.NewStore(storage,
		history.WithKey(cfg.Storage.Key),
		history.WithLimit(cfg.Storage.MaxEntries),
		history.WithLogger(logger),
	)

	clientOpts := []toolhouse.Option{
		toolhouse.WithLogger(logger),
		toolhouse.WithUserAgent(cfg.HTTP.UserAgent + "/" + version),
	}
	if cfg.HTTP.APIKey != "" {
		clientOpts = append(clientOpts, toolhouse.WithAPIKey(cfg.HTTP.APIKey))
	}
	if cfg.HTTP.Timeout > 0 {
		clientOpts = append(clientOpts, toolhouse.WithTimeout(cfg.HTTP.Timeout))
	}
	a.client = toolhouse.NewClient(clientOpts...)

	a.ui = newPalette(useColor)
	a.renderer = render.New(useColor)

	return a, nil
}

// openStorage returns the configured history backend and, for backends that
// hold resources, a closer.
func openStorage(cfg config.StorageConfig) (history.Storage, io.Closer, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return history.NewMemoryStorage(), nil, nil
	case config.BackendFile:
		fs, err := history.NewFileStorage(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening history directory: %w", err)
		}
		return fs, nil, nil
	case config.BackendSQLite, config.BackendSQLite3:
		driver := history.DriverModernc
		if cfg.Backend == config.BackendSQLite3 {
			driver = history.DriverCGo
		}
		db, err := history.NewSQLiteStorage(driver, cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening history database: %w", err)
		}
		return db, db, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// colorEnabled resolves ui.color against the output stream and NO_COLOR.
func (a *app) colorEnabled() bool {
	switch a.cfg.UI.Color {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			return false
		}
		return isTerminal(a.out)
	}
}

// Close releases the log file and database handles.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// palette holds the colors used for CLI output.
type palette struct {
	enabled bool
	title   *color.Color
	dim     *color.Color
	prompt  *color.Color
	warn    *color.Color
	err     *color.Color
	ok      *color.Color
}

func newPalette(enabled bool) *palette {
	p := &palette{
		enabled: enabled,
		title:   color.New(color.FgCyan, color.Bold),
		dim:     color.New(color.FgHiBlack),
		prompt:  color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
		err:     color.New(color.FgRed),
		ok:      color.New(color.FgGreen, color.Bold),
	}
	for _, c := range []*color.Color{p.title, p.dim, p.prompt, p.warn, p.err, p.ok} {
		p.apply(c)
	}
	return p
}

func (p *palette) apply(c *color.Color) *color.Color {
	if p.enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// agent returns a bold color for an agent's "#rrggbb" accent, or title when
// the value cannot be parsed.
func (p *palette) agent(hex string) *color.Color {
	r, g, b, ok := parseHex(hex)
	if !ok {
		return p.title
	}
	return p.apply(color.RGB(r, g, b).Add(color.Bold))
}

func parseHex(s string) (r, g, b int, ok bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), true
}

// agentLabel renders "glyph Name" in the agent's color.
func (a *app) agentLabel(ag catalog.Agent) string {
	return a.ui.agent(ag.Color).Sprintf("%s %s", ag.IconGlyph(), ag.Name)
}
