// ABOUTME: Entry point for toolhouse-hub, a terminal hub for Toolhouse chat agents
// ABOUTME: Builds the cobra command tree and runs it under a signal-aware context

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
 _              _ _                                _           _
| |_ ___   ___ | | |__   ___  _   _ ___  ___      | |__  _   _| |__
| __/ _ \ / _ \| | '_ \ / _ \| | | / __|/ _ \_____| '_ \| | | | '_ \
| || (_) | (_) | | | | | (_) | |_| \__ \  __/_____| | | | |_| | |_) |
 \__\___/ \___/|_|_| |_|\___/ \__,_|___/\___|     |_| |_|\__,_|_.__/
`

func main() {
	// A missing .env is fine; values may come from the real environment.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newCLI(os.Stdin, os.Stdout, os.Stderr).execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(1)
	}
}

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	logLevel   string
	noColor    bool
	ephemeral  bool
}

// cli owns the command tree and the app built for the running command.
type cli struct {
	opts globalOptions
	root *cobra.Command
	app  *app

	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

// newCLI builds the command tree. Commands that need the catalog, history or
// HTTP client get them from the app built in PersistentPreRunE.
func newCLI(in io.Reader, out, errOut io.Writer) *cli {
	c := &cli{in: in, out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "toolhouse-hub",
		Short:         "Browse and chat with Toolhouse agents from the terminal",
		Long:          banner + "\nBrowse a catalog of Toolhouse agents, chat with them, and pick up past conversations.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations["skipApp"] == "true" {
				return nil
			}
			var err error
			c.app, err = newApp(c.opts, c.in, c.out, c.errOut)
			return err
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&c.opts.configPath, "config", "", "config file (default $TOOLHOUSE_HUB_CONFIG or ~/.config/toolhouse-hub/config.toml)")
	flags.StringVar(&c.opts.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
	flags.BoolVar(&c.opts.noColor, "no-color", false, "disable colored output")
	flags.BoolVar(&c.opts.ephemeral, "ephemeral", false, "keep history in memory only")

	appRef := func() *app { return c.app }

	root.AddCommand(
		newAgentsCmd(appRef),
		newCategoriesCmd(appRef),
		newChatCmd(appRef),
		newHistoryCmd(appRef),
		newInitCmd(&c.opts),
		newVersionCmd(),
	)
	c.root = root
	return c
}

// execute runs the command named by args and releases the app afterwards.
func (c *cli) execute(ctx context.Context, args []string) error {
	c.root.SetArgs(args)
	err := c.root.ExecuteContext(ctx)
	if c.app != nil {
		if cerr := c.app.Close(); cerr != nil && err == nil {
			err = cerr
		}
		c.app = nil
	}
	return err
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the version",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipApp": "true"},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "toolhouse-hub %s\n", version)
		},
	}
}
