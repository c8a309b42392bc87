// ABOUTME: Init command that writes a starter config file
// ABOUTME: Prompts for the main settings unless --defaults is given

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/2389/toolhouse-hub/internal/config"
)

func newInitCmd(opts *globalOptions) *cobra.Command {
	var (
		defaults bool
		force    bool
	)

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a config file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipApp": "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := opts.configPath
			if path == "" {
				path = config.Path()
			}
			return runInit(cmd.InOrStdin(), cmd.OutOrStdout(), path, defaults, force)
		},
	}
	cmd.Flags().BoolVar(&defaults, "defaults", false, "write the defaults without prompting")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func runInit(in io.Reader, out io.Writer, path string, defaults, force bool) error {
	reader := bufio.NewReader(in)
	cfg := config.Default()

	if _, err := os.Stat(path); err == nil && !force {
		if defaults {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		overwrite := prompt(reader, out, "File exists. Overwrite?", "no")
		if !isYes(overwrite) {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	if !defaults {
		fmt.Fprintln(out, "toolhouse-hub configuration setup")
		fmt.Fprintln(out, "=================================")

		fmt.Fprintln(out, "\n--- History Storage ---")
		cfg.Storage.Backend = prompt(reader, out, "Backend (file/sqlite/sqlite3/memory)", cfg.Storage.Backend)
		if cfg.Storage.Backend == config.BackendSQLite || cfg.Storage.Backend == config.BackendSQLite3 {
			cfg.Storage.Path = filepath.Join(cfg.Storage.Path, "history.db")
		}
		if cfg.Storage.Backend != config.BackendMemory {
			cfg.Storage.Path = prompt(reader, out, "Path", cfg.Storage.Path)
		}

		fmt.Fprintln(out, "\n--- Toolhouse API ---")
		cfg.HTTP.APIKey = prompt(reader, out, "API key (use ${VAR} to read from the environment)", "${TOOLHOUSE_API_KEY}")
		cfg.HTTP.TimeoutRaw = prompt(reader, out, "Request timeout", cfg.HTTP.TimeoutRaw)

		fmt.Fprintln(out, "\n--- Logging ---")
		cfg.Logging.Level = prompt(reader, out, "Log level (debug/info/warn/error)", cfg.Logging.Level)
		cfg.Logging.File = prompt(reader, out, "Log file (empty for stderr)", "")
	}

	data, err := config.Encode(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	content := "# toolhouse-hub configuration\n# Generated by toolhouse-hub init\n\n" + string(data)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	// Load it back so a bad answer is reported now rather than on next use.
	if _, err := config.Load(path); err != nil {
		return fmt.Errorf("config written to %s but it is invalid: %w", path, err)
	}

	fmt.Fprintf(out, "\nConfig written to %s\n", path)
	fmt.Fprintln(out, "\nTo get started:")
	fmt.Fprintln(out, "  toolhouse-hub agents")
	return nil
}

func prompt(reader *bufio.Reader, out io.Writer, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Fprintf(out, "%s [%s]: ", question, defaultVal)
	} else {
		fmt.Fprintf(out, "%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		return defaultVal
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return defaultVal
	}
	return input
}

func isYes(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "y" || s == "yes"
}
