// ABOUTME: History commands: list, show, rm and clear saved conversations
// ABOUTME: Clear asks for confirmation unless --yes is given

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/2389/toolhouse-hub/internal/history"
)

func newHistoryCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage saved conversations",
	}
	cmd.AddCommand(
		newHistoryListCmd(get),
		newHistoryShowCmd(get),
		newHistoryRemoveCmd(get),
		newHistoryClearCmd(get),
	)
	return cmd
}

func newHistoryListCmd(get func() *app) *cobra.Command {
	var agentID string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved conversations, most recent first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			ctx := cmd.Context()

			var entries []history.Entry
			if agentID != "" {
				entries = a.store.ForAgent(ctx, agentID)
			} else {
				entries = a.store.List(ctx)
			}
			printEntries(a.out, entries, time.Now())
			return nil
		},
	}
	cmd.Flags().StringVarP(&agentID, "agent", "a", "", "only conversations with this agent")
	return cmd
}

func printEntries(out io.Writer, entries []history.Entry, now time.Time) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No saved conversations.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tAGENT\tUPDATED\tMESSAGES\tPREVIEW")
	fmt.Fprintln(w, "  --\t-----\t-------\t--------\t-------")
	for _, e := range entries {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%d\t%s\n",
			e.ID, e.AgentName, relativeTime(e.Timestamp, now), len(e.Messages), oneLine(truncate(e.Preview, 50)))
	}
	w.Flush()
}

// relativeTime renders t the way the history list shows it.
func relativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Local().Format("Jan 02 2006")
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func newHistoryShowCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a saved conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			entry, err := a.store.Get(cmd.Context(), args[0])
			if errors.Is(err, history.ErrNotFound) {
				fmt.Fprintf(a.out, "Conversation not found: %s\n", args[0])
				return nil
			}
			if err != nil {
				return err
			}

			label := entry.AgentName
			if ag, err := a.catalog.Find(entry.AgentID); err == nil {
				label = a.agentLabel(ag)
			}
			fmt.Fprintf(a.out, "%s %s\n\n", label, a.ui.dim.Sprint(entry.Timestamp.Local().Format("Jan 02 15:04")))
			printTranscript(a, label, entry.Messages)
			return nil
		},
	}
}

// printTranscript writes every message, rendering assistant Markdown.
func printTranscript(a *app, agentLabel string, msgs []history.Message) {
	for _, m := range msgs {
		if m.Role == history.RoleUser {
			fmt.Fprintf(a.out, "%s %s\n\n", a.ui.prompt.Sprint("you>"), m.Content)
			continue
		}
		fmt.Fprintf(a.out, "%s\n%s\n\n", agentLabel, a.formatReply(m.Content))
	}
}

func newHistoryRemoveCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a saved conversation",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			ctx := cmd.Context()
			if _, err := a.store.Get(ctx, args[0]); errors.Is(err, history.ErrNotFound) {
				fmt.Fprintf(a.out, "Conversation not found: %s\n", args[0])
				return nil
			}
			remaining := a.store.Remove(ctx, args[0])
			fmt.Fprintf(a.out, "Deleted %s (%d left)\n", args[0], len(remaining))
			return nil
		},
	}
}

func newHistoryClearCmd(get func() *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all saved conversations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			ctx := cmd.Context()

			n := len(a.store.List(ctx))
			if n == 0 {
				// An unreadable document lists as empty but still occupies storage.
				a.store.Clear(ctx)
				fmt.Fprintln(a.out, "No saved conversations.")
				return nil
			}
			if !yes && !confirm(a.in, a.out, fmt.Sprintf("Delete all %d saved conversations?", n)) {
				fmt.Fprintln(a.out, "Cancelled.")
				return nil
			}

			a.store.Clear(ctx)
			fmt.Fprintln(a.out, a.ui.ok.Sprint("History cleared."))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// confirm asks a yes/no question; anything but y or yes is no.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(out)
		return false
	}
	return isYes(line)
}
